package main

import (
	"fmt"
	"os"

	servecmder "github.com/papercomputeco/aiterm/cmd/aiterm/serve"
	versioncmder "github.com/papercomputeco/aiterm/cmd/version"
)

func main() {
	cmd := servecmder.NewServeCmd()

	cmd.Use = "aitermrelay"
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .aiterm/ config directory")
	cmd.AddCommand(versioncmder.NewVersionCmd())

	err := cmd.Execute()
	if err != nil {
		fmt.Printf("Error executing root command: %v\n", err)
		os.Exit(1)
	}
}
