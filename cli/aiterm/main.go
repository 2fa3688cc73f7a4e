package main

import (
	"fmt"
	"os"

	aitermcmder "github.com/papercomputeco/aiterm/cmd/aiterm"
)

func main() {
	cmd := aitermcmder.NewAitermCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
