package configcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	configcmder "github.com/papercomputeco/aiterm/cmd/aiterm/config"
	"github.com/papercomputeco/aiterm/pkg/config"
)

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		subcommands := []string{}
		for _, sub := range cmd.Commands() {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var (
		tmpDir string
		out    *bytes.Buffer
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "aiterm-config-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		// Create a local .aiterm dir so the manager picks it up
		Expect(os.MkdirAll(filepath.Join(tmpDir, ".aiterm"), 0o700)).To(Succeed())
		Expect(os.Chdir(tmpDir)).To(Succeed())

		DeferCleanup(func() {
			Expect(os.Chdir(origDir)).To(Succeed())
			os.RemoveAll(tmpDir)
		})

		out = &bytes.Buffer{}
	})

	execute := func(args ...string) error {
		cmd := configcmder.NewConfigCmd()
		cmd.SetOut(out)
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	loadLocal := func() *config.Config {
		cfger, err := config.NewConfiger(filepath.Join(tmpDir, ".aiterm"))
		Expect(err).NotTo(HaveOccurred())
		cfg, err := cfger.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		return cfg
	}

	Describe("set subcommand", func() {
		It("sets a config value in the local .aiterm dir", func() {
			Expect(execute("set", "relay.provider", "anthropic")).To(Succeed())
			Expect(filepath.Join(tmpDir, ".aiterm", "config.toml")).To(BeAnExistingFile())
			Expect(loadLocal().Relay.Provider).To(Equal("anthropic"))
			Expect(out.String()).To(ContainSubstring("relay.provider"))
		})

		It("rejects unknown keys", func() {
			Expect(execute("set", "invalid_key", "value")).To(MatchError(ContainSubstring("unknown config key")))
		})

		It("requires exactly two arguments", func() {
			Expect(execute("set", "relay.provider")).To(HaveOccurred())
		})

		It("rejects an invalid relay mode", func() {
			Expect(execute("set", "relay.mode", "mirror")).To(HaveOccurred())
		})

		It("rejects a non-boolean client.direct", func() {
			Expect(execute("set", "client.direct", "maybe")).To(HaveOccurred())
		})
	})

	Describe("get subcommand", func() {
		It("gets a previously set value", func() {
			Expect(execute("set", "relay.model", "gemini-1.5-pro")).To(Succeed())
			out.Reset()

			Expect(execute("get", "relay.model")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("gemini-1.5-pro"))
		})

		It("shows unset keys", func() {
			Expect(execute("get", "relay.upstream")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("<not set>"))
		})

		It("rejects unknown keys", func() {
			Expect(execute("get", "proxy.provider")).To(HaveOccurred())
		})
	})

	Describe("list subcommand", func() {
		It("lists every key", func() {
			Expect(execute("list")).To(Succeed())
			for _, key := range config.ValidConfigKeys() {
				Expect(out.String()).To(ContainSubstring(key))
			}
			Expect(out.String()).To(ContainSubstring(`relay.listen`))
			Expect(out.String()).To(ContainSubstring(`":8080"`))
		})

		It("rejects arguments", func() {
			Expect(execute("list", "extra")).To(HaveOccurred())
		})
	})
})
