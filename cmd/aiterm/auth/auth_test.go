package authcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	authcmder "github.com/papercomputeco/aiterm/cmd/aiterm/auth"
	"github.com/papercomputeco/aiterm/pkg/credentials"
)

var _ = Describe("Auth Command", func() {
	var (
		tmpDir string
		out    *bytes.Buffer
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "auth-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { os.RemoveAll(tmpDir) })

		out = &bytes.Buffer{}
	})

	newCmd := func(stdin string, args ...string) *cobra.Command {
		cmd := authcmder.NewAuthCmd()
		cmd.PersistentFlags().String("config-dir", "", "Override path to .aiterm/ config directory")
		cmd.SetOut(out)
		cmd.SetIn(bytes.NewBufferString(stdin))
		cmd.SetArgs(append(args, "--config-dir", tmpDir))
		return cmd
	}

	Describe("NewAuthCmd", func() {
		It("creates a command with expected properties", func() {
			cmd := authcmder.NewAuthCmd()
			Expect(cmd.Use).To(Equal("auth [provider]"))
			Expect(cmd.Short).NotTo(BeEmpty())
			Expect(cmd.Flags().Lookup("list")).NotTo(BeNil())
			Expect(cmd.Flags().Lookup("remove")).NotTo(BeNil())
		})
	})

	Describe("storing a key", func() {
		It("reads the key from piped stdin and stores it with 0600", func() {
			GinkgoT().Setenv("GEMINI_API_KEY", "")
			Expect(newCmd("  gm-key-123  \n", "Gemini").Execute()).To(Succeed())

			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			key, err := mgr.GetKey("gemini")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(Equal("gm-key-123"))

			info, err := os.Stat(filepath.Join(tmpDir, "credentials.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))
			Expect(out.String()).To(ContainSubstring("GEMINI_API_KEY"))
		})

		It("warns when the env var shadows the stored key", func() {
			GinkgoT().Setenv("OPENAI_API_KEY", "sk-other")
			Expect(newCmd("sk-new\n", "openai").Execute()).To(Succeed())
			Expect(out.String()).To(ContainSubstring("takes precedence"))
		})

		It("rejects an empty key", func() {
			err := newCmd("   \n", "gemini").Execute()
			Expect(err).To(MatchError("API key cannot be empty"))
		})

		It("rejects empty stdin", func() {
			err := newCmd("", "gemini").Execute()
			Expect(err).To(MatchError(ContainSubstring("no input")))
		})
	})

	Describe("--list flag", func() {
		It("shows no credentials when none stored", func() {
			Expect(newCmd("", "--list").Execute()).To(Succeed())
			Expect(out.String()).To(ContainSubstring("No stored credentials"))
		})

		It("lists stored credentials", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr.SetKey("openai", "sk-test")).To(Succeed())

			Expect(newCmd("", "--list").Execute()).To(Succeed())
			Expect(out.String()).To(ContainSubstring("openai"))
			Expect(out.String()).To(ContainSubstring("OPENAI_API_KEY"))
			Expect(out.String()).NotTo(ContainSubstring("sk-test"))
		})
	})

	Describe("--remove flag", func() {
		It("removes stored credentials", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr.SetKey("openai", "sk-test")).To(Succeed())

			Expect(newCmd("", "--remove", "openai").Execute()).To(Succeed())

			key, err := mgr.GetKey("openai")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(BeEmpty())
		})
	})

	Describe("provider argument validation", func() {
		It("returns error when no provider given", func() {
			err := newCmd("").Execute()
			Expect(err).To(MatchError(ContainSubstring("provider argument required")))
		})

		It("returns error for unsupported provider", func() {
			err := newCmd("sk-test\n", "ollama").Execute()
			Expect(err).To(MatchError(ContainSubstring("unsupported provider")))
		})
	})

	Describe("shell completion", func() {
		It("provides provider name completions", func() {
			cmd := authcmder.NewAuthCmd()
			completions, directive := cmd.ValidArgsFunction(cmd, []string{}, "")
			Expect(completions).To(ConsistOf("gemini", "openai", "anthropic"))
			Expect(directive).To(Equal(cobra.ShellCompDirectiveNoFileComp))
		})

		It("provides no completions after first arg", func() {
			cmd := authcmder.NewAuthCmd()
			completions, directive := cmd.ValidArgsFunction(cmd, []string{"openai"}, "")
			Expect(completions).To(BeNil())
			Expect(directive).To(Equal(cobra.ShellCompDirectiveNoFileComp))
		})
	})
})
