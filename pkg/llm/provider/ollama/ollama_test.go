package ollama_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/aiterm/pkg/llm"
	"github.com/papercomputeco/aiterm/pkg/llm/provider"
	"github.com/papercomputeco/aiterm/pkg/llm/provider/ollama"
)

var _ = Describe("Ollama Provider", func() {
	var p provider.Provider

	BeforeEach(func() {
		p = ollama.New()
	})

	It("returns 'ollama'", func() {
		Expect(p.Name()).To(Equal("ollama"))
	})

	It("does not require an API key", func() {
		Expect(p.RequiresAPIKey()).To(BeFalse())
	})

	It("targets /api/chat", func() {
		Expect(p.Endpoint("", "")).To(Equal("http://localhost:11434/api/chat"))
	})

	Describe("BuildRequest", func() {
		It("disables streaming explicitly", func() {
			body, err := p.BuildRequest(llm.NewPrompt("llama3.2", "Hello", ""))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring(`"stream":false`))
			Expect(string(body)).To(ContainSubstring(`"content":"Hello"`))
		})
	})

	Describe("ParseResponse", func() {
		It("parses a complete response", func() {
			payload := []byte(`{
				"model": "llama3.2",
				"created_at": "2024-01-15T10:30:00Z",
				"message": {"role": "assistant", "content": "Hi there"},
				"done": true,
				"done_reason": "stop",
				"prompt_eval_count": 10,
				"eval_count": 5
			}`)

			resp, err := p.ParseResponse(payload)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Text()).To(Equal("Hi there"))
			Expect(resp.StopReason).To(Equal("stop"))
			Expect(resp.Usage.TotalTokens).To(Equal(15))
		})

		It("yields empty text without a message", func() {
			resp, err := p.ParseResponse([]byte(`{"model": "llama3.2", "done": true}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Text()).To(BeEmpty())
		})
	})

	Describe("CanHandle", func() {
		It("recognizes response metrics", func() {
			Expect(p.CanHandle([]byte(`{"model": "llama3.2", "eval_count": 5}`))).To(BeTrue())
		})

		It("recognizes message plus done", func() {
			Expect(p.CanHandle([]byte(`{"message": {"role": "assistant", "content": "x"}, "done": true}`))).To(BeTrue())
		})

		It("rejects unrelated payloads", func() {
			Expect(p.CanHandle([]byte(`{"reply": "x"}`))).To(BeFalse())
		})
	})
})
