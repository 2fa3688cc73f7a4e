package anthropic_test

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/aiterm/pkg/llm"
	"github.com/papercomputeco/aiterm/pkg/llm/provider"
	"github.com/papercomputeco/aiterm/pkg/llm/provider/anthropic"
)

var _ = Describe("Anthropic Provider", func() {
	var p provider.Provider

	BeforeEach(func() {
		p = anthropic.New()
	})

	Describe("Name", func() {
		It("returns 'anthropic'", func() {
			Expect(p.Name()).To(Equal("anthropic"))
		})
	})

	Describe("Authorize", func() {
		It("sets the api key and version headers", func() {
			req, _ := http.NewRequest(http.MethodPost, p.Endpoint("", ""), nil)
			p.Authorize(req, "sk-ant")
			Expect(req.Header.Get("x-api-key")).To(Equal("sk-ant"))
			Expect(req.Header.Get("anthropic-version")).NotTo(BeEmpty())
			Expect(req.URL.Path).To(Equal("/v1/messages"))
		})
	})

	Describe("BuildRequest", func() {
		It("always sets max_tokens and a top-level system", func() {
			body, err := p.BuildRequest(llm.NewPrompt("", "Hello", "be brief"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring(`"max_tokens":1024`))
			Expect(string(body)).To(ContainSubstring(`"system":"be brief"`))
			Expect(string(body)).To(ContainSubstring(`"model":"claude-3-5-haiku-latest"`))
		})
	})

	Describe("ParseResponse", func() {
		It("collects the text blocks", func() {
			payload := []byte(`{
				"id": "msg_123",
				"type": "message",
				"role": "assistant",
				"content": [{"type": "text", "text": "Hello!"}],
				"model": "claude-3-sonnet-20240229",
				"stop_reason": "end_turn",
				"usage": {"input_tokens": 10, "output_tokens": 5}
			}`)

			resp, err := p.ParseResponse(payload)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Text()).To(Equal("Hello!"))
			Expect(resp.StopReason).To(Equal("end_turn"))
			Expect(resp.Usage.TotalTokens).To(Equal(15))
		})
	})

	Describe("CanHandle", func() {
		It("returns true for Claude model names", func() {
			Expect(p.CanHandle([]byte(`{"model": "claude-3-opus-20240229"}`))).To(BeTrue())
		})

		It("returns true for message responses", func() {
			Expect(p.CanHandle([]byte(`{"type": "message", "stop_reason": "end_turn"}`))).To(BeTrue())
		})

		It("returns false for GPT models", func() {
			Expect(p.CanHandle([]byte(`{"model": "gpt-4"}`))).To(BeFalse())
		})
	})
})
