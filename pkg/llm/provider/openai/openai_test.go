package openai_test

import (
	"encoding/json"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/aiterm/pkg/llm"
	"github.com/papercomputeco/aiterm/pkg/llm/provider"
	"github.com/papercomputeco/aiterm/pkg/llm/provider/openai"
)

var _ = Describe("OpenAI Provider", func() {
	var p provider.Provider

	BeforeEach(func() {
		p = openai.New()
	})

	Describe("Name", func() {
		It("returns 'openai'", func() {
			Expect(p.Name()).To(Equal("openai"))
		})
	})

	Describe("Endpoint", func() {
		It("targets the chat completions path", func() {
			Expect(p.Endpoint("http://localhost:9000/", "gpt-4o")).To(Equal("http://localhost:9000/v1/chat/completions"))
		})
	})

	Describe("Authorize", func() {
		It("sets a bearer token", func() {
			req, _ := http.NewRequest(http.MethodPost, "http://upstream", nil)
			p.Authorize(req, "sk-test")
			Expect(req.Header.Get("Authorization")).To(Equal("Bearer sk-test"))
		})
	})

	Describe("BuildRequest", func() {
		It("prepends the system message", func() {
			body, err := p.BuildRequest(llm.NewPrompt("gpt-4o", "Hello", "You are helpful"))
			Expect(err).NotTo(HaveOccurred())

			var decoded struct {
				Model    string `json:"model"`
				Stream   bool   `json:"stream"`
				Messages []struct {
					Role    string `json:"role"`
					Content string `json:"content"`
				} `json:"messages"`
			}
			Expect(json.Unmarshal(body, &decoded)).To(Succeed())
			Expect(decoded.Model).To(Equal("gpt-4o"))
			Expect(decoded.Stream).To(BeFalse())
			Expect(decoded.Messages).To(HaveLen(2))
			Expect(decoded.Messages[0].Role).To(Equal("system"))
			Expect(decoded.Messages[1].Content).To(Equal("Hello"))
		})

		It("uses the default model when none is set", func() {
			body, err := p.BuildRequest(llm.NewPrompt("", "Hello", ""))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring(`"model":"gpt-4o-mini"`))
		})
	})

	Describe("ParseResponse", func() {
		It("parses a basic response", func() {
			payload := []byte(`{
				"id": "chatcmpl-123",
				"object": "chat.completion",
				"created": 1677652288,
				"model": "gpt-4",
				"choices": [{"index": 0, "message": {"role": "assistant", "content": "Hello! How can I help you today?"}, "finish_reason": "stop"}],
				"usage": {"prompt_tokens": 9, "completion_tokens": 12, "total_tokens": 21}
			}`)

			resp, err := p.ParseResponse(payload)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Model).To(Equal("gpt-4"))
			Expect(resp.Text()).To(Equal("Hello! How can I help you today?"))
			Expect(resp.StopReason).To(Equal("stop"))
			Expect(resp.Usage.TotalTokens).To(Equal(21))
		})

		It("handles a response without choices", func() {
			resp, err := p.ParseResponse([]byte(`{"model": "gpt-4", "choices": []}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Text()).To(BeEmpty())
		})
	})

	Describe("CanHandle", func() {
		It("recognizes chat completion objects", func() {
			Expect(p.CanHandle([]byte(`{"object": "chat.completion", "choices": []}`))).To(BeTrue())
		})

		It("rejects Gemini payloads", func() {
			Expect(p.CanHandle([]byte(`{"candidates": []}`))).To(BeFalse())
		})
	})
})
