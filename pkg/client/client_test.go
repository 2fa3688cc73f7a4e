package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/aiterm/pkg/chat"
	"github.com/papercomputeco/aiterm/pkg/client"
	"github.com/papercomputeco/aiterm/pkg/llm/provider"
	"github.com/papercomputeco/aiterm/pkg/logger"
	"github.com/papercomputeco/aiterm/relay"
)

func fixedServer(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
}

var _ = Describe("RelayClient", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("against an echo relay", func() {
		var srv *httptest.Server

		BeforeEach(func() {
			r, err := relay.New(relay.Config{Mode: relay.ModeEcho}, logger.Nop())
			Expect(err).NotTo(HaveOccurred())
			srv = httptest.NewServer(r.Handler())
		})

		AfterEach(func() {
			srv.Close()
		})

		It("returns the reply", func() {
			c, err := client.NewRelayClient(client.Config{RelayTarget: srv.URL})
			Expect(err).NotTo(HaveOccurred())

			text, err := c.Exchange(ctx, "hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("AI response: hello"))
		})

		It("drives a chat session end to end", func() {
			c, err := client.NewRelayClient(client.Config{RelayTarget: srv.URL})
			Expect(err).NotTo(HaveOccurred())

			session := chat.NewSession(c, chat.WithoutGreeting())
			Expect(session.Submit(ctx, "ping")).To(BeTrue())

			turns := session.Turns()
			Expect(turns).To(HaveLen(2))
			Expect(turns[0].Text).To(Equal("ping"))
			Expect(turns[1].Text).To(Equal("AI response: ping"))
		})

		It("surfaces the relay's error for an empty message", func() {
			c, err := client.NewRelayClient(client.Config{RelayTarget: srv.URL})
			Expect(err).NotTo(HaveOccurred())

			_, err = c.Exchange(ctx, "")
			var statusErr *client.StatusError
			Expect(errors.As(err, &statusErr)).To(BeTrue())
			Expect(statusErr.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(err).To(MatchError("No message provided"))
		})
	})

	Context("against a forwarding relay", func() {
		var (
			upstream *httptest.Server
			srv      *httptest.Server
		)

		BeforeEach(func() {
			upstream = fixedServer(http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"from gemini"}]}}]}`)
			r, err := relay.New(relay.Config{
				UpstreamURL: upstream.URL,
				Keys:        relay.StaticKey("k"),
			}, logger.Nop())
			Expect(err).NotTo(HaveOccurred())
			srv = httptest.NewServer(r.Handler())
		})

		AfterEach(func() {
			srv.Close()
			upstream.Close()
		})

		It("extracts the nested candidate text", func() {
			c, err := client.NewRelayClient(client.Config{RelayTarget: srv.URL, Provider: provider.Gemini})
			Expect(err).NotTo(HaveOccurred())

			text, err := c.Exchange(ctx, "hi")
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("from gemini"))
		})

		It("detects the provider when none is configured", func() {
			c, err := client.NewRelayClient(client.Config{RelayTarget: srv.URL})
			Expect(err).NotTo(HaveOccurred())

			text, err := c.Exchange(ctx, "hi")
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("from gemini"))
		})
	})

	It("posts the message as JSON to the relay path", func() {
		var got map[string]string
		var path string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(&got)
			_, _ = io.WriteString(w, `{"reply":"ok"}`)
		}))
		defer srv.Close()

		c, err := client.NewRelayClient(client.Config{RelayTarget: srv.URL, RelayPath: "/relay"})
		Expect(err).NotTo(HaveOccurred())
		Expect(c.URL()).To(Equal(srv.URL + "/relay"))

		_, err = c.Exchange(ctx, "payload")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/relay"))
		Expect(got).To(HaveKeyWithValue("message", "payload"))
	})

	It("falls back to a status message when the error body is empty", func() {
		srv := fixedServer(http.StatusInternalServerError, ``)
		defer srv.Close()

		c, _ := client.NewRelayClient(client.Config{RelayTarget: srv.URL})
		_, err := c.Exchange(ctx, "hi")
		Expect(err).To(MatchError("request failed with status 500"))
	})

	It("fails on a non-JSON success body", func() {
		srv := fixedServer(http.StatusOK, `<html></html>`)
		defer srv.Close()

		c, _ := client.NewRelayClient(client.Config{RelayTarget: srv.URL})
		_, err := c.Exchange(ctx, "hi")
		Expect(err).To(MatchError(ContainSubstring("decoding response")))
	})

	It("returns an empty reply for a JSON success body that is not an object", func() {
		srv := fixedServer(http.StatusOK, `["not","an","object"]`)
		defer srv.Close()

		c, _ := client.NewRelayClient(client.Config{RelayTarget: srv.URL})
		reply, err := c.Exchange(ctx, "hi")
		Expect(err).NotTo(HaveOccurred())
		Expect(reply).To(BeEmpty())
	})

	It("fails when the relay is unreachable", func() {
		srv := fixedServer(http.StatusOK, `{}`)
		url := srv.URL
		srv.Close()

		c, _ := client.NewRelayClient(client.Config{RelayTarget: url})
		_, err := c.Exchange(ctx, "hi")
		Expect(err).To(MatchError(ContainSubstring("sending request to relay")))
	})

	It("rejects an unknown provider", func() {
		_, err := client.NewRelayClient(client.Config{Provider: "nope"})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("DirectClient", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("refuses to send without an API key", func() {
		called := false
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
		defer srv.Close()

		c, err := client.NewDirectClient(client.Config{ProviderURL: srv.URL})
		Expect(err).NotTo(HaveOccurred())

		_, err = c.Exchange(ctx, "hi")
		Expect(err).To(MatchError(client.ErrMissingAPIKey))
		Expect(called).To(BeFalse())
	})

	It("calls the provider with the key and model", func() {
		var path, key string
		var body map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			key = r.URL.Query().Get("key")
			_ = json.NewDecoder(r.Body).Decode(&body)
			_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"direct"}]}}]}`)
		}))
		defer srv.Close()

		c, err := client.NewDirectClient(client.Config{
			ProviderURL:       srv.URL,
			APIKey:            "local-key",
			ModelName:         "gemini-1.5-flash",
			SystemInstruction: "be terse",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Provider()).To(Equal("gemini"))
		Expect(c.Model()).To(Equal("gemini-1.5-flash"))

		text, err := c.Exchange(ctx, "hi")
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("direct"))
		Expect(path).To(Equal("/v1beta/models/gemini-1.5-flash:generateContent"))
		Expect(key).To(Equal("local-key"))
		Expect(body).To(HaveKey("systemInstruction"))
	})

	It("returns an empty reply when the candidate text is absent", func() {
		srv := fixedServer(http.StatusOK, `{"candidates":[]}`)
		defer srv.Close()

		c, _ := client.NewDirectClient(client.Config{ProviderURL: srv.URL, APIKey: "k"})
		text, err := c.Exchange(ctx, "hi")
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(BeEmpty())
	})

	It("propagates the provider's error message", func() {
		srv := fixedServer(http.StatusForbidden, `{"error":{"code":403,"message":"Permission denied"}}`)
		defer srv.Close()

		c, _ := client.NewDirectClient(client.Config{ProviderURL: srv.URL, APIKey: "k"})
		_, err := c.Exchange(ctx, "hi")
		Expect(err).To(MatchError("Permission denied"))
	})

	It("sends to Ollama without a key", func() {
		srv := fixedServer(http.StatusOK, `{"model":"llama3.2","message":{"role":"assistant","content":"local"},"done":true}`)
		defer srv.Close()

		c, err := client.NewDirectClient(client.Config{Provider: provider.Ollama, ProviderURL: srv.URL})
		Expect(err).NotTo(HaveOccurred())

		text, err := c.Exchange(ctx, "hi")
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("local"))
	})
})

var _ = Describe("ExtractText", func() {
	DescribeTable("reads the display text",
		func(body, expected string) {
			text, err := client.ExtractText([]byte(body), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal(expected))
		},
		Entry("echo reply", `{"reply":"AI response: x"}`, "AI response: x"),
		Entry("gemini candidates", `{"candidates":[{"content":{"parts":[{"text":"g"}]}}]}`, "g"),
		Entry("openai choices", `{"object":"chat.completion","choices":[{"message":{"role":"assistant","content":"o"}}]}`, "o"),
		Entry("missing parts", `{"candidates":[{"content":{}}]}`, ""),
		Entry("unknown shape", `{"something":"else"}`, ""),
		Entry("JSON array", `[]`, ""),
		Entry("JSON string", `"x"`, ""),
		Entry("JSON number", `42`, ""),
		Entry("JSON null", `null`, ""),
	)

	It("fails on invalid JSON", func() {
		_, err := client.ExtractText([]byte(`nope`), nil)
		Expect(err).To(HaveOccurred())
	})
})
