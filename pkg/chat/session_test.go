package chat_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/aiterm/pkg/chat"
)

type recordingExchanger struct {
	reply      string
	err        error
	received   []string
	busyDuring bool
	session    *chat.Session
}

func (r *recordingExchanger) Exchange(_ context.Context, message string) (string, error) {
	r.received = append(r.received, message)
	if r.session != nil {
		r.busyDuring = r.session.Busy()
	}
	return r.reply, r.err
}

var _ = Describe("Session", func() {
	var (
		ex      *recordingExchanger
		session *chat.Session
		ctx     context.Context
		clock   time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		clock = time.Date(2025, 3, 1, 14, 5, 9, 0, time.Local)
		ex = &recordingExchanger{reply: "pong"}
		session = chat.NewSession(ex, chat.WithClock(func() time.Time { return clock }))
		ex.session = session
	})

	It("starts with the greeting turn", func() {
		turns := session.Turns()
		Expect(turns).To(HaveLen(1))
		Expect(turns[0].Role).To(Equal(chat.RoleAssistant))
		Expect(turns[0].Text).To(Equal(chat.Greeting))
		Expect(turns[0].Timestamp()).To(Equal("14:05:09"))
		Expect(session.Busy()).To(BeFalse())
	})

	It("can start empty", func() {
		s := chat.NewSession(ex, chat.WithoutGreeting())
		Expect(s.Turns()).To(BeEmpty())
	})

	DescribeTable("ignores empty input",
		func(input string) {
			Expect(session.Submit(ctx, input)).To(BeFalse())
			Expect(session.Turns()).To(HaveLen(1))
			Expect(ex.received).To(BeEmpty())
			Expect(session.Busy()).To(BeFalse())
		},
		Entry("empty string", ""),
		Entry("spaces", "   "),
		Entry("tabs and newlines", "\t\n  \n"),
	)

	It("appends one user turn then one assistant turn", func() {
		Expect(session.Submit(ctx, "  hello  ")).To(BeTrue())

		turns := session.Turns()
		Expect(turns).To(HaveLen(3))
		Expect(turns[1]).To(Equal(chat.Turn{Role: chat.RoleUser, Text: "hello", Time: clock}))
		Expect(turns[2].Role).To(Equal(chat.RoleAssistant))
		Expect(turns[2].Text).To(Equal("pong"))
		Expect(ex.received).To(Equal([]string{"hello"}))
	})

	It("is busy while the exchange is in flight and idle afterwards", func() {
		session.Submit(ctx, "hello")
		Expect(ex.busyDuring).To(BeTrue())
		Expect(session.Busy()).To(BeFalse())
	})

	It("uses the placeholder when the reply has no text", func() {
		ex.reply = ""
		session.Submit(ctx, "hello")

		turns := session.Turns()
		Expect(turns[len(turns)-1].Text).To(Equal(chat.NoReplyText))
	})

	It("turns an exchange error into a single system error turn", func() {
		ex.err = errors.New("request failed with status 500")
		session.Submit(ctx, "hello")

		turns := session.Turns()
		Expect(turns).To(HaveLen(3))
		Expect(turns[2].Role).To(Equal(chat.RoleAssistant))
		Expect(turns[2].Text).To(Equal("System error: request failed with status 500"))
		Expect(session.Busy()).To(BeFalse())
	})

	It("recovers a panicking exchanger", func() {
		s := chat.NewSession(chat.ExchangerFunc(func(context.Context, string) (string, error) {
			panic("boom")
		}), chat.WithoutGreeting())

		Expect(func() { s.Submit(ctx, "hello") }).NotTo(Panic())
		turns := s.Turns()
		Expect(turns).To(HaveLen(2))
		Expect(turns[1].Text).To(HavePrefix("System error: "))
		Expect(turns[1].Text).To(ContainSubstring("boom"))
		Expect(s.Busy()).To(BeFalse())
	})

	It("keeps turns in submission order", func() {
		session.Submit(ctx, "one")
		session.Submit(ctx, "two")

		var texts []string
		for _, t := range session.Turns() {
			texts = append(texts, t.Text)
		}
		Expect(texts).To(Equal([]string{chat.Greeting, "one", "pong", "two", "pong"}))
	})

	It("returns a copy of the turns", func() {
		turns := session.Turns()
		turns[0].Text = "mutated"
		Expect(session.Turns()[0].Text).To(Equal(chat.Greeting))
	})

	Describe("Begin and Complete", func() {
		It("split a submission across the update loop", func() {
			message, ok := session.Begin(" hi ")
			Expect(ok).To(BeTrue())
			Expect(message).To(Equal("hi"))
			Expect(session.Busy()).To(BeTrue())

			turn := session.Complete("hello back", nil)
			Expect(turn.Text).To(Equal("hello back"))
			Expect(session.Busy()).To(BeFalse())
			Expect(session.Turns()).To(HaveLen(3))
		})
	})
})

var _ = Describe("ReplyText", func() {
	DescribeTable("maps exchange outcomes",
		func(text string, err error, expected string) {
			Expect(chat.ReplyText(text, err)).To(Equal(expected))
		},
		Entry("text", "answer", nil, "answer"),
		Entry("no text", "", nil, "Error generating response."),
		Entry("error", "ignored", errors.New("dial tcp: refused"), "System error: dial tcp: refused"),
		Entry("error without message", "", errors.New(""), "System error. Try again."),
	)
})
