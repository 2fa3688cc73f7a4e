package chatcmder

import (
	"context"
	"errors"
	"time"

	bubbletea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/aiterm/pkg/chat"
)

var _ = Describe("Chat TUI", func() {
	var (
		calls   []string
		session *chat.Session
		model   chatModel
	)

	fixedClock := func() time.Time {
		return time.Date(2026, 1, 2, 15, 4, 5, 0, time.Local)
	}

	BeforeEach(func() {
		calls = nil
		session = chat.NewSession(chat.ExchangerFunc(func(_ context.Context, message string) (string, error) {
			calls = append(calls, message)
			if message == "fail" {
				return "", errors.New("relay down")
			}
			return "reply to " + message, nil
		}), chat.WithClock(fixedClock))
		model = newChatModel(context.Background(), session, "http://localhost:8080/api/chat")
	})

	update := func(msg bubbletea.Msg) bubbletea.Cmd {
		next, cmd := model.Update(msg)
		model = next.(chatModel)
		return cmd
	}

	typeAndSubmit := func(text string) bubbletea.Cmd {
		model.input.SetValue(text)
		return update(bubbletea.KeyMsg{Type: bubbletea.KeyEnter})
	}

	It("starts online with the greeting and the input prompt", func() {
		view := model.View()
		Expect(view).To(ContainSubstring(promptHost))
		Expect(view).To(ContainSubstring(statusOnline))
		Expect(view).To(ContainSubstring("[15:04:05]"))
		Expect(view).To(ContainSubstring(assistantLabel))
		Expect(view).To(ContainSubstring(inputPrompt))
		Expect(view).NotTo(ContainSubstring(thinkingText))
	})

	It("appends the user turn and goes busy on enter", func() {
		cmd := typeAndSubmit("  ping  ")
		Expect(cmd).NotTo(BeNil())

		Expect(session.Busy()).To(BeTrue())
		Expect(model.input.Value()).To(BeEmpty())
		turns := session.Turns()
		Expect(turns).To(HaveLen(2))
		Expect(turns[1].Role).To(Equal(chat.RoleUser))
		Expect(turns[1].Text).To(Equal("ping"))

		view := model.View()
		Expect(view).To(ContainSubstring(statusBusy))
		Expect(view).To(ContainSubstring(thinkingText))
		Expect(view).To(ContainSubstring(userLabel))
	})

	It("appends the assistant turn when the reply arrives", func() {
		typeAndSubmit("ping")

		msg := model.exchange("ping")()
		Expect(msg).To(Equal(replyMsg{text: "reply to ping"}))
		Expect(calls).To(Equal([]string{"ping"}))

		update(msg)
		Expect(session.Busy()).To(BeFalse())
		turns := session.Turns()
		Expect(turns).To(HaveLen(3))
		Expect(turns[2].Text).To(Equal("reply to ping"))

		view := model.View()
		Expect(view).To(ContainSubstring(statusOnline))
		Expect(view).To(ContainSubstring("reply"))
	})

	It("shows exchange failures as an assistant turn", func() {
		typeAndSubmit("fail")
		update(model.exchange("fail")())

		turns := session.Turns()
		Expect(turns[len(turns)-1].Text).To(Equal("System error: relay down"))
		Expect(session.Busy()).To(BeFalse())
	})

	It("ignores blank input", func() {
		cmd := typeAndSubmit("   ")
		Expect(cmd).To(BeNil())
		Expect(session.Turns()).To(HaveLen(1))
		Expect(session.Busy()).To(BeFalse())
	})

	It("ignores enter while a message is in flight", func() {
		typeAndSubmit("first")
		cmd := typeAndSubmit("second")
		Expect(cmd).To(BeNil())
		Expect(session.Turns()).To(HaveLen(2))
	})

	It("quits on ctrl+c and esc", func() {
		cmd := update(bubbletea.KeyMsg{Type: bubbletea.KeyCtrlC})
		Expect(cmd()).To(Equal(bubbletea.Quit()))

		cmd = update(bubbletea.KeyMsg{Type: bubbletea.KeyEsc})
		Expect(cmd()).To(Equal(bubbletea.Quit()))
	})

	It("re-lays out the viewport on resize", func() {
		update(bubbletea.WindowSizeMsg{Width: 120, Height: 40})
		Expect(model.viewport.Width).To(Equal(120))
		Expect(model.viewport.Height).To(Equal(40 - headerLines - footerLines))
		Expect(model.rendered).To(HaveLen(1))

		update(bubbletea.WindowSizeMsg{Width: 30, Height: 2})
		Expect(model.viewport.Height).To(Equal(minViewportRows))
	})

	It("keeps the viewport scrolled to the newest turn", func() {
		update(bubbletea.WindowSizeMsg{Width: 60, Height: 10})
		for _, m := range []string{"one", "two", "three", "four"} {
			typeAndSubmit(m)
			update(model.exchange(m)())
		}
		Expect(model.viewport.AtBottom()).To(BeTrue())
	})

	Describe("renderTurn", func() {
		It("labels user turns and keeps their text", func() {
			out := renderTurn(chat.Turn{Role: chat.RoleUser, Text: "hello", Time: fixedClock()}, 40)
			Expect(out).To(ContainSubstring("[15:04:05]"))
			Expect(out).To(ContainSubstring(userLabel))
			Expect(out).To(ContainSubstring("hello"))
		})

		It("renders assistant markdown", func() {
			out := renderTurn(chat.Turn{Role: chat.RoleAssistant, Text: "**bold** answer", Time: fixedClock()}, 40)
			Expect(out).To(ContainSubstring(assistantLabel))
			Expect(out).To(ContainSubstring("bold"))
			Expect(out).NotTo(ContainSubstring("**"))
		})
	})
})
