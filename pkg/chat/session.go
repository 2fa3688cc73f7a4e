// Package chat holds the state of one terminal chat session: the ordered,
// append-only list of turns and the single busy flag that is raised while a
// message is in flight.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/papercomputeco/aiterm/pkg/llm"
	"github.com/papercomputeco/aiterm/pkg/logger"
)

const (
	// Greeting is the assistant turn every new session starts with.
	Greeting = "Your Intelligent ChatBot is ready. Ask a problem."

	// NoReplyText is shown when a reply carries no candidate text.
	NoReplyText = "Error generating response."

	// GenericErrorText is shown when an exchange fails without a message.
	GenericErrorText = "System error. Try again."

	errorPrefix = "System error: "
)

var errNoExchanger = errors.New("no exchanger configured")

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = llm.RoleUser
	RoleAssistant Role = llm.RoleAssistant
)

// Turn is one displayed chat entry. Turns are never mutated once appended.
type Turn struct {
	Role Role
	Text string
	Time time.Time
}

// Timestamp renders the turn's local wall-clock time for display.
func (t Turn) Timestamp() string {
	return t.Time.Local().Format("15:04:05")
}

// Exchanger sends one user message and returns the display text of the
// reply. An empty string means the reply carried no text.
type Exchanger interface {
	Exchange(ctx context.Context, message string) (string, error)
}

// ExchangerFunc adapts a function to the Exchanger interface.
type ExchangerFunc func(ctx context.Context, message string) (string, error)

// Exchange calls f(ctx, message).
func (f ExchangerFunc) Exchange(ctx context.Context, message string) (string, error) {
	return f(ctx, message)
}

// Option configures a Session created with NewSession.
type Option func(*Session)

// WithClock overrides the clock used to stamp turns.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithoutGreeting starts the session with no turns.
func WithoutGreeting() Option {
	return func(s *Session) {
		s.greet = false
	}
}

// WithLogger sets the logger used to record failed exchanges.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// Session is the in-memory state of one conversation.
//
// Only the busy flag models concurrency. Overlapping submissions are not
// rejected: callers that care (the terminal UI) check Busy before submitting.
type Session struct {
	mu     sync.Mutex
	ex     Exchanger
	turns  []Turn
	busy   bool
	greet  bool
	now    func() time.Time
	logger *slog.Logger
}

// NewSession creates a session that sends messages through ex.
func NewSession(ex Exchanger, opts ...Option) *Session {
	s := &Session{
		ex:     ex,
		greet:  true,
		now:    time.Now,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.greet {
		s.turns = append(s.turns, Turn{Role: RoleAssistant, Text: Greeting, Time: s.now()})
	}

	return s
}

// Turns returns a copy of the session's turns in display order.
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Busy reports whether a message is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Begin trims input and, if anything is left, appends it as a user turn and
// raises the busy flag. It returns the trimmed message and whether a turn was
// appended; whitespace-only input is a no-op.
func (s *Session) Begin(input string) (string, bool) {
	message := strings.TrimSpace(input)
	if message == "" {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = append(s.turns, Turn{Role: RoleUser, Text: message, Time: s.now()})
	s.busy = true
	return message, true
}

// Complete appends exactly one assistant turn for the outcome of an exchange
// and lowers the busy flag. A non-nil err wins over text.
func (s *Session) Complete(text string, err error) Turn {
	turn := Turn{Role: RoleAssistant, Text: ReplyText(text, err)}

	s.mu.Lock()
	defer s.mu.Unlock()

	turn.Time = s.now()
	s.turns = append(s.turns, turn)
	s.busy = false
	return turn
}

// Submit runs Begin, the exchange and Complete in sequence. It returns false
// when input was empty and nothing happened. Exchange failures, including
// panics, end up as an assistant turn and are never returned.
func (s *Session) Submit(ctx context.Context, input string) bool {
	message, ok := s.Begin(input)
	if !ok {
		return false
	}

	text, err := s.exchange(ctx, message)
	if err != nil {
		s.logger.Warn("exchange failed", "error", err)
	}
	s.Complete(text, err)
	return true
}

// Exchange performs the network call for a message returned by Begin without
// touching session state. The terminal UI runs it off the update loop.
func (s *Session) Exchange(ctx context.Context, message string) (string, error) {
	return s.exchange(ctx, message)
}

func (s *Session) exchange(ctx context.Context, message string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("exchange panicked: %v", r)
		}
	}()

	if s.ex == nil {
		return "", errNoExchanger
	}
	return s.ex.Exchange(ctx, message)
}

// ReplyText maps the outcome of an exchange to the assistant turn text.
func ReplyText(text string, err error) string {
	if err != nil {
		msg := strings.TrimSpace(err.Error())
		if msg == "" {
			return GenericErrorText
		}
		return errorPrefix + msg
	}
	if text == "" {
		return NoReplyText
	}
	return text
}
