package chatcmder

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/papercomputeco/aiterm/pkg/chat"
	"github.com/papercomputeco/aiterm/pkg/cliui"
)

func init() {
	// Force TrueColor profile to fix lipgloss color detection issue
	// See: https://github.com/charmbracelet/lipgloss/issues/439
	renderer := lipgloss.NewRenderer(os.Stdout, termenv.WithProfile(termenv.TrueColor))
	renderer.SetColorProfile(termenv.TrueColor)
	lipgloss.SetDefaultRenderer(renderer)
}

const (
	promptHost      = "root@ai-terminal:~#"
	statusBusy      = "processing..."
	statusOnline    = "online"
	thinkingText    = "ai> thinking..."
	inputPrompt     = "$ "
	inputHint       = "type your command..."
	userLabel       = "YOU"
	assistantLabel  = "AI"
	headerLines     = 2
	footerLines     = 3
	defaultWidth    = 80
	defaultHeight   = 24
	minViewportRows = 3
)

var (
	termHostStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82"))
	termBusyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	termOnlineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	termDividerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	termTimeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	termUserLabel    = cliui.UserStyle.Bold(true)
	termAsstLabel    = cliui.AssistantStyle.Bold(true)
)

type chatKeyMap struct {
	Submit key.Binding
	Scroll key.Binding
	Quit   key.Binding
}

func (k chatKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Scroll, k.Quit}
}

func (k chatKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Submit, k.Scroll, k.Quit}}
}

func defaultKeyMap() chatKeyMap {
	return chatKeyMap{
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Scroll: key.NewBinding(key.WithKeys("pgup", "pgdown"), key.WithHelp("pgup/pgdn", "scroll")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	}
}

// replyMsg carries the outcome of one exchange back into the update loop.
type replyMsg struct {
	text string
	err  error
}

type chatModel struct {
	ctx     context.Context
	session *chat.Session
	target  string

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	keys     chatKeyMap
	help     help.Model

	// rendered caches each turn's rendering at the current width.
	rendered []string
	width    int
	height   int
}

func runTUI(ctx context.Context, session *chat.Session, target string) error {
	program := bubbletea.NewProgram(newChatModel(ctx, session, target),
		bubbletea.WithContext(ctx),
		bubbletea.WithAltScreen(),
	)
	_, err := program.Run()
	return err
}

func newChatModel(ctx context.Context, session *chat.Session, target string) chatModel {
	input := textinput.New()
	input.Prompt = inputPrompt
	input.Placeholder = inputHint
	input.PromptStyle = termHostStyle
	input.Focus()

	m := chatModel{
		ctx:      ctx,
		session:  session,
		target:   target,
		viewport: viewport.New(defaultWidth, defaultHeight-headerLines-footerLines),
		input:    input,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(termBusyStyle)),
		keys:     defaultKeyMap(),
		help:     help.New(),
		width:    defaultWidth,
		height:   defaultHeight,
	}
	m.refresh()
	return m
}

func (m chatModel) Init() bubbletea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg bubbletea.Msg) (bubbletea.Model, bubbletea.Cmd) {
	switch msg := msg.(type) {
	case bubbletea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerLines-footerLines, minViewportRows)
		m.input.Width = max(msg.Width-lipgloss.Width(inputPrompt)-1, 1)
		m.rendered = nil
		m.refresh()
		return m, nil

	case replyMsg:
		m.session.Complete(msg.text, msg.err)
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.session.Busy() {
			return m, nil
		}
		var cmd bubbletea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case bubbletea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd bubbletea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) handleKey(msg bubbletea.KeyMsg) (bubbletea.Model, bubbletea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, bubbletea.Quit

	case key.Matches(msg, m.keys.Submit):
		// One message in flight at a time.
		if m.session.Busy() {
			return m, nil
		}
		message, ok := m.session.Begin(m.input.Value())
		m.input.Reset()
		if !ok {
			return m, nil
		}
		m.refresh()
		return m, bubbletea.Batch(m.exchange(message), m.spinner.Tick)

	case key.Matches(msg, m.keys.Scroll):
		var cmd bubbletea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd bubbletea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// exchange runs the network call off the update loop.
func (m chatModel) exchange(message string) bubbletea.Cmd {
	session, ctx := m.session, m.ctx
	return func() bubbletea.Msg {
		text, err := session.Exchange(ctx, message)
		return replyMsg{text: text, err: err}
	}
}

// refresh renders turns not yet in the cache, reloads the viewport and
// scrolls to the newest turn.
func (m *chatModel) refresh() {
	turns := m.session.Turns()
	for i := len(m.rendered); i < len(turns); i++ {
		m.rendered = append(m.rendered, renderTurn(turns[i], m.width))
	}

	m.viewport.SetContent(strings.Join(m.rendered, "\n\n"))
	m.viewport.GotoBottom()
}

func (m chatModel) View() string {
	var b strings.Builder

	status := termOnlineStyle.Render(statusOnline)
	if m.session.Busy() {
		status = termBusyStyle.Render(statusBusy)
	}
	b.WriteString(termHostStyle.Render(promptHost) + " " + cliui.DimStyle.Render(m.target) + "  " + status)
	b.WriteString("\n")
	b.WriteString(termDividerStyle.Render(strings.Repeat("─", max(m.width, 1))))
	b.WriteString("\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.session.Busy() {
		b.WriteString(m.spinner.View() + " " + termBusyStyle.Render(thinkingText))
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

// renderTurn lays out one turn: a "[time] LABEL" line, then the text. User
// text is right-aligned in blue; assistant text is rendered as markdown.
func renderTurn(turn chat.Turn, width int) string {
	stamp := termTimeStyle.Render("[" + turn.Timestamp() + "]")

	if turn.Role == chat.RoleUser {
		head := stamp + " " + termUserLabel.Render(userLabel)
		body := cliui.UserStyle.Render(turn.Text)
		align := lipgloss.NewStyle().Width(width).Align(lipgloss.Right)
		return align.Render(head) + "\n" + align.Render(body)
	}

	head := stamp + " " + termAsstLabel.Render(assistantLabel)
	body, err := cliui.RenderMarkdownWidth(turn.Text, width-2)
	if err != nil {
		body = cliui.AssistantStyle.Render(turn.Text)
	}
	return head + "\n" + body
}
