package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/papercomputeco/aiterm/pkg/chat"
	"github.com/papercomputeco/aiterm/pkg/cliui"
)

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true).Render("you> ")
	assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("assistant> ")
)

// runPlain drives the session from a line-oriented prompt. /exit or EOF ends it.
func runPlain(ctx context.Context, session *chat.Session, in io.Reader, out io.Writer, target string) error {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s %s\n\n", cliui.KeyStyle.Render("Connected to:"), cliui.NameStyle.Render(target))

	for _, turn := range session.Turns() {
		printTurn(out, turn)
	}
	fmt.Fprintf(out, "  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, userPrompt)
		if !scanner.Scan() {
			break
		}

		input := scanner.Text()
		if strings.TrimSpace(input) == "/exit" {
			break
		}

		if !session.Submit(ctx, input) {
			continue
		}

		turns := session.Turns()
		printTurn(out, turns[len(turns)-1])
		fmt.Fprintln(out)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(out)
	return nil
}

func printTurn(out io.Writer, turn chat.Turn) {
	if turn.Role != chat.RoleAssistant {
		return
	}
	fmt.Fprintf(out, "%s%s %s\n", assistantPrompt, turn.Text, cliui.DimStyle.Render("["+turn.Timestamp()+"]"))
}
