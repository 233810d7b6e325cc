// Package render implements a callparse.Receiver that renders a
// conversation to a terminal, styled with a glamour/lipgloss stack for
// markdown.
package render

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/callmesh/dialogrt/internal/callparse"
	"github.com/callmesh/dialogrt/internal/dispatch"
)

var (
	mentionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))
	headlineStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("244"))
	infoStyle     = lipgloss.NewStyle().Faint(true)
	routeStyle    = lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("208"))
)

// TermReceiver renders parsed events to out as they arrive: markdown is
// passed through a glamour renderer per finished segment (glamour needs a
// complete document to lay out, so chunks are buffered and rendered at
// MarkdownFinish), while call and code events are rendered with lipgloss
// styling directly as they stream.
type TermReceiver struct {
	callparse.NopReceiver

	out      io.Writer
	renderer *glamour.TermRenderer
	width    int

	// Router, if set, is consulted at CallFinish to report whether the
	// call's mention resolved to a registered agent, was denied by an
	// allow-list, or has no exact match.
	Router *dispatch.Router

	mdBuf      strings.Builder
	curMention string
}

// NewTermReceiver constructs a receiver that writes styled output to out,
// wrapping markdown at width columns.
func NewTermReceiver(out io.Writer, width int) (*TermReceiver, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("render: build glamour renderer: %w", err)
	}
	return &TermReceiver{out: out, renderer: r, width: width}, nil
}

func (t *TermReceiver) MarkdownChunk(text string) error {
	t.mdBuf.WriteString(text)
	return nil
}

func (t *TermReceiver) MarkdownFinish() error {
	src := t.mdBuf.String()
	t.mdBuf.Reset()
	if strings.TrimSpace(src) == "" {
		return nil
	}
	out, err := t.renderer.Render(src)
	if err != nil {
		slog.Warn("render: glamour render failed, falling back to raw text", "error", err)
		out = src
	}
	_, err = io.WriteString(t.out, out)
	return err
}

func (t *TermReceiver) CallStart(firstMention string) error {
	t.curMention = firstMention
	_, err := io.WriteString(t.out, mentionStyle.Render("@"+firstMention))
	return err
}

func (t *TermReceiver) CallHeadLineChunk(text string) error {
	_, err := io.WriteString(t.out, headlineStyle.Render(text))
	return err
}

func (t *TermReceiver) CallHeadLineFinish() error {
	_, err := io.WriteString(t.out, "\n")
	return err
}

func (t *TermReceiver) CallBodyStart(infoLine string) error {
	if infoLine != "" {
		_, err := io.WriteString(t.out, infoStyle.Render(infoLine)+"\n")
		return err
	}
	return nil
}

func (t *TermReceiver) CallBodyChunk(text string) error {
	_, err := io.WriteString(t.out, text)
	return err
}

func (t *TermReceiver) CallBodyFinish(endQuote string) error {
	if endQuote != "" {
		_, err := io.WriteString(t.out, "\n"+infoStyle.Render(endQuote))
		return err
	}
	return nil
}

func (t *TermReceiver) CallFinish(callID string) error {
	if _, err := io.WriteString(t.out, "\n"+infoStyle.Render("  call "+callID)+"\n"); err != nil {
		return err
	}
	if t.Router == nil {
		return nil
	}
	d := t.Router.Route(callparse.Call{FirstMention: t.curMention, CallID: callID})
	_, err := io.WriteString(t.out, routeStyle.Render("  "+routeSummary(d))+"\n")
	return err
}

// routeSummary renders a one-line human-readable summary of a routing
// decision for CallFinish's trailing status line.
func routeSummary(d dispatch.Decision) string {
	switch {
	case !d.Allowed:
		if d.Suggestion != "" {
			return fmt.Sprintf("denied: @%s is not allow-listed (did you mean @%s?)", d.Call.FirstMention, d.Suggestion)
		}
		return fmt.Sprintf("denied: @%s is not allow-listed", d.Call.FirstMention)
	case d.Agent != nil:
		return fmt.Sprintf("routed to agent %q", d.Agent.Name)
	case d.Suggestion != "":
		return fmt.Sprintf("no agent named @%s (did you mean @%s?)", d.Call.FirstMention, d.Suggestion)
	default:
		return fmt.Sprintf("no agent named @%s", d.Call.FirstMention)
	}
}

func (t *TermReceiver) CodeBlockStart(infoLine string) error {
	_, err := io.WriteString(t.out, infoStyle.Render("```"+infoLine)+"\n")
	return err
}

func (t *TermReceiver) CodeBlockChunk(text string) error {
	_, err := io.WriteString(t.out, text)
	return err
}

func (t *TermReceiver) CodeBlockFinish(string) error {
	_, err := io.WriteString(t.out, "\n"+infoStyle.Render("```")+"\n")
	return err
}
