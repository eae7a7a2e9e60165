// Package ui renders the command-line output: styled status lines, indented
// blocks and markdown help.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"
)

// Width is the column budget for wrapped text.
const Width = 80

// Printer writes styled output to one stream.
type Printer struct {
	w             io.Writer
	styles        Styles
	markdownStyle string
}

// NewPrinter creates a Printer for w. Styling and markdown rendering follow
// the color capabilities of w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		w:             w,
		styles:        NewStyles(lipgloss.NewRenderer(w)),
		markdownStyle: detectMarkdownStyle(w, 100*time.Millisecond),
	}
}

// Success prints a success status line.
func (p *Printer) Success(text string) {
	p.line(p.styles.Success.Render("✓ " + text))
}

// Error prints an error status line.
func (p *Printer) Error(text string) {
	p.line(p.styles.Error.Render("✗ " + text))
}

// Warning prints a warning status line.
func (p *Printer) Warning(text string) {
	p.line(p.styles.Warning.Render("! " + text))
}

// Info prints an informational line.
func (p *Printer) Info(text string) {
	p.line(p.styles.Info.Render(text))
}

// Comment prints a dimmed line.
func (p *Printer) Comment(text string) {
	p.line(p.styles.Comment.Render(text))
}

// Text prints text wrapped to Width.
func (p *Printer) Text(text string) {
	p.line(wordwrap.String(text, Width))
}

// Block prints text verbatim, indented by spaces. Used for copy-paste content
// such as JSON fragments, so it is never wrapped.
func (p *Printer) Block(text string, spaces uint) {
	// Styled per line: a multi-line Render pads every line to the widest.
	for _, l := range strings.Split(indent.String(text, spaces), "\n") {
		p.line(p.styles.Code.Render(l))
	}
}

// List prints items as an indented bullet list.
func (p *Printer) List(items []string) {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("- " + item + "\n")
	}
	p.line(indent.String(strings.TrimRight(sb.String(), "\n"), 2))
}

// Markdown renders md with glamour. When rendering fails the source is
// printed as is.
func (p *Printer) Markdown(md string) {
	out, err := RenderMarkdown(md, p.markdownStyle)
	if err != nil {
		p.line(md)
		return
	}
	fmt.Fprint(p.w, out)
}

// Newline prints an empty line.
func (p *Printer) Newline() {
	fmt.Fprintln(p.w)
}

func (p *Printer) line(text string) {
	fmt.Fprintln(p.w, text)
}

// RenderMarkdown renders md with the named glamour standard style.
func RenderMarkdown(md, style string) (string, error) {
	opts := []glamour.TermRendererOption{
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(Width),
	}
	if style == "notty" {
		opts = append(opts, glamour.WithColorProfile(termenv.Ascii))
	}

	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return renderer.Render(md)
}

// detectMarkdownStyle picks "notty" for plain streams, otherwise dark or light
// by querying the terminal background. The query is abandoned after timeout
// since some terminals never answer.
func detectMarkdownStyle(w io.Writer, timeout time.Duration) string {
	if !isTerminal(w) {
		return "notty"
	}

	out := termenv.NewOutput(w)
	if out.Profile == termenv.Ascii {
		return "notty"
	}

	ch := make(chan string, 1)
	go func() {
		if out.HasDarkBackground() {
			ch <- "dark"
			return
		}
		ch <- "light"
	}()

	select {
	case style := <-ch:
		return style
	case <-time.After(timeout):
		return "dark"
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
