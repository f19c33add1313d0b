package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// printer writes the status lines shown to the user.
type printer struct {
	w       io.Writer
	success lipgloss.Style
	failure lipgloss.Style
	warning lipgloss.Style
	label   lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	if !shouldUseColor(w) {
		plain := lipgloss.NewStyle()
		return &printer{w: w, success: plain, failure: plain, warning: plain, label: plain}
	}
	r := lipgloss.NewRenderer(w)
	return &printer{
		w:       w,
		success: r.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		failure: r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		warning: r.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		label:   r.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// shouldUseColor reports whether w is an interactive terminal that accepts
// styling. NO_COLOR always wins.
func shouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *printer) Success(format string, args ...any) {
	fmt.Fprintln(p.w, p.success.Render("✓"), fmt.Sprintf(format, args...))
}

func (p *printer) Failure(format string, args ...any) {
	fmt.Fprintln(p.w, p.failure.Render("✗"), fmt.Sprintf(format, args...))
}

func (p *printer) Warning(format string, args ...any) {
	fmt.Fprintln(p.w, p.warning.Render("⚠"), fmt.Sprintf(format, args...))
}

func (p *printer) Line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Field prints an indented "label: value" pair.
func (p *printer) Field(label string, value any) {
	fmt.Fprintf(p.w, "  %s %v\n", p.label.Render(label+":"), value)
}

// truncate shortens s to n runes, appending an ellipsis when cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
