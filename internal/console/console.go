// Package console prints the user-facing lines of a provider call: skip
// notices, errors, results and saved files.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/k0kubun/pp/v3"
)

// Printer writes console output. It is safe for concurrent use.
type Printer struct {
	mu       sync.Mutex
	out      io.Writer
	markdown bool
	pretty   *pp.PrettyPrinter

	heading *color.Color
	skip    *color.Color
	fail    *color.Color
	success *color.Color
	notice  *color.Color
}

// Option configures a Printer.
type Option func(*Printer)

// WithMarkdown renders chat answers as terminal markdown.
func WithMarkdown(enabled bool) Option {
	return func(p *Printer) {
		p.markdown = enabled
	}
}

// WithColor forces colour on or off regardless of terminal detection.
func WithColor(enabled bool) Option {
	return func(p *Printer) {
		for _, c := range []*color.Color{p.heading, p.skip, p.fail, p.success, p.notice} {
			if enabled {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
		p.pretty.SetColoringEnabled(enabled)
	}
}

// New returns a Printer writing to out, or to stdout when out is nil.
func New(out io.Writer, opts ...Option) *Printer {
	if out == nil {
		out = os.Stdout
	}
	pretty := pp.New()
	pretty.SetOutput(out)
	pretty.SetColoringEnabled(!color.NoColor)

	p := &Printer{
		out:     out,
		pretty:  pretty,
		heading: color.New(color.FgCyan, color.Bold),
		skip:    color.New(color.FgYellow),
		fail:    color.New(color.FgRed),
		success: color.New(color.FgGreen),
		notice:  color.New(color.FgMagenta),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Discard returns a Printer that prints nothing.
func Discard() *Printer {
	return New(io.Discard, WithColor(false))
}

func (p *Printer) println(c *color.Color, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c.Fprintln(p.out, msg)
}

// Heading announces a call.
func (p *Printer) Heading(format string, args ...interface{}) {
	p.println(p.heading, "\n--- "+fmt.Sprintf(format, args...)+" ---")
}

// Skip reports a call that was not attempted.
func (p *Printer) Skip(format string, args ...interface{}) {
	p.println(p.skip, fmt.Sprintf(format, args...))
}

// Error reports a failed call.
func (p *Printer) Error(format string, args ...interface{}) {
	p.println(p.fail, fmt.Sprintf(format, args...))
}

// Notice reports a recoverable problem, such as a missing optional image.
func (p *Printer) Notice(format string, args ...interface{}) {
	p.println(p.notice, fmt.Sprintf(format, args...))
}

// Saved reports a file written to disk.
func (p *Printer) Saved(what, path string) {
	p.println(p.success, fmt.Sprintf("%s saved to %s", what, path))
}

// Line prints plain text.
func (p *Printer) Line(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Text prints a labelled block of model output, rendered as markdown when enabled.
func (p *Printer) Text(label, text string) {
	body := text
	if p.markdown {
		if rendered, err := renderMarkdown(text); err == nil {
			body = strings.TrimRight(rendered, "\n")
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.success.Fprintln(p.out, label+":")
	fmt.Fprintln(p.out, body)
}

// Metadata pretty-prints an arbitrary value under label.
func (p *Printer) Metadata(label string, v interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s: ", label)
	p.pretty.Println(v)
}

func renderMarkdown(text string) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return "", err
	}
	return r.Render(text)
}
