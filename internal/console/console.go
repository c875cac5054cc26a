// Package console owns the terminal: a single redrawable prompt line,
// gated output of session events, and a line reader feeding the
// session. Output chrome (color, kind prefixes, the prompt itself)
// only appears when stdout is an interactive terminal.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Kind classifies a console event.
type Kind int

const (
	// Incoming is payload data received over the connection.
	Incoming Kind = iota
	// Control is session chrome: connected/disconnected banners and
	// the like. Dropped when output is not a terminal.
	Control
	// Error is a non-fatal session error. Dropped when output is not
	// a terminal.
	Error
)

// Event is one line of session output.
type Event struct {
	Kind Kind
	Text string
}

const prompt = "> "

// Console is the terminal endpoint of a session. Print may be called
// while the reader goroutine is running; all terminal writes go
// through one mutex so event lines and the prompt never interleave.
type Console struct {
	mu          sync.Mutex
	in          io.Reader
	out         io.Writer
	termOut     *termenv.Output
	interactive bool
	plain       bool
	paused      bool
	lines       chan string
}

// Option configures a Console.
type Option func(*Console)

// WithNoColor strips all color from event output.
func WithNoColor() Option {
	return func(c *Console) {
		c.termOut = termenv.NewOutput(c.out, termenv.WithProfile(termenv.Ascii))
	}
}

// WithPlainOutput suppresses color, kind prefixes and the prompt.
// Used by batch mode, where output must stay script-clean.
func WithPlainOutput() Option {
	return func(c *Console) { c.plain = true }
}

// New builds a Console on the given streams. Interactivity is decided
// by whether out is a terminal; tests pass plain buffers and exercise
// the non-interactive path.
func New(in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		in:    in,
		out:   out,
		lines: make(chan string),
	}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		c.interactive = true
	}
	c.termOut = termenv.NewOutput(out)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run reads input lines until EOF and delivers them on Lines. The
// channel is closed when the input stream ends, which the session
// treats as the user ending the terminal session.
func (c *Console) Run() {
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		c.lines <- scanner.Text()
	}
	close(c.lines)
}

// Lines delivers committed input lines. Closed on end of input.
func (c *Console) Lines() <-chan string { return c.lines }

// Print renders one event. Interactive output clears the prompt line,
// writes the decorated event and redraws the prompt. Non-interactive
// output passes Incoming payloads through verbatim and drops
// everything else, so pipes only ever see data.
func (c *Console) Print(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.interactive {
		if ev.Kind == Incoming {
			fmt.Fprintln(c.out, ev.Text)
		}
		return
	}

	if c.plain {
		fmt.Fprintln(c.out, ev.Text)
		return
	}
	c.clearLine()
	styled := c.termOut.String(kindPrefix(ev.Kind) + ev.Text).Foreground(c.termOut.Color(kindColor(ev.Kind)))
	fmt.Fprintln(c.out, styled)
	c.drawPrompt()
}

// Prompt redraws the prompt line, called after an input line has been
// consumed by the session.
func (c *Console) Prompt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drawPrompt()
}

// Pause hides the prompt while no connection is active, so the
// terminal does not pretend keystrokes are going anywhere.
func (c *Console) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = true
	if c.interactive && !c.plain {
		c.clearLine()
	}
}

// Resume restores the prompt after a connection becomes active.
func (c *Console) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = false
	c.drawPrompt()
}

func (c *Console) clearLine() {
	fmt.Fprint(c.out, "\r")
	c.termOut.ClearLine()
}

func (c *Console) drawPrompt() {
	if c.interactive && !c.plain && !c.paused {
		fmt.Fprint(c.out, prompt)
	}
}

func kindPrefix(k Kind) string {
	switch k {
	case Incoming:
		return "< "
	case Error:
		return "error: "
	default:
		return ""
	}
}

// ANSI palette indexes, resolved against the output's color profile.
func kindColor(k Kind) string {
	switch k {
	case Incoming:
		return "6" // cyan
	case Error:
		return "1" // red
	default:
		return "2" // green
	}
}
