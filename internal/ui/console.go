package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
)

// ErrInputClosed reports that the input stream ended (EOF or interrupt).
// It is fatal to the enclosing stage.
var ErrInputClosed = errors.New("input closed")

// Prompter is the blocking user-input contract consumed by the stage
// runners.
type Prompter interface {
	// ReadLine blocks for one line of user input.
	ReadLine() (string, error)

	// Ask prints a question and blocks for the answer.
	Ask(question string) (string, error)

	// Confirm prints a yes/no question and returns the decision.
	// Anything other than an explicit yes declines.
	Confirm(question string) (bool, error)
}

// Printer is the output contract consumed by the stage runners.
type Printer interface {
	Assistant(msg string)
	System(msg string)
	Error(msg string)
	Markdown(content string)
}

// Console is a line-oriented terminal frontend: styled output, blocking
// reads, markdown rendering for advice and journal previews.
type Console struct {
	in       *bufio.Reader
	out      io.Writer
	renderer *glamour.TermRenderer
}

// NewConsole creates a console over the given streams.
func NewConsole(in io.Reader, out io.Writer) *Console {
	renderer, _ := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(100),
	)
	return &Console{
		in:       bufio.NewReader(in),
		out:      out,
		renderer: renderer,
	}
}

// ReadLine blocks for one line of input. EOF maps to ErrInputClosed.
func (c *Console) ReadLine() (string, error) {
	fmt.Fprint(c.out, promptStyle.Render(">> "))
	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Ask prints a question and blocks for the answer.
func (c *Console) Ask(question string) (string, error) {
	c.Assistant(question)
	return c.ReadLine()
}

// Confirm asks a yes/no question. Only "y" or "yes" accepts.
func (c *Console) Confirm(question string) (bool, error) {
	c.System(question + " [y/N]")
	answer, err := c.ReadLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Assistant prints an assistant message.
func (c *Console) Assistant(msg string) {
	fmt.Fprintln(c.out, assistantStyle.Render(msg))
}

// System prints a system notice.
func (c *Console) System(msg string) {
	fmt.Fprintln(c.out, systemStyle.Render(msg))
}

// Error prints an error notice.
func (c *Console) Error(msg string) {
	fmt.Fprintln(c.out, errorStyle.Render(msg))
}

// Markdown renders markdown content, falling back to plain text when the
// renderer is unavailable.
func (c *Console) Markdown(content string) {
	if c.renderer != nil {
		if rendered, err := c.renderer.Render(content); err == nil {
			fmt.Fprint(c.out, rendered)
			return
		}
	}
	fmt.Fprintln(c.out, content)
}
