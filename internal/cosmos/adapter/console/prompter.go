package console

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
)

// ErrInputClosed is returned once no further input can be read.
var ErrInputClosed = stderrors.New("input closed")

// Prompter reads one line of user input after printing a label.
type Prompter interface {
	Prompt(label string) (string, error)
	Close() error
}

// NewPrompter uses a line editor with history on terminals and a plain line
// reader otherwise.
func NewPrompter(in *os.File, out io.Writer) Prompter {
	if isatty.IsTerminal(in.Fd()) && liner.TerminalSupported() {
		return NewLinerPrompter()
	}
	return NewReaderPrompter(in, out)
}

// LinerPrompter reads from the terminal with line editing.
type LinerPrompter struct {
	state *liner.State
}

func NewLinerPrompter() *LinerPrompter {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	return &LinerPrompter{state: state}
}

func (p *LinerPrompter) Prompt(label string) (string, error) {
	line, err := p.state.Prompt(label)
	switch {
	case err == liner.ErrPromptAborted, err == io.EOF:
		return "", ErrInputClosed
	case err != nil:
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	if strings.TrimSpace(line) != "" {
		p.state.AppendHistory(line)
	}
	return strings.TrimSpace(line), nil
}

// Close restores the terminal mode.
func (p *LinerPrompter) Close() error {
	return p.state.Close()
}

// ReaderPrompter reads newline-terminated input from any reader.
type ReaderPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewReaderPrompter(in io.Reader, out io.Writer) *ReaderPrompter {
	return &ReaderPrompter{in: bufio.NewReader(in), out: out}
}

func (p *ReaderPrompter) Prompt(label string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := p.in.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimSpace(line), nil
		}
		if err == io.EOF {
			return "", ErrInputClosed
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (p *ReaderPrompter) Close() error {
	return nil
}
