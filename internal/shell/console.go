package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const promptText = "> "

// Console is the line-oriented surface the form reads commands from and renders to.
type Console interface {
	io.Writer
	ReadLine() (string, error)
}

type plainConsole struct {
	scanner *bufio.Scanner
	output  io.Writer
}

// NewPlainConsole reads newline-terminated commands from input and writes to output.
func NewPlainConsole(input io.Reader, output io.Writer) Console {
	return &plainConsole{scanner: bufio.NewScanner(input), output: output}
}

func (console *plainConsole) Write(data []byte) (int, error) {
	return console.output.Write(data)
}

func (console *plainConsole) ReadLine() (string, error) {
	if _, promptError := io.WriteString(console.output, promptText); promptError != nil {
		return "", promptError
	}
	if !console.scanner.Scan() {
		if scanError := console.scanner.Err(); scanError != nil {
			return "", scanError
		}
		return "", io.EOF
	}
	return strings.TrimRight(console.scanner.Text(), "\r"), nil
}

type terminalConsole struct {
	terminal *term.Terminal
}

func (console *terminalConsole) Write(data []byte) (int, error) {
	return console.terminal.Write(data)
}

func (console *terminalConsole) ReadLine() (string, error) {
	return console.terminal.ReadLine()
}

// OpenConsole returns a raw-mode line editor when input is a terminal and a plain
// line reader otherwise. The returned restore function must be called on exit.
func OpenConsole(input *os.File, output *os.File) (Console, func() error, error) {
	inputDescriptor := int(input.Fd())
	if !term.IsTerminal(inputDescriptor) {
		return NewPlainConsole(input, output), func() error { return nil }, nil
	}
	previousState, rawError := term.MakeRaw(inputDescriptor)
	if rawError != nil {
		return nil, nil, fmt.Errorf("enable raw terminal mode: %w", rawError)
	}
	terminal := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{input, output}, promptText)
	if width, height, sizeError := term.GetSize(inputDescriptor); sizeError == nil {
		_ = terminal.SetSize(width, height)
	}
	restore := func() error {
		return term.Restore(inputDescriptor, previousState)
	}
	return &terminalConsole{terminal: terminal}, restore, nil
}
