package term

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter reads judge input line by line. Reads block indefinitely; the
// judge takes as long as they need.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter builds a Prompter reading from in and echoing prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Line prints the prompt and returns the next trimmed input line.
func (p *Prompter) Line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question, defaulting to no.
func (p *Prompter) Confirm(question string) (bool, error) {
	answer, err := p.Line(question + " (y/N): ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}
