// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package conflict

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/SYKhayyat/docx2org/pkg/types"
)

// Choice is the operator's answer to a conflict prompt.
type Choice string

const (
	ChoiceOverwrite    Choice = "o"
	ChoiceOverwriteAll Choice = "O"
	ChoiceSkip         Choice = "s"
	ChoiceSkipAll      Choice = "S"
	ChoiceRename       Choice = "r"
	ChoiceRenameAll    Choice = "R"
)

// Policy returns the policy the choice applies.
func (c Choice) Policy() types.ConflictPolicy {
	switch c {
	case ChoiceOverwrite, ChoiceOverwriteAll:
		return types.PolicyOverwrite
	case ChoiceSkip, ChoiceSkipAll:
		return types.PolicySkip
	case ChoiceRename, ChoiceRenameAll:
		return types.PolicyRename
	}
	return ""
}

// All reports whether the choice applies to every remaining conflict.
func (c Choice) All() bool {
	return c == ChoiceOverwriteAll || c == ChoiceSkipAll || c == ChoiceRenameAll
}

// ParseChoice maps a single response token to a Choice. Letters are case
// sensitive: upper case applies to all remaining conflicts. The words
// overwrite, skip, and rename are accepted for the single-file choices.
func ParseChoice(token string) (Choice, error) {
	token = strings.TrimSpace(token)
	switch token {
	case "o", "O", "s", "S", "r", "R":
		return Choice(token), nil
	}
	switch strings.ToLower(token) {
	case "overwrite":
		return ChoiceOverwrite, nil
	case "skip":
		return ChoiceSkip, nil
	case "rename":
		return ChoiceRename, nil
	}
	return "", &InputError{Input: token}
}

// InputError reports a response that is not one of the offered choices.
type InputError struct {
	Input string
}

func (e *InputError) Error() string {
	if e.Input == "" {
		return "empty response: enter o, O, s, S, r, or R"
	}
	return fmt.Sprintf("invalid choice %q: enter o, O, s, S, r, or R", e.Input)
}

// Prompter asks the operator how to handle an existing output file. Choose
// blocks until a valid answer is read, the input fails, or ctx is done.
type Prompter interface {
	Choose(ctx context.Context, path string) (Choice, error)
}

// line is one read from the prompter's input.
type line struct {
	text string
	err  error
}

// TerminalPrompter reads answers line by line from in and writes prompts to out.
// Input is read on a background goroutine; a line that arrives after a
// cancelled prompt is kept for the next one.
type TerminalPrompter struct {
	in    io.Reader
	out   io.Writer
	once  sync.Once
	lines chan line
}

// NewTerminalPrompter returns a prompter over the given streams, typically
// os.Stdin and os.Stdout.
func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{in: in, out: out, lines: make(chan line, 1)}
}

func (p *TerminalPrompter) readLines() {
	r := bufio.NewReader(p.in)
	for {
		text, err := r.ReadString('\n')
		p.lines <- line{text: text, err: err}
		if err != nil {
			return
		}
	}
}

// next returns the next input line, or ctx.Err() if ctx is done first.
// After the input fails, every call reports io.EOF or the read error.
func (p *TerminalPrompter) next(ctx context.Context) (line, error) {
	p.once.Do(func() { go p.readLines() })
	select {
	case <-ctx.Done():
		return line{}, ctx.Err()
	case l, ok := <-p.lines:
		if !ok {
			return line{err: io.EOF}, nil
		}
		if l.err != nil {
			close(p.lines)
		}
		return l, nil
	}
}

// Choose shows the colliding path and re-prompts until a valid choice is
// entered. Reaching the end of input before a valid answer is an error, and
// so is cancellation of ctx.
func (p *TerminalPrompter) Choose(ctx context.Context, path string) (Choice, error) {
	fmt.Fprintf(p.out, "\nFile already exists: %s\n", path)
	fmt.Fprintln(p.out, "  [o] overwrite    [O] overwrite all remaining conflicts")
	fmt.Fprintln(p.out, "  [s] skip         [S] skip all remaining conflicts")
	fmt.Fprintln(p.out, "  [r] rename       [R] rename all remaining conflicts")

	for {
		fmt.Fprint(p.out, "Your choice [o/O/s/S/r/R]: ")
		l, cerr := p.next(ctx)
		if cerr != nil {
			fmt.Fprintln(p.out)
			return "", fmt.Errorf("waiting for conflict choice: %w", cerr)
		}
		text, err := l.text, l.err
		if err != nil && !(errors.Is(err, io.EOF) && text != "") {
			if errors.Is(err, io.EOF) {
				return "", fmt.Errorf("reading conflict choice: %w", io.ErrUnexpectedEOF)
			}
			return "", fmt.Errorf("reading conflict choice: %w", err)
		}

		choice, perr := ParseChoice(text)
		if perr == nil {
			return choice, nil
		}
		fmt.Fprintln(p.out, perr)
		if err != nil {
			return "", fmt.Errorf("reading conflict choice: %w", io.ErrUnexpectedEOF)
		}
	}
}
