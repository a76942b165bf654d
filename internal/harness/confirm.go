package harness

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Response is an operator answer to a confirmation prompt.
type Response int

const (
	Proceed Response = iota
	Abort
)

// String returns "y" or "n".
func (r Response) String() string {
	if r == Proceed {
		return "y"
	}
	return "n"
}

// ConfirmationSource answers checkpoint and final-confirmation prompts.
// Confirm blocks until an answer is available.
type ConfirmationSource interface {
	Confirm(ctx context.Context, prompt string) (Response, error)
}

// Selector supplies scenario selection tokens to Dispatcher.Loop.
type Selector interface {
	Select(ctx context.Context, prompt string) (string, error)
}

// ErrInputClosed is returned when operator input ends before an answer.
var ErrInputClosed = errors.New("operator input closed")

// Terminal prompts on out and reads answers line by line from in.
// It implements both ConfirmationSource and Selector.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminal creates a terminal over in and out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// Confirm asks prompt until the operator answers y or n.
func (t *Terminal) Confirm(ctx context.Context, prompt string) (Response, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Abort, err
		}

		fmt.Fprintf(t.out, "%s (y/n): ", prompt)
		line, err := t.readLine()
		if err != nil {
			return Abort, err
		}

		switch line {
		case "y":
			return Proceed, nil
		case "n":
			return Abort, nil
		}
		fmt.Fprintln(t.out, "Please answer y or n.")
	}
}

// Select prints prompt and returns the next line, trimmed.
func (t *Terminal) Select(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(t.out, prompt)
	return t.readLine()
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", fmt.Errorf("read operator input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// ErrScriptExhausted is returned by Scripted when it runs out of answers.
var ErrScriptExhausted = errors.New("scripted input exhausted")

// Scripted replays fixed answers and records the prompts it was shown.
//
// Thread-safety: Scripted is safe for concurrent use via internal mutex.
type Scripted struct {
	mu        sync.Mutex
	responses []Response
	tokens    []string
	prompts   []string
}

// NewScripted creates a source answering confirmations with responses in order.
func NewScripted(responses ...Response) *Scripted {
	return &Scripted{responses: responses}
}

// WithTokens sets the selection tokens returned by Select, in order.
func (s *Scripted) WithTokens(tokens ...string) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = append(s.tokens, tokens...)
	return s
}

// Confirm returns the next scripted response.
func (s *Scripted) Confirm(ctx context.Context, prompt string) (Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prompts = append(s.prompts, prompt)
	if len(s.responses) == 0 {
		return Abort, fmt.Errorf("confirm %q: %w", prompt, ErrScriptExhausted)
	}
	r := s.responses[0]
	s.responses = s.responses[1:]
	return r, nil
}

// Select returns the next scripted token.
func (s *Scripted) Select(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.tokens) == 0 {
		return "", fmt.Errorf("select: %w", ErrScriptExhausted)
	}
	token := s.tokens[0]
	s.tokens = s.tokens[1:]
	return token, nil
}

// Prompts returns every confirmation prompt seen so far.
func (s *Scripted) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.prompts))
	copy(out, s.prompts)
	return out
}

// Remaining returns how many confirmation answers are left.
func (s *Scripted) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.responses)
}
