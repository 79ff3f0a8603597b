package actions

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// AutoConfirm accepts every confirmation
type AutoConfirm struct{}

// Confirm always says yes
func (AutoConfirm) Confirm(context.Context, string) (bool, error) { return true, nil }

// TerminalPrompter asks on out and reads a y/n answer from in
type TerminalPrompter struct {
	mu     sync.Mutex
	reader *bufio.Reader
	out    io.Writer
}

// NewTerminalPrompter creates a prompter reading answers from in
func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{reader: bufio.NewReader(in), out: out}
}

// Confirm accepts "y", "yes", "s" and "si"/"sí"; anything else, including EOF,
// is a no
func (p *TerminalPrompter) Confirm(ctx context.Context, message string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := fmt.Fprintf(p.out, "%s [y/N]: ", message); err != nil {
		return false, err
	}
	answer, err := p.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "s", "si", "sí":
		return true, nil
	default:
		return false, nil
	}
}

// LogNotifier writes alerts to a logger
type LogNotifier struct {
	Logger *log.Logger
}

// Alert logs message at warn level
func (n LogNotifier) Alert(_ context.Context, message string) {
	n.Logger.Warn(message)
}

// WriterNotifier prints alerts, one per line
type WriterNotifier struct {
	Out io.Writer
}

// Alert prints message on its own line
func (n WriterNotifier) Alert(_ context.Context, message string) {
	fmt.Fprintln(n.Out, message)
}
