package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/tailored-agentic-units/groupchat/core/protocol"
)

// ConsolePresenter is the plain line-oriented fallback for terminals where
// the full-screen TUI is unwanted. It prints each new message once with a
// sender prefix and reads human turns line by line.
type ConsolePresenter struct {
	mu       sync.Mutex
	out      io.Writer
	lines    chan string
	readErr  error
	rendered int
}

// NewConsolePresenter creates a ConsolePresenter reading from in and writing
// to out. A reader goroutine pumps lines from in for the presenter's
// lifetime; it exits when the stream ends.
func NewConsolePresenter(in io.Reader, out io.Writer) *ConsolePresenter {
	p := &ConsolePresenter{
		out:   out,
		lines: make(chan string),
	}
	go p.pump(in)
	return p
}

func (p *ConsolePresenter) pump(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		p.lines <- scanner.Text()
	}

	p.mu.Lock()
	p.readErr = scanner.Err()
	p.mu.Unlock()
	close(p.lines)
}

// Render prints messages not yet shown. Snapshots are append-only, so the
// suffix past the last rendered index is exactly the new material.
func (p *ConsolePresenter) Render(snapshot []protocol.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.rendered > len(snapshot) {
		p.rendered = 0
	}
	for _, msg := range snapshot[p.rendered:] {
		fmt.Fprintf(p.out, "[%s] %s: %s\n",
			msg.Timestamp.Format("15:04:05"), msg.Sender, msg.Content)
	}
	p.rendered = len(snapshot)
}

// AwaitInput prompts and blocks until the human submits a line, the input
// stream ends (io.EOF), or ctx is cancelled.
func (p *ConsolePresenter) AwaitInput(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fmt.Fprint(p.out, "> ")
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case text, ok := <-p.lines:
		if !ok {
			p.mu.Lock()
			defer p.mu.Unlock()
			if p.readErr != nil {
				return "", p.readErr
			}
			return "", io.EOF
		}
		return text, nil
	}
}
