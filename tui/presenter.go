package tui

import (
	"context"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tailored-agentic-units/groupchat/core/protocol"
)

// Presenter bridges the turn engine, running on its own goroutine, to the
// bubbletea program. Render forwards history snapshots into the event loop;
// AwaitInput blocks on the channel the screen submits human turns to.
type Presenter struct {
	mu      sync.Mutex
	program *tea.Program
	inputs  <-chan string
}

// NewPresenter creates a Presenter reading human turns from inputs. Attach
// must be called with the running program before the engine starts; Render
// calls before that are dropped.
func NewPresenter(inputs <-chan string) *Presenter {
	return &Presenter{inputs: inputs}
}

// Attach binds the presenter to the running program.
func (p *Presenter) Attach(program *tea.Program) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.program = program
}

// Render forwards a history snapshot into the program's event loop.
func (p *Presenter) Render(snapshot []protocol.Message) {
	p.send(snapshotMsg{messages: snapshot})
}

// AwaitInput blocks until the human submits a line, the screen closes the
// input channel (io.EOF), or ctx is cancelled.
func (p *Presenter) AwaitInput(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case text, ok := <-p.inputs:
		if !ok {
			return "", io.EOF
		}
		return text, nil
	}
}

// NotifyDone tells the screen the engine has terminated so the program can
// quit. err is the engine's exit error, shown before shutdown.
func (p *Presenter) NotifyDone(err error) {
	p.send(sessionDoneMsg{err: err})
}

func (p *Presenter) send(msg tea.Msg) {
	p.mu.Lock()
	program := p.program
	p.mu.Unlock()
	if program != nil {
		program.Send(msg)
	}
}
