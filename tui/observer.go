package tui

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tailored-agentic-units/groupchat/observability"
	"github.com/tailored-agentic-units/groupchat/session"
)

// Observer translates turn-engine events into screen updates, driving the
// per-agent thinking indicator. Wire it into the session alongside a logging
// observer via observability.MultiObserver.
type Observer struct {
	mu      sync.Mutex
	program *tea.Program
}

// NewObserver creates an Observer. Attach must be called with the running
// program; events before that are dropped.
func NewObserver() *Observer {
	return &Observer{}
}

// Attach binds the observer to the running program.
func (o *Observer) Attach(program *tea.Program) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.program = program
}

func (o *Observer) OnEvent(ctx context.Context, event observability.Event) {
	switch event.Type {
	case session.EventAgentTurn:
		o.send(thinkingMsg{agent: agentName(event)})
	case session.EventAgentReply, session.EventAgentError,
		session.EventSessionTerminated:
		o.send(thinkingMsg{})
	}
}

func agentName(event observability.Event) string {
	if name, ok := event.Data["agent"].(string); ok {
		return name
	}
	return fmt.Sprintf("%v", event.Data["agent"])
}

func (o *Observer) send(msg tea.Msg) {
	o.mu.Lock()
	program := o.program
	o.mu.Unlock()
	if program != nil {
		program.Send(msg)
	}
}
