// Package history implements the append-only conversation log shared by the
// session engine, agents, and the presentation layer. The engine is the only
// writer; readers receive defensive copies.
package history

import (
	"sync"

	"github.com/tailored-agentic-units/groupchat/core/protocol"
)

// History holds an ordered sequence of conversation messages. Insertion
// order is chronological order and is the ground truth for both persistence
// and per-agent context reconstruction.
type History struct {
	mu      sync.RWMutex
	entries []protocol.Message
}

// New creates an empty History.
func New() *History {
	return &History{}
}

// FromMessages creates a History pre-seeded with the given messages, in order.
func FromMessages(msgs []protocol.Message) *History {
	h := &History{entries: make([]protocol.Message, len(msgs))}
	copy(h.entries, msgs)
	return h
}

// Append adds a message to the end of the log.
func (h *History) Append(msg protocol.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, msg)
}

// Len returns the number of messages in the log.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// All returns a copy of the full ordered sequence.
func (h *History) All() []protocol.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	copied := make([]protocol.Message, len(h.entries))
	copy(copied, h.entries)
	return copied
}

// Tail returns a copy of the last n messages in chronological order, or the
// whole log when it is shorter than n.
func (h *History) Tail(n int) []protocol.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n < 0 {
		n = 0
	}
	if n > len(h.entries) {
		n = len(h.entries)
	}

	copied := make([]protocol.Message, n)
	copy(copied, h.entries[len(h.entries)-n:])
	return copied
}

// Last returns the most recent message, if any.
func (h *History) Last() (protocol.Message, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.entries) == 0 {
		return protocol.Message{}, false
	}
	return h.entries[len(h.entries)-1], true
}
