package agent

import (
	"fmt"
	"sync"
)

// Entry pairs a registered agent with its per-call context window.
type Entry struct {
	Agent  Agent
	Window int
}

// Registry holds the conversation roster. Unlike a plain map, registration
// order is semantically relevant: it is the turn-taking order. Registering a
// name twice replaces the earlier agent in place — last registration wins,
// keeping the original roster position.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]Entry
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]Entry),
	}
}

// Register adds an agent to the roster with the given context window.
// A window of zero or less falls back to DefaultContextWindow.
func (r *Registry) Register(a Agent, window int) error {
	if a == nil || a.Name() == "" {
		return ErrEmptyAgentName
	}
	if window <= 0 {
		window = DefaultContextWindow
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[a.Name()]; !exists {
		r.order = append(r.order, a.Name())
	}
	r.entries[a.Name()] = Entry{Agent: a, Window: window}
	return nil
}

// Get retrieves a registered agent by name.
func (r *Registry) Get(name string) (Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.entries[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}
	return entry.Agent, nil
}

// Entries returns the roster in registration order.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry, 0, len(r.order))
	for _, name := range r.order {
		entries = append(entries, r.entries[name])
	}
	return entries
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
