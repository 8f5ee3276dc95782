// Package session implements the round-robin turn engine that owns the
// conversation history and the agent roster.
//
// One round walks every automated agent in registration order: each agent
// receives the single most recent message plus a bounded tail of history,
// and its reply immediately becomes the most recent message for the next
// agent in the same round. A failing agent is substituted with a
// System-authored diagnostic and the round continues. After each round the
// engine suspends on human input; an exit token or cancellation moves the
// session to Terminated and persists the transcript.
//
//	sess, err := session.New(&cfg, presenter)
//	err = sess.Run(ctx)
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/groupchat/agent"
	"github.com/tailored-agentic-units/groupchat/core/protocol"
	"github.com/tailored-agentic-units/groupchat/history"
	"github.com/tailored-agentic-units/groupchat/observability"
)

// State is the lifecycle phase of a ChatSession. A terminated session is not
// reused; a fresh instance restarts from Idle.
type State int

const (
	StateIdle State = iota
	StateActive
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateTerminated:
		return "terminated"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Human-supplied phrases that end the session, compared case-insensitively.
var exitTokens = []string{"exit", "quit", "bye"}

// IsExitToken reports whether text is one of the session-ending phrases.
func IsExitToken(text string) bool {
	text = strings.TrimSpace(text)
	for _, token := range exitTokens {
		if strings.EqualFold(text, token) {
			return true
		}
	}
	return false
}

// Option configures a ChatSession after config-driven initialization.
type Option func(*ChatSession)

// WithRegistry overrides the config-built agent roster.
func WithRegistry(r *agent.Registry) Option {
	return func(s *ChatSession) { s.registry = r }
}

// WithHistory pre-seeds the session with an existing conversation, for
// resuming from a persisted transcript.
func WithHistory(h *history.History) Option {
	return func(s *ChatSession) { s.history = h }
}

// WithStore overrides the config-created transcript store. A nil store
// disables persistence.
func WithStore(store history.Store) Option {
	return func(s *ChatSession) { s.store = store }
}

// WithObserver overrides the default SlogObserver.
func WithObserver(o observability.Observer) Option {
	return func(s *ChatSession) { s.observer = o }
}

// ChatSession drives the turn-taking loop. It is the single writer of its
// history for the session's lifetime.
type ChatSession struct {
	id        string
	registry  *agent.Registry
	history   *history.History
	store     history.Store
	presenter Presenter
	observer  observability.Observer
	humanName string
	state     State
	persisted bool
}

// New creates a ChatSession from configuration. Roster entries that are
// disabled are skipped; a human-kind entry names the human participant
// instead of constructing an agent. Construction failures for enabled
// automated entries are returned to the caller — filtering out entries that
// cannot be built (say, a missing API key) is the bootstrap's job.
func New(cfg *Config, presenter Presenter, opts ...Option) (*ChatSession, error) {
	if presenter == nil {
		return nil, ErrNilPresenter
	}

	humanName := cfg.HumanName
	if humanName == "" {
		humanName = defaultHumanName
	}

	registry := agent.NewRegistry()
	for i := range cfg.Agents {
		ac := cfg.Agents[i]
		if ac.Disabled {
			continue
		}
		if ac.IsHuman() {
			if ac.Name != "" {
				humanName = ac.Name
			}
			continue
		}

		a, err := agent.New(&ac)
		if err != nil {
			return nil, fmt.Errorf("failed to create agent %q: %w", ac.Name, err)
		}
		if err := registry.Register(a, ac.Window()); err != nil {
			return nil, fmt.Errorf("failed to register agent %q: %w", ac.Name, err)
		}
	}

	var store history.Store
	if cfg.HistoryFile != "" {
		store = history.NewFileStore(cfg.HistoryFile)
	}

	s := &ChatSession{
		id:        uuid.Must(uuid.NewV7()).String(),
		registry:  registry,
		history:   history.New(),
		store:     store,
		presenter: presenter,
		observer:  observability.NoOpObserver{},
		humanName: humanName,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.history.Len() > 0 {
		s.state = StateActive
	}

	return s, nil
}

// ID returns the unique session identifier.
func (s *ChatSession) ID() string { return s.id }

// State returns the session's lifecycle phase.
func (s *ChatSession) State() State { return s.state }

// History returns the session's conversation log.
func (s *ChatSession) History() *history.History { return s.history }

// HumanName returns the identity messages from the human participant carry.
func (s *ChatSession) HumanName() string { return s.humanName }

// Participants returns every conversation identity in turn order, human last.
func (s *ChatSession) Participants() []string {
	return append(s.registry.Names(), s.humanName)
}

// Submit appends a message to the conversation, moving an Idle session to
// Active. The presentation layer is re-rendered afterwards.
func (s *ChatSession) Submit(msg protocol.Message) {
	s.append(context.Background(), msg)
}

func (s *ChatSession) append(ctx context.Context, msg protocol.Message) {
	s.history.Append(msg)
	if s.state == StateIdle {
		s.state = StateActive
	}
	s.presenter.Render(s.history.All())

	eventType := EventMessage
	if msg.Sender == s.humanName {
		eventType = EventHumanMessage
	}
	s.observer.OnEvent(ctx, observability.Event{
		Type:      eventType,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "session.append",
		Data: map[string]any{
			"sender": msg.Sender,
			"length": len(msg.Content),
		},
	})
}

// RunRound walks every automated agent once, in registration order. Each
// agent answers the current most recent message, so replies produced earlier
// in the round are visible to the agents after them. An individual agent
// failure is contained: a System diagnostic takes the reply's place and the
// round continues. Only context cancellation aborts the round.
func (s *ChatSession) RunRound(ctx context.Context) error {
	s.observer.OnEvent(ctx, observability.Event{
		Type:      EventRoundStart,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "session.RunRound",
		Data:      map[string]any{"agents": s.registry.Len()},
	})

	for _, entry := range s.registry.Entries() {
		if err := ctx.Err(); err != nil {
			return err
		}

		all := s.history.All()
		if len(all) == 0 {
			return nil
		}
		incoming := all[len(all)-1]
		recent := windowBefore(all, entry.Window)

		name := entry.Agent.Name()
		s.observer.OnEvent(ctx, observability.Event{
			Type:      EventAgentTurn,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    "session.RunRound",
			Data:      map[string]any{"agent": name, "context": len(recent)},
		})

		started := time.Now()
		reply, err := entry.Agent.Reply(ctx, incoming, recent)
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err != nil {
			diagnostic := protocol.NewMessage(
				protocol.SenderSystem,
				fmt.Sprintf("Error getting response from %s: %v", name, err),
			)
			s.history.Append(diagnostic)
			s.presenter.Render(s.history.All())

			s.observer.OnEvent(ctx, observability.Event{
				Type:      EventAgentError,
				Level:     observability.LevelWarning,
				Timestamp: time.Now(),
				Source:    "session.RunRound",
				Data:      map[string]any{"agent": name, "error": err.Error()},
			})
			continue
		}

		s.history.Append(reply)
		s.presenter.Render(s.history.All())

		s.observer.OnEvent(ctx, observability.Event{
			Type:      EventAgentReply,
			Level:     observability.LevelInfo,
			Timestamp: time.Now(),
			Source:    "session.RunRound",
			Data: map[string]any{
				"agent":    name,
				"length":   len(reply.Content),
				"duration": time.Since(started).String(),
			},
		})
	}

	return nil
}

// windowBefore returns up to window messages strictly preceding the most
// recent one, in chronological order.
func windowBefore(all []protocol.Message, window int) []protocol.Message {
	preceding := all[:len(all)-1]
	if len(preceding) > window {
		preceding = preceding[len(preceding)-window:]
	}
	return preceding
}

// Run drives the session until the human sends an exit token, the input
// source ends, or ctx is cancelled. On the way out the session moves to
// Terminated and the transcript is persisted exactly once; a persistence
// failure is returned and the in-memory history stays intact so the caller
// may retry via Persist.
func (s *ChatSession) Run(ctx context.Context) error {
	s.observer.OnEvent(ctx, observability.Event{
		Type:      EventSessionStart,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "session.Run",
		Data: map[string]any{
			"session":  s.id,
			"agents":   s.registry.Len(),
			"resumed":  s.history.Len() > 0,
			"messages": s.history.Len(),
		},
	})

	s.presenter.Render(s.history.All())

	// A resumed transcript whose last word belongs to the human is an
	// unanswered trigger: answer it before asking for more input.
	if last, ok := s.history.Last(); ok && last.Sender == s.humanName && !IsExitToken(last.Content) {
		if err := s.RunRound(ctx); err != nil {
			return s.terminate(ctx)
		}
	}

	for {
		if ctx.Err() != nil {
			break
		}

		text, err := s.presenter.AwaitInput(ctx)
		if err != nil {
			break
		}

		s.append(ctx, protocol.NewMessage(s.humanName, text))
		if IsExitToken(text) {
			break
		}

		if err := s.RunRound(ctx); err != nil {
			break
		}
	}

	return s.terminate(ctx)
}

func (s *ChatSession) terminate(ctx context.Context) error {
	s.state = StateTerminated

	s.observer.OnEvent(ctx, observability.Event{
		Type:      EventSessionTerminated,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "session.Run",
		Data:      map[string]any{"session": s.id, "messages": s.history.Len()},
	})

	if s.persisted {
		return nil
	}
	s.persisted = true
	return s.Persist(ctx)
}

// Persist writes the transcript through the session's store. The write uses
// a detached context so a cancelled session still saves its history.
func (s *ChatSession) Persist(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	err := s.store.Save(context.WithoutCancel(ctx), s.history)

	level := observability.LevelInfo
	data := map[string]any{"session": s.id, "messages": s.history.Len()}
	if err != nil {
		level = observability.LevelError
		data["error"] = err.Error()
	}
	s.observer.OnEvent(ctx, observability.Event{
		Type:      EventPersist,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "session.Persist",
		Data:      data,
	})

	return err
}
