package session

import "github.com/tailored-agentic-units/groupchat/observability"

// Session event types emitted during the turn loop.
const (
	EventSessionStart      observability.EventType = "session.start"
	EventSessionTerminated observability.EventType = "session.terminated"
	EventRoundStart        observability.EventType = "session.round.start"
	EventAgentTurn         observability.EventType = "session.agent.turn"
	EventAgentReply        observability.EventType = "session.agent.reply"
	EventAgentError        observability.EventType = "session.agent.error"
	EventHumanMessage      observability.EventType = "session.human.message"
	EventMessage           observability.EventType = "session.message"
	EventPersist           observability.EventType = "session.persist"
)
