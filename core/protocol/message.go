// Package protocol defines the conversation records exchanged between the
// session engine, agents, and the presentation layer.
package protocol

import "time"

// SenderSystem is the sentinel identity for engine-authored diagnostics,
// such as the substitute message appended when an agent call fails.
const SenderSystem = "System"

// Message is a single utterance in the group conversation. A message is
// immutable after construction: the engine appends it to history and never
// rewrites it.
type Message struct {
	Sender    string
	Content   string
	Timestamp time.Time
}

// NewMessage creates a Message stamped at capture time.
func NewMessage(sender, content string) Message {
	return NewMessageAt(sender, content, time.Now())
}

// NewMessageAt creates a Message with an explicit timestamp. Timestamps are
// truncated to microsecond granularity so the persisted float-seconds
// encoding round-trips without loss.
func NewMessageAt(sender, content string, at time.Time) Message {
	return Message{
		Sender:    sender,
		Content:   content,
		Timestamp: at.Truncate(time.Microsecond),
	}
}
