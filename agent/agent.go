// Package agent defines the reply-producing capability of a conversation
// participant and the ordered roster the session engine iterates over.
package agent

import (
	"context"

	"github.com/tailored-agentic-units/groupchat/core/protocol"
)

// Agent is a named automated participant able to produce a reply.
//
// Reply receives the latest conversation message and a bounded window of
// messages strictly preceding it, in chronological order. Implementations
// must not mutate recent, must set the returned message's sender to their
// own name, and must not retry internally — a failed backend call surfaces
// as a single error to the turn engine.
type Agent interface {
	Name() string
	Reply(ctx context.Context, incoming protocol.Message, recent []protocol.Message) (protocol.Message, error)
}
