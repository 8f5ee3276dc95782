package session

import (
	"context"

	"github.com/tailored-agentic-units/groupchat/core/protocol"
)

// Presenter is the presentation boundary. The engine calls Render after
// every append so the display stays current, and AwaitInput once per human
// turn. AwaitInput may block indefinitely; it must honor ctx cancellation.
//
// The presenter holds no reference into the engine's state: it receives
// snapshots and returns text, nothing more.
type Presenter interface {
	AwaitInput(ctx context.Context) (string, error)
	Render(snapshot []protocol.Message)
}
