package protocol

// Role identifies a party in the flattened two-role request structure that
// chat backends understand.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of a flattened request: the N-party conversation
// collapsed onto the two-party turn structure of a single backend call.
type Turn struct {
	Role    Role
	Content string
}

// Flatten maps conversation history onto two-party turns relative to self.
// Messages authored by self become assistant turns; every other sender,
// human or agent alike, becomes a user turn. Each turn's text keeps the
// original sender as a "Name: " prefix so multi-party attribution survives
// the collapse. The incoming message is appended as the final user turn.
func Flatten(self string, recent []Message, incoming Message) []Turn {
	turns := make([]Turn, 0, len(recent)+1)
	for _, msg := range recent {
		role := RoleUser
		if msg.Sender == self {
			role = RoleAssistant
		}
		turns = append(turns, Turn{Role: role, Content: Attribute(msg)})
	}
	return append(turns, Turn{Role: RoleUser, Content: Attribute(incoming)})
}

// Attribute renders a message with its sender prefix.
func Attribute(msg Message) string {
	return msg.Sender + ": " + msg.Content
}
