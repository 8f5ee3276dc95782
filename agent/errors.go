package agent

import "errors"

var (
	ErrEmptyAgentName = errors.New("agent name must not be empty")
	ErrAgentNotFound  = errors.New("agent not found")
	ErrUnknownKind    = errors.New("unknown agent kind")
	ErrMissingAPIKey  = errors.New("missing API key")
	ErrHumanKind      = errors.New("human participants are driven by the presenter, not constructed as agents")
)
