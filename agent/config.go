package agent

import (
	"fmt"
	"os"

	"github.com/tailored-agentic-units/groupchat/agent/providers/anthropic"
	"github.com/tailored-agentic-units/groupchat/agent/providers/gemini"
	"github.com/tailored-agentic-units/groupchat/agent/providers/openaicompat"
)

// Agent kinds selectable in configuration.
const (
	KindGemini    = "gemini"
	KindLlama     = "llama" // Llama served through Groq's OpenAI-compatible API
	KindOpenAI    = "openai"
	KindAnthropic = "anthropic"
	KindHuman     = "human"
)

// DefaultContextWindow bounds how many trailing messages an agent receives
// per call when the configuration does not say otherwise.
const DefaultContextWindow = 10

// Config describes one roster entry. Name is the participant identity shown
// in the conversation; Kind selects the backing provider strategy.
type Config struct {
	Name            string `json:"name"`
	Kind            string `json:"kind"`
	Model           string `json:"model,omitempty"`
	APIKey          string `json:"api_key,omitempty"`
	BaseURL         string `json:"base_url,omitempty"`
	SystemDirective string `json:"system_directive,omitempty"`
	ContextWindow   int    `json:"context_window,omitempty"`
	Disabled        bool   `json:"disabled,omitempty"`
}

// Window returns the configured context window, or DefaultContextWindow.
func (c *Config) Window() int {
	if c.ContextWindow > 0 {
		return c.ContextWindow
	}
	return DefaultContextWindow
}

// IsHuman reports whether this entry designates the human participant.
func (c *Config) IsHuman() bool {
	return c.Kind == KindHuman
}

// APIKeyEnv returns the conventional environment variable for the kind's
// provider, or "" for kinds that need no key.
func (c *Config) APIKeyEnv() string {
	switch c.Kind {
	case KindGemini:
		return "GEMINI_API_KEY"
	case KindLlama:
		return "GROQ_API_KEY"
	case KindOpenAI:
		return "OPENAI_API_KEY"
	case KindAnthropic:
		return "ANTHROPIC_API_KEY"
	}
	return ""
}

// ResolveAPIKey returns the explicit key from config, falling back to the
// kind's environment variable.
func (c *Config) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if env := c.APIKeyEnv(); env != "" {
		return os.Getenv(env)
	}
	return ""
}

// New constructs the provider-backed agent described by cfg. The turn engine
// never branches on provider identity; this factory is the only place kinds
// are mapped to concrete strategies.
func New(cfg *Config) (Agent, error) {
	if cfg.Name == "" {
		return nil, ErrEmptyAgentName
	}
	if cfg.IsHuman() {
		return nil, ErrHumanKind
	}

	key := cfg.ResolveAPIKey()
	if key == "" {
		return nil, fmt.Errorf("%w for agent %q: set %s", ErrMissingAPIKey, cfg.Name, cfg.APIKeyEnv())
	}

	switch cfg.Kind {
	case KindGemini:
		return gemini.New(gemini.Config{
			Name:            cfg.Name,
			Model:           cfg.Model,
			APIKey:          key,
			BaseURL:         cfg.BaseURL,
			SystemDirective: cfg.SystemDirective,
		}), nil
	case KindLlama:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = openaicompat.GroqBaseURL
		}
		return openaicompat.New(openaicompat.Config{
			Name:            cfg.Name,
			Model:           cfg.Model,
			APIKey:          key,
			BaseURL:         baseURL,
			SystemDirective: cfg.SystemDirective,
		}), nil
	case KindOpenAI:
		return openaicompat.New(openaicompat.Config{
			Name:            cfg.Name,
			Model:           cfg.Model,
			APIKey:          key,
			BaseURL:         cfg.BaseURL,
			SystemDirective: cfg.SystemDirective,
		}), nil
	case KindAnthropic:
		return anthropic.New(anthropic.Config{
			Name:            cfg.Name,
			Model:           cfg.Model,
			APIKey:          key,
			BaseURL:         cfg.BaseURL,
			SystemDirective: cfg.SystemDirective,
		}), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
}
