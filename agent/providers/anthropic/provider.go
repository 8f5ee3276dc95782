// Package anthropic implements the Claude messages API adapter. The API
// differs from the OpenAI shape in three ways that matter here: the system
// directive is a top-level field rather than a message, authentication uses
// the x-api-key header, and the message list must start with a user turn and
// alternate strictly between user and assistant.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tailored-agentic-units/groupchat/core/protocol"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	defaultModel     = "claude-sonnet-4-5"
	defaultTimeout   = 60 * time.Second
	apiVersion       = "2023-06-01"
	defaultMaxTokens = 1024
	temperature      = 0.7
)

// Config holds the adapter's connection and identity parameters.
type Config struct {
	Name            string
	Model           string
	APIKey          string
	BaseURL         string
	SystemDirective string
	Timeout         time.Duration
}

// Provider is an agent backed by the Claude messages API.
type Provider struct {
	cfg    Config
	client *http.Client
}

// New creates a Provider, filling in endpoint and model defaults.
func New(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (p *Provider) Name() string { return p.cfg.Name }

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model       string          `json:"model"`
	System      string          `json:"system,omitempty"`
	Messages    []claudeMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature,omitempty"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text,omitempty"`
	} `json:"content"`
}

type claudeError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Reply flattens the conversation relative to this agent and asks Claude for
// one completion.
func (p *Provider) Reply(ctx context.Context, incoming protocol.Message, recent []protocol.Message) (protocol.Message, error) {
	turns := protocol.Flatten(p.cfg.Name, recent, incoming)

	body, err := json.Marshal(claudeRequest{
		Model:       p.cfg.Model,
		System:      p.cfg.SystemDirective,
		Messages:    toClaudeMessages(turns),
		MaxTokens:   defaultMaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return protocol.Message{}, fmt.Errorf("%s: encode request: %w", p.cfg.Name, err)
	}

	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/v1/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return protocol.Message{}, fmt.Errorf("%s: build request: %w", p.cfg.Name, err)
	}
	req.Header.Set("x-api-key", p.cfg.APIKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return protocol.Message{}, fmt.Errorf("%s: %w", p.cfg.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return protocol.Message{}, fmt.Errorf("%s: status %d: %s", p.cfg.Name, resp.StatusCode, readErrMsg(resp.Body))
	}

	var parsed claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return protocol.Message{}, fmt.Errorf("%s: decode response: %w", p.cfg.Name, err)
	}

	var text strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return protocol.Message{}, fmt.Errorf("%s: response contained no text blocks", p.cfg.Name)
	}

	return protocol.NewMessage(p.cfg.Name, text.String()), nil
}

// toClaudeMessages enforces the API's alternation rules: consecutive turns
// with the same role are joined into one message, and a leading assistant
// turn gets a neutral user turn in front of it.
func toClaudeMessages(turns []protocol.Turn) []claudeMessage {
	msgs := make([]claudeMessage, 0, len(turns))
	for _, turn := range turns {
		role := string(turn.Role)
		if len(msgs) > 0 && msgs[len(msgs)-1].Role == role {
			msgs[len(msgs)-1].Content += "\n" + turn.Content
			continue
		}
		msgs = append(msgs, claudeMessage{Role: role, Content: turn.Content})
	}

	if len(msgs) > 0 && msgs[0].Role == string(protocol.RoleAssistant) {
		msgs = append([]claudeMessage{{
			Role:    string(protocol.RoleUser),
			Content: "(earlier conversation omitted)",
		}}, msgs...)
	}

	return msgs
}

func readErrMsg(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return "unreadable error body"
	}

	var parsed claudeError
	if json.Unmarshal(data, &parsed) == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return strings.TrimSpace(string(data))
}
