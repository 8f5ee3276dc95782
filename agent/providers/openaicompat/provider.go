// Package openaicompat implements the chat completions adapter shared by
// OpenAI and OpenAI-compatible inference services, including Groq's hosted
// Llama models.
package openaicompat

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

// GroqBaseURL is the OpenAI-compatible endpoint for Groq-hosted models.
const GroqBaseURL = "https://api.groq.com/openai"

const (
	defaultBaseURL     = "https://api.openai.com"
	defaultModel       = "gpt-4o"
	defaultTimeout     = 60 * time.Second
	defaultTemperature = 0.7
	defaultMaxTokens   = 1024
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

// Provider is an agent backed by a chat completions endpoint.
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

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Reply flattens the conversation relative to this agent and asks the
// backend for one completion.
func (p *Provider) Reply(ctx context.Context, incoming protocol.Message, recent []protocol.Message) (protocol.Message, error) {
	turns := protocol.Flatten(p.cfg.Name, recent, incoming)

	messages := make([]chatMessage, 0, len(turns)+1)
	if p.cfg.SystemDirective != "" {
		messages = append(messages, chatMessage{Role: string(protocol.RoleSystem), Content: p.cfg.SystemDirective})
	}
	for _, turn := range turns {
		messages = append(messages, chatMessage{Role: string(turn.Role), Content: turn.Content})
	}

	body, err := json.Marshal(chatRequest{
		Model:       p.cfg.Model,
		Messages:    messages,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	})
	if err != nil {
		return protocol.Message{}, fmt.Errorf("%s: encode request: %w", p.cfg.Name, err)
	}

	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return protocol.Message{}, fmt.Errorf("%s: build request: %w", p.cfg.Name, err)
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return protocol.Message{}, fmt.Errorf("%s: %w", p.cfg.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return protocol.Message{}, fmt.Errorf("%s: status %d: %s", p.cfg.Name, resp.StatusCode, readErrMsg(resp.Body))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return protocol.Message{}, fmt.Errorf("%s: decode response: %w", p.cfg.Name, err)
	}
	if len(parsed.Choices) == 0 {
		return protocol.Message{}, fmt.Errorf("%s: response contained no choices", p.cfg.Name)
	}

	return protocol.NewMessage(p.cfg.Name, parsed.Choices[0].Message.Content), nil
}

func readErrMsg(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return "unreadable error body"
	}

	var parsed errorResponse
	if json.Unmarshal(data, &parsed) == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return strings.TrimSpace(string(data))
}
