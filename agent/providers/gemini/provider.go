// Package gemini implements the Gemini generateContent adapter. Gemini's
// request shape names the assistant role "model" and carries the system
// directive in a separate systemInstruction field.
package gemini

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
	defaultBaseURL     = "https://generativelanguage.googleapis.com"
	defaultModel       = "gemini-2.5-pro"
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

// Provider is an agent backed by the Gemini generateContent API.
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

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		Temperature     float64 `json:"temperature,omitempty"`
		MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Reply flattens the conversation relative to this agent and asks Gemini for
// one completion.
func (p *Provider) Reply(ctx context.Context, incoming protocol.Message, recent []protocol.Message) (protocol.Message, error) {
	turns := protocol.Flatten(p.cfg.Name, recent, incoming)

	request := geminiRequest{Contents: toGeminiContents(turns)}
	request.GenerationConfig.Temperature = defaultTemperature
	request.GenerationConfig.MaxOutputTokens = defaultMaxTokens
	if p.cfg.SystemDirective != "" {
		request.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: p.cfg.SystemDirective}},
		}
	}

	body, err := json.Marshal(request)
	if err != nil {
		return protocol.Message{}, fmt.Errorf("%s: encode request: %w", p.cfg.Name, err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(p.cfg.BaseURL, "/"), p.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return protocol.Message{}, fmt.Errorf("%s: build request: %w", p.cfg.Name, err)
	}
	req.Header.Set("x-goog-api-key", p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return protocol.Message{}, fmt.Errorf("%s: %w", p.cfg.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return protocol.Message{}, fmt.Errorf("%s: status %d: %s", p.cfg.Name, resp.StatusCode, readErrMsg(resp.Body))
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return protocol.Message{}, fmt.Errorf("%s: decode response: %w", p.cfg.Name, err)
	}
	if len(parsed.Candidates) == 0 {
		return protocol.Message{}, fmt.Errorf("%s: response contained no candidates", p.cfg.Name)
	}

	var text strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	if text.Len() == 0 {
		return protocol.Message{}, fmt.Errorf("%s: candidate contained no text", p.cfg.Name)
	}

	return protocol.NewMessage(p.cfg.Name, text.String()), nil
}

// toGeminiContents maps flattened turns onto Gemini roles: assistant turns
// become "model", everything else "user".
func toGeminiContents(turns []protocol.Turn) []geminiContent {
	contents := make([]geminiContent, 0, len(turns))
	for _, turn := range turns {
		role := "user"
		if turn.Role == protocol.RoleAssistant {
			role = "model"
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: turn.Content}},
		})
	}
	return contents
}

func readErrMsg(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return "unreadable error body"
	}

	var parsed geminiError
	if json.Unmarshal(data, &parsed) == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return strings.TrimSpace(string(data))
}
