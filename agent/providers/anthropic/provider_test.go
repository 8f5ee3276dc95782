package anthropic_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tailored-agentic-units/groupchat/agent/providers/anthropic"
	"github.com/tailored-agentic-units/groupchat/core/protocol"
)

type capturedRequest struct {
	Model    string `json:"model"`
	System   string `json:"system"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	MaxTokens int `json:"max_tokens"`
}

func newTestServer(t *testing.T, reply string, captured *capturedRequest, headers *http.Header) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if headers != nil {
			*headers = r.Header.Clone()
		}
		if captured != nil {
			if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{{"type": "text", "text": reply}},
		})
	}))
}

func TestReply_SystemIsTopLevelField(t *testing.T) {
	var captured capturedRequest
	var headers http.Header
	server := newTestServer(t, "indeed", &captured, &headers)
	defer server.Close()

	p := anthropic.New(anthropic.Config{
		Name:            "Claude",
		Model:           "claude-sonnet-4-5",
		APIKey:          "test-key",
		BaseURL:         server.URL,
		SystemDirective: "You are Claude.",
	})

	reply, err := p.Reply(context.Background(), protocol.NewMessage("Human", "hello"), nil)
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}

	if reply.Sender != "Claude" || reply.Content != "indeed" {
		t.Errorf("got reply %s/%q", reply.Sender, reply.Content)
	}
	if captured.System != "You are Claude." {
		t.Errorf("got system %q", captured.System)
	}
	if headers.Get("x-api-key") != "test-key" {
		t.Errorf("got x-api-key %q", headers.Get("x-api-key"))
	}
	if headers.Get("anthropic-version") == "" {
		t.Error("anthropic-version header missing")
	}
	for _, msg := range captured.Messages {
		if msg.Role == "system" {
			t.Error("system directive leaked into the message list")
		}
	}
}

func TestReply_CoalescesConsecutiveSameRoleTurns(t *testing.T) {
	var captured capturedRequest
	server := newTestServer(t, "ok", &captured, nil)
	defer server.Close()

	p := anthropic.New(anthropic.Config{Name: "Claude", APIKey: "k", BaseURL: server.URL})

	// Human then Gemini: both flatten to user turns and must merge.
	recent := []protocol.Message{
		protocol.NewMessage("Human", "hello"),
		protocol.NewMessage("Gemini", "hi all"),
		protocol.NewMessage("Claude", "greetings"),
	}
	incoming := protocol.NewMessage("Human", "thoughts?")

	if _, err := p.Reply(context.Background(), incoming, recent); err != nil {
		t.Fatalf("Reply: %v", err)
	}

	wantRoles := []string{"user", "assistant", "user"}
	if len(captured.Messages) != len(wantRoles) {
		t.Fatalf("got %d messages, want %d", len(captured.Messages), len(wantRoles))
	}
	for i, want := range wantRoles {
		if captured.Messages[i].Role != want {
			t.Errorf("message %d: role %q, want %q", i, captured.Messages[i].Role, want)
		}
	}
	if captured.Messages[0].Content != "Human: hello\nGemini: hi all" {
		t.Errorf("merged user turn = %q", captured.Messages[0].Content)
	}
}

func TestReply_LeadingAssistantTurnGetsUserPreamble(t *testing.T) {
	var captured capturedRequest
	server := newTestServer(t, "ok", &captured, nil)
	defer server.Close()

	p := anthropic.New(anthropic.Config{Name: "Claude", APIKey: "k", BaseURL: server.URL})

	// The bounded window can start with the agent's own message.
	recent := []protocol.Message{
		protocol.NewMessage("Claude", "as I was saying"),
	}
	incoming := protocol.NewMessage("Human", "go on")

	if _, err := p.Reply(context.Background(), incoming, recent); err != nil {
		t.Fatalf("Reply: %v", err)
	}

	if len(captured.Messages) < 2 {
		t.Fatalf("got %d messages, want at least 2", len(captured.Messages))
	}
	if captured.Messages[0].Role != "user" {
		t.Errorf("first message role %q, want user", captured.Messages[0].Role)
	}
	if captured.Messages[1].Role != "assistant" {
		t.Errorf("second message role %q, want assistant", captured.Messages[1].Role)
	}
}

func TestReply_BackendErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"bad request"}}`))
	}))
	defer server.Close()

	p := anthropic.New(anthropic.Config{Name: "Claude", APIKey: "k", BaseURL: server.URL})

	_, err := p.Reply(context.Background(), protocol.NewMessage("Human", "hi"), nil)
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
}
