package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tailored-agentic-units/groupchat/agent/providers/gemini"
	"github.com/tailored-agentic-units/groupchat/core/protocol"
)

type capturedRequest struct {
	SystemInstruction *struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"systemInstruction"`
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
}

func newTestServer(t *testing.T, model, reply string, captured *capturedRequest, key *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wantPath := "/v1beta/models/" + model + ":generateContent"
		if r.URL.Path != wantPath {
			t.Errorf("got path %q, want %q", r.URL.Path, wantPath)
		}
		if key != nil {
			*key = r.Header.Get("x-goog-api-key")
		}
		if captured != nil {
			if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": reply}}}},
			},
		})
	}))
}

func TestReply_UsesModelRoleForSelf(t *testing.T) {
	var captured capturedRequest
	var key string
	server := newTestServer(t, "gemini-2.5-pro", "fascinating", &captured, &key)
	defer server.Close()

	p := gemini.New(gemini.Config{
		Name:            "Gemini",
		Model:           "gemini-2.5-pro",
		APIKey:          "test-key",
		BaseURL:         server.URL,
		SystemDirective: "You are Gemini.",
	})

	recent := []protocol.Message{
		protocol.NewMessage("Human", "hello"),
		protocol.NewMessage("Gemini", "hi"),
	}
	incoming := protocol.NewMessage("Llama", "interesting point")

	reply, err := p.Reply(context.Background(), incoming, recent)
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}

	if reply.Sender != "Gemini" || reply.Content != "fascinating" {
		t.Errorf("got reply %s/%q", reply.Sender, reply.Content)
	}
	if key != "test-key" {
		t.Errorf("got x-goog-api-key %q", key)
	}
	if captured.SystemInstruction == nil || captured.SystemInstruction.Parts[0].Text != "You are Gemini." {
		t.Errorf("systemInstruction not carried: %+v", captured.SystemInstruction)
	}

	wantRoles := []string{"user", "model", "user"}
	wantTexts := []string{"Human: hello", "Gemini: hi", "Llama: interesting point"}
	if len(captured.Contents) != len(wantRoles) {
		t.Fatalf("got %d contents, want %d", len(captured.Contents), len(wantRoles))
	}
	for i := range wantRoles {
		if captured.Contents[i].Role != wantRoles[i] {
			t.Errorf("content %d: role %q, want %q", i, captured.Contents[i].Role, wantRoles[i])
		}
		if captured.Contents[i].Parts[0].Text != wantTexts[i] {
			t.Errorf("content %d: text %q, want %q", i, captured.Contents[i].Parts[0].Text, wantTexts[i])
		}
	}
}

func TestReply_NoCandidatesIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	p := gemini.New(gemini.Config{Name: "Gemini", Model: "m", APIKey: "k", BaseURL: server.URL})

	_, err := p.Reply(context.Background(), protocol.NewMessage("Human", "hi"), nil)
	if err == nil {
		t.Fatal("expected error for empty candidates")
	}
}

func TestReply_BackendErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"API key invalid","status":"PERMISSION_DENIED"}}`))
	}))
	defer server.Close()

	p := gemini.New(gemini.Config{Name: "Gemini", Model: "m", APIKey: "bad", BaseURL: server.URL})

	_, err := p.Reply(context.Background(), protocol.NewMessage("Human", "hi"), nil)
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
}
