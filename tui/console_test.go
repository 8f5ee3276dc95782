package tui_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/tailored-agentic-units/groupchat/core/protocol"
	"github.com/tailored-agentic-units/groupchat/tui"
)

func TestConsolePresenterRendersOnlyNewMessages(t *testing.T) {
	var out strings.Builder
	p := tui.NewConsolePresenter(strings.NewReader(""), &out)

	at := time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC)
	first := protocol.NewMessageAt("Human", "hello", at)
	second := protocol.NewMessageAt("Echo", "hello back", at.Add(time.Second))

	p.Render([]protocol.Message{first})
	p.Render([]protocol.Message{first, second})

	got := out.String()
	if strings.Count(got, "Human: hello") != 1 {
		t.Errorf("first message should print exactly once:\n%s", got)
	}
	if !strings.Contains(got, "[09:30:01] Echo: hello back") {
		t.Errorf("missing second message:\n%s", got)
	}
}

func TestConsolePresenterAwaitInput(t *testing.T) {
	var out strings.Builder
	p := tui.NewConsolePresenter(strings.NewReader("first line\nsecond line\n"), &out)

	text, err := p.AwaitInput(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "first line" {
		t.Errorf("expected first line, got %q", text)
	}
	if !strings.Contains(out.String(), "> ") {
		t.Error("expected a prompt before reading")
	}

	if text, err = p.AwaitInput(context.Background()); err != nil || text != "second line" {
		t.Errorf("expected second line, got %q (%v)", text, err)
	}

	if _, err = p.AwaitInput(context.Background()); err != io.EOF {
		t.Errorf("expected io.EOF at end of input, got %v", err)
	}
}

func TestConsolePresenterAwaitInputCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := tui.NewConsolePresenter(strings.NewReader("pending\n"), io.Discard)
	if _, err := p.AwaitInput(ctx); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestConsolePresenterAwaitInputUnblocksOnCancel(t *testing.T) {
	// A pipe that never delivers a line keeps the reader blocked mid-read;
	// cancellation must still unblock the waiting engine.
	r, w := io.Pipe()
	defer w.Close()
	p := tui.NewConsolePresenter(r, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := p.AwaitInput(ctx)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("AwaitInput still blocked after cancellation")
	}
}

func TestSenderStyleIsStable(t *testing.T) {
	theme := tui.DefaultTheme()

	a := theme.SenderStyle("Gemini", "Human")
	b := theme.SenderStyle("Gemini", "Human")
	if a.GetForeground() != b.GetForeground() {
		t.Error("agent color should be stable across calls")
	}

	human := theme.SenderStyle("Human", "Human")
	system := theme.SenderStyle(protocol.SenderSystem, "Human")
	if human.GetForeground() == system.GetForeground() {
		t.Error("human and System must be visually distinct")
	}
}

func TestPresenterAwaitInput(t *testing.T) {
	inputs := make(chan string, 1)
	p := tui.NewPresenter(inputs)

	inputs <- "hello"
	text, err := p.AwaitInput(context.Background())
	if err != nil || text != "hello" {
		t.Fatalf("expected hello, got %q (%v)", text, err)
	}

	close(inputs)
	if _, err := p.AwaitInput(context.Background()); err != io.EOF {
		t.Errorf("expected io.EOF on closed channel, got %v", err)
	}
}

func TestPresenterRenderBeforeAttachIsDropped(t *testing.T) {
	p := tui.NewPresenter(make(chan string))
	// Must not panic without a program attached.
	p.Render([]protocol.Message{protocol.NewMessage("Human", "hi")})
	p.NotifyDone(nil)
}
