package history_test

import (
	"testing"

	"github.com/tailored-agentic-units/groupchat/core/protocol"
	"github.com/tailored-agentic-units/groupchat/history"
)

func TestNew_Empty(t *testing.T) {
	h := history.New()

	if h.Len() != 0 {
		t.Errorf("new history has %d entries, want 0", h.Len())
	}
	if _, ok := h.Last(); ok {
		t.Error("Last on empty history reported a message")
	}
}

func TestAppend_PreservesOrder(t *testing.T) {
	h := history.New()
	senders := []string{"Human", "A", "B", "Human"}
	for _, s := range senders {
		h.Append(protocol.NewMessage(s, "from "+s))
	}

	all := h.All()
	if len(all) != len(senders) {
		t.Fatalf("got %d entries, want %d", len(all), len(senders))
	}
	for i, s := range senders {
		if all[i].Sender != s {
			t.Errorf("entry %d: got sender %q, want %q", i, all[i].Sender, s)
		}
	}
}

func TestAll_EarlierIsPrefixOfLater(t *testing.T) {
	h := history.New()
	h.Append(protocol.NewMessage("Human", "one"))
	h.Append(protocol.NewMessage("A", "two"))

	earlier := h.All()
	h.Append(protocol.NewMessage("B", "three"))
	later := h.All()

	if len(later) <= len(earlier) {
		t.Fatalf("later length %d not greater than earlier %d", len(later), len(earlier))
	}
	for i := range earlier {
		if earlier[i] != later[i] {
			t.Errorf("prefix mismatch at %d: %+v vs %+v", i, earlier[i], later[i])
		}
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	h := history.New()
	h.Append(protocol.NewMessage("Human", "hello"))

	all := h.All()
	all[0].Content = "mutated"

	if got := h.All()[0].Content; got != "hello" {
		t.Errorf("history entry changed through returned slice: got %q", got)
	}
}

func TestTail_WindowCorrectness(t *testing.T) {
	h := history.New()
	for i := 0; i < 5; i++ {
		h.Append(protocol.NewMessage("Human", string(rune('a'+i))))
	}

	tests := []struct {
		n         int
		wantLen   int
		wantFirst string
	}{
		{0, 0, ""},
		{2, 2, "d"},
		{5, 5, "a"},
		{10, 5, "a"},
	}

	for _, tc := range tests {
		tail := h.Tail(tc.n)
		if len(tail) != tc.wantLen {
			t.Errorf("Tail(%d): got %d entries, want %d", tc.n, len(tail), tc.wantLen)
			continue
		}
		if tc.wantLen > 0 && tail[0].Content != tc.wantFirst {
			t.Errorf("Tail(%d): first entry %q, want %q", tc.n, tail[0].Content, tc.wantFirst)
		}
		if tc.wantLen > 0 && tail[len(tail)-1].Content != "e" {
			t.Errorf("Tail(%d): last entry %q, want %q", tc.n, tail[len(tail)-1].Content, "e")
		}
	}
}

func TestTail_NegativeN(t *testing.T) {
	h := history.New()
	h.Append(protocol.NewMessage("Human", "hello"))

	if got := h.Tail(-1); len(got) != 0 {
		t.Errorf("Tail(-1) returned %d entries, want 0", len(got))
	}
}

func TestLast(t *testing.T) {
	h := history.New()
	h.Append(protocol.NewMessage("Human", "first"))
	h.Append(protocol.NewMessage("A", "second"))

	last, ok := h.Last()
	if !ok {
		t.Fatal("Last reported no message")
	}
	if last.Sender != "A" || last.Content != "second" {
		t.Errorf("got last %s/%q, want A/%q", last.Sender, last.Content, "second")
	}
}

func TestFromMessages_CopiesInput(t *testing.T) {
	msgs := []protocol.Message{protocol.NewMessage("Human", "hello")}
	h := history.FromMessages(msgs)

	msgs[0].Content = "mutated"

	if got := h.All()[0].Content; got != "hello" {
		t.Errorf("seed slice mutation leaked into history: got %q", got)
	}
}
