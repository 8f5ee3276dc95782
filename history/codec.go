package history

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/tailored-agentic-units/groupchat/core/protocol"
)

// record is the durable representation of one message. Field order within a
// record is not significant; record order in the sequence is chronological.
// Content is a pointer so a missing field is distinguishable from an empty
// reply, which is legal.
type record struct {
	Sender    string   `json:"sender"`
	Content   *string  `json:"content"`
	Timestamp *float64 `json:"timestamp,omitempty"`
}

// Marshal encodes the full transcript as an ordered JSON array of records.
// Timestamps are written as seconds since epoch with fractional precision.
func Marshal(h *History) ([]byte, error) {
	entries := h.All()
	records := make([]record, len(entries))
	for i, msg := range entries {
		content := msg.Content
		ts := float64(msg.Timestamp.UnixMicro()) / 1e6
		records[i] = record{
			Sender:    msg.Sender,
			Content:   &content,
			Timestamp: &ts,
		}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode transcript: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a transcript produced by Marshal. A record missing its
// timestamp is tolerated and stamped with the current time; a record missing
// sender or content fails the whole load.
func Unmarshal(data []byte) (*History, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	msgs := make([]protocol.Message, 0, len(records))
	for i, rec := range records {
		if rec.Sender == "" {
			return nil, fmt.Errorf("%w: record %d has no sender", ErrMalformed, i)
		}
		if rec.Content == nil {
			return nil, fmt.Errorf("%w: record %d has no content", ErrMalformed, i)
		}

		at := time.Now()
		if rec.Timestamp != nil {
			at = time.UnixMicro(int64(math.Round(*rec.Timestamp * 1e6)))
		}
		msgs = append(msgs, protocol.NewMessageAt(rec.Sender, *rec.Content, at))
	}

	return FromMessages(msgs), nil
}
