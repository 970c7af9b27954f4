package event

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEnvelopeCarriesTypeAndPayload(t *testing.T) {
	ev := AttemptEvent{
		AttemptID: "attempt-1",
		StudentID: "student-1",
		Timestamp: time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
	}

	body, err := json.Marshal(envelope(AttemptSubmitted, ev))
	if err != nil {
		t.Fatalf("Unexpected marshal error: %v", err)
	}

	var decoded struct {
		Type    string       `json:"type"`
		Payload AttemptEvent `json:"payload"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("Unexpected unmarshal error: %v", err)
	}
	if decoded.Type != AttemptSubmitted {
		t.Errorf("Expected type %q, got %q", AttemptSubmitted, decoded.Type)
	}
	if decoded.Payload.AttemptID != "attempt-1" || decoded.Payload.StudentID != "student-1" {
		t.Errorf("Payload ids lost in envelope: %+v", decoded.Payload)
	}
	if !decoded.Payload.Timestamp.Equal(ev.Timestamp) {
		t.Errorf("Expected timestamp %v, got %v", ev.Timestamp, decoded.Payload.Timestamp)
	}
}
