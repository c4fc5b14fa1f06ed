package queue

import (
	"reflect"
	"testing"
	"time"
)

func TestMessageRoundTrip(t *testing.T) {
	msg := Message{
		ObjectPath: "/objects/uploads/abc.png",
		ContentID:  "content-123",
		OwnerID:    "user-1",
		RequestID:  "request-456",
		EnqueuedAt: "2026-01-30T22:00:00Z",
		Version:    1,
	}

	payload, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}

	got, err := DecodeMessage(payload)
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}

	if !reflect.DeepEqual(got, msg) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, msg)
	}
}

func TestDecodeMessageRejectsGarbage(t *testing.T) {
	if _, err := DecodeMessage([]byte("{not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestNewMessageStampsVersionAndTime(t *testing.T) {
	msg := NewMessage("/objects/a.png", "c1", "u1", "r1")
	if msg.Version != MessageVersion {
		t.Fatalf("expected version %d, got %d", MessageVersion, msg.Version)
	}
	if _, err := time.Parse(time.RFC3339, msg.EnqueuedAt); err != nil {
		t.Fatalf("enqueuedAt not RFC3339: %q", msg.EnqueuedAt)
	}
	if msg.ObjectPath != "/objects/a.png" || msg.ContentID != "c1" || msg.OwnerID != "u1" || msg.RequestID != "r1" {
		t.Fatalf("unexpected message %+v", msg)
	}
}
