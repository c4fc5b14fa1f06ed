package queue

import (
	"context"
	"errors"
	"testing"
)

type recordingClient struct {
	sent []Message
	err  error
}

func (c *recordingClient) Send(_ context.Context, msg Message) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func TestRequestCleanup(t *testing.T) {
	sendErr := errors.New("throttled")

	tests := []struct {
		name       string
		client     *recordingClient
		nilClient  bool
		objectPath string
		wantErr    error
		wantSent   int
	}{
		{name: "sends message", client: &recordingClient{}, objectPath: " /objects/a.png ", wantSent: 1},
		{name: "no queue", nilClient: true, objectPath: "/objects/a.png", wantErr: ErrNoQueue},
		{name: "empty path", client: &recordingClient{}, objectPath: "  ", wantErr: ErrNoObjectPath},
		{name: "send failure", client: &recordingClient{err: sendErr}, objectPath: "/objects/a.png", wantErr: sendErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var client Client
			if !tt.nilClient {
				client = tt.client
			}
			msg, err := RequestCleanup(context.Background(), client, tt.objectPath, "c-1", "u-1", "req-1")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr != nil {
				return
			}
			if len(tt.client.sent) != tt.wantSent {
				t.Fatalf("sent %d messages, want %d", len(tt.client.sent), tt.wantSent)
			}
			if msg.ObjectPath != "/objects/a.png" || msg.ContentID != "c-1" || msg.RequestID != "req-1" || msg.Version != MessageVersion {
				t.Fatalf("unexpected message %+v", msg)
			}
		})
	}
}
