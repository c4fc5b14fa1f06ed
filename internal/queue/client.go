package queue

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNoQueue is returned when cleanup is requested without a configured queue.
	ErrNoQueue = errors.New("cleanup queue not configured")
	// ErrNoObjectPath rejects messages the worker could only discard.
	ErrNoObjectPath = errors.New("cleanup message has no object path")
)

// Client delivers cleanup messages to the worker's queue.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// RequestCleanup builds and sends the message that removes the object behind a
// deleted content record. The sent message is returned for logging.
func RequestCleanup(ctx context.Context, client Client, objectPath, contentID, ownerID, requestID string) (Message, error) {
	if client == nil {
		return Message{}, ErrNoQueue
	}
	objectPath = strings.TrimSpace(objectPath)
	if objectPath == "" {
		return Message{}, ErrNoObjectPath
	}
	msg := NewMessage(objectPath, contentID, ownerID, requestID)
	if err := client.Send(ctx, msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
