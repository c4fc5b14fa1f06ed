// Package cleanup removes stored objects whose content records were deleted.
// Messages arrive from the cleanup queue and are processed by cmd/worker.
package cleanup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"onlyu-media/internal/objects"
	"onlyu-media/internal/queue"
)

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

func (e ErrDecode) Unwrap() error { return e.Err }

// ErrMissingObjectPath indicates a message without an object path.
type ErrMissingObjectPath struct {
	Meta      MessageMeta
	RequestID string
}

func (e ErrMissingObjectPath) Error() string { return "missing object path" }

// ErrProcess indicates removal failed after successful parsing.
type ErrProcess struct {
	ObjectPath string
	RequestID  string
	Err        error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "remove object"
	}
	return "remove object: " + e.Err.Error()
}

func (e ErrProcess) Unwrap() error { return e.Err }

// Remover deletes the object behind a canonical path.
type Remover interface {
	Remove(ctx context.Context, canonicalPath string) (objects.Handle, error)
}

// Purger hard-deletes a soft-deleted content record once its object is gone.
type Purger interface {
	Purge(ctx context.Context, id string) error
}

// Outcome describes how a message was settled.
type Outcome string

const (
	OutcomeRemoved Outcome = "removed"
	// OutcomeGone means the object was already missing.
	OutcomeGone Outcome = "gone"
)

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if strings.TrimSpace(msg.ObjectPath) == "" {
		return msg, meta, ErrMissingObjectPath{Meta: meta, RequestID: msg.RequestID}
	}
	return msg, meta, nil
}

// HandleMessage removes the object named by a decoded message, then purges
// the content record when purger is set. Objects that are already gone, or
// whose path can never resolve, settle as OutcomeGone.
func HandleMessage(ctx context.Context, remover Remover, purger Purger, msg queue.Message) (Outcome, error) {
	if remover == nil {
		return "", errors.New("object remover not configured")
	}
	if strings.TrimSpace(msg.ObjectPath) == "" {
		return "", ErrMissingObjectPath{RequestID: msg.RequestID}
	}

	outcome := OutcomeRemoved
	if _, err := remover.Remove(ctx, msg.ObjectPath); err != nil {
		if !errors.Is(err, objects.ErrNotFound) && !errors.Is(err, objects.ErrInvalidPath) {
			return "", ErrProcess{ObjectPath: msg.ObjectPath, RequestID: msg.RequestID, Err: err}
		}
		outcome = OutcomeGone
	}

	if purger != nil && strings.TrimSpace(msg.ContentID) != "" {
		if err := purger.Purge(ctx, msg.ContentID); err != nil {
			return "", ErrProcess{ObjectPath: msg.ObjectPath, RequestID: msg.RequestID, Err: fmt.Errorf("purge content %s: %w", msg.ContentID, err)}
		}
	}
	return outcome, nil
}
