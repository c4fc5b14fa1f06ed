package queue

import (
	"encoding/json"
	"time"
)

// MessageVersion is the payload version produced by this service.
const MessageVersion = 1

// Message asks the cleanup worker to remove a stored object whose content
// record was deleted.
type Message struct {
	ObjectPath string `json:"objectPath"`
	ContentID  string `json:"contentId,omitempty"`
	OwnerID    string `json:"ownerId,omitempty"`
	RequestID  string `json:"requestId,omitempty"`
	EnqueuedAt string `json:"enqueuedAt"`
	Version    int    `json:"version"`
}

// NewMessage stamps a cleanup message with the current time and version.
func NewMessage(objectPath, contentID, ownerID, requestID string) Message {
	return Message{
		ObjectPath: objectPath,
		ContentID:  contentID,
		OwnerID:    ownerID,
		RequestID:  requestID,
		EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
		Version:    MessageVersion,
	}
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
