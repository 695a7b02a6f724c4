package server

import (
	"encoding/json"
	"time"

	"github.com/lox/rummycircle/internal/game"
)

// MessageType identifies a WebSocket message
type MessageType string

const (
	// Client → Server
	MessageTypeAction   MessageType = "action"
	MessageTypeCommand  MessageType = "command"
	MessageTypeSnapshot MessageType = "snapshot"

	// Server → Client
	MessageTypeState MessageType = "state"
	MessageTypeError MessageType = "error"
)

func (mt MessageType) String() string {
	return string(mt)
}

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	RequestID string          `json:"requestId,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message stamped with ts
func NewMessage(messageType MessageType, requestID string, data any, ts time.Time) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		RequestID: requestID,
		Data:      dataBytes,
		Timestamp: ts,
	}, nil
}

// CommandData carries a typed command such as "select 3"
type CommandData struct {
	Text string `json:"text"`
}

// ErrorData reports a rejected message along with the unchanged state
type ErrorData struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	State   *game.Snapshot `json:"state,omitempty"`
}
