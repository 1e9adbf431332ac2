package enums

import (
	"fmt"
	"strings"
)

// MessageType distinguishes text chat messages from image messages.
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
)

func (m MessageType) IsValid() bool {
	return m == MessageTypeText || m == MessageTypeImage
}

// ParseMessageType converts raw input; empty means text.
func ParseMessageType(value string) (MessageType, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return MessageTypeText, nil
	}
	candidate := MessageType(trimmed)
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid message type %q", value)
}

// RoomEvent names the events broadcast to chat room members.
type RoomEvent string

const (
	RoomEventReceiveMessage RoomEvent = "receive-message"
	RoomEventReceiveImage   RoomEvent = "receive-image"
)

// EventFor returns the broadcast event for a message type.
func (m MessageType) EventFor() RoomEvent {
	if m == MessageTypeImage {
		return RoomEventReceiveImage
	}
	return RoomEventReceiveMessage
}
