package mailer

import (
	"context"
	"strings"
)

// Message kinds, used as metric and log labels.
const (
	KindRegistrationDecision = "registration_decision"
	KindPermitDecision       = "permit_decision"
)

// Address is a sender or recipient.
type Address struct {
	Name  string
	Email string
}

// Attachment is a file carried with a message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a composed email ready for a transport.
type Message struct {
	Kind        string
	To          []string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// HasAttachment reports whether a non-empty attachment with the given content type is present.
func (m Message) HasAttachment(contentType string) bool {
	for _, a := range m.Attachments {
		if strings.EqualFold(a.ContentType, contentType) && len(a.Data) > 0 {
			return true
		}
	}
	return false
}

// Transport delivers a composed message.
type Transport interface {
	Name() string
	Send(ctx context.Context, from Address, msg Message) error
}
