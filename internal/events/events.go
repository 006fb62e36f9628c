package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/staffdir/apiserver/types"
)

// Contact change event types.
const (
	ContactCreated = "contact.created"
	ContactUpdated = "contact.updated"
	ContactDeleted = "contact.deleted"
)

// ContactEvent is the payload published after a contact mutation.
type ContactEvent struct {
	Type       string         `json:"type"`
	ContactID  int            `json:"contact_id"`
	Contact    *types.Contact `json:"contact,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// Publisher sends contact change events to a fixed channel.
type Publisher struct {
	backend Backend
	channel string
}

// NewPublisher constructs a Publisher over the provided backend.
func NewPublisher(backend Backend, channel string) *Publisher {
	return &Publisher{backend: backend, channel: channel}
}

// PublishContactEvent serializes and publishes a contact change event.
func (p *Publisher) PublishContactEvent(ctx context.Context, eventType string, contact types.Contact) error {
	event := ContactEvent{
		Type:       eventType,
		ContactID:  contact.ID,
		OccurredAt: time.Now(),
	}
	if eventType != ContactDeleted {
		event.Contact = &contact
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.backend.Publish(ctx, p.channel, data, map[string]string{"type": eventType})
	return err
}

// Close closes the underlying backend.
func (p *Publisher) Close() error {
	return p.backend.Close()
}
