package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MessageStore defines persistence operations for the message log.
type MessageStore interface {
	Create(ctx context.Context, message Message) (Message, error)
	// GetConversation returns every message exchanged between the two users,
	// in both directions, ordered by creation time.
	GetConversation(ctx context.Context, userID, peerID uuid.UUID) ([]Message, error)
	// DeleteConversations removes every message between userID and any of
	// peerIDs, in both directions, and returns the number of rows removed.
	DeleteConversations(ctx context.Context, userID uuid.UUID, peerIDs []uuid.UUID) (int64, error)
}

// Message is one direct message between two users. Immutable once created
// except for bulk deletion. Seq is assigned by the store and, together with
// CreatedAt, gives a stable total order within a conversation.
type Message struct {
	ID         uuid.UUID `json:"id"`
	Seq        int64     `json:"-"`
	SenderID   uuid.UUID `json:"senderId"`
	ReceiverID uuid.UUID `json:"receiverId"`
	Text       string    `json:"text,omitempty"`
	ImageURL   string    `json:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SendMessageParams contains parameters to send a message. Image carries raw
// decoded media bytes; empty means a text-only message.
type SendMessageParams struct {
	SenderID         uuid.UUID
	ReceiverID       uuid.UUID
	Text             string
	Image            []byte
	ImageContentType string
}
