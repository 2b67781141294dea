package model

import (
	"context"

	"github.com/google/uuid"
)

// Event names pushed over live connections.
const (
	EventNewMessage   = "newMessage"
	EventChatsDeleted = "chatsDeleted"
)

// Notifier pushes an event to a user's live connections, best-effort. An
// offline user is not an error: durability comes from the stores, the live
// push is a latency optimization only. Implementations must not block on
// transport I/O.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, event string, payload any)
}

// ChatsDeletedEvent is the payload of EventChatsDeleted, sent to the acting
// user after a deletion run with the peers actually removed.
type ChatsDeletedEvent struct {
	DeletedUserIDs []uuid.UUID `json:"deletedUserIds"`
}
