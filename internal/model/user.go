package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for the user directory.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, user User) (User, error)
	// ListVisible returns every user except the viewer and the viewer's
	// hidden peers.
	ListVisible(ctx context.Context, viewerID uuid.UUID) ([]User, error)
	// AddHiddenPeers unions peerIDs into the user's hidden peer set.
	// Re-adding an existing peer is a no-op.
	AddHiddenPeers(ctx context.Context, id uuid.UUID, peerIDs []uuid.UUID) error
	// Delete permanently removes the user record. Returns ErrNotFound if the
	// record is already absent.
	Delete(ctx context.Context, id uuid.UUID) error
}

// User represents a directory entry with profile fields and the grow-only
// hidden peer set. Hidden peers affect only this user's own sidebar.
type User struct {
	ID           uuid.UUID   `json:"id"`
	Email        string      `json:"email"`
	FullName     string      `json:"fullName"`
	ProfilePhoto string      `json:"profilePhoto"`
	About        string      `json:"about"`
	HiddenPeers  []uuid.UUID `json:"-"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}
