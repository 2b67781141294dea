package context

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

// userIDKey is the context key used to store and retrieve the authenticated
// user ID.
const userIDKey contextKey = "user_id"

// Manager represents an HTTP context manager for user ID operations.
// It provides methods to set and retrieve user IDs from request contexts.
type Manager struct{}

// NewManager creates a new HTTP context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetUserIDToContext returns a child context carrying the user ID.
func (m *Manager) SetUserIDToContext(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserIDFromContext retrieves the user ID previously stored in the
// context.
//
// Returns the user UUID and a boolean indicating if the user ID was found.
func (m *Manager) GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}

	return userID, true
}
