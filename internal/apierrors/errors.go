package apierrors

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind is the machine-readable failure category carried in error responses.
type Kind string

const (
	KindInvalidArgument  Kind = "invalid_argument"
	KindUnauthenticated  Kind = "unauthenticated"
	KindNotFound         Kind = "not_found"
	KindUploadError      Kind = "upload_error"
	KindStoreUnavailable Kind = "store_unavailable"
)

// APIError is a caller-visible error: a kind for machines and a message for
// humans.
type APIError struct {
	Kind    Kind
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewErrInvalidPeerList reports a malformed or self-referential peer list.
// Fatal to the whole call, raised before any mutation.
func NewErrInvalidPeerList(detail string) *APIError {
	return &APIError{Kind: KindInvalidArgument, Message: fmt.Sprintf("invalid peer list: %s", detail)}
}

// NewErrInvalidMessage reports an unsendable message payload.
func NewErrInvalidMessage(detail string) *APIError {
	return &APIError{Kind: KindInvalidArgument, Message: fmt.Sprintf("invalid message: %s", detail)}
}

// NewErrUserNotFound reports a missing user directory entry.
func NewErrUserNotFound(id uuid.UUID) *APIError {
	return &APIError{Kind: KindNotFound, Message: fmt.Sprintf("user %s not found", id)}
}

// NewErrUpload reports a media collaborator failure. Fatal to the single
// send call only.
func NewErrUpload(err error) *APIError {
	return &APIError{Kind: KindUploadError, Message: fmt.Sprintf("media upload failed: %v", err)}
}

// NewErrMissingAuthorizationToken reports an absent bearer token.
func NewErrMissingAuthorizationToken() *APIError {
	return &APIError{Kind: KindUnauthenticated, Message: "missing authorization token"}
}

// NewErrInvalidAuthorizationToken reports an unparseable or expired bearer
// token.
func NewErrInvalidAuthorizationToken() *APIError {
	return &APIError{Kind: KindUnauthenticated, Message: "invalid authorization token"}
}
