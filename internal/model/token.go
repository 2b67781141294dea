package model

import "github.com/google/uuid"

// TokenManager generates and validates access tokens. Credential issuance
// lives outside this service; the bearer token is the whole authentication
// contract.
type TokenManager interface {
	GenerateAccessToken(userID uuid.UUID) (string, error)
	ParseAccessToken(token string) (uuid.UUID, error)
}
