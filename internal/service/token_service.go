package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/chatline/chatline-server/internal/logger"
	"github.com/chatline/chatline-server/internal/model"
)

// TokenService resolves bearer tokens to user identities. It is the narrow
// contract through which authentication reaches the rest of the system;
// credential issuance happens elsewhere.
type TokenService struct {
	manager model.TokenManager
	logger  *logger.Logger
}

func NewTokenService(manager model.TokenManager, logger *logger.Logger) *TokenService {
	return &TokenService{manager: manager, logger: logger}
}

// GetUserID validates the token and returns the identity it was issued for.
func (s *TokenService) GetUserID(_ context.Context, token string) (uuid.UUID, error) {
	userID, err := s.manager.ParseAccessToken(token)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to resolve token: %w", err)
	}
	return userID, nil
}
