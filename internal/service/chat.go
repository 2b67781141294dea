package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/chatline/chatline-server/internal/apierrors"
	"github.com/chatline/chatline-server/internal/logger"
	"github.com/chatline/chatline-server/internal/model"
)

// Chat implements the messaging operations: sidebar listing, conversation
// fetch, message send and the chat deletion workflow.
type Chat struct {
	messageStore model.MessageStore
	userStore    model.UserStore
	storage      model.Storage
	notifier     model.Notifier
	logger       *logger.Logger
}

func NewChat(
	messageStore model.MessageStore,
	userStore model.UserStore,
	storage model.Storage,
	notifier model.Notifier,
	logger *logger.Logger,
) *Chat {
	return &Chat{
		messageStore: messageStore,
		userStore:    userStore,
		storage:      storage,
		notifier:     notifier,
		logger:       logger,
	}
}

// Sidebar returns the users visible to the viewer: everyone except the
// viewer itself and the viewer's hidden peers.
func (s *Chat) Sidebar(ctx context.Context, viewerID uuid.UUID) ([]model.User, error) {
	users, err := s.userStore.ListVisible(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list visible users: %w", err)
	}

	return users, nil
}

// GetConversation returns every message exchanged between the user and the
// peer, oldest first. Both participants see the same log.
func (s *Chat) GetConversation(ctx context.Context, userID, peerID uuid.UUID) ([]model.Message, error) {
	messages, err := s.messageStore.GetConversation(ctx, userID, peerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	return messages, nil
}

// Send persists a message and then pushes it, best-effort, to the receiver's
// live connections. Persistence is the only success criterion; an offline
// receiver picks the message up on the next fetch.
func (s *Chat) Send(ctx context.Context, params model.SendMessageParams) (model.Message, error) {
	if params.SenderID == uuid.Nil || params.ReceiverID == uuid.Nil {
		return model.Message{}, apierrors.NewErrInvalidMessage("sender and receiver are required")
	}
	if params.SenderID == params.ReceiverID {
		return model.Message{}, apierrors.NewErrInvalidMessage("cannot send a message to yourself")
	}
	if params.Text == "" && len(params.Image) == 0 {
		return model.Message{}, apierrors.NewErrInvalidMessage("message has no text and no image")
	}

	message := model.Message{
		ID:         uuid.New(),
		SenderID:   params.SenderID,
		ReceiverID: params.ReceiverID,
		Text:       params.Text,
	}

	var objectKey string
	if len(params.Image) > 0 {
		objectKey = s.generateMediaKey(params.SenderID)
		url, err := s.storage.Upload(ctx, objectKey,
			bytes.NewReader(params.Image), int64(len(params.Image)), params.ImageContentType)
		if err != nil {
			return model.Message{}, apierrors.NewErrUpload(err)
		}
		message.ImageURL = url
	}

	saved, err := s.messageStore.Create(ctx, message)
	if err != nil {
		if objectKey != "" {
			if err := s.storage.Delete(ctx, objectKey); err != nil {
				s.logger.Error("failed to delete uploaded media", "key", objectKey, "error", err)
			}
		}
		return model.Message{}, fmt.Errorf("failed to create message: %w", err)
	}

	s.notifier.Notify(ctx, saved.ReceiverID, model.EventNewMessage, saved)

	return saved, nil
}

func (s *Chat) generateMediaKey(senderID uuid.UUID) string {
	return fmt.Sprintf("user-%s/media-%s", senderID, uuid.New())
}
