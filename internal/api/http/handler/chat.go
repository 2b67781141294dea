package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/chatline/chatline-server/internal/apierrors"
	"github.com/chatline/chatline-server/internal/logger"
	"github.com/chatline/chatline-server/internal/model"
	"github.com/chatline/chatline-server/internal/service"
)

// ChatService defines the messaging operations exposed over HTTP.
type ChatService interface {
	Sidebar(ctx context.Context, viewerID uuid.UUID) ([]model.User, error)
	GetConversation(ctx context.Context, userID, peerID uuid.UUID) ([]model.Message, error)
	Send(ctx context.Context, params model.SendMessageParams) (model.Message, error)
	DeleteChats(ctx context.Context, actorID uuid.UUID, peerIDs []uuid.UUID) (service.DeletionResult, error)
}

// Chat handles the HTTP endpoints for messaging.
type Chat struct {
	chatService    ChatService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewChat creates a new Chat handler.
func NewChat(chatService ChatService, contextManager model.ContextManager, logger *logger.Logger) *Chat {
	return &Chat{
		chatService:    chatService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Sidebar returns the users the caller can start or continue a chat with.
func (h *Chat) Sidebar(w http.ResponseWriter, r *http.Request) {
	userID, err := h.extractUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	users, err := h.chatService.Sidebar(r.Context(), userID)
	if err != nil {
		h.logger.Error("chat handler: sidebar failed", "user_id", userID, "error", err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// GetMessages returns the full conversation with the peer in the path.
func (h *Chat) GetMessages(w http.ResponseWriter, r *http.Request) {
	userID, err := h.extractUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	peerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, apierrors.NewErrInvalidMessage("malformed peer id"))
		return
	}

	messages, err := h.chatService.GetConversation(r.Context(), userID, peerID)
	if err != nil {
		h.logger.Error("chat handler: get messages failed",
			"user_id", userID,
			"peer_id", peerID,
			"error", err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

type sendRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

// Send persists a message to the peer in the path and pushes it to the
// peer's live connections. The image field carries a base64 data URI.
func (h *Chat) Send(w http.ResponseWriter, r *http.Request) {
	userID, err := h.extractUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	receiverID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, apierrors.NewErrInvalidMessage("malformed receiver id"))
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierrors.NewErrInvalidMessage("malformed request body"))
		return
	}

	image, contentType, err := decodeImageDataURI(req.Image)
	if err != nil {
		writeError(w, err)
		return
	}

	message, err := h.chatService.Send(r.Context(), model.SendMessageParams{
		SenderID:         userID,
		ReceiverID:       receiverID,
		Text:             req.Text,
		Image:            image,
		ImageContentType: contentType,
	})
	if err != nil {
		h.logger.Error("chat handler: send failed",
			"user_id", userID,
			"receiver_id", receiverID,
			"error", err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, message)
}

type deleteChatsRequest struct {
	UserIDs []string `json:"userIds"`
}

// DeleteChats removes the conversations with the listed peers and the peer
// accounts themselves.
func (h *Chat) DeleteChats(w http.ResponseWriter, r *http.Request) {
	userID, err := h.extractUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	var req deleteChatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierrors.NewErrInvalidPeerList("malformed request body"))
		return
	}

	peerIDs := make([]uuid.UUID, 0, len(req.UserIDs))
	for _, raw := range req.UserIDs {
		peerID, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, apierrors.NewErrInvalidPeerList("malformed peer id"))
			return
		}
		peerIDs = append(peerIDs, peerID)
	}

	result, err := h.chatService.DeleteChats(r.Context(), userID, peerIDs)
	if err != nil {
		h.logger.Error("chat handler: delete chats failed",
			"user_id", userID,
			"error", err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Chat) extractUserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, apierrors.NewErrMissingAuthorizationToken()
	}
	return userID, nil
}

// decodeImageDataURI extracts content type and raw bytes from a data URI of
// the form data:image/png;base64,payload. An empty input means no image.
func decodeImageDataURI(uri string) ([]byte, string, error) {
	if uri == "" {
		return nil, "", nil
	}

	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", apierrors.NewErrInvalidMessage("image is not a data uri")
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, "", apierrors.NewErrInvalidMessage("image data uri is not base64 encoded")
	}
	contentType := strings.TrimSuffix(meta, ";base64")

	image, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", apierrors.NewErrInvalidMessage("image payload is not valid base64")
	}
	if len(image) == 0 {
		return nil, "", apierrors.NewErrInvalidMessage("image payload is empty")
	}

	return image, contentType, nil
}
