package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpcontext "github.com/chatline/chatline-server/internal/api/http/context"
	"github.com/chatline/chatline-server/internal/apierrors"
	"github.com/chatline/chatline-server/internal/model"
	"github.com/chatline/chatline-server/internal/service"
	"github.com/chatline/chatline-server/internal/testutil"
)

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) Sidebar(ctx context.Context, viewerID uuid.UUID) ([]model.User, error) {
	args := m.Called(ctx, viewerID)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockChatService) GetConversation(ctx context.Context, userID, peerID uuid.UUID) ([]model.Message, error) {
	args := m.Called(ctx, userID, peerID)
	return args.Get(0).([]model.Message), args.Error(1)
}

func (m *MockChatService) Send(ctx context.Context, params model.SendMessageParams) (model.Message, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.Message), args.Error(1)
}

func (m *MockChatService) DeleteChats(ctx context.Context, actorID uuid.UUID, peerIDs []uuid.UUID) (service.DeletionResult, error) {
	args := m.Called(ctx, actorID, peerIDs)
	return args.Get(0).(service.DeletionResult), args.Error(1)
}

func newChatHandler() (*Chat, *MockChatService, *httpcontext.Manager) {
	svc := &MockChatService{}
	cm := httpcontext.NewManager()
	h := NewChat(svc, cm, testutil.MakeNoopLogger())
	return h, svc, cm
}

// authedRequest builds a request whose context carries the given user ID and
// whose path values are resolved through a real mux pattern.
func authedRequest(t *testing.T, cm *httpcontext.Manager, userID uuid.UUID, method, pattern, target string, body []byte) (*http.Request, func(http.HandlerFunc) *httptest.ResponseRecorder) {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req = req.WithContext(cm.SetUserIDToContext(req.Context(), userID))

	serve := func(h http.HandlerFunc) *httptest.ResponseRecorder {
		mux := http.NewServeMux()
		mux.HandleFunc(pattern, h)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}
	return req, serve
}

func TestChat_Sidebar(t *testing.T) {
	h, svc, cm := newChatHandler()

	userID := uuid.New()
	visible := []model.User{{ID: uuid.New(), FullName: "Alice"}}
	svc.On("Sidebar", mock.Anything, userID).Return(visible, nil)

	_, serve := authedRequest(t, cm, userID, http.MethodGet, "GET /api/messages/users", "/api/messages/users", nil)
	rec := serve(h.Sidebar)

	assert.Equal(t, http.StatusOK, rec.Code)

	var users []model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Len(t, users, 1)
	assert.Equal(t, "Alice", users[0].FullName)
}

func TestChat_Sidebar_Unauthenticated(t *testing.T) {
	h, _, _ := newChatHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/messages/users", nil)
	rec := httptest.NewRecorder()
	h.Sidebar(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChat_GetMessages(t *testing.T) {
	h, svc, cm := newChatHandler()

	userID := uuid.New()
	peerID := uuid.New()
	log := []model.Message{{ID: uuid.New(), SenderID: peerID, ReceiverID: userID, Text: "hi"}}
	svc.On("GetConversation", mock.Anything, userID, peerID).Return(log, nil)

	_, serve := authedRequest(t, cm, userID, http.MethodGet, "GET /api/messages/{id}", "/api/messages/"+peerID.String(), nil)
	rec := serve(h.GetMessages)

	assert.Equal(t, http.StatusOK, rec.Code)

	var messages []model.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &messages))
	assert.Len(t, messages, 1)
}

func TestChat_GetMessages_MalformedPeerID(t *testing.T) {
	h, svc, cm := newChatHandler()

	_, serve := authedRequest(t, cm, uuid.New(), http.MethodGet, "GET /api/messages/{id}", "/api/messages/not-a-uuid", nil)
	rec := serve(h.GetMessages)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "GetConversation", mock.Anything, mock.Anything, mock.Anything)
}

func TestChat_Send(t *testing.T) {
	userID := uuid.New()
	receiverID := uuid.New()
	imageBytes := []byte("png-bytes")
	dataURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(imageBytes)

	tests := []struct {
		name       string
		body       string
		mockSetup  func(*MockChatService)
		wantStatus int
		wantKind   string
	}{
		{
			name: "text message",
			body: `{"text":"hello"}`,
			mockSetup: func(svc *MockChatService) {
				svc.On("Send", mock.Anything, mock.MatchedBy(func(p model.SendMessageParams) bool {
					return p.SenderID == userID && p.ReceiverID == receiverID && p.Text == "hello" && p.Image == nil
				})).Return(model.Message{ID: uuid.New(), Text: "hello"}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "image message decodes the data uri",
			body: `{"image":"` + dataURI + `"}`,
			mockSetup: func(svc *MockChatService) {
				svc.On("Send", mock.Anything, mock.MatchedBy(func(p model.SendMessageParams) bool {
					return bytes.Equal(p.Image, imageBytes) && p.ImageContentType == "image/png"
				})).Return(model.Message{ID: uuid.New(), ImageURL: "http://media.local/key"}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "malformed body",
			body:       `{"text":`,
			mockSetup:  func(svc *MockChatService) {},
			wantStatus: http.StatusBadRequest,
			wantKind:   "invalid_argument",
		},
		{
			name:       "image is not a data uri",
			body:       `{"image":"http://example.com/cat.png"}`,
			mockSetup:  func(svc *MockChatService) {},
			wantStatus: http.StatusBadRequest,
			wantKind:   "invalid_argument",
		},
		{
			name: "upload failure maps to bad gateway",
			body: `{"image":"` + dataURI + `"}`,
			mockSetup: func(svc *MockChatService) {
				svc.On("Send", mock.Anything, mock.Anything).
					Return(model.Message{}, apierrors.NewErrUpload(errors.New("bucket gone")))
			},
			wantStatus: http.StatusBadGateway,
			wantKind:   "upload_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, svc, cm := newChatHandler()
			tt.mockSetup(svc)

			_, serve := authedRequest(t, cm, userID,
				http.MethodPost, "POST /api/messages/send/{id}", "/api/messages/send/"+receiverID.String(), []byte(tt.body))
			rec := serve(h.Send)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantKind != "" {
				var body map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.wantKind, body["error"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestChat_DeleteChats(t *testing.T) {
	h, svc, cm := newChatHandler()

	userID := uuid.New()
	peerID := uuid.New()
	svc.On("DeleteChats", mock.Anything, userID, []uuid.UUID{peerID}).
		Return(service.DeletionResult{
			MessagesDeleted: 4,
			RemovedPeerIDs:  []uuid.UUID{peerID},
			AbsentPeerIDs:   []uuid.UUID{},
		}, nil)

	body := []byte(`{"userIds":["` + peerID.String() + `"]}`)
	_, serve := authedRequest(t, cm, userID, http.MethodPost, "POST /api/messages/delete-chats", "/api/messages/delete-chats", body)
	rec := serve(h.DeleteChats)

	assert.Equal(t, http.StatusOK, rec.Code)

	var result map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.EqualValues(t, 4, result["deletedMessagesCount"])
	assert.Equal(t, []any{peerID.String()}, result["deletedUserIds"])
	assert.Equal(t, []any{}, result["absentUserIds"])
}

func TestChat_DeleteChats_MalformedPeerID(t *testing.T) {
	h, svc, cm := newChatHandler()

	body := []byte(`{"userIds":["not-a-uuid"]}`)
	_, serve := authedRequest(t, cm, uuid.New(), http.MethodPost, "POST /api/messages/delete-chats", "/api/messages/delete-chats", body)
	rec := serve(h.DeleteChats)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "DeleteChats", mock.Anything, mock.Anything, mock.Anything)
}

func TestChat_DeleteChats_ServiceRejection(t *testing.T) {
	h, svc, cm := newChatHandler()

	userID := uuid.New()
	svc.On("DeleteChats", mock.Anything, userID, []uuid.UUID{userID}).
		Return(service.DeletionResult{}, apierrors.NewErrInvalidPeerList("own identity in peer list"))

	body := []byte(`{"userIds":["` + userID.String() + `"]}`)
	_, serve := authedRequest(t, cm, userID, http.MethodPost, "POST /api/messages/delete-chats", "/api/messages/delete-chats", body)
	rec := serve(h.DeleteChats)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
