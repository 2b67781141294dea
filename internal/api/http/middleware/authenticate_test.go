package middleware

import (
	"context"
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
	"github.com/chatline/chatline-server/internal/testutil"
)

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GetUserID(ctx context.Context, token string) (uuid.UUID, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func TestAuthenticate_Handle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		authHeader     string
		queryToken     string
		tokenSvcUserID uuid.UUID
		tokenSvcErr    error
		wantStatus     int
		wantUserInCtx  bool
	}{
		{
			name:       "missing authorization header",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:        "invalid token",
			authHeader:  "Bearer invalid",
			tokenSvcErr: errors.New("token is malformed"),
			wantStatus:  http.StatusUnauthorized,
		},
		{
			name:           "nil user id from token",
			authHeader:     "Bearer token",
			tokenSvcUserID: uuid.Nil,
			wantStatus:     http.StatusUnauthorized,
		},
		{
			name:           "valid bearer token",
			authHeader:     "Bearer token",
			tokenSvcUserID: uuid.New(),
			wantStatus:     http.StatusOK,
			wantUserInCtx:  true,
		},
		{
			name:           "token from query parameter",
			queryToken:     "token",
			tokenSvcUserID: uuid.New(),
			wantStatus:     http.StatusOK,
			wantUserInCtx:  true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cm := httpcontext.NewManager()
			svc := &MockTokenService{}
			if tt.authHeader != "" || tt.queryToken != "" {
				svc.On("GetUserID", mock.Anything, "token").Return(tt.tokenSvcUserID, tt.tokenSvcErr).Maybe()
				svc.On("GetUserID", mock.Anything, "invalid").Return(tt.tokenSvcUserID, tt.tokenSvcErr).Maybe()
			}
			m := NewAuthenticate(svc, cm, testutil.MakeNoopLogger())

			var gotUserID uuid.UUID
			var gotOK bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUserID, gotOK = cm.GetUserIDFromContext(r.Context())
			})

			target := "/api/messages/users"
			if tt.queryToken != "" {
				target += "?token=" + tt.queryToken
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			m.Handle(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantUserInCtx {
				assert.True(t, gotOK)
				assert.Equal(t, tt.tokenSvcUserID, gotUserID)
			} else {
				assert.False(t, gotOK)

				var body map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, "unauthenticated", body["error"])
			}
		})
	}
}
