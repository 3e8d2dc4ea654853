package login

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mediacareers/membership-service/internal/models"
	authservice "github.com/mediacareers/membership-service/internal/services/auth"
)

type ServiceMock struct{ mock.Mock }

func (m *ServiceMock) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.User), args.String(1), args.Error(2)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	user := &models.User{
		UID:        "uid-7",
		Email:      "user1@example.com",
		Name:       "User One",
		Membership: models.Membership{Type: models.MembershipFree},
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		setupMocks     func(s *ServiceMock)
		wantStatusCode int
		wantError      string
		wantStatus     string
		checkData      func(t *testing.T, data map[string]any)
	}{
		{
			name: "valid login",
			requestBody: Request{
				Email:    "user1@example.com",
				Password: "password123",
			},
			setupMocks: func(s *ServiceMock) {
				s.On("Login", mock.Anything, "user1@example.com", "password123").
					Return(user, "session-token", nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
			checkData: func(t *testing.T, data map[string]any) {
				assert.Equal(t, "session-token", data["token"])
				u, ok := data["user"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, "uid-7", u["uid"])
			},
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			setupMocks:     func(_ *ServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
			wantStatus:     "Error",
		},
		{
			name: "validation error - missing email",
			requestBody: Request{
				Password: "password123",
			},
			setupMocks:     func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Email is a required field",
			wantStatus:     "Error",
		},
		{
			name: "wrong credentials",
			requestBody: Request{
				Email:    "user1@example.com",
				Password: "wrong-pass",
			},
			setupMocks: func(s *ServiceMock) {
				s.On("Login", mock.Anything, "user1@example.com", "wrong-pass").
					Return(nil, "", authservice.ErrInvalidCredentials).Once()
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "invalid credentials",
			wantStatus:     "Error",
		},
		{
			name: "service error",
			requestBody: Request{
				Email:    "user1@example.com",
				Password: "password123",
			},
			setupMocks: func(s *ServiceMock) {
				s.On("Login", mock.Anything, "user1@example.com", "password123").
					Return(nil, "", errors.New("db error")).Once()
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "internal service error",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock)

			tt.setupMocks(serviceMock)

			var bodyBytes []byte
			var err error
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err = json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				errStr, ok := got["error"].(string)
				assert.True(t, ok)
				assert.Equal(t, tt.wantError, errStr)
			} else {
				assert.Nil(t, got["error"])
			}

			if tt.checkData != nil {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				tt.checkData(t, data)
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
