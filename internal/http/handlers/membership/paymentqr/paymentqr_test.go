package paymentqr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mediacareers/membership-service/internal/config"
	"github.com/mediacareers/membership-service/internal/http/middlewarectx"
	"github.com/mediacareers/membership-service/internal/models"
	"github.com/mediacareers/membership-service/internal/storage/repository"
)

type ServiceMock struct{ mock.Mock }

func (m *ServiceMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func testUPIConfig() config.UPI {
	return config.UPI{
		UPIID:   "mediacareers@upi",
		UPIName: "MediaCareers",
	}
}

func TestPaymentQRHandler_ServeHTTP(t *testing.T) {
	user := &models.User{
		UID:   "uid-1",
		Email: "user@example.com",
		Name:  "Test User",
	}

	tests := []struct {
		name           string
		userUID        string
		setupMocks     func(s *ServiceMock)
		wantStatusCode int
		wantError      string
		wantStatus     string
		checkData      func(t *testing.T, data map[string]any)
	}{
		{
			name:    "returns qr code with payment details",
			userUID: "uid-1",
			setupMocks: func(s *ServiceMock) {
				s.On("GetUser", mock.Anything, "uid-1").Return(user, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
			checkData: func(t *testing.T, data map[string]any) {
				qr, ok := data["qr_code"].(string)
				assert.True(t, ok)
				assert.True(t, strings.HasPrefix(qr, "data:image/png;base64,"))

				// Под data URL лежит настоящий PNG.
				png, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(qr, "data:image/png;base64,"))
				assert.NoError(t, err)
				assert.True(t, len(png) > 8)
				assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])

				assert.Equal(t, float64(199), data["amount"])
				assert.Equal(t, "mediacareers@upi", data["upi_id"])
				assert.Contains(t, data["instructions"], "transaction ID")
			},
		},
		{
			name:           "missing user identity",
			userUID:        "",
			setupMocks:     func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "user identification missing",
			wantStatus:     "Error",
		},
		{
			name:    "user not found",
			userUID: "uid-1",
			setupMocks: func(s *ServiceMock) {
				s.On("GetUser", mock.Anything, "uid-1").Return(nil, repository.ErrUserNotFound).Once()
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      "user not found",
			wantStatus:     "Error",
		},
		{
			name:    "service error",
			userUID: "uid-1",
			setupMocks: func(s *ServiceMock) {
				s.On("GetUser", mock.Anything, "uid-1").Return(nil, errors.New("db error")).Once()
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "internal service error",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock, testUPIConfig(), 199)

			tt.setupMocks(serviceMock)

			req := httptest.NewRequest(http.MethodGet, "/membership/payment-qr", nil)
			if tt.userUID != "" {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID))
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err := json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				errStr, ok := got["error"].(string)
				assert.True(t, ok)
				assert.Equal(t, tt.wantError, errStr)
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

func TestPaymentURL(t *testing.T) {
	h := New(newNoopLogger(), new(ServiceMock), testUPIConfig(), 199)

	got := h.paymentURL("user@example.com")
	assert.True(t, strings.HasPrefix(got, "upi://pay?"))
	assert.Contains(t, got, "pa=mediacareers%40upi")
	assert.Contains(t, got, "am=199")
	assert.Contains(t, got, "cu=INR")
	assert.Contains(t, got, "tn=MediaCareers+Premium+-+user%40example.com")
}
