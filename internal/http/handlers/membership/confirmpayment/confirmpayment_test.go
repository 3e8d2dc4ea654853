package confirmpayment

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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mediacareers/membership-service/internal/http/middlewarectx"
	"github.com/mediacareers/membership-service/internal/models"
	entitlementservice "github.com/mediacareers/membership-service/internal/services/entitlement"
	"github.com/mediacareers/membership-service/internal/storage/repository"
)

type ServiceMock struct{ mock.Mock }

func (m *ServiceMock) ConfirmPayment(ctx context.Context, userUID, transactionID string, amount int) (*models.Membership, error) {
	args := m.Called(ctx, userUID, transactionID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Membership), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestConfirmPaymentHandler_ServeHTTP(t *testing.T) {
	now := time.Now().UTC()
	end := now.AddDate(0, 0, 90)
	granted := &models.Membership{
		Type:      models.MembershipPremium,
		StartDate: &now,
		EndDate:   &end,
	}

	tests := []struct {
		name           string
		userUID        string
		requestBody    interface{}
		setupMocks     func(s *ServiceMock)
		wantStatusCode int
		wantError      string
		wantStatus     string
	}{
		{
			name:        "successful payment confirmation",
			userUID:     "uid-1",
			requestBody: Request{TransactionID: "txn-123", Amount: 199},
			setupMocks: func(s *ServiceMock) {
				s.On("ConfirmPayment", mock.Anything, "uid-1", "txn-123", 199).Return(granted, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:        "amount omitted",
			userUID:     "uid-1",
			requestBody: Request{TransactionID: "txn-123"},
			setupMocks: func(s *ServiceMock) {
				s.On("ConfirmPayment", mock.Anything, "uid-1", "txn-123", 0).Return(granted, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "missing user identity",
			userUID:        "",
			requestBody:    Request{TransactionID: "txn-123"},
			setupMocks:     func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "user identification missing",
			wantStatus:     "Error",
		},
		{
			name:           "invalid json body",
			userUID:        "uid-1",
			requestBody:    "not a json",
			setupMocks:     func(_ *ServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
			wantStatus:     "Error",
		},
		{
			name:           "validation error - missing transaction id",
			userUID:        "uid-1",
			requestBody:    Request{Amount: 199},
			setupMocks:     func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field TransactionID is a required field",
			wantStatus:     "Error",
		},
		{
			name:        "already active",
			userUID:     "uid-1",
			requestBody: Request{TransactionID: "txn-123"},
			setupMocks: func(s *ServiceMock) {
				s.On("ConfirmPayment", mock.Anything, "uid-1", "txn-123", 0).
					Return(nil, entitlementservice.ErrAlreadyActive).Once()
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "you already have an active premium membership",
			wantStatus:     "Error",
		},
		{
			name:        "user not found",
			userUID:     "uid-1",
			requestBody: Request{TransactionID: "txn-123"},
			setupMocks: func(s *ServiceMock) {
				s.On("ConfirmPayment", mock.Anything, "uid-1", "txn-123", 0).
					Return(nil, repository.ErrUserNotFound).Once()
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      "user not found",
			wantStatus:     "Error",
		},
		{
			name:        "service error",
			userUID:     "uid-1",
			requestBody: Request{TransactionID: "txn-123"},
			setupMocks: func(s *ServiceMock) {
				s.On("ConfirmPayment", mock.Anything, "uid-1", "txn-123", 0).
					Return(nil, errors.New("db error")).Once()
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

			req := httptest.NewRequest(http.MethodPost, "/membership/confirm-payment", bytes.NewReader(bodyBytes))
			if tt.userUID != "" {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID))
			}

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
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, "premium membership activated successfully", data["message"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
