package details

import (
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

func (m *ServiceMock) GetDetails(ctx context.Context, userUID string) (*entitlementservice.Details, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entitlementservice.Details), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestDetailsHandler_ServeHTTP(t *testing.T) {
	now := time.Now().UTC()
	end := now.AddDate(0, 0, 45)
	active := &entitlementservice.Details{
		Membership: models.Membership{
			Type:      models.MembershipPremium,
			StartDate: &now,
			EndDate:   &end,
		},
		IsActive:        true,
		EligibleForFree: false,
		Price:           199,
		DurationDays:    90,
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
			name:    "active premium membership",
			userUID: "uid-1",
			setupMocks: func(s *ServiceMock) {
				s.On("GetDetails", mock.Anything, "uid-1").Return(active, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
			checkData: func(t *testing.T, data map[string]any) {
				membership, ok := data["membership"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, models.MembershipPremium, membership["type"])
				assert.Equal(t, true, membership["is_active"])
				assert.Equal(t, float64(199), membership["price"])
				assert.Equal(t, float64(90), membership["duration_days"])
				assert.Equal(t, false, data["eligible_for_free"])
			},
		},
		{
			name:    "free membership with eligibility",
			userUID: "uid-2",
			setupMocks: func(s *ServiceMock) {
				s.On("GetDetails", mock.Anything, "uid-2").Return(&entitlementservice.Details{
					Membership:      models.Membership{Type: models.MembershipFree},
					IsActive:        false,
					EligibleForFree: true,
					Price:           199,
					DurationDays:    90,
				}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
			checkData: func(t *testing.T, data map[string]any) {
				membership, ok := data["membership"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, models.MembershipFree, membership["type"])
				assert.Equal(t, false, membership["is_active"])
				assert.Equal(t, true, data["eligible_for_free"])
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
				s.On("GetDetails", mock.Anything, "uid-1").Return(nil, repository.ErrUserNotFound).Once()
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      "user not found",
			wantStatus:     "Error",
		},
		{
			name:    "service error",
			userUID: "uid-1",
			setupMocks: func(s *ServiceMock) {
				s.On("GetDetails", mock.Anything, "uid-1").Return(nil, errors.New("db error")).Once()
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

			req := httptest.NewRequest(http.MethodGet, "/membership/details", nil)
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
