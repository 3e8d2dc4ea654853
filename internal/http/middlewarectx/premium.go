package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mediacareers/membership-service/internal/http/response"
	"github.com/mediacareers/membership-service/internal/lib/sl"
)

// EntitlementServiceInterface определяет интерфейс проверки действующего
// премиум-доступа пользователя.
type EntitlementServiceInterface interface {
	HasActiveAccess(ctx context.Context, userUID string) (bool, error)
}

// PremiumMiddleware создает middleware, пропускающий только пользователей с
// действующим премиум-окном. Регистрируется строго после JWTMiddleware:
// без аутентификации статус членства не вычисляется.
//
// Отсутствие премиума — это 403, никогда не 401: клиент аутентифицирован,
// но не имеет права на операцию.
func PremiumMiddleware(log *slog.Logger, entitlements EntitlementServiceInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userUID, ok := r.Context().Value(UserUID).(string)
			if !ok || userUID == "" {
				log.Error("user identification missing")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			active, err := entitlements.HasActiveAccess(r.Context(), userUID)
			if err != nil {
				log.Error("failed to get membership status", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}

			if !active {
				log.Info("premium membership required, access denied", slog.String("user_uid", userUID))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("premium membership required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
