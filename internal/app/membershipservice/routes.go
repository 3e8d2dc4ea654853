// Package membershipservice собирает HTTP-приложение сервиса членства.
package membershipservice

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/mediacareers/membership-service/internal/config"
	"github.com/mediacareers/membership-service/internal/http/handlers/auth/login"
	"github.com/mediacareers/membership-service/internal/http/handlers/auth/me"
	"github.com/mediacareers/membership-service/internal/http/handlers/auth/profileupdate"
	"github.com/mediacareers/membership-service/internal/http/handlers/auth/register"
	"github.com/mediacareers/membership-service/internal/http/handlers/membership/claimfree"
	"github.com/mediacareers/membership-service/internal/http/handlers/membership/confirmpayment"
	"github.com/mediacareers/membership-service/internal/http/handlers/membership/details"
	"github.com/mediacareers/membership-service/internal/http/handlers/membership/paymentqr"
	"github.com/mediacareers/membership-service/internal/http/middlewarectx"
	authservice "github.com/mediacareers/membership-service/internal/services/auth"
	entitlementservice "github.com/mediacareers/membership-service/internal/services/entitlement"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, cfg *config.Config, logger *slog.Logger, auth *authservice.AuthService, entitlements *entitlementservice.EntitlementService, notifier register.Notifier) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, auth, notifier).ServeHTTP)
		r.Post("/login", login.New(logger, auth).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/me", me.New(logger, auth).ServeHTTP)
			r.Put("/profile", profileupdate.New(logger, auth).ServeHTTP)
			r.Get("/membership/details", details.New(logger, entitlements).ServeHTTP)
			r.Get("/membership/payment-qr", paymentqr.New(logger, auth, cfg.UPI, cfg.Membership.Price).ServeHTTP)
			r.Post("/membership/confirm-payment", confirmpayment.New(logger, entitlements).ServeHTTP)
			r.Post("/membership/claim-free", claimfree.New(logger, entitlements).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
