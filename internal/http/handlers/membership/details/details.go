// Package details реализует HTTP-обработчик получения состояния членства.
//
// Handler извлекает uid пользователя из контекста, вызывает бизнес-логику и
// возвращает снимок членства вместе с производными фактами: активность окна,
// право на бесплатный грант, цена и длительность премиума.
package details

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/mediacareers/membership-service/internal/http/middlewarectx"
	"github.com/mediacareers/membership-service/internal/http/response"
	"github.com/mediacareers/membership-service/internal/lib/sl"
	entitlementservice "github.com/mediacareers/membership-service/internal/services/entitlement"
	"github.com/mediacareers/membership-service/internal/storage/repository"
)

// Handler обрабатывает запросы на получение данных членства.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики членства.
type Service interface {
	GetDetails(ctx context.Context, userUID string) (*entitlementservice.Details, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Состояние членства
// @Description Возвращает тип членства, окно действия, активность и право на бесплатный грант.
// @Tags Membership
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Состояние членства"
// @Failure 401 {object} response.ErrorResponse "Неаутентифицированный запрос"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /membership/details [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.membership.details"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}

	details, err := h.service.GetDetails(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Error("user not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to read membership details", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	log.Info("success to read membership details", slog.String("user_uid", userUID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"membership": map[string]any{
			"type":          details.Membership.Type,
			"start_date":    details.Membership.StartDate,
			"end_date":      details.Membership.EndDate,
			"is_active":     details.IsActive,
			"price":         details.Price,
			"duration_days": details.DurationDays,
		},
		"eligible_for_free": details.EligibleForFree,
	}))
}
