// Package claimfree реализует HTTP-обработчик одноразового бесплатного
// премиум-гранта за подтвержденный опыт работы.
//
// Ошибки предусловий различаются точно: недостаток стажа и уже активное
// окно возвращают разные сообщения, но один статус 400.
package claimfree

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
	"github.com/mediacareers/membership-service/internal/models"
	entitlementservice "github.com/mediacareers/membership-service/internal/services/entitlement"
	"github.com/mediacareers/membership-service/internal/storage/repository"
)

// Handler обрабатывает запросы бесплатного гранта.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс движка членства для бесплатного гранта.
type Service interface {
	ClaimFree(ctx context.Context, userUID string) (*models.Membership, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Бесплатное премиум-членство
// @Description Активирует премиум-окно бесплатно при стаже не меньше настроенного порога.
// @Tags Membership
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Членство активировано"
// @Failure 400 {object} response.ErrorResponse "Недостаточный стаж или активное окно"
// @Failure 401 {object} response.ErrorResponse "Неаутентифицированный запрос"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /membership/claim-free [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.membership.claimfree"

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

	membership, err := h.service.ClaimFree(r.Context(), userUID)
	if err != nil {
		switch {
		case errors.Is(err, entitlementservice.ErrNotEligible):
			log.Error("not eligible for free membership", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("you need at least 1 year of experience to claim free membership"))
		case errors.Is(err, entitlementservice.ErrAlreadyActive):
			log.Error("membership already active", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("you already have an active premium membership"))
		case errors.Is(err, repository.ErrUserNotFound):
			log.Error("user not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("failed to claim free membership", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal service error"))
		}
		return
	}

	log.Info("free premium membership activated", slog.String("user_uid", userUID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "free premium membership activated",
		"membership": map[string]any{
			"type":       membership.Type,
			"start_date": membership.StartDate,
			"end_date":   membership.EndDate,
		},
	}))
}
