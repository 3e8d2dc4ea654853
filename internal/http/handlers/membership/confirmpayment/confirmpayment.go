// Package confirmpayment реализует HTTP-обработчик активации премиум-членства
// по подтвержденной оплате.
//
// Движок членства доверяет переданному transaction id: интеграция с платежным
// шлюзом остается за пределами сервиса. Повторная активация при действующем
// окне отклоняется без наслоения окон.
package confirmpayment

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/mediacareers/membership-service/internal/http/middlewarectx"
	"github.com/mediacareers/membership-service/internal/http/response"
	"github.com/mediacareers/membership-service/internal/lib/sl"
	"github.com/mediacareers/membership-service/internal/models"
	entitlementservice "github.com/mediacareers/membership-service/internal/services/entitlement"
	"github.com/mediacareers/membership-service/internal/storage/repository"
)

// Request — структура входных данных подтверждения оплаты.
type Request struct {
	TransactionID string `json:"transaction_id" validate:"required"`
	Amount        int    `json:"amount" validate:"omitempty,gte=0"`
}

// Handler обрабатывает запросы подтверждения оплаты.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс движка членства для выдачи премиум-окна.
type Service interface {
	ConfirmPayment(ctx context.Context, userUID, transactionID string, amount int) (*models.Membership, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Подтверждение оплаты
// @Description Активирует премиум-членство на настроенное число дней по transaction id.
// @Tags Membership
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Данные оплаты"
// @Success 200 {object} map[string]any "Членство активировано"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или активное окно"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Неаутентифицированный запрос"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /membership/confirm-payment [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.membership.confirmpayment"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	membership, err := h.service.ConfirmPayment(r.Context(), userUID, req.TransactionID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, entitlementservice.ErrAlreadyActive):
			log.Error("membership already active", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("you already have an active premium membership"))
		case errors.Is(err, repository.ErrUserNotFound):
			log.Error("user not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("failed to confirm payment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal service error"))
		}
		return
	}

	log.Info("premium membership activated", slog.String("user_uid", userUID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "premium membership activated successfully",
		"membership": map[string]any{
			"type":       membership.Type,
			"start_date": membership.StartDate,
			"end_date":   membership.EndDate,
		},
	}))
}
