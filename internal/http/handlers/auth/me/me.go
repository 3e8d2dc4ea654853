// Package me реализует HTTP-обработчик получения текущего пользователя.
//
// Идентификатор пользователя берется из контекста, заполненного JWT middleware.
// Хэш пароля в ответ не попадает.
package me

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
	"github.com/mediacareers/membership-service/internal/storage/repository"
)

// Handler обрабатывает запросы на получение данных текущего пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения пользователя.
type Service interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Текущий пользователь
// @Description Возвращает профиль аутентифицированного пользователя без хэша пароля.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Данные пользователя"
// @Failure 401 {object} response.ErrorResponse "Неаутентифицированный запрос"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"

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

	user, err := h.service.GetUser(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Error("user not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to read user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	log.Info("success to read user", slog.String("user_uid", user.UID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user": map[string]any{
			"uid":        user.UID,
			"name":       user.Name,
			"email":      user.Email,
			"phone":      user.Phone,
			"profile":    user.Profile,
			"membership": user.Membership,
			"last_login": user.LastLogin,
			"created_at": user.CreatedAt,
		},
	}))
}
