// Package register реализует HTTP-обработчик регистрации пользователей.
//
// В нём определяется структура Request для входных данных, выполняется декодирование JSON,
// проверка и валидация полей, а также делегирование операции сервису аутентификации.
// При успешной регистрации возвращается JSON с сессионным токеном и данными
// пользователя без хэша пароля; в случае ошибок формируются соответствующие HTTP-ответы.
package register

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/mediacareers/membership-service/internal/http/response"
	"github.com/mediacareers/membership-service/internal/lib/sl"
	"github.com/mediacareers/membership-service/internal/models"
	"github.com/mediacareers/membership-service/internal/storage/repository"
)

// Request — структура входных данных для регистрации.
//
// Email приводится к нижнему регистру на стороне сервиса, пароль — минимум 6 символов.
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required,max=100"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
}

// Handler обрабатывает HTTP-запросы на регистрацию.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Сервис бизнес-логики аутентификации
	notifier Notifier            // Публикация приветственного письма в очередь
	validate *validator.Validate // Валидатор для проверки входных данных
}

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Register(ctx context.Context, email, password, name, phone string) (*models.User, string, error)
}

// Notifier публикует приветственное письмо в очередь уведомлений.
// Отправка строго best-effort: ошибка публикации не влияет на результат регистрации.
type Notifier interface {
	PublishWelcomeEmail(msg models.WelcomeEmail) error
}

// New создает новый экземпляр Handler с указанными логгером, сервисом и нотификатором.
func New(log *slog.Logger, service Service, notifier Notifier) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		notifier: notifier,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Description Создает учетную запись с бесплатным членством и возвращает сессионный токен.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные нового пользователя"
// @Success 200 {object} map[string]any "Успешная регистрация"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или занятый email"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("email", req.Email))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	user, token, err := h.service.Register(r.Context(), req.Email, req.Password, req.Name, req.Phone)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			log.Error("email already registered", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("user already exists with this email"))
			return
		}
		log.Error("registration failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to register user"))
		return
	}

	if err := h.notifier.PublishWelcomeEmail(models.WelcomeEmail{Email: user.Email, Name: user.Name}); err != nil {
		log.Warn("failed to publish welcome email", sl.Err(err))
	}

	log.Info("user registered", slog.String("user_uid", user.UID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"token": token,
		"user": map[string]any{
			"uid":        user.UID,
			"name":       user.Name,
			"email":      user.Email,
			"membership": user.Membership,
		},
	}))
}
