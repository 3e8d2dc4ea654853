// Package paymentqr реализует HTTP-обработчик выдачи платежного QR-кода.
//
// Сервис не интегрирован с платежным шлюзом: обработчик формирует UPI-ссылку
// с реквизитами получателя и ценой премиума, кодирует ее в QR и отдает
// клиенту. После оплаты пользователь подтверждает транзакцию отдельным
// запросом confirm-payment.
package paymentqr

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/mediacareers/membership-service/internal/config"
	"github.com/mediacareers/membership-service/internal/http/middlewarectx"
	"github.com/mediacareers/membership-service/internal/http/response"
	"github.com/mediacareers/membership-service/internal/lib/sl"
	"github.com/mediacareers/membership-service/internal/models"
	"github.com/mediacareers/membership-service/internal/storage/repository"
)

const qrSize = 300

// Handler обрабатывает запросы на получение платежного QR-кода.
type Handler struct {
	log     *slog.Logger
	service Service
	upi     config.UPI
	price   int
}

// Service описывает методы бизнес-логики, нужные обработчику.
type Service interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// New создает новый Handler с переданным логгером, сервисом и реквизитами UPI.
func New(log *slog.Logger, service Service, upi config.UPI, price int) *Handler {
	return &Handler{
		log:     log,
		service: service,
		upi:     upi,
		price:   price,
	}
}

// ServeHTTP godoc
// @Summary Платежный QR-код
// @Description Возвращает QR-код с UPI-ссылкой для оплаты премиум-членства.
// @Tags Membership
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "QR-код и реквизиты оплаты"
// @Failure 401 {object} response.ErrorResponse "Неаутентифицированный запрос"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /membership/payment-qr [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.membership.paymentqr"

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
		log.Error("failed to load user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	upiURL := h.paymentURL(user.Email)
	png, err := qrcode.Encode(upiURL, qrcode.Medium, qrSize)
	if err != nil {
		log.Error("failed to generate payment qr code", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to generate payment qr code"))
		return
	}

	log.Info("payment qr code generated", slog.String("user_uid", userUID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"qr_code":      "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		"amount":       h.price,
		"upi_id":       h.upi.UPIID,
		"instructions": "Scan this QR code with any UPI app to complete payment. After payment, please submit your transaction ID.",
	}))
}

// paymentURL собирает UPI-ссылку вида upi://pay с реквизитами получателя,
// суммой в INR и пометкой, по которой платеж можно сопоставить с пользователем.
func (h *Handler) paymentURL(email string) string {
	q := url.Values{}
	q.Set("pa", h.upi.UPIID)
	q.Set("pn", h.upi.UPIName)
	q.Set("am", fmt.Sprintf("%d", h.price))
	q.Set("cu", "INR")
	q.Set("tn", "MediaCareers Premium - "+email)
	return "upi://pay?" + q.Encode()
}
