// Package upcoming реализует HTTP-обработчик страницы предстоящих платежей.
package upcoming

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Service описывает выборку предстоящих платежей.
type Service interface {
	Upcoming(ctx context.Context, caller models.Caller, horizonDays int, filter models.PaymentFilter) (models.UpcomingReport, error)
}

// ErrInvalidDays возвращается, если параметр days не является целым числом.
var ErrInvalidDays = errors.New("days must be an integer")

// ParseQuery читает горизонт и фильтры платежей из query-параметров
// days, amount и urgency.
func ParseQuery(r *http.Request, defaultDays int) (int, models.PaymentFilter, error) {
	q := r.URL.Query()
	days := defaultDays
	if raw := q.Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, models.PaymentFilter{}, ErrInvalidDays
		}
		days = parsed
	}
	return days, models.PaymentFilter{
		Amount:  q.Get("amount"),
		Urgency: q.Get("urgency"),
	}, nil
}

// Handler обрабатывает GET /subscriptions/upcoming.
type Handler struct {
	log         *slog.Logger
	service     Service
	defaultDays int
}

// New создает Handler; defaultDays используется, если параметр days не передан.
func New(log *slog.Logger, service Service, defaultDays int) *Handler {
	return &Handler{log: log, service: service, defaultDays: defaultDays}
}

// ServeHTTP godoc
// @Summary Предстоящие платежи
// @Description Платежи в пределах days дней, включая просроченные. Отрицательное значение снимает ограничение.
// @Tags Subscriptions
// @Produce  json
// @Param days query int false "Горизонт в днях"
// @Param amount query string false "Диапазон суммы: low, medium, high"
// @Param urgency query string false "Срочность: overdue, due-soon, upcoming"
// @Success 200 {object} response.Response{data=models.UpcomingReport}
// @Failure 400 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /subscriptions/upcoming [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.upcoming"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := middlewarectx.CallerFromContext(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	days, filter, err := ParseQuery(r, h.defaultDays)
	if err != nil {
		log.Warn("invalid days parameter", slog.String("days", r.URL.Query().Get("days")))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	report, err := h.service.Upcoming(r.Context(), caller, days, filter)
	if err != nil {
		log.Error("failed to build upcoming payments", sl.Err(err))
		status, resp := response.FromServiceError(err, "failed to build upcoming payments")
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(report))
}
