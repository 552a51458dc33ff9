// Package export реализует HTTP-обработчик выгрузки предстоящих платежей в CSV.
package export

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/upcoming"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// FileName — имя файла выгрузки в Content-Disposition.
const FileName = "upcoming-payments.csv"

// Service описывает выгрузку предстоящих платежей.
type Service interface {
	ExportUpcoming(ctx context.Context, caller models.Caller, horizonDays int, filter models.PaymentFilter) ([]byte, error)
}

// Handler обрабатывает GET /subscriptions/upcoming/export.
type Handler struct {
	log         *slog.Logger
	service     Service
	defaultDays int
}

// New создает Handler.
func New(log *slog.Logger, service Service, defaultDays int) *Handler {
	return &Handler{log: log, service: service, defaultDays: defaultDays}
}

// ServeHTTP godoc
// @Summary Выгрузка предстоящих платежей
// @Description CSV с теми же фильтрами, что и страница предстоящих платежей
// @Tags Subscriptions
// @Produce  text/csv
// @Param days query int false "Горизонт в днях"
// @Param amount query string false "Диапазон суммы: low, medium, high"
// @Param urgency query string false "Срочность: overdue, due-soon, upcoming"
// @Success 200 {string} string "CSV"
// @Failure 400 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /subscriptions/upcoming/export [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.export"

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

	days, filter, err := upcoming.ParseQuery(r, h.defaultDays)
	if err != nil {
		log.Warn("invalid days parameter", slog.String("days", r.URL.Query().Get("days")))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	body, err := h.service.ExportUpcoming(r.Context(), caller, days, filter)
	if err != nil {
		log.Error("failed to export upcoming payments", sl.Err(err))
		status, resp := response.FromServiceError(err, "failed to export upcoming payments")
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+FileName+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error("failed to write csv", sl.Err(err))
	}
}
