// Package list реализует HTTP-обработчик списка подписок с поиском,
// фильтрами и сортировкой из query-параметров.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Service описывает выборку подписок.
type Service interface {
	List(ctx context.Context, caller models.Caller, criteria models.Criteria) ([]models.Subscription, error)
}

// Handler обрабатывает GET /subscriptions/list.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// CriteriaFromQuery читает критерии выборки из query-параметров.
// Отсутствующий параметр означает "all", пустой поиск совпадает со всем.
func CriteriaFromQuery(r *http.Request) models.Criteria {
	q := r.URL.Query()
	return models.Criteria{
		Search:    q.Get("search"),
		Category:  q.Get("category"),
		Recurring: q.Get("recurring"),
		Status:    q.Get("status"),
		Sort:      q.Get("sort"),
	}
}

// ServeHTTP godoc
// @Summary Список подписок
// @Tags Subscriptions
// @Produce  json
// @Param search query string false "Подстрока в названии, описании или категории"
// @Param category query string false "Категория или all"
// @Param recurring query string false "true, false, past-due или all"
// @Param status query string false "active, cancelled, expired или all"
// @Param sort query string false "name, cost-high, cost-low, next-payment, newest"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /subscriptions/list [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := middlewarectx.CallerFromContext(r.Context())
	if !ok {
		log.Error("caller not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	res, err := h.service.List(r.Context(), caller, CriteriaFromQuery(r))
	if err != nil {
		log.Error("failed to list subscriptions", sl.Err(err))
		status, resp := response.FromServiceError(err, "failed to list")
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("list subscriptions", slog.Int("count", len(res)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(res),
		"entries":    res,
	}))
}
