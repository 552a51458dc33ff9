// Package tracker собирает HTTP-приложение трекера подписок: маршруты, middleware и сервер.
package tracker

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/magabrotheeeer/subscription-tracker/docs" // регистрация swagger-спецификации
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/admin/stats"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/admin/userlist"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/admin/userremove"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/admin/userrole"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/settings/password"
	settingsread "github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/settings/read"
	settingsupdate "github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/settings/update"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/create"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/export"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/health"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/list"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/read"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/remove"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/report"
	substats "github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/stats"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/upcoming"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/update"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/subscription-tracker/internal/services/auth"
	subservice "github.com/magabrotheeeer/subscription-tracker/internal/services/subscription"
)

// Deps — зависимости, которые нужны маршрутам.
type Deps struct {
	Logger        *slog.Logger
	Subscriptions *subservice.Service
	Auth          *authservice.Service
	Health        health.Checker
	Limiter       *middlewarectx.RateLimiter
	UpcomingDays  int
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	logger := d.Logger

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.CountRequests,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, d.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, d.Auth).ServeHTTP)
		r.Get("/health", health.New(logger, d.Health).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(d.Auth, logger))
			r.Use(d.Limiter.Middleware(logger))

			r.Post("/subscriptions", create.New(logger, d.Subscriptions).ServeHTTP)
			r.Get("/subscriptions/list", list.New(logger, d.Subscriptions).ServeHTTP)
			r.Get("/subscriptions/stats", substats.New(logger, d.Subscriptions).ServeHTTP)
			r.Get("/subscriptions/upcoming", upcoming.New(logger, d.Subscriptions, d.UpcomingDays).ServeHTTP)
			r.Get("/subscriptions/upcoming/export", export.New(logger, d.Subscriptions, d.UpcomingDays).ServeHTTP)
			r.Get("/subscriptions/report", report.New(logger, d.Subscriptions).ServeHTTP)
			r.Get("/subscriptions/{id}", read.New(logger, d.Subscriptions).ServeHTTP)
			r.Put("/subscriptions/{id}", update.New(logger, d.Subscriptions).ServeHTTP)
			r.Delete("/subscriptions/{id}", remove.New(logger, d.Subscriptions).ServeHTTP)

			r.Get("/settings", settingsread.New(logger, d.Auth).ServeHTTP)
			r.Put("/settings", settingsupdate.New(logger, d.Auth).ServeHTTP)
			r.Put("/settings/password", password.New(logger, d.Auth).ServeHTTP)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middlewarectx.AdminOnly(logger))
				r.Get("/users", userlist.New(logger, d.Auth).ServeHTTP)
				r.Put("/users/{uid}/role", userrole.New(logger, d.Auth).ServeHTTP)
				r.Delete("/users/{uid}", userremove.New(logger, d.Auth).ServeHTTP)
				r.Get("/stats", stats.New(logger, d.Subscriptions).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
