package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/infra/http/handlers"
	metricsmw "github.com/xavierca1/ligue-imoveis/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-imoveis/internal/logger"
)

type Handlers struct {
	Health *handlers.HealthHandler
	Leads  *handlers.LeadHandler
	Status *handlers.StatusHandler
	Board  *handlers.BoardHandler
}

type Options struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	Log            *zap.Logger
}

func New(h Handlers, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(opts.Log))
	r.Use(middleware.Recoverer)
	r.Use(metricsmw.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-User"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/public/leads", h.Leads.CaptureLead)

	withTimeout := func(r chi.Router) {
		if opts.RequestTimeout > 0 {
			r.Use(middleware.Timeout(opts.RequestTimeout))
		}
	}

	r.Group(func(r chi.Router) {
		withTimeout(r)
		r.Get("/statuses", h.Status.List)

		r.Route("/leads", func(r chi.Router) {
			r.Get("/", h.Leads.List)
			r.Post("/", h.Leads.Create)
			r.Get("/{id}", h.Leads.Get)
			r.Patch("/{id}", h.Leads.Update)
			r.Delete("/{id}", h.Leads.Delete)
			r.Get("/{id}/activities", h.Leads.ListActivities)
			r.Post("/{id}/activities", h.Leads.AddActivity)
		})
	})

	r.Route("/board/sessions", func(r chi.Router) {
		// o stream SSE fica fora do timeout
		r.Get("/{sid}/events", h.Board.Events)

		r.Group(func(r chi.Router) {
			withTimeout(r)
			r.Post("/", h.Board.Open)
			r.Get("/{sid}", h.Board.Get)
			r.Delete("/{sid}", h.Board.Close)
			r.Post("/{sid}/refresh", h.Board.Refresh)
			r.Post("/{sid}/drag", h.Board.StartDrag)
			r.Post("/{sid}/cancel", h.Board.CancelDrag)
			r.Post("/{sid}/drop", h.Board.Drop)
			r.Post("/{sid}/select", h.Board.Select)
		})
	})

	return r
}
