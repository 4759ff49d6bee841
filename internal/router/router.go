// Package router assembles the HTTP API.
package router

import (
	"net/http"

	"jewelry-store/internal/handler"
	"jewelry-store/internal/metrics"
	"jewelry-store/internal/middleware"
	"jewelry-store/internal/model"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

var errNotFound = model.NewDomainError(model.ErrCodeNotFound, "Route not found")

// Handlers groups the API handlers.
type Handlers struct {
	Items      *handler.ItemHandler
	Cart       *handler.CartHandler
	PromoCodes *handler.PromoCodeHandler
	Orders     *handler.OrderHandler
	Webhook    *handler.WebhookHandler
}

// Deps are the cross-cutting pieces the routes need.
type Deps struct {
	Tokens  middleware.TokenParser
	Errors  *handler.ErrorWriter
	Limiter *middleware.RateLimiter
	Metrics *metrics.Metrics
	DB      handler.Pinger
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, deps Deps, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery runs inside RequestID and Logging so panics are logged with the id.
	r.Use(chimw.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recovery(deps.Errors, logger))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.CORS)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		deps.Errors.Write(w, r, errNotFound)
	})

	r.Get("/health", handler.Health(deps.DB))
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	authenticate := middleware.Authenticate(deps.Tokens, deps.Errors, logger)
	requireAdmin := middleware.RequireAdmin(deps.Errors, logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/items", h.Items.List)
		r.Get("/items/{id}", h.Items.Get)

		r.Post("/acquiring/webhook", h.Webhook.Handle)

		r.Group(func(r chi.Router) {
			r.Use(deps.Limiter.Middleware)
			r.Use(middleware.OptionalAuthenticate(deps.Tokens, deps.Errors))
			r.Get("/promocodes/{name}/check", h.PromoCodes.Check)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.Cart.List)
				r.Post("/", h.Cart.Add)
				r.Post("/merge", h.Cart.Merge)
				r.Patch("/{id}", h.Cart.UpdateCount)
				r.Delete("/{id}", h.Cart.Remove)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", h.Orders.List)
				r.Post("/", h.Orders.Create)
				r.Get("/{id}", h.Orders.Get)
				r.Post("/{id}/cancel", h.Orders.Cancel)
				r.Post("/{id}/pay", h.Orders.Pay)
				r.Post("/{id}/positions/{positionId}/review", h.Orders.Review)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireAdmin)

				r.Get("/items", h.Items.AdminList)
				r.Post("/items", h.Items.Create)
				r.Put("/items/{id}", h.Items.Update)
				r.Delete("/items/{id}", h.Items.Delete)
				r.Post("/items/{id}/publication", h.Items.SchedulePublication)

				r.Get("/promocodes", h.PromoCodes.List)
				r.Post("/promocodes", h.PromoCodes.Create)
				r.Get("/promocodes/{id}", h.PromoCodes.Get)
				r.Put("/promocodes/{id}", h.PromoCodes.Update)
				r.Delete("/promocodes/{id}", h.PromoCodes.Delete)

				r.Get("/orders/{id}/transitions", h.Orders.Transitions)
				r.Put("/orders/{id}/status", h.Orders.UpdateStatus)
				r.Delete("/orders/{id}", h.Orders.Delete)
			})
		})
	})

	return r
}
