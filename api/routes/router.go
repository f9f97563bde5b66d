package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/orderhub/orderhub-backend/api/controllers"
	"github.com/orderhub/orderhub-backend/api/middleware"
	"github.com/orderhub/orderhub-backend/internal/cart"
	"github.com/orderhub/orderhub-backend/internal/checkout"
	"github.com/orderhub/orderhub-backend/pkg/config"
	"github.com/orderhub/orderhub-backend/pkg/logger"
	pkgredis "github.com/orderhub/orderhub-backend/pkg/redis"
)

// RouterParams bundles everything the HTTP surface depends on.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	Cart        cart.Service
	Checkout    checkout.Service
	Idempotency pkgredis.IdempotencyStore
	Readiness   controllers.ReadinessDeps
	Metrics     http.Handler
}

// New assembles the chi router with the full middleware chain and all
// endpoints.
func New(params RouterParams) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer(params.Logger))
	r.Use(middleware.RequestID(params.Logger))
	r.Use(middleware.Logging(params.Logger))
	r.Use(middleware.CORS())

	r.Get("/health/live", controllers.HealthLive(params.Logger))
	r.Get("/health/ready", controllers.HealthReady(params.Readiness, params.Logger))
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(params.Config.JWT, params.Logger))
		r.Use(middleware.Idempotency(params.Idempotency, params.Logger))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(params.Cart, params.Logger))
			r.Put("/", controllers.CartReplace(params.Cart, params.Logger))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", controllers.CheckoutView(params.Checkout, params.Logger))
			r.Get("/send-all", controllers.CheckoutSendAllPreview(params.Checkout, params.Logger))
			r.Post("/send-all", controllers.CheckoutSendAll(params.Checkout, params.Logger))

			r.Route("/suppliers/{supplierId}", func(r chi.Router) {
				r.Post("/dispatch", controllers.CheckoutDispatch(params.Checkout, params.Logger))
				r.Get("/export", controllers.CheckoutExport(params.Checkout, params.Logger))
				r.Post("/mark-sent", controllers.CheckoutMarkSent(params.Checkout, params.Logger))
				r.Post("/mark-unsent", controllers.CheckoutMarkUnsent(params.Checkout, params.Logger))
				r.Post("/confirm-draft", controllers.CheckoutConfirmDraft(params.Checkout, params.Logger))
				r.Put("/section", controllers.CheckoutUpdateSection(params.Checkout, params.Logger))
				r.Put("/channel", controllers.CheckoutUpdateChannel(params.Checkout, params.Logger))
			})
		})
	})

	return r
}
