package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/arwoh/storefront-go/internal/cart"
	"github.com/arwoh/storefront-go/internal/checkout"
	"github.com/arwoh/storefront-go/internal/clients"
	"github.com/arwoh/storefront-go/internal/config"
	"github.com/arwoh/storefront-go/internal/http/handlers"
	"github.com/arwoh/storefront-go/internal/middleware"
	"github.com/arwoh/storefront-go/internal/notify"
	"github.com/arwoh/storefront-go/internal/session"
)

type Deps struct {
	Logger logrus.FieldLogger
	Cfg    config.Config

	Registry *cart.Registry
	Sessions *session.Service
	Inbox    *notify.Inbox
	Checkout *checkout.Trigger

	Upstreams []clients.Upstream
	Backends  []handlers.BackendCheck
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// Middlewares (outer -> inner)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Logging(d.Logger))
	r.Use(middleware.Recover(d.Logger))
	r.Use(middleware.CORS(d.Cfg.CORSAllowOrigins))

	// Health
	health := &handlers.HealthHandler{Upstreams: d.Upstreams, Backends: d.Backends}
	r.Get("/health", health.Gateway)
	r.Get("/health/upstreams", health.Dependencies)

	// Persisted browser session
	sess := handlers.NewSessionHandler(d.Sessions, d.Registry, d.Inbox, d.Cfg.CookieSecure, d.Logger)
	r.Post("/session", sess.Create)
	r.Delete("/session", sess.Delete)

	// Drawer (me)
	cartH := handlers.NewCartHandler()
	checkoutH := handlers.NewCheckoutHandler(d.Checkout)
	notes := handlers.NewNotificationsHandler(d.Inbox)
	r.Route("/me", func(r chi.Router) {
		r.Use(middleware.CartSession(d.Sessions, d.Registry, d.Logger))

		r.Get("/cart", cartH.Get)
		r.Delete("/cart", cartH.Clear)
		r.Post("/cart/refresh", cartH.Refresh)
		r.Post("/cart/toggle", cartH.Toggle)
		r.Post("/cart/items", cartH.AddItem)
		r.Put("/cart/items/{cartItemId}", cartH.UpdateQuantity)
		r.Delete("/cart/items/{cartItemId}", cartH.RemoveItem)

		r.Post("/checkout", checkoutH.Start)
		r.Get("/notifications", notes.Drain)
	})

	return otelhttp.NewHandler(r, "storefront-bff")
}
