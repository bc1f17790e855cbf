package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/identity"
	"github.com/fjod/go_cart/storefront/internal/notify"
)

// RouterDeps are the collaborators behind the storefront API.
type RouterDeps struct {
	Carts              CartProvider
	Catalog            ProductCatalog
	Checkout           *checkout.Manager
	Orders             OrderLookup
	Feed               *notify.Feed
	Users              identity.Directory
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	// AccessLog enables chi's request logger.
	AccessLog bool
}

func NewRouter(d RouterDeps) http.Handler {
	if d.Users == nil {
		d.Users = identity.DefaultDirectory()
	}
	if d.Feed == nil {
		d.Feed = notify.NewFeed(0, 0)
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 30 * time.Second
	}

	cartHandler := NewCartHandler(d.Carts, d.Catalog, d.RequestTimeout)
	productHandler := NewProductHandler(d.Catalog, d.RequestTimeout)
	checkoutHandler := NewCheckoutHandler(d.Checkout, d.RequestTimeout)
	ordersHandler := NewOrdersHandler(d.Orders)
	notificationsHandler := NewNotificationsHandler(d.Feed)

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	if d.AccessLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(d.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(MaxBodyMiddleware(d.MaxRequestBodySize))
	r.Use(identity.Middleware(d.Users))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/{product_id}", productHandler.Get)
		})
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			r.Post("/promo", cartHandler.ApplyPromo)
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", checkoutHandler.Create)
			r.Route("/{checkout_id}", func(r chi.Router) {
				r.Get("/", checkoutHandler.Get)
				r.Put("/contact", checkoutHandler.SetContact)
				r.Put("/address", checkoutHandler.SetAddress)
				r.Put("/shipping-option", checkoutHandler.SetShippingOption)
				r.Put("/payment", checkoutHandler.SetPayment)
				r.Put("/terms", checkoutHandler.SetTerms)
				r.Post("/next", checkoutHandler.Next)
				r.Post("/previous", checkoutHandler.Previous)
				r.Post("/place-order", checkoutHandler.PlaceOrder)
			})
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordersHandler.ListOrders)
			r.Get("/{order_id}", ordersHandler.GetOrder)
		})
		r.Get("/notifications", notificationsHandler.Drain)
		r.Get("/currencies", ListCurrencies)
	})

	return otelhttp.NewHandler(r, "storefront")
}
