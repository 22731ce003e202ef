package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/summerbooks/backend/internal/service"
	"github.com/summerbooks/backend/pkg/health"
	"github.com/summerbooks/backend/pkg/httputil"
	"github.com/summerbooks/backend/pkg/middleware"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Catalog       *service.CatalogService
	Cart          *service.CartService
	Checkout      *service.CheckoutService
	Vouchers      *service.VoucherService
	Orders        *service.OrderService
	HealthHandler *health.Handler
	Logger        *slog.Logger
	CORS          middleware.CORSConfig
	ExposeErrors  bool

	PprofEnabled      bool
	PprofAllowedCIDRs []string
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(deps.CORS))
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(deps.Logger))

	// Health check endpoints
	r.Get("/health/live", deps.HealthHandler.LivenessHandler())
	r.Get("/health/ready", deps.HealthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	if deps.PprofEnabled {
		middleware.RegisterPprof(r, deps.PprofAllowedCIDRs, deps.Logger)
	}

	errors := httputil.NewErrorWriter(deps.Logger, deps.ExposeErrors)

	productHandler := NewProductHandler(deps.Catalog, errors)
	cartHandler := NewCartHandler(deps.Cart, errors)
	checkoutHandler := NewCheckoutHandler(deps.Checkout, errors)
	voucherHandler := NewVoucherHandler(deps.Vouchers, errors)
	orderHandler := NewOrderHandler(deps.Orders, errors)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.ListProducts)
			r.Get("/slug/{slug}", productHandler.GetProductBySlug)
			r.Get("/{id}", productHandler.GetProduct)
			r.Post("/", productHandler.CreateProduct)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(CartOwner)

			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{productId}", cartHandler.UpdateItem)
			r.Delete("/items/{productId}", cartHandler.RemoveItem)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireUser)

			r.Post("/checkout", checkoutHandler.Checkout)
			r.Get("/vouchers/mine", voucherHandler.ListMine)

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", orderHandler.ListOrders)
				r.Get("/{id}", orderHandler.GetOrder)
				r.Put("/{id}/status", orderHandler.UpdateStatus)
				r.Put("/{id}/pay", orderHandler.Pay)
			})
		})

		r.Post("/vouchers", voucherHandler.CreateVoucher)
		r.Post("/vouchers/{id}/assign", voucherHandler.AssignVoucher)
	})

	return r
}
