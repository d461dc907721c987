package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/uteshop/uteshop-backend/api/controllers"
	"github.com/uteshop/uteshop-backend/api/middleware"
	"github.com/uteshop/uteshop-backend/internal/auth"
	"github.com/uteshop/uteshop-backend/internal/cancellations"
	"github.com/uteshop/uteshop-backend/internal/coupons"
	"github.com/uteshop/uteshop-backend/internal/orders"
	"github.com/uteshop/uteshop-backend/internal/payments"
	"github.com/uteshop/uteshop-backend/internal/products"
	"github.com/uteshop/uteshop-backend/pkg/config"
	"github.com/uteshop/uteshop-backend/pkg/logger"
)

// Services carries every service the HTTP surface depends on.
type Services struct {
	Auth          auth.Service
	Products      products.Service
	Orders        orders.Service
	Coupons       coupons.Service
	Payments      payments.Service
	Cancellations cancellations.Service
}

// NewRouter assembles the full HTTP surface: health probes, public catalog,
// customer routes behind auth, and admin routes behind the role gate.
func NewRouter(cfg *config.Config, logg *logger.Logger, healthDeps map[string]controllers.Pinger, svcs Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, healthDeps))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(svcs.Auth, logg))
		r.Post("/login", controllers.AuthLogin(svcs.Auth, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductsList(svcs.Products, logg))
		r.Get("/{id}", controllers.ProductDetail(svcs.Products, logg))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/payment", controllers.PaymentWebhook(svcs.Payments, svcs.Orders, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/auth/profile", controllers.AuthProfile(svcs.Auth, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrdersCreate(svcs.Orders, logg))
			r.Get("/", controllers.OrdersList(svcs.Orders, logg))
			r.Get("/{id}", controllers.OrderDetail(svcs.Orders, logg))
		})

		r.Route("/cancel-requests", func(r chi.Router) {
			r.Post("/", controllers.CancelRequestCreate(svcs.Cancellations, logg))
			r.Delete("/{id}", controllers.CancelRequestWithdraw(svcs.Cancellations, logg))
		})

		r.Post("/coupons/validate", controllers.CouponValidate(svcs.Coupons, svcs.Products, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireAdmin(logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersAdminList(svcs.Orders, logg))
			r.Get("/{id}", controllers.OrderDetail(svcs.Orders, logg))
			r.Patch("/{id}/status", controllers.OrderUpdateStatus(svcs.Orders, logg))
		})

		r.Route("/cancel-requests", func(r chi.Router) {
			r.Get("/", controllers.CancelRequestList(svcs.Cancellations, logg))
			r.Patch("/{id}", controllers.CancelRequestProcess(svcs.Cancellations, logg))
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", controllers.CouponList(svcs.Coupons, logg))
			r.Post("/", controllers.CouponCreate(svcs.Coupons, logg))
		})
	})

	return r
}
