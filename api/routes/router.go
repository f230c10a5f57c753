package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/minhtrandev/shopora-backend/api/controllers"
	"github.com/minhtrandev/shopora-backend/api/middleware"
	"github.com/minhtrandev/shopora-backend/pkg/config"
	"github.com/minhtrandev/shopora-backend/pkg/db"
	"github.com/minhtrandev/shopora-backend/pkg/logger"
	"github.com/minhtrandev/shopora-backend/pkg/redis"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Cart     controllers.CartService
	Checkout controllers.CheckoutService
	Orders   controllers.OrderService
	Admin    controllers.OrderTransitioner
	Address  controllers.AddressService
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	checkoutPolicy := middleware.NewRateLimitPolicy("checkout", time.Minute, 10, 30)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AccountContext(logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartList(svcs.Cart, logg))
			r.Post("/", controllers.CartAdd(svcs.Cart, logg))
			r.Put("/{lineId}", controllers.CartUpdateQuantity(svcs.Cart, logg))
			r.Delete("/{lineId}", controllers.CartRemove(svcs.Cart, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Use(middleware.RateLimit(checkoutPolicy, redisClient, logg))
			r.Post("/quote", controllers.CheckoutQuote(svcs.Checkout, logg))
			r.Post("/", controllers.Checkout(svcs.Checkout, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(svcs.Orders, logg))
			r.Get("/{orderId}/histories", controllers.OrderHistories(svcs.Orders, logg))
			r.Get("/{orderId}/bill", controllers.OrderBill(svcs.Orders, logg))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(svcs.Orders, logg))
			r.Post("/{orderId}/return", controllers.OrderReturn(svcs.Orders, logg))
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", controllers.AddressList(svcs.Address, logg))
			r.Get("/default", controllers.AddressDefault(svcs.Address, logg))
			r.Post("/", controllers.AddressCreate(svcs.Address, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.AccountContext(logg))
		r.Use(middleware.RequireRole(middleware.RoleAdmin, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Post("/orders/{orderId}/status", controllers.AdminOrderStatus(svcs.Admin, logg))
	})

	return r
}
