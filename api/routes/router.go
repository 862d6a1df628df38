package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medimall/medimall-backend/api/controllers"
	"github.com/medimall/medimall-backend/api/middleware"
	"github.com/medimall/medimall-backend/internal/cart"
	"github.com/medimall/medimall-backend/internal/catalog"
	"github.com/medimall/medimall-backend/internal/payments"
	"github.com/medimall/medimall-backend/internal/users"
	"github.com/medimall/medimall-backend/pkg/config"
	"github.com/medimall/medimall-backend/pkg/logger"
	"github.com/medimall/medimall-backend/pkg/metrics"
	pkgredis "github.com/medimall/medimall-backend/pkg/redis"
)

// Params carries everything the router wires into handlers. Optional fields
// may be nil: Idempotency disables replay, Gatherer hides /metrics, and nil
// pingers are skipped by the readiness probe.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    controllers.Pinger
	Gatherer prometheus.Gatherer
	HTTP     *metrics.HTTPMetrics

	Users       users.Service
	Roles       *users.RoleResolver
	Catalog     catalog.Service
	Cart        cart.Service
	Payments    payments.Service
	Idempotency pkgredis.IdempotencyStore
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTP),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)

	auth := middleware.Auth(cfg.JWT, logg)
	admin := middleware.RequireAdmin(p.Roles, logg)
	idempotent := middleware.Idempotency(p.Idempotency, cfg.Redis, logg)

	r.Get("/", controllers.Root())
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg,
			controllers.ReadinessCheck{Name: "database", Pinger: p.DB},
			controllers.ReadinessCheck{Name: "redis", Pinger: p.Redis},
		))
	})
	if p.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Post("/jwt", controllers.IssueToken(cfg.JWT, logg))

	r.Route("/users", func(r chi.Router) {
		r.With(auth, admin).Get("/", controllers.ListUsers(p.Users, logg))
		r.With(auth).Get("/admin/{email}", controllers.CheckCapability("admin", p.Roles.IsAdmin, logg))
		r.With(auth).Get("/seller/{email}", controllers.CheckCapability("seller", p.Roles.IsSeller, logg))
		r.Post("/", controllers.RegisterUser(p.Users, logg))
		r.Patch("/{id}", controllers.SetUserRole(p.Users, logg))
	})

	r.Route("/medicine", func(r chi.Router) {
		r.Get("/", controllers.ListMedicines(p.Catalog, logg))
		r.Post("/", controllers.CreateMedicine(p.Catalog, logg))
		r.Put("/{id}", controllers.ReplaceMedicine(p.Catalog, logg))
		r.With(auth).Delete("/{id}", controllers.DeleteMedicine(p.Catalog, logg))
	})

	r.Route("/category", func(r chi.Router) {
		r.Get("/", controllers.ListCategories(p.Catalog, logg))
		r.With(auth).Post("/", controllers.CreateCategory(p.Catalog, logg))
	})

	r.Route("/advice", func(r chi.Router) {
		r.Get("/", controllers.ListAdvice(p.Catalog, logg))
		r.Post("/", controllers.CreateAdvice(p.Catalog, logg))
		r.With(auth).Patch("/{id}", controllers.UpdateAdviceStatus(p.Catalog, logg))
	})

	r.Get("/carts", controllers.ListCartItems(p.Cart, logg))
	r.Route("/cart", func(r chi.Router) {
		r.Post("/", controllers.AddCartItem(p.Cart, logg))
		r.With(auth).Delete("/", controllers.ClearCart(p.Cart, logg))
		r.With(auth).Delete("/{id}", controllers.RemoveCartItem(p.Cart, logg))
		r.Patch("/{id}/increase", controllers.AdjustCartItem(p.Cart, cart.DirectionIncrease, logg))
		r.Patch("/{id}/decrease", controllers.AdjustCartItem(p.Cart, cart.DirectionDecrease, logg))
	})

	r.With(idempotent).Post("/create-payment-intent", controllers.CreatePaymentIntent(p.Payments, logg))
	r.With(idempotent).Post("/save-payment-details", controllers.SavePaymentDetails(p.Payments, logg))
	r.Route("/payment-history", func(r chi.Router) {
		r.Use(auth)
		r.Get("/", controllers.ListPaymentHistory(p.Payments, logg))
		r.With(admin).Patch("/{id}/accept", controllers.AcceptPayment(p.Payments, logg))
	})

	return r
}
