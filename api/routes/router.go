package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gebeyalink/storefront/api/controllers"
	"github.com/gebeyalink/storefront/api/middleware"
	cartsvc "github.com/gebeyalink/storefront/internal/cart"
	checkoutsvc "github.com/gebeyalink/storefront/internal/checkout"
	paymentsvc "github.com/gebeyalink/storefront/internal/payments"
	prefsvc "github.com/gebeyalink/storefront/internal/preferences"
	"github.com/gebeyalink/storefront/pkg/config"
	"github.com/gebeyalink/storefront/pkg/logger"
	"github.com/gebeyalink/storefront/pkg/metrics"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Cart        cartsvc.Service
	Checkout    checkoutsvc.Service
	Payments    paymentsvc.Dispatcher
	Preferences prefsvc.Service
	Health      map[string]controllers.Pinger
	Metrics     *metrics.StorefrontMetrics
	MetricsReg  *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Health))
	})

	if deps.MetricsReg != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.MetricsReg, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(cfg.Auth, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(deps.Cart, logg))
			r.Post("/items", controllers.CartAdd(deps.Cart, logg))
			r.Put("/items/{productID}", controllers.CartUpdateItem(deps.Cart, logg))
			r.Delete("/items/{productID}", controllers.CartRemoveItem(deps.Cart, logg))
			r.Delete("/", controllers.CartClear(deps.Cart, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", controllers.CheckoutStart(deps.Checkout, logg))
			r.Get("/", controllers.CheckoutGet(deps.Checkout, logg))
			r.Put("/address", controllers.CheckoutSetAddress(deps.Checkout, logg))
			r.Put("/payment-method", controllers.CheckoutSelectMethod(deps.Checkout, logg))
			r.Post("/promotion", controllers.CheckoutApplyPromotion(deps.Checkout, logg))
			r.Delete("/promotion", controllers.CheckoutRemovePromotion(deps.Checkout, logg))
			r.Post("/order", controllers.CheckoutPlaceOrder(deps.Checkout, logg))
			r.Get("/totals", controllers.CheckoutTotals(deps.Checkout, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/telebirr", controllers.PaymentTelebirr(deps.Payments, logg))
			r.Post("/gateway", controllers.PaymentGateway(deps.Payments, logg))
			r.Post("/bank-transfer", controllers.PaymentBankTransfer(deps.Payments, logg))
			r.Post("/cash-on-delivery", controllers.PaymentCashOnDelivery(deps.Payments, logg))
			r.Post("/complete", controllers.PaymentComplete(deps.Payments, logg))
			r.Post("/refresh", controllers.PaymentRefreshOrder(deps.Payments, logg))
		})

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/", controllers.PreferencesGet(deps.Preferences, logg))
			r.Put("/language", controllers.PreferencesSetLanguage(deps.Preferences, logg))
			r.Put("/currency", controllers.PreferencesSetCurrency(deps.Preferences, logg))
			r.Put("/region", controllers.PreferencesSetRegion(deps.Preferences, logg))
			r.Get("/regions", controllers.PreferencesRegions(logg))
		})
	})

	return r
}
