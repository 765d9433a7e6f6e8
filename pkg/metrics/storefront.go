package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records the shopping funnel counters.
type StorefrontMetrics struct {
	cartMutations  *prometheus.CounterVec
	ordersPlaced   *prometheus.CounterVec
	paymentActions *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart state machine mutations by operation.",
	}, []string{"operation"})
	ordersPlaced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Order placement attempts by outcome.",
	}, []string{"outcome"})
	paymentActions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_actions_total",
		Help: "Payment initiation attempts by method and outcome.",
	}, []string{"method", "outcome"})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern, method and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
	reg.MustRegister(cartMutations, ordersPlaced, paymentActions, httpDuration)
	return &StorefrontMetrics{
		cartMutations:  cartMutations,
		ordersPlaced:   ordersPlaced,
		paymentActions: paymentActions,
		httpDuration:   httpDuration,
	}
}

// IncCartMutation counts one cart operation.
func (m *StorefrontMetrics) IncCartMutation(operation string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncOrderPlaced counts one order placement attempt.
func (m *StorefrontMetrics) IncOrderPlaced(outcome string) {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncPaymentAction counts one payment initiation attempt.
func (m *StorefrontMetrics) IncPaymentAction(method, outcome string) {
	if m == nil || m.paymentActions == nil {
		return
	}
	m.paymentActions.WithLabelValues(normalizeLabel(method), normalizeLabel(outcome)).Inc()
}

// ObserveHTTPRequest records one served request.
func (m *StorefrontMetrics) ObserveHTTPRequest(route, method, status string, seconds float64) {
	if m == nil || m.httpDuration == nil {
		return
	}
	m.httpDuration.WithLabelValues(normalizeLabel(route), normalizeLabel(method), normalizeLabel(status)).Observe(seconds)
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
