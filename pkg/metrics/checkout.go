package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records order placement outcomes.
type CheckoutMetrics struct {
	placed     prometheus.Counter
	failures   *prometheus.CounterVec
	orderValue prometheus.Histogram
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	placed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_orders_placed_total",
		Help: "Successfully placed orders.",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failures_total",
		Help: "Checkout attempts aborted, labelled by step.",
	}, []string{"step"})
	orderValue := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_order_value_taka",
		Help:    "Final order totals in taka.",
		Buckets: []float64{500, 1000, 2000, 5000, 10000, 25000, 50000, 100000},
	})
	reg.MustRegister(placed, failures, orderValue)
	return &CheckoutMetrics{
		placed:     placed,
		failures:   failures,
		orderValue: orderValue,
	}
}

// IncPlaced increments the placed-order counter.
func (c *CheckoutMetrics) IncPlaced() {
	if c == nil || c.placed == nil {
		return
	}
	c.placed.Inc()
}

// IncFailure increments the failure counter for the named checkout step.
func (c *CheckoutMetrics) IncFailure(step string) {
	if c == nil || c.failures == nil {
		return
	}
	if step == "" {
		step = "unknown"
	}
	c.failures.WithLabelValues(step).Inc()
}

// ObserveOrderValue records the final total of a placed order.
func (c *CheckoutMetrics) ObserveOrderValue(totalCents int) {
	if c == nil || c.orderValue == nil {
		return
	}
	c.orderValue.Observe(float64(totalCents) / 100)
}
