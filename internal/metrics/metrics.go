package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sievent"

var (
	ticketTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticket_transitions_total",
			Help:      "Ticket state transitions by source and target status",
		},
		[]string{"from", "to"},
	)

	inventoryRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_rejections_total",
			Help:      "Reservations refused for insufficient inventory",
		},
	)

	reconciliations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_reconciliations_total",
			Help:      "Webhook reconciliations by authoritative gateway status and outcome",
		},
		[]string{"status", "outcome"},
	)

	gatewayErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_errors_total",
			Help:      "Failed payment gateway calls",
		},
		[]string{"call"},
	)

	redemptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redemptions_total",
			Help:      "Redemption attempts by result",
		},
		[]string{"result"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// "none" stands for creation.
func TicketTransition(from, to string) {
	if from == "" {
		from = "none"
	}
	ticketTransitions.WithLabelValues(from, to).Inc()
}

func InventoryRejected() {
	inventoryRejections.Inc()
}

func Reconciled(status, outcome string) {
	reconciliations.WithLabelValues(status, outcome).Inc()
}

func GatewayError(call string) {
	gatewayErrors.WithLabelValues(call).Inc()
}

func Redemption(result string) {
	redemptions.WithLabelValues(result).Inc()
}

func ObserveHTTP(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
