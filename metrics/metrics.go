// Package metrics exposes Prometheus counters for the calculation API.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/warp/lending-engine/generic"
)

// Operation labels.
const (
	OpInstallmentPayment = "installment_payment"
	OpPaymentSchedule    = "payment_schedule"
	OpAnnuitySchedule    = "annuity_schedule"
	OpCommission         = "commission"
	OpProjection         = "commission_projection"
	OpAggregate          = "agent_aggregate"
)

// Calculations counts successful engine calls.
var Calculations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "lending_engine",
	Name:      "calculations_total",
	Help:      "Engine calculations completed, by operation.",
}, []string{"operation"})

// CalculationErrors counts failed engine calls by error kind.
var CalculationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "lending_engine",
	Name:      "calculation_errors_total",
	Help:      "Engine calculations rejected, by operation and error kind.",
}, []string{"operation", "kind"})

// ScheduleInstallments observes the length of generated schedules.
var ScheduleInstallments = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "lending_engine",
	Name:      "schedule_installments",
	Help:      "Number of installments per generated schedule.",
	Buckets:   []float64{1, 4, 12, 26, 52, 104, 365, 730},
})

// CacheLookups counts schedule cache hits and misses.
var CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "lending_engine",
	Subsystem: "cache",
	Name:      "lookups_total",
	Help:      "Schedule cache lookups, by result.",
}, []string{"result"})

// Observe records the outcome of one engine call.
func Observe(operation string, err error) {
	if err == nil {
		Calculations.WithLabelValues(operation).Inc()
		return
	}
	CalculationErrors.WithLabelValues(operation, ErrorKind(err)).Inc()
}

// ErrorKind maps an engine error onto a low-cardinality label.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, generic.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, generic.ErrNoApplicableTier):
		return "no_applicable_tier"
	case errors.Is(err, generic.ErrNotFound):
		return "not_found"
	case errors.Is(err, generic.ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}

func CacheHit()  { CacheLookups.WithLabelValues("hit").Inc() }
func CacheMiss() { CacheLookups.WithLabelValues("miss").Inc() }
