// Package metrics содержит Prometheus-метрики витрины.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Исходы попытки оплаты.
const (
	OutcomeSuccess    = "success"
	OutcomeRejected   = "rejected"
	OutcomeTransport  = "transport_error"
	OutcomeInProgress = "in_progress"
)

// Metrics содержит метрики корзины, промокодов и платежей.
type Metrics struct {
	cartOperations   *prometheus.CounterVec
	promoApplied     *prometheus.CounterVec
	paymentAttempts  *prometheus.CounterVec
	paymentDuration  prometheus.Histogram
	paymentsInFlight prometheus.Gauge
	activeSessions   prometheus.Gauge
}

// New создаёт метрики в глобальном регистре Prometheus.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer создаёт метрики в указанном регистре.
func NewWithRegisterer(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &Metrics{
		cartOperations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_cart_operations_total",
			Help: "Total number of cart mutations by operation",
		}, []string{"op"}),
		promoApplied: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_promo_applications_total",
			Help: "Total number of promo code applications by result",
		}, []string{"result"}),
		paymentAttempts: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_payment_attempts_total",
			Help: "Total number of payment initiation attempts by outcome",
		}, []string{"outcome"}),
		paymentDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "storefront_payment_duration_seconds",
			Help:    "Duration of payment session requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		paymentsInFlight: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "storefront_payments_in_flight",
			Help: "Number of payment session requests currently outstanding",
		}),
		activeSessions: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "storefront_active_sessions",
			Help: "Number of visitor sessions held in memory",
		}),
	}
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordCartOperation увеличивает счётчик изменений корзины.
func (m *Metrics) RecordCartOperation(op string) {
	m.cartOperations.WithLabelValues(op).Inc()
}

// RecordPromo учитывает попытку применения промокода.
func (m *Metrics) RecordPromo(found bool) {
	result := "applied"
	if !found {
		result = "not_found"
	}
	m.promoApplied.WithLabelValues(result).Inc()
}

// RecordPaymentStarted отмечает начало запроса к платёжному сервису.
func (m *Metrics) RecordPaymentStarted() {
	m.paymentsInFlight.Inc()
}

// RecordPaymentFinished отмечает завершение запроса и его длительность.
func (m *Metrics) RecordPaymentFinished(outcome string, duration time.Duration) {
	m.paymentsInFlight.Dec()
	m.paymentDuration.Observe(duration.Seconds())
	m.paymentAttempts.WithLabelValues(outcome).Inc()
}

// RecordPaymentSuppressed учитывает повторный запуск оплаты, подавленный защёлкой.
func (m *Metrics) RecordPaymentSuppressed() {
	m.paymentAttempts.WithLabelValues(OutcomeInProgress).Inc()
}

// SetActiveSessions задаёт число активных сессий.
func (m *Metrics) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}
