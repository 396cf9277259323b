package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики жизненного цикла заказов.
type OrderMetrics struct {
	// Счётчики операций
	ordersCreated   prometheus.Counter
	ordersConfirmed prometheus.Counter
	ordersCanceled  prometheus.Counter

	// Счётчики конкуренции
	versionConflicts prometheus.Counter
	retriesExhausted prometheus.Counter

	// Гистограммы времени выполнения
	confirmDuration prometheus.Histogram
	attemptsPerOp   *prometheus.HistogramVec

	// Gauge для операций в полёте
	inFlightOps prometheus.Gauge
}

// NewOrderMetrics создаёт новый экземпляр метрик заказов.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "stockoms_orders_created_total",
			Help: "Total number of orders created",
		}),
		ordersConfirmed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "stockoms_orders_confirmed_total",
			Help: "Total number of orders confirmed",
		}),
		ordersCanceled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "stockoms_orders_canceled_total",
			Help: "Total number of orders canceled",
		}),
		versionConflicts: registerCounter(registerer, prometheus.CounterOpts{
			Name: "stockoms_version_conflicts_total",
			Help: "Total number of version conflicts observed on save",
		}),
		retriesExhausted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "stockoms_retries_exhausted_total",
			Help: "Total number of operations that exhausted their retry budget",
		}),
		confirmDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "stockoms_confirm_duration_seconds",
			Help:    "Duration of order confirmation in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		attemptsPerOp: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "stockoms_operation_attempts",
			Help:    "Number of save attempts per order operation",
			Buckets: []float64{1, 2, 3, 4, 5},
		}, []string{"operation"}),
		inFlightOps: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "stockoms_in_flight_operations",
			Help: "Number of order operations currently in flight",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
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

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderCreated увеличивает счётчик созданных заказов.
func (m *OrderMetrics) RecordOrderCreated() {
	m.ordersCreated.Inc()
}

// RecordOrderConfirmed увеличивает счётчик подтверждённых заказов.
func (m *OrderMetrics) RecordOrderConfirmed() {
	m.ordersConfirmed.Inc()
}

// RecordOrderCanceled увеличивает счётчик отменённых заказов.
func (m *OrderMetrics) RecordOrderCanceled() {
	m.ordersCanceled.Inc()
}

// RecordVersionConflict увеличивает счётчик конфликтов версий.
func (m *OrderMetrics) RecordVersionConflict() {
	m.versionConflicts.Inc()
}

// RecordRetryExhausted увеличивает счётчик операций с исчерпанным бюджетом повторов.
func (m *OrderMetrics) RecordRetryExhausted() {
	m.retriesExhausted.Inc()
}

// RecordConfirmDuration записывает время подтверждения заказа.
func (m *OrderMetrics) RecordConfirmDuration(duration time.Duration) {
	m.confirmDuration.Observe(duration.Seconds())
}

// RecordAttempts записывает количество попыток сохранения для операции.
func (m *OrderMetrics) RecordAttempts(operation string, attempts int) {
	m.attemptsPerOp.WithLabelValues(operation).Observe(float64(attempts))
}

// RecordOpStarted увеличивает количество операций в полёте.
func (m *OrderMetrics) RecordOpStarted() {
	m.inFlightOps.Inc()
}

// RecordOpFinished уменьшает количество операций в полёте.
func (m *OrderMetrics) RecordOpFinished() {
	m.inFlightOps.Dec()
}
