package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты операций store для label "result".
const (
	ResultSuccess    = "success"
	ResultFailure    = "failure"
	ResultDropped    = "dropped"
	ResultSuperseded = "superseded"
	ResultLocal      = "local"
	ResultCanceled   = "canceled"
)

// StoreMetrics содержит метрики клиентского store заказов.
// Нулевой указатель допустим: все методы становятся no-op.
type StoreMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	inFlight   *prometheus.GaugeVec
	orders     prometheus.Gauge
}

// NewStoreMetrics регистрирует метрики store в DefaultRegisterer.
func NewStoreMetrics() *StoreMetrics {
	return NewStoreMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewStoreMetricsWithRegisterer регистрирует метрики в переданном registerer.
func NewStoreMetricsWithRegisterer(registerer prometheus.Registerer) *StoreMetrics {
	return &StoreMetrics{
		operations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "ordersync_store_operations_total",
			Help: "Store operations grouped by operation and result.",
		}, []string{"operation", "result"}),
		duration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "ordersync_store_operation_duration_seconds",
			Help:    "Duration of store operations that reached the API.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
		inFlight: registerGaugeVec(registerer, prometheus.GaugeOpts{
			Name: "ordersync_store_lane_in_flight",
			Help: "Operations currently in flight per concurrency lane.",
		}, []string{"lane"}),
		orders: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "ordersync_store_orders",
			Help: "Number of orders currently held by the store.",
		}),
	}
}

// RecordResult увеличивает счётчик операции с заданным результатом.
func (m *StoreMetrics) RecordResult(operation, result string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, result).Inc()
}

// RecordDuration записывает длительность сетевой операции.
func (m *StoreMetrics) RecordDuration(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(operation).Observe(d.Seconds())
}

// SetInFlight выставляет 1 или 0 для полосы.
func (m *StoreMetrics) SetInFlight(lane string, busy bool) {
	if m == nil {
		return
	}
	value := 0.0
	if busy {
		value = 1
	}
	m.inFlight.WithLabelValues(lane).Set(value)
}

// SetOrders фиксирует размер коллекции.
func (m *StoreMetrics) SetOrders(n int) {
	if m == nil {
		return
	}
	m.orders.Set(float64(n))
}
