package metrics

import (
	"database/sql"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	metricPrefix = "gridpulse_"

	resultSuccess = "success"
	resultError   = "error"
)

// Drop reasons for inbound messages.
const (
	DropInvalidEncoding = "invalid_encoding"
	DropMalformed       = "malformed_payload"
	DropMissingLoad     = "missing_load"
	DropStoreError      = "store_error"
)

// Connect targets.
const (
	TargetStore  = "store"
	TargetBroker = "broker"
)

// Exported result labels for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)

var (
	registerOnce sync.Once
	dbStatsOnce  sync.Once

	messagesReceived *prometheus.CounterVec
	messagesDropped  *prometheus.CounterVec
	insertsTotal     *prometheus.CounterVec
	insertLatency    *prometheus.HistogramVec
	connectAttempts  *prometheus.CounterVec
	brokerState      prometheus.Gauge
	energyQueries    *prometheus.CounterVec
	energyLatency    *prometheus.HistogramVec
)

// Init registers the collectors with the default registry. Observe* calls
// made before Init are no-ops.
func Init() {
	registerOnce.Do(func() {
		messagesReceived = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "messages_received_total",
				Help: "Inbound broker messages by device",
			},
			[]string{"device_id"},
		)
		messagesDropped = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "messages_dropped_total",
				Help: "Inbound messages dropped by reason",
			},
			[]string{"reason"},
		)
		insertsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "inserts_total",
				Help: "Telemetry inserts by result",
			},
			[]string{"result"},
		)
		insertLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "insert_latency_seconds",
				Help:    "Telemetry insert latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		connectAttempts = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "connect_attempts_total",
				Help: "Startup connection attempts by target",
			},
			[]string{"target"},
		)
		brokerState = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "broker_state",
				Help: "Broker connection state (0 disconnected, 1 connecting, 2 connected, 3 reconnecting)",
			},
		)
		energyQueries = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "energy_queries_total",
				Help: "Energy aggregation queries by result",
			},
			[]string{"result"},
		)
		energyLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "energy_query_latency_seconds",
				Help:    "Energy aggregation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			messagesReceived,
			messagesDropped,
			insertsTotal,
			insertLatency,
			connectAttempts,
			brokerState,
			energyQueries,
			energyLatency,
		)
	})
}

// RegisterDBStats exports the pool statistics of db. Safe to call once per pool.
func RegisterDBStats(db *sql.DB) {
	if db == nil {
		return
	}
	dbStatsOnce.Do(func() {
		prometheus.MustRegister(collectors.NewDBStatsCollector(db, "gridpulse"))
	})
}

// IncMessageReceived counts one inbound message for a device.
func IncMessageReceived(deviceID string) {
	if messagesReceived != nil {
		messagesReceived.WithLabelValues(deviceID).Inc()
	}
}

// IncMessageDropped counts one dropped message.
func IncMessageDropped(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if messagesDropped != nil {
		messagesDropped.WithLabelValues(reason).Inc()
	}
}

// ObserveInsert records insert duration and result.
func ObserveInsert(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if insertsTotal != nil {
		insertsTotal.WithLabelValues(result).Inc()
	}
	if insertLatency != nil {
		insertLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveConnectAttempt counts one startup connection attempt.
func ObserveConnectAttempt(target string) {
	if connectAttempts != nil {
		connectAttempts.WithLabelValues(target).Inc()
	}
}

// SetBrokerState exports the connector state as a number.
func SetBrokerState(state int) {
	if brokerState != nil {
		brokerState.Set(float64(state))
	}
}

// ObserveEnergyQuery records aggregation latency and result.
func ObserveEnergyQuery(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if energyQueries != nil {
		energyQueries.WithLabelValues(result).Inc()
	}
	if energyLatency != nil {
		energyLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}
