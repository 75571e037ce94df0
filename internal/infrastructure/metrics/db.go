package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PoolStats is the connection pool snapshot exported as gauges
type PoolStats struct {
	OpenConnections int
	InUse           int
	Idle            int
	WaitCount       int64
}

// RegisterDBPool exports the pool snapshot returned by stats. stats is
// called at scrape time.
func (m *Metrics) RegisterDBPool(stats func() PoolStats) {
	f := promauto.With(m.registry)
	gauge := func(name, help string, value func(PoolStats) float64) {
		f.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      name,
			Help:      help,
		}, func() float64 { return value(stats()) })
	}
	gauge("open_connections", "Open database connections.", func(s PoolStats) float64 { return float64(s.OpenConnections) })
	gauge("in_use_connections", "Database connections in use.", func(s PoolStats) float64 { return float64(s.InUse) })
	gauge("idle_connections", "Idle database connections.", func(s PoolStats) float64 { return float64(s.Idle) })
	gauge("wait_count", "Total connections waited for.", func(s PoolStats) float64 { return float64(s.WaitCount) })
}
