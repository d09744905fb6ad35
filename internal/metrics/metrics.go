package metrics

import (
	"sync"
	"time"
)

// Counter names used across the stores and the refresh worker.
const (
	CounterRefreshes     = "store_refreshes"
	CounterRefreshErrors = "store_refresh_errors"
	CounterWrites        = "remote_writes"
	CounterWriteErrors   = "remote_write_errors"
)

// Health component names.
const (
	HealthUpstream = "upstream"
)

// Metrics is a small in-process collector: counters, gauges and per-component
// health flags, exposed as JSON by the metrics handler.
type Metrics struct {
	mu       sync.RWMutex
	counters map[string]int64
	gauges   map[string]int64
	health   map[string]bool

	startTime time.Time
}

// NewMetrics creates an empty collector.
func NewMetrics() *Metrics {
	return &Metrics{
		counters:  make(map[string]int64),
		gauges:    make(map[string]int64),
		health:    make(map[string]bool),
		startTime: time.Now(),
	}
}

// IncrementCounter increments a counter by 1.
func (m *Metrics) IncrementCounter(name string) {
	m.mu.Lock()
	m.counters[name]++
	m.mu.Unlock()
}

// SetGauge sets a gauge to a specific value.
func (m *Metrics) SetGauge(name string, value int64) {
	m.mu.Lock()
	m.gauges[name] = value
	m.mu.Unlock()
}

// SetHealth records the health status of a component.
func (m *Metrics) SetHealth(component string, healthy bool) {
	m.mu.Lock()
	m.health[component] = healthy
	m.mu.Unlock()
}

// GetCounters returns a copy of all counters.
func (m *Metrics) GetCounters() map[string]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counters := make(map[string]int64, len(m.counters))
	for name, v := range m.counters {
		counters[name] = v
	}
	return counters
}

// GetGauges returns a copy of all gauges.
func (m *Metrics) GetGauges() map[string]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	gauges := make(map[string]int64, len(m.gauges))
	for name, v := range m.gauges {
		gauges[name] = v
	}
	return gauges
}

// GetHealthChecks returns a copy of all component health flags.
func (m *Metrics) GetHealthChecks() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	checks := make(map[string]bool, len(m.health))
	for name, v := range m.health {
		checks[name] = v
	}
	return checks
}

// GetUptimeSeconds returns the service uptime in seconds.
func (m *Metrics) GetUptimeSeconds() int64 {
	return int64(time.Since(m.startTime).Seconds())
}

// GetAllMetrics returns every metric in a structured format.
func (m *Metrics) GetAllMetrics() map[string]interface{} {
	return map[string]interface{}{
		"uptime_seconds": m.GetUptimeSeconds(),
		"counters":       m.GetCounters(),
		"gauges":         m.GetGauges(),
		"health_checks":  m.GetHealthChecks(),
	}
}
