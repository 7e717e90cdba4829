package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	requestsIssued  atomic.Uint64
	requestErrors   atomic.Uint64
	pollTicks       atomic.Uint64
	staleDiscarded  atomic.Uint64
	ordersSubmitted atomic.Uint64
	ordersCancelled atomic.Uint64
	authFailures    atomic.Uint64

	// Gauges
	polling atomic.Int32 // 1 = an instrument is being polled
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordRequest records an API request being issued.
func (m *Metrics) RecordRequest() {
	m.requestsIssued.Add(1)
}

// RecordRequestError records a failed API request.
func (m *Metrics) RecordRequestError() {
	m.requestErrors.Add(1)
}

// RecordPollTick records one completed order book poll cycle.
func (m *Metrics) RecordPollTick() {
	m.pollTicks.Add(1)
}

// RecordStaleDiscarded records a snapshot dropped by the staleness guard.
func (m *Metrics) RecordStaleDiscarded() {
	m.staleDiscarded.Add(1)
}

// RecordOrderSubmitted records a successful order submission.
func (m *Metrics) RecordOrderSubmitted() {
	m.ordersSubmitted.Add(1)
}

// RecordOrderCancelled records a successful order cancellation.
func (m *Metrics) RecordOrderCancelled() {
	m.ordersCancelled.Add(1)
}

// RecordAuthFailure records a rejected credential.
func (m *Metrics) RecordAuthFailure() {
	m.authFailures.Add(1)
}

// SetPolling sets whether an active poll cycle exists.
func (m *Metrics) SetPolling(active bool) {
	if active {
		m.polling.Store(1)
	} else {
		m.polling.Store(0)
	}
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	RequestsIssued  uint64
	RequestErrors   uint64
	PollTicks       uint64
	StaleDiscarded  uint64
	OrdersSubmitted uint64
	OrdersCancelled uint64
	AuthFailures    uint64
	Polling         bool
	Timestamp       time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		RequestsIssued:  m.requestsIssued.Load(),
		RequestErrors:   m.requestErrors.Load(),
		PollTicks:       m.pollTicks.Load(),
		StaleDiscarded:  m.staleDiscarded.Load(),
		OrdersSubmitted: m.ordersSubmitted.Load(),
		OrdersCancelled: m.ordersCancelled.Load(),
		AuthFailures:    m.authFailures.Load(),
		Polling:         m.polling.Load() == 1,
		Timestamp:       time.Now(),
	}
}

// Reset clears all counters. Intended for tests.
func (m *Metrics) Reset() {
	m.requestsIssued.Store(0)
	m.requestErrors.Store(0)
	m.pollTicks.Store(0)
	m.staleDiscarded.Store(0)
	m.ordersSubmitted.Store(0)
	m.ordersCancelled.Store(0)
	m.authFailures.Store(0)
	m.polling.Store(0)
}
