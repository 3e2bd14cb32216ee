package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Checkout aggregates the counters the ops dashboard scrapes.
// PlacementNanos accumulates time spent in successful placements;
// divided by orders_placed it yields the average checkout latency.
type Checkout struct {
	OrdersPlaced       Counter
	OversellRejections Counter
	GatewayFaults      Counter
	WebhooksReceived   Counter
	PlacementNanos     Counter
}

func (m *Checkout) ObservePlacement(d time.Duration) {
	m.PlacementNanos.Add(uint64(d))
}

func (m *Checkout) Snapshot() map[string]uint64 {
	return map[string]uint64{
		"orders_placed":         m.OrdersPlaced.Load(),
		"oversell_rejections":   m.OversellRejections.Load(),
		"gateway_faults":        m.GatewayFaults.Load(),
		"webhooks_received":     m.WebhooksReceived.Load(),
		"placement_nanos_total": m.PlacementNanos.Load(),
	}
}
