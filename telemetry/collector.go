// Package telemetry provides message-traffic statistics, bookmarks, snapshots and perf timing.
package telemetry

import (
	"math"
	"sync"
)

// Collector accumulates bus and dispatch events within time windows and produces WindowStats.
// It implements both comm.Observer and fsm.Observer.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	mu sync.Mutex

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	directSends       int
	broadcasts        int
	deliveries        int
	unknownRecipients int
	dispatched        int
	dropped           int
	rejections        int
	malformed         int

	dispatchByState map[string]int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	// dt arrives as float32, so round rather than truncate.
	ticksPerWindow := int32(math.Round(windowDurationSec / float64(dt)))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		dispatchByState:     make(map[string]int),
	}
}

// RecordSend records a direct send (fanout 1) or a broadcast.
func (c *Collector) RecordSend(broadcast bool, fanout int) {
	c.mu.Lock()
	if broadcast {
		c.broadcasts++
	} else {
		c.directSends++
	}
	c.deliveries += fanout
	c.mu.Unlock()
}

// RecordUnknownRecipient records a direct send to an unregistered actor.
func (c *Collector) RecordUnknownRecipient() {
	c.mu.Lock()
	c.unknownRecipients++
	c.mu.Unlock()
}

// RecordDispatch records a message handled by state.
func (c *Collector) RecordDispatch(state string) {
	c.mu.Lock()
	c.dispatched++
	c.dispatchByState[state]++
	c.mu.Unlock()
}

// RecordDrop records a message whose target state was not active.
func (c *Collector) RecordDrop(string) {
	c.mu.Lock()
	c.dropped++
	c.mu.Unlock()
}

// RecordRejection records a rejected state start.
func (c *Collector) RecordRejection(string) {
	c.mu.Lock()
	c.rejections++
	c.mu.Unlock()
}

// RecordMalformed records a message dropped for bad arguments.
func (c *Collector) RecordMalformed(string) {
	c.mu.Lock()
	c.malformed++
	c.mu.Unlock()
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// inboxDepths holds the undelivered message count of every actor at window end.
func (c *Collector) Flush(currentTick int32, inboxDepths []float64) WindowStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var dropRate float64
	if handled := c.dispatched + c.dropped; handled > 0 {
		dropRate = float64(c.dropped) / float64(handled)
	}

	depth := ComputeInboxStats(inboxDepths)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		Actors: len(inboxDepths),

		DirectSends:       c.directSends,
		Broadcasts:        c.broadcasts,
		Deliveries:        c.deliveries,
		UnknownRecipients: c.unknownRecipients,

		Dispatched: c.dispatched,
		Dropped:    c.dropped,
		Rejections: c.rejections,
		Malformed:  c.malformed,
		DropRate:   dropRate,

		BuildDispatched:        c.dispatchByState["build"],
		ConstructionDispatched: c.dispatchByState["construction"],
		ForagingDispatched:     c.dispatchByState["foraging"],
		ListenDispatched:       c.dispatchByState["listen"],

		InboxMean: depth.Mean,
		InboxStd:  depth.Std,
		InboxP50:  depth.P50,
		InboxP90:  depth.P90,
		InboxMax:  depth.Max,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.directSends = 0
	c.broadcasts = 0
	c.deliveries = 0
	c.unknownRecipients = 0
	c.dispatched = 0
	c.dropped = 0
	c.rejections = 0
	c.malformed = 0
	clear(c.dispatchByState)

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
