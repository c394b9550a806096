package bridge

import "sync/atomic"

// Counters holds the four monotonic counters from spec.md's TrafficCounters:
// current >= prev always; speed is the non-negative delta taken each tick.
// Grounded on proxy_service.rs's TrafficCounter.
type Counters struct {
	up       atomic.Uint64
	down     atomic.Uint64
	prevUp   atomic.Uint64
	prevDown atomic.Uint64
}

func (c *Counters) addUp(n uint64)   { c.up.Add(n) }
func (c *Counters) addDown(n uint64) { c.down.Add(n) }

// Tick swaps the previous snapshot for the current one and returns the
// non-negative per-tick delta for both directions.
func (c *Counters) Tick() (up, down uint64) {
	nowUp := c.up.Load()
	nowDown := c.down.Load()
	prevUp := c.prevUp.Swap(nowUp)
	prevDown := c.prevDown.Swap(nowDown)
	return saturatingSub(nowUp, prevUp), saturatingSub(nowDown, prevDown)
}

func saturatingSub(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}
