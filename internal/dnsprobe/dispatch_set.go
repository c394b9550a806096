package dnsprobe

import (
	"sync"

	"github.com/barweiss/go-tuple"
	collset "github.com/golang-collections/collections/set"
)

// dispatchTracker records which (server, mode) pairs have already been
// dispatched within one scan batch, guarding against a caller submitting
// the same resolver twice in one dns_scan_start call. Adapted from the
// teacher's mutex-guarded manager shape in blocked_domains_manager.go and
// excluded_from_caching_manager.go, replacing their domain-suffix trees
// (not needed here — server strings aren't hierarchical) with a single
// flat set keyed on the tuple.
type dispatchTracker struct {
	mu   sync.Mutex
	seen *collset.Set
}

func newDispatchTracker() *dispatchTracker {
	return &dispatchTracker{seen: collset.New()}
}

// markIfNew records (server, mode) and reports whether it was new.
func (d *dispatchTracker) markIfNew(server string, mode Mode) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := tuple.New2(server, string(mode))
	if d.seen.Has(key) {
		return false
	}
	d.seen.Insert(key)
	return true
}
