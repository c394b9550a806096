// Package diag is an in-memory diagnostics registry with JSON persistence,
// adapted from the teacher's proxy/stats_manager.go StatsManager for
// corebridge's own stat keys (connection/traffic/scan counters instead of
// DNS-resolver hit counts).
package diag

import (
	"encoding/json"
	"os"
	"strings"
	"sync"

	"github.com/AdguardTeam/golibs/log"
)

const pathSeparator = "::"

// Registry is a nested string-keyed map guarded by a single mutex, exactly
// like the teacher's StatsManager, with "::"-separated path Get/Set.
type Registry struct {
	mu    sync.Mutex
	stats map[string]any
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{stats: make(map[string]any)}
}

// Set stores value at the "::"-separated path key, creating intermediate
// maps.
func (r *Registry) Set(key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	parts := strings.Split(key, pathSeparator)
	m := r.stats
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}

// Get retrieves the value at the "::"-separated path key, if present.
func (r *Registry) Get(key string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	parts := strings.Split(key, pathSeparator)
	var cur any = r.stats
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Snapshot returns a shallow copy of the whole tree, safe to marshal outside
// the lock.
func (r *Registry) Snapshot() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyMap(r.stats)
}

func copyMap(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		if nested, ok := v.(map[string]any); ok {
			dst[k] = copyMap(nested)
		} else {
			dst[k] = v
		}
	}
	return dst
}

// Save writes the registry to path as pretty-printed JSON.
func (r *Registry) Save(path string) error {
	data, err := json.MarshalIndent(r.Snapshot(), "", "  ")
	if err != nil {
		log.Error("encoding diagnostics registry: %s", err)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Error("writing diagnostics registry to %s: %s", path, err)
		return err
	}
	return nil
}

// Load populates the registry from path, if it exists.
func (r *Registry) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		log.Error("reading diagnostics registry from %s: %s", path, err)
		return err
	}

	var loaded map[string]any
	if err := json.Unmarshal(data, &loaded); err != nil {
		log.Error("parsing diagnostics registry from %s: %s", path, err)
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats = loaded
	return nil
}
