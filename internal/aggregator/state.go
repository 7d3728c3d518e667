package aggregator

import (
	"sort"
	"strings"
	"sync"

	"mcpd/internal/registry"
)

// changeTracker remembers the last-observed set of backend names (spec §3's
// AggregatorState) so the Aggregator can decide, after refreshing the
// registry snapshot on each request, whether to emit list_changed
// notifications (spec §4.4).
type changeTracker struct {
	mu          sync.Mutex
	lastDigest  string
	initialized bool
}

// digest computes a stable fingerprint of a backend set: the sorted list of
// names, joined (spec §4.4: "a stable digest (e.g., sorted list of backend
// names)").
func digest(entries []registry.BackendEntry) string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	sort.Strings(names)
	return strings.Join(names, "\x00")
}

// observe compares the current snapshot's digest to the last one recorded
// and reports whether it changed. The first call only records the digest
// and always reports unchanged, so a registry that already has entries at
// startup does not fire a notification on the first request.
func (t *changeTracker) observe(entries []registry.BackendEntry) (changed bool) {
	d := digest(entries)

	t.mu.Lock()
	defer t.mu.Unlock()

	changed = t.initialized && d != t.lastDigest
	t.lastDigest = d
	t.initialized = true
	return changed
}
