package backend

import (
	"sync"
	"time"

	"mcpd/internal/mcplog"
	"mcpd/internal/registry"
)

// ProxyRegistry is the process-wide map from backend name to Proxy
// (spec §3's ProxyRegistry). Entries are inserted on first demand and
// removed when a backend disappears from the on-disk Registry.
type ProxyRegistry struct {
	mu          sync.Mutex
	proxies     map[string]*Proxy
	callTimeout time.Duration
	log         mcplog.Logger
}

// NewProxyRegistry returns an empty ProxyRegistry. Every Proxy it creates
// is bounded at callTimeout (SPEC_FULL.md §4: the configured
// --backend-timeout value, not the package default).
func NewProxyRegistry(callTimeout time.Duration, log mcplog.Logger) *ProxyRegistry {
	return &ProxyRegistry{
		proxies:     make(map[string]*Proxy),
		callTimeout: callTimeout,
		log:         log,
	}
}

// Get returns the Proxy for entry, creating one lazily if this is the
// first time this backend name has been seen. The child process itself is
// still only spawned on first call (spec §3: "created lazily on first use").
func (pr *ProxyRegistry) Get(entry registry.BackendEntry) *Proxy {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	if p, ok := pr.proxies[entry.Name]; ok {
		return p
	}
	p := New(entry, pr.callTimeout, pr.log)
	pr.proxies[entry.Name] = p
	return p
}

// Reconcile tears down and removes proxies for backends no longer present
// in current (spec §4.4: "Proxies for backends that have disappeared are
// shut down and removed from the proxy registry"). Shutdown runs
// concurrently and its errors are logged, not returned, since a backend
// disappearing from the registry is not itself a request failure.
func (pr *ProxyRegistry) Reconcile(current []registry.BackendEntry) {
	keep := make(map[string]struct{}, len(current))
	for _, e := range current {
		keep[e.Name] = struct{}{}
	}

	pr.mu.Lock()
	var stale []*Proxy
	for name, p := range pr.proxies {
		if _, ok := keep[name]; !ok {
			stale = append(stale, p)
			delete(pr.proxies, name)
		}
	}
	pr.mu.Unlock()

	var wg sync.WaitGroup
	for _, p := range stale {
		wg.Add(1)
		go func(p *Proxy) {
			defer wg.Done()
			if err := p.Shutdown(); err != nil {
				pr.log.Errorf(err, "shutdown of disappeared backend %q", p.Name())
			}
		}(p)
	}
	wg.Wait()
}

// ShutdownAll tears down every proxy, in parallel (spec §5 "Teardown").
func (pr *ProxyRegistry) ShutdownAll() {
	pr.mu.Lock()
	all := make([]*Proxy, 0, len(pr.proxies))
	for _, p := range pr.proxies {
		all = append(all, p)
	}
	pr.proxies = make(map[string]*Proxy)
	pr.mu.Unlock()

	var wg sync.WaitGroup
	for _, p := range all {
		wg.Add(1)
		go func(p *Proxy) {
			defer wg.Done()
			if err := p.Shutdown(); err != nil {
				pr.log.Errorf(err, "shutdown of backend %q", p.Name())
			}
		}(p)
	}
	wg.Wait()
}
