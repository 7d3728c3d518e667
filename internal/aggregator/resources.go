package aggregator

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/errgroup"

	"mcpd/internal/mcperr"
	"mcpd/internal/registry"
)

// isMethodNotFound reports whether err is (or wraps) a backend's JSON-RPC
// "method not found" response. mcp-go's stdio client does not expose a
// typed sentinel for this, so mcpd matches on the standard JSON-RPC 2.0
// error text the same way spec §7 names the condition, after unwrapping
// mcpd's own BackendError.
func isMethodNotFound(err error) bool {
	var backendErr *mcperr.BackendError
	if errors.As(err, &backendErr) {
		err = backendErr.Err
	}
	return strings.Contains(strings.ToLower(err.Error()), "method not found")
}

// listResources fans out resources/list to every backend in snapshot
// (spec §4.4). URIs are rewritten to mcpd://<backend>/<original-uri> and
// names prefixed <backend>__. Backends returning MethodNotFound are
// silently omitted; other errors are logged and dropped (spec §7).
// Successful backends' resources are concatenated in registry order.
func (a *Aggregator) listResources(ctx context.Context, snapshot []registry.BackendEntry) []mcp.Resource {
	perBackend := make([][]mcp.Resource, len(snapshot))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for i, entry := range snapshot {
		i, entry := i, entry
		g.Go(func() error {
			proxy := a.proxies.Get(entry)
			resources, err := proxy.ListResources(gctx)
			if err != nil {
				if !isMethodNotFound(err) {
					a.cfg.Log.Errorf(err, "resources/list on backend %q", entry.Name)
				} else {
					a.cfg.Log.Debugf("backend %q has no resources/list support", entry.Name)
				}
				return nil
			}

			namespaced := make([]mcp.Resource, len(resources))
			for j, r := range resources {
				r.URI = qualifyURI(entry.Name, r.URI)
				r.Name = qualify(entry.Name, r.Name)
				namespaced[j] = r
			}

			mu.Lock()
			perBackend[i] = namespaced
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	var out []mcp.Resource
	for _, rs := range perBackend {
		out = append(out, rs...)
	}
	return out
}

// readResource forwards resources/read to the backend named in uri
// (spec §4.4). uri must be of the form mcpd://<backend>/<original-uri>.
func (a *Aggregator) readResource(ctx context.Context, snapshot []registry.BackendEntry, uri string) (*mcp.ReadResourceResult, error) {
	backendName, original, ok := splitURI(uri)
	if !ok {
		return nil, &mcperr.InvalidResourceURIError{URI: uri}
	}

	entry, ok := lookupEntry(snapshot, backendName)
	if !ok {
		return nil, &mcperr.UnknownBackendError{Backend: backendName}
	}

	proxy := a.proxies.Get(entry)
	return proxy.ReadResource(ctx, original)
}
