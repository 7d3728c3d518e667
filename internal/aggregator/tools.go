package aggregator

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/errgroup"

	"mcpd/internal/mcperr"
	"mcpd/internal/mcptypes"
	"mcpd/internal/registry"
)

// listTools is the list_tools meta-tool handler (spec §4.4): it
// concurrently calls tools/list on every backend in snapshot and returns a
// structured, per-backend payload with each tool's name rewritten to
// <backend>__<tool>. A backend that fails is represented by an error entry
// rather than failing the whole call.
func (a *Aggregator) listTools(ctx context.Context, snapshot []registry.BackendEntry) mcptypes.ListToolsResult {
	result := mcptypes.ListToolsResult{Backends: make(map[string]mcptypes.BackendTools, len(snapshot))}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, entry := range snapshot {
		entry := entry
		g.Go(func() error {
			proxy := a.proxies.Get(entry)
			tools, err := proxy.ListTools(gctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				a.cfg.Log.Errorf(err, "tools/list on backend %q", entry.Name)
				result.Backends[entry.Name] = mcptypes.BackendTools{Error: err.Error()}
				return nil
			}
			namespaced := make([]mcp.Tool, len(tools))
			for i, t := range tools {
				t.Name = qualify(entry.Name, t.Name)
				namespaced[i] = t
			}
			result.Backends[entry.Name] = mcptypes.BackendTools{Tools: namespaced}
			return nil
		})
	}
	// errgroup's error is always nil here: per-backend failures are
	// captured into result instead of aborting the group (spec §7: "Fan-out
	// calls in tools/list ... treat per-backend failures as partial
	// results").
	_ = g.Wait()
	return result
}

// useTool is the use_tool meta-tool handler (spec §4.4): it splits
// tool_name on the first "__" into (backend, tool), resolves backend
// against snapshot, and forwards tools/call to it verbatim.
func (a *Aggregator) useTool(ctx context.Context, snapshot []registry.BackendEntry, args mcptypes.UseToolArgs) (*mcp.CallToolResult, error) {
	backendName, toolName, ok := splitQualified(args.ToolName)
	if !ok {
		return nil, &mcperr.MalformedToolNameError{Name: args.ToolName}
	}

	entry, ok := lookupEntry(snapshot, backendName)
	if !ok {
		return nil, &mcperr.UnknownBackendError{Backend: backendName}
	}

	proxy := a.proxies.Get(entry)
	return proxy.CallTool(ctx, toolName, args.Arguments)
}

// lookupEntry finds the entry named name within snapshot.
func lookupEntry(snapshot []registry.BackendEntry, name string) (registry.BackendEntry, bool) {
	for _, e := range snapshot {
		if e.Name == name {
			return e, true
		}
	}
	return registry.BackendEntry{}, false
}
