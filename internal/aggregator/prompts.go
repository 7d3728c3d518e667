package aggregator

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/errgroup"

	"mcpd/internal/mcperr"
	"mcpd/internal/registry"
)

// listPrompts fans out prompts/list to every backend in snapshot
// (spec §4.4), analogous to listResources: names are rewritten
// <backend>__<name>, backends lacking prompt support are omitted.
func (a *Aggregator) listPrompts(ctx context.Context, snapshot []registry.BackendEntry) []mcp.Prompt {
	perBackend := make([][]mcp.Prompt, len(snapshot))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for i, entry := range snapshot {
		i, entry := i, entry
		g.Go(func() error {
			proxy := a.proxies.Get(entry)
			prompts, err := proxy.ListPrompts(gctx)
			if err != nil {
				if !isMethodNotFound(err) {
					a.cfg.Log.Errorf(err, "prompts/list on backend %q", entry.Name)
				} else {
					a.cfg.Log.Debugf("backend %q has no prompts/list support", entry.Name)
				}
				return nil
			}

			namespaced := make([]mcp.Prompt, len(prompts))
			for j, p := range prompts {
				p.Name = qualify(entry.Name, p.Name)
				namespaced[j] = p
			}

			mu.Lock()
			perBackend[i] = namespaced
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	var out []mcp.Prompt
	for _, ps := range perBackend {
		out = append(out, ps...)
	}
	return out
}

// getPrompt forwards prompts/get to the backend named in a qualified
// prompt name (spec §4.4: "Split on the first __, resolve <backend>,
// forward prompts/get with {name: prompt, arguments?}").
func (a *Aggregator) getPrompt(ctx context.Context, snapshot []registry.BackendEntry, name string, args map[string]string) (*mcp.GetPromptResult, error) {
	backendName, promptName, ok := splitQualified(name)
	if !ok {
		return nil, &mcperr.MalformedToolNameError{Name: name}
	}

	entry, ok := lookupEntry(snapshot, backendName)
	if !ok {
		return nil, &mcperr.UnknownBackendError{Backend: backendName}
	}

	proxy := a.proxies.Get(entry)
	return proxy.GetPrompt(ctx, promptName, args)
}
