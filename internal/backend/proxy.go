package backend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"mcpd/internal/mcperr"
	"mcpd/internal/mcplog"
	"mcpd/internal/registry"
)

// DefaultInitTimeout bounds subprocess start + handshake, mirroring
// giantswarm-muster's StdioClient.DefaultStdioInitTimeout.
const DefaultInitTimeout = 10 * time.Second

// DefaultCallTimeout is the per-call wall-clock bound spec §4.3 and §5
// recommend.
const DefaultCallTimeout = 30 * time.Second

// ProtocolVersion is the MCP protocol version mcpd negotiates with both its
// own client and every backend.
const ProtocolVersion = "2024-11-05"

// Proxy is the runtime object for one backend's live child process
// (spec §3's BackendProxy).
type Proxy struct {
	entry       registry.BackendEntry
	callTimeout time.Duration
	log         mcplog.Logger

	// mu is the exclusive lease: held for the full duration of
	// ensureStarted plus exactly one in-flight call (spec §4.3
	// "Serialization discipline").
	mu sync.Mutex

	client    client.MCPClient
	connected bool
	dead      bool
}

// New returns a Proxy for entry, bounding every call at callTimeout (spec
// §4.3, §5; SPEC_FULL.md §4 "a configurable field ... plumbed via a
// --backend-timeout flag"). The child process is not started until the
// first call (spec §3: "created lazily on first use").
func New(entry registry.BackendEntry, callTimeout time.Duration, log mcplog.Logger) *Proxy {
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	return &Proxy{
		entry:       entry,
		callTimeout: callTimeout,
		log:         log,
	}
}

// Name returns the backend name this proxy serves.
func (p *Proxy) Name() string { return p.entry.Name }

// ensureStarted spawns the child and completes the MCP handshake if not
// already connected. Caller must hold mu. Idempotent (spec §4.3).
func (p *Proxy) ensureStarted(ctx context.Context) error {
	if p.connected && !p.dead {
		return nil
	}
	if p.dead {
		// Re-spawn: drop the old client entirely rather than trying to
		// salvage stream position (spec §9 open question, resolved).
		if p.client != nil {
			_ = p.client.Close()
		}
		p.client = nil
		p.connected = false
		p.dead = false
	}

	envStrings := make([]string, 0, len(p.entry.Env))
	for k, v := range p.entry.Env {
		envStrings = append(envStrings, fmt.Sprintf("%s=%s", k, v))
	}

	p.log.Debugf("spawning backend %q: %s %v", p.entry.Name, p.entry.Command, p.entry.Args)
	c, err := client.NewStdioMCPClient(p.entry.Command, envStrings, p.entry.Args...)
	if err != nil {
		return &mcperr.SpawnFailedError{Backend: p.entry.Name, Err: err}
	}

	initCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		initCtx, cancel = context.WithTimeout(ctx, DefaultInitTimeout)
		defer cancel()
	}

	_, err = c.Initialize(initCtx, mcp.InitializeRequest{
		Params: struct {
			ProtocolVersion string                 `json:"protocolVersion"`
			Capabilities    mcp.ClientCapabilities `json:"capabilities"`
			ClientInfo      mcp.Implementation     `json:"clientInfo"`
		}{
			ProtocolVersion: ProtocolVersion,
			ClientInfo: mcp.Implementation{
				Name:    "mcpd",
				Version: "0.1.0",
			},
			Capabilities: mcp.ClientCapabilities{},
		},
	})
	if err != nil {
		p.log.Errorf(err, "handshake failed for backend %q", p.entry.Name)
		_ = c.Close()
		return &mcperr.HandshakeFailedError{Backend: p.entry.Name, Err: err}
	}

	p.client = c
	p.connected = true
	p.log.Infof("backend %q ready", p.entry.Name)
	return nil
}

// withLease runs fn under the proxy's exclusive lease, applying the call
// timeout and spawning if necessary. Any error from fn marks the proxy
// dead, so the next call re-spawns it: a timeout is returned as
// *mcperr.BackendTimeoutError, every other error as *mcperr.BackendError.
// A transport failure and an error reply from the backend are not told
// apart; both mark the proxy dead.
func (p *Proxy) withLease(ctx context.Context, fn func(ctx context.Context) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureStarted(ctx); err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	err := fn(callCtx)
	if err != nil {
		if callCtx.Err() != nil {
			p.dead = true
			return &mcperr.BackendTimeoutError{Backend: p.entry.Name}
		}
		p.dead = true
		return &mcperr.BackendError{Backend: p.entry.Name, Err: err}
	}
	return nil
}

// ListTools calls tools/list on the backend.
func (p *Proxy) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	var tools []mcp.Tool
	err := p.withLease(ctx, func(ctx context.Context) error {
		result, err := p.client.ListTools(ctx, mcp.ListToolsRequest{})
		if err != nil {
			return err
		}
		tools = result.Tools
		return nil
	})
	return tools, err
}

// CallTool calls tools/call with name and args on the backend.
func (p *Proxy) CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	var result *mcp.CallToolResult
	err := p.withLease(ctx, func(ctx context.Context) error {
		r, err := p.client.CallTool(ctx, mcp.CallToolRequest{
			Params: struct {
				Name      string    `json:"name"`
				Arguments any       `json:"arguments,omitempty"`
				Meta      *mcp.Meta `json:"_meta,omitempty"`
			}{
				Name:      name,
				Arguments: args,
			},
		})
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	return result, err
}

// ListResources calls resources/list on the backend.
func (p *Proxy) ListResources(ctx context.Context) ([]mcp.Resource, error) {
	var resources []mcp.Resource
	err := p.withLease(ctx, func(ctx context.Context) error {
		result, err := p.client.ListResources(ctx, mcp.ListResourcesRequest{})
		if err != nil {
			return err
		}
		resources = result.Resources
		return nil
	})
	return resources, err
}

// ReadResource calls resources/read for uri on the backend.
func (p *Proxy) ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	var result *mcp.ReadResourceResult
	err := p.withLease(ctx, func(ctx context.Context) error {
		r, err := p.client.ReadResource(ctx, mcp.ReadResourceRequest{
			Params: struct {
				URI       string         `json:"uri"`
				Arguments map[string]any `json:"arguments,omitempty"`
			}{URI: uri},
		})
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	return result, err
}

// ListPrompts calls prompts/list on the backend.
func (p *Proxy) ListPrompts(ctx context.Context) ([]mcp.Prompt, error) {
	var prompts []mcp.Prompt
	err := p.withLease(ctx, func(ctx context.Context) error {
		result, err := p.client.ListPrompts(ctx, mcp.ListPromptsRequest{})
		if err != nil {
			return err
		}
		prompts = result.Prompts
		return nil
	})
	return prompts, err
}

// GetPrompt calls prompts/get for name on the backend.
func (p *Proxy) GetPrompt(ctx context.Context, name string, args map[string]string) (*mcp.GetPromptResult, error) {
	var result *mcp.GetPromptResult
	err := p.withLease(ctx, func(ctx context.Context) error {
		r, err := p.client.GetPrompt(ctx, mcp.GetPromptRequest{
			Params: struct {
				Name      string            `json:"name"`
				Arguments map[string]string `json:"arguments,omitempty"`
			}{
				Name:      name,
				Arguments: args,
			},
		})
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	return result, err
}

// Shutdown closes the child's connection. Safe to call exactly once, and
// safe to call on a never-started proxy (spec §4.3).
func (p *Proxy) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.connected || p.client == nil {
		return nil
	}
	p.log.Debugf("shutting down backend %q", p.entry.Name)
	err := p.client.Close()
	p.connected = false
	p.client = nil
	return err
}
