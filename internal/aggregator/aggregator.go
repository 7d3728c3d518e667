package aggregator

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"mcpd/internal/backend"
	"mcpd/internal/mcperr"
	"mcpd/internal/mcplog"
	"mcpd/internal/mcptypes"
	"mcpd/internal/registry"
)

// serverName and serverVersion identify mcpd to connecting clients and
// backends when Config does not override them.
const (
	serverName    = "mcpd"
	serverVersion = "0.1.0"
)

// maxLineSize bounds a single incoming JSON-RPC message, generous enough
// for large tool schemas and resource payloads without admitting an
// unbounded read off a misbehaving client.
const maxLineSize = 16 * 1024 * 1024

// Aggregator is the MCP server exposed on the parent process's standard
// streams (spec §4.4). One instance runs for the lifetime of the `mcpd
// serve` process.
type Aggregator struct {
	cfg     Config
	proxies *backend.ProxyRegistry
	tracker changeTracker

	outMu sync.Mutex
	out   io.Writer
}

// New returns an Aggregator ready to Run. The on-disk registry at
// cfg.RegistryPath is not read until the first request arrives.
func New(cfg Config) *Aggregator {
	if cfg.BackendTimeout <= 0 {
		cfg.BackendTimeout = DefaultBackendTimeout
	}
	if cfg.Name == "" {
		cfg.Name = serverName
	}
	if cfg.Version == "" {
		cfg.Version = serverVersion
	}
	if cfg.Log == nil {
		cfg.Log = mcplog.For("aggregator")
	}

	return &Aggregator{
		cfg:     cfg,
		proxies: backend.NewProxyRegistry(cfg.BackendTimeout, mcplog.For("backend")),
	}
}

// Run is the Aggregator's main dispatch loop (spec §4.4, §5): it reads
// newline-delimited JSON-RPC messages from in, handles each, and writes
// exactly one response per request to out. It returns on EOF of in or when
// ctx is cancelled, after shutting down every spawned backend.
func (a *Aggregator) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	a.out = out
	defer a.proxies.ShutdownAll()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		a.handleLine(ctx, append([]byte(nil), line...))
	}
	return scanner.Err()
}

// handleLine processes one incoming JSON-RPC message: refresh the registry
// snapshot, dispatch, write the reply (if any), then emit list_changed
// notifications if the backend set changed (spec §4.4).
func (a *Aggregator) handleLine(ctx context.Context, line []byte) {
	var req mcptypes.Request
	if err := json.Unmarshal(line, &req); err != nil {
		a.writeError(nil, &mcptypes.Error{Code: mcptypes.CodeParseError, Message: err.Error()})
		return
	}

	snapshot, changed, loadErr := a.refresh()
	if loadErr != nil {
		a.cfg.Log.Errorf(loadErr, "registry refresh")
		if !req.IsNotification() {
			a.writeError(req.ID, rpcError(loadErr))
		}
		return
	}

	result, rpcErr := a.dispatch(ctx, req, snapshot)
	if !req.IsNotification() {
		if rpcErr != nil {
			a.writeError(req.ID, rpcErr)
		} else {
			a.writeResult(req.ID, result)
		}
	}

	if changed {
		a.emitListChanged()
	}
}

// refresh reloads the on-disk registry and reports whether the backend set
// differs from the last-observed one (spec §4.4 "computes a stable digest
// ... compares it to the last-observed digest"). Disappeared backends'
// proxies are torn down immediately so the next dispatch never resolves a
// stale entry (spec §4.4 "Proxies for backends that have disappeared are
// shut down and removed").
func (a *Aggregator) refresh() (snapshot []registry.BackendEntry, changed bool, err error) {
	reg, err := registry.Load(a.cfg.RegistryPath)
	if err != nil {
		return nil, false, err
	}

	snapshot = reg.Snapshot()
	changed = a.tracker.observe(snapshot)
	if changed {
		a.proxies.Reconcile(snapshot)
	}
	return snapshot, changed, nil
}

// dispatch routes one request by method (spec §4.4 "Handled methods").
func (a *Aggregator) dispatch(ctx context.Context, req mcptypes.Request, snapshot []registry.BackendEntry) (interface{}, *mcptypes.Error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.BackendTimeout)
	defer cancel()

	switch req.Method {
	case "initialize":
		return a.handleInitialize(req.Params)
	case "notifications/initialized":
		return nil, nil
	case "tools/list":
		return map[string][]mcp.Tool{"tools": metaTools()}, nil
	case "tools/call":
		return a.handleToolsCall(ctx, req.Params, snapshot)
	case "resources/list":
		return map[string][]mcp.Resource{"resources": a.listResources(ctx, snapshot)}, nil
	case "resources/read":
		return a.handleResourcesRead(ctx, req.Params, snapshot)
	case "prompts/list":
		return map[string][]mcp.Prompt{"prompts": a.listPrompts(ctx, snapshot)}, nil
	case "prompts/get":
		return a.handlePromptsGet(ctx, req.Params, snapshot)
	default:
		return nil, &mcptypes.Error{Code: mcptypes.CodeMethodNotFound, Message: fmt.Sprintf("method %q not found", req.Method)}
	}
}

func (a *Aggregator) handleInitialize(params json.RawMessage) (interface{}, *mcptypes.Error) {
	return mcptypes.InitializeResult{
		ProtocolVersion: backend.ProtocolVersion,
		Capabilities: mcptypes.ServerCapabilities{
			Tools:     &mcptypes.ListChangedCapability{ListChanged: true},
			Resources: &mcptypes.ListChangedCapability{ListChanged: true},
			Prompts:   &mcptypes.ListChangedCapability{ListChanged: true},
		},
		ServerInfo: mcp.Implementation{
			Name:    a.cfg.Name,
			Version: a.cfg.Version,
		},
	}, nil
}

// toolCallParams is the wire shape of a tools/call request's params.
type toolCallParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

func (a *Aggregator) handleToolsCall(ctx context.Context, params json.RawMessage, snapshot []registry.BackendEntry) (interface{}, *mcptypes.Error) {
	var p toolCallParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &mcptypes.Error{Code: mcptypes.CodeInvalidParams, Message: err.Error()}
	}

	switch p.Name {
	case "list_tools":
		return a.listTools(ctx, snapshot), nil
	case "use_tool":
		var args mcptypes.UseToolArgs
		if raw, err := json.Marshal(p.Arguments); err == nil {
			_ = json.Unmarshal(raw, &args)
		}
		result, err := a.useTool(ctx, snapshot, args)
		if err != nil {
			return nil, rpcError(err)
		}
		return result, nil
	default:
		return nil, rpcError(&mcperr.UnknownToolError{Name: p.Name})
	}
}

type resourceReadParams struct {
	URI string `json:"uri"`
}

func (a *Aggregator) handleResourcesRead(ctx context.Context, params json.RawMessage, snapshot []registry.BackendEntry) (interface{}, *mcptypes.Error) {
	var p resourceReadParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &mcptypes.Error{Code: mcptypes.CodeInvalidParams, Message: err.Error()}
	}
	result, err := a.readResource(ctx, snapshot, p.URI)
	if err != nil {
		return nil, rpcError(err)
	}
	return result, nil
}

type promptGetParams struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

func (a *Aggregator) handlePromptsGet(ctx context.Context, params json.RawMessage, snapshot []registry.BackendEntry) (interface{}, *mcptypes.Error) {
	var p promptGetParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &mcptypes.Error{Code: mcptypes.CodeInvalidParams, Message: err.Error()}
	}
	result, err := a.getPrompt(ctx, snapshot, p.Name, p.Arguments)
	if err != nil {
		return nil, rpcError(err)
	}
	return result, nil
}

// emitListChanged sends the three list_changed notifications in the order
// spec §4.4 specifies, after the current response has already been
// flushed.
func (a *Aggregator) emitListChanged() {
	for _, method := range []string{
		"notifications/tools/list_changed",
		"notifications/resources/list_changed",
		"notifications/prompts/list_changed",
	} {
		a.writeNotification(method)
	}
}

// writeResult and writeError marshal and write a JSON-RPC response line,
// holding outMu for the duration so concurrent fan-out goroutines never
// interleave partial writes on the parent's standard output (spec §5).
func (a *Aggregator) writeResult(id json.RawMessage, result interface{}) {
	a.writeLine(mcptypes.Response{JSONRPC: "2.0", ID: id, Result: result})
}

func (a *Aggregator) writeError(id json.RawMessage, rpcErr *mcptypes.Error) {
	a.writeLine(mcptypes.Response{JSONRPC: "2.0", ID: id, Error: rpcErr})
}

func (a *Aggregator) writeNotification(method string) {
	a.writeLine(mcptypes.Notification{JSONRPC: "2.0", Method: method})
}

func (a *Aggregator) writeLine(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		a.cfg.Log.Errorf(err, "marshal outgoing message")
		return
	}
	data = append(data, '\n')

	a.outMu.Lock()
	defer a.outMu.Unlock()
	if _, err := a.out.Write(data); err != nil {
		a.cfg.Log.Errorf(err, "write to stdout")
	}
}
