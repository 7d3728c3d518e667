// Package aggregator implements mcpd's Aggregator (spec §4.4): the MCP
// server exposed on the parent process's standard streams. It synthesizes
// the two-tool meta surface, natively proxies resources and prompts across
// backends with namespacing, and emits list_changed notifications when the
// on-disk registry changes between requests.
//
// The dispatch loop is hand-rolled rather than delegated wholesale to
// github.com/mark3labs/mcp-go/server (see DESIGN.md): resources/list and
// prompts/list must re-run their backend fan-out on every call against a
// freshly reloaded registry snapshot (spec §3, §4.4), which does not fit
// that package's static, mutate-then-notify resource/prompt registry
// model, and the precise "flush response, then emit list_changed" ordering
// spec §4.4 requires is easiest to guarantee with direct control over the
// output stream. github.com/mark3labs/mcp-go/mcp still supplies every
// domain payload shape (Tool, Resource, Prompt, their request/result
// types) and its tool-building helpers (mcp.NewTool, mcp.WithDescription,
// mcp.WithString, mcp.WithObject) construct the two static meta-tools.
package aggregator
