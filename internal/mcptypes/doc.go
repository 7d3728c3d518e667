// Package mcptypes holds mcpd's own half of the Protocol Types component
// (spec §4.1): a generic, forward-compatible JSON-RPC 2.0 envelope for the
// Aggregator's own request loop, plus the argument/result shapes of the two
// meta-tools (list_tools, use_tool) that do not exist in
// github.com/mark3labs/mcp-go/mcp, which supplies the rest of the domain
// payloads (Tool, Resource, Prompt, and their call/read/get shapes).
package mcptypes
