package mcptypes

import "github.com/mark3labs/mcp-go/mcp"

// ListToolsArgs is the (empty) argument shape of the list_tools meta-tool
// (spec §4.4: "no required arguments").
type ListToolsArgs struct{}

// BackendTools is one backend's contribution to a list_tools result: either
// its namespaced tools, or an error if the backend could not be reached
// (spec §4.4: "Backends that fail are represented by an error entry keyed
// by backend name — partial failure is visible but does not fail the whole
// call").
type BackendTools struct {
	Tools []mcp.Tool `json:"tools,omitempty"`
	Error string     `json:"error,omitempty"`
}

// ListToolsResult is the structured payload list_tools returns: one entry
// per backend, keyed by backend name.
type ListToolsResult struct {
	Backends map[string]BackendTools `json:"backends"`
}

// UseToolArgs is the argument shape of the use_tool meta-tool (spec §4.4:
// "required arguments {tool_name: string, arguments: object}").
type UseToolArgs struct {
	ToolName  string                 `json:"tool_name"`
	Arguments map[string]interface{} `json:"arguments"`
}
