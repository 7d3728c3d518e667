package aggregator

import "github.com/mark3labs/mcp-go/mcp"

// metaTools are the exactly-two tools mcpd ever exposes via tools/list,
// independent of how many backends are registered (spec §4.4). Backend
// tools are multiplexed through these two rather than surfaced directly,
// so the client's visible tool schema never churns (spec §9).
func metaTools() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("list_tools",
			mcp.WithDescription("List tools from every registered backend, namespaced as <backend>__<tool>"),
		),
		mcp.NewTool("use_tool",
			mcp.WithDescription("Call a namespaced backend tool"),
			mcp.WithString("tool_name",
				mcp.Required(),
				mcp.Description("Fully-qualified tool name in the form <backend>__<tool>"),
			),
			mcp.WithObject("arguments",
				mcp.Description("Arguments to pass to the backend tool"),
			),
		),
	}
}
