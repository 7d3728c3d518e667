package mcptypes

import "github.com/mark3labs/mcp-go/mcp"

// ServerCapabilities is the capabilities object mcpd advertises in its own
// initialize response (spec §4.4: "Capabilities advertised. Tools,
// resources, and prompts, each with list_changed support"). Defined
// locally rather than reusing an upstream server-side capabilities type,
// since mcpd's Aggregator does not build on mcp-go/server (see
// internal/aggregator/doc.go) and this shape is part of the wire protocol,
// not an mcp-go-specific abstraction.
type ServerCapabilities struct {
	Tools     *ListChangedCapability `json:"tools,omitempty"`
	Resources *ListChangedCapability `json:"resources,omitempty"`
	Prompts   *ListChangedCapability `json:"prompts,omitempty"`
}

// ListChangedCapability marks support for the corresponding
// notifications/*/list_changed notification.
type ListChangedCapability struct {
	ListChanged bool `json:"listChanged"`
}

// InitializeResult is mcpd's reply to the client's initialize request.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      mcp.Implementation `json:"serverInfo"`
}
