// Package mcplog is mcpd's stderr-only logging sink, grounded on
// giantswarm-muster's pkg/logging: the same LogLevel/slog wiring, stripped
// of the TUI channel mode muster needs and mcpd does not.
//
// mcpd speaks MCP on stdin/stdout, so nothing may ever write to stdout
// outside the protocol stream. All diagnostic output goes to stderr.
package mcplog
