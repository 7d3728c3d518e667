// Command mcpd is the MCP aggregator daemon: it multiplexes tools,
// resources, and prompts from every backend named in an on-disk registry
// behind a single MCP server on its own standard streams.
package main

// version is injected at build time (matching giantswarm-muster's
// main.go: `var version = "dev"` overridden via `-ldflags -X`).
var version = "dev"

func main() {
	SetVersion(version)
	Execute()
}
