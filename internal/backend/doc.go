// Package backend implements mcpd's per-backend subprocess proxy, grounded
// on giantswarm-muster's internal/mcpserver.StdioClient for the spawn and
// handshake sequence, extended with the exclusive-lease, timeout, and
// dead-marking policy spec §4.3 and §5 require.
//
// Framing and request/response correlation onto the child's stdio are
// delegated to github.com/mark3labs/mcp-go/client's stdio transport, which
// already implements newline-delimited JSON framing and id correlation the
// way spec §4.3 describes — the same library giantswarm-muster's
// StdioClient wraps for its own backend connections. Proxy adds the policy
// on top of that: an exclusive per-backend lease so at most one request is
// outstanding at a time, a bounded call timeout, and dead-marking with lazy
// respawn after any failed call (a transport failure or an error reply from
// the backend alike).
package backend
