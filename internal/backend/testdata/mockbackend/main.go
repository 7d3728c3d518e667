// Command mockbackend is a minimal MCP server over stdio, used as a test
// fixture for internal/backend and internal/aggregator. It is not part of
// the mcpd binary: it is built on demand by tests via `go build` into a
// temporary executable, the way a real backend is spawned (spec §4.3).
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func main() {
	// MCPD_MOCK_FAIL_HANDSHAKE lets tests exercise HandshakeFailed without a
	// second fixture binary.
	failHandshake := os.Getenv("MCPD_MOCK_FAIL_HANDSHAKE") == "1"

	in := bufio.NewScanner(os.Stdin)
	in.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	out := bufio.NewWriter(os.Stdout)

	write := func(v interface{}) {
		data, _ := json.Marshal(v)
		out.Write(data)
		out.WriteByte('\n')
		out.Flush()
	}

	for in.Scan() {
		line := in.Bytes()
		if len(line) == 0 {
			continue
		}
		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			continue
		}
		if req.ID == nil {
			// Notification; nothing to reply to.
			continue
		}

		switch req.Method {
		case "initialize":
			if failHandshake {
				write(response{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: -32603, Message: "handshake refused"}})
				continue
			}
			write(response{JSONRPC: "2.0", ID: req.ID, Result: map[string]interface{}{
				"protocolVersion": "2024-11-05",
				"capabilities":    map[string]interface{}{},
				"serverInfo":      map[string]interface{}{"name": "mockbackend", "version": "0.0.1"},
			}})
		case "tools/list":
			write(response{JSONRPC: "2.0", ID: req.ID, Result: map[string]interface{}{
				"tools": []map[string]interface{}{
					{"name": "echo", "description": "echoes its arguments", "inputSchema": map[string]interface{}{"type": "object"}},
				},
			}})
		case "tools/call":
			var p struct {
				Name      string                 `json:"name"`
				Arguments map[string]interface{} `json:"arguments"`
			}
			json.Unmarshal(req.Params, &p)
			write(response{JSONRPC: "2.0", ID: req.ID, Result: map[string]interface{}{
				"content": []map[string]interface{}{
					{"type": "text", "text": fmt.Sprintf("echo:%v", p.Arguments)},
				},
			}})
		case "resources/list":
			write(response{JSONRPC: "2.0", ID: req.ID, Result: map[string]interface{}{
				"resources": []map[string]interface{}{
					{"uri": "file:///greeting.txt", "name": "greeting"},
				},
			}})
		case "resources/read":
			write(response{JSONRPC: "2.0", ID: req.ID, Result: map[string]interface{}{
				"contents": []map[string]interface{}{
					{"uri": "file:///greeting.txt", "text": "hello"},
				},
			}})
		case "prompts/list":
			write(response{JSONRPC: "2.0", ID: req.ID, Result: map[string]interface{}{
				"prompts": []map[string]interface{}{
					{"name": "greet", "description": "a greeting prompt"},
				},
			}})
		case "prompts/get":
			write(response{JSONRPC: "2.0", ID: req.ID, Result: map[string]interface{}{
				"description": "a greeting prompt",
				"messages": []map[string]interface{}{
					{"role": "user", "content": map[string]interface{}{"type": "text", "text": "hello"}},
				},
			}})
		default:
			write(response{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: -32601, Message: "method not found"}})
		}
	}
}
