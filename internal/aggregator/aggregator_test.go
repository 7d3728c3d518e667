package aggregator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mcpd/internal/mcplog"
	"mcpd/internal/registry"
)

// buildMockbackend compiles internal/backend/testdata/mockbackend, the
// same subprocess fixture internal/backend's own tests use, so the
// Aggregator can be exercised end to end against a real child process
// (SPEC_FULL.md §1.4).
func buildMockbackend(t *testing.T) string {
	t.Helper()

	bin := filepath.Join(t.TempDir(), "mockbackend")
	cmd := exec.Command("go", "build", "-o", bin, "../backend/testdata/mockbackend")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Skipf("skipping: could not build mockbackend fixture: %v\n%s", err, out)
	}
	return bin
}

func writeRegistry(t *testing.T, entries []registry.BackendEntry) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "registry.json")
	reg := registry.New(path)
	for _, e := range entries {
		if err := reg.Add(e); err != nil {
			t.Fatalf("Add(%+v): %v", e, err)
		}
	}
	if err := reg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return path
}

type rpcLine struct {
	ID     interface{} `json:"id,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func runRequests(t *testing.T, agg *Aggregator, requests []string) []rpcLine {
	t.Helper()

	in := strings.NewReader(strings.Join(requests, "\n") + "\n")
	var out bytes.Buffer

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := agg.Run(ctx, in, &out); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var lines []rpcLine
	dec := json.NewDecoder(&out)
	for dec.More() {
		var l rpcLine
		if err := dec.Decode(&l); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		lines = append(lines, l)
	}
	return lines
}

func req(id int, method string, params interface{}) string {
	p, _ := json.Marshal(params)
	return fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"method":%q,"params":%s}`, id, method, p)
}

func TestAggregatorEndToEnd(t *testing.T) {
	bin := buildMockbackend(t)
	registryPath := writeRegistry(t, []registry.BackendEntry{{Name: "mock", Command: bin}})

	agg := New(Config{
		RegistryPath: registryPath,
		Log:          mcplog.For("test"),
	})

	lines := runRequests(t, agg, []string{
		req(1, "initialize", map[string]interface{}{}),
		req(2, "tools/call", map[string]interface{}{"name": "list_tools"}),
		req(3, "tools/call", map[string]interface{}{
			"name": "use_tool",
			"arguments": map[string]interface{}{
				"tool_name": "mock__echo",
				"arguments": map[string]interface{}{"x": 1},
			},
		}),
		req(4, "resources/list", map[string]interface{}{}),
		req(5, "prompts/list", map[string]interface{}{}),
	})

	if len(lines) != 5 {
		t.Fatalf("expected 5 responses, got %d: %+v", len(lines), lines)
	}

	// initialize
	if lines[0].Error != nil {
		t.Fatalf("initialize failed: %+v", lines[0].Error)
	}
	var initResult struct {
		ProtocolVersion string `json:"protocolVersion"`
	}
	if err := json.Unmarshal(lines[0].Result, &initResult); err != nil {
		t.Fatalf("unmarshal initialize result: %v", err)
	}
	if initResult.ProtocolVersion == "" {
		t.Fatal("expected a non-empty protocolVersion")
	}

	// list_tools
	if lines[1].Error != nil {
		t.Fatalf("list_tools failed: %+v", lines[1].Error)
	}
	var listToolsResult struct {
		Backends map[string]struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
			Error string `json:"error"`
		} `json:"backends"`
	}
	if err := json.Unmarshal(lines[1].Result, &listToolsResult); err != nil {
		t.Fatalf("unmarshal list_tools result: %v", err)
	}
	mockTools, ok := listToolsResult.Backends["mock"]
	if !ok {
		t.Fatalf("expected backend \"mock\" in list_tools result: %+v", listToolsResult)
	}
	if mockTools.Error != "" {
		t.Fatalf("backend \"mock\" reported an error: %s", mockTools.Error)
	}
	if len(mockTools.Tools) != 1 || mockTools.Tools[0].Name != "mock__echo" {
		t.Fatalf("expected a single namespaced tool \"mock__echo\", got %+v", mockTools.Tools)
	}

	// use_tool
	if lines[2].Error != nil {
		t.Fatalf("use_tool failed: %+v", lines[2].Error)
	}
	var callResult struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(lines[2].Result, &callResult); err != nil {
		t.Fatalf("unmarshal use_tool result: %v", err)
	}
	if len(callResult.Content) == 0 || !strings.Contains(callResult.Content[0].Text, "echo:") {
		t.Fatalf("expected echoed content, got %+v", callResult)
	}

	// resources/list
	if lines[3].Error != nil {
		t.Fatalf("resources/list failed: %+v", lines[3].Error)
	}
	var resourcesResult struct {
		Resources []struct {
			URI  string `json:"uri"`
			Name string `json:"name"`
		} `json:"resources"`
	}
	if err := json.Unmarshal(lines[3].Result, &resourcesResult); err != nil {
		t.Fatalf("unmarshal resources/list result: %v", err)
	}
	if len(resourcesResult.Resources) != 1 {
		t.Fatalf("expected one resource, got %+v", resourcesResult)
	}
	if got, want := resourcesResult.Resources[0].URI, "mcpd://mock/file:///greeting.txt"; got != want {
		t.Fatalf("resource URI = %q, want %q", got, want)
	}
	if got, want := resourcesResult.Resources[0].Name, "mock__greeting"; got != want {
		t.Fatalf("resource name = %q, want %q", got, want)
	}

	// prompts/list
	if lines[4].Error != nil {
		t.Fatalf("prompts/list failed: %+v", lines[4].Error)
	}
	var promptsResult struct {
		Prompts []struct {
			Name string `json:"name"`
		} `json:"prompts"`
	}
	if err := json.Unmarshal(lines[4].Result, &promptsResult); err != nil {
		t.Fatalf("unmarshal prompts/list result: %v", err)
	}
	if len(promptsResult.Prompts) != 1 || promptsResult.Prompts[0].Name != "mock__greet" {
		t.Fatalf("expected a single namespaced prompt \"mock__greet\", got %+v", promptsResult.Prompts)
	}
}

func TestAggregatorUnknownBackendError(t *testing.T) {
	registryPath := writeRegistry(t, nil)
	agg := New(Config{RegistryPath: registryPath, Log: mcplog.For("test")})

	lines := runRequests(t, agg, []string{
		req(1, "tools/call", map[string]interface{}{
			"name": "use_tool",
			"arguments": map[string]interface{}{
				"tool_name": "ghost__tool",
				"arguments": map[string]interface{}{},
			},
		}),
	})

	if len(lines) != 1 {
		t.Fatalf("expected one response, got %d", len(lines))
	}
	if lines[0].Error == nil {
		t.Fatal("expected an error for an unknown backend")
	}
	if lines[0].Error.Code != -32001 {
		t.Fatalf("expected UnknownBackend code -32001, got %d", lines[0].Error.Code)
	}
}

func TestAggregatorRegistryChangeEmitsListChanged(t *testing.T) {
	bin := buildMockbackend(t)
	registryPath := writeRegistry(t, nil)
	agg := New(Config{RegistryPath: registryPath, Log: mcplog.For("test")})

	// First request against an empty registry: no notification expected.
	var out1 bytes.Buffer
	ctx := context.Background()
	if err := agg.Run(ctx, strings.NewReader(req(1, "tools/list", map[string]interface{}{})+"\n"), &out1); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.Contains(out1.String(), "list_changed") {
		t.Fatalf("did not expect a list_changed notification on the first request: %s", out1.String())
	}

	// Register a backend on disk, then issue a second request: this run
	// should see the change and emit the three list_changed notifications.
	reg, err := registry.Load(registryPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := reg.Add(registry.BackendEntry{Name: "mock", Command: bin}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := reg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var out2 bytes.Buffer
	if err := agg.Run(ctx, strings.NewReader(req(2, "tools/list", map[string]interface{}{})+"\n"), &out2); err != nil {
		t.Fatalf("Run: %v", err)
	}
	notified := out2.String()
	for _, method := range []string{
		"notifications/tools/list_changed",
		"notifications/resources/list_changed",
		"notifications/prompts/list_changed",
	} {
		if !strings.Contains(notified, method) {
			t.Fatalf("expected %q in output, got: %s", method, notified)
		}
	}
}
