package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcpd/internal/mcperr"
)

func TestLoad_MissingFileYieldsEmptyRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")

	reg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, reg.Snapshot())
}

func TestLoad_MalformedFileFailsWithConfigError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	var cfgErr *mcperr.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, path, cfgErr.Path)
}

func TestAdd_RejectsDuplicateAndInvalidNames(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "registry.json"))

	require.NoError(t, r.Add(BackendEntry{Name: "fs", Command: "/usr/bin/echo-mcp"}))

	err := r.Add(BackendEntry{Name: "fs", Command: "/usr/bin/other"})
	var dupErr *mcperr.DuplicateNameError
	require.ErrorAs(t, err, &dupErr)

	err = r.Add(BackendEntry{Name: "bad__name", Command: "/usr/bin/x"})
	var invalidErr *mcperr.InvalidNameError
	require.ErrorAs(t, err, &invalidErr)
}

func TestRemove_UnknownNameFails(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "registry.json"))

	err := r.Remove("ghost")
	var unknownErr *mcperr.UnknownNameError
	require.ErrorAs(t, err, &unknownErr)
}

func TestSaveThenLoad_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "registry.json")
	r := New(path)

	entry := BackendEntry{
		Name:    "fs",
		Command: "/usr/bin/echo-mcp",
		Args:    []string{"--stdio"},
		Env:     map[string]string{"FOO": "bar"},
	}
	require.NoError(t, r.Add(entry))
	require.NoError(t, r.Save())

	reloaded, err := Load(path)
	require.NoError(t, err)
	got := reloaded.Snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, entry, got[0])
}

func TestSnapshot_PreservesInsertionOrder(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "registry.json"))
	names := []string{"c", "a", "b"}
	for _, n := range names {
		require.NoError(t, r.Add(BackendEntry{Name: n, Command: "/bin/" + n}))
	}

	got := r.Snapshot()
	require.Len(t, got, len(names))
	for i, n := range names {
		assert.Equal(t, n, got[i].Name)
	}
}

func TestValidName(t *testing.T) {
	tests := map[string]bool{
		"fs":       true,
		"":         false,
		"fs__tool": false,
	}
	for name, want := range tests {
		assert.Equal(t, want, ValidName(name), "ValidName(%q)", name)
	}
}
