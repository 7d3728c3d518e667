package registry

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio"

	"mcpd/internal/mcperr"
)

// Registry is the ordered, on-disk backend catalogue (spec §3). Order is
// insertion order; names are unique. There is no in-process mutation API
// exposed to the Aggregator — it only ever calls Load.
type Registry struct {
	mu      sync.RWMutex
	path    string
	entries []BackendEntry
}

// New returns an empty Registry bound to path, for use by the external
// register/unregister CLI (spec §1 names this collaborator, not a core
// responsibility, but Add/Remove/Save live here since they operate on the
// same on-disk format Load reads).
func New(path string) *Registry {
	return &Registry{path: path}
}

// Path returns the on-disk location this Registry was loaded from or will
// save to.
func (r *Registry) Path() string {
	return r.path
}

// Load reads the JSON document at path. A missing file is not an error —
// it yields an empty Registry (spec §4.2: "If missing, return an empty
// registry"). A malformed file fails with *mcperr.ConfigError naming path.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Registry{path: path}, nil
	}
	if err != nil {
		return nil, &mcperr.ConfigError{Path: path, Err: err}
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &mcperr.ConfigError{Path: path, Err: err}
	}

	return &Registry{path: path, entries: doc.Servers}, nil
}

// Snapshot returns the current entries in registry order. The returned
// slice is owned by the caller (spec §3: BackendSnapshot is immutable and
// dropped at the end of the request).
func (r *Registry) Snapshot() []BackendEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]BackendEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Lookup returns the entry named name, if present.
func (r *Registry) Lookup(name string) (BackendEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if e.Name == name {
			return e, true
		}
	}
	return BackendEntry{}, false
}

// Add appends entry, failing with *mcperr.DuplicateNameError if the name is
// already present and *mcperr.InvalidNameError if it violates the naming
// rule (spec §4.2). It does not persist to disk; call Save afterward.
func (r *Registry) Add(entry BackendEntry) error {
	if !ValidName(entry.Name) {
		return &mcperr.InvalidNameError{Name: entry.Name, Reason: `must be non-empty and must not contain "__"`}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.Name == entry.Name {
			return &mcperr.DuplicateNameError{Name: entry.Name}
		}
	}
	r.entries = append(r.entries, entry)
	return nil
}

// Remove deletes the entry named name, failing with *mcperr.UnknownNameError
// if absent. It does not persist to disk; call Save afterward.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.Name == name {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return nil
		}
	}
	return &mcperr.UnknownNameError{Name: name}
}

// Save atomically writes the Registry to its path (write-to-temp + rename,
// spec §4.2), using renameio so a crash mid-write cannot corrupt the file.
func (r *Registry) Save() error {
	r.mu.RLock()
	doc := document{Servers: r.entries}
	r.mu.RUnlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &mcperr.ConfigError{Path: r.path, Err: err}
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return &mcperr.ConfigError{Path: r.path, Err: err}
	}
	if err := renameio.WriteFile(r.path, data, 0o644); err != nil {
		return &mcperr.ConfigError{Path: r.path, Err: err}
	}
	return nil
}
