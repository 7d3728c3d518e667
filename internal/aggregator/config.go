package aggregator

import (
	"time"

	"mcpd/internal/backend"
	"mcpd/internal/mcplog"
)

// Config holds the Aggregator's runtime configuration (spec §4.4,
// expanded per SPEC_FULL.md §4: the per-call timeout is a configurable
// field defaulting to backend.DefaultCallTimeout, plumbed from
// cmd/mcpd's --backend-timeout flag).
type Config struct {
	// RegistryPath is the on-disk location of registry.json (spec §6).
	RegistryPath string

	// BackendTimeout bounds every backend call (spec §4.3, §5).
	BackendTimeout time.Duration

	// Log is the subsystem logger for the Aggregator.
	Log mcplog.Logger

	// Name and Version identify mcpd in the initialize handshake.
	Name    string
	Version string
}

// DefaultBackendTimeout is used when Config.BackendTimeout is zero.
const DefaultBackendTimeout = backend.DefaultCallTimeout
