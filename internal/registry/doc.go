// Package registry is mcpd's on-disk backend catalogue, grounded on
// giantswarm-muster's internal/config (loader.go's read-file-or-default
// pattern, errors.go's typed configuration errors) adapted from YAML
// service definitions to the JSON BackendEntry shape spec §6 defines.
//
// It is the single source of truth for which backends exist, re-read from
// disk at the start of every request so that edits made by the external
// register/unregister CLI take effect without IPC (spec §9).
package registry
