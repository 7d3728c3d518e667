package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes for the mcpd CLI.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (bad flags, registry load
	// failure, a serve loop that returned an error).
	ExitCodeError = 1
)

// rootCmd is the base command for mcpd. It has no Run of its own: the
// daemon only does something useful under a subcommand.
var rootCmd = &cobra.Command{
	Use:   "mcpd",
	Short: "Aggregate multiple MCP backends behind a single MCP server",
	Long: `mcpd is an MCP aggregator daemon. It reads a registry of backend MCP
servers from disk, spawns them on demand, and exposes their tools,
resources, and prompts to a single parent-facing MCP client over its own
standard streams, namespaced as <backend>__<name>.`,
	SilenceUsage: true,
}

// SetVersion sets the version reported by `mcpd version` and `--version`.
// Called from main with the build-time-injected version string.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the version previously set with SetVersion.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command, translating a returned error into an
// os.Exit call. This is main's only job after SetVersion.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcpd version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitCodeError)
	}
}

// registryFlagDefault resolves the default registry path (spec §6:
// "<user-config-dir>/mcpd/registry.json"), matching the teacher's
// config.GetDefaultConfigPathOrPanic pattern of deriving a default from
// os.UserConfigDir rather than hardcoding a path.
func registryFlagDefault() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "registry.json"
	}
	return filepath.Join(dir, "mcpd", "registry.json")
}

func init() {
	rootCmd.PersistentFlags().String("registry", registryFlagDefault(), "path to the backend registry file")
	rootCmd.PersistentFlags().String("log-level", "info", "log verbosity: debug, info, warn, error")
	_ = viper.BindPFlag("registry", rootCmd.PersistentFlags().Lookup("registry"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newValidateCmd())
}
