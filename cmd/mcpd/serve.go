package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mcpd/internal/aggregator"
	"mcpd/internal/mcplog"
)

// serveBackendTimeout is bound to --backend-timeout (SPEC_FULL.md §4: a
// configurable field defaulting to backend.DefaultCallTimeout, layered
// over the registry/log-level persistent flags the way vmcp serve layers
// --host/--port over its own structural config).
var serveBackendTimeout time.Duration

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP aggregator on stdin/stdout",
		Long: `serve starts the Aggregator: it speaks MCP on its own standard streams,
re-reading the registry file on every request and proxying tools,
resources, and prompts to whichever backends it names.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	cmd.Flags().DurationVar(&serveBackendTimeout, "backend-timeout", aggregator.DefaultBackendTimeout,
		"per-call timeout for backend requests")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	mcplog.Init(mcplog.ParseLevel(viper.GetString("log-level")), os.Stderr)
	log := mcplog.For("cmd")

	registryPath := viper.GetString("registry")
	log.Infof("starting mcpd %s (registry=%s, backend-timeout=%s)", GetVersion(), registryPath, serveBackendTimeout)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	agg := aggregator.New(aggregator.Config{
		RegistryPath:   registryPath,
		BackendTimeout: serveBackendTimeout,
		Log:            mcplog.For("aggregator"),
		Name:           "mcpd",
		Version:        GetVersion(),
	})

	err := agg.Run(ctx, os.Stdin, os.Stdout)
	log.Infof("shutting down")
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
