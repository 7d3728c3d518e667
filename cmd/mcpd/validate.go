package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mcpd/internal/registry"
)

// newValidateCmd lints the on-disk registry file without starting the
// server (SPEC_FULL.md §3, grounded in vmcp's newValidateCmd): it loads
// registry.json through the same registry.Load path the Aggregator uses,
// then checks the invariants that path alone does not enforce — Load
// merely unmarshals the document, it does not re-run registry.Add's
// naming/duplicate checks on every entry.
func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the registry file for naming and path problems",
		Args:  cobra.NoArgs,
		RunE:  runValidate,
	}
}

func runValidate(cmd *cobra.Command, _ []string) error {
	path := viper.GetString("registry")

	reg, err := registry.Load(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	entries := reg.Snapshot()
	seen := make(map[string]bool, len(entries))
	var problems []string

	for _, e := range entries {
		if !registry.ValidName(e.Name) {
			problems = append(problems, fmt.Sprintf("backend %q: invalid name (empty or contains \"__\")", e.Name))
		}
		if seen[e.Name] {
			problems = append(problems, fmt.Sprintf("backend %q: duplicate name", e.Name))
		}
		seen[e.Name] = true

		if e.Command == "" {
			problems = append(problems, fmt.Sprintf("backend %q: empty command", e.Name))
		} else if !filepath.IsAbs(e.Command) {
			problems = append(problems, fmt.Sprintf("backend %q: command %q is not an absolute path", e.Name, e.Command))
		}
	}

	out := cmd.OutOrStdout()
	if len(problems) == 0 {
		fmt.Fprintf(out, "%s: %d backend(s), no problems found\n", path, len(entries))
		return nil
	}

	fmt.Fprintf(out, "%s: %d problem(s) found\n", path, len(problems))
	for _, p := range problems {
		fmt.Fprintf(out, "  - %s\n", p)
	}
	return fmt.Errorf("%d problem(s) in %s", len(problems), path)
}
