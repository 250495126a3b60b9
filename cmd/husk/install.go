package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/huskpm/husk/internal/orchestrator"
	"github.com/huskpm/husk/internal/registry"
)

// newInstallCommand builds the "install" subcommand: the §4.9 orchestration,
// composing the reconciler, graph builder, installer, cleanup, and lock
// store against the current directory.
func newInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Materialize a complete, integrity-verified dependency tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			roots := orchestrator.Roots{
				Output: ".",
				Module: filepath.Join(".", "node_modules"),
				Cache:  filepath.Join(".", ".cache"),
			}
			orch := orchestrator.New(registry.NewDefault(), roots)
			return orch.Install(cmd.Context())
		},
	}
}
