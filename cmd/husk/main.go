// Command husk is a minimal package manager for a registry-hosted module
// ecosystem, grounded on the teacher cosm's cobra-based CLI shape
// (renehiemstra-cosm/main.go).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/huskpm/husk/internal/huskerr"
)

const version = "0.1.0"

func main() {
	root := &cobra.Command{
		Use:           "husk",
		Short:         "A minimal package manager for a registry-hosted module ecosystem",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(newAddCommand())
	root.AddCommand(newInstallCommand())

	if err := root.Execute(); err != nil {
		kind, msg := diagnose(err)
		fmt.Fprintln(os.Stderr, msg)
		os.Exit(huskerr.ExitCode(kind))
	}
}

// diagnose formats a fatal error for stderr: kind, identifier where
// relevant, and the underlying cause, per spec.md §7. Errors cobra itself
// raises (missing/invalid arguments) carry no huskerr.Kind and still map
// to the generic fatal exit code via huskerr.ExitCode's default case.
func diagnose(err error) (huskerr.Kind, string) {
	herr, ok := err.(*huskerr.Error)
	if !ok {
		return huskerr.KindUsage, fmt.Sprintf("Error: %v", err)
	}
	if herr.Identifier != "" {
		return herr.Kind, fmt.Sprintf("Error (%s): %s: %v", herr.Kind, herr.Identifier, herr.Err)
	}
	return herr.Kind, fmt.Sprintf("Error (%s): %v", herr.Kind, herr.Err)
}
