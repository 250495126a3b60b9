package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/huskpm/husk/internal/huskerr"
	"github.com/huskpm/husk/internal/manifest"
)

// newAddCommand builds the "add" subcommand, grounded on the teacher's
// commands/add.go (parseAddArgs, updateProjectWithDependency) generalized
// from cosm's required "v" version-tag prefix to the spec's looser
// name[@rangeOrTag] grammar (spec.md §6).
func newAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name[@rangeOrTag]>",
		Short: "Record a new dependency declaration in package.json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, rangeOrTag, err := parseAddArg(args[0])
			if err != nil {
				return huskerr.New(huskerr.KindUsage, err)
			}

			m, err := manifest.Read(".")
			if err != nil {
				if herr, ok := err.(*huskerr.Error); ok && herr.Kind == huskerr.KindManifestMissing {
					m = &manifest.Manifest{Dependencies: map[string]string{}}
				} else {
					return err
				}
			}

			m.Dependencies[name] = rangeOrTag
			if err := manifest.Write(".", m); err != nil {
				return huskerr.New(huskerr.KindFilesystem, err)
			}

			fmt.Printf("Added dependency '%s' %s to %s\n", name, rangeOrTag, manifest.FileName)
			return nil
		},
	}
}

// parseAddArg parses "name" or "name@rangeOrTag", locating the last '@'
// at an index greater than 0 so leading-'@' scope names remain intact,
// per spec.md §6. Range defaults to "latest" when absent.
func parseAddArg(spec string) (name, rangeOrTag string, err error) {
	idx := strings.LastIndex(spec, "@")
	if idx <= 0 {
		return spec, "latest", nil
	}
	name = spec[:idx]
	rangeOrTag = spec[idx+1:]
	if name == "" || rangeOrTag == "" {
		return "", "", fmt.Errorf("invalid dependency spec %q", spec)
	}
	return name, rangeOrTag, nil
}
