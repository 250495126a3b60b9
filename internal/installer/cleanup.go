package installer

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/huskpm/husk/internal/graph"
	"github.com/huskpm/husk/internal/identifier"
)

// Cleanup implements C9: removing top-level entries under moduleRoot not
// present in the final graph's expected set, per spec.md §4.8. This
// handles the "dropped transitive" case, e.g. upgrading semver@7.5.2 to
// 7.6.2 drops the now-orphaned yallist directory.
func Cleanup(moduleRoot string, g graph.Graph) error {
	expected := expectedTopLevelEntries(g)

	entries, err := os.ReadDir(moduleRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "failed to list %s", moduleRoot)
	}

	for _, entry := range entries {
		if expected[entry.Name()] {
			continue
		}
		path := filepath.Join(moduleRoot, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return errors.Wrapf(err, "failed to remove orphaned entry %s", path)
		}
	}
	return nil
}

// expectedTopLevelEntries computes, for every identifier in g, its name's
// first path component (the scope directory for scoped names, or the
// whole name otherwise), and, for scoped names, also the full "@scope/name"
// string, per spec.md §4.8 verbatim. The full scoped string can never
// actually match an os.ReadDir entry name (directory entries never embed
// a path separator), so it is a harmless no-op addition kept for literal
// fidelity with the spec's expected-set construction.
func expectedTopLevelEntries(g graph.Graph) map[string]bool {
	expected := make(map[string]bool)
	for id := range g {
		name, _, err := identifier.Parse(id)
		if err != nil {
			continue
		}
		if identifier.IsScoped(name) {
			scope, _ := identifier.ScopeAndBase(name)
			expected[scope] = true
			expected[name] = true
		} else {
			expected[name] = true
		}
	}
	return expected
}
