// Package reconcile implements C7: deciding whether a manifest's direct
// dependencies are still satisfied by a locked graph, per spec.md §4.6.
// No close teacher analogue exists for this step (cosm has no
// lock-vs-manifest reconciliation), so it is built fresh in the codebase's
// error-handling idiom.
package reconcile

import (
	"github.com/Masterminds/semver/v3"

	"github.com/huskpm/husk/internal/graph"
)

// Changed reports whether the manifest's direct dependencies (name ->
// range) are no longer satisfied by the locked graph's direct surface,
// per spec.md §4.6 steps 1-4. Transitive nodes are never revalidated
// against the registry — this is the accepted "rebuild everything on any
// direct change" simplification from spec.md §4.6 and §9.
func Changed(manifestDeps map[string]string, locked graph.Graph) bool {
	direct := locked.DirectNames() // name -> exactVersion

	for name, rangeOrTag := range manifestDeps {
		exactVersion, ok := direct[name]
		if !ok {
			return true
		}
		if !satisfies(exactVersion, rangeOrTag) {
			return true
		}
	}

	for name := range direct {
		if _, ok := manifestDeps[name]; !ok {
			return true
		}
	}

	return false
}

func satisfies(exactVersion, rangeOrTag string) bool {
	if rangeOrTag == "latest" {
		// "latest" always requires re-resolution against the registry to
		// know what the current dist-tag points to; a locked version can
		// never be trusted to still be "latest" without a network round
		// trip, so treat it as unsatisfied and let the rebuild happen.
		return false
	}
	constraint, err := semver.NewConstraint(rangeOrTag)
	if err != nil {
		return false
	}
	v, err := semver.NewVersion(exactVersion)
	if err != nil {
		return false
	}
	return constraint.Check(v)
}
