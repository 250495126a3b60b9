// Package resolver implements C3: resolving a (name, range-or-tag) pair to
// an exact registry version. The teacher's commands/utils-semver.go
// compares exactly two versions by hand (MaxSemVer); this module
// generalizes that into full semver-range satisfaction over an arbitrary
// version set via Masterminds/semver/v3.
package resolver

import (
	"context"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"

	"github.com/huskpm/husk/internal/cache"
	"github.com/huskpm/husk/internal/huskerr"
	"github.com/huskpm/husk/internal/registry"
)

// LatestTag is the literal dist-tag string spec.md §4.3 special-cases.
const LatestTag = "latest"

// Resolver resolves ranges against a registry client, memoizing results
// in the shared metadata caches.
type Resolver struct {
	client *registry.Client
	caches *cache.MetadataCaches
}

// New constructs a Resolver.
func New(client *registry.Client, caches *cache.MetadataCaches) *Resolver {
	return &Resolver{client: client, caches: caches}
}

// Resolve returns the greatest registry version of name satisfying
// rangeOrTag, per spec.md §4.3. "latest" resolves via dist-tags.latest
// verbatim, without any semver parsing.
func (r *Resolver) Resolve(ctx context.Context, name, rangeOrTag string) (string, error) {
	if v, ok := r.caches.GetVersion(name, rangeOrTag); ok {
		return v, nil
	}

	doc, err := r.client.Packument(ctx, name)
	if err != nil {
		return "", err
	}

	var resolved string
	if rangeOrTag == LatestTag {
		resolved = doc.DistTags[LatestTag]
		if resolved == "" {
			return "", huskerr.New(huskerr.KindResolution, errors.Errorf("package %q has no %q dist-tag", name, LatestTag))
		}
	} else {
		resolved, err = maxSatisfying(doc, rangeOrTag)
		if err != nil {
			return "", huskerr.New(huskerr.KindResolution, errors.Wrapf(err, "no version of %q satisfies %q", name, rangeOrTag))
		}
	}

	r.caches.PutVersion(name, rangeOrTag, resolved)
	return resolved, nil
}

// maxSatisfying selects the greatest version in doc.Versions satisfying
// rangeStr. Prerelease versions are excluded unless rangeStr itself names
// a prerelease, matching Masterminds/semver/v3's own "greatest satisfying"
// rule (semver.Constraints.Check already implements this exclusion).
func maxSatisfying(doc *registry.Packument, rangeStr string) (string, error) {
	constraint, err := semver.NewConstraint(rangeStr)
	if err != nil {
		return "", errors.Wrapf(err, "invalid version range %q", rangeStr)
	}

	var candidates []*semver.Version
	for raw := range doc.Versions {
		v, err := semver.NewVersion(raw)
		if err != nil {
			continue // skip unparseable published versions rather than aborting resolution
		}
		if constraint.Check(v) {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return "", errors.Errorf("no published version satisfies range %q", rangeStr)
	}

	sort.Sort(semver.Collection(candidates))
	return candidates[len(candidates)-1].Original(), nil
}
