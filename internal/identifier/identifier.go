// Package identifier implements the package-name and package-identifier
// grammar: bare names, scoped names, and the name@exactVersion pairing that
// keys the dependency graph and lock file.
package identifier

import (
	"strings"

	"github.com/pkg/errors"
)

// Join builds a package identifier from a name and an exact version.
func Join(name, exactVersion string) string {
	return name + "@" + exactVersion
}

// Parse splits a package identifier into name and exact version, locating
// the last '@' so that scoped names (@scope/name@1.2.3) remain unambiguous.
func Parse(id string) (name, exactVersion string, err error) {
	idx := strings.LastIndex(id, "@")
	if idx <= 0 {
		return "", "", errors.Errorf("invalid package identifier %q: missing name@version separator", id)
	}
	name = id[:idx]
	exactVersion = id[idx+1:]
	if name == "" || exactVersion == "" {
		return "", "", errors.Errorf("invalid package identifier %q: empty name or version", id)
	}
	return name, exactVersion, nil
}

// IsScoped reports whether a package name has the @scope/name form.
func IsScoped(name string) bool {
	return strings.HasPrefix(name, "@") && strings.Contains(name, "/")
}

// ScopeAndBase splits a scoped name into its scope directory ("@scope")
// and base name ("name") at the first '/'. It panics if name contains no
// '/'; callers must check IsScoped first.
func ScopeAndBase(name string) (scope, base string) {
	idx := strings.Index(name, "/")
	return name[:idx], name[idx+1:]
}

// CacheFilename returns the flat filename used for the on-disk content
// cache: slashes in scoped names are flattened to dashes, per spec.
func CacheFilename(name, exactVersion string) string {
	flat := strings.ReplaceAll(name, "/", "-")
	return flat + "-" + exactVersion + ".tgz"
}
