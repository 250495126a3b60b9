package cache

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/huskpm/husk/internal/diag"
	"github.com/huskpm/husk/internal/identifier"
)

// ContentCache is the flat on-disk store of verified tarballs, keyed by
// filename, described in spec.md §4.5.
type ContentCache struct {
	root string
}

// NewContentCache constructs a ContentCache rooted at root, creating the
// directory if absent.
func NewContentCache(root string) (*ContentCache, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create content cache directory %s", root)
	}
	return &ContentCache{root: root}, nil
}

// Path returns the on-disk path for name@exactVersion's tarball.
func (c *ContentCache) Path(name, exactVersion string) string {
	return filepath.Join(c.root, identifier.CacheFilename(name, exactVersion))
}

// Read returns the cached tarball bytes for name@exactVersion, or ok=false
// if absent.
func (c *ContentCache) Read(name, exactVersion string) (data []byte, ok bool, err error) {
	path := c.Path(name, exactVersion)
	data, err = os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "failed to read cached tarball %s", path)
	}
	return data, true, nil
}

// Write persists data under name@exactVersion's cache path. It writes to a
// randomly named temp file in the same directory first, then renames into
// place, so a reader can never observe a partially written cache entry
// (spec.md §4.5, §7).
func (c *ContentCache) Write(name, exactVersion string, data []byte) error {
	finalPath := c.Path(name, exactVersion)
	tmpPath := filepath.Join(c.root, ".tmp-"+uuid.NewString())

	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write temp cache file %s", tmpPath)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(err, "failed to finalize cache file %s", finalPath)
	}
	diag.Wrote(finalPath, len(data))
	return nil
}

// Delete removes a cache entry, e.g. after an integrity mismatch on a
// cached read (spec.md §4.7 step 5, §7's self-healing cache).
func (c *ContentCache) Delete(name, exactVersion string) error {
	path := c.Path(name, exactVersion)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to delete corrupt cache file %s", path)
	}
	return nil
}
