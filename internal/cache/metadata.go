// Package cache implements C2 (the two in-memory LRU metadata caches) and
// C5 (the on-disk tarball content cache), grounded on
// Keyhole-Koro-InsightifyCore's use of hashicorp/golang-lru/v2 for the
// former and the teacher's copyFile-via-temp-file pattern for the latter.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/huskpm/husk/internal/diag"
	"github.com/huskpm/husk/internal/registry"
)

// DefaultCapacity bounds each metadata cache, per spec.md §2 C2 / §4.2.
const DefaultCapacity = 500

// versionKey joins name and rangeOrTag with a NUL separator so names
// containing '@' (scoped names) can never collide with the separator.
func versionKey(name, rangeOrTag string) string {
	return name + "\x00" + rangeOrTag
}

// MetadataCaches bundles the two caches the orchestrator constructs once
// per run and threads through the resolver and graph builder.
type MetadataCaches struct {
	versions *lru.Cache[string, string]
	metadata *lru.Cache[string, *registry.PackageMetadata]
}

// NewMetadataCaches builds both caches at DefaultCapacity.
func NewMetadataCaches() (*MetadataCaches, error) {
	versions, err := lru.New[string, string](DefaultCapacity)
	if err != nil {
		return nil, err
	}
	metadata, err := lru.New[string, *registry.PackageMetadata](DefaultCapacity)
	if err != nil {
		return nil, err
	}
	return &MetadataCaches{versions: versions, metadata: metadata}, nil
}

// GetVersion looks up a memoized (name, rangeOrTag) -> exactVersion resolution.
func (c *MetadataCaches) GetVersion(name, rangeOrTag string) (string, bool) {
	v, ok := c.versions.Get(versionKey(name, rangeOrTag))
	if ok {
		diag.CacheHit("version", versionKey(name, rangeOrTag))
	} else {
		diag.CacheMiss("version", versionKey(name, rangeOrTag))
	}
	return v, ok
}

// PutVersion memoizes a (name, rangeOrTag) -> exactVersion resolution.
func (c *MetadataCaches) PutVersion(name, rangeOrTag, exactVersion string) {
	c.versions.Add(versionKey(name, rangeOrTag), exactVersion)
}

// GetMetadata looks up a memoized (name, exactVersion) -> PackageMetadata.
func (c *MetadataCaches) GetMetadata(id string) (*registry.PackageMetadata, bool) {
	v, ok := c.metadata.Get(id)
	if ok {
		diag.CacheHit("metadata", id)
	} else {
		diag.CacheMiss("metadata", id)
	}
	return v, ok
}

// PutMetadata memoizes a (name, exactVersion) -> PackageMetadata.
func (c *MetadataCaches) PutMetadata(id string, meta *registry.PackageMetadata) {
	c.metadata.Add(id, meta)
}
