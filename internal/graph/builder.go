package graph

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/huskpm/husk/internal/cache"
	"github.com/huskpm/husk/internal/identifier"
	"github.com/huskpm/husk/internal/registry"
	"github.com/huskpm/husk/internal/resolver"
)

// Builder runs the DFS closure of spec.md §4.4 against a registry client,
// memoizing metadata through the shared caches.
type Builder struct {
	client   *registry.Client
	caches   *cache.MetadataCaches
	resolver *resolver.Resolver

	mu sync.Mutex
}

// NewBuilder constructs a Builder.
func NewBuilder(client *registry.Client, caches *cache.MetadataCaches, res *resolver.Resolver) *Builder {
	return &Builder{client: client, caches: caches, resolver: res}
}

// BuildManifest resolves each (name, range) in deps via the resolver, then
// builds each as a direct dependency into a fresh Graph, per spec.md
// §4.4's "top-level entry from the orchestrator".
func (b *Builder) BuildManifest(ctx context.Context, deps map[string]string) (Graph, error) {
	g := New()
	for name, rangeOrTag := range deps {
		exactVersion, err := b.resolver.Resolve(ctx, name, rangeOrTag)
		if err != nil {
			return nil, err
		}
		if err := b.build(ctx, name, exactVersion, true, g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// build implements spec.md §4.4 steps 1-5.
func (b *Builder) build(ctx context.Context, name, exactVersion string, direct bool, g Graph) error {
	id := identifier.Join(name, exactVersion)

	b.mu.Lock()
	if existing, ok := g[id]; ok {
		existing.MergeDirect(direct)
		b.mu.Unlock()
		return nil
	}
	// Reserve the slot before releasing the lock so that a cycle reaching
	// back to id (A -> B -> A) short-circuits on the line above instead of
	// recursing forever, per spec.md §4.4's cycle-handling note.
	node := &Node{IsDirectDependency: direct}
	g[id] = node
	b.mu.Unlock()

	meta, err := b.fetchMetadata(ctx, name, exactVersion, id)
	if err != nil {
		b.mu.Lock()
		delete(g, id)
		b.mu.Unlock()
		return err
	}

	childIDs, err := b.resolveChildIDs(ctx, meta.Dependencies)
	if err != nil {
		b.mu.Lock()
		delete(g, id)
		b.mu.Unlock()
		return err
	}

	b.mu.Lock()
	node.Version = meta.Version
	node.TarballURL = meta.TarballURL
	node.Integrity = meta.Integrity
	node.Dependencies = childIDs
	b.mu.Unlock()

	for _, childID := range childIDs {
		childName, childVersion, err := identifier.Parse(childID)
		if err != nil {
			return err
		}
		if err := b.build(ctx, childName, childVersion, false, g); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) fetchMetadata(ctx context.Context, name, exactVersion, id string) (*registry.PackageMetadata, error) {
	if meta, ok := b.caches.GetMetadata(id); ok {
		return meta, nil
	}
	meta, err := b.client.VersionMetadata(ctx, name, exactVersion)
	if err != nil {
		return nil, err
	}
	b.caches.PutMetadata(id, meta)
	return meta, nil
}

// resolveChildIDs resolves each declared (childName, childRange) pair to
// an exact child package identifier. Resolutions for distinct children
// proceed concurrently in an errgroup, one goroutine per child; a single cache miss
// serializes only that child's resolution, per spec.md §4.4 step 3 and
// §5's note that metadata fetches during graph construction may be
// parallelized.
func (b *Builder) resolveChildIDs(ctx context.Context, deps map[string]string) ([]string, error) {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}

	ids := make([]string, len(names))
	grp, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name, rangeStr := i, name, deps[name]
		grp.Go(func() error {
			version, err := b.resolver.Resolve(gctx, name, rangeStr)
			if err != nil {
				return err
			}
			ids[i] = identifier.Join(name, version)
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}
