// Package installer implements C8 (the post-order walk that materializes
// a DependencyGraph on disk) and C9 (cleanup of orphaned top-level
// entries). Grounded on the teacher's commands/utils-fs.go directory
// primitives and commands/utils-git.go's subprocess-invocation pattern,
// generalized to tar/gzip extraction in-process (see extract.go).
package installer

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/huskpm/husk/internal/cache"
	"github.com/huskpm/husk/internal/graph"
	"github.com/huskpm/husk/internal/huskerr"
	"github.com/huskpm/husk/internal/identifier"
	"github.com/huskpm/husk/internal/registry"
)

// Installer walks a DependencyGraph and materializes it under moduleRoot,
// using cacheRoot as the on-disk tarball store.
type Installer struct {
	client     *registry.Client
	content    *cache.ContentCache
	moduleRoot string

	installed map[string]bool
}

// New constructs an Installer. moduleRoot is the package directory (e.g.
// "node_modules") and content is the tarball cache (C5).
func New(client *registry.Client, content *cache.ContentCache, moduleRoot string) *Installer {
	return &Installer{
		client:     client,
		content:    content,
		moduleRoot: moduleRoot,
		installed:  make(map[string]bool),
	}
}

// InstallAll walks every node in g to completion, post-order per
// identifier, per spec.md §4.7. Iteration order over the graph's top
// level is unspecified; the post-order recursion within install guarantees
// a package is extracted only after its dependencies.
func (in *Installer) InstallAll(ctx context.Context, g graph.Graph) error {
	for id := range g {
		if err := in.install(ctx, id, g); err != nil {
			return err
		}
	}
	return nil
}

// install implements spec.md §4.7 steps 1-8 for a single identifier.
func (in *Installer) install(ctx context.Context, id string, g graph.Graph) error {
	if in.installed[id] {
		return nil
	}

	node, ok := g[id]
	if !ok {
		return huskerr.NewFor(huskerr.KindFilesystem, id, errors.New("identifier missing from graph during install"))
	}

	// Mark visited before recursing into children, the same reserve-
	// before-recurse technique graph.Builder.build uses for the identical
	// cycle (A -> B -> A is a graph C4 legitimately produces, per
	// graph/builder_test.go's TestBuildCycleTerminates): without this, a
	// cyclic graph recurses forever instead of the "install succeeds"
	// spec.md §8 requires.
	in.installed[id] = true

	for _, childID := range node.Dependencies {
		if err := in.install(ctx, childID, g); err != nil {
			return err
		}
	}

	name, version, err := identifier.Parse(id)
	if err != nil {
		return huskerr.NewFor(huskerr.KindFilesystem, id, err)
	}

	dir, err := in.prepareDirectory(name)
	if err != nil {
		return huskerr.NewFor(huskerr.KindFilesystem, id, err)
	}

	data, cached, err := in.acquireTarball(ctx, id, name, version, node.TarballURL)
	if err != nil {
		return err
	}

	ok2, err := verifyIntegrity(data, node.Integrity)
	if err != nil {
		return huskerr.NewFor(huskerr.KindIntegrity, id, err)
	}
	if !ok2 {
		if cached {
			_ = in.content.Delete(name, version)
		}
		return huskerr.NewFor(huskerr.KindIntegrity, id, errors.New("tarball does not match recorded integrity hash"))
	}

	if !cached {
		if err := in.content.Write(name, version, data); err != nil {
			return huskerr.NewFor(huskerr.KindFilesystem, id, err)
		}
	}

	if err := extractTarball(data, dir); err != nil {
		return err
	}

	return nil
}

// prepareDirectory computes and creates the destination directory for
// name, per spec.md §4.7 step 3 / §3 invariant 6 (flat layout).
func (in *Installer) prepareDirectory(name string) (string, error) {
	var dir string
	if identifier.IsScoped(name) {
		scope, base := identifier.ScopeAndBase(name)
		dir = filepath.Join(in.moduleRoot, scope, base)
	} else {
		dir = filepath.Join(in.moduleRoot, name)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "failed to create package directory %s", dir)
	}
	return dir, nil
}

// acquireTarball reads from the content cache, falling back to a network
// fetch, per spec.md §4.7 step 4. The two failure sources are tagged with
// distinct huskerr.Kinds here, at the source, rather than by the caller:
// a cache read failure (e.g. permission denied) is a filesystem error, not
// a transport error, even though both feed the same data into the install
// step that follows.
func (in *Installer) acquireTarball(ctx context.Context, id, name, version, tarballURL string) (data []byte, cached bool, err error) {
	data, ok, err := in.content.Read(name, version)
	if err != nil {
		return nil, false, huskerr.NewFor(huskerr.KindFilesystem, id, err)
	}
	if ok {
		return data, true, nil
	}
	data, err = in.client.FetchTarball(ctx, tarballURL)
	if err != nil {
		return nil, false, huskerr.NewFor(huskerr.KindTransport, id, err)
	}
	return data, false, nil
}
