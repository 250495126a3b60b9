// Package orchestrator implements C10: the install use case composing the
// reconciler, graph builder, installer, cleanup, and lock store, per
// spec.md §4.9. Grounded on the teacher's commands/add.go
// read-validate-mutate-write sequencing style, generalized to the longer
// install sequence.
package orchestrator

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"github.com/huskpm/husk/internal/cache"
	"github.com/huskpm/husk/internal/graph"
	"github.com/huskpm/husk/internal/huskerr"
	"github.com/huskpm/husk/internal/installer"
	"github.com/huskpm/husk/internal/lock"
	"github.com/huskpm/husk/internal/manifest"
	"github.com/huskpm/husk/internal/reconcile"
	"github.com/huskpm/husk/internal/registry"
	"github.com/huskpm/husk/internal/resolver"
)

// Roots names the three filesystem roots the orchestrator operates under,
// per spec.md §6's filesystem layout.
type Roots struct {
	Output string // directory containing package.json / package-lock.json
	Module string // node_modules
	Cache  string // .cache
}

// Orchestrator runs the install use case against a registry client and a
// set of filesystem roots.
type Orchestrator struct {
	client *registry.Client
	roots  Roots
}

// New constructs an Orchestrator.
func New(client *registry.Client, roots Roots) *Orchestrator {
	return &Orchestrator{client: client, roots: roots}
}

// Install runs spec.md §4.9's full sequence.
func (o *Orchestrator) Install(ctx context.Context) error {
	if err := o.ensureRoots(); err != nil {
		return err
	}

	m, err := manifest.Read(o.roots.Output)
	if err != nil {
		return err
	}

	content, err := cache.NewContentCache(o.roots.Cache)
	if err != nil {
		return huskerr.New(huskerr.KindFilesystem, err)
	}
	in := installer.New(o.client, content, o.roots.Module)

	locked, ok, err := lock.Read(o.roots.Output)
	if err != nil {
		return huskerr.New(huskerr.KindFilesystem, err)
	}

	if ok && !reconcile.Changed(m.Dependencies, locked) {
		if err := in.InstallAll(ctx, locked); err != nil {
			return err
		}
		if err := installer.Cleanup(o.roots.Module, locked); err != nil {
			return huskerr.New(huskerr.KindFilesystem, err)
		}
		return nil
	}

	caches, err := cache.NewMetadataCaches()
	if err != nil {
		return huskerr.New(huskerr.KindFilesystem, err)
	}
	res := resolver.New(o.client, caches)
	builder := graph.NewBuilder(o.client, caches, res)

	g, err := builder.BuildManifest(ctx, m.Dependencies)
	if err != nil {
		return err
	}
	if err := g.ValidateClosure(); err != nil {
		return huskerr.New(huskerr.KindFilesystem, err)
	}

	if err := in.InstallAll(ctx, g); err != nil {
		return err
	}
	if err := installer.Cleanup(o.roots.Module, g); err != nil {
		return huskerr.New(huskerr.KindFilesystem, err)
	}
	if err := lock.Write(o.roots.Output, g); err != nil {
		return huskerr.New(huskerr.KindFilesystem, err)
	}

	return nil
}

func (o *Orchestrator) ensureRoots() error {
	for _, dir := range []string{o.roots.Output, o.roots.Module, o.roots.Cache} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return huskerr.New(huskerr.KindFilesystem, errors.Wrapf(err, "failed to create directory %s", dir))
		}
	}
	return nil
}
