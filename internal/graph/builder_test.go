package graph

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/huskpm/husk/internal/cache"
	"github.com/huskpm/husk/internal/registry"
	"github.com/huskpm/husk/internal/resolver"
)

// fakeRegistry serves packuments and version metadata from in-memory
// fixtures, keyed by "name" and "name@version".
type fakeRegistry struct {
	packuments map[string]string
	versions   map[string]string
}

func (f *fakeRegistry) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path[1:]
		if body, ok := f.versions[path]; ok {
			w.Write([]byte(body))
			return
		}
		if body, ok := f.packuments[path]; ok {
			w.Write([]byte(body))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}
}

func newBuilder(t *testing.T, fr *fakeRegistry) *Builder {
	srv := httptest.NewServer(fr.handler())
	t.Cleanup(srv.Close)
	client := registry.New(srv.URL)
	caches, err := cache.NewMetadataCaches()
	require.NoError(t, err)
	res := resolver.New(client, caches)
	return NewBuilder(client, caches, res)
}

func TestBuildSingleLeaf(t *testing.T) {
	fr := &fakeRegistry{
		packuments: map[string]string{
			"is-thirteen": `{"dist-tags":{"latest":"2.0.0"},"versions":{"2.0.0":{}}}`,
		},
		versions: map[string]string{
			"is-thirteen/2.0.0": `{"version":"2.0.0","dist":{"tarball":"https://x/is-thirteen-2.0.0.tgz","integrity":"sha512-a"},"dependencies":{}}`,
		},
	}
	b := newBuilder(t, fr)

	g, err := b.BuildManifest(context.Background(), map[string]string{"is-thirteen": "^2.0.0"})
	require.NoError(t, err)
	require.Len(t, g, 1)

	node := g["is-thirteen@2.0.0"]
	require.NotNil(t, node)
	require.True(t, node.IsDirectDependency)
	require.Empty(t, node.Dependencies)
	require.NoError(t, g.ValidateClosure())
}

func TestBuildCycleTerminates(t *testing.T) {
	fr := &fakeRegistry{
		packuments: map[string]string{
			"a": `{"dist-tags":{"latest":"1.0.0"},"versions":{"1.0.0":{}}}`,
			"b": `{"dist-tags":{"latest":"1.0.0"},"versions":{"1.0.0":{}}}`,
		},
		versions: map[string]string{
			"a/1.0.0": `{"version":"1.0.0","dist":{"tarball":"https://x/a.tgz","integrity":"sha512-a"},"dependencies":{"b":"^1.0.0"}}`,
			"b/1.0.0": `{"version":"1.0.0","dist":{"tarball":"https://x/b.tgz","integrity":"sha512-b"},"dependencies":{"a":"^1.0.0"}}`,
		},
	}
	b := newBuilder(t, fr)

	g, err := b.BuildManifest(context.Background(), map[string]string{"a": "^1.0.0"})
	require.NoError(t, err)
	require.Len(t, g, 2)
	require.Contains(t, g["a@1.0.0"].Dependencies, "b@1.0.0")
	require.Contains(t, g["b@1.0.0"].Dependencies, "a@1.0.0")
	require.NoError(t, g.ValidateClosure())
}

func TestBuildStickyDirectFlag(t *testing.T) {
	fr := &fakeRegistry{
		packuments: map[string]string{
			"a": `{"dist-tags":{"latest":"1.0.0"},"versions":{"1.0.0":{}}}`,
			"shared": `{"dist-tags":{"latest":"1.0.0"},"versions":{"1.0.0":{}}}`,
		},
		versions: map[string]string{
			"a/1.0.0":      `{"version":"1.0.0","dist":{"tarball":"https://x/a.tgz","integrity":"sha512-a"},"dependencies":{"shared":"^1.0.0"}}`,
			"shared/1.0.0": `{"version":"1.0.0","dist":{"tarball":"https://x/shared.tgz","integrity":"sha512-s"},"dependencies":{}}`,
		},
	}
	b := newBuilder(t, fr)

	// "shared" is reached transitively through "a" AND declared directly.
	g, err := b.BuildManifest(context.Background(), map[string]string{
		"a":      "^1.0.0",
		"shared": "^1.0.0",
	})
	require.NoError(t, err)
	require.True(t, g["shared@1.0.0"].IsDirectDependency)
}

func TestBuildTwoDistinctVersionsCoexist(t *testing.T) {
	fr := &fakeRegistry{
		packuments: map[string]string{
			"a": `{"dist-tags":{"latest":"1.0.0"},"versions":{"1.0.0":{}}}`,
			"b": `{"dist-tags":{"latest":"1.0.0"},"versions":{"1.0.0":{}}}`,
			"shared": `{"dist-tags":{"latest":"2.0.0"},"versions":{"1.0.0":{},"2.0.0":{}}}`,
		},
		versions: map[string]string{
			"a/1.0.0":      `{"version":"1.0.0","dist":{"tarball":"https://x/a.tgz","integrity":"sha512-a"},"dependencies":{"shared":"^1.0.0"}}`,
			"b/1.0.0":      `{"version":"1.0.0","dist":{"tarball":"https://x/b.tgz","integrity":"sha512-b"},"dependencies":{"shared":"^2.0.0"}}`,
			"shared/1.0.0": `{"version":"1.0.0","dist":{"tarball":"https://x/shared1.tgz","integrity":"sha512-s1"},"dependencies":{}}`,
			"shared/2.0.0": `{"version":"2.0.0","dist":{"tarball":"https://x/shared2.tgz","integrity":"sha512-s2"},"dependencies":{}}`,
		},
	}
	b := newBuilder(t, fr)

	g, err := b.BuildManifest(context.Background(), map[string]string{"a": "^1.0.0", "b": "^1.0.0"})
	require.NoError(t, err)
	require.Contains(t, g, "shared@1.0.0")
	require.Contains(t, g, "shared@2.0.0")
	require.NoError(t, g.ValidateClosure())
}
