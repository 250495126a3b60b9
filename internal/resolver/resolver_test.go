package resolver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/huskpm/husk/internal/cache"
	"github.com/huskpm/husk/internal/registry"
)

func newTestResolver(t *testing.T, handler http.HandlerFunc) (*Resolver, *httptest.Server) {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := registry.New(srv.URL)
	caches, err := cache.NewMetadataCaches()
	require.NoError(t, err)
	return New(client, caches), srv
}

func TestResolveCaretRange(t *testing.T) {
	r, _ := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, `{"dist-tags":{"latest":"7.6.2"},"versions":{"7.5.2":{},"7.6.0":{},"7.6.2":{},"8.0.0":{}}}`)
	})

	got, err := r.Resolve(context.Background(), "semver", "^7.0.0")
	require.NoError(t, err)
	require.Equal(t, "7.6.2", got)
}

func TestResolveLatestTag(t *testing.T) {
	r, _ := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, `{"dist-tags":{"latest":"2.0.0"},"versions":{"1.0.0":{},"2.0.0":{}}}`)
	})

	got, err := r.Resolve(context.Background(), "is-thirteen", "latest")
	require.NoError(t, err)
	require.Equal(t, "2.0.0", got)
}

func TestResolveExcludesPrereleaseUnlessRequested(t *testing.T) {
	r, _ := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, `{"dist-tags":{"latest":"1.0.0"},"versions":{"1.0.0":{},"1.1.0-beta.1":{}}}`)
	})

	got, err := r.Resolve(context.Background(), "p", "^1.0.0")
	require.NoError(t, err)
	require.Equal(t, "1.0.0", got)

	got, err = r.Resolve(context.Background(), "p", "1.1.0-beta.1")
	require.NoError(t, err)
	require.Equal(t, "1.1.0-beta.1", got)
}

func TestResolveNoSatisfyingVersion(t *testing.T) {
	r, _ := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, `{"dist-tags":{"latest":"1.0.0"},"versions":{"1.0.0":{}}}`)
	})

	_, err := r.Resolve(context.Background(), "p", "^2.0.0")
	require.Error(t, err)
}

func TestResolveMemoizesAgainstRegistry(t *testing.T) {
	calls := 0
	r, _ := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		calls++
		fmt.Fprint(w, `{"dist-tags":{"latest":"1.0.0"},"versions":{"1.0.0":{}}}`)
	})

	_, err := r.Resolve(context.Background(), "p", "^1.0.0")
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), "p", "^1.0.0")
	require.NoError(t, err)

	require.Equal(t, 1, calls)
}
