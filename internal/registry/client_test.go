package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/huskpm/husk/internal/huskerr"
)

func TestPackument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/is-thirteen", r.URL.Path)
		w.Write([]byte(`{"dist-tags":{"latest":"2.0.0"},"versions":{"2.0.0":{}}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	doc, err := c.Packument(context.Background(), "is-thirteen")
	require.NoError(t, err)
	require.Equal(t, "2.0.0", doc.DistTags["latest"])
	require.Contains(t, doc.Versions, "2.0.0")
}

func TestPackumentScopedName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/@scope/x", r.URL.Path)
		w.Write([]byte(`{"dist-tags":{"latest":"1.0.0"},"versions":{"1.0.0":{}}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Packument(context.Background(), "@scope/x")
	require.NoError(t, err)
}

func TestVersionMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/semver/7.6.2", r.URL.Path)
		w.Write([]byte(`{"version":"7.6.2","dist":{"tarball":"https://example/semver-7.6.2.tgz","integrity":"sha512-abc"},"dependencies":{}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	meta, err := c.VersionMetadata(context.Background(), "semver", "7.6.2")
	require.NoError(t, err)
	require.Equal(t, "7.6.2", meta.Version)
	require.Equal(t, "https://example/semver-7.6.2.tgz", meta.TarballURL)
	require.Equal(t, "sha512-abc", meta.Integrity)
}

func TestNon2xxIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Packument(context.Background(), "does-not-exist")
	require.Error(t, err)

	var herr *huskerr.Error
	require.ErrorAs(t, err, &herr)
	require.Equal(t, huskerr.KindTransport, herr.Kind)
}

func TestFetchTarball(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tarball-bytes"))
	}))
	defer srv.Close()

	c := New(srv.URL)
	data, err := c.FetchTarball(context.Background(), srv.URL+"/x.tgz")
	require.NoError(t, err)
	require.Equal(t, []byte("tarball-bytes"), data)
}
