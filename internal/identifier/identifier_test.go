package identifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	cases := []struct {
		name, version string
	}{
		{"is-thirteen", "2.0.0"},
		{"semver", "7.6.2"},
		{"@scope/x", "1.0.0"},
		{"@babel/core", "7.24.0-beta.1"},
	}
	for _, c := range cases {
		id := Join(c.name, c.version)
		gotName, gotVersion, err := Parse(id)
		require.NoError(t, err)
		assert.Equal(t, c.name, gotName)
		assert.Equal(t, c.version, gotVersion)
	}
}

func TestParseInvalid(t *testing.T) {
	_, _, err := Parse("no-version-here")
	assert.Error(t, err)

	_, _, err = Parse("@leading-at-only")
	assert.Error(t, err)
}

func TestIsScoped(t *testing.T) {
	assert.True(t, IsScoped("@scope/name"))
	assert.False(t, IsScoped("plain"))
	assert.False(t, IsScoped("@no-slash"))
}

func TestScopeAndBase(t *testing.T) {
	scope, base := ScopeAndBase("@scope/name")
	assert.Equal(t, "@scope", scope)
	assert.Equal(t, "name", base)
}

func TestCacheFilename(t *testing.T) {
	assert.Equal(t, "is-thirteen-2.0.0.tgz", CacheFilename("is-thirteen", "2.0.0"))
	assert.Equal(t, "@scope-x-1.0.0.tgz", CacheFilename("@scope/x", "1.0.0"))
}
