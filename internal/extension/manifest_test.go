package extension

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/extforge/extforge/internal/core"
)

func TestBuildManifest(t *testing.T) {
	t.Run("author without email", func(t *testing.T) {
		manifest := BuildManifest(ManifestParams{DisplayName: "Foo", Author: "A"})

		assert.Equal(t, "Foo", manifest.DisplayName)
		assert.Equal(t, InitialVersion, manifest.Version)
		assert.Equal(t, DefaultDescription, manifest.Description)
		assert.Equal(t, "A", manifest.Author)
		assert.Equal(t, DefaultLicense, manifest.License)
		assert.Equal(t, DefaultLoadOrder, manifest.LoadOrder)
		assert.Empty(t, manifest.Homepage)
	})

	t.Run("author with email", func(t *testing.T) {
		manifest := BuildManifest(ManifestParams{
			DisplayName: "Foo",
			Author:      "Ada",
			Email:       "ada@example.com",
		})
		assert.Equal(t, "Ada <ada@example.com>", manifest.Author)
	})

	t.Run("homepage only with coordinates", func(t *testing.T) {
		coords := &GitHubCoordinates{Username: "octocat", Repository: "Foo"}
		manifest := BuildManifest(ManifestParams{
			DisplayName: "Foo",
			Author:      "A",
			Coordinates: coords,
		})
		assert.Equal(t, "https://github.com/octocat/Foo", manifest.Homepage)
	})

	t.Run("homepage omitted from serialized form without coordinates", func(t *testing.T) {
		manifest := BuildManifest(ManifestParams{DisplayName: "Foo", Author: "A"})
		data, err := manifest.Marshal()
		require.NoError(t, err)
		assert.NotContains(t, string(data), "homepage")
	})
}

func TestManifest_Marshal_Deterministic(t *testing.T) {
	params := ManifestParams{DisplayName: "Foo", Author: "A", Email: "a@b.c"}

	first, err := BuildManifest(params).Marshal()
	require.NoError(t, err)
	second, err := BuildManifest(params).Marshal()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestWriteManifest_LoadManifest_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	manifest := BuildManifest(ManifestParams{
		DisplayName: "Foo",
		Author:      "Ada",
		Email:       "ada@example.com",
		Coordinates: &GitHubCoordinates{Username: "octocat", Repository: "Foo"},
	})

	require.NoError(t, WriteManifest(tmpDir, manifest))

	loaded, err := LoadManifest(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, manifest, loaded)
}

func TestLoadManifest_Missing(t *testing.T) {
	_, err := LoadManifest(t.TempDir())
	assert.Error(t, err)
}

func TestLoadManifest_RejectsMalformed(t *testing.T) {
	// A hand-edited manifest that parses but violates the field or version
	// rules must not reach any consumer.
	cases := []struct {
		name string
		body string
	}{
		{
			name: "invalid version",
			body: `{"display_name":"Foo","version":"not-a-version","author":"A"}`,
		},
		{
			name: "missing author",
			body: `{"display_name":"Foo","version":"1.0.0"}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			require.NoError(t, core.WriteFileUnder(tmpDir, ManifestFileName, []byte(tc.body), 0644))

			_, err := LoadManifest(tmpDir)
			assert.Error(t, err)
		})
	}
}

func TestValidateManifest(t *testing.T) {
	valid := func() *Manifest {
		return BuildManifest(ManifestParams{DisplayName: "Foo", Author: "A"})
	}

	t.Run("valid manifest", func(t *testing.T) {
		assert.NoError(t, ValidateManifest(valid()))
	})

	t.Run("missing display name", func(t *testing.T) {
		manifest := valid()
		manifest.DisplayName = ""
		err := ValidateManifest(manifest)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
	})

	t.Run("missing author", func(t *testing.T) {
		manifest := valid()
		manifest.Author = ""
		assert.Error(t, ValidateManifest(manifest))
	})

	t.Run("invalid version", func(t *testing.T) {
		manifest := valid()
		manifest.Version = "not-a-version"
		err := ValidateManifest(manifest)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "semantic version")
	})
}
