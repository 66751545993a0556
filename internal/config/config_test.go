package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withXDG(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(root, "cache"))
	return root
}

func TestLoadConfigCreatesDefaults(t *testing.T) {
	root := withXDG(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.FileExists(t, filepath.Join(root, "config", "zerei", "config.toml"))
	assert.Equal(t, filepath.Join(root, "data", "zerei", "collections"), GetLibraryPath())
	assert.Equal(t, filepath.Join(root, "data", "zerei", "zerei.db"), GetDatabasePath())
	assert.Equal(t, filepath.Join(root, "cache", "zerei"), GetCacheDir())
}

func TestLoadConfigKeepsDefaultsForMissingKeys(t *testing.T) {
	withXDG(t)
	path := GetConfigFilePath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(`
default_collection = "movies"

[reveal]
large_threshold = 0.7
`), 0644))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "movies", cfg.DefaultCollection)
	assert.Equal(t, 0.7, cfg.Reveal.LargeThreshold)
	assert.Equal(t, 0.5, cfg.Reveal.SmallThreshold)
	assert.True(t, cfg.Notifications.StoreUpdates)
	assert.False(t, cfg.Notifications.FriendActivity)
}

func TestLoadConfigRejectsBadToml(t *testing.T) {
	withXDG(t)
	path := GetConfigFilePath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("default_collection = "), 0644))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRejectsBadReveal(t *testing.T) {
	tests := []struct {
		name string
		toml string
		want string
	}{
		{name: "unbounded buffer", toml: "max_buffer_pixels = 0", want: "max_buffer_pixels"},
		{name: "zero brush", toml: "small_brush_radius = 0", want: "brush radii"},
		{name: "negative brush", toml: "large_brush_radius = -5.0", want: "brush radii"},
		{name: "threshold above one", toml: "large_threshold = 1.5", want: "thresholds"},
		{name: "zero threshold", toml: "small_threshold = 0.0", want: "thresholds"},
		{name: "zero density", toml: "density = 0.0", want: "density"},
		{name: "negative viewport", toml: "small_viewport_width = -1", want: "small_viewport_width"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withXDG(t)
			path := GetConfigFilePath()
			require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
			require.NoError(t, os.WriteFile(path, []byte("[reveal]\n"+tt.toml+"\n"), 0644))

			_, err := LoadConfig()
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestDefaultRevealIsValid(t *testing.T) {
	assert.NoError(t, Default().Reveal.Validate())
}

func TestDefaultCollectionRoundTrip(t *testing.T) {
	withXDG(t)

	_, err := GetDefaultCollection()
	assert.Error(t, err, "no default is configured on first run")

	require.NoError(t, SetDefaultCollection("games"))
	name, err := GetDefaultCollection()
	require.NoError(t, err)
	assert.Equal(t, "games", name)
}

func TestGetCollectionPath(t *testing.T) {
	withXDG(t)
	libDir := filepath.Join(GetLibraryPath(), "games")
	require.NoError(t, os.MkdirAll(libDir, 0755))

	path, err := GetCollectionPath("games")
	require.NoError(t, err)
	assert.Equal(t, libDir, path)

	local := t.TempDir()
	path, err = GetCollectionPath(local)
	require.NoError(t, err)
	assert.Equal(t, local, path)

	_, err = GetCollectionPath("does-not-exist")
	assert.Error(t, err)
}

func TestSettings(t *testing.T) {
	cfg := Default()

	tests := []struct {
		key     string
		value   string
		want    string
		wantErr bool
	}{
		{key: "notifications.friend_activity", value: "true", want: "true"},
		{key: "notifications.store_updates", value: "false", want: "false"},
		{key: "profile.avatar_seed", value: "zerei-42", want: "zerei-42"},
		{key: "profile.use_initial_avatar", value: "yes", wantErr: true},
		{key: "profile.nickname", value: "x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := cfg.Set(tt.key, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			got, err := cfg.Get(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Contains(t, cfg.SettingKeys(), "notifications.collection_invites")
	assert.Len(t, cfg.SettingKeys(), 8)
}

func TestSurfaceConfig(t *testing.T) {
	sc := Default().SurfaceConfig()
	assert.Equal(t, 100.0, sc.SmallViewportWidth)
	assert.Equal(t, 0.6, sc.LargeThreshold)
	assert.Equal(t, 3.0, sc.SmallBrushRadius)
}
