package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/scenekit/internal/core/observability/log"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ".", cfg.AssetRoot)
	assert.Equal(t, log.LevelInfo, cfg.Level())
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "phong", cfg.DefaultShader.Name)
}

func TestDecodeOverridesDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(`
asset_root: /srv/assets
log_level: debug
cache:
  enabled: false
`))
	require.NoError(t, err)
	assert.Equal(t, "/srv/assets", cfg.AssetRoot)
	assert.Equal(t, log.LevelDebug, cfg.Level())
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "data/shaders/phong.vert", cfg.DefaultShader.Vertex)

	empty, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), empty)

	_, err = Decode(strings.NewReader("asset_root: [unclosed"))
	assert.Error(t, err)
}

func TestLoadAppliesEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenekit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("asset_root: from-file\nlog_level: warn\n"), 0o644))

	t.Setenv("SCENEKIT_ASSET_ROOT", "from-env")
	t.Setenv("SCENEKIT_CACHE_ENABLED", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.AssetRoot)
	assert.Equal(t, log.LevelWarn, cfg.Level())
	assert.False(t, cfg.Cache.Enabled)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	t.Setenv("SCENEKIT_CACHE_ENABLED", "maybe")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.DefaultShader.Name = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.AssetRoot = ""
	assert.Error(t, cfg.Validate())
}
