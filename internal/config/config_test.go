package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves into a scratch dir so tests never pick up a real config.yaml.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(orig) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "data/Facebook.csv", cfg.Sources.Facebook)
	assert.Equal(t, "abort", cfg.Loader.OnError)
	assert.Equal(t, "processed", cfg.Output.Dir)
	assert.True(t, cfg.Security.RateLimit.Enabled)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdir(t)

	yaml := `
server:
  port: 9090
sources:
  facebook: /data/fb.csv
loader:
  on_error: skip
  column_aliases:
    day: date
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/data/fb.csv", cfg.Sources.Facebook)
	assert.Equal(t, "skip", cfg.Loader.OnError)
	assert.Equal(t, "date", cfg.Loader.ColumnAliases["day"])
	// Unset fields still default.
	assert.Equal(t, "data/Google.csv", cfg.Sources.Google)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("server:\n  port: 9090\n"), 0o644))
	t.Setenv("BIDASH_SERVER_PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadRejectsBadConfig(t *testing.T) {
	t.Run("bad port", func(t *testing.T) {
		chdir(t)
		t.Setenv("BIDASH_SERVER_PORT", "70000")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad on_error policy", func(t *testing.T) {
		chdir(t)
		t.Setenv("BIDASH_LOADER_ON_ERROR", "ignore")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		dir := chdir(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
			[]byte("server: [not a map\n"), 0o644))
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestArtifactPath(t *testing.T) {
	cfg := Default()
	cfg.Output.Dir = "/tmp/out"
	assert.Equal(t, filepath.Join("/tmp/out", "insights.json"), cfg.ArtifactPath("insights.json"))
}

func TestEnsureOutputDir(t *testing.T) {
	cfg := Default()
	cfg.Output.Dir = filepath.Join(t.TempDir(), "nested", "out")
	require.NoError(t, cfg.EnsureOutputDir())

	info, err := os.Stat(cfg.Output.Dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.validate())
}
