package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setFlag(t *testing.T, name, value string) {
	t.Helper()
	require.NoError(t, flag.Set(name, value))
	t.Cleanup(func() {
		f := flag.Lookup(name)
		require.NoError(t, flag.Set(name, f.DefValue))
	})
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, float32(2.0), cfg.Limits.MaxExtent)
	assert.Equal(t, 20000, cfg.Limits.MaxTriangles)
	assert.Equal(t, 1, cfg.Limits.MaxTextures)
	assert.Equal(t, 1024, cfg.Limits.MaxTextureSize)
	assert.Equal(t, 5, cfg.Limits.MaxMaterials)
	assert.Equal(t, 60*time.Second, cfg.Upload.Timeout)
	assert.Contains(t, cfg.Upload.Endpoint, "upload.php")
	assert.Empty(t, cfg.Upload.Passcode)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 800, cfg.Preview.Width)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modelsubmit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
upload:
  endpoint: http://localhost:8080/api/upload.php
  timeout: 15s
  presenter_id: A12
limits:
  max_triangles: 5000
preview:
  width: 1200
  pixel_ratio: 2
logging:
  level: debug
`), 0644))

	cfg := Default()
	require.NoError(t, LoadFile(cfg, path))
	assert.Equal(t, "http://localhost:8080/api/upload.php", cfg.Upload.Endpoint)
	assert.Equal(t, 15*time.Second, cfg.Upload.Timeout)
	assert.Equal(t, "A12", cfg.Upload.PresenterID)
	assert.Equal(t, 5000, cfg.Limits.MaxTriangles)
	// untouched keys keep their defaults
	assert.Equal(t, 5, cfg.Limits.MaxMaterials)
	assert.Equal(t, 600, cfg.Preview.Height)
	assert.Equal(t, 2.0, cfg.Preview.PixelRatio)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Contains(t, cfg.Upload.UploadsBase, "/uploads")
}

func TestLoadFileRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("limits:\n  max_polygons: 10\n"), 0644))
	assert.Error(t, LoadFile(Default(), path))
	assert.Error(t, LoadFile(Default(), filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("upload:\n  presenter_id: FromFile\n  passcode: file\n"), 0644))

	setFlag(t, "config", path)
	setFlag(t, "presenter", "FromFlag")
	setFlag(t, "debug", "true")
	setFlag(t, "log", filepath.Join(dir, "out.log"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "FromFlag", cfg.Upload.PresenterID)
	assert.Equal(t, "file", cfg.Upload.Passcode)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, filepath.Join(dir, "out.log"), cfg.Logging.LogFile)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	setFlag(t, "config", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestConfigDir(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	dir, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg, "modelsubmit"), dir)
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := Default()
	cfg.Upload.PresenterID = "B7"
	cfg.Limits.MaxMaterials = 3
	require.NoError(t, cfg.SaveTo(path))

	loaded := Default()
	require.NoError(t, LoadFile(loaded, path))
	assert.Equal(t, cfg, loaded)
}
