package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"cull/internal/config"
	"cull/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a temporary YAML config file
func createTestYAML(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	require.NoError(t, err)
	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpFile.Close())
	return tmpFile.Name()
}

const (
	validYAML = `
images:
  extensions: [jpg, jpeg]
triage:
  sidecar_extensions: [JPG, ARW, XMP]
  raw_extensions: [ARW]
  bad_folder: rejects
  collision: rename
loader:
  workers: 3
display:
  width: 2560
  height: 1440
preview:
  command: [xdg-open]
`
	invalidSyntaxYAML = `
triage:
  sidecar_extensions: [JPG, ARW
  bad_folder: "unterminated
`
	invalidCollisionYAML = `
triage:
  collision: delete
`
	nestedBadFolderYAML = `
triage:
  bad_folder: ../elsewhere
`
)

func TestDefaults(t *testing.T) {
	cfg := config.New()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"jpg"}, cfg.Images.Extensions)
	assert.Equal(t, []string{"JPG", "ARW"}, cfg.Triage.SidecarExtensions)
	assert.Equal(t, []string{"ARW"}, cfg.Triage.RawExtensions)
	assert.Equal(t, "bad", cfg.Triage.BadFolder)
	assert.Equal(t, config.CollisionOverwrite, cfg.Triage.Collision)
	assert.True(t, cfg.Display.AutoOrient)
	assert.True(t, cfg.Display.Fullscreen)
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers())

	w, h := cfg.PreviewBounds()
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080-150, h)

	if runtime.GOOS == "darwin" {
		assert.Equal(t, []string{"qlmanage", "-p"}, cfg.Preview.Command)
	} else {
		assert.Empty(t, cfg.Preview.Command)
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Run("valid file overrides defaults", func(t *testing.T) {
		cfg, err := config.LoadConfigFile(createTestYAML(t, validYAML))
		require.NoError(t, err)

		assert.Equal(t, []string{"jpg", "jpeg"}, cfg.Images.Extensions)
		assert.Equal(t, []string{"JPG", "ARW", "XMP"}, cfg.Triage.SidecarExtensions)
		assert.Equal(t, "rejects", cfg.Triage.BadFolder)
		assert.Equal(t, config.CollisionRename, cfg.Triage.Collision)
		assert.Equal(t, 3, cfg.Workers())
		assert.Equal(t, []string{"xdg-open"}, cfg.Preview.Command)

		// Untouched keys keep their defaults
		assert.Equal(t, 150, cfg.Display.Reserve)
		assert.True(t, cfg.Display.AutoOrient)
		assert.True(t, cfg.Watch.Enabled)
	})

	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := config.LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, config.New(), cfg)
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := config.LoadConfigFile(createTestYAML(t, invalidSyntaxYAML))
		require.Error(t, err)
		assert.True(t, errors.IsInvalidConfig(err))
	})

	t.Run("invalid collision", func(t *testing.T) {
		_, err := config.LoadConfigFile(createTestYAML(t, invalidCollisionYAML))
		require.Error(t, err)
		assert.True(t, errors.IsInvalidConfig(err))
		assert.Contains(t, err.Error(), "triage.collision")
	})

	t.Run("bad folder must be a plain name", func(t *testing.T) {
		_, err := config.LoadConfigFile(createTestYAML(t, nestedBadFolderYAML))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "triage.bad_folder")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		param  string
	}{
		{"no image extensions", func(c *config.Config) { c.Images.Extensions = nil }, "images.extensions"},
		{"glob characters", func(c *config.Config) { c.Images.Extensions = []string{"jp*"} }, "images.extensions"},
		{"empty sidecar", func(c *config.Config) { c.Triage.SidecarExtensions = []string{""} }, "triage.sidecar_extensions"},
		{"negative workers", func(c *config.Config) { c.Loader.Workers = -1 }, "loader.workers"},
		{"zero width", func(c *config.Config) { c.Display.Width = 0 }, "display"},
		{"reserve too large", func(c *config.Config) { c.Display.Reserve = c.Display.Height }, "display.reserve"},
		{"dot folder", func(c *config.Config) { c.Triage.BadFolder = "." }, "triage.bad_folder"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)

			var ce *errors.ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.param, ce.Param())
		})
	}

	var nilCfg *config.Config
	assert.Error(t, nilCfg.Validate())
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("CULL_DEBUG", "true")
	t.Setenv("CULL_WORKERS", "2")
	t.Setenv("CULL_BAD_FOLDER", "trash")

	cfg := config.New()
	require.NoError(t, cfg.ApplyEnv())
	assert.True(t, cfg.Log.Debug)
	assert.Equal(t, 2, cfg.Workers())
	assert.Equal(t, "trash", cfg.Triage.BadFolder)
	assert.Equal(t, filepath.Join("/photos", "trash"), cfg.BadDir("/photos"))

	t.Setenv("CULL_WORKERS", "many")
	err := config.New().ApplyEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CULL_WORKERS")
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := config.New()
	cfg.Triage.BadFolder = "rejects"
	cfg.Triage.RawExtensions = []string{"ARW", "DNG"}
	cfg.Preview.Command = []string{"xdg-open"}
	require.NoError(t, config.SaveConfig(cfg, path))

	loaded, err := config.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestNormalizeExtensions(t *testing.T) {
	got := config.NormalizeExtensions([]string{".JPG, ARW", "", " xmp "})
	assert.Equal(t, []string{"JPG", "ARW", "xmp"}, got)
}
