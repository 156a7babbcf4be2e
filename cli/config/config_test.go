package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(DefaultPath(t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, Version, cfg.Version)
	assert.True(t, cfg.SizesEnabled())
	assert.False(t, cfg.Defaults.Sourcemap)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(DefaultPath(t.TempDir()))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "preppy config init")
}

func TestLoad_ParsesDefaults(t *testing.T) {
	path := DefaultPath(t.TempDir())
	require.NoError(t, os.WriteFile(path, []byte("version: \"1\"\ndefaults:\n  sourcemap: true\n  output_folder: dist\n  sizes: false\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Defaults.Sourcemap)
	assert.Equal(t, "dist", cfg.Defaults.OutputFolder)
	assert.False(t, cfg.SizesEnabled())
}

func TestLoad_RejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed yaml", content: "defaults: [unclosed"},
		{name: "unknown version", content: "version: \"7\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := DefaultPath(t.TempDir())
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	cfg := New()
	require.NoError(t, cfg.Set("defaults.output_folder", "build"))
	require.NoError(t, cfg.Set("defaults.sourcemap", "true"))
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "build", loaded.Defaults.OutputFolder)
	assert.True(t, loaded.Defaults.Sourcemap)
	assert.True(t, loaded.SizesEnabled())
}

func TestSetGet(t *testing.T) {
	cfg := New()

	require.NoError(t, cfg.Set("defaults.sizes", "0"))
	got, err := cfg.Get("defaults.sizes")
	require.NoError(t, err)
	assert.Equal(t, "false", got)

	assert.Error(t, cfg.Set("defaults.unknown", "x"))
	_, err = cfg.Get("nope")
	assert.Error(t, err)
}

func TestApplyDefaults_FlagsAndEnvWin(t *testing.T) {
	cfg := New()
	cfg.Defaults.OutputFolder = "dist"
	cfg.Defaults.Sourcemap = true

	v := viper.New()
	cfg.ApplyDefaults(v)
	assert.Equal(t, "dist", v.GetString(KeyOutputFolder))
	assert.True(t, v.GetBool(KeySourcemap))
	assert.True(t, v.GetBool(KeySizes))

	v.SetEnvPrefix("PREPPY")
	require.NoError(t, v.BindEnv(KeyOutputFolder))
	t.Setenv("PREPPY_OUTPUT_FOLDER", "from-env")
	assert.Equal(t, "from-env", v.GetString(KeyOutputFolder))

	v.Set(KeyOutputFolder, "from-flag")
	assert.Equal(t, "from-flag", v.GetString(KeyOutputFolder))
}
