package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Positive(t, cfg.EffectiveWorkers())
	assert.Equal(t, float64(DefaultFuzzyThreshold), cfg.Convert.FuzzyThreshold)
	assert.Contains(t, cfg.Exclude, "target/**")
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Convert.Workers = -1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Convert.FuzzyThreshold = 1.5
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Convert.MaxFileSize = 0
	assert.Error(t, cfg.Validate())
}

func TestEffectiveWorkersZeroMeansNumCPU(t *testing.T) {
	cfg := Default()
	cfg.Convert.Workers = 0
	assert.Positive(t, cfg.EffectiveWorkers())

	cfg.Convert.Workers = 3
	assert.Equal(t, 3, cfg.EffectiveWorkers())
}

func TestLoadKDLMissingFileReturnsNil(t *testing.T) {
	cfg, err := LoadKDL(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadKDLParsesSettings(t *testing.T) {
	dir := t.TempDir()
	content := `
project {
    root "."
    name "demo"
}
convert {
    workers 2
    max_file_size "4MB"
    fuzzy_threshold 0.9
    fallback_scan_lines 50
}
include "src/**/*.rs"
exclude {
    "target/**"
    "vendor/**"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := LoadKDL(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "demo", cfg.Project.Name)
	assert.Equal(t, 2, cfg.Convert.Workers)
	assert.Equal(t, int64(4*1024*1024), cfg.Convert.MaxFileSize)
	assert.InDelta(t, 0.9, cfg.Convert.FuzzyThreshold, 1e-9)
	assert.Equal(t, 50, cfg.Convert.FallbackScanLines)
	assert.Contains(t, cfg.Include, "src/**/*.rs")
	assert.Equal(t, []string{"target/**", "vendor/**"}, cfg.Exclude)

	// Root resolves to an absolute path anchored at the config dir.
	assert.True(t, filepath.IsAbs(cfg.Project.Root))
}

func TestLoadKDLDefaultsSurvive(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName),
		[]byte(`project { name "only-name" }`), 0644))

	cfg, err := LoadKDL(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.Convert.MaxFileSize)
	assert.Equal(t, DefaultFallbackMaxBodyLines, cfg.Convert.FallbackMaxBodyLines)
}

func TestLoadKDLRejectsBadSyntax(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName),
		[]byte(`convert { workers `), 0644))

	_, err := LoadKDL(dir)
	assert.Error(t, err)
}

func TestParseSize(t *testing.T) {
	sz, err := parseSize("10MB")
	require.NoError(t, err)
	assert.Equal(t, int64(10*1024*1024), sz)

	sz, err = parseSize("512")
	require.NoError(t, err)
	assert.Equal(t, int64(512), sz)

	_, err = parseSize("lots")
	assert.Error(t, err)
}

func TestCrateName(t *testing.T) {
	dir := t.TempDir()
	manifest := `
[package]
name = "my-verified-crate"
version = "0.1.0"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(manifest), 0644))
	assert.Equal(t, "my_verified_crate", CrateName(dir))
}

func TestCrateNameMissingManifest(t *testing.T) {
	assert.Equal(t, "", CrateName(t.TempDir()))
}

func TestCrateNameWorkspaceOnly(t *testing.T) {
	dir := t.TempDir()
	manifest := `
[workspace]
members = ["crates/*"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(manifest), 0644))
	assert.Equal(t, "", CrateName(dir))
}
