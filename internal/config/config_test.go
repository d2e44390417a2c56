package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 4, cfg.Compare.Parallelism)
	assert.True(t, cfg.Compare.Recursive)
	assert.InDelta(t, 0.30, cfg.Compare.Weights.CodeBLEU, 1e-9)
	assert.InDelta(t, 0.25, cfg.Compare.Weights.EditDistance, 1e-9)
	assert.InDelta(t, 0.20, cfg.Compare.Weights.SubtreeOverlap, 1e-9)
	assert.InDelta(t, 0.25, cfg.Compare.Weights.Jaccard, 1e-9)
	assert.NoError(t, cfg.Validate())
}

func TestLoadTOMLConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "codesim.toml", `
[output]
format = "yaml"

[compare]
parallelism = 8

[compare.weights]
jaccard = 0.5
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, 8, cfg.Compare.Parallelism)
	assert.InDelta(t, 0.5, cfg.Compare.Weights.Jaccard, 1e-9)
	// Untouched settings keep their defaults
	assert.True(t, cfg.Compare.Recursive)
}

func TestLoadYAMLConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "codesim.yaml", `
output:
  format: yaml
compare:
  parallelism: 2
  recursive: false
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, 2, cfg.Compare.Parallelism)
	assert.False(t, cfg.Compare.Recursive)
}

func TestLoadConfigUnsupportedExtension(t *testing.T) {
	path := writeFile(t, t.TempDir(), "codesim.ini", "format=json\n")

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad format", func(c *Config) { c.Output.Format = "xml" }},
		{"negative weight", func(c *Config) { c.Compare.Weights.Jaccard = -0.1 }},
		{"all weights zero", func(c *Config) { c.Compare.Weights = WeightsConfig{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".codesim.toml", "[output]\nformat = \"json\"\n")

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	found := FindConfigFile(nested)
	assert.Equal(t, filepath.Join(root, ".codesim.toml"), found)
}

func TestFindConfigFileMissing(t *testing.T) {
	assert.Equal(t, "", FindConfigFile(t.TempDir()))
}

func TestDefaultConfigTOMLRoundTrips(t *testing.T) {
	path := writeFile(t, t.TempDir(), ".codesim.toml", DefaultConfigTOML)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
