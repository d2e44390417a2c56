package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// Config is the full tool configuration
type Config struct {
	Output  OutputConfig  `toml:"output" yaml:"output" mapstructure:"output"`
	Compare CompareConfig `toml:"compare" yaml:"compare" mapstructure:"compare"`
}

// OutputConfig controls report serialization
type OutputConfig struct {
	// Format is the report format: "json" or "yaml"
	Format string `toml:"format" yaml:"format" mapstructure:"format"`

	// Path writes the report to a file instead of stdout when set
	Path string `toml:"path" yaml:"path" mapstructure:"path"`
}

// CompareConfig controls variant collection and pair computation
type CompareConfig struct {
	// Parallelism bounds concurrent pair computation; <=1 means sequential
	Parallelism int `toml:"parallelism" yaml:"parallelism" mapstructure:"parallelism"`

	// Recursive descends into directories when collecting variants
	Recursive bool `toml:"recursive" yaml:"recursive" mapstructure:"recursive"`

	// IncludePatterns and ExcludePatterns are globstar filters on file paths
	IncludePatterns []string `toml:"include_patterns" yaml:"include_patterns" mapstructure:"include_patterns"`
	ExcludePatterns []string `toml:"exclude_patterns" yaml:"exclude_patterns" mapstructure:"exclude_patterns"`

	// Weights are the relative composite-score weights
	Weights WeightsConfig `toml:"weights" yaml:"weights" mapstructure:"weights"`
}

// WeightsConfig holds the composite-score term weights. They are relative:
// normalization happens over whichever terms produce values at runtime.
type WeightsConfig struct {
	CodeBLEU       float64 `toml:"codebleu" yaml:"codebleu" mapstructure:"codebleu"`
	EditDistance   float64 `toml:"edit_distance" yaml:"edit_distance" mapstructure:"edit_distance"`
	SubtreeOverlap float64 `toml:"subtree_overlap" yaml:"subtree_overlap" mapstructure:"subtree_overlap"`
	Jaccard        float64 `toml:"jaccard" yaml:"jaccard" mapstructure:"jaccard"`
}

// DefaultConfig returns the configuration used when no file overrides it
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Format: "json",
		},
		Compare: CompareConfig{
			Parallelism: 4,
			Recursive:   true,
			Weights: WeightsConfig{
				CodeBLEU:       0.30,
				EditDistance:   0.25,
				SubtreeOverlap: 0.20,
				Jaccard:        0.25,
			},
		},
	}
}

// Config file names searched in the working directory and its parents.
var configFileNames = []string{
	".codesim.toml",
	"codesim.toml",
	".codesim.yaml",
	"codesim.yaml",
}

// FindConfigFile searches startDir and its ancestors for a config file.
// Returns the empty string when none exists.
func FindConfigFile(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}

	for {
		for _, name := range configFileNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// LoadConfig reads a config file, dispatching on extension. The file contents
// overlay the defaults, so partial files are fine.
func LoadConfig(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		v := viper.New()
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read YAML config %s: %w", path, err)
		}
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension: %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants that would otherwise surface as bad reports
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "json", "yaml":
	default:
		return fmt.Errorf("invalid output format: %q (expected json or yaml)", c.Output.Format)
	}

	w := c.Compare.Weights
	for name, value := range map[string]float64{
		"codebleu":        w.CodeBLEU,
		"edit_distance":   w.EditDistance,
		"subtree_overlap": w.SubtreeOverlap,
		"jaccard":         w.Jaccard,
	} {
		if value < 0 {
			return fmt.Errorf("weight %s must be non-negative, got %v", name, value)
		}
	}
	if w.CodeBLEU+w.EditDistance+w.SubtreeOverlap+w.Jaccard <= 0 {
		return fmt.Errorf("at least one composite weight must be positive")
	}

	return nil
}
