package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/variantlab/codesim/app"
	"github.com/variantlab/codesim/domain"
	"github.com/variantlab/codesim/internal/analyzer"
	"github.com/variantlab/codesim/internal/config"
	"github.com/variantlab/codesim/service"
)

// CompareCommand represents the compare command
type CompareCommand struct {
	outputFormat string
	outputPath   string
	configPath   string
	parallelism  int
	recursive    bool
	include      []string
	exclude      []string
	noProgress   bool

	weightCodeBLEU       float64
	weightEditDistance   float64
	weightSubtreeOverlap float64
	weightJaccard        float64
}

// NewCompareCommand creates a new compare command
func NewCompareCommand() *CompareCommand {
	return &CompareCommand{}
}

// CreateCobraCommand creates the cobra command for pairwise comparison
func (c *CompareCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [files or directories...]",
		Short: "Compare Python variants pairwise",
		Long: `Compare every unordered pair of the given Python variants and
report per-variant structural metrics, per-pair similarity metrics,
and summary statistics over the composite similarity.

Examples:
  # Compare all variants in a directory
  codesim compare ./variants/

  # Compare specific files, writing a YAML report
  codesim compare a.py b.py c.py --format yaml

  # Write the report to a file
  codesim compare ./variants/ -o report.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: c.runCompare,
	}

	defaults := config.DefaultConfig()
	cmd.Flags().StringVarP(&c.outputFormat, "format", "f", defaults.Output.Format, "Output format (json, yaml)")
	cmd.Flags().StringVarP(&c.outputPath, "output", "o", "", "Write report to file instead of stdout")
	cmd.Flags().StringVar(&c.configPath, "config", "", "Config file path (default: discovered .codesim.toml/.codesim.yaml)")
	cmd.Flags().IntVarP(&c.parallelism, "parallelism", "p", defaults.Compare.Parallelism, "Concurrent pair computations (0 uses CPU count)")
	cmd.Flags().BoolVarP(&c.recursive, "recursive", "r", defaults.Compare.Recursive, "Descend into directories")
	cmd.Flags().StringSliceVar(&c.include, "include", nil, "Include only files matching these globstar patterns")
	cmd.Flags().StringSliceVar(&c.exclude, "exclude", nil, "Exclude files matching these globstar patterns")
	cmd.Flags().BoolVar(&c.noProgress, "no-progress", false, "Disable progress output")
	cmd.Flags().Float64Var(&c.weightCodeBLEU, "weight-codebleu", defaults.Compare.Weights.CodeBLEU, "Composite weight of the CodeBLEU term")
	cmd.Flags().Float64Var(&c.weightEditDistance, "weight-edit-distance", defaults.Compare.Weights.EditDistance, "Composite weight of the edit-distance term")
	cmd.Flags().Float64Var(&c.weightSubtreeOverlap, "weight-subtree-overlap", defaults.Compare.Weights.SubtreeOverlap, "Composite weight of the subtree-overlap term")
	cmd.Flags().Float64Var(&c.weightJaccard, "weight-jaccard", defaults.Compare.Weights.Jaccard, "Composite weight of the Jaccard term")

	return cmd
}

// runCompare executes the compare command
func (c *CompareCommand) runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	c.applyConfig(cfg, GetExplicitFlags(cmd))

	verbose, _ := cmd.Flags().GetBool("verbose")

	parallelism := c.parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	weights := &analyzer.CompositeWeights{
		CodeBLEU:       c.weightCodeBLEU,
		EditDistance:   c.weightEditDistance,
		SubtreeOverlap: c.weightSubtreeOverlap,
		Jaccard:        c.weightJaccard,
	}

	req := domain.CompareRequest{
		Paths:           args,
		OutputFormat:    domain.OutputFormat(c.outputFormat),
		OutputWriter:    cmd.OutOrStdout(),
		OutputPath:      c.outputPath,
		Recursive:       c.recursive,
		IncludePatterns: c.include,
		ExcludePatterns: c.exclude,
		Parallelism:     parallelism,
		Weights:         weights,
		NoProgress:      c.noProgress,
		Verbose:         verbose,
	}

	useCase := app.NewCompareUseCase(service.NewCompareService())
	if _, err := useCase.Execute(cmd.Context(), req); err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}
	return nil
}

// loadConfig resolves the config file: explicit flag first, then discovery
// from the working directory upward, then built-in defaults.
func (c *CompareCommand) loadConfig() (*config.Config, error) {
	if c.configPath != "" {
		return config.LoadConfig(c.configPath)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return config.DefaultConfig(), nil
	}
	if found := config.FindConfigFile(cwd); found != "" {
		return config.LoadConfig(found)
	}
	return config.DefaultConfig(), nil
}

// applyConfig overlays config-file values under any flags the user set
// explicitly. Explicit flags always win.
func (c *CompareCommand) applyConfig(cfg *config.Config, explicit map[string]bool) {
	if !explicit["format"] && cfg.Output.Format != "" {
		c.outputFormat = cfg.Output.Format
	}
	if !explicit["output"] && cfg.Output.Path != "" {
		c.outputPath = cfg.Output.Path
	}
	if !explicit["parallelism"] {
		c.parallelism = cfg.Compare.Parallelism
	}
	if !explicit["recursive"] {
		c.recursive = cfg.Compare.Recursive
	}
	if !explicit["include"] && len(cfg.Compare.IncludePatterns) > 0 {
		c.include = cfg.Compare.IncludePatterns
	}
	if !explicit["exclude"] && len(cfg.Compare.ExcludePatterns) > 0 {
		c.exclude = cfg.Compare.ExcludePatterns
	}
	if !explicit["weight-codebleu"] {
		c.weightCodeBLEU = cfg.Compare.Weights.CodeBLEU
	}
	if !explicit["weight-edit-distance"] {
		c.weightEditDistance = cfg.Compare.Weights.EditDistance
	}
	if !explicit["weight-subtree-overlap"] {
		c.weightSubtreeOverlap = cfg.Compare.Weights.SubtreeOverlap
	}
	if !explicit["weight-jaccard"] {
		c.weightJaccard = cfg.Compare.Weights.Jaccard
	}
}

// GetExplicitFlags extracts which flags were explicitly set from a cobra command
func GetExplicitFlags(cmd *cobra.Command) map[string]bool {
	explicitFlags := make(map[string]bool)
	if cmd != nil {
		cmd.Flags().Visit(func(f *pflag.Flag) {
			explicitFlags[f.Name] = true
		})
	}
	return explicitFlags
}

// NewCompareCmd creates and returns the compare cobra command
func NewCompareCmd() *cobra.Command {
	return NewCompareCommand().CreateCobraCommand()
}
