package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/variantlab/codesim/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "codesim",
	Short: "A multi-strategy similarity analyzer for Python code variants",
	Long: `codesim compares variants of generated Python source files using
multiple independent signals: token-set similarity across five
tokenization strategies, syntax-tree edit distance, node histogram
and subtree overlap, structural quality metrics, and raw-text
string distances, merged into composite similarity scores.

Variants that fail to parse still participate with degraded
text-level metrics instead of aborting the run.`,
	Version: version.Short(),
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewCompareCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
