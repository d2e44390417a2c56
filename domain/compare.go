package domain

import (
	"context"
	"io"

	"github.com/variantlab/codesim/internal/analyzer"
)

// OutputFormat represents the output format for comparison reports
type OutputFormat string

const (
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

// IsValid reports whether the format is supported
func (f OutputFormat) IsValid() bool {
	return f == OutputFormatJSON || f == OutputFormatYAML
}

// CompareRequest carries everything one comparison run needs
type CompareRequest struct {
	// Paths are the variant files or directories holding them
	Paths []string

	// OutputFormat selects the report serialization
	OutputFormat OutputFormat

	// OutputWriter receives the report when OutputPath is empty
	OutputWriter io.Writer

	// OutputPath writes the report to a file instead of OutputWriter
	OutputPath string

	// Recursive descends into directories when collecting variants
	Recursive bool

	// IncludePatterns and ExcludePatterns filter collected files
	IncludePatterns []string
	ExcludePatterns []string

	// Parallelism bounds concurrent pair computation; <=1 means sequential
	Parallelism int

	// Weights overrides the composite weighting when non-nil
	Weights *analyzer.CompositeWeights

	// NoProgress suppresses progress output even on a terminal
	NoProgress bool

	// Verbose enables detailed logging
	Verbose bool
}

// VariantSummary describes one analyzed variant in the response
type VariantSummary struct {
	ID       string `json:"id"`
	Path     string `json:"path"`
	Parsed   bool   `json:"parsed"`
	ParseErr string `json:"parse_error,omitempty"`
}

// CompareResponse is the result of a comparison run
type CompareResponse struct {
	Variants []VariantSummary        `json:"variants"`
	Result   *analyzer.ComparisonSet `json:"result"`

	// GeneratedAt is the report timestamp in RFC 3339
	GeneratedAt string `json:"generated_at"`

	// Version identifies the tool build that produced the report
	Version string `json:"version"`
}

// CompareService runs the full pairwise comparison use case
type CompareService interface {
	Compare(ctx context.Context, req CompareRequest) (*CompareResponse, error)
}

// FileReader collects and reads variant source files
type FileReader interface {
	CollectVariantFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error)
	ReadFile(path string) ([]byte, error)
	IsValidVariantFile(path string) bool
}

// ProgressReporter reports long-running operation progress
type ProgressReporter interface {
	StartProgress(totalPairs int)
	UpdateProgress(completed, total int)
	FinishProgress()
}

// ComparisonStorage persists comparison reports
type ComparisonStorage interface {
	Save(response *CompareResponse, format OutputFormat, writer io.Writer) error
}
