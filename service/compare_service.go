package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/variantlab/codesim/domain"
	"github.com/variantlab/codesim/internal/analyzer"
	"github.com/variantlab/codesim/internal/version"
)

// CompareServiceImpl implements the CompareService interface
type CompareServiceImpl struct {
	fileReader domain.FileReader
	storage    domain.ComparisonStorage
	logger     *log.Logger
}

// NewCompareService creates a new compare service with default collaborators
func NewCompareService() *CompareServiceImpl {
	return &CompareServiceImpl{
		fileReader: NewFileReader(),
		storage:    NewComparisonStorage(),
		logger:     log.NewWithOptions(os.Stderr, log.Options{Prefix: "codesim"}),
	}
}

// NewCompareServiceWithDeps creates a compare service with explicit collaborators
func NewCompareServiceWithDeps(fileReader domain.FileReader, storage domain.ComparisonStorage, logger *log.Logger) *CompareServiceImpl {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "codesim"})
	}
	return &CompareServiceImpl{
		fileReader: fileReader,
		storage:    storage,
		logger:     logger,
	}
}

// Compare runs the full pairwise comparison use case: collect variant files,
// parse each one, compute every metric family over all pairs, and write the
// report in the requested format.
func (s *CompareServiceImpl) Compare(ctx context.Context, req domain.CompareRequest) (*domain.CompareResponse, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	if req.Verbose {
		s.logger.SetLevel(log.DebugLevel)
	}

	files, err := s.fileReader.CollectVariantFiles(req.Paths, req.Recursive, req.IncludePatterns, req.ExcludePatterns)
	if err != nil {
		return nil, err
	}
	if len(files) < 2 {
		return nil, domain.NewInvalidInputError(
			fmt.Sprintf("need at least 2 variant files to compare, found %d", len(files)), nil)
	}
	s.logger.Debug("collected variant files", "count", len(files))

	units, summaries, err := s.loadUnits(ctx, files)
	if err != nil {
		return nil, err
	}

	opts := []analyzer.ComparatorOption{
		analyzer.WithParallelism(req.Parallelism),
	}
	if req.Weights != nil {
		opts = append(opts, analyzer.WithCompositeWeights(*req.Weights))
	}

	progress := CreateProgressReporter(os.Stderr, req.NoProgress)
	opts = append(opts, analyzer.WithPairProgress(progress.UpdateProgress))

	comparator := analyzer.NewPairwiseComparator(opts...)

	pairCount := len(units) * (len(units) - 1) / 2
	progress.StartProgress(pairCount)
	result, err := comparator.Compare(ctx, units)
	progress.FinishProgress()
	if err != nil {
		return nil, domain.NewComparisonError("pairwise comparison failed", err)
	}
	s.logger.Debug("comparison finished",
		"pairs", len(result.Pairs),
		"mean_similarity", result.Summary.Mean)

	response := &domain.CompareResponse{
		Variants:    summaries,
		Result:      result,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.Short(),
	}

	if err := s.writeReport(response, req); err != nil {
		return nil, err
	}
	return response, nil
}

func (s *CompareServiceImpl) validateRequest(req domain.CompareRequest) error {
	if len(req.Paths) == 0 {
		return domain.NewValidationError("no input paths provided")
	}
	if !req.OutputFormat.IsValid() {
		return domain.NewUnsupportedFormatError(string(req.OutputFormat))
	}
	return nil
}

// loadUnits reads and parses every file. Unparsable variants still join the
// comparison in degraded form; only I/O failures abort the run.
func (s *CompareServiceImpl) loadUnits(ctx context.Context, files []string) ([]*analyzer.SourceUnit, []domain.VariantSummary, error) {
	units := make([]*analyzer.SourceUnit, 0, len(files))
	summaries := make([]domain.VariantSummary, 0, len(files))

	ids := variantIDs(files)
	for i, file := range files {
		content, err := s.fileReader.ReadFile(file)
		if err != nil {
			return nil, nil, err
		}

		unit, err := analyzer.NewSourceUnit(ctx, ids[i], string(content))
		if err != nil {
			return nil, nil, domain.NewParseError(file, err)
		}
		if !unit.Parsed() {
			s.logger.Warn("variant failed to parse, comparing in degraded mode",
				"file", file, "error", unit.ParseErr)
		}

		units = append(units, unit)
		summaries = append(summaries, domain.VariantSummary{
			ID:       unit.ID,
			Path:     file,
			Parsed:   unit.Parsed(),
			ParseErr: unit.ParseErr,
		})
	}
	return units, summaries, nil
}

// variantIDs derives unit identifiers from file names, falling back to full
// paths when base names collide.
func variantIDs(files []string) []string {
	bases := make(map[string]int, len(files))
	for _, file := range files {
		bases[filepath.Base(file)]++
	}

	ids := make([]string, len(files))
	for i, file := range files {
		base := filepath.Base(file)
		if bases[base] > 1 {
			ids[i] = filepath.ToSlash(file)
		} else {
			ids[i] = base
		}
	}
	return ids
}

func (s *CompareServiceImpl) writeReport(response *domain.CompareResponse, req domain.CompareRequest) error {
	if req.OutputPath != "" {
		file, err := os.Create(req.OutputPath)
		if err != nil {
			return domain.NewOutputError(fmt.Sprintf("failed to create output file: %s", req.OutputPath), err)
		}
		defer file.Close()
		if err := s.storage.Save(response, req.OutputFormat, file); err != nil {
			return err
		}
		s.logger.Info("report written", "path", req.OutputPath, "format", string(req.OutputFormat))
		return nil
	}

	writer := req.OutputWriter
	if writer == nil {
		writer = os.Stdout
	}
	return s.storage.Save(response, req.OutputFormat, writer)
}
