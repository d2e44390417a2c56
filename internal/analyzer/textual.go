package analyzer

import (
	"fmt"

	"github.com/hbollon/go-edlib"
)

// Textual metric names.
const (
	MetricLevenshteinSimilarity = "levenshtein_similarity"
	MetricJaroWinkler           = "jaro_winkler"
)

// TextualComparator scores raw-source similarity without touching the syntax
// tree, so it still produces numbers for units that failed to parse.
type TextualComparator struct{}

// NewTextualComparator creates a comparator.
func NewTextualComparator() *TextualComparator {
	return &TextualComparator{}
}

// Compare returns normalized string-distance metrics over the two sources.
func (c *TextualComparator) Compare(a, b *SourceUnit) *MetricBundle {
	bundle := NewMetricBundle()

	lev, err := edlib.StringsSimilarity(a.Source, b.Source, edlib.Levenshtein)
	if err != nil {
		bundle.SetResult(MetricLevenshteinSimilarity, ErrorMetric(fmt.Sprintf("levenshtein: %v", err)))
		bundle.SetError(fmt.Sprintf("levenshtein: %v", err))
	} else {
		bundle.Set(MetricLevenshteinSimilarity, float64(lev))
	}

	jw, err := edlib.StringsSimilarity(a.Source, b.Source, edlib.JaroWinkler)
	if err != nil {
		bundle.SetResult(MetricJaroWinkler, ErrorMetric(fmt.Sprintf("jaro-winkler: %v", err)))
		bundle.SetError(fmt.Sprintf("jaro-winkler: %v", err))
	} else {
		bundle.Set(MetricJaroWinkler, float64(jw))
	}

	return bundle
}
