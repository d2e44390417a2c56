package analyzer

import (
	"context"
	"math"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// UnitReport carries the per-unit metric bundles for one variant.
type UnitReport struct {
	ID         string        `json:"id"`
	Structural *MetricBundle `json:"structural_metrics"`
	Operators  *MetricBundle `json:"operator_metrics"`
	Scopes     *MetricBundle `json:"variable_metrics"`
}

// PairResult carries every metric family for one ordered pair of variants.
type PairResult struct {
	LeftID  string `json:"left"`
	RightID string `json:"right"`

	Jaccard      *MetricBundle `json:"jaccard"`
	TreeDistance *MetricBundle `json:"tree_distance"`
	CodeBLEU     *MetricBundle `json:"codebleu,omitempty"`
	Textual      *MetricBundle `json:"textual"`
	Composite    *MetricBundle `json:"composite"`
}

// PairSummary aggregates one metric across all pairs. StdDev is the sample
// standard deviation (n-1 denominator), 0 for fewer than two pairs.
type PairSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
}

// ComparisonSet is the full output of one pairwise run.
type ComparisonSet struct {
	Units   []*UnitReport `json:"units"`
	Pairs   []*PairResult `json:"pairs"`
	Summary PairSummary   `json:"summary"`
}

// PairwiseComparator runs every metric family over all unordered pairs of a
// variant set. Pair order is deterministic: (i, j) for i < j in input order,
// regardless of how many workers compute them.
type PairwiseComparator struct {
	jaccard    *JaccardCalculator
	structural *StructuralExtractor
	operators  *OperatorProfiler
	scopes     *ScopeAnalyzer
	textual    *TextualComparator
	composite  *CompositeScorer

	treeDistance TreeDistanceProvider
	codeBLEU     CodeBLEUProvider

	parallelism int
	onPair      func(completed, total int)
}

// ComparatorOption configures a PairwiseComparator.
type ComparatorOption func(*PairwiseComparator)

// WithCodeBLEU plugs in an external CodeBLEU provider. Without one the
// CodeBLEU term is simply absent from every pair.
func WithCodeBLEU(provider CodeBLEUProvider) ComparatorOption {
	return func(c *PairwiseComparator) { c.codeBLEU = provider }
}

// WithTreeDistance overrides the built-in tree-distance calculator.
func WithTreeDistance(provider TreeDistanceProvider) ComparatorOption {
	return func(c *PairwiseComparator) { c.treeDistance = provider }
}

// WithParallelism bounds the number of pairs computed concurrently.
// Values below 1 mean sequential.
func WithParallelism(n int) ComparatorOption {
	return func(c *PairwiseComparator) { c.parallelism = n }
}

// WithCompositeWeights overrides the default composite weighting.
func WithCompositeWeights(weights CompositeWeights) ComparatorOption {
	return func(c *PairwiseComparator) { c.composite = NewCompositeScorerWithWeights(weights) }
}

// WithPairProgress registers a callback invoked after each finished pair.
// The callback must be safe for concurrent use when parallelism exceeds 1.
func WithPairProgress(fn func(completed, total int)) ComparatorOption {
	return func(c *PairwiseComparator) { c.onPair = fn }
}

// NewPairwiseComparator creates a comparator with the built-in metric
// families and sequential execution.
func NewPairwiseComparator(opts ...ComparatorOption) *PairwiseComparator {
	c := &PairwiseComparator{
		jaccard:      NewJaccardCalculator(),
		structural:   NewStructuralExtractor(),
		operators:    NewOperatorProfiler(),
		scopes:       NewScopeAnalyzer(),
		textual:      NewTextualComparator(),
		composite:    NewCompositeScorer(),
		treeDistance: NewTreeDistanceCalculator(),
		parallelism:  1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compare analyzes every unit and every unordered pair. N units produce
// exactly N*(N-1)/2 pairs; fewer than two units produce an empty pair list
// and a zero summary. The context cancels in-flight pair work.
func (c *PairwiseComparator) Compare(ctx context.Context, units []*SourceUnit) (*ComparisonSet, error) {
	set := &ComparisonSet{
		Units: make([]*UnitReport, len(units)),
	}
	for i, unit := range units {
		set.Units[i] = &UnitReport{
			ID:         unit.ID,
			Structural: c.structural.Analyze(unit),
			Operators:  c.operators.Analyze(unit),
			Scopes:     c.scopes.Analyze(unit),
		}
	}

	type pairIndex struct{ left, right int }
	var pairs []pairIndex
	for i := 0; i < len(units); i++ {
		for j := i + 1; j < len(units); j++ {
			pairs = append(pairs, pairIndex{i, j})
		}
	}

	set.Pairs = make([]*PairResult, len(pairs))
	group, groupCtx := errgroup.WithContext(ctx)
	limit := c.parallelism
	if limit < 1 {
		limit = 1
	}
	group.SetLimit(limit)

	var completed atomic.Int64
	for slot, pair := range pairs {
		slot, pair := slot, pair
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			set.Pairs[slot] = c.comparePair(units[pair.left], units[pair.right])
			if c.onPair != nil {
				c.onPair(int(completed.Add(1)), len(pairs))
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	set.Summary = summarizeOverall(set.Pairs)
	return set, nil
}

// ComparePair computes every pairwise metric family for one pair.
func (c *PairwiseComparator) ComparePair(a, b *SourceUnit) *PairResult {
	return c.comparePair(a, b)
}

func (c *PairwiseComparator) comparePair(a, b *SourceUnit) *PairResult {
	result := &PairResult{
		LeftID:       a.ID,
		RightID:      b.ID,
		Jaccard:      c.jaccard.Compare(a, b),
		TreeDistance: c.treeDistance.Compute(a, b),
		Textual:      c.textual.Compare(a, b),
	}
	if c.codeBLEU != nil {
		result.CodeBLEU = c.codeBLEU.Compute(a, b)
	}
	result.Composite = c.composite.Score(result.Jaccard, result.CodeBLEU, result.TreeDistance)
	return result
}

// summarizeOverall aggregates overall_similarity across pairs. Pairs whose
// composite never produced a number are left out of the statistics.
func summarizeOverall(pairs []*PairResult) PairSummary {
	var values []float64
	for _, pair := range pairs {
		if value, ok := pair.Composite.Float(MetricOverallSimilarity); ok {
			values = append(values, value)
		}
	}

	summary := PairSummary{Count: len(values)}
	if len(values) == 0 {
		return summary
	}

	summary.Min = values[0]
	summary.Max = values[0]
	sum := 0.0
	for _, v := range values {
		sum += v
		if v < summary.Min {
			summary.Min = v
		}
		if v > summary.Max {
			summary.Max = v
		}
	}
	summary.Mean = sum / float64(len(values))

	if len(values) > 1 {
		variance := 0.0
		for _, v := range values {
			diff := v - summary.Mean
			variance += diff * diff
		}
		summary.StdDev = math.Sqrt(variance / float64(len(values)-1))
	}
	return summary
}
