package analyzer

import "fmt"

// Composite metric names.
const (
	MetricOverallSimilarity    = "overall_similarity"
	MetricStructuralSimilarity = "structural_similarity"
	MetricSemanticSimilarity   = "semantic_similarity"
)

// CodeBLEUProvider is collaborator interface A: an external CodeBLEU-style
// scorer. Implementations report {"codebleu": x} with optional syntax_match
// and dataflow_match entries, or an error bundle.
type CodeBLEUProvider interface {
	Compute(a, b *SourceUnit) *MetricBundle
}

// TreeDistanceProvider is collaborator interface B: tree-distance metrics
// (ast_edit_distance, tsed, node_histogram_distance, subtree_overlap_ratio)
// or an error bundle.
type TreeDistanceProvider interface {
	Compute(a, b *SourceUnit) *MetricBundle
}

// CompositeWeights are the relative weights of the overall-similarity terms.
// Normalization happens over whichever terms are present, so the weights do
// not need to sum to 1.
type CompositeWeights struct {
	CodeBLEU       float64
	EditDistance   float64
	SubtreeOverlap float64
	Jaccard        float64
}

// DefaultCompositeWeights mirror the established experiment configuration.
func DefaultCompositeWeights() CompositeWeights {
	return CompositeWeights{
		CodeBLEU:       0.30,
		EditDistance:   0.25,
		SubtreeOverlap: 0.20,
		Jaccard:        0.25,
	}
}

// Weights of the Jaccard blend folded into the overall score.
var jaccardBlendWeights = []struct {
	metric string
	weight float64
}{
	{MetricIdentifiers, 0.4},
	{MetricTreeNames, 0.3},
	{MetricWords, 0.2},
	{MetricTokens, 0.1},
}

// CompositeScorer merges heterogeneous, independently-failing similarity
// signals into three composite scores. Missing, erroring, or non-numeric
// inputs are skipped rather than coerced to zero, so partial data does not
// bias the mean, and no failure escapes Score as a panic.
type CompositeScorer struct {
	weights CompositeWeights
}

// NewCompositeScorer creates a scorer with the default weights.
func NewCompositeScorer() *CompositeScorer {
	return &CompositeScorer{weights: DefaultCompositeWeights()}
}

// NewCompositeScorerWithWeights creates a scorer with custom weights.
func NewCompositeScorerWithWeights(weights CompositeWeights) *CompositeScorer {
	return &CompositeScorer{weights: weights}
}

// Score merges the Jaccard bundle with the optional collaborator bundles.
// Either collaborator bundle may be nil or errored; the corresponding terms
// are simply omitted. When no term at all is usable, every composite is 0.0
// and the bundle error is set.
func (s *CompositeScorer) Score(jaccard, codebleu, treedist *MetricBundle) (result *MetricBundle) {
	result = NewMetricBundle()
	defer func() {
		if r := recover(); r != nil {
			result = NewMetricBundle()
			result.Set(MetricOverallSimilarity, 0.0)
			result.Set(MetricStructuralSimilarity, 0.0)
			result.Set(MetricSemanticSimilarity, 0.0)
			result.SetError(fmt.Sprintf("composite scoring failed: %v", r))
		}
	}()

	var scores, weights []float64

	codebleuScore, hasCodeBLEU := bundleFloat(codebleu, "codebleu")
	if hasCodeBLEU {
		scores = append(scores, codebleuScore)
		weights = append(weights, s.weights.CodeBLEU)
	}

	if distance, ok := bundleFloat(treedist, MetricASTEditDistance); ok {
		scores = append(scores, 1.0/(1.0+distance/10.0))
		weights = append(weights, s.weights.EditDistance)
	}

	overlap, hasOverlap := bundleFloat(treedist, MetricSubtreeOverlapRatio)
	if hasOverlap {
		scores = append(scores, overlap)
		weights = append(weights, s.weights.SubtreeOverlap)
	}

	if blend, ok := s.jaccardBlend(jaccard); ok {
		scores = append(scores, blend)
		weights = append(weights, s.weights.Jaccard)
	}

	overall := 0.0
	if len(scores) > 0 {
		sum, weightSum := 0.0, 0.0
		for i, score := range scores {
			sum += score * weights[i]
			weightSum += weights[i]
		}
		overall = sum / weightSum
	} else {
		result.SetError("no usable similarity signals")
	}
	result.Set(MetricOverallSimilarity, overall)

	var structural []float64
	if histDistance, ok := bundleFloat(treedist, MetricNodeHistogramDistance); ok {
		structural = append(structural, 1.0-histDistance)
	}
	if hasOverlap {
		structural = append(structural, overlap)
	}
	result.Set(MetricStructuralSimilarity, mean(structural))

	var semantic []float64
	if hasCodeBLEU {
		semantic = append(semantic, codebleuScore)
	}
	if identifiers, ok := bundleFloat(jaccard, MetricIdentifiers); ok {
		semantic = append(semantic, identifiers)
	}
	result.Set(MetricSemanticSimilarity, mean(semantic))

	return result
}

// jaccardBlend folds the per-strategy Jaccard coefficients into one weighted
// score, renormalized over the strategies that produced numbers.
func (s *CompositeScorer) jaccardBlend(jaccard *MetricBundle) (float64, bool) {
	sum, weightSum := 0.0, 0.0
	for _, term := range jaccardBlendWeights {
		if value, ok := bundleFloat(jaccard, term.metric); ok {
			sum += value * term.weight
			weightSum += term.weight
		}
	}
	if weightSum == 0 {
		return 0, false
	}
	return sum / weightSum, true
}

// bundleFloat reads a numeric entry from a possibly-nil bundle.
func bundleFloat(bundle *MetricBundle, name string) (float64, bool) {
	if bundle == nil {
		return 0, false
	}
	return bundle.Float(name)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
