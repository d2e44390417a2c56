package analyzer

// Jaccard computes the Jaccard similarity coefficient |A∩B| / |A∪B| between
// two token sets. Two empty sets are identical by convention (1.0).
func Jaccard(a, b *TokenSet) float64 {
	if a.Empty() && b.Empty() {
		return 1.0
	}

	intersection := 0
	for token := range a.tokens {
		if b.Has(token) {
			intersection++
		}
	}
	union := a.Len() + b.Len() - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// Jaccard metric names, one per tokenization strategy.
const (
	MetricTokens      = "tokens"
	MetricWords       = "words"
	MetricIdentifiers = "identifiers"
	MetricKeywords    = "keywords"
	MetricTreeNames   = "tree_names"
)

var strategyMetricNames = map[Strategy]string{
	StrategyLexical:    MetricTokens,
	StrategyWord:       MetricWords,
	StrategyIdentifier: MetricIdentifiers,
	StrategyKeyword:    MetricKeywords,
	StrategyTreeName:   MetricTreeNames,
}

// JaccardCalculator computes per-strategy Jaccard similarities between two
// source units.
type JaccardCalculator struct {
	tokenizer *Tokenizer
}

// NewJaccardCalculator creates a calculator.
func NewJaccardCalculator() *JaccardCalculator {
	return &JaccardCalculator{tokenizer: NewTokenizer()}
}

// Compare tokenizes both units with every strategy and returns one Jaccard
// coefficient per strategy. The bundle-level error is set only when neither
// unit could be parsed, flagging that every tree-derived signal ran in its
// degraded fallback.
func (c *JaccardCalculator) Compare(a, b *SourceUnit) *MetricBundle {
	bundle := NewMetricBundle()

	tokensA := c.tokenizer.Tokenize(a)
	tokensB := c.tokenizer.Tokenize(b)
	for _, strategy := range Strategies {
		bundle.Set(strategyMetricNames[strategy], Jaccard(tokensA[strategy], tokensB[strategy]))
	}

	if !a.Parsed() && !b.Parsed() {
		bundle.SetError("both units failed to parse; token sets derived from degraded stripping")
	}
	return bundle
}
