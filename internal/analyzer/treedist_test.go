package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeDistanceIdenticalSources(t *testing.T) {
	source := "def f(a):\n    return a + 1\n"
	a := newParsedUnit(t, "a", source)
	b := newParsedUnit(t, "b", source)

	bundle := NewTreeDistanceCalculator().Compute(a, b)

	assert.Empty(t, bundle.Error())
	assert.Equal(t, 0.0, metricValue(t, bundle, MetricASTEditDistance))
	assert.Equal(t, 0.0, metricValue(t, bundle, MetricTSED))
	assert.Equal(t, 0.0, metricValue(t, bundle, MetricNodeHistogramDistance))
	assert.Equal(t, 1.0, metricValue(t, bundle, MetricSubtreeOverlapRatio))
}

func TestTreeDistanceLiteralChange(t *testing.T) {
	a := newParsedUnit(t, "a", "x = 1\n")
	b := newParsedUnit(t, "b", "x = 2\n")

	bundle := NewTreeDistanceCalculator().Compute(a, b)

	// One substituted constant
	assert.Equal(t, 1.0, metricValue(t, bundle, MetricASTEditDistance))
	assert.Equal(t, 1.0, metricValue(t, bundle, MetricTSED))
	// Node kinds are identical, so the histogram sees no difference
	assert.Equal(t, 0.0, metricValue(t, bundle, MetricNodeHistogramDistance))

	overlap := metricValue(t, bundle, MetricSubtreeOverlapRatio)
	assert.Greater(t, overlap, 0.0)
	assert.Less(t, overlap, 1.0)
}

func TestTSEDWeighsDefinitionsHeavier(t *testing.T) {
	a := newParsedUnit(t, "a", "def f():\n    pass\n")
	b := newParsedUnit(t, "b", "def g():\n    pass\n")

	bundle := NewTreeDistanceCalculator().Compute(a, b)

	plain := metricValue(t, bundle, MetricASTEditDistance)
	weighted := metricValue(t, bundle, MetricTSED)
	assert.Equal(t, 1.0, plain)
	assert.Equal(t, 3.0, weighted)
}

func TestHistogramDistanceDisjointShapes(t *testing.T) {
	a := newParsedUnit(t, "a", "import os\n")
	b := newParsedUnit(t, "b", "x = 1\n")

	bundle := NewTreeDistanceCalculator().Compute(a, b)

	distance := metricValue(t, bundle, MetricNodeHistogramDistance)
	assert.Greater(t, distance, 0.0)
	assert.LessOrEqual(t, distance, 1.0)
}

func TestTreeDistanceSymmetry(t *testing.T) {
	a := newParsedUnit(t, "a", "def f(a, b):\n    return a * b\n")
	b := newParsedUnit(t, "b", "class C:\n    pass\n")

	calc := NewTreeDistanceCalculator()
	forward := calc.Compute(a, b)
	backward := calc.Compute(b, a)

	for _, name := range forward.Names() {
		assert.InDelta(t,
			metricValue(t, forward, name),
			metricValue(t, backward, name),
			1e-9, "metric %s must be symmetric", name)
	}
}

func TestTreeDistanceUnparsedUnit(t *testing.T) {
	a := newParsedUnit(t, "a", "x = 1\n")
	b := newUnit(t, "b", "def broken(:\n")

	bundle := NewTreeDistanceCalculator().Compute(a, b)

	assert.NotEmpty(t, bundle.Error())
	assert.Equal(t, 0, bundle.Len(), "no distances are reported without both trees")
	_, ok := bundle.Float(MetricASTEditDistance)
	assert.False(t, ok)
}

func TestSubtreeOverlapSharedFunction(t *testing.T) {
	shared := "def add(a, b):\n    return a + b\n"
	a := newParsedUnit(t, "a", shared+"\ndef extra():\n    pass\n")
	b := newParsedUnit(t, "b", shared)

	bundle := NewTreeDistanceCalculator().Compute(a, b)

	overlap := metricValue(t, bundle, MetricSubtreeOverlapRatio)
	assert.Greater(t, overlap, 0.0, "the shared function contributes common subtrees")
	assert.Less(t, overlap, 1.0)
}

func TestEditTreeUsesNamesAndLiterals(t *testing.T) {
	unit := newParsedUnit(t, "a", "x = 1\n")
	tree := toEditTree(unit.AST)

	require.Equal(t, "Module", tree.label)
	require.Len(t, tree.children, 1)
	assign := tree.children[0]
	require.Len(t, assign.children, 2)
	assert.Equal(t, "x", assign.children[0].value)
	assert.Equal(t, "1", assign.children[1].value)
}
