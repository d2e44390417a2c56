package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextualIdenticalSources(t *testing.T) {
	source := "def f():\n    return 1\n"
	a := newParsedUnit(t, "a", source)
	b := newParsedUnit(t, "b", source)

	bundle := NewTextualComparator().Compare(a, b)

	assert.Empty(t, bundle.Error())
	assert.InDelta(t, 1.0, metricValue(t, bundle, MetricLevenshteinSimilarity), 1e-6)
	assert.InDelta(t, 1.0, metricValue(t, bundle, MetricJaroWinkler), 1e-6)
}

func TestTextualDifferentSources(t *testing.T) {
	a := newParsedUnit(t, "a", "def f():\n    return 1\n")
	b := newParsedUnit(t, "b", "def g():\n    return 2\n")

	bundle := NewTextualComparator().Compare(a, b)

	lev := metricValue(t, bundle, MetricLevenshteinSimilarity)
	assert.Greater(t, lev, 0.0)
	assert.Less(t, lev, 1.0)
}

func TestTextualWorksWithoutTrees(t *testing.T) {
	a := newUnit(t, "a", "def broken(:\n")
	b := newUnit(t, "b", "def broken(:\n")

	bundle := NewTextualComparator().Compare(a, b)

	assert.Empty(t, bundle.Error())
	assert.InDelta(t, 1.0, metricValue(t, bundle, MetricLevenshteinSimilarity), 1e-6)
}
