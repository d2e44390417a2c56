package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeProfileCollection(t *testing.T) {
	source := `import os
from sys import path

GLOBAL_LIMIT = 10

def compute(a, b):
    total = a + b
    return total

class DataHolder:
    def __init__(self, value):
        self._value = value
`
	analyzerImpl := NewScopeAnalyzer()
	profile := analyzerImpl.Profile(newParsedUnit(t, "a", source))

	assert.Contains(t, profile.Variables, "GLOBAL_LIMIT")
	assert.Contains(t, profile.Variables, "total")
	assert.Len(t, profile.Variables, 2)

	assert.Contains(t, profile.Imports, "os")
	assert.Contains(t, profile.FromImports, "path")

	assert.Equal(t, []string{"compute", "__init__"}, profile.Functions)
	assert.Equal(t, []string{"DataHolder"}, profile.Classes)
	assert.Equal(t, []string{"a", "b", "self", "value"}, profile.Parameters)

	// GLOBAL_LIMIT and total are name stores; the attribute target is not
	assert.Equal(t, 2, profile.Assignments)
	// a, b, total, self, value are loads
	assert.Equal(t, 5, profile.Loads)

	// global, function_compute, class_DataHolder, function___init__
	assert.Len(t, profile.ScopeVariables, 4)
	assert.Contains(t, profile.ScopeVariables["function_compute"], "total")
	assert.Contains(t, profile.ScopeVariables["global"], "GLOBAL_LIMIT")
}

func TestScopeBundleMetrics(t *testing.T) {
	source := `import os
from sys import path

GLOBAL_LIMIT = 10

def compute(a, b):
    total = a + b
    return total

class DataHolder:
    def __init__(self, value):
        self._value = value
`
	bundle := NewScopeAnalyzer().Analyze(newParsedUnit(t, "a", source))

	assert.Empty(t, bundle.Error())
	assert.Equal(t, 2.0, metricValue(t, bundle, "variable_count"))
	assert.Equal(t, 1.0, metricValue(t, bundle, "import_count"))
	assert.Equal(t, 1.0, metricValue(t, bundle, "from_import_count"))
	assert.Equal(t, 2.0, metricValue(t, bundle, "unique_imports"))
	assert.Equal(t, 4.0, metricValue(t, bundle, "function_parameter_count"))
	assert.Equal(t, 4.0, metricValue(t, bundle, "unique_parameter_count"))
	assert.Equal(t, 0.0, metricValue(t, bundle, "parameter_reuse_ratio"))
	assert.Equal(t, 4.0, metricValue(t, bundle, "scope_count"))
	assert.InDelta(t, 2.0/5.0, metricValue(t, bundle, "assignment_to_load_ratio"), 1e-9)
}

func TestNamingScores(t *testing.T) {
	source := `MAX_SIZE = 10
snake_name = 1
_private = 2

def do_work():
    pass

class GoodName:
    pass
`
	bundle := NewScopeAnalyzer().Analyze(newParsedUnit(t, "a", source))

	// snake_name and _private match snake_case; MAX_SIZE does not
	assert.Equal(t, 2.0, metricValue(t, bundle, "snake_case_variables"))
	assert.Equal(t, 1.0, metricValue(t, bundle, "constant_variables"))
	assert.Equal(t, 1.0, metricValue(t, bundle, "private_variables"))
	assert.Equal(t, 1.0, metricValue(t, bundle, "snake_case_functions"))
	assert.Equal(t, 1.0, metricValue(t, bundle, "pascal_case_classes"))

	assert.InDelta(t, 2.0/3.0, metricValue(t, bundle, "variable_naming_score"), 1e-9)
	assert.InDelta(t, 1.0, metricValue(t, bundle, "function_naming_score"), 1e-9)
	assert.InDelta(t, 1.0, metricValue(t, bundle, "class_naming_score"), 1e-9)
	assert.InDelta(t, 4.0/5.0, metricValue(t, bundle, "overall_naming_score"), 1e-9)
}

func TestNamingScoresDefaultToOne(t *testing.T) {
	bundle := NewScopeAnalyzer().Analyze(newParsedUnit(t, "a", "1 + 1\n"))

	assert.Equal(t, 1.0, metricValue(t, bundle, "variable_naming_score"))
	assert.Equal(t, 1.0, metricValue(t, bundle, "function_naming_score"))
	assert.Equal(t, 1.0, metricValue(t, bundle, "class_naming_score"))
	assert.Equal(t, 1.0, metricValue(t, bundle, "overall_naming_score"))
}

func TestMagicFunctions(t *testing.T) {
	source := `class Box:
    def __init__(self):
        pass

    def __repr__(self):
        return "Box"

    def size(self):
        return 1
`
	bundle := NewScopeAnalyzer().Analyze(newParsedUnit(t, "a", source))

	assert.Equal(t, 2.0, metricValue(t, bundle, "magic_functions"))
}

func TestGlobalAndNonlocalDeclarations(t *testing.T) {
	source := `counter = 0

def bump():
    global counter
    counter = counter + 1

def outer():
    x = 1
    def inner():
        nonlocal x
        x = 2
`
	profile := NewScopeAnalyzer().Profile(newParsedUnit(t, "a", source))

	assert.Contains(t, profile.GlobalDecls, "counter")
	assert.Contains(t, profile.NonlocalDecls, "x")
}

func TestForLoopTargetIsStore(t *testing.T) {
	profile := NewScopeAnalyzer().Profile(newParsedUnit(t, "a", "for i in items:\n    use(i)\n"))

	assert.Contains(t, profile.Variables, "i")
	// items, use, i (inside the call) are loads
	assert.Equal(t, 3, profile.Loads)
}

func TestScopesParseFailure(t *testing.T) {
	bundle := NewScopeAnalyzer().Analyze(newUnit(t, "a", "def broken(:\n"))

	require.NotEmpty(t, bundle.Error())
	assert.Equal(t, 0.0, metricValue(t, bundle, "variable_count"))
	assert.Equal(t, 0.0, metricValue(t, bundle, "overall_naming_score"))
}
