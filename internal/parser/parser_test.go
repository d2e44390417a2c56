package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSource(t *testing.T, source string) *Node {
	t.Helper()
	result, err := New().Parse(context.Background(), []byte(source))
	require.NoError(t, err)
	require.False(t, result.Degraded, "expected source to parse cleanly: %s", result.ParseErr)
	require.NotNil(t, result.AST)
	return result.AST
}

func TestParseModule(t *testing.T) {
	ast := parseSource(t, "x = 1\ny = 2\n")

	assert.Equal(t, KindModule, ast.Kind)
	assert.Len(t, ast.Body, 2)
	assert.Equal(t, KindAssign, ast.Body[0].Kind)
}

func TestParseDegradedSource(t *testing.T) {
	result, err := New().Parse(context.Background(), []byte("def broken(:\n"))
	require.NoError(t, err)

	assert.True(t, result.Degraded)
	assert.Nil(t, result.AST)
	assert.NotEmpty(t, result.ParseErr)
}

func TestParseEmptySource(t *testing.T) {
	result, err := New().Parse(context.Background(), []byte(""))
	require.NoError(t, err)

	assert.False(t, result.Degraded)
	require.NotNil(t, result.AST)
	assert.Empty(t, result.AST.Body)
}

func TestFunctionDefinition(t *testing.T) {
	ast := parseSource(t, "def top(a, b=1):\n    return a\n")

	funcs := ast.FindByKind(KindFunctionDef)
	require.Len(t, funcs, 1)
	fn := funcs[0]

	assert.Equal(t, "top", fn.Name)
	require.Len(t, fn.Args, 2)
	assert.Equal(t, "a", fn.Args[0].Name)
	assert.Equal(t, "b", fn.Args[1].Name)
	assert.NotEmpty(t, fn.Body)
}

func TestClassDefinitionWithBases(t *testing.T) {
	source := `class Base:
    pass

class Child(Base):
    def method(self, x):
        return x
`
	ast := parseSource(t, source)

	classes := ast.FindByKind(KindClassDef)
	require.Len(t, classes, 2)

	child := classes[1]
	assert.Equal(t, "Child", child.Name)
	require.Len(t, child.Bases, 1)
	assert.Equal(t, "Base", child.Bases[0].Name)

	methods := child.FindByKind(KindFunctionDef)
	require.Len(t, methods, 1)
	assert.Equal(t, "method", methods[0].Name)
	assert.Len(t, methods[0].Args, 2)
}

func TestDecoratedDefinition(t *testing.T) {
	source := `class Box:
    @property
    def value(self):
        return self._value
`
	ast := parseSource(t, source)

	methods := ast.FindByKind(KindFunctionDef)
	require.Len(t, methods, 1)
	require.Len(t, methods[0].Decorators, 1)
	assert.Equal(t, "property", methods[0].Decorators[0].Name)
}

func TestCompareOperatorMerging(t *testing.T) {
	tests := []struct {
		name   string
		source string
		ops    []string
	}{
		{"is not", "x = a is not b\n", []string{"is not"}},
		{"not in", "x = a not in b\n", []string{"not in"}},
		{"plain", "x = a < b\n", []string{"<"}},
		{"chained", "x = a < b <= c\n", []string{"<", "<="}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ast := parseSource(t, tt.source)
			compares := ast.FindByKind(KindCompare)
			require.Len(t, compares, 1)
			assert.Equal(t, tt.ops, compares[0].Ops)
		})
	}
}

func TestAugmentedAssignmentOperator(t *testing.T) {
	ast := parseSource(t, "x += 2\n")

	augs := ast.FindByKind(KindAugAssign)
	require.Len(t, augs, 1)
	assert.Equal(t, "+", augs[0].Op)
}

func TestUnaryAndBooleanOperators(t *testing.T) {
	ast := parseSource(t, "x = not a and -b\n")

	bools := ast.FindByKind(KindBoolOp)
	require.Len(t, bools, 1)
	assert.Equal(t, "and", bools[0].Op)

	unaries := ast.FindByKind(KindUnaryOp)
	require.Len(t, unaries, 2)
	assert.Equal(t, "not", unaries[0].Op)
	assert.Equal(t, "-", unaries[1].Op)
}

func TestConstantKinds(t *testing.T) {
	ast := parseSource(t, "a = 1\nb = \"s\"\nc = True\nd = None\n")

	constants := ast.FindByKind(KindConstant)
	require.Len(t, constants, 4)
	assert.Equal(t, ConstNumber, constants[0].Const)
	assert.Equal(t, ConstString, constants[1].Const)
	assert.Equal(t, ConstBool, constants[2].Const)
	assert.Equal(t, ConstNone, constants[3].Const)
}

func TestImports(t *testing.T) {
	ast := parseSource(t, "import os\nimport numpy as np\nfrom sys import path\n")

	imports := ast.FindByKind(KindImport)
	require.Len(t, imports, 2)
	assert.Equal(t, []string{"os"}, imports[0].Names)
	assert.Equal(t, []string{"np"}, imports[1].Names)

	fromImports := ast.FindByKind(KindImportFrom)
	require.Len(t, fromImports, 1)
	assert.Equal(t, "sys", fromImports[0].Name)
	assert.Equal(t, []string{"path"}, fromImports[0].Names)
}

func TestAttributeCall(t *testing.T) {
	ast := parseSource(t, "result = helper.run(1)\n")

	calls := ast.FindByKind(KindCall)
	require.Len(t, calls, 1)
	call := calls[0]

	require.NotNil(t, call.Func)
	assert.Equal(t, KindAttribute, call.Func.Kind)
	assert.Equal(t, "run", call.Func.Name)
	require.NotNil(t, call.Func.Value)
	assert.Equal(t, "helper", call.Func.Value.Name)
	assert.Len(t, call.Args, 1)
}

func TestForLoopTargets(t *testing.T) {
	ast := parseSource(t, "for i, v in pairs:\n    pass\n")

	loops := ast.FindByKind(KindFor)
	require.Len(t, loops, 1)
	loop := loops[0]

	require.Len(t, loop.Targets, 2)
	assert.Equal(t, "i", loop.Targets[0].Name)
	assert.Equal(t, "v", loop.Targets[1].Name)
	require.NotNil(t, loop.Value)
	assert.Equal(t, "pairs", loop.Value.Name)
}

func TestGlobalAndNonlocal(t *testing.T) {
	source := `def f():
    global counter, total
    def g():
        nonlocal x
`
	ast := parseSource(t, source)

	globals := ast.FindByKind(KindGlobal)
	require.Len(t, globals, 1)
	assert.Equal(t, []string{"counter", "total"}, globals[0].Names)

	nonlocals := ast.FindByKind(KindNonlocal)
	require.Len(t, nonlocals, 1)
	assert.Equal(t, []string{"x"}, nonlocals[0].Names)
}

func TestWalkStopsDescent(t *testing.T) {
	ast := parseSource(t, "def f():\n    x = 1\n")

	var kinds []NodeKind
	ast.Walk(func(node *Node) bool {
		kinds = append(kinds, node.Kind)
		return node.Kind != KindFunctionDef
	})

	assert.Equal(t, []NodeKind{KindModule, KindFunctionDef}, kinds)
}

func TestCountNodes(t *testing.T) {
	ast := parseSource(t, "x = 1\n")
	// module, assign, name, constant
	assert.Equal(t, 4, ast.CountNodes())
}
