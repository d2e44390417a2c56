package analyzer

import (
	"github.com/variantlab/codesim/internal/parser"
)

// The operator category sets are closed, so each histogram is a record with
// named integer fields rather than a dynamically-keyed map.

// BinaryOps tallies binary operator occurrences.
type BinaryOps struct {
	Add, Sub, Mult, Div, FloorDiv, Mod, Pow int
	LShift, RShift, BitOr, BitXor, BitAnd   int
	MatMult                                 int
}

// Record tallies one operator token; unknown tokens are ignored.
func (o *BinaryOps) Record(op string) {
	switch op {
	case "+":
		o.Add++
	case "-":
		o.Sub++
	case "*":
		o.Mult++
	case "/":
		o.Div++
	case "//":
		o.FloorDiv++
	case "%":
		o.Mod++
	case "**":
		o.Pow++
	case "<<":
		o.LShift++
	case ">>":
		o.RShift++
	case "|":
		o.BitOr++
	case "^":
		o.BitXor++
	case "&":
		o.BitAnd++
	case "@":
		o.MatMult++
	}
}

// Arithmetic returns the arithmetic operator subtotal.
func (o *BinaryOps) Arithmetic() int {
	return o.Add + o.Sub + o.Mult + o.Div + o.FloorDiv + o.Mod + o.Pow
}

// Bitwise returns the bitwise operator subtotal (shifts included).
func (o *BinaryOps) Bitwise() int {
	return o.BitAnd + o.BitOr + o.BitXor + o.LShift + o.RShift
}

// Total returns the grand binary operator count.
func (o *BinaryOps) Total() int {
	return o.Arithmetic() + o.Bitwise() + o.MatMult
}

// Unique returns the number of distinct binary operators used.
func (o *BinaryOps) Unique() int {
	return countPositive(o.Add, o.Sub, o.Mult, o.Div, o.FloorDiv, o.Mod, o.Pow,
		o.LShift, o.RShift, o.BitOr, o.BitXor, o.BitAnd, o.MatMult)
}

// CompareOps tallies comparison operator occurrences.
type CompareOps struct {
	Eq, NotEq, Lt, LtE, Gt, GtE int
	Is, IsNot, In, NotIn        int
}

// Record tallies one comparison token; unknown tokens are ignored.
func (o *CompareOps) Record(op string) {
	switch op {
	case "==":
		o.Eq++
	case "!=", "<>":
		o.NotEq++
	case "<":
		o.Lt++
	case "<=":
		o.LtE++
	case ">":
		o.Gt++
	case ">=":
		o.GtE++
	case "is":
		o.Is++
	case "is not":
		o.IsNot++
	case "in":
		o.In++
	case "not in":
		o.NotIn++
	}
}

// Total returns the grand comparison operator count.
func (o *CompareOps) Total() int {
	return o.Eq + o.NotEq + o.Lt + o.LtE + o.Gt + o.GtE + o.Is + o.IsNot + o.In + o.NotIn
}

// Unique returns the number of distinct comparison operators used.
func (o *CompareOps) Unique() int {
	return countPositive(o.Eq, o.NotEq, o.Lt, o.LtE, o.Gt, o.GtE, o.Is, o.IsNot, o.In, o.NotIn)
}

// BoolOps tallies boolean operator occurrences.
type BoolOps struct {
	And, Or int
}

// Record tallies one boolean token; unknown tokens are ignored.
func (o *BoolOps) Record(op string) {
	switch op {
	case "and":
		o.And++
	case "or":
		o.Or++
	}
}

// Total returns the grand boolean operator count.
func (o *BoolOps) Total() int {
	return o.And + o.Or
}

// Unique returns the number of distinct boolean operators used.
func (o *BoolOps) Unique() int {
	return countPositive(o.And, o.Or)
}

// UnaryOps tallies unary operator occurrences.
type UnaryOps struct {
	UAdd, USub, Not, Invert int
}

// Record tallies one unary token; unknown tokens are ignored.
func (o *UnaryOps) Record(op string) {
	switch op {
	case "+":
		o.UAdd++
	case "-":
		o.USub++
	case "not":
		o.Not++
	case "~":
		o.Invert++
	}
}

// Total returns the grand unary operator count.
func (o *UnaryOps) Total() int {
	return o.UAdd + o.USub + o.Not + o.Invert
}

// Unique returns the number of distinct unary operators used.
func (o *UnaryOps) Unique() int {
	return countPositive(o.UAdd, o.USub, o.Not, o.Invert)
}

// operatorProfile accumulates every histogram during one tree walk.
type operatorProfile struct {
	binary    BinaryOps
	compare   CompareOps
	boolean   BoolOps
	unary     UnaryOps
	augAssign BinaryOps // augmented-assignment ops share the binary token set

	stringLiterals  int
	numberLiterals  int
	booleanLiterals int
	noneLiterals    int

	maxDepth int
}

// OperatorProfiler categorizes operator and literal usage and derives a
// weighted complexity score.
type OperatorProfiler struct{}

// NewOperatorProfiler creates a profiler.
func NewOperatorProfiler() *OperatorProfiler {
	return &OperatorProfiler{}
}

// Analyze profiles the unit's operator usage. Parse failure yields the
// all-zero bundle with the diagnostic in the error field.
func (p *OperatorProfiler) Analyze(unit *SourceUnit) *MetricBundle {
	if !unit.Parsed() {
		bundle := p.zeroBundle()
		bundle.SetError("parse failure: " + unit.ParseErr)
		return bundle
	}

	profile := &operatorProfile{}
	p.walk(unit.AST, 0, profile)
	return p.bundle(profile)
}

// walk traverses the tree tracking nesting depth: depth counts the
// binary/compare/bool-op ancestors of the current node.
func (p *OperatorProfiler) walk(node *parser.Node, depth int, profile *operatorProfile) {
	if node == nil {
		return
	}

	childDepth := depth
	switch node.Kind {
	case parser.KindBinOp:
		profile.binary.Record(node.Op)
		childDepth = depth + 1
	case parser.KindCompare:
		for _, op := range node.Ops {
			profile.compare.Record(op)
		}
		childDepth = depth + 1
	case parser.KindBoolOp:
		profile.boolean.Record(node.Op)
		childDepth = depth + 1
	case parser.KindUnaryOp:
		profile.unary.Record(node.Op)
	case parser.KindAugAssign:
		profile.augAssign.Record(node.Op)
	case parser.KindConstant:
		switch node.Const {
		case parser.ConstString:
			profile.stringLiterals++
		case parser.ConstNumber:
			profile.numberLiterals++
		case parser.ConstBool:
			profile.booleanLiterals++
		case parser.ConstNone:
			profile.noneLiterals++
		}
	}
	if childDepth > profile.maxDepth {
		profile.maxDepth = childDepth
	}

	for _, child := range node.ChildNodes() {
		p.walk(child, childDepth, profile)
	}
}

// Complexity weights per operator category.
const (
	weightArithmetic = 1.0
	weightBitwise    = 2.0
	weightComparison = 1.0
	weightLogical    = 1.0
	weightAugAssign  = 1.5
)

func (p *OperatorProfiler) bundle(profile *operatorProfile) *MetricBundle {
	totalBinary := profile.binary.Total()
	totalCompare := profile.compare.Total()
	totalBool := profile.boolean.Total()
	totalUnary := profile.unary.Total()
	totalAug := profile.augAssign.Total()
	totalOperators := totalBinary + totalCompare + totalBool + totalUnary + totalAug

	totalLiterals := profile.stringLiterals + profile.numberLiterals +
		profile.booleanLiterals + profile.noneLiterals

	complexity := float64(profile.binary.Arithmetic())*weightArithmetic +
		float64(profile.binary.Bitwise())*weightBitwise +
		float64(totalCompare)*weightComparison +
		float64(totalBool)*weightLogical +
		float64(totalAug)*weightAugAssign

	operatorsPerLiteral := 0.0
	if totalLiterals > 0 {
		operatorsPerLiteral = float64(totalOperators) / float64(totalLiterals)
	}

	bundle := NewMetricBundle()
	bundle.Set("total_binary_ops", float64(totalBinary))
	bundle.Set("total_comparison_ops", float64(totalCompare))
	bundle.Set("total_boolean_ops", float64(totalBool))
	bundle.Set("total_unary_ops", float64(totalUnary))
	bundle.Set("total_augmented_assignment", float64(totalAug))
	bundle.Set("total_operators", float64(totalOperators))
	bundle.Set("string_literal_count", float64(profile.stringLiterals))
	bundle.Set("number_literal_count", float64(profile.numberLiterals))
	bundle.Set("boolean_literal_count", float64(profile.booleanLiterals))
	bundle.Set("none_literal_count", float64(profile.noneLiterals))
	bundle.Set("total_literals", float64(totalLiterals))
	bundle.Set("max_expression_depth", float64(profile.maxDepth))
	bundle.Set("operator_complexity_score", complexity)
	bundle.Set("operators_per_literal", operatorsPerLiteral)
	bundle.Set("arithmetic_operators", float64(profile.binary.Arithmetic()))
	bundle.Set("bitwise_operators", float64(profile.binary.Bitwise()))
	bundle.Set("logical_operators", float64(totalBool+totalCompare))
	bundle.Set("assignment_operators", float64(totalAug))
	bundle.Set("unique_binary_ops", float64(profile.binary.Unique()))
	bundle.Set("unique_comparison_ops", float64(profile.compare.Unique()))
	bundle.Set("unique_boolean_ops", float64(profile.boolean.Unique()))
	bundle.Set("unique_unary_ops", float64(profile.unary.Unique()))
	bundle.Set("total_unique_operators", float64(profile.binary.Unique()+
		profile.compare.Unique()+profile.boolean.Unique()+
		profile.unary.Unique()+profile.augAssign.Unique()))
	return bundle
}

func (p *OperatorProfiler) zeroBundle() *MetricBundle {
	return p.bundle(&operatorProfile{})
}

func countPositive(counts ...int) int {
	n := 0
	for _, c := range counts {
		if c > 0 {
			n++
		}
	}
	return n
}
