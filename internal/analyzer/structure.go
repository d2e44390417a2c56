package analyzer

import (
	"strings"

	"github.com/variantlab/codesim/internal/parser"
)

// methodInfo describes one method of an analyzed class.
type methodInfo struct {
	name          string
	paramCount    int
	isProperty    bool
	isStatic      bool
	isClassMethod bool
}

// classInfo describes one class definition found in a unit.
type classInfo struct {
	name           string
	bases          []string // simple resolvable names only
	methods        []methodInfo
	attributes     map[string]struct{}
	decoratorCount int
}

// functionInfo describes a standalone function.
type functionInfo struct {
	name       string
	paramCount int
}

// StructuralExtractor derives object-oriented shape metrics from a unit's
// syntax tree: inheritance depth and fan-out, method and attribute counts,
// and a coupling proxy over cross-object attribute calls.
type StructuralExtractor struct{}

// NewStructuralExtractor creates an extractor.
func NewStructuralExtractor() *StructuralExtractor {
	return &StructuralExtractor{}
}

// Analyze walks the unit's tree and returns the flat structural bundle. A
// unit without a tree yields an all-zero bundle with the parse diagnostic in
// the error field; no failure escapes as a panic or error value.
func (e *StructuralExtractor) Analyze(unit *SourceUnit) *MetricBundle {
	if !unit.Parsed() {
		bundle := e.zeroBundle()
		bundle.SetError("parse failure: " + unit.ParseErr)
		return bundle
	}

	classes, functions := e.collectDefinitions(unit.AST)

	inheritance := make(map[string][]string, len(classes))
	for _, class := range classes {
		inheritance[class.name] = class.bases
	}
	dit := depthOfInheritance(inheritance)
	noc := numberOfChildren(inheritance)

	// Coupling is computed once over the whole file's attribute-call set
	// and reported identically for every class. Kept that way on purpose:
	// prior experiment results depend on it (see DESIGN.md).
	coupling := e.countForeignAttributeCalls(unit.AST)

	methodCount := 0
	totalAttributes := 0
	var methodsPerClass []int
	var paramsPerFunction []int
	for _, class := range classes {
		methodCount += len(class.methods)
		totalAttributes += len(class.attributes)
		methodsPerClass = append(methodsPerClass, len(class.methods))
		for _, method := range class.methods {
			paramsPerFunction = append(paramsPerFunction, method.paramCount)
		}
	}
	for _, fn := range functions {
		paramsPerFunction = append(paramsPerFunction, fn.paramCount)
	}

	withInheritance := 0
	for _, bases := range inheritance {
		if len(bases) > 0 {
			withInheritance++
		}
	}

	bundle := NewMetricBundle()
	bundle.Set("class_count", float64(len(classes)))
	bundle.Set("method_count", float64(methodCount))
	bundle.Set("function_count", float64(len(functions)))
	bundle.Set("avg_methods_per_class", meanInts(methodsPerClass))
	bundle.Set("avg_parameters_per_function", meanInts(paramsPerFunction))
	bundle.Set("max_dit", float64(maxValue(dit)))
	bundle.Set("avg_dit", meanValues(dit))
	bundle.Set("max_noc", float64(maxValue(noc)))
	bundle.Set("avg_noc", meanValues(noc))
	bundle.Set("max_cbo", float64(couplingMax(coupling, len(classes))))
	bundle.Set("avg_cbo", couplingAvg(coupling, len(classes)))
	bundle.Set("inheritance_relationships", float64(withInheritance))
	bundle.Set("classes_with_inheritance", float64(withInheritance))
	bundle.Set("total_attributes", float64(totalAttributes))
	return bundle
}

// collectDefinitions gathers classes and standalone functions. A function is
// standalone when no class encloses it, which also counts helpers nested in
// top-level functions.
func (e *StructuralExtractor) collectDefinitions(root *parser.Node) ([]*classInfo, []functionInfo) {
	var classes []*classInfo
	var functions []functionInfo

	var visit func(node *parser.Node, inClass bool)
	visit = func(node *parser.Node, inClass bool) {
		switch node.Kind {
		case parser.KindClassDef:
			classes = append(classes, e.buildClassInfo(node))
			inClass = true
		case parser.KindFunctionDef:
			if !inClass {
				functions = append(functions, functionInfo{name: node.Name, paramCount: len(node.Args)})
			}
		}
		for _, child := range node.ChildNodes() {
			visit(child, inClass)
		}
	}
	visit(root, false)
	return classes, functions
}

func (e *StructuralExtractor) buildClassInfo(node *parser.Node) *classInfo {
	info := &classInfo{
		name:           node.Name,
		attributes:     make(map[string]struct{}),
		decoratorCount: len(node.Decorators),
	}

	// Non-name base expressions (calls, subscripts, attributes) are ignored.
	for _, base := range node.Bases {
		if base.Kind == parser.KindName {
			info.bases = append(info.bases, base.Name)
		}
	}

	for _, item := range node.Body {
		switch item.Kind {
		case parser.KindFunctionDef:
			info.methods = append(info.methods, methodInfo{
				name:          item.Name,
				paramCount:    len(item.Args),
				isProperty:    hasDecorator(item, "property"),
				isStatic:      hasDecorator(item, "staticmethod"),
				isClassMethod: hasDecorator(item, "classmethod"),
			})
		case parser.KindAssign:
			for _, target := range item.Targets {
				if target.Kind == parser.KindName {
					info.attributes[target.Name] = struct{}{}
				}
			}
		}
	}
	return info
}

// countForeignAttributeCalls counts unique attribute-call expressions whose
// receiver is not the "self" name. Chained-call receivers collapse to a
// single "chained" bucket per attribute name.
func (e *StructuralExtractor) countForeignAttributeCalls(root *parser.Node) int {
	calls := make(map[string]struct{})
	root.Walk(func(node *parser.Node) bool {
		if node.Kind != parser.KindCall || node.Func == nil || node.Func.Kind != parser.KindAttribute {
			return true
		}
		receiver := node.Func.Value
		if receiver == nil {
			return true
		}
		switch receiver.Kind {
		case parser.KindName:
			calls[receiver.Name+"."+node.Func.Name] = struct{}{}
		case parser.KindCall:
			calls["chained."+node.Func.Name] = struct{}{}
		}
		return true
	})

	count := 0
	for call := range calls {
		if !strings.HasPrefix(call, "self.") {
			count++
		}
	}
	return count
}

// depthOfInheritance computes DIT per class. A class revisited along its own
// ancestor chain truncates that branch at depth 0; a base with no local
// definition contributes depth 1.
func depthOfInheritance(inheritance map[string][]string) map[string]int {
	dit := make(map[string]int, len(inheritance))
	for name := range inheritance {
		dit[name] = inheritanceDepth(name, inheritance, map[string]bool{})
	}
	return dit
}

func inheritanceDepth(name string, inheritance map[string][]string, visited map[string]bool) int {
	if visited[name] {
		return 0
	}
	bases, known := inheritance[name]
	if !known || len(bases) == 0 {
		return 0
	}

	visited[name] = true
	maxDepth := 0
	for _, base := range bases {
		depth := 1
		if _, local := inheritance[base]; local {
			// Each branch explores its own copy of the visited set so
			// diamond hierarchies are not truncated as cycles.
			depth = 1 + inheritanceDepth(base, inheritance, copyVisited(visited))
		}
		if depth > maxDepth {
			maxDepth = depth
		}
	}
	return maxDepth
}

// numberOfChildren computes NOC: direct subclass count per analyzed class.
func numberOfChildren(inheritance map[string][]string) map[string]int {
	noc := make(map[string]int, len(inheritance))
	for name := range inheritance {
		noc[name] = 0
	}
	for _, bases := range inheritance {
		for _, base := range bases {
			if _, local := noc[base]; local {
				noc[base]++
			}
		}
	}
	return noc
}

func (e *StructuralExtractor) zeroBundle() *MetricBundle {
	bundle := NewMetricBundle()
	for _, name := range []string{
		"class_count", "method_count", "function_count",
		"avg_methods_per_class", "avg_parameters_per_function",
		"max_dit", "avg_dit", "max_noc", "avg_noc",
		"max_cbo", "avg_cbo",
		"inheritance_relationships", "classes_with_inheritance",
		"total_attributes",
	} {
		bundle.Set(name, 0)
	}
	return bundle
}

func hasDecorator(node *parser.Node, name string) bool {
	for _, decorator := range node.Decorators {
		if decorator.Name == name {
			return true
		}
	}
	return false
}

func copyVisited(visited map[string]bool) map[string]bool {
	copied := make(map[string]bool, len(visited))
	for name, seen := range visited {
		copied[name] = seen
	}
	return copied
}

func couplingMax(coupling, classCount int) int {
	if classCount == 0 {
		return 0
	}
	return coupling
}

func couplingAvg(coupling, classCount int) float64 {
	if classCount == 0 {
		return 0
	}
	return float64(coupling)
}

func meanInts(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

func maxValue(values map[string]int) int {
	max := 0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	return max
}

func meanValues(values map[string]int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}
