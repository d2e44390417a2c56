package analyzer

import (
	"regexp"

	"github.com/variantlab/codesim/internal/parser"
)

// ScopeProfile holds everything the scope walk collects before it is
// flattened into a metric bundle.
type ScopeProfile struct {
	Variables      map[string]struct{}
	GlobalDecls    map[string]struct{}
	NonlocalDecls  map[string]struct{}
	Imports        map[string]struct{}
	FromImports    map[string]struct{}
	Parameters     []string
	ParamFrequency map[string]int
	Assignments    int
	Loads          int
	ScopeVariables map[string]map[string]struct{}
	Functions      []string
	Classes        []string
}

// ScopeAnalyzer performs a stack-based scope walk over a unit's tree,
// tracking variable stores and loads, declarations, imports, and parameter
// usage, and classifies collected names against naming conventions.
type ScopeAnalyzer struct{}

// NewScopeAnalyzer creates an analyzer.
func NewScopeAnalyzer() *ScopeAnalyzer {
	return &ScopeAnalyzer{}
}

// Analyze runs the scope walk and returns the flat bundle. Parse failure
// yields the all-zero bundle with the diagnostic in the error field.
func (a *ScopeAnalyzer) Analyze(unit *SourceUnit) *MetricBundle {
	if !unit.Parsed() {
		bundle := a.zeroBundle()
		bundle.SetError("parse failure: " + unit.ParseErr)
		return bundle
	}
	return a.bundle(a.Profile(unit))
}

// Profile runs the scope walk and returns the raw collection. The zero
// profile is returned for unparsed units.
func (a *ScopeAnalyzer) Profile(unit *SourceUnit) *ScopeProfile {
	profile := newScopeProfile()
	if !unit.Parsed() {
		return profile
	}

	walker := &scopeWalker{profile: profile, scopes: []string{"global"}}
	walker.visit(unit.AST, false)
	return profile
}

func newScopeProfile() *ScopeProfile {
	return &ScopeProfile{
		Variables:      make(map[string]struct{}),
		GlobalDecls:    make(map[string]struct{}),
		NonlocalDecls:  make(map[string]struct{}),
		Imports:        make(map[string]struct{}),
		FromImports:    make(map[string]struct{}),
		ParamFrequency: make(map[string]int),
		ScopeVariables: map[string]map[string]struct{}{"global": {}},
	}
}

// scopeWalker threads the explicit scope stack through the traversal.
type scopeWalker struct {
	profile *ScopeProfile
	scopes  []string
}

func (w *scopeWalker) current() string {
	return w.scopes[len(w.scopes)-1]
}

func (w *scopeWalker) push(scope string) {
	w.scopes = append(w.scopes, scope)
	if _, ok := w.profile.ScopeVariables[scope]; !ok {
		w.profile.ScopeVariables[scope] = make(map[string]struct{})
	}
}

func (w *scopeWalker) pop() {
	w.scopes = w.scopes[:len(w.scopes)-1]
}

// visit walks one node. store marks whether the node sits in assignment
// target position.
func (w *scopeWalker) visit(node *parser.Node, store bool) {
	if node == nil {
		return
	}

	switch node.Kind {
	case parser.KindName:
		if store {
			w.profile.Variables[node.Name] = struct{}{}
			w.profile.ScopeVariables[w.current()][node.Name] = struct{}{}
			w.profile.Assignments++
		} else {
			w.profile.Loads++
		}
		return

	case parser.KindAttribute:
		// The attribute itself is never a variable; its receiver is a load
		// even in target position (obj.field = x loads obj).
		w.visit(node.Value, false)
		return

	case parser.KindAssign, parser.KindAugAssign:
		for _, target := range node.Targets {
			w.visit(target, true)
		}
		w.visit(node.Value, false)
		return

	case parser.KindFor:
		for _, target := range node.Targets {
			w.visit(target, true)
		}
		w.visit(node.Value, false)
		w.visitAll(node.Body)
		w.visitAll(node.Children)
		return

	case parser.KindFunctionDef:
		w.profile.Functions = append(w.profile.Functions, node.Name)
		for _, arg := range node.Args {
			w.profile.Parameters = append(w.profile.Parameters, arg.Name)
			w.profile.ParamFrequency[arg.Name]++
		}
		w.visitAll(node.Decorators)
		w.push("function_" + node.Name)
		w.visitAll(node.Body)
		w.pop()
		return

	case parser.KindClassDef:
		w.profile.Classes = append(w.profile.Classes, node.Name)
		w.visitAll(node.Decorators)
		w.visitAll(node.Bases)
		w.push("class_" + node.Name)
		w.visitAll(node.Body)
		w.pop()
		return

	case parser.KindGlobal:
		for _, name := range node.Names {
			w.profile.GlobalDecls[name] = struct{}{}
		}
		return

	case parser.KindNonlocal:
		for _, name := range node.Names {
			w.profile.NonlocalDecls[name] = struct{}{}
		}
		return

	case parser.KindImport:
		for _, name := range node.Names {
			w.profile.Imports[name] = struct{}{}
		}
		return

	case parser.KindImportFrom:
		for _, name := range node.Names {
			w.profile.FromImports[name] = struct{}{}
		}
		return
	}

	for _, child := range node.ChildNodes() {
		w.visit(child, false)
	}
}

func (w *scopeWalker) visitAll(nodes []*parser.Node) {
	for _, node := range nodes {
		w.visit(node, false)
	}
}

// Naming convention patterns.
var (
	snakeCaseRe  = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	pascalCaseRe = regexp.MustCompile(`^[A-Z][a-zA-Z0-9]*$`)
	constantRe   = regexp.MustCompile(`^[A-Z_][A-Z0-9_]*$`)
	privateRe    = regexp.MustCompile(`^_[a-zA-Z0-9_]*$`)
	magicRe      = regexp.MustCompile(`^__[a-zA-Z0-9_]*__$`)
)

func (a *ScopeAnalyzer) bundle(profile *ScopeProfile) *MetricBundle {
	snakeVars := countMatching(keysOf(profile.Variables), snakeCaseRe)
	constVars := countMatching(keysOf(profile.Variables), constantRe)
	privateVars := countMatching(keysOf(profile.Variables), privateRe)
	snakeFuncs := countMatching(profile.Functions, snakeCaseRe)
	magicFuncs := countMatching(profile.Functions, magicRe)
	pascalClasses := countMatching(profile.Classes, pascalCaseRe)

	totalVars := len(profile.Variables)
	totalFuncs := len(profile.Functions)
	totalClasses := len(profile.Classes)

	assignmentToLoad := 0.0
	if profile.Loads > 0 {
		assignmentToLoad = float64(profile.Assignments) / float64(profile.Loads)
	}

	paramReuse := 0.0
	if len(profile.Parameters) > 0 {
		paramReuse = float64(len(profile.Parameters)-len(profile.ParamFrequency)) /
			float64(len(profile.Parameters))
	}

	bundle := NewMetricBundle()
	bundle.Set("variable_count", float64(totalVars))
	bundle.Set("global_variable_count", float64(len(profile.GlobalDecls)))
	bundle.Set("nonlocal_variable_count", float64(len(profile.NonlocalDecls)))
	bundle.Set("import_count", float64(len(profile.Imports)))
	bundle.Set("from_import_count", float64(len(profile.FromImports)))
	bundle.Set("unique_imports", float64(len(profile.Imports)+len(profile.FromImports)))
	bundle.Set("variable_assignments", float64(profile.Assignments))
	bundle.Set("variable_loads", float64(profile.Loads))
	bundle.Set("assignment_to_load_ratio", assignmentToLoad)
	bundle.Set("function_parameter_count", float64(len(profile.Parameters)))
	bundle.Set("unique_parameter_count", float64(len(profile.ParamFrequency)))
	bundle.Set("parameter_reuse_ratio", paramReuse)
	bundle.Set("scope_count", float64(len(profile.ScopeVariables)))
	bundle.Set("snake_case_variables", float64(snakeVars))
	bundle.Set("constant_variables", float64(constVars))
	bundle.Set("private_variables", float64(privateVars))
	bundle.Set("snake_case_functions", float64(snakeFuncs))
	bundle.Set("magic_functions", float64(magicFuncs))
	bundle.Set("pascal_case_classes", float64(pascalClasses))
	bundle.Set("variable_naming_score", complianceRatio(snakeVars, totalVars))
	bundle.Set("function_naming_score", complianceRatio(snakeFuncs, totalFuncs))
	bundle.Set("class_naming_score", complianceRatio(pascalClasses, totalClasses))
	bundle.Set("overall_naming_score", complianceRatio(
		snakeVars+snakeFuncs+pascalClasses, totalVars+totalFuncs+totalClasses))
	return bundle
}

func (a *ScopeAnalyzer) zeroBundle() *MetricBundle {
	bundle := NewMetricBundle()
	for _, name := range []string{
		"variable_count", "global_variable_count", "nonlocal_variable_count",
		"import_count", "from_import_count", "unique_imports",
		"variable_assignments", "variable_loads", "assignment_to_load_ratio",
		"function_parameter_count", "unique_parameter_count", "parameter_reuse_ratio",
		"scope_count",
		"snake_case_variables", "constant_variables", "private_variables",
		"snake_case_functions", "magic_functions", "pascal_case_classes",
		"variable_naming_score", "function_naming_score", "class_naming_score",
		"overall_naming_score",
	} {
		bundle.Set(name, 0)
	}
	return bundle
}

// complianceRatio is compliant/total, 1.0 when there is nothing to judge.
func complianceRatio(compliant, total int) float64 {
	if total == 0 {
		return 1.0
	}
	return float64(compliant) / float64(total)
}

func countMatching(names []string, pattern *regexp.Regexp) int {
	count := 0
	for _, name := range names {
		if pattern.MatchString(name) {
			count++
		}
	}
	return count
}

func keysOf(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	return keys
}
