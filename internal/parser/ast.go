package parser

// NodeKind identifies the syntax constructs the metric engine dispatches on.
// Anything outside this closed set is built as KindOther and traversal simply
// recurses into its children.
type NodeKind string

const (
	KindModule      NodeKind = "Module"
	KindFunctionDef NodeKind = "FunctionDef"
	KindClassDef    NodeKind = "ClassDef"
	KindAssign      NodeKind = "Assign"
	KindAugAssign   NodeKind = "AugAssign"
	KindBinOp       NodeKind = "BinOp"
	KindUnaryOp     NodeKind = "UnaryOp"
	KindBoolOp      NodeKind = "BoolOp"
	KindCompare     NodeKind = "Compare"
	KindCall        NodeKind = "Call"
	KindAttribute   NodeKind = "Attribute"
	KindName        NodeKind = "Name"
	KindConstant    NodeKind = "Constant"
	KindImport      NodeKind = "Import"
	KindImportFrom  NodeKind = "ImportFrom"
	KindGlobal      NodeKind = "Global"
	KindNonlocal    NodeKind = "Nonlocal"
	KindFor         NodeKind = "For"
	KindArg         NodeKind = "Arg"
	KindDecorator   NodeKind = "Decorator"
	KindOther       NodeKind = "Other"
)

// ConstKind tags literal constants.
type ConstKind int

const (
	ConstNone ConstKind = iota
	ConstString
	ConstNumber
	ConstBool
)

// Node is a Python AST node reduced to the shape the metric analyzers need.
// Every child lives in exactly one slot, so a walk visits each node once.
type Node struct {
	Kind  NodeKind
	Raw   string    // original tree-sitter node type
	Name  string    // def names, identifiers, attribute names
	Op    string    // operator token for BinOp/UnaryOp/BoolOp/AugAssign
	Ops   []string  // operator tokens of a chained comparison, in order
	Const ConstKind // valid when Kind == KindConstant
	Lit   string    // source text of a constant
	Names []string  // Global/Nonlocal/Import name lists
	Line  int

	Targets    []*Node // assignment and loop targets (store context)
	Value      *Node   // assigned value, unary operand, attribute receiver, loop iterable
	Func       *Node   // call callee
	Args       []*Node // function parameters or call arguments
	Bases      []*Node // class bases
	Decorators []*Node
	Body       []*Node
	Children   []*Node // everything else, evaluation-ordered
}

// NewNode creates a node of the given kind.
func NewNode(kind NodeKind, raw string) *Node {
	return &Node{Kind: kind, Raw: raw}
}

// Label returns the histogram label for the node: the kind for recognized
// constructs, the raw tree-sitter type otherwise.
func (n *Node) Label() string {
	if n.Kind == KindOther {
		return n.Raw
	}
	return string(n.Kind)
}

// ChildNodes returns every child slot in a stable order.
func (n *Node) ChildNodes() []*Node {
	out := make([]*Node, 0, len(n.Targets)+len(n.Args)+len(n.Bases)+
		len(n.Decorators)+len(n.Body)+len(n.Children)+2)
	out = append(out, n.Targets...)
	if n.Value != nil {
		out = append(out, n.Value)
	}
	if n.Func != nil {
		out = append(out, n.Func)
	}
	out = append(out, n.Args...)
	out = append(out, n.Bases...)
	out = append(out, n.Decorators...)
	out = append(out, n.Body...)
	out = append(out, n.Children...)
	return out
}

// Walk traverses the subtree in pre-order. Returning false from the visitor
// skips the node's children.
func (n *Node) Walk(visit func(*Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, child := range n.ChildNodes() {
		child.Walk(visit)
	}
}

// Find collects all nodes matching the predicate.
func (n *Node) Find(predicate func(*Node) bool) []*Node {
	var results []*Node
	n.Walk(func(node *Node) bool {
		if predicate(node) {
			results = append(results, node)
		}
		return true
	})
	return results
}

// FindByKind collects all nodes of the given kind.
func (n *Node) FindByKind(kind NodeKind) []*Node {
	return n.Find(func(node *Node) bool { return node.Kind == kind })
}

// CountNodes returns the number of nodes in the subtree.
func (n *Node) CountNodes() int {
	count := 0
	n.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}
