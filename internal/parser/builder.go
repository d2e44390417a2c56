package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// builder converts tree-sitter parse trees into the reduced AST.
type builder struct {
	source []byte
}

func newBuilder(source []byte) *builder {
	return &builder{source: source}
}

func (b *builder) text(node *sitter.Node) string {
	return node.Content(b.source)
}

func (b *builder) build(tsNode *sitter.Node) *Node {
	if tsNode == nil {
		return nil
	}

	switch tsNode.Type() {
	case "module":
		return b.buildModule(tsNode)
	case "function_definition":
		return b.buildFunctionDef(tsNode)
	case "class_definition":
		return b.buildClassDef(tsNode)
	case "decorated_definition":
		return b.buildDecoratedDefinition(tsNode)
	case "assignment":
		return b.buildAssignment(tsNode)
	case "augmented_assignment":
		return b.buildAugmentedAssignment(tsNode)
	case "binary_operator":
		return b.buildBinaryOp(tsNode)
	case "unary_operator":
		return b.buildUnaryOp(tsNode)
	case "not_operator":
		return b.buildNotOp(tsNode)
	case "boolean_operator":
		return b.buildBoolOp(tsNode)
	case "comparison_operator":
		return b.buildCompare(tsNode)
	case "call":
		return b.buildCall(tsNode)
	case "attribute":
		return b.buildAttribute(tsNode)
	case "identifier":
		return b.buildName(tsNode)
	case "integer", "float", "string", "concatenated_string", "true", "false", "none":
		return b.buildConstant(tsNode)
	case "import_statement":
		return b.buildImport(tsNode)
	case "import_from_statement":
		return b.buildImportFrom(tsNode)
	case "global_statement":
		return b.buildNameList(tsNode, KindGlobal)
	case "nonlocal_statement":
		return b.buildNameList(tsNode, KindNonlocal)
	case "for_statement":
		return b.buildFor(tsNode)
	case "expression_statement":
		// Unwrap single-expression statements so analyzers see the
		// expression directly, as Python's ast module presents them.
		if tsNode.NamedChildCount() == 1 {
			return b.build(tsNode.NamedChild(0))
		}
		return b.buildGeneric(tsNode)
	case "comment":
		return nil
	default:
		return b.buildGeneric(tsNode)
	}
}

func (b *builder) buildModule(tsNode *sitter.Node) *Node {
	node := b.node(KindModule, tsNode)
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		if stmt := b.build(tsNode.NamedChild(i)); stmt != nil {
			node.Body = append(node.Body, stmt)
		}
	}
	return node
}

func (b *builder) buildFunctionDef(tsNode *sitter.Node) *Node {
	node := b.node(KindFunctionDef, tsNode)
	if name := tsNode.ChildByFieldName("name"); name != nil {
		node.Name = b.text(name)
	}
	if params := tsNode.ChildByFieldName("parameters"); params != nil {
		node.Args = b.buildParameters(params)
	}
	if body := tsNode.ChildByFieldName("body"); body != nil {
		node.Body = b.buildBlock(body)
	}
	return node
}

// buildParameters flattens a parameter list into KindArg nodes. Typed,
// defaulted, and splat parameters all reduce to their bare name.
func (b *builder) buildParameters(params *sitter.Node) []*Node {
	var args []*Node
	for i := 0; i < int(params.NamedChildCount()); i++ {
		child := params.NamedChild(i)
		name := ""
		switch child.Type() {
		case "identifier":
			name = b.text(child)
		case "typed_parameter", "list_splat_pattern", "dictionary_splat_pattern":
			if inner := firstNamedOfType(child, "identifier"); inner != nil {
				name = b.text(inner)
			}
		case "default_parameter", "typed_default_parameter":
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				name = b.text(nameNode)
			}
		default:
			continue
		}
		if name == "" {
			continue
		}
		arg := b.node(KindArg, child)
		arg.Name = name
		args = append(args, arg)
	}
	return args
}

func (b *builder) buildClassDef(tsNode *sitter.Node) *Node {
	node := b.node(KindClassDef, tsNode)
	if name := tsNode.ChildByFieldName("name"); name != nil {
		node.Name = b.text(name)
	}
	if supers := tsNode.ChildByFieldName("superclasses"); supers != nil {
		for i := 0; i < int(supers.NamedChildCount()); i++ {
			if base := b.build(supers.NamedChild(i)); base != nil {
				node.Bases = append(node.Bases, base)
			}
		}
	}
	if body := tsNode.ChildByFieldName("body"); body != nil {
		node.Body = b.buildBlock(body)
	}
	return node
}

func (b *builder) buildDecoratedDefinition(tsNode *sitter.Node) *Node {
	var decorators []*Node
	var definition *Node
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child.Type() == "decorator" {
			decorators = append(decorators, b.buildDecorator(child))
			continue
		}
		definition = b.build(child)
	}
	if definition == nil {
		return b.buildGeneric(tsNode)
	}
	definition.Decorators = decorators
	return definition
}

// buildDecorator records the decorator name only when the decorator is a bare
// identifier; @property style flags are the only consumers.
func (b *builder) buildDecorator(tsNode *sitter.Node) *Node {
	node := b.node(KindDecorator, tsNode)
	if tsNode.NamedChildCount() > 0 {
		expr := tsNode.NamedChild(0)
		if expr.Type() == "identifier" {
			node.Name = b.text(expr)
		} else if inner := b.build(expr); inner != nil {
			node.Children = append(node.Children, inner)
		}
	}
	return node
}

func (b *builder) buildAssignment(tsNode *sitter.Node) *Node {
	node := b.node(KindAssign, tsNode)
	if left := tsNode.ChildByFieldName("left"); left != nil {
		node.Targets = b.buildTargets(left)
	}
	if right := tsNode.ChildByFieldName("right"); right != nil {
		node.Value = b.build(right)
	}
	return node
}

func (b *builder) buildAugmentedAssignment(tsNode *sitter.Node) *Node {
	node := b.node(KindAugAssign, tsNode)
	if left := tsNode.ChildByFieldName("left"); left != nil {
		node.Targets = b.buildTargets(left)
	}
	if op := tsNode.ChildByFieldName("operator"); op != nil {
		node.Op = strings.TrimSuffix(b.text(op), "=")
	}
	if right := tsNode.ChildByFieldName("right"); right != nil {
		node.Value = b.build(right)
	}
	return node
}

// buildTargets splits tuple and list targets into individual target nodes.
// Attribute and subscript targets are kept structured so the scope walk can
// treat their receivers as loads.
func (b *builder) buildTargets(tsNode *sitter.Node) []*Node {
	switch tsNode.Type() {
	case "pattern_list", "tuple_pattern", "list_pattern", "tuple", "list":
		var targets []*Node
		for i := 0; i < int(tsNode.NamedChildCount()); i++ {
			targets = append(targets, b.buildTargets(tsNode.NamedChild(i))...)
		}
		return targets
	default:
		if target := b.build(tsNode); target != nil {
			return []*Node{target}
		}
		return nil
	}
}

func (b *builder) buildBinaryOp(tsNode *sitter.Node) *Node {
	node := b.node(KindBinOp, tsNode)
	if op := tsNode.ChildByFieldName("operator"); op != nil {
		node.Op = b.text(op)
	}
	if left := tsNode.ChildByFieldName("left"); left != nil {
		node.Children = append(node.Children, b.build(left))
	}
	if right := tsNode.ChildByFieldName("right"); right != nil {
		node.Children = append(node.Children, b.build(right))
	}
	node.Children = compact(node.Children)
	return node
}

func (b *builder) buildUnaryOp(tsNode *sitter.Node) *Node {
	node := b.node(KindUnaryOp, tsNode)
	if op := tsNode.ChildByFieldName("operator"); op != nil {
		node.Op = b.text(op)
	}
	if operand := tsNode.ChildByFieldName("argument"); operand != nil {
		node.Value = b.build(operand)
	}
	return node
}

func (b *builder) buildNotOp(tsNode *sitter.Node) *Node {
	node := b.node(KindUnaryOp, tsNode)
	node.Op = "not"
	if operand := tsNode.ChildByFieldName("argument"); operand != nil {
		node.Value = b.build(operand)
	}
	return node
}

func (b *builder) buildBoolOp(tsNode *sitter.Node) *Node {
	node := b.node(KindBoolOp, tsNode)
	if op := tsNode.ChildByFieldName("operator"); op != nil {
		node.Op = b.text(op)
	}
	if left := tsNode.ChildByFieldName("left"); left != nil {
		node.Children = append(node.Children, b.build(left))
	}
	if right := tsNode.ChildByFieldName("right"); right != nil {
		node.Children = append(node.Children, b.build(right))
	}
	node.Children = compact(node.Children)
	return node
}

// buildCompare collects every operator of a chained comparison. Two-token
// operators ("is not", "not in") arrive as separate anonymous tokens and are
// merged back together.
func (b *builder) buildCompare(tsNode *sitter.Node) *Node {
	node := b.node(KindCompare, tsNode)
	var pending string
	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child.IsNamed() {
			if operand := b.build(child); operand != nil {
				node.Children = append(node.Children, operand)
			}
			continue
		}
		token := b.text(child)
		switch {
		case pending == "is" && token == "not":
			node.Ops[len(node.Ops)-1] = "is not"
			pending = ""
		case pending == "not" && token == "in":
			node.Ops[len(node.Ops)-1] = "not in"
			pending = ""
		default:
			node.Ops = append(node.Ops, token)
			pending = token
		}
	}
	return node
}

func (b *builder) buildCall(tsNode *sitter.Node) *Node {
	node := b.node(KindCall, tsNode)
	if fn := tsNode.ChildByFieldName("function"); fn != nil {
		node.Func = b.build(fn)
	}
	if args := tsNode.ChildByFieldName("arguments"); args != nil {
		for i := 0; i < int(args.NamedChildCount()); i++ {
			if arg := b.build(args.NamedChild(i)); arg != nil {
				node.Args = append(node.Args, arg)
			}
		}
	}
	return node
}

func (b *builder) buildAttribute(tsNode *sitter.Node) *Node {
	node := b.node(KindAttribute, tsNode)
	if object := tsNode.ChildByFieldName("object"); object != nil {
		node.Value = b.build(object)
	}
	if attr := tsNode.ChildByFieldName("attribute"); attr != nil {
		node.Name = b.text(attr)
	}
	return node
}

func (b *builder) buildName(tsNode *sitter.Node) *Node {
	node := b.node(KindName, tsNode)
	node.Name = b.text(tsNode)
	return node
}

func (b *builder) buildConstant(tsNode *sitter.Node) *Node {
	node := b.node(KindConstant, tsNode)
	node.Lit = b.text(tsNode)
	switch tsNode.Type() {
	case "string", "concatenated_string":
		node.Const = ConstString
	case "integer", "float":
		node.Const = ConstNumber
	case "true", "false":
		node.Const = ConstBool
	default:
		node.Const = ConstNone
	}
	return node
}

func (b *builder) buildImport(tsNode *sitter.Node) *Node {
	node := b.node(KindImport, tsNode)
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		if name := b.importedName(tsNode.NamedChild(i)); name != "" {
			node.Names = append(node.Names, name)
		}
	}
	return node
}

func (b *builder) buildImportFrom(tsNode *sitter.Node) *Node {
	node := b.node(KindImportFrom, tsNode)
	module := tsNode.ChildByFieldName("module_name")
	if module != nil {
		node.Name = b.text(module)
	}
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if module != nil && child.StartByte() == module.StartByte() {
			continue
		}
		if name := b.importedName(child); name != "" {
			node.Names = append(node.Names, name)
		}
	}
	return node
}

// importedName resolves an import clause to its binding name: the alias when
// one is given, the dotted name otherwise.
func (b *builder) importedName(tsNode *sitter.Node) string {
	switch tsNode.Type() {
	case "dotted_name", "relative_import":
		return b.text(tsNode)
	case "aliased_import":
		if alias := tsNode.ChildByFieldName("alias"); alias != nil {
			return b.text(alias)
		}
		if name := tsNode.ChildByFieldName("name"); name != nil {
			return b.text(name)
		}
	case "wildcard_import":
		return "*"
	}
	return ""
}

func (b *builder) buildNameList(tsNode *sitter.Node, kind NodeKind) *Node {
	node := b.node(kind, tsNode)
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child.Type() == "identifier" {
			node.Names = append(node.Names, b.text(child))
		}
	}
	return node
}

func (b *builder) buildFor(tsNode *sitter.Node) *Node {
	node := b.node(KindFor, tsNode)
	if left := tsNode.ChildByFieldName("left"); left != nil {
		node.Targets = b.buildTargets(left)
	}
	if right := tsNode.ChildByFieldName("right"); right != nil {
		node.Value = b.build(right)
	}
	if body := tsNode.ChildByFieldName("body"); body != nil {
		node.Body = b.buildBlock(body)
	}
	if alt := tsNode.ChildByFieldName("alternative"); alt != nil {
		if orelse := b.build(alt); orelse != nil {
			node.Children = append(node.Children, orelse)
		}
	}
	return node
}

func (b *builder) buildGeneric(tsNode *sitter.Node) *Node {
	node := b.node(KindOther, tsNode)
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		if child := b.build(tsNode.NamedChild(i)); child != nil {
			node.Children = append(node.Children, child)
		}
	}
	return node
}

// buildBlock flattens a block node into its statements.
func (b *builder) buildBlock(tsNode *sitter.Node) []*Node {
	if tsNode.Type() != "block" {
		if single := b.build(tsNode); single != nil {
			return []*Node{single}
		}
		return nil
	}
	var body []*Node
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		if stmt := b.build(tsNode.NamedChild(i)); stmt != nil {
			body = append(body, stmt)
		}
	}
	return body
}

func (b *builder) node(kind NodeKind, tsNode *sitter.Node) *Node {
	node := NewNode(kind, tsNode.Type())
	node.Line = int(tsNode.StartPoint().Row) + 1
	return node
}

func firstNamedOfType(tsNode *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		if child := tsNode.NamedChild(i); child.Type() == nodeType {
			return child
		}
	}
	return nil
}

func compact(nodes []*Node) []*Node {
	out := nodes[:0]
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}
