package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Parser provides Python code parsing capabilities using tree-sitter.
type Parser struct {
	parser *sitter.Parser
}

// New creates a new Parser instance with Python grammar.
func New() *Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	return &Parser{parser: parser}
}

// Result is the outcome of parsing Python source. Invalid input never
// produces a Go error: the result carries Degraded=true, a nil AST, and the
// diagnostic, and callers pick their fallback path from that.
type Result struct {
	AST      *Node
	Degraded bool
	ParseErr string
}

// Parse parses Python source code. Syntax errors in the input yield a
// degraded result rather than an error; the returned error is reserved for
// caller contract violations such as a cancelled context.
func (p *Parser) Parse(ctx context.Context, source []byte) (*Result, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parser aborted: %w", err)
	}

	root := tree.RootNode()
	if diag := firstSyntaxError(root); diag != "" {
		return &Result{Degraded: true, ParseErr: diag}, nil
	}

	ast := newBuilder(source).build(root)
	return &Result{AST: ast}, nil
}

// firstSyntaxError returns a diagnostic for the first error or missing node
// in the tree, or "" when the tree is clean.
func firstSyntaxError(root *sitter.Node) string {
	if !root.HasError() {
		return ""
	}

	diag := "syntax error"
	found := false
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if found || node == nil {
			return
		}
		if node.IsError() || node.IsMissing() {
			point := node.StartPoint()
			diag = fmt.Sprintf("syntax error at line %d, column %d", point.Row+1, point.Column+1)
			found = true
			return
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			walk(node.Child(i))
		}
	}
	walk(root)
	return diag
}
