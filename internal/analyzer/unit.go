package analyzer

import (
	"context"

	"github.com/variantlab/codesim/internal/parser"
)

// SourceUnit bundles one variant's raw text with its parsed syntax tree.
// AST is nil when the source failed to parse; ParseErr then carries the
// diagnostic. Units are immutable once constructed.
type SourceUnit struct {
	ID       string
	Source   string
	AST      *parser.Node
	ParseErr string
}

// NewSourceUnit parses the source and constructs a unit. Unparsable source
// still yields a usable unit (AST nil, ParseErr set); the returned error is
// reserved for caller contract violations such as a cancelled context.
func NewSourceUnit(ctx context.Context, id, source string) (*SourceUnit, error) {
	result, err := parser.New().Parse(ctx, []byte(source))
	if err != nil {
		return nil, err
	}

	unit := &SourceUnit{ID: id, Source: source}
	if result.Degraded {
		unit.ParseErr = result.ParseErr
	} else {
		unit.AST = result.AST
	}
	return unit, nil
}

// Parsed reports whether the unit has a syntax tree.
func (u *SourceUnit) Parsed() bool {
	return u.AST != nil
}
