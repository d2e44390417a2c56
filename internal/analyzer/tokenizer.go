package analyzer

import (
	"regexp"
	"strings"

	"github.com/variantlab/codesim/internal/parser"
)

// Strategy names a tokenization method.
type Strategy string

const (
	StrategyLexical    Strategy = "lexical"
	StrategyWord       Strategy = "word"
	StrategyIdentifier Strategy = "identifier"
	StrategyKeyword    Strategy = "keyword"
	StrategyTreeName   Strategy = "tree_name"
)

// Strategies lists all tokenization strategies in their canonical order.
var Strategies = []Strategy{
	StrategyLexical,
	StrategyWord,
	StrategyIdentifier,
	StrategyKeyword,
	StrategyTreeName,
}

// TokenSet is a set of case-normalized tokens tagged with the strategy that
// produced it.
type TokenSet struct {
	Strategy Strategy
	tokens   map[string]struct{}
}

// NewTokenSet creates an empty token set for a strategy.
func NewTokenSet(strategy Strategy) *TokenSet {
	return &TokenSet{Strategy: strategy, tokens: make(map[string]struct{})}
}

// Add inserts a token.
func (s *TokenSet) Add(token string) {
	s.tokens[token] = struct{}{}
}

// Has reports membership.
func (s *TokenSet) Has(token string) bool {
	_, ok := s.tokens[token]
	return ok
}

// Len returns the set size.
func (s *TokenSet) Len() int {
	return len(s.tokens)
}

// Empty reports whether the set has no tokens.
func (s *TokenSet) Empty() bool {
	return len(s.tokens) == 0
}

// Python reserved keywords (keyword.kwlist), casefolded to match the
// casefolded word tokens.
var pythonKeywords = newStringSet(
	"false", "none", "true", "and", "as", "assert", "async", "await",
	"break", "class", "continue", "def", "del", "elif", "else", "except",
	"finally", "for", "from", "global", "if", "import", "in", "is",
	"lambda", "nonlocal", "not", "or", "pass", "raise", "return", "try",
	"while", "with", "yield",
)

// Common builtin names excluded from the identifier strategy.
var pythonBuiltins = newStringSet(
	"int", "str", "list", "dict", "set", "tuple", "bool", "float",
	"len", "range", "print", "input", "open", "file", "type", "object",
)

var (
	lexicalTokenRe = regexp.MustCompile(`\w+|[^\w\s]`)
	wordRe         = regexp.MustCompile(`\b[a-zA-Z_][a-zA-Z0-9_]*\b`)
	lineCommentRe  = regexp.MustCompile(`(?m)#.*$`)
	tripleDoubleRe = regexp.MustCompile(`(?s)""".*?"""`)
	tripleSingleRe = regexp.MustCompile(`(?s)'''.*?'''`)
)

// Tokenizer extracts token sets from source units using the five strategies.
type Tokenizer struct{}

// NewTokenizer creates a Tokenizer.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

// Tokenize runs all strategies against a unit.
func (t *Tokenizer) Tokenize(unit *SourceUnit) map[Strategy]*TokenSet {
	return map[Strategy]*TokenSet{
		StrategyLexical:    t.Lexical(unit),
		StrategyWord:       t.Words(unit),
		StrategyIdentifier: t.Identifiers(unit),
		StrategyKeyword:    t.Keywords(unit),
		StrategyTreeName:   t.TreeNames(unit),
	}
}

// Lexical splits the comment-stripped source into word-or-punctuation tokens,
// casefolded.
func (t *Tokenizer) Lexical(unit *SourceUnit) *TokenSet {
	set := NewTokenSet(StrategyLexical)
	stripped := stripComments(unit.Source, unit.Parsed())
	for _, token := range lexicalTokenRe.FindAllString(stripped, -1) {
		token = strings.TrimSpace(token)
		if token != "" {
			set.Add(strings.ToLower(token))
		}
	}
	return set
}

// Words extracts identifier-shaped substrings, casefolded.
func (t *Tokenizer) Words(unit *SourceUnit) *TokenSet {
	set := NewTokenSet(StrategyWord)
	stripped := stripComments(unit.Source, unit.Parsed())
	for _, word := range wordRe.FindAllString(stripped, -1) {
		set.Add(strings.ToLower(word))
	}
	return set
}

// Identifiers returns word tokens minus reserved keywords and builtins.
func (t *Tokenizer) Identifiers(unit *SourceUnit) *TokenSet {
	set := NewTokenSet(StrategyIdentifier)
	for word := range t.Words(unit).tokens {
		if _, isKeyword := pythonKeywords[word]; isKeyword {
			continue
		}
		if _, isBuiltin := pythonBuiltins[word]; isBuiltin {
			continue
		}
		set.Add(word)
	}
	return set
}

// Keywords returns word tokens intersected with the reserved keyword set.
func (t *Tokenizer) Keywords(unit *SourceUnit) *TokenSet {
	set := NewTokenSet(StrategyKeyword)
	for word := range t.Words(unit).tokens {
		if _, isKeyword := pythonKeywords[word]; isKeyword {
			set.Add(word)
		}
	}
	return set
}

// TreeNames walks the syntax tree collecting variable references, definition
// names, and attribute accesses, casefolded. Falls back to the word strategy
// when the unit failed to parse.
func (t *Tokenizer) TreeNames(unit *SourceUnit) *TokenSet {
	if !unit.Parsed() {
		set := t.Words(unit)
		set.Strategy = StrategyTreeName
		return set
	}

	set := NewTokenSet(StrategyTreeName)
	unit.AST.Walk(func(node *parser.Node) bool {
		switch node.Kind {
		case parser.KindName, parser.KindFunctionDef, parser.KindClassDef, parser.KindAttribute:
			if node.Name != "" {
				set.Add(strings.ToLower(node.Name))
			}
		}
		return true
	})
	return set
}

// stripComments removes comments (and, in degraded mode, triple-quoted
// strings) before lexical tokenization. The parsed path cuts each line at
// its first '#', which also clips hash characters inside string literals; a
// known imprecision shared by both comparison sides. The degraded path adds
// regex-based triple-quote removal since no tree is available to consult.
func stripComments(source string, parsed bool) string {
	if !parsed {
		source = lineCommentRe.ReplaceAllString(source, "")
		source = tripleDoubleRe.ReplaceAllString(source, "")
		source = tripleSingleRe.ReplaceAllString(source, "")
	}

	lines := strings.Split(source, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		if parsed {
			if idx := strings.IndexByte(line, '#'); idx >= 0 {
				line = line[:idx]
			}
		}
		if strings.TrimSpace(line) != "" {
			filtered = append(filtered, line)
		}
	}
	return strings.Join(filtered, "\n")
}

func newStringSet(items ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
