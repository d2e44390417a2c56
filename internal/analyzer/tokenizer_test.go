package analyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUnit(t *testing.T, id, source string) *SourceUnit {
	t.Helper()
	unit, err := NewSourceUnit(context.Background(), id, source)
	require.NoError(t, err)
	return unit
}

func newParsedUnit(t *testing.T, id, source string) *SourceUnit {
	t.Helper()
	unit := newUnit(t, id, source)
	require.True(t, unit.Parsed(), "expected source to parse: %s", unit.ParseErr)
	return unit
}

func tokenList(set *TokenSet) []string {
	var tokens []string
	for token := range set.tokens {
		tokens = append(tokens, token)
	}
	return tokens
}

func TestWordsExtraction(t *testing.T) {
	unit := newParsedUnit(t, "a", "def add(a, b):\n    return a + b\n")
	words := NewTokenizer().Words(unit)

	assert.Equal(t, 5, words.Len())
	for _, expected := range []string{"def", "add", "a", "b", "return"} {
		assert.True(t, words.Has(expected), "missing word %q", expected)
	}
}

func TestIdentifiersExcludeKeywordsAndBuiltins(t *testing.T) {
	unit := newParsedUnit(t, "a", "def show(items):\n    print(len(items))\n    return True\n")
	identifiers := NewTokenizer().Identifiers(unit)

	assert.True(t, identifiers.Has("show"))
	assert.True(t, identifiers.Has("items"))
	assert.False(t, identifiers.Has("def"), "keywords are not identifiers")
	assert.False(t, identifiers.Has("return"))
	assert.False(t, identifiers.Has("true"), "casefolded keywords are excluded")
	assert.False(t, identifiers.Has("print"), "builtins are excluded")
	assert.False(t, identifiers.Has("len"))
}

func TestKeywordsExtraction(t *testing.T) {
	unit := newParsedUnit(t, "a", "def add(a, b):\n    return a + b\n")
	keywords := NewTokenizer().Keywords(unit)

	assert.Equal(t, 2, keywords.Len())
	assert.True(t, keywords.Has("def"))
	assert.True(t, keywords.Has("return"))
}

func TestStrategySetRelations(t *testing.T) {
	source := `class Counter:
    def bump(self, amount=1):
        if amount is not None and amount > 0:
            self.total += amount
        return self.total
`
	unit := newParsedUnit(t, "a", source)
	tokenizer := NewTokenizer()

	words := tokenizer.Words(unit)
	identifiers := tokenizer.Identifiers(unit)
	keywords := tokenizer.Keywords(unit)

	for _, token := range tokenList(identifiers) {
		assert.True(t, words.Has(token), "identifier %q must be a word", token)
		assert.False(t, keywords.Has(token), "identifier %q must not be a keyword", token)
	}
	for _, token := range tokenList(keywords) {
		assert.True(t, words.Has(token), "keyword %q must be a word", token)
	}
	assert.Equal(t, words.Len(), identifiers.Len()+keywords.Len())
}

func TestLexicalIncludesPunctuation(t *testing.T) {
	unit := newParsedUnit(t, "a", "def add(a, b):\n    return a + b\n")
	lexical := NewTokenizer().Lexical(unit)

	for _, expected := range []string{"def", "add", "(", ")", ",", ":", "+"} {
		assert.True(t, lexical.Has(expected), "missing lexical token %q", expected)
	}
}

func TestCommentsAreStripped(t *testing.T) {
	unit := newParsedUnit(t, "a", "x = 1  # seventeen apples\n")
	tokenizer := NewTokenizer()

	words := tokenizer.Words(unit)
	assert.True(t, words.Has("x"))
	assert.False(t, words.Has("seventeen"))
	assert.False(t, words.Has("apples"))
}

func TestTreeNames(t *testing.T) {
	source := `class Shape:
    def area(self):
        return self.width * self.height
`
	unit := newParsedUnit(t, "a", source)
	treeNames := NewTokenizer().TreeNames(unit)

	for _, expected := range []string{"shape", "area", "self", "width", "height"} {
		assert.True(t, treeNames.Has(expected), "missing tree name %q", expected)
	}
	assert.False(t, treeNames.Has("class"), "keywords never appear in tree names")
	assert.False(t, treeNames.Has("return"))
}

func TestTreeNamesFallbackWhenUnparsed(t *testing.T) {
	unit := newUnit(t, "a", "def broken(:\n")
	require.False(t, unit.Parsed())

	tokenizer := NewTokenizer()
	treeNames := tokenizer.TreeNames(unit)
	words := tokenizer.Words(unit)

	assert.Equal(t, StrategyTreeName, treeNames.Strategy)
	assert.Equal(t, words.Len(), treeNames.Len())
	assert.True(t, treeNames.Has("def"))
	assert.True(t, treeNames.Has("broken"))
}

func TestTokenizeRunsAllStrategies(t *testing.T) {
	unit := newParsedUnit(t, "a", "x = 1\n")
	sets := NewTokenizer().Tokenize(unit)

	require.Len(t, sets, len(Strategies))
	for _, strategy := range Strategies {
		set, ok := sets[strategy]
		require.True(t, ok, "missing strategy %s", strategy)
		assert.Equal(t, strategy, set.Strategy)
	}
}

func TestEmptySourceYieldsEmptySets(t *testing.T) {
	unit := newParsedUnit(t, "a", "")
	sets := NewTokenizer().Tokenize(unit)

	for strategy, set := range sets {
		assert.True(t, set.Empty(), "strategy %s should be empty", strategy)
	}
}
