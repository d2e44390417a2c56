package analyzer

import (
	"crypto/md5"
	"fmt"
	"sort"
	"strings"

	"github.com/variantlab/codesim/internal/parser"
)

// Tree-distance metric names (collaborator interface B).
const (
	MetricASTEditDistance       = "ast_edit_distance"
	MetricTSED                  = "tsed"
	MetricNodeHistogramDistance = "node_histogram_distance"
	MetricSubtreeOverlapRatio   = "subtree_overlap_ratio"
)

// editNode is the reduced tree shape used by the edit-distance routines.
type editNode struct {
	label    string
	value    string
	children []*editNode
}

func (n *editNode) equals(other *editNode) bool {
	return n.label == other.label && n.value == other.value
}

// TreeDistanceCalculator computes syntax-tree distance metrics between two
// units: plain and weighted tree edit distance, node-histogram distance, and
// subtree-overlap ratio.
type TreeDistanceCalculator struct {
	weights map[string]float64
}

// NewTreeDistanceCalculator creates a calculator with the standard label
// weights (definitions weigh 3, control flow 2, everything else 1).
func NewTreeDistanceCalculator() *TreeDistanceCalculator {
	return &TreeDistanceCalculator{
		weights: map[string]float64{
			"FunctionDef":     3,
			"ClassDef":        3,
			"if_statement":    2,
			"For":             2,
			"while_statement": 2,
			"try_statement":   2,
			"Import":          1,
			"ImportFrom":      1,
			"Assign":          1,
		},
	}
}

// Compute returns the tree-distance bundle for a pair of units. When either
// unit lacks a tree the bundle carries only an error; distances are never
// reported as infinities.
func (c *TreeDistanceCalculator) Compute(a, b *SourceUnit) *MetricBundle {
	bundle := NewMetricBundle()
	if !a.Parsed() || !b.Parsed() {
		bundle.SetError(pairParseError(a, b))
		return bundle
	}

	treeA := toEditTree(a.AST)
	treeB := toEditTree(b.AST)

	ted := newEditDistance(func(string) float64 { return 1 })
	bundle.Set(MetricASTEditDistance, ted.distance(treeA, treeB))

	tsed := newEditDistance(func(label string) float64 {
		if w, ok := c.weights[label]; ok {
			return w
		}
		return 1
	})
	bundle.Set(MetricTSED, tsed.distance(treeA, treeB))

	bundle.Set(MetricNodeHistogramDistance, histogramDistance(a.AST, b.AST))
	bundle.Set(MetricSubtreeOverlapRatio, subtreeOverlap(treeA, treeB))
	return bundle
}

func pairParseError(a, b *SourceUnit) string {
	switch {
	case !a.Parsed() && !b.Parsed():
		return fmt.Sprintf("both units failed to parse: %s: %s; %s: %s",
			a.ID, a.ParseErr, b.ID, b.ParseErr)
	case !a.Parsed():
		return fmt.Sprintf("unit %s failed to parse: %s", a.ID, a.ParseErr)
	default:
		return fmt.Sprintf("unit %s failed to parse: %s", b.ID, b.ParseErr)
	}
}

func toEditTree(node *parser.Node) *editNode {
	value := node.Name
	if value == "" && node.Kind == parser.KindConstant {
		value = node.Lit
	}

	out := &editNode{label: node.Label(), value: value}
	for _, child := range node.ChildNodes() {
		out.children = append(out.children, toEditTree(child))
	}
	return out
}

// editDistance computes a memoized tree edit distance with sequential child
// alignment. Children are matched position by position rather than optimally,
// trading exactness for linear-in-tree-size work per node pair.
type editDistance struct {
	cost func(label string) float64
	memo map[[2]*editNode]float64
}

func newEditDistance(cost func(label string) float64) *editDistance {
	return &editDistance{cost: cost, memo: make(map[[2]*editNode]float64)}
}

func (d *editDistance) distance(a, b *editNode) float64 {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return d.insertAll(b)
	}
	if b == nil {
		return d.deleteAll(a)
	}

	key := [2]*editNode{a, b}
	if cached, ok := d.memo[key]; ok {
		return cached
	}

	var cost float64
	if a.equals(b) {
		cost = d.alignChildren(a, b)
	} else {
		nodeCost := d.cost(a.label)
		if other := d.cost(b.label); other > nodeCost {
			nodeCost = other
		}
		substitute := nodeCost + d.alignChildren(a, b)
		remove := nodeCost + d.insertAll(b)
		insert := nodeCost + d.deleteAll(a)
		cost = min3(substitute, remove, insert)
	}

	d.memo[key] = cost
	return cost
}

func (d *editDistance) alignChildren(a, b *editNode) float64 {
	total := 0.0
	n := len(a.children)
	if len(b.children) > n {
		n = len(b.children)
	}
	for i := 0; i < n; i++ {
		var ca, cb *editNode
		if i < len(a.children) {
			ca = a.children[i]
		}
		if i < len(b.children) {
			cb = b.children[i]
		}
		total += d.distance(ca, cb)
	}
	return total
}

func (d *editDistance) insertAll(node *editNode) float64 {
	total := d.cost(node.label)
	for _, child := range node.children {
		total += d.insertAll(child)
	}
	return total
}

func (d *editDistance) deleteAll(node *editNode) float64 {
	total := d.cost(node.label)
	for _, child := range node.children {
		total += d.deleteAll(child)
	}
	return total
}

// histogramDistance compares node-label frequencies: Manhattan distance
// normalized by the per-label maxima, 0 for identical shapes, 1 for disjoint.
func histogramDistance(a, b *parser.Node) float64 {
	histA := labelHistogram(a)
	histB := labelHistogram(b)

	labels := make(map[string]struct{}, len(histA)+len(histB))
	for label := range histA {
		labels[label] = struct{}{}
	}
	for label := range histB {
		labels[label] = struct{}{}
	}
	if len(labels) == 0 {
		return 0.0
	}

	distance := 0
	total := 0
	for label := range labels {
		countA := histA[label]
		countB := histB[label]
		if countA > countB {
			distance += countA - countB
			total += countA
		} else {
			distance += countB - countA
			total += countB
		}
	}
	if total == 0 {
		return 0.0
	}
	return float64(distance) / float64(total)
}

func labelHistogram(root *parser.Node) map[string]int {
	histogram := make(map[string]int)
	root.Walk(func(node *parser.Node) bool {
		histogram[node.Label()]++
		return true
	})
	return histogram
}

// subtreeOverlap is the Jaccard coefficient over the MD5 fingerprints of all
// subtrees of both trees.
func subtreeOverlap(a, b *editNode) float64 {
	hashesA := make(map[string]struct{})
	hashesB := make(map[string]struct{})
	collectSubtreeHashes(a, hashesA)
	collectSubtreeHashes(b, hashesB)

	if len(hashesA) == 0 && len(hashesB) == 0 {
		return 1.0
	}
	if len(hashesA) == 0 || len(hashesB) == 0 {
		return 0.0
	}

	intersection := 0
	for hash := range hashesA {
		if _, ok := hashesB[hash]; ok {
			intersection++
		}
	}
	union := len(hashesA) + len(hashesB) - intersection
	return float64(intersection) / float64(union)
}

func collectSubtreeHashes(node *editNode, hashes map[string]struct{}) string {
	childHashes := make([]string, 0, len(node.children))
	for _, child := range node.children {
		childHashes = append(childHashes, collectSubtreeHashes(child, hashes))
	}
	sort.Strings(childHashes)

	repr := fmt.Sprintf("%s:%s:[%s]", node.label, node.value, strings.Join(childHashes, ","))
	hash := fmt.Sprintf("%x", md5.Sum([]byte(repr)))
	hashes[hash] = struct{}{}
	return hash
}

func min3(a, b, c float64) float64 {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
