package gbm

import (
	"fmt"
	"math"
)

// leafFeature marks a terminal node.
const leafFeature = -1

// node is either an internal split (Feature >= 0) or a leaf carrying Value.
// Rows with x[Feature] < Threshold descend to Left.
type node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
	Value     float64 `json:"value,omitempty"`
}

func (n node) isLeaf() bool { return n.Feature == leafFeature }

// tree is a flat node list rooted at index 0.
type tree struct {
	Nodes []node `json:"nodes"`
}

func (t tree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.isLeaf() {
			return n.Value
		}
		if x[n.Feature] < n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// validate checks that traversal always terminates inside the node list:
// children point forward and features are in range.
func (t tree) validate(numFeatures int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	for i, n := range t.Nodes {
		if n.isLeaf() {
			if math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
				return fmt.Errorf("node %d: non-finite leaf value", i)
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= numFeatures {
			return fmt.Errorf("node %d: feature index %d out of range", i, n.Feature)
		}
		if n.Left <= i || n.Left >= len(t.Nodes) || n.Right <= i || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d: invalid children %d/%d", i, n.Left, n.Right)
		}
	}
	return nil
}

// treeBuilder grows one tree level by level. At each depth a single pass over
// every feature's presorted row order collects split statistics for all open
// nodes at once.
type treeBuilder struct {
	params Params
	x      [][]float64
	sorted [][]int // per feature, row indices ordered by value
	grad   []float64
	hess   []float64

	nodes   []node
	rowNode []int // node each row currently sits in
}

// candidate tracks the running left-side sums and best split for one open
// node during a feature scan.
type candidate struct {
	gradSum, hessSum float64 // node totals
	gl, hl           float64 // left sums for the current feature
	last             float64
	seen             bool

	bestGain      float64
	bestFeature   int
	bestThreshold float64
}

func (b *treeBuilder) build() tree {
	b.nodes = []node{{Feature: leafFeature}}
	for r := range b.rowNode {
		b.rowNode[r] = 0
	}

	open := []int{0}
	for depth := 0; len(open) > 0; depth++ {
		cands := b.totals(open)

		if depth < b.params.MaxDepth {
			for f := range b.sorted {
				b.scanFeature(f, cands)
			}
		}

		var next []int
		for _, id := range open {
			c := cands[id]
			if depth < b.params.MaxDepth && c.bestFeature >= 0 {
				left, right := b.split(id, c)
				next = append(next, left, right)
				continue
			}
			b.nodes[id] = node{
				Feature: leafFeature,
				Value:   b.params.LearningRate * leafWeight(c.gradSum, c.hessSum, b.params.Lambda),
			}
		}
		if len(next) > 0 {
			b.reassign(open)
		}
		open = next
	}
	return tree{Nodes: b.nodes}
}

// totals sums gradient statistics per open node.
func (b *treeBuilder) totals(open []int) map[int]*candidate {
	cands := make(map[int]*candidate, len(open))
	for _, id := range open {
		cands[id] = &candidate{bestFeature: leafFeature}
	}
	for r, id := range b.rowNode {
		if c, ok := cands[id]; ok {
			c.gradSum += b.grad[r]
			c.hessSum += b.hess[r]
		}
	}
	return cands
}

func (b *treeBuilder) scanFeature(f int, cands map[int]*candidate) {
	for _, c := range cands {
		c.gl, c.hl, c.seen = 0, 0, false
	}

	p := b.params
	for _, r := range b.sorted[f] {
		c, ok := cands[b.rowNode[r]]
		if !ok {
			continue
		}
		v := b.x[r][f]
		if c.seen && v > c.last {
			gr := c.gradSum - c.gl
			hr := c.hessSum - c.hl
			if c.hl >= p.MinChildWeight && hr >= p.MinChildWeight {
				gain := splitGain(c.gl, c.hl, gr, hr, p.Lambda) - p.Gamma
				if gain > c.bestGain {
					c.bestGain = gain
					c.bestFeature = f
					c.bestThreshold = midpoint(c.last, v)
				}
			}
		}
		c.gl += b.grad[r]
		c.hl += b.hess[r]
		c.last = v
		c.seen = true
	}
}

// split turns an open leaf into an internal node and appends its two children.
func (b *treeBuilder) split(id int, c *candidate) (int, int) {
	left := len(b.nodes)
	right := left + 1
	b.nodes = append(b.nodes, node{Feature: leafFeature}, node{Feature: leafFeature})
	b.nodes[id] = node{
		Feature:   c.bestFeature,
		Threshold: c.bestThreshold,
		Left:      left,
		Right:     right,
	}
	return left, right
}

// reassign moves rows of nodes that were just split into their children.
func (b *treeBuilder) reassign(open []int) {
	split := make(map[int]bool, len(open))
	for _, id := range open {
		if !b.nodes[id].isLeaf() {
			split[id] = true
		}
	}
	for r, id := range b.rowNode {
		if !split[id] {
			continue
		}
		n := b.nodes[id]
		if b.x[r][n.Feature] < n.Threshold {
			b.rowNode[r] = n.Left
		} else {
			b.rowNode[r] = n.Right
		}
	}
}

// leafValue returns the output of the leaf row r landed in.
func (b *treeBuilder) leafValue(r int) float64 {
	return b.nodes[b.rowNode[r]].Value
}

func leafWeight(g, h, lambda float64) float64 {
	return -g / (h + lambda)
}

func splitGain(gl, hl, gr, hr, lambda float64) float64 {
	score := func(g, h float64) float64 { return g * g / (h + lambda) }
	return 0.5 * (score(gl, hl) + score(gr, hr) - score(gl+gr, hl+hr))
}

// midpoint returns a threshold t with lo < t <= hi.
func midpoint(lo, hi float64) float64 {
	t := lo + (hi-lo)/2
	if !(t > lo) {
		return hi
	}
	return t
}
