// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph builds weighted, undirected co-authorship graphs from
// normalized publication records. Nodes are authors annotated with their
// dominant category; edge weights count the publications two authors share.
package graph

import "github.com/pdiddy/coauthor-graph/pkg/types"

// Node is one author.
type Node struct {
	ID    string
	Label string
	Name  string

	// Institutions and Countries are taken from the first record that
	// listed this author and are never overwritten.
	Institutions []types.Institution
	Countries    []string

	// Observed counts category votes in first-seen order.
	Observed *Counts

	// ResolvedCategory is set by Finalize.
	ResolvedCategory string

	// Attrs carries extra exported attributes (string, bool or int values).
	Attrs map[string]any
}

// Country returns the first listed country, or "" when none.
func (n *Node) Country() string {
	if len(n.Countries) == 0 {
		return ""
	}
	return n.Countries[0]
}

// Institution returns the first listed institution name, or "" when none.
func (n *Node) Institution() string {
	if len(n.Institutions) == 0 {
		return ""
	}
	return n.Institutions[0].DisplayName
}

// SetAttr stores an extra attribute on the node.
func (n *Node) SetAttr(key string, value any) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]any)
	}
	n.Attrs[key] = value
}

// Edge is an unordered author pair stored with Source < Target.
type Edge struct {
	Source string
	Target string
	Weight int
}

type pairKey struct{ a, b string }

func makePair(u, v string) pairKey {
	if v < u {
		u, v = v, u
	}
	return pairKey{a: u, b: v}
}

// Graph is a simple undirected weighted graph that remembers node and edge
// insertion order, so that exports are deterministic.
type Graph struct {
	// CategoryAttr is the exported attribute name for ResolvedCategory.
	// CountryAttr and InstitutionAttr name the first-seen country and
	// institution. An empty name omits that attribute.
	CategoryAttr    string
	CountryAttr     string
	InstitutionAttr string

	// Sparse drops built-in attributes whose value is empty instead of
	// writing a placeholder.
	Sparse bool

	nodes     map[string]*Node
	nodeOrder []string
	edges     map[pairKey]*Edge
	edgeOrder []pairKey
}

func newGraph(opts Options) *Graph {
	return &Graph{
		CategoryAttr:    opts.CategoryAttr,
		CountryAttr:     opts.CountryAttr,
		InstitutionAttr: opts.InstitutionAttr,
		nodes:           make(map[string]*Node),
		edges:           make(map[pairKey]*Edge),
	}
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Edge returns the edge between a and b in either order.
func (g *Graph) Edge(a, b string) (Edge, bool) {
	e, ok := g.edges[makePair(a, b)]
	if !ok {
		return Edge{}, false
	}
	return *e, true
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns copies of the edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edgeOrder))
	for _, k := range g.edgeOrder {
		out = append(out, *g.edges[k])
	}
	return out
}

func (g *Graph) NodeCount() int { return len(g.nodeOrder) }
func (g *Graph) EdgeCount() int { return len(g.edgeOrder) }

// Degree returns the number of distinct neighbours of id.
func (g *Graph) Degree(id string) int {
	d := 0
	for k := range g.edges {
		if k.a == id || k.b == id {
			d++
		}
	}
	return d
}

// TotalWeight sums all edge weights.
func (g *Graph) TotalWeight() int {
	total := 0
	for _, e := range g.edges {
		total += e.Weight
	}
	return total
}
