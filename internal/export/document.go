// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/coauthor-graph/internal/graph"
)

// Document is the node-link form used by the JSON and YAML exports.
type Document struct {
	Meta     Meta          `json:"meta" yaml:"meta"`
	Directed bool          `json:"directed" yaml:"directed"`
	Nodes    []DocNode     `json:"nodes" yaml:"nodes"`
	Edges    []DocEdge     `json:"edges" yaml:"edges"`
	Stats    DocumentStats `json:"stats" yaml:"stats"`
}

// DocNode is one node with its attributes flattened into a map.
type DocNode struct {
	ID         string         `json:"id" yaml:"id"`
	Label      string         `json:"label" yaml:"label"`
	Attributes map[string]any `json:"attributes" yaml:"attributes"`
}

// DocEdge is one weighted edge.
type DocEdge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Weight int    `json:"weight" yaml:"weight"`
}

type DocumentStats struct {
	Nodes int `json:"nodes" yaml:"nodes"`
	Edges int `json:"edges" yaml:"edges"`
}

// NewDocument shapes g into a Document.
func NewDocument(g *graph.Graph, meta Meta) Document {
	doc := Document{
		Meta:  meta,
		Nodes: make([]DocNode, 0, g.NodeCount()),
		Edges: make([]DocEdge, 0, g.EdgeCount()),
		Stats: DocumentStats{Nodes: g.NodeCount(), Edges: g.EdgeCount()},
	}
	for _, n := range g.Nodes() {
		attrs := nodeAttrs(g, n)
		m := make(map[string]any, len(attrs))
		for _, a := range attrs {
			m[a.Key] = a.Value
		}
		doc.Nodes = append(doc.Nodes, DocNode{ID: n.ID, Label: n.Label, Attributes: m})
	}
	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, DocEdge{Source: e.Source, Target: e.Target, Weight: e.Weight})
	}
	return doc
}

func encodeJSON(w io.Writer, g *graph.Graph, meta Meta) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(g, meta)); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

func encodeYAML(w io.Writer, g *graph.Graph, meta Meta) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(g, meta)); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}
