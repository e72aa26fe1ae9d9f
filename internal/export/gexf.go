// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"github.com/pdiddy/coauthor-graph/internal/graph"
)

// GEXF 1.2 document structures.
type gexfDoc struct {
	XMLName xml.Name  `xml:"gexf"`
	XMLNS   string    `xml:"xmlns,attr"`
	Version string    `xml:"version,attr"`
	Meta    gexfMeta  `xml:"meta"`
	Graph   gexfGraph `xml:"graph"`
}

type gexfMeta struct {
	LastModified string `xml:"lastmodifieddate,attr"`
	Creator      string `xml:"creator"`
	Description  string `xml:"description,omitempty"`
}

type gexfGraph struct {
	DefaultEdgeType string         `xml:"defaultedgetype,attr"`
	Mode            string         `xml:"mode,attr"`
	Attributes      gexfAttributes `xml:"attributes"`
	Nodes           []gexfNode     `xml:"nodes>node"`
	Edges           []gexfEdge     `xml:"edges>edge"`
}

type gexfAttributes struct {
	Class string          `xml:"class,attr"`
	Mode  string          `xml:"mode,attr"`
	Attrs []gexfAttribute `xml:"attribute"`
}

type gexfAttribute struct {
	ID    string `xml:"id,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

type gexfNode struct {
	ID        string         `xml:"id,attr"`
	Label     string         `xml:"label,attr"`
	AttValues []gexfAttValue `xml:"attvalues>attvalue,omitempty"`
}

type gexfAttValue struct {
	For   string `xml:"for,attr"`
	Value string `xml:"value,attr"`
}

type gexfEdge struct {
	ID     string `xml:"id,attr"`
	Source string `xml:"source,attr"`
	Target string `xml:"target,attr"`
	Weight int    `xml:"weight,attr"`
}

func gexfType(v any) string {
	switch v.(type) {
	case bool:
		return "boolean"
	case int, int32, int64:
		return "integer"
	case float32, float64:
		return "double"
	default:
		return "string"
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

func encodeGEXF(w io.Writer, g *graph.Graph, meta Meta) error {
	doc := gexfDoc{
		XMLNS:   "http://gexf.net/1.2",
		Version: "1.2",
		Meta: gexfMeta{
			LastModified: meta.GeneratedAt.Format("2006-01-02"),
			Creator:      meta.Creator,
			Description:  describe(meta),
		},
		Graph: gexfGraph{
			DefaultEdgeType: "undirected",
			Mode:            "static",
			Attributes:      gexfAttributes{Class: "node", Mode: "static"},
		},
	}

	// Attribute ids are assigned in first-seen order. A key whose values
	// disagree in type is declared as string.
	ids := map[string]int{}
	for _, n := range g.Nodes() {
		node := gexfNode{ID: n.ID, Label: n.Label}
		for _, a := range nodeAttrs(g, n) {
			i, ok := ids[a.Key]
			if !ok {
				i = len(doc.Graph.Attributes.Attrs)
				ids[a.Key] = i
				doc.Graph.Attributes.Attrs = append(doc.Graph.Attributes.Attrs, gexfAttribute{
					ID:    strconv.Itoa(i),
					Title: a.Key,
					Type:  gexfType(a.Value),
				})
			} else if doc.Graph.Attributes.Attrs[i].Type != gexfType(a.Value) {
				doc.Graph.Attributes.Attrs[i].Type = "string"
			}
			node.AttValues = append(node.AttValues, gexfAttValue{For: strconv.Itoa(i), Value: formatValue(a.Value)})
		}
		doc.Graph.Nodes = append(doc.Graph.Nodes, node)
	}

	for i, e := range g.Edges() {
		doc.Graph.Edges = append(doc.Graph.Edges, gexfEdge{
			ID:     strconv.Itoa(i),
			Source: e.Source,
			Target: e.Target,
			Weight: e.Weight,
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("marshaling GEXF: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func describe(meta Meta) string {
	if meta.Description != "" {
		return meta.Description + " (run " + meta.RunID + ")"
	}
	return "run " + meta.RunID
}
