// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// DefaultCategoryAttr is the node attribute that carries the resolved
// category in exported graphs.
const DefaultCategoryAttr = "sub_field"

// Default names of the country and institution attributes.
const (
	DefaultCountryAttr     = "country"
	DefaultInstitutionAttr = "institution"
)

// Options configures an Accumulator.
type Options struct {
	// CategoryKey selects which CategoryRef field is voted on. Empty means
	// display name.
	CategoryKey types.CategoryKey

	// Sentinel is the resolved category of a node with no votes.
	Sentinel string

	// CategoryAttr names the exported category attribute.
	CategoryAttr string

	CountryAttr     string
	InstitutionAttr string
}

func (o Options) withDefaults() Options {
	if o.CategoryKey == "" {
		o.CategoryKey = types.CategoryByDisplayName
	}
	if o.Sentinel == "" {
		o.Sentinel = types.UnknownCategory
	}
	if o.CategoryAttr == "" {
		o.CategoryAttr = DefaultCategoryAttr
	}
	if o.CountryAttr == "" {
		o.CountryAttr = DefaultCountryAttr
	}
	if o.InstitutionAttr == "" {
		o.InstitutionAttr = DefaultInstitutionAttr
	}
	return o
}

// OptionsFromConfig maps graph configuration onto Options.
func OptionsFromConfig(cfg types.GraphConfig) Options {
	return Options{
		CategoryKey:     cfg.CategoryKey,
		Sentinel:        cfg.Sentinel,
		CategoryAttr:    cfg.CategoryAttr,
		CountryAttr:     cfg.CountryAttr,
		InstitutionAttr: cfg.InstitutionAttr,
	}.withDefaults()
}

// Accumulator ingests records one at a time and grows a Graph. It is not
// safe for concurrent use; run one Accumulator per partition.
type Accumulator struct {
	opts       Options
	g          *Graph
	records    int
	duplicates int

	// ingested holds the ids of records already counted.
	ingested map[string]bool
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator(opts Options) *Accumulator {
	opts = opts.withDefaults()
	return &Accumulator{opts: opts, g: newGraph(opts), ingested: make(map[string]bool)}
}

// Records returns the number of records ingested so far.
func (a *Accumulator) Records() int { return a.records }

// Duplicates returns the number of records skipped because their id was
// already ingested.
func (a *Accumulator) Duplicates() int { return a.duplicates }

// Ingest adds one publication. Every distinct author gets a node and one
// vote for the record's category, and every distinct author pair gains one
// unit of edge weight. A record whose id was already ingested is skipped
// and Ingest reports false.
func (a *Accumulator) Ingest(rec types.PublicationRecord) bool {
	if rec.ID != "" {
		if a.ingested[rec.ID] {
			a.duplicates++
			return false
		}
		a.ingested[rec.ID] = true
	}
	a.records++
	vote := a.voteKey(rec.Category)

	seen := make(map[string]bool, len(rec.Authors))
	ids := make([]string, 0, len(rec.Authors))
	for _, author := range rec.Authors {
		if author.ID == "" || seen[author.ID] {
			continue
		}
		seen[author.ID] = true
		ids = append(ids, author.ID)

		n, _ := a.EnsureNode(author)
		n.Observed.Inc(vote)
	}

	a.link(ids)
	return true
}

func (a *Accumulator) voteKey(c types.CategoryRef) string {
	if a.opts.CategoryKey == types.CategoryByID {
		if c.ID == "" {
			return types.UnknownCategory
		}
		return c.ID
	}
	if c.DisplayName == "" {
		return types.UnknownCategory
	}
	return c.DisplayName
}

// EnsureNode returns the node for author, creating it with author's
// attributes on first sight. The bool reports whether it was created.
// Existing nodes keep their first-seen attributes.
func (a *Accumulator) EnsureNode(author types.AuthorRef) (*Node, bool) {
	if n, ok := a.g.nodes[author.ID]; ok {
		return n, false
	}
	label := author.Name
	if label == "" {
		label = author.ID
	}
	n := &Node{
		ID:           author.ID,
		Label:        label,
		Name:         author.Name,
		Institutions: append([]types.Institution(nil), author.Institutions...),
		Countries:    append([]string(nil), author.Countries...),
		Observed:     NewCounts(),
	}
	a.g.nodes[author.ID] = n
	a.g.nodeOrder = append(a.g.nodeOrder, author.ID)
	return n, true
}

// Link adds one unit of weight between every pair of distinct ids, without
// voting. Empty and repeated ids are ignored; unknown ids get a bare node.
func (a *Accumulator) Link(ids []string) {
	seen := make(map[string]bool, len(ids))
	uniq := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		uniq = append(uniq, id)
		a.EnsureNode(types.AuthorRef{ID: id})
	}
	a.link(uniq)
}

// link expects ids to be distinct and already present.
func (a *Accumulator) link(ids []string) {
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			k := makePair(ids[i], ids[j])
			if e, ok := a.g.edges[k]; ok {
				e.Weight++
				continue
			}
			a.g.edges[k] = &Edge{Source: k.a, Target: k.b, Weight: 1}
			a.g.edgeOrder = append(a.g.edgeOrder, k)
		}
	}
}

// Finalize resolves every node's category and returns the graph. It only
// reads the vote counts, so calling it again yields the same result.
func (a *Accumulator) Finalize() *Graph {
	for _, id := range a.g.nodeOrder {
		n := a.g.nodes[id]
		n.ResolvedCategory = Resolve(n.Observed, a.opts.Sentinel)
	}
	return a.g
}

// Build ingests records into a fresh Accumulator and finalizes it.
func Build(records []types.PublicationRecord, opts Options) *Graph {
	acc := NewAccumulator(opts)
	for _, rec := range records {
		acc.Ingest(rec)
	}
	return acc.Finalize()
}
