// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/coauthor-graph/pkg/types"
)

func rec(id, category string, authors ...string) types.PublicationRecord {
	r := types.PublicationRecord{
		ID:       id,
		Category: types.CategoryRef{ID: "sf-" + category, DisplayName: category},
	}
	for _, a := range authors {
		r.Authors = append(r.Authors, types.AuthorRef{ID: a, Name: "Name " + a})
	}
	return r
}

func endToEndRecords() []types.PublicationRecord {
	return []types.PublicationRecord{
		rec("pub1", "X", "A", "B", "C"),
		rec("pub2", "X", "A", "B"),
		rec("pub3", "Y", "A", "D"),
	}
}

func TestEndToEndExample(t *testing.T) {
	g := Build(endToEndRecords(), Options{})

	var ids []string
	for _, n := range g.Nodes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"A", "B", "C", "D"}, ids)

	want := map[[2]string]int{
		{"A", "B"}: 2,
		{"A", "C"}: 1,
		{"B", "C"}: 1,
		{"A", "D"}: 1,
	}
	assert.Equal(t, len(want), g.EdgeCount())
	for pair, w := range want {
		e, ok := g.Edge(pair[0], pair[1])
		require.True(t, ok, "edge %v", pair)
		assert.Equal(t, w, e.Weight, "edge %v", pair)
	}

	a, ok := g.Node("A")
	require.True(t, ok)
	assert.Equal(t, map[string]int{"X": 2, "Y": 1}, a.Observed.Map())
	assert.Equal(t, "X", a.ResolvedCategory)

	d, _ := g.Node("D")
	assert.Equal(t, "Y", d.ResolvedCategory)
}

func TestEdgeSymmetry(t *testing.T) {
	g := Build(endToEndRecords(), Options{})

	for _, e := range g.Edges() {
		assert.Less(t, e.Source, e.Target)
		fwd, ok1 := g.Edge(e.Source, e.Target)
		rev, ok2 := g.Edge(e.Target, e.Source)
		require.True(t, ok1)
		require.True(t, ok2)
		assert.Equal(t, fwd, rev)
	}
}

func TestWeightEqualsPublicationCount(t *testing.T) {
	records := []types.PublicationRecord{
		rec("p1", "X", "u", "v"),
		rec("p2", "X", "v", "u", "w"),
		rec("p3", "Y", "u", "w"),
		rec("p4", "Y", "v", "u"),
	}
	g := Build(records, Options{})

	// Recount from the records directly.
	for _, e := range g.Edges() {
		n := 0
		for _, r := range records {
			has := map[string]bool{}
			for _, a := range r.Authors {
				has[a.ID] = true
			}
			if has[e.Source] && has[e.Target] {
				n++
			}
		}
		assert.Equal(t, n, e.Weight, "%s-%s", e.Source, e.Target)
	}
	e, _ := g.Edge("u", "v")
	assert.Equal(t, 3, e.Weight)
}

func TestRepeatedRecordCountsOnce(t *testing.T) {
	acc := NewAccumulator(Options{})
	for _, r := range endToEndRecords() {
		require.True(t, acc.Ingest(r))
	}
	assert.False(t, acc.Ingest(rec("pub2", "X", "A", "B")))
	assert.False(t, acc.Ingest(rec("pub1", "X", "A", "B", "C")))
	g := acc.Finalize()

	assert.Equal(t, len(endToEndRecords()), acc.Records())
	assert.Equal(t, 2, acc.Duplicates())

	e, ok := g.Edge("A", "B")
	require.True(t, ok)
	assert.Equal(t, 2, e.Weight)

	a, _ := g.Node("A")
	assert.Equal(t, map[string]int{"X": 2, "Y": 1}, a.Observed.Map())
	assert.Equal(t, "X", a.ResolvedCategory)

	built := Build(append(endToEndRecords(), rec("pub2", "X", "A", "B")), Options{})
	e, _ = built.Edge("A", "B")
	assert.Equal(t, 2, e.Weight)
}

func TestNoSelfLoopsAndDuplicateAuthorsCountOnce(t *testing.T) {
	acc := NewAccumulator(Options{})
	acc.Ingest(rec("p1", "X", "A", "A", "B", "A"))
	g := acc.Finalize()

	_, self := g.Edge("A", "A")
	assert.False(t, self)
	assert.Equal(t, 1, g.EdgeCount())

	e, _ := g.Edge("A", "B")
	assert.Equal(t, 1, e.Weight)

	a, _ := g.Node("A")
	assert.Equal(t, 1, a.Observed.Get("X"), "duplicate listing votes once")
}

func TestNodeExistence(t *testing.T) {
	records := []types.PublicationRecord{
		rec("solo", "X", "lonely"),
		rec("pair", "X", "A", "B"),
		rec("empty", "X"),
	}
	g := Build(records, Options{})

	assert.Equal(t, 3, g.NodeCount())
	n, ok := g.Node("lonely")
	require.True(t, ok)
	assert.Equal(t, 0, g.Degree("lonely"))
	assert.Equal(t, "X", n.ResolvedCategory)

	_, ok = g.Node("C")
	assert.False(t, ok)
}

func TestAuthorsWithoutIDAreIgnored(t *testing.T) {
	r := rec("p", "X", "A")
	r.Authors = append(r.Authors, types.AuthorRef{Name: "anonymous"})
	g := Build([]types.PublicationRecord{r}, Options{})
	assert.Equal(t, 1, g.NodeCount())
	assert.Equal(t, 0, g.EdgeCount())
}

func TestFirstSeenAttributesRetained(t *testing.T) {
	first := types.PublicationRecord{ID: "p1", Authors: []types.AuthorRef{{
		ID: "A", Name: "Ana Silva",
		Institutions: []types.Institution{{ID: "I1", DisplayName: "USP"}},
		Countries:    []string{"BR"},
	}}}
	second := types.PublicationRecord{ID: "p2", Authors: []types.AuthorRef{{
		ID: "A", Name: "A. Silva",
		Institutions: []types.Institution{{ID: "I2", DisplayName: "MIT"}},
		Countries:    []string{"US"},
	}}}
	g := Build([]types.PublicationRecord{first, second}, Options{})

	n, _ := g.Node("A")
	assert.Equal(t, "Ana Silva", n.Name)
	assert.Equal(t, "Ana Silva", n.Label)
	assert.Equal(t, "USP", n.Institution())
	assert.Equal(t, "BR", n.Country())
}

func TestIdempotentFinalize(t *testing.T) {
	acc := NewAccumulator(Options{})
	for _, r := range endToEndRecords() {
		acc.Ingest(r)
	}

	g1 := acc.Finalize()
	resolved := map[string]string{}
	for _, n := range g1.Nodes() {
		resolved[n.ID] = n.ResolvedCategory
	}
	edges := g1.Edges()

	g2 := acc.Finalize()
	for _, n := range g2.Nodes() {
		assert.Equal(t, resolved[n.ID], n.ResolvedCategory)
	}
	assert.Equal(t, edges, g2.Edges())
	assert.Equal(t, 3, acc.Records())
}

func TestCategoryKey(t *testing.T) {
	records := []types.PublicationRecord{
		{ID: "p1", Authors: []types.AuthorRef{{ID: "A"}}, Category: types.CategoryRef{ID: "1702", DisplayName: "AI"}},
		{ID: "p2", Authors: []types.AuthorRef{{ID: "A"}}, Category: types.UnknownCategoryRef()},
		{ID: "p3", Authors: []types.AuthorRef{{ID: "B"}}},
	}

	byID := Build(records, Options{CategoryKey: types.CategoryByID})
	a, _ := byID.Node("A")
	assert.Equal(t, map[string]int{"1702": 1, "unknown": 1}, a.Observed.Map())
	assert.Equal(t, "1702", a.ResolvedCategory)

	byName := Build(records, Options{CategoryKey: types.CategoryByDisplayName, Sentinel: "Unknown"})
	a, _ = byName.Node("A")
	assert.Equal(t, "AI", a.ResolvedCategory)
	b, _ := byName.Node("B")
	assert.Equal(t, "unknown", b.ResolvedCategory, "empty category votes for the unknown label")
}

func TestEnsureNodeAndLink(t *testing.T) {
	acc := NewAccumulator(Options{Sentinel: "external"})

	n, created := acc.EnsureNode(types.AuthorRef{ID: "s1", Name: "Seed"})
	require.True(t, created)
	n.SetAttr("original", true)

	_, created = acc.EnsureNode(types.AuthorRef{ID: "s1", Name: "Other"})
	assert.False(t, created)

	acc.Link([]string{"s1", "c1", "s1", ""})
	acc.Link([]string{"c1", "s1"})
	g := acc.Finalize()

	e, ok := g.Edge("c1", "s1")
	require.True(t, ok)
	assert.Equal(t, 2, e.Weight)

	seed, _ := g.Node("s1")
	assert.Equal(t, "Seed", seed.Name)
	assert.Equal(t, true, seed.Attrs["original"])
	assert.Equal(t, "external", seed.ResolvedCategory, "link does not vote")

	c1, ok := g.Node("c1")
	require.True(t, ok)
	assert.Equal(t, "c1", c1.Label)
}

func TestIndependentAccumulators(t *testing.T) {
	x := NewAccumulator(Options{})
	y := NewAccumulator(Options{})
	x.Ingest(rec("p1", "X", "A", "B"))
	y.Ingest(rec("p2", "Y", "A", "C"))

	gx := x.Finalize()
	gy := y.Finalize()

	ax, _ := gx.Node("A")
	ax.SetAttr("touched", true)
	ax.Observed.Inc("Z")

	ay, _ := gy.Node("A")
	assert.Nil(t, ay.Attrs)
	assert.Equal(t, 0, ay.Observed.Get("Z"))
	_, ok := gy.Edge("A", "B")
	assert.False(t, ok)
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(types.GraphConfig{})
	assert.Equal(t, types.CategoryByDisplayName, opts.CategoryKey)
	assert.Equal(t, "unknown", opts.Sentinel)
	assert.Equal(t, DefaultCategoryAttr, opts.CategoryAttr)
	assert.Equal(t, DefaultCountryAttr, opts.CountryAttr)
	assert.Equal(t, DefaultInstitutionAttr, opts.InstitutionAttr)

	opts = OptionsFromConfig(types.GraphConfig{
		CategoryKey:  types.CategoryByID,
		Sentinel:     "Unknown",
		CategoryAttr: "label2",
		CountryAttr:  "label1",
	})
	assert.Equal(t, Options{
		CategoryKey:     types.CategoryByID,
		Sentinel:        "Unknown",
		CategoryAttr:    "label2",
		CountryAttr:     "label1",
		InstitutionAttr: DefaultInstitutionAttr,
	}, opts)

	g := NewAccumulator(opts).Finalize()
	assert.Equal(t, "label1", g.CountryAttr)
	assert.Equal(t, DefaultInstitutionAttr, g.InstitutionAttr)
}
