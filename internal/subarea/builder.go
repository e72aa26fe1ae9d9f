// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package subarea

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pdiddy/coauthor-graph/internal/graph"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// Node attributes written by the builder.
const (
	AttrSubArea  = "sub_area"
	AttrOriginal = "original"
)

// Builder expands the seed researchers of an area into a co-authorship
// network using a co-publication Source.
type Builder struct {
	Source Source
	Refs   *ReferenceSet
	Log    zerolog.Logger
}

// BuildSummary reports one area build.
type BuildSummary struct {
	Seeds        int
	FetchFailed  int
	Publications int
	Duplicates   int
}

// Build constructs the network for area. Seeds are the reference
// researchers listing area; each seed's co-publications are fetched once
// and every publication key is processed at most once. A failed fetch is
// logged and that seed keeps only its own node. Build returns an error only
// when ctx is cancelled.
func (b *Builder) Build(ctx context.Context, area string) (*graph.Graph, BuildSummary, error) {
	var sum BuildSummary
	acc := graph.NewAccumulator(graph.Options{})
	log := b.Log.With().Str("area", area).Logger()

	seeds := b.Refs.InArea(area)
	sum.Seeds = len(seeds)
	isSeed := make(map[string]bool, len(seeds))
	for _, r := range seeds {
		isSeed[r.PID] = true
		ref := types.AuthorRef{ID: r.PID, Name: r.Name}
		if r.Institution != "" {
			ref.Institutions = []types.Institution{{DisplayName: r.Institution}}
		}
		n, _ := acc.EnsureNode(ref)
		n.SetAttr(AttrSubArea, area)
		n.SetAttr(AttrOriginal, true)
	}
	log.Info().Int("seeds", len(seeds)).Msg("building sub-area network")

	processed := make(map[string]bool)
	for i, r := range seeds {
		if err := ctx.Err(); err != nil {
			return nil, sum, err
		}
		log.Debug().Int("index", i+1).Int("of", len(seeds)).Str("pid", r.PID).Msg("fetching co-publications")

		pubs, err := b.Source.CoPublications(ctx, r.PID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, sum, ctx.Err()
			}
			sum.FetchFailed++
			log.Warn().Err(err).Str("pid", r.PID).Msg("skipping seed")
			continue
		}

		for _, pub := range pubs {
			if processed[pub.Key] {
				sum.Duplicates++
				continue
			}
			processed[pub.Key] = true
			sum.Publications++
			b.addPublication(acc, pub, area, isSeed)
		}
	}

	g := acc.Finalize()
	// The label lives in AttrSubArea; there are no category votes.
	g.CategoryAttr = ""
	g.CountryAttr = ""
	g.Sparse = true
	log.Info().Int("nodes", g.NodeCount()).Int("edges", g.EdgeCount()).Int("failed", sum.FetchFailed).Msg("sub-area network built")
	return g, sum, nil
}

func (b *Builder) addPublication(acc *graph.Accumulator, pub CoPublication, area string, isSeed map[string]bool) {
	ids := make([]string, 0, len(pub.Authors))
	for _, a := range pub.Authors {
		label := Classify(a.PID, b.Refs, area)
		n, created := acc.EnsureNode(types.AuthorRef{ID: a.PID, Name: a.Name})
		if created {
			n.SetAttr(AttrSubArea, label)
			n.SetAttr(AttrOriginal, isSeed[a.PID])
		} else {
			cur, _ := n.Attrs[AttrSubArea].(string)
			n.SetAttr(AttrSubArea, MergeLabel(cur, label))
		}
		ids = append(ids, a.PID)
	}
	acc.Link(ids)
}
