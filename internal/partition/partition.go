// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package partition splits and filters publication records ahead of graph
// accumulation.
package partition

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/coauthor-graph/internal/graph"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// Partition is a disjoint group of records sharing one category id.
type Partition struct {
	// Key is the category id, or types.UnknownCategory when the records
	// carry no classification.
	Key string

	// Category is the first-seen category of the group.
	Category types.CategoryRef

	Records []types.PublicationRecord
}

// ByCategory groups records by Category.ID. Groups appear in first-seen
// order and keep the input record order.
func ByCategory(records []types.PublicationRecord) []Partition {
	index := make(map[string]int)
	var parts []Partition
	for _, rec := range records {
		key := rec.Category.ID
		if key == "" {
			key = types.UnknownCategory
		}
		i, ok := index[key]
		if !ok {
			i = len(parts)
			index[key] = i
			parts = append(parts, Partition{Key: key, Category: rec.Category})
		}
		parts[i].Records = append(parts[i].Records, rec)
	}
	return parts
}

// Result is the outcome of building one partition.
type Result struct {
	Key   string
	Graph *graph.Graph
	Err   error
}

// BuildFunc receives each finalized partition graph, typically to export it.
type BuildFunc func(ctx context.Context, p Partition, g *graph.Graph) error

// Build accumulates one independent graph per partition, running at most
// workers partitions at a time, and hands each finalized graph to fn. A
// failure in one partition is recorded in its Result and does not stop the
// others. The returned error is non-nil only when ctx is cancelled.
// Results are in partition order.
func Build(ctx context.Context, parts []Partition, opts graph.Options, workers int, fn BuildFunc) ([]Result, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]Result, len(parts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range parts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p := parts[i]
			gr := graph.Build(p.Records, opts)
			res := Result{Key: p.Key, Graph: gr}
			if fn != nil {
				res.Err = fn(ctx, p, gr)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
