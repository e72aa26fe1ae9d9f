// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pdiddy/coauthor-graph/internal/dataset"
	"github.com/pdiddy/coauthor-graph/internal/normalize"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// loadRecords reads and normalizes a dataset and records the read and skip
// counts.
func (a *app) loadRecords(path string, format dataset.Format) ([]types.PublicationRecord, normalize.BatchSummary, error) {
	recs, sum, err := dataset.Load(path, format, a.log.With().Str("input", path).Logger())
	if err != nil {
		return nil, sum, err
	}
	a.observeBatch(sum)
	a.log.Info().Int("accepted", sum.Accepted).Int("skipped", sum.Skipped).
		Int("authors_dropped", sum.AuthorsDropped).Msg("loaded records")
	return recs, sum, nil
}

func (a *app) observeBatch(sum normalize.BatchSummary) {
	a.metrics.ObserveRead(sum.Accepted + sum.Skipped)
	for reason, n := range sum.Reasons {
		for range n {
			a.metrics.ObserveSkipped(reason)
		}
	}
	a.metrics.ObserveAuthorsDropped(sum.AuthorsDropped)
}

// writeOutput creates path and hands it to fill.
func writeOutput(path string, fill func(io.Writer) error) error {
	f, err := dataset.Create(path)
	if err != nil {
		return err
	}
	if err := fill(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// readInput opens path for reading.
func readInput(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, nil
}

// formatReasons renders skip reasons as "malformed=2, missing_id=1".
func formatReasons(reasons map[string]int) string {
	if len(reasons) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(reasons))
	for k := range reasons {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, reasons[k])
	}
	return strings.Join(parts, ", ")
}
