// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package subarea

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/coauthor-graph/internal/dataset"
	"github.com/pdiddy/coauthor-graph/internal/httputil"
)

// Catalog assembles the researcher reference set from CSIndex: the list of
// all researchers with their DBLP pids, joined with the per-area lists of
// researchers by (name, institution).
type Catalog struct {
	HTTP *httputil.Client

	// ResearchersURL points at all-researchers.csv (researcher,
	// institution, pid; no header).
	ResearchersURL string

	// AreaBaseURL is the directory holding <area>-out-profs-list.csv
	// files (researcher, institution; no header).
	AreaBaseURL string

	Log zerolog.Logger
}

// CatalogSummary reports a catalog build.
type CatalogSummary struct {
	Researchers int
	Kept        int
	AreaMatches map[string]int
	AreaFailed  []string
}

type nameInst struct{ name, inst string }

// Fetch downloads the catalog and returns researchers with at least one
// area, in catalog order. A failed area list is logged and skipped; a
// failed researcher list is an error.
func (c *Catalog) Fetch(ctx context.Context, areas []string) ([]Researcher, CatalogSummary, error) {
	sum := CatalogSummary{AreaMatches: make(map[string]int)}

	body, err := c.HTTP.Get(ctx, c.ResearchersURL)
	if err != nil {
		return nil, sum, fmt.Errorf("fetching researcher list: %w", err)
	}
	rows, err := dataset.ReadHeaderless(bytes.NewReader(body), []string{"researcher", "institution", "pid"})
	if err != nil {
		return nil, sum, fmt.Errorf("parsing researcher list: %w", err)
	}
	all := make([]Researcher, 0, len(rows))
	for _, row := range rows {
		all = append(all, Researcher{Name: row["researcher"], Institution: row["institution"], PID: row["pid"]})
	}
	sum.Researchers = len(all)
	c.Log.Info().Int("researchers", len(all)).Msg("loaded researcher list")

	base := c.AreaBaseURL
	if base != "" && !strings.HasSuffix(base, "/") {
		base += "/"
	}
	for _, area := range areas {
		if err := ctx.Err(); err != nil {
			return nil, sum, err
		}
		members, err := c.areaMembers(ctx, base+area+"-out-profs-list.csv")
		if err != nil {
			if ctx.Err() != nil {
				return nil, sum, ctx.Err()
			}
			sum.AreaFailed = append(sum.AreaFailed, area)
			c.Log.Warn().Err(err).Str("area", area).Msg("skipping area")
			continue
		}
		matches := 0
		for i := range all {
			if members[nameInst{all[i].Name, all[i].Institution}] {
				all[i].Areas = append(all[i].Areas, area)
				matches++
			}
		}
		sum.AreaMatches[area] = matches
		c.Log.Info().Str("area", area).Int("entries", len(members)).Int("matches", matches).Msg("processed area")
	}

	kept := all[:0]
	for _, r := range all {
		if len(r.Areas) > 0 {
			kept = append(kept, r)
		}
	}
	sum.Kept = len(kept)
	return kept, sum, nil
}

func (c *Catalog) areaMembers(ctx context.Context, url string) (map[nameInst]bool, error) {
	body, err := c.HTTP.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	rows, err := dataset.ReadHeaderless(bytes.NewReader(body), []string{"researcher", "institution"})
	if err != nil {
		return nil, err
	}
	set := make(map[nameInst]bool, len(rows))
	for _, row := range rows {
		set[nameInst{row["researcher"], row["institution"]}] = true
	}
	return set, nil
}
