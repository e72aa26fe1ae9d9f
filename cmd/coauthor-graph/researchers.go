// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/coauthor-graph/internal/httputil"
	"github.com/pdiddy/coauthor-graph/internal/observability"
	"github.com/pdiddy/coauthor-graph/internal/subarea"
)

func newResearchersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "researchers",
		Short: "Download the CSIndex researcher catalog",
		Long: `Researchers joins the CSIndex list of researchers and DBLP pids with the
per-area researcher lists and writes every researcher that belongs to at
least one area. The output is the reference set used by subarea.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runResearchers(cmd)
		},
	}
	cmd.Flags().String("out", "data/researchers.csv", "output CSV")
	cmd.Flags().StringSlice("area", nil, "sub-area to include (repeatable, default dblp.areas)")
	return cmd
}

func (a *app) runResearchers(cmd *cobra.Command) error {
	out, _ := cmd.Flags().GetString("out")
	areas, _ := cmd.Flags().GetStringSlice("area")
	if len(areas) == 0 {
		areas = a.cfg.DBLP.Areas
	}

	cfg := a.cfg.DBLP
	log := observability.WithSource(a.log, "csindex")
	cat := &subarea.Catalog{
		HTTP:           httputil.NewClient("csindex", cfg.HTTPConfig, a.metrics),
		ResearchersURL: cfg.ResearchersURL,
		AreaBaseURL:    cfg.CatalogURL,
		Log:            log,
	}

	rs, sum, err := cat.Fetch(log.WithContext(cmd.Context()), areas)
	if err != nil {
		return err
	}
	if err := writeOutput(out, func(w io.Writer) error { return subarea.WriteReferenceSet(w, rs) }); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, area := range areas {
		fmt.Fprintf(w, "  %-10s %5d researchers\n", area, sum.AreaMatches[area])
	}
	fmt.Fprintf(w, "Catalog: %d researchers, %d with an area, written to %s\n", sum.Researchers, sum.Kept, out)
	if len(sum.AreaFailed) > 0 {
		return fmt.Errorf("%d area list(s) failed: %v", len(sum.AreaFailed), sum.AreaFailed)
	}
	return nil
}
