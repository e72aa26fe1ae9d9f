// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/coauthor-graph/internal/export"
	"github.com/pdiddy/coauthor-graph/internal/httputil"
	"github.com/pdiddy/coauthor-graph/internal/observability"
	"github.com/pdiddy/coauthor-graph/internal/subarea"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

func newSubareaCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subarea",
		Short: "Build DBLP co-authorship networks for CSIndex sub-areas",
		Long: `Subarea expands the reference researchers of each area into a
co-authorship network using their DBLP publication lists. Every node is
labelled with a sub-area: the researcher's own area, another area when
they belong to exactly one, "multi" when they belong to several, or
"external" when they are not in the reference set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSubarea(cmd)
		},
	}
	cmd.Flags().String("researchers", "data/researchers.csv", "reference set written by researchers")
	cmd.Flags().StringSlice("area", nil, "sub-area to build (repeatable, default dblp.areas)")
	cmd.Flags().String("out-dir", "", "output directory (default export.dir)")
	cmd.Flags().String("format", "", "export format: gexf, json, yaml, sqlite (default from config)")
	return cmd
}

func (a *app) runSubarea(cmd *cobra.Command) error {
	refsPath, _ := cmd.Flags().GetString("researchers")
	areas, _ := cmd.Flags().GetStringSlice("area")
	if len(areas) == 0 {
		areas = a.cfg.DBLP.Areas
	}
	outDir, _ := cmd.Flags().GetString("out-dir")
	if outDir == "" {
		outDir = a.cfg.Export.Dir
	}
	format := a.cfg.Export.Format
	if f, _ := cmd.Flags().GetString("format"); f != "" {
		format = types.ExportFormat(f)
	}
	exp, err := export.New(format)
	if err != nil {
		return err
	}

	f, err := readInput(refsPath)
	if err != nil {
		return err
	}
	refs, err := subarea.LoadReferenceSet(f)
	f.Close()
	if err != nil {
		return err
	}

	cfg := a.cfg.DBLP
	log := observability.WithSource(a.log, "dblp")
	b := &subarea.Builder{
		Source: subarea.NewDBLPClient(httputil.NewClient("dblp", cfg.HTTPConfig, a.metrics), cfg.BaseURL),
		Refs:   refs,
		Log:    log,
	}

	ctx := log.WithContext(cmd.Context())
	w := cmd.OutOrStdout()
	var failed int
	for _, area := range areas {
		g, sum, err := b.Build(ctx, area)
		if err != nil {
			return err
		}
		exp.Description = "DBLP co-authorship network for sub-area " + area
		path := filepath.Join(outDir, export.FileName(area, exp.Format))
		status := "ok"
		if err := exp.Write(ctx, g, path); err != nil {
			log.Error().Err(err).Str("area", area).Msg("export failed")
			status = "FAILED: " + err.Error()
			failed++
		} else {
			a.metrics.ObserveGraph(g.NodeCount(), g.EdgeCount())
		}
		fmt.Fprintf(w, "  %-10s %5d seeds  %5d fetch failures  %6d publications  %6d nodes  %7d edges  %s\n",
			area, sum.Seeds, sum.FetchFailed, sum.Publications, g.NodeCount(), g.EdgeCount(), status)
	}

	if failed > 0 {
		return fmt.Errorf("%d area export(s) failed", failed)
	}
	return nil
}
