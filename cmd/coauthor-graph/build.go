// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/coauthor-graph/internal/dataset"
	"github.com/pdiddy/coauthor-graph/internal/export"
	"github.com/pdiddy/coauthor-graph/internal/graph"
	"github.com/pdiddy/coauthor-graph/internal/partition"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

func newBuildCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build one co-authorship graph from a dataset",
		Long: `Build reads a publication dataset, applies the optional filters, and
accumulates every remaining record into a single co-authorship graph.
Each author's category is the category most often seen on their papers;
ties go to the category seen first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBuild(cmd)
		},
	}
	addInputFlags(cmd)
	addFilterFlags(cmd)
	addExportFlags(cmd)
	cmd.Flags().String("out", "", "output file (default <export.dir>/full_network.<ext>)")
	return cmd
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().String("in", "", "input dataset (.csv, .jsonl, .records.jsonl)")
	cmd.Flags().String("input-format", string(dataset.FormatAuto), "input format: auto, csv, works, records")
	cmd.MarkFlagRequired("in")
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().Int("min-citations", 0, "keep records cited more than this many times")
	cmd.Flags().String("category", "", "keep records whose category display name matches")
	cmd.Flags().String("country", "", "keep records with an author in this country")
}

func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "", "export format: gexf, json, yaml, sqlite (default from config)")
	cmd.Flags().String("category-key", "", "vote on category id or display_name (default from config)")
}

// filtersFromFlags returns the predicates selected on the command line.
// --min-citations applies only when given, so that records without a
// citation count survive by default.
func filtersFromFlags(cmd *cobra.Command) []partition.Predicate {
	var preds []partition.Predicate
	if cmd.Flags().Changed("min-citations") {
		t, _ := cmd.Flags().GetInt("min-citations")
		preds = append(preds, partition.CitationAbove(t))
	}
	if name, _ := cmd.Flags().GetString("category"); name != "" {
		preds = append(preds, partition.CategoryIs(name))
	}
	if code, _ := cmd.Flags().GetString("country"); code != "" {
		preds = append(preds, partition.CountryIs(code))
	}
	return preds
}

// exportSettings resolves the export format and graph options from config
// and flags.
func (a *app) exportSettings(cmd *cobra.Command) (types.ExportFormat, graph.Options, error) {
	format := a.cfg.Export.Format
	if f, _ := cmd.Flags().GetString("format"); f != "" {
		format = types.ExportFormat(f)
	}
	gcfg := a.cfg.Graph
	if k, _ := cmd.Flags().GetString("category-key"); k != "" {
		gcfg.CategoryKey = types.CategoryKey(k)
	}
	switch gcfg.CategoryKey {
	case "", types.CategoryByID, types.CategoryByDisplayName:
	default:
		return "", graph.Options{}, fmt.Errorf("unknown category key %q", gcfg.CategoryKey)
	}
	return format, graph.OptionsFromConfig(gcfg), nil
}

// loadFiltered loads the --in dataset and applies the filter flags.
func (a *app) loadFiltered(cmd *cobra.Command) ([]types.PublicationRecord, error) {
	in, _ := cmd.Flags().GetString("in")
	inFormat, _ := cmd.Flags().GetString("input-format")

	recs, sum, err := a.loadRecords(in, dataset.Format(inFormat))
	if err != nil {
		return nil, err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Records: %d accepted, %d skipped (%s)\n", sum.Accepted, sum.Skipped, formatReasons(sum.Reasons))

	preds := filtersFromFlags(cmd)
	if len(preds) == 0 {
		return recs, nil
	}
	kept := partition.Filter(recs, preds...)
	a.metrics.ObserveFiltered(len(recs) - len(kept))
	fmt.Fprintf(w, "Filtered: %d of %d records kept\n", len(kept), len(recs))
	return kept, nil
}

func (a *app) runBuild(cmd *cobra.Command) error {
	format, opts, err := a.exportSettings(cmd)
	if err != nil {
		return err
	}
	exp, err := export.New(format)
	if err != nil {
		return err
	}
	in, _ := cmd.Flags().GetString("in")
	exp.Description = "co-authorship network built from " + filepath.Base(in)

	recs, err := a.loadFiltered(cmd)
	if err != nil {
		return err
	}

	acc := graph.NewAccumulator(opts)
	for _, rec := range recs {
		acc.Ingest(rec)
	}
	g := acc.Finalize()
	a.metrics.ObserveGraph(g.NodeCount(), g.EdgeCount())
	if n := acc.Duplicates(); n > 0 {
		a.log.Warn().Int("duplicates", n).Msg("skipped repeated records")
		fmt.Fprintf(cmd.OutOrStdout(), "Duplicates: %d repeated records skipped\n", n)
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = filepath.Join(a.cfg.Export.Dir, export.FileName("full", exp.Format))
	}
	ctx := a.log.WithContext(cmd.Context())
	if err := exp.Write(ctx, g, out); err != nil {
		return err
	}
	a.log.Info().Str("path", out).Str("run_id", exp.RunID()).Int("nodes", g.NodeCount()).Int("edges", g.EdgeCount()).Msg("exported graph")

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Graph: %d nodes, %d edges, total weight %d\n", g.NodeCount(), g.EdgeCount(), g.TotalWeight())
	fmt.Fprintf(w, "Wrote %s (%s)\n", out, exp.Format)
	return nil
}
