// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/coauthor-graph/internal/export"
	"github.com/pdiddy/coauthor-graph/internal/graph"
	"github.com/pdiddy/coauthor-graph/internal/observability"
	"github.com/pdiddy/coauthor-graph/internal/partition"
)

func newPartitionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "partition",
		Short: "Build one graph per category",
		Long: `Partition groups the dataset by category id and builds an independent
co-authorship graph for every group, written to
<out-dir>/<category>_network.<ext>. Records without a category form the
"unknown" group. A failed export affects only its own partition.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPartition(cmd)
		},
	}
	addInputFlags(cmd)
	addFilterFlags(cmd)
	addExportFlags(cmd)
	cmd.Flags().String("out-dir", "", "output directory (default export.dir)")
	cmd.Flags().Int("workers", 0, "partitions built concurrently (default partition.workers)")
	return cmd
}

func (a *app) runPartition(cmd *cobra.Command) error {
	format, opts, err := a.exportSettings(cmd)
	if err != nil {
		return err
	}
	exp, err := export.New(format)
	if err != nil {
		return err
	}

	outDir, _ := cmd.Flags().GetString("out-dir")
	if outDir == "" {
		outDir = a.cfg.Export.Dir
	}
	workers := a.cfg.Partition.Workers
	if cmd.Flags().Changed("workers") {
		workers, _ = cmd.Flags().GetInt("workers")
	}

	recs, err := a.loadFiltered(cmd)
	if err != nil {
		return err
	}
	parts := partition.ByCategory(recs)
	a.log.Info().Int("partitions", len(parts)).Int("workers", workers).Msg("building partitions")

	ctx := a.log.WithContext(cmd.Context())
	results, err := partition.Build(ctx, parts, opts, workers, func(ctx context.Context, p partition.Partition, g *graph.Graph) error {
		log := observability.WithPartition(a.log, p.Key)
		path := filepath.Join(outDir, export.FileName(p.Key, exp.Format))
		if err := exp.Write(log.WithContext(ctx), g, path); err != nil {
			log.Error().Err(err).Msg("partition export failed")
			return err
		}
		log.Info().Str("path", path).Int("nodes", g.NodeCount()).Int("edges", g.EdgeCount()).Msg("exported partition")
		return nil
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for i, r := range results {
		a.metrics.ObservePartition(r.Err)
		status := "ok"
		if r.Err != nil {
			status = "FAILED: " + r.Err.Error()
		} else {
			a.metrics.ObserveGraph(r.Graph.NodeCount(), r.Graph.EdgeCount())
		}
		name := parts[i].Category.DisplayName
		if name == "" {
			name = r.Key
		}
		fmt.Fprintf(w, "  %-40s %6d records  %6d nodes  %7d edges  %s\n",
			name, len(parts[i].Records), r.Graph.NodeCount(), r.Graph.EdgeCount(), status)
	}

	failed := partition.Failed(results)
	fmt.Fprintf(w, "\nPartitions: %d built, %d failed, run %s\n", len(results)-len(failed), len(failed), exp.RunID())
	if len(failed) > 0 {
		return fmt.Errorf("%d partition(s) failed export", len(failed))
	}
	return nil
}
