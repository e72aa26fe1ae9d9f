// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/coauthor-graph/internal/collect"
	"github.com/pdiddy/coauthor-graph/internal/dataset"
	"github.com/pdiddy/coauthor-graph/internal/httputil"
	"github.com/pdiddy/coauthor-graph/internal/normalize"
	"github.com/pdiddy/coauthor-graph/internal/observability"
	"github.com/pdiddy/coauthor-graph/internal/secrets"
)

func newCollectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Harvest works from the OpenAlex API",
		Long: `Collect pages through the OpenAlex /works endpoint once per publication
year and writes the works to --out. The output format follows the file
name: *.csv writes normalized records in tabular form, *.records.jsonl
writes normalized records, and any other *.jsonl writes the raw works.

A YAML manifest of the query and per-year results is written next to the
output as <out>.manifest.yaml. Pass a manifest to --query-file to repeat
its harvest, or add --retry-failed to repeat only the years that failed.
A retry run writes a partial dataset, so it refuses an --out that already
exists; merge the retry output with the first run afterwards.

The mailto parameter comes from --email, the openalex.email setting, or
.secrets/email.json.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCollect(cmd)
		},
	}
	cmd.Flags().IntSlice("year", nil, "publication year to harvest (repeatable)")
	cmd.Flags().String("filter", "", "base /works filter (default from config)")
	cmd.Flags().String("select", "", "fields to request (default from config)")
	cmd.Flags().Int("per-page", 0, "page size, at most 200 (default from config)")
	cmd.Flags().Int("max-pages", 0, "stop each year after this many pages (0 = all)")
	cmd.Flags().String("email", "", "contact email for the OpenAlex polite pool")
	cmd.Flags().String("out", "", "output file (.csv, .records.jsonl, or .jsonl)")
	cmd.Flags().String("query-file", "", "repeat the harvest recorded in a manifest")
	cmd.Flags().Bool("retry-failed", false, "with --query-file, harvest only the years that failed")
	cmd.MarkFlagRequired("out")
	return cmd
}

func (a *app) runCollect(cmd *cobra.Command) error {
	years, _ := cmd.Flags().GetIntSlice("year")
	out, _ := cmd.Flags().GetString("out")
	email, _ := cmd.Flags().GetString("email")
	maxPages, _ := cmd.Flags().GetInt("max-pages")

	format, err := dataset.Detect(out)
	if err != nil {
		return err
	}

	cfg := a.cfg.OpenAlex
	opts := collect.WorksOptions{Select: cfg.Select, Filter: cfg.Filter, PerPage: cfg.PerPage}
	retrying := false
	if qf, _ := cmd.Flags().GetString("query-file"); qf != "" {
		m, err := collect.ReadManifest(qf)
		if err != nil {
			return err
		}
		opts = m.Query.Options()
		if !cmd.Flags().Changed("year") {
			years = m.Query.Years
			if retry, _ := cmd.Flags().GetBool("retry-failed"); retry {
				years = m.FailedYears()
				retrying = true
			}
		}
	}
	if len(years) == 0 {
		return fmt.Errorf("no years to harvest: pass --year or --query-file")
	}
	if retrying {
		if _, err := os.Stat(out); err == nil {
			return fmt.Errorf("refusing to overwrite %s with a partial retry: choose a fresh --out", out)
		}
	}
	opts.MaxPages = maxPages
	if cmd.Flags().Changed("filter") {
		opts.Filter, _ = cmd.Flags().GetString("filter")
	}
	if cmd.Flags().Changed("select") {
		opts.Select, _ = cmd.Flags().GetString("select")
	}
	if cmd.Flags().Changed("per-page") {
		opts.PerPage, _ = cmd.Flags().GetInt("per-page")
	}

	log := observability.WithSource(a.log, "openalex")
	hc := httputil.NewClient("openalex", cfg.HTTPConfig, a.metrics)
	client := collect.NewClient(hc, cfg, a.secretDefault(secrets.OpenAlexEmailKey, email), log)
	if client.Email == "" {
		log.Warn().Msg("no contact email configured; requests use the common pool")
	}

	ctx := log.WithContext(cmd.Context())
	raws, results, err := client.Harvest(ctx, years, opts)
	if err != nil {
		return err
	}

	var failed int
	w := cmd.OutOrStdout()
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = "FAILED: " + r.Err.Error()
			failed++
		}
		fmt.Fprintf(w, "  %d  %6d works  %4d pages  %s\n", r.Year, r.Summary.Works, r.Summary.Pages, status)
	}

	switch format {
	case dataset.FormatWorks:
		err = writeOutput(out, func(f io.Writer) error { return dataset.WriteWorks(f, raws) })
	default:
		recs, sum := normalize.Batch(raws, log)
		a.observeBatch(sum)
		fmt.Fprintf(w, "Normalized: %d accepted, %d skipped (%s)\n", sum.Accepted, sum.Skipped, formatReasons(sum.Reasons))
		if format == dataset.FormatCSV {
			err = writeOutput(out, func(f io.Writer) error { return dataset.WriteRecordsCSV(f, recs) })
		} else {
			err = writeOutput(out, func(f io.Writer) error { return dataset.WriteRecords(f, recs) })
		}
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Wrote %d works to %s\n", len(raws), out)

	manifest := out + ".manifest.yaml"
	if err := collect.WriteManifest(manifest, collect.NewManifest(years, opts, results, out)); err != nil {
		return err
	}
	a.log.Info().Str("path", manifest).Msg("wrote harvest manifest")

	if failed > 0 {
		return fmt.Errorf("%d year(s) failed collection", failed)
	}
	return nil
}
