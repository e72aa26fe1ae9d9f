// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/coauthor-graph/internal/collect"
	"github.com/pdiddy/coauthor-graph/internal/httputil"
	"github.com/pdiddy/coauthor-graph/internal/observability"
	"github.com/pdiddy/coauthor-graph/internal/secrets"
)

func newCountsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counts",
		Short: "Report OpenAlex work and citation counts per year and subfield",
		Long: `Counts asks OpenAlex for the number of works and their summed citations
for every combination of --year and subfield, restricted to one country.
Subfields are read from a CSV with subfield_id and subfield_display_name
columns. Failed queries are logged and left out of the report.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCounts(cmd)
		},
	}
	cmd.Flags().String("subfields", "", "CSV of subfield_id, subfield_display_name")
	cmd.Flags().String("country", "BR", "institution country code")
	cmd.Flags().IntSlice("year", nil, "publication year (repeatable)")
	cmd.Flags().String("filter", collect.DefaultCountsFilter, "base filter for every query")
	cmd.Flags().String("email", "", "contact email for the OpenAlex polite pool")
	cmd.Flags().String("out", "", "output CSV (default publication_counts_<country>.csv)")
	cmd.MarkFlagRequired("subfields")
	cmd.MarkFlagRequired("year")
	return cmd
}

func (a *app) runCounts(cmd *cobra.Command) error {
	subfieldsPath, _ := cmd.Flags().GetString("subfields")
	country, _ := cmd.Flags().GetString("country")
	years, _ := cmd.Flags().GetIntSlice("year")
	filter, _ := cmd.Flags().GetString("filter")
	email, _ := cmd.Flags().GetString("email")
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = fmt.Sprintf("publication_counts_%s.csv", country)
	}

	f, err := readInput(subfieldsPath)
	if err != nil {
		return err
	}
	subfields, err := collect.ReadSubfields(f)
	f.Close()
	if err != nil {
		return err
	}
	if len(subfields) == 0 {
		return fmt.Errorf("no subfields in %s", subfieldsPath)
	}

	cfg := a.cfg.OpenAlex
	log := observability.WithSource(a.log, "openalex")
	hc := httputil.NewClient("openalex", cfg.HTTPConfig, a.metrics)
	client := collect.NewClient(hc, cfg, a.secretDefault(secrets.OpenAlexEmailKey, email), log)

	rows, failed, err := client.SubfieldCounts(log.WithContext(cmd.Context()), collect.CountsOptions{
		Country:    country,
		Years:      years,
		Subfields:  subfields,
		BaseFilter: filter,
	})
	if err != nil {
		return err
	}
	if err := writeOutput(out, func(w io.Writer) error { return collect.WriteCounts(w, rows) }); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Counts: %d rows, %d failed queries, written to %s\n", len(rows), failed, out)
	return nil
}
