// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/coauthor-graph/internal/dataset"
)

// Count is the meta of a minimal /works query.
type Count struct {
	Works     int
	Citations int
}

// Count returns the number of works matching filter and the sum of their
// citations.
func (c *Client) Count(ctx context.Context, filter string) (Count, error) {
	params := url.Values{
		"select":             {"id"},
		"filter":             {filter},
		"per_page":           {"1"},
		"cited_by_count_sum": {"true"},
	}
	page, err := c.get(ctx, params)
	if err != nil {
		return Count{}, err
	}
	return Count{Works: page.Meta.Count, Citations: page.Meta.CitedByCountSum}, nil
}

// Subfield identifies an OpenAlex subfield.
type Subfield struct {
	ID          string
	DisplayName string
}

// CountRow is one line of the subfield counts report.
type CountRow struct {
	Year                int
	SubfieldID          string
	SubfieldDisplayName string
	Count               int
	CitationCount       int
	CountryCode         string
}

// CountColumns is the column order of the counts report.
var CountColumns = []string{"publication_year", "subfield_id", "subfield_display_name", "count", "citation_count", "country_code"}

// DefaultCountsFilter restricts counts to computer science articles and
// book chapters.
const DefaultCountsFilter = "type:types/article|types/book-chapter,primary_topic.field.id:17"

// CountsOptions configures SubfieldCounts.
type CountsOptions struct {
	Country    string
	Years      []int
	Subfields  []Subfield
	BaseFilter string
}

// SubfieldCounts queries the work and citation count for every year and
// subfield. A failed query is logged and left out of the report.
func (c *Client) SubfieldCounts(ctx context.Context, opts CountsOptions) ([]CountRow, int, error) {
	base := opts.BaseFilter
	if base == "" {
		base = DefaultCountsFilter
	}

	var rows []CountRow
	failed := 0
	for _, year := range opts.Years {
		for _, sf := range opts.Subfields {
			if err := ctx.Err(); err != nil {
				return rows, failed, err
			}
			parts := []string{base}
			if opts.Country != "" {
				parts = append(parts, "institutions.country_code:"+opts.Country)
			}
			parts = append(parts, "primary_topic.subfield.id:"+sf.ID, "publication_year:"+strconv.Itoa(year))

			cnt, err := c.Count(ctx, strings.Join(parts, ","))
			if err != nil {
				if ctx.Err() != nil {
					return rows, failed, ctx.Err()
				}
				failed++
				c.Log.Error().Err(err).Int("year", year).Str("subfield", sf.ID).Msg("count failed")
				continue
			}
			c.Log.Info().Int("year", year).Str("subfield", sf.ID).Str("name", sf.DisplayName).
				Int("count", cnt.Works).Int("citations", cnt.Citations).Msg("counted")
			rows = append(rows, CountRow{
				Year:                year,
				SubfieldID:          sf.ID,
				SubfieldDisplayName: sf.DisplayName,
				Count:               cnt.Works,
				CitationCount:       cnt.Citations,
				CountryCode:         opts.Country,
			})
		}
	}
	return rows, failed, nil
}

// ReadSubfields reads a CSV with subfield_id and subfield_display_name
// columns. Rows without an id are skipped.
func ReadSubfields(r io.Reader) ([]Subfield, error) {
	rows, err := dataset.ReadTable(r)
	if err != nil {
		return nil, fmt.Errorf("reading subfields: %w", err)
	}
	var out []Subfield
	for _, row := range rows {
		id := strings.TrimSpace(row["subfield_id"])
		if id == "" {
			continue
		}
		out = append(out, Subfield{ID: id, DisplayName: strings.TrimSpace(row["subfield_display_name"])})
	}
	return out, nil
}

// WriteCounts writes the counts report as CSV.
func WriteCounts(w io.Writer, rows []CountRow) error {
	out := make([]map[string]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, map[string]string{
			"publication_year":      strconv.Itoa(r.Year),
			"subfield_id":           r.SubfieldID,
			"subfield_display_name": r.SubfieldDisplayName,
			"count":                 strconv.Itoa(r.Count),
			"citation_count":        strconv.Itoa(r.CitationCount),
			"country_code":          r.CountryCode,
		})
	}
	return dataset.WriteTable(w, CountColumns, out)
}
