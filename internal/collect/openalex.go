// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package collect harvests works and aggregate counts from the OpenAlex
// API.
package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/coauthor-graph/internal/httputil"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// DefaultBaseURL is the OpenAlex API root.
const DefaultBaseURL = "https://api.openalex.org"

const maxPerPage = 200

// Client queries the OpenAlex /works endpoint.
type Client struct {
	HTTP    *httputil.Client
	BaseURL string

	// Email is sent as mailto parameter for polite pool access.
	Email string

	Log zerolog.Logger
}

// NewClient builds a Client from cfg. email overrides cfg.Email when set.
func NewClient(client *httputil.Client, cfg types.OpenAlexConfig, email string, log zerolog.Logger) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if email == "" {
		email = cfg.Email
	}
	return &Client{HTTP: client, BaseURL: strings.TrimSuffix(base, "/"), Email: email, Log: log}
}

// OpenAlex API JSON structures.
type worksPage struct {
	Meta    worksMeta         `json:"meta"`
	Results []json.RawMessage `json:"results"`
}

type worksMeta struct {
	Count           int     `json:"count"`
	PerPage         int     `json:"per_page"`
	NextCursor      *string `json:"next_cursor"`
	CitedByCountSum int     `json:"cited_by_count_sum"`
}

func (c *Client) get(ctx context.Context, params url.Values) (worksPage, error) {
	if c.Email != "" {
		params.Set("mailto", c.Email)
	}
	reqURL := c.BaseURL + "/works?" + params.Encode()

	body, err := c.HTTP.Get(ctx, reqURL)
	if err != nil {
		return worksPage{}, fmt.Errorf("OpenAlex API request: %w", err)
	}
	var page worksPage
	if err := json.Unmarshal(body, &page); err != nil {
		return worksPage{}, fmt.Errorf("parsing OpenAlex response: %w", err)
	}
	return page, nil
}

// WorksOptions configures a harvest.
type WorksOptions struct {
	Select  string
	Filter  string
	PerPage int

	// MaxPages stops the harvest early when positive.
	MaxPages int
}

// WorksSummary reports one harvest.
type WorksSummary struct {
	Filter   string
	Expected int
	Pages    int
	Works    int
}

// Works pages through /works for opts.Filter using cursor pagination and
// returns the raw work objects. The expected page count comes from the
// first page's meta.count.
func (c *Client) Works(ctx context.Context, opts WorksOptions) ([][]byte, WorksSummary, error) {
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = 25
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	sum := WorksSummary{Filter: opts.Filter}

	var works [][]byte
	cursor := "*"
	totalPages := 0
	for {
		params := url.Values{
			"per_page": {strconv.Itoa(perPage)},
			"cursor":   {cursor},
		}
		if opts.Select != "" {
			params.Set("select", opts.Select)
		}
		if opts.Filter != "" {
			params.Set("filter", opts.Filter)
		}

		page, err := c.get(ctx, params)
		if err != nil {
			return works, sum, fmt.Errorf("page %d: %w", sum.Pages+1, err)
		}
		if sum.Pages == 0 {
			sum.Expected = page.Meta.Count
			totalPages = (page.Meta.Count + perPage - 1) / perPage
			c.Log.Info().Str("filter", opts.Filter).Int("count", page.Meta.Count).Int("pages", totalPages).Msg("starting harvest")
		}
		sum.Pages++
		for _, w := range page.Results {
			works = append(works, []byte(w))
		}
		c.Log.Debug().Int("page", sum.Pages).Int("of", totalPages).Int("works", len(works)).Msg("fetched page")

		if len(page.Results) == 0 || page.Meta.NextCursor == nil || *page.Meta.NextCursor == "" {
			break
		}
		if opts.MaxPages > 0 && sum.Pages >= opts.MaxPages {
			break
		}
		cursor = *page.Meta.NextCursor
	}
	sum.Works = len(works)
	return works, sum, nil
}

// YearFilter appends a publication_year clause to filter.
func YearFilter(filter string, year int) string {
	clause := "publication_year:" + strconv.Itoa(year)
	if filter == "" {
		return clause
	}
	return filter + "," + clause
}

// YearResult is the outcome of harvesting one publication year.
type YearResult struct {
	Year    int
	Summary WorksSummary
	Err     error
}

// Harvest runs Works once per year. A failed year is logged and reported
// in its YearResult; works gathered so far are kept. Only context
// cancellation aborts the harvest.
func (c *Client) Harvest(ctx context.Context, years []int, opts WorksOptions) ([][]byte, []YearResult, error) {
	var all [][]byte
	results := make([]YearResult, 0, len(years))
	for _, year := range years {
		yo := opts
		yo.Filter = YearFilter(opts.Filter, year)
		works, sum, err := c.Works(ctx, yo)
		all = append(all, works...)
		results = append(results, YearResult{Year: year, Summary: sum, Err: err})
		if err != nil {
			if ctx.Err() != nil {
				return all, results, ctx.Err()
			}
			c.Log.Error().Err(err).Int("year", year).Msg("harvest failed")
			continue
		}
		c.Log.Info().Int("year", year).Int("works", sum.Works).Msg("harvested year")
	}
	return all, results, nil
}
