// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/coauthor-graph/internal/httputil"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	hc := httputil.NewClient("openalex", types.HTTPConfig{}, nil)
	return NewClient(hc, types.OpenAlexConfig{BaseURL: ts.URL}, "test@example.com", zerolog.Nop())
}

func writePage(w http.ResponseWriter, count int, next string, ids ...string) {
	results := make([]map[string]string, 0, len(ids))
	for _, id := range ids {
		results = append(results, map[string]string{"id": id})
	}
	meta := map[string]any{"count": count}
	if next != "" {
		meta["next_cursor"] = next
	} else {
		meta["next_cursor"] = nil
	}
	json.NewEncoder(w).Encode(map[string]any{"meta": meta, "results": results})
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(nil, types.OpenAlexConfig{Email: "cfg@example.com"}, "", zerolog.Nop())
	assert.Equal(t, DefaultBaseURL, c.BaseURL)
	assert.Equal(t, "cfg@example.com", c.Email)

	c = NewClient(nil, types.OpenAlexConfig{BaseURL: "http://x/", Email: "cfg@example.com"}, "secret@example.com", zerolog.Nop())
	assert.Equal(t, "http://x", c.BaseURL)
	assert.Equal(t, "secret@example.com", c.Email)
}

func TestWorksPaginates(t *testing.T) {
	var cursors []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/works", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "test@example.com", q.Get("mailto"))
		assert.Equal(t, "id,title", q.Get("select"))
		assert.Equal(t, "type:article", q.Get("filter"))
		assert.Equal(t, "2", q.Get("per_page"))
		cursors = append(cursors, q.Get("cursor"))
		switch q.Get("cursor") {
		case "*":
			writePage(w, 3, "c2", "W1", "W2")
		case "c2":
			writePage(w, 3, "", "W3")
		default:
			t.Errorf("unexpected cursor %q", q.Get("cursor"))
		}
	})

	works, sum, err := c.Works(context.Background(), WorksOptions{Select: "id,title", Filter: "type:article", PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"*", "c2"}, cursors)
	require.Len(t, works, 3)
	assert.JSONEq(t, `{"id":"W3"}`, string(works[2]))
	assert.Equal(t, WorksSummary{Filter: "type:article", Expected: 3, Pages: 2, Works: 3}, sum)
}

func TestWorksStopsOnEmptyPageAndMaxPages(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		writePage(w, 100, fmt.Sprintf("c%d", calls), "W")
	})
	works, sum, err := c.Works(context.Background(), WorksOptions{MaxPages: 2})
	require.NoError(t, err)
	assert.Len(t, works, 2)
	assert.Equal(t, 2, sum.Pages)

	c = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writePage(w, 0, "next")
	})
	works, sum, err = c.Works(context.Background(), WorksOptions{})
	require.NoError(t, err)
	assert.Empty(t, works)
	assert.Equal(t, 1, sum.Pages)
}

func TestWorksClampsPerPage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "200", r.URL.Query().Get("per_page"))
		writePage(w, 0, "")
	})
	_, _, err := c.Works(context.Background(), WorksOptions{PerPage: 1000})
	require.NoError(t, err)
}

func TestWorksErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		errMsg  string
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}, "status 500"},
		{"bad json", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("{not json"))
		}, "parsing OpenAlex response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			_, _, err := c.Works(context.Background(), WorksOptions{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestYearFilter(t *testing.T) {
	assert.Equal(t, "publication_year:2020", YearFilter("", 2020))
	assert.Equal(t, "type:article,publication_year:2021", YearFilter("type:article", 2021))
}

func TestHarvestContinuesPastFailedYear(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		f := r.URL.Query().Get("filter")
		switch {
		case strings.HasSuffix(f, "publication_year:2020"):
			writePage(w, 1, "", "W2020")
		case strings.HasSuffix(f, "publication_year:2021"):
			w.WriteHeader(http.StatusBadRequest)
		case strings.HasSuffix(f, "publication_year:2022"):
			writePage(w, 2, "", "W2022a", "W2022b")
		}
	})

	works, results, err := c.Harvest(context.Background(), []int{2020, 2021, 2022}, WorksOptions{Filter: "type:article"})
	require.NoError(t, err)
	assert.Len(t, works, 3)
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, "type:article,publication_year:2022", results[2].Summary.Filter)
}

func TestHarvestCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writePage(w, 1, "", "W")
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := c.Harvest(ctx, []int{2020, 2021}, WorksOptions{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestCount(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "id", q.Get("select"))
		assert.Equal(t, "1", q.Get("per_page"))
		assert.Equal(t, "true", q.Get("cited_by_count_sum"))
		w.Write([]byte(`{"meta":{"count":42,"cited_by_count_sum":310},"results":[{"id":"W1"}]}`))
	})
	cnt, err := c.Count(context.Background(), "publication_year:2020")
	require.NoError(t, err)
	assert.Equal(t, Count{Works: 42, Citations: 310}, cnt)
}

func TestSubfieldCounts(t *testing.T) {
	var filters []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		f := r.URL.Query().Get("filter")
		filters = append(filters, f)
		if strings.Contains(f, "subfield.id:1703") && strings.Contains(f, "2021") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"meta":{"count":5,"cited_by_count_sum":9},"results":[]}`))
	})

	rows, failed, err := c.SubfieldCounts(context.Background(), CountsOptions{
		Country:   "BR",
		Years:     []int{2020, 2021},
		Subfields: []Subfield{{ID: "1702", DisplayName: "Artificial Intelligence"}, {ID: "1703", DisplayName: "Computational Theory"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, failed)
	require.Len(t, rows, 3)
	assert.Equal(t, CountRow{Year: 2020, SubfieldID: "1702", SubfieldDisplayName: "Artificial Intelligence", Count: 5, CitationCount: 9, CountryCode: "BR"}, rows[0])
	assert.Equal(t, DefaultCountsFilter+",institutions.country_code:BR,primary_topic.subfield.id:1702,publication_year:2020", filters[0])
}

func TestReadSubfieldsAndWriteCounts(t *testing.T) {
	in := "subfield_id,subfield_display_name\n1702,Artificial Intelligence\n,Empty\n1705, Computer Networks \n"
	sfs, err := ReadSubfields(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []Subfield{{"1702", "Artificial Intelligence"}, {"1705", "Computer Networks"}}, sfs)

	var buf bytes.Buffer
	require.NoError(t, WriteCounts(&buf, []CountRow{{Year: 2020, SubfieldID: "1702", SubfieldDisplayName: "Artificial Intelligence", Count: 5, CitationCount: 9, CountryCode: "BR"}}))
	assert.Equal(t, "publication_year,subfield_id,subfield_display_name,count,citation_count,country_code\n2020,1702,Artificial Intelligence,5,9,BR\n", buf.String())
}

func TestManifestRoundTrip(t *testing.T) {
	opts := WorksOptions{Select: "id", Filter: "type:article", PerPage: 50}
	results := []YearResult{
		{Year: 2020, Summary: WorksSummary{Expected: 3, Works: 3, Pages: 1}},
		{Year: 2021, Err: fmt.Errorf("page 1: boom")},
	}
	m := NewManifest([]int{2020, 2021}, opts, results, "data/publications.csv")
	assert.Equal(t, 3, m.Summary.Works)
	assert.Equal(t, 1, m.Summary.Failed)
	assert.Equal(t, []int{2021}, m.FailedYears())

	path := filepath.Join(t.TempDir(), "harvest.yaml")
	require.NoError(t, WriteManifest(path, m))

	got, err := ReadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, opts, got.Query.Options())
	assert.Equal(t, []int{2020, 2021}, got.Query.Years)
	assert.Equal(t, "page 1: boom", got.Years[1].Error)
	assert.Equal(t, "data/publications.csv", got.Summary.Output)
}

func TestReadManifestErrors(t *testing.T) {
	_, err := ReadManifest(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("query: [unclosed"), 0o644))
	_, err = ReadManifest(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing manifest")
}
