// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/coauthor-graph/pkg/types"
)

const sampleWork = `{
  "id": "https://openalex.org/W2741809807",
  "doi": "https://doi.org/10.7717/peerj.4375",
  "title": "The state of OA",
  "publication_year": 2018,
  "cited_by_count": 150,
  "authorships": [
    {
      "author": {"id": "https://openalex.org/A5023888391", "display_name": "Heather Piwowar"},
      "institutions": [{"id": "https://openalex.org/I4200000001", "display_name": "Impactstory"}],
      "countries": ["US"]
    },
    {
      "author": {"id": null, "display_name": "Ghost Writer"},
      "institutions": [],
      "countries": []
    },
    {
      "author": {"id": "https://openalex.org/A5000000002", "display_name": "Jason Priem"},
      "institutions": null,
      "countries": ["CA", "US"]
    }
  ],
  "primary_topic": {
    "id": "https://openalex.org/T10102",
    "display_name": "scientific Research and Discoveries",
    "subfield": {"id": "https://openalex.org/subfields/1710", "display_name": "Information Systems"}
  },
  "counts_by_year": [
    {"year": 2020, "cited_by_count": 40},
    {"year": 2018, "cited_by_count": 5},
    {"year": 2016, "cited_by_count": 1}
  ]
}`

func TestStripPrefixes(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"doi with prefix", StripDOI, "https://doi.org/10.1/abc", "10.1/abc"},
		{"doi without prefix", StripDOI, "10.1/abc", "10.1/abc"},
		{"doi empty", StripDOI, "", ""},
		{"doi prefix only once", StripDOI, "https://doi.org/https://doi.org/x", "https://doi.org/x"},
		{"openalex with prefix", StripOpenAlexID, "https://openalex.org/W1", "W1"},
		{"openalex without prefix", StripOpenAlexID, "W1", "W1"},
		{"openalex other host", StripOpenAlexID, "https://example.org/W1", "https://example.org/W1"},
		{"openalex empty", StripOpenAlexID, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn(tt.in)
			assert.Equal(t, tt.want, got)
			if tt.in != "https://doi.org/https://doi.org/x" {
				assert.Equal(t, got, tt.fn(got), "idempotent")
			}
		})
	}
}

func TestWork(t *testing.T) {
	rec, err := Work([]byte(sampleWork))
	require.NoError(t, err)

	assert.Equal(t, "W2741809807", rec.ID)
	assert.Equal(t, "10.7717/peerj.4375", rec.DOI)
	assert.Equal(t, 2018, rec.Year)
	require.NotNil(t, rec.CitationCount)
	assert.Equal(t, 150, *rec.CitationCount)

	require.Len(t, rec.Authors, 2, "author without id is dropped")
	assert.Equal(t, "A5023888391", rec.Authors[0].ID)
	assert.Equal(t, "Heather Piwowar", rec.Authors[0].Name)
	assert.Equal(t, []types.Institution{{ID: "I4200000001", DisplayName: "Impactstory"}}, rec.Authors[0].Institutions)
	assert.Equal(t, "US", rec.Authors[0].FirstCountry())
	assert.Equal(t, "A5000000002", rec.Authors[1].ID)
	assert.Empty(t, rec.Authors[1].Institutions)
	assert.Equal(t, []string{"CA", "US"}, rec.Authors[1].Countries)

	assert.Equal(t, types.CategoryRef{ID: "subfields/1710", DisplayName: "Information Systems"}, rec.Category)
	assert.Equal(t, types.CategoryRef{ID: "T10102", DisplayName: "scientific Research and Discoveries"}, rec.Topic)
	assert.Equal(t, map[int]int{0: 5, 2: 40}, rec.CitationsByOffset)
}

func TestWorkMissingFields(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		category types.CategoryRef
		authors  int
	}{
		{"no topic", `{"id": "W1"}`, types.UnknownCategoryRef(), 0},
		{"null topic", `{"id": "W1", "primary_topic": null, "authorships": null}`, types.UnknownCategoryRef(), 0},
		{"topic without subfield", `{"id": "W1", "primary_topic": {"id": "T1"}}`, types.UnknownCategoryRef(), 0},
		{"empty subfield", `{"id": "W1", "primary_topic": {"subfield": {}}}`, types.UnknownCategoryRef(), 0},
		{"subfield without name", `{"id": "W1", "primary_topic": {"subfield": {"id": "https://openalex.org/subfields/1702"}}}`,
			types.CategoryRef{ID: "subfields/1702", DisplayName: "unknown"}, 0},
		{"author object missing", `{"id": "W1", "authorships": [{"countries": ["BR"]}]}`, types.UnknownCategoryRef(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Work([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.category, rec.Category)
			assert.Len(t, rec.Authors, tt.authors)
			assert.Nil(t, rec.CitationCount)
			assert.Equal(t, "", rec.DOI)
		})
	}
}

func TestWorkMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"id": `},
		{"no id", `{"title": "x"}`},
		{"empty id", `{"id": "  "}`},
		{"authorships not a list", `{"id": "W1", "authorships": {"author": {}}}`},
		{"authorship wrong type", `{"id": "W1", "authorships": ["A1"]}`},
		{"topic not an object", `{"id": "W1", "primary_topic": "AI"}`},
		{"subfield wrong type", `{"id": "W1", "primary_topic": {"subfield": 17}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Work([]byte(tt.raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedRecord), "got %v", err)
			assert.Equal(t, "malformed", Reason(err))
		})
	}
}

func TestWorkBadCountsByYearKeepsRecord(t *testing.T) {
	rec, err := Work([]byte(`{"id": "W1", "publication_year": 2020, "counts_by_year": "oops"}`))
	require.NoError(t, err)
	assert.Nil(t, rec.CitationsByOffset)
}

func TestRow(t *testing.T) {
	row := map[string]string{
		"id":               "https://openalex.org/W9",
		"doi":              "https://doi.org/10.1/x",
		"title":            "Graphs",
		"publication_year": "2022.0",
		"authorships":      `[{"id": "A1", "name": "Ana", "institutions": [{"id": "I1", "display_name": "USP"}], "countries": ["BR"]}, {"id": null, "name": "Nobody", "institutions": [], "countries": []}, {"id": "A2", "name": "Bo", "institutions": [], "countries": []}]`,
		"subfield":         `{"id": "subfields/1702", "display_name": "Artificial Intelligence"}`,
		"cited_by_count":   "150",
		"counts_by_year":   `{"0_year": 2, "3_year": 9, "bogus": 1}`,
	}
	rec, err := Row(row)
	require.NoError(t, err)

	assert.Equal(t, "W9", rec.ID)
	assert.Equal(t, "10.1/x", rec.DOI)
	assert.Equal(t, 2022, rec.Year)
	assert.Equal(t, []string{"A1", "A2"}, rec.AuthorIDs())
	assert.Equal(t, "Artificial Intelligence", rec.Category.DisplayName)
	require.NotNil(t, rec.CitationCount)
	assert.Equal(t, 150, *rec.CitationCount)
	assert.Equal(t, map[int]int{0: 2, 3: 9}, rec.CitationsByOffset)
	assert.True(t, rec.Topic.IsUnknown())
}

func TestRowMissingAndMalformed(t *testing.T) {
	rec, err := Row(map[string]string{"id": "W1", "subfield": `{"id": null, "display_name": null}`, "cited_by_count": "NaN"})
	require.NoError(t, err)
	assert.True(t, rec.Category.IsUnknown())
	assert.Nil(t, rec.CitationCount)
	assert.Empty(t, rec.Authors)

	for name, row := range map[string]map[string]string{
		"no id":           {"title": "x"},
		"bad authorships": {"id": "W1", "authorships": "[{'id': 'A1'}]"},
		"bad subfield":    {"id": "W1", "subfield": "Artificial Intelligence"},
		"bad year":        {"id": "W1", "publication_year": "twenty"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Row(row)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedRecord))
		})
	}
}

func TestToRowRoundTrip(t *testing.T) {
	orig, err := Work([]byte(sampleWork))
	require.NoError(t, err)

	row, err := ToRow(orig)
	require.NoError(t, err)
	assert.Equal(t, `{"0_year": 5, "2_year": 40}`, row["counts_by_year"])
	for _, col := range Columns {
		_, ok := row[col]
		assert.True(t, ok, "column %s", col)
	}

	back, err := Row(row)
	require.NoError(t, err)
	assert.Equal(t, orig, back)
}

func TestBatch(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	raws := [][]byte{
		[]byte(sampleWork),
		[]byte(`{"id": "W2", "authorships": "broken"}`),
		[]byte(`not json`),
		[]byte(`{"id": "W3"}`),
	}
	recs, sum := Batch(raws, log)

	require.Len(t, recs, 2)
	assert.Equal(t, "W2741809807", recs[0].ID)
	assert.Equal(t, "W3", recs[1].ID)
	assert.Equal(t, 2, sum.Accepted)
	assert.Equal(t, 2, sum.Skipped)
	assert.Equal(t, 1, sum.AuthorsDropped)
	assert.Equal(t, map[string]int{"malformed": 2}, sum.Reasons)
	assert.Contains(t, buf.String(), "skipping record")
	assert.Contains(t, buf.String(), "dropped authors without id")
}

func TestRows(t *testing.T) {
	rows := []map[string]string{
		{"id": "W1", "authorships": `[{"id": "A1"}]`},
		{"id": "W2", "authorships": "nope"},
	}
	recs, sum := Rows(rows, zerolog.Nop())
	require.Len(t, recs, 1)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 1, sum.Accepted)
}

func TestRecord(t *testing.T) {
	rec, err := Record([]byte(`{"id":" W7 ","authorships":[{"id":"A1"},{"id":" "}],"subfield":{"id":"subfields/1702","display_name":""}}`))
	require.NoError(t, err)
	assert.Equal(t, "W7", rec.ID)
	assert.Equal(t, []string{"A1"}, rec.AuthorIDs())
	assert.Equal(t, types.CategoryRef{ID: "subfields/1702", DisplayName: types.UnknownCategory}, rec.Category)

	for name, raw := range map[string]string{
		"no id":            `{"authorships":[]}`,
		"wrong shape":      `{"id":"W1","authorships":"broken"}`,
		"not json":         `{"id":`,
		"citations string": `{"id":"W1","cited_by_count":"many"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Record([]byte(raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedRecord))
		})
	}
}

func TestRecords(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	raws := [][]byte{
		[]byte(`{"id":"W1","authorships":[{"id":"A1"},{"id":""}]}`),
		[]byte(`{"id":"W2","authorships":"broken"}`),
		[]byte(`{"id":"W3"}`),
	}
	recs, sum := Records(raws, log)
	require.Len(t, recs, 2)
	assert.Equal(t, "W3", recs[1].ID)
	assert.True(t, recs[1].Category.IsUnknown())
	assert.Equal(t, BatchSummary{Accepted: 2, Skipped: 1, AuthorsDropped: 1, Reasons: map[string]int{"malformed": 1}}, sum)
	assert.Contains(t, buf.String(), `"reason":"malformed"`)
}
