// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// Columns is the column order of the tabular record form. authorships,
// subfield, primary_topic and counts_by_year hold embedded JSON text.
var Columns = []string{
	"id", "doi", "title", "publication_year", "authorships",
	"subfield", "primary_topic", "cited_by_count", "counts_by_year",
}

type rowAuthor struct {
	ID           *string `json:"id"`
	Name         *string `json:"name"`
	Institutions []struct {
		ID          *string `json:"id"`
		DisplayName *string `json:"display_name"`
	} `json:"institutions"`
	Countries []string `json:"countries"`
}

type rowCategory struct {
	ID          *string `json:"id"`
	DisplayName *string `json:"display_name"`
}

// Row parses one record of the tabular form. Only id is required;
// authorships and subfield, when present, must be JSON of the right shape.
func Row(row map[string]string) (types.PublicationRecord, error) {
	rec, _, err := parseRow(row)
	return rec, err
}

func parseRow(row map[string]string) (types.PublicationRecord, int, error) {
	id := cell(row, "id")
	if id == "" {
		return types.PublicationRecord{}, 0, errors.Mark(errors.New("row has no id"), ErrMalformedRecord)
	}

	rec := types.PublicationRecord{
		ID:       StripOpenAlexID(id),
		DOI:      StripDOI(cell(row, "doi")),
		Title:    cell(row, "title"),
		Category: types.UnknownCategoryRef(),
		Topic:    types.UnknownCategoryRef(),
	}

	if s := cell(row, "publication_year"); s != "" {
		y, err := parseInt(s)
		if err != nil {
			return types.PublicationRecord{}, 0, malformed(err, "row %s: publication_year", rec.ID)
		}
		rec.Year = y
	}

	dropped := 0
	rec.Authors = []types.AuthorRef{}
	if s := cell(row, "authorships"); s != "" {
		var authors []rowAuthor
		if err := json.Unmarshal([]byte(s), &authors); err != nil {
			return types.PublicationRecord{}, 0, malformed(err, "row %s: authorships", rec.ID)
		}
		for _, ra := range authors {
			insts := make([]types.Institution, 0, len(ra.Institutions))
			for _, in := range ra.Institutions {
				inst := types.Institution{}
				if in.ID != nil {
					inst.ID = *in.ID
				}
				if in.DisplayName != nil {
					inst.DisplayName = *in.DisplayName
				}
				insts = append(insts, inst)
			}
			a, err := authorRef(ra.ID, ra.Name, insts, ra.Countries)
			if err != nil {
				dropped++
				continue
			}
			rec.Authors = append(rec.Authors, a)
		}
	}

	if s := cell(row, "subfield"); s != "" {
		var c *rowCategory
		if err := json.Unmarshal([]byte(s), &c); err != nil {
			return types.PublicationRecord{}, 0, malformed(err, "row %s: subfield", rec.ID)
		}
		if c != nil && (c.ID != nil || c.DisplayName != nil) {
			rec.Category = category(c.ID, c.DisplayName)
		}
	}

	if s := cell(row, "primary_topic"); s != "" {
		var c *rowCategory
		if err := json.Unmarshal([]byte(s), &c); err == nil && c != nil && (c.ID != nil || c.DisplayName != nil) {
			rec.Topic = category(c.ID, c.DisplayName)
		}
	}

	if s := cell(row, "cited_by_count"); s != "" {
		if n, err := parseInt(s); err == nil {
			rec.CitationCount = &n
		}
	}

	if s := cell(row, "counts_by_year"); s != "" {
		rec.CitationsByOffset = parseOffsets(s)
	}

	return rec, dropped, nil
}

// ToRow flattens rec into the tabular form read by Row.
func ToRow(rec types.PublicationRecord) (map[string]string, error) {
	type author struct {
		ID           string              `json:"id"`
		Name         string              `json:"name"`
		Institutions []types.Institution `json:"institutions"`
		Countries    []string            `json:"countries"`
	}
	authors := make([]author, 0, len(rec.Authors))
	for _, a := range rec.Authors {
		insts := a.Institutions
		if insts == nil {
			insts = []types.Institution{}
		}
		countries := a.Countries
		if countries == nil {
			countries = []string{}
		}
		authors = append(authors, author{ID: a.ID, Name: a.Name, Institutions: insts, Countries: countries})
	}
	authJSON, err := json.Marshal(authors)
	if err != nil {
		return nil, fmt.Errorf("encoding authorships of %s: %w", rec.ID, err)
	}
	subJSON, err := json.Marshal(rec.Category)
	if err != nil {
		return nil, fmt.Errorf("encoding subfield of %s: %w", rec.ID, err)
	}
	topicJSON, err := json.Marshal(rec.Topic)
	if err != nil {
		return nil, fmt.Errorf("encoding primary_topic of %s: %w", rec.ID, err)
	}

	row := map[string]string{
		"id":               rec.ID,
		"doi":              rec.DOI,
		"title":            rec.Title,
		"publication_year": "",
		"authorships":      string(authJSON),
		"subfield":         string(subJSON),
		"primary_topic":    string(topicJSON),
		"cited_by_count":   "",
		"counts_by_year":   formatOffsets(rec.CitationsByOffset),
	}
	if rec.Year != 0 {
		row["publication_year"] = strconv.Itoa(rec.Year)
	}
	if rec.CitationCount != nil {
		row["cited_by_count"] = strconv.Itoa(*rec.CitationCount)
	}
	return row, nil
}

func cell(row map[string]string, key string) string {
	v := strings.TrimSpace(row[key])
	switch strings.ToLower(v) {
	case "nan", "null", "none":
		return ""
	}
	return v
}

// parseInt accepts integers and integral floats such as "2022.0".
func parseInt(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return int(f), nil
}

// parseOffsets reads {"0_year": 3, "1_year": 7}. Unrecognised keys are
// ignored.
func parseOffsets(s string) map[int]int {
	var raw map[string]int
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil
	}
	out := make(map[int]int, len(raw))
	for k, v := range raw {
		off, err := strconv.Atoi(strings.TrimSuffix(k, "_year"))
		if err != nil || off < 0 {
			continue
		}
		out[off] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func formatOffsets(m map[int]int) string {
	if len(m) == 0 {
		return "{}"
	}
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "\"%d_year\": %d", k, m[k])
	}
	b.WriteByte('}')
	return b.String()
}
