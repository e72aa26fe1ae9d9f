// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// Raw OpenAlex work shape. Pointers distinguish missing and null fields.
type rawWork struct {
	ID              *string         `json:"id"`
	DOI             *string         `json:"doi"`
	Title           *string         `json:"title"`
	PublicationYear *int            `json:"publication_year"`
	Authorships     json.RawMessage `json:"authorships"`
	PrimaryTopic    json.RawMessage `json:"primary_topic"`
	CitedByCount    *int            `json:"cited_by_count"`
	CountsByYear    json.RawMessage `json:"counts_by_year"`
}

type rawAuthorship struct {
	Author *struct {
		ID          *string `json:"id"`
		DisplayName *string `json:"display_name"`
	} `json:"author"`
	Institutions []struct {
		ID          *string `json:"id"`
		DisplayName *string `json:"display_name"`
	} `json:"institutions"`
	Countries []string `json:"countries"`
}

type rawTopic struct {
	ID          *string `json:"id"`
	DisplayName *string `json:"display_name"`
	Subfield    *struct {
		ID          *string `json:"id"`
		DisplayName *string `json:"display_name"`
	} `json:"subfield"`
}

type rawYearCount struct {
	Year         int `json:"year"`
	CitedByCount int `json:"cited_by_count"`
}

// Work parses one OpenAlex work object. Missing or null fields are
// tolerated; authors without an id are dropped. A record with no id or
// with authorships / primary_topic of the wrong shape returns an error
// marked ErrMalformedRecord.
func Work(raw []byte) (types.PublicationRecord, error) {
	rec, _, err := work(raw)
	return rec, err
}

func work(raw []byte) (types.PublicationRecord, int, error) {
	var w rawWork
	if err := json.Unmarshal(raw, &w); err != nil {
		return types.PublicationRecord{}, 0, malformed(err, "decoding work")
	}
	if w.ID == nil || strings.TrimSpace(*w.ID) == "" {
		return types.PublicationRecord{}, 0, errors.Mark(errors.New("work has no id"), ErrMalformedRecord)
	}

	rec := types.PublicationRecord{
		ID:       StripOpenAlexID(strings.TrimSpace(*w.ID)),
		Category: types.UnknownCategoryRef(),
		Topic:    types.UnknownCategoryRef(),
	}
	if w.DOI != nil {
		rec.DOI = StripDOI(*w.DOI)
	}
	if w.Title != nil {
		rec.Title = *w.Title
	}
	if w.PublicationYear != nil {
		rec.Year = *w.PublicationYear
	}
	if w.CitedByCount != nil {
		n := *w.CitedByCount
		rec.CitationCount = &n
	}

	var auths []rawAuthorship
	if !isNull(w.Authorships) {
		if err := json.Unmarshal(w.Authorships, &auths); err != nil {
			return types.PublicationRecord{}, 0, malformed(err, "work %s: authorships", rec.ID)
		}
	}
	dropped := 0
	rec.Authors = make([]types.AuthorRef, 0, len(auths))
	for _, as := range auths {
		var id, name *string
		if as.Author != nil {
			id, name = as.Author.ID, as.Author.DisplayName
		}
		insts := make([]types.Institution, 0, len(as.Institutions))
		for _, in := range as.Institutions {
			inst := types.Institution{}
			if in.ID != nil {
				inst.ID = *in.ID
			}
			if in.DisplayName != nil {
				inst.DisplayName = *in.DisplayName
			}
			insts = append(insts, inst)
		}
		a, err := authorRef(id, name, insts, as.Countries)
		if err != nil {
			dropped++
			continue
		}
		rec.Authors = append(rec.Authors, a)
	}

	if !isNull(w.PrimaryTopic) {
		var topic rawTopic
		if err := json.Unmarshal(w.PrimaryTopic, &topic); err != nil {
			return types.PublicationRecord{}, 0, malformed(err, "work %s: primary_topic", rec.ID)
		}
		if topic.ID != nil || topic.DisplayName != nil {
			rec.Topic = category(topic.ID, topic.DisplayName)
		}
		if topic.Subfield != nil && (topic.Subfield.ID != nil || topic.Subfield.DisplayName != nil) {
			rec.Category = category(topic.Subfield.ID, topic.Subfield.DisplayName)
		}
	}

	// counts_by_year is informational; a bad shape drops it, not the record.
	if !isNull(w.CountsByYear) {
		var ys []rawYearCount
		if err := json.Unmarshal(w.CountsByYear, &ys); err == nil {
			byYear := make(map[int]int, len(ys))
			for _, y := range ys {
				byYear[y.Year] = y.CitedByCount
			}
			rec.CitationsByOffset = offsets(rec.Year, byYear)
		}
	}

	return rec, dropped, nil
}

func isNull(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}
