// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize converts OpenAlex work payloads and their flattened
// tabular form into types.PublicationRecord values.
package normalize

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/pdiddy/coauthor-graph/pkg/types"
)

const (
	doiPrefix      = "https://doi.org/"
	openAlexPrefix = "https://openalex.org/"
)

var (
	// ErrMalformedRecord marks a record whose id, authorships or topic
	// payload cannot be parsed. Such records are skipped.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrMissingIdentifier marks an author without an id. The author is
	// dropped from the record; the record itself is kept.
	ErrMissingIdentifier = errors.New("missing identifier")
)

// StripDOI removes the https://doi.org/ resolver prefix.
func StripDOI(doi string) string {
	return strings.TrimPrefix(doi, doiPrefix)
}

// StripOpenAlexID removes the https://openalex.org/ namespace prefix.
func StripOpenAlexID(id string) string {
	return strings.TrimPrefix(id, openAlexPrefix)
}

func malformed(err error, format string, args ...any) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrMalformedRecord)
}

// Reason classifies a normalization error for logs and metrics.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrMalformedRecord):
		return "malformed"
	case errors.Is(err, ErrMissingIdentifier):
		return "missing_id"
	default:
		return "other"
	}
}

// category builds a CategoryRef from optional id and display name. A
// classification with neither yields the sentinel; one with an id but no
// name gets the unknown display name.
func category(id, name *string) types.CategoryRef {
	c := types.CategoryRef{}
	if id != nil {
		c.ID = StripOpenAlexID(strings.TrimSpace(*id))
	}
	if name != nil {
		c.DisplayName = strings.TrimSpace(*name)
	}
	if c.DisplayName == "" {
		c.DisplayName = types.UnknownCategory
	}
	return c
}

// authorRef converts one flattened authorship. It returns
// ErrMissingIdentifier when the author has no id.
func authorRef(id, name *string, insts []types.Institution, countries []string) (types.AuthorRef, error) {
	if id == nil || strings.TrimSpace(*id) == "" {
		return types.AuthorRef{}, ErrMissingIdentifier
	}
	a := types.AuthorRef{
		ID:        StripOpenAlexID(strings.TrimSpace(*id)),
		Countries: []string{},
	}
	if name != nil {
		a.Name = *name
	}
	for _, inst := range insts {
		inst.ID = StripOpenAlexID(inst.ID)
		a.Institutions = append(a.Institutions, inst)
	}
	if a.Institutions == nil {
		a.Institutions = []types.Institution{}
	}
	for _, c := range countries {
		if c != "" {
			a.Countries = append(a.Countries, c)
		}
	}
	return a, nil
}

// offsets converts per-year citation counts into years-since-publication.
// Negative offsets are discarded.
func offsets(pubYear int, byYear map[int]int) map[int]int {
	if pubYear == 0 || len(byYear) == 0 {
		return nil
	}
	out := make(map[int]int, len(byYear))
	for year, n := range byYear {
		if off := year - pubYear; off >= 0 {
			out[off] = n
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
