// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package partition

import "github.com/pdiddy/coauthor-graph/pkg/types"

// Predicate decides whether a record is kept. Absent fields evaluate false.
type Predicate func(types.PublicationRecord) bool

// Filter returns the records that satisfy every predicate, in input order.
// The input slice is not modified.
func Filter(records []types.PublicationRecord, preds ...Predicate) []types.PublicationRecord {
	keep := All(preds...)
	out := make([]types.PublicationRecord, 0, len(records))
	for _, rec := range records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// All combines predicates with logical and. No predicates keeps everything.
func All(preds ...Predicate) Predicate {
	return func(rec types.PublicationRecord) bool {
		for _, p := range preds {
			if p != nil && !p(rec) {
				return false
			}
		}
		return true
	}
}

// CitationAbove keeps records with a citation count strictly greater than t.
func CitationAbove(t int) Predicate {
	return func(rec types.PublicationRecord) bool {
		return rec.CitationCount != nil && *rec.CitationCount > t
	}
}

// CategoryIs keeps records whose category display name equals name.
// Unclassified records never match.
func CategoryIs(name string) Predicate {
	return func(rec types.PublicationRecord) bool {
		if rec.Category.IsUnknown() {
			return false
		}
		return rec.Category.DisplayName == name
	}
}

// CountryIs keeps records with at least one author listing country code.
func CountryIs(code string) Predicate {
	return func(rec types.PublicationRecord) bool {
		for _, a := range rec.Authors {
			for _, c := range a.Countries {
				if c == code {
					return true
				}
			}
		}
		return false
	}
}
