// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures for the coauthor-graph
// pipeline: normalized publication records and run configuration.
package types

// UnknownCategory is the display name given to publications that carry no
// usable topic classification.
const UnknownCategory = "unknown"

// Institution is an affiliation listed on one authorship.
type Institution struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"display_name" yaml:"display_name"`
}

// AuthorRef is one author as listed on a publication. ID is the stable
// entity key used for graph nodes.
type AuthorRef struct {
	ID           string        `json:"id" yaml:"id"`
	Name         string        `json:"name" yaml:"name"`
	Institutions []Institution `json:"institutions" yaml:"institutions"`

	// Countries holds ISO country codes in source order.
	Countries []string `json:"countries" yaml:"countries"`
}

// FirstCountry returns the first listed country code, or "" when none.
func (a AuthorRef) FirstCountry() string {
	if len(a.Countries) == 0 {
		return ""
	}
	return a.Countries[0]
}

// CategoryRef is a classification label attached to a publication, for
// example an OpenAlex topical subfield.
type CategoryRef struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"display_name" yaml:"display_name"`
}

// UnknownCategoryRef returns the sentinel category used when a record has
// no classification.
func UnknownCategoryRef() CategoryRef {
	return CategoryRef{ID: "", DisplayName: UnknownCategory}
}

// IsUnknown reports whether c is the sentinel category.
func (c CategoryRef) IsUnknown() bool {
	return c.ID == "" && (c.DisplayName == "" || c.DisplayName == UnknownCategory)
}

// PublicationRecord is a flattened publication. Records are treated as
// immutable once normalized.
type PublicationRecord struct {
	// ID is unique per source (an OpenAlex work id such as "W2741809807",
	// or a DBLP publication key).
	ID string `json:"id" yaml:"id"`

	// DOI is the bare DOI without resolver prefix; empty when absent.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	Year  int    `json:"publication_year" yaml:"publication_year"`

	// Authors lists the authors in source order.
	Authors []AuthorRef `json:"authorships" yaml:"authorships"`

	// Category is the primary topic's subfield.
	Category CategoryRef `json:"subfield" yaml:"subfield"`

	// Topic is the primary topic itself, kept for reporting.
	Topic CategoryRef `json:"primary_topic,omitempty" yaml:"primary_topic,omitempty"`

	// CitationCount is nil when the source did not report it.
	CitationCount *int `json:"cited_by_count,omitempty" yaml:"cited_by_count,omitempty"`

	// CitationsByOffset maps years since publication (0 = publication year)
	// to the citations received in that year.
	CitationsByOffset map[int]int `json:"counts_by_year,omitempty" yaml:"counts_by_year,omitempty"`
}

// AuthorIDs returns the author ids in source order.
func (r PublicationRecord) AuthorIDs() []string {
	ids := make([]string, 0, len(r.Authors))
	for _, a := range r.Authors {
		ids = append(ids, a.ID)
	}
	return ids
}
