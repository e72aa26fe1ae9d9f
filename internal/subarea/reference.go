// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package subarea builds co-authorship networks for CSIndex sub-areas. Seed
// researchers of an area are expanded with their DBLP co-authors, and every
// co-author is labeled by membership in the researcher reference set.
package subarea

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/coauthor-graph/internal/dataset"
)

// Researcher is one entry of the reference set.
type Researcher struct {
	PID         string
	Name        string
	Institution string

	// Areas lists the researcher's sub-areas in catalog order.
	Areas []string
}

// HasArea reports whether area is one of r's sub-areas.
func (r Researcher) HasArea(area string) bool {
	for _, a := range r.Areas {
		if a == area {
			return true
		}
	}
	return false
}

// ReferenceColumns is the column order of the researcher CSV.
var ReferenceColumns = []string{"researcher", "institution", "pid", "sub_areas"}

// ReferenceSet maps DBLP person ids to researchers.
type ReferenceSet struct {
	byPID map[string]*Researcher
	order []string
}

// NewReferenceSet indexes researchers by PID. Entries without a PID are
// ignored; a repeated PID keeps the first name and institution and gains
// any new areas.
func NewReferenceSet(rs []Researcher) *ReferenceSet {
	s := &ReferenceSet{byPID: make(map[string]*Researcher, len(rs))}
	for _, r := range rs {
		if r.PID == "" {
			continue
		}
		if cur, ok := s.byPID[r.PID]; ok {
			for _, a := range r.Areas {
				if !cur.HasArea(a) {
					cur.Areas = append(cur.Areas, a)
				}
			}
			continue
		}
		r.Areas = append([]string{}, r.Areas...)
		s.byPID[r.PID] = &r
		s.order = append(s.order, r.PID)
	}
	return s
}

// Len returns the number of researchers.
func (s *ReferenceSet) Len() int { return len(s.order) }

// Get returns the researcher with pid.
func (s *ReferenceSet) Get(pid string) (Researcher, bool) {
	r, ok := s.byPID[pid]
	if !ok {
		return Researcher{}, false
	}
	return *r, true
}

// Labels returns pid's sub-areas, nil when pid is not a reference entity.
func (s *ReferenceSet) Labels(pid string) []string {
	if r, ok := s.byPID[pid]; ok {
		return r.Areas
	}
	return nil
}

// InArea returns the researchers listing area, in load order.
func (s *ReferenceSet) InArea(area string) []Researcher {
	var out []Researcher
	for _, pid := range s.order {
		if r := s.byPID[pid]; r.HasArea(area) {
			out = append(out, *r)
		}
	}
	return out
}

// All returns every researcher in load order.
func (s *ReferenceSet) All() []Researcher {
	out := make([]Researcher, 0, len(s.order))
	for _, pid := range s.order {
		out = append(out, *s.byPID[pid])
	}
	return out
}

// LoadReferenceSet reads the researcher CSV (researcher, institution, pid,
// sub_areas). Rows without a pid are skipped; an unparseable sub_areas cell
// is an error.
func LoadReferenceSet(r io.Reader) (*ReferenceSet, error) {
	rows, err := dataset.ReadTable(r)
	if err != nil {
		return nil, fmt.Errorf("reading researchers: %w", err)
	}
	rs := make([]Researcher, 0, len(rows))
	for i, row := range rows {
		pid := strings.TrimSpace(row["pid"])
		if pid == "" {
			continue
		}
		areas, err := ParseLabelList(row["sub_areas"])
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): sub_areas: %w", i+2, pid, err)
		}
		rs = append(rs, Researcher{
			PID:         pid,
			Name:        strings.TrimSpace(row["researcher"]),
			Institution: strings.TrimSpace(row["institution"]),
			Areas:       areas,
		})
	}
	return NewReferenceSet(rs), nil
}

// WriteReferenceSet writes researchers in the CSV form read by
// LoadReferenceSet, with sub_areas as a JSON list.
func WriteReferenceSet(w io.Writer, rs []Researcher) error {
	rows := make([]map[string]string, 0, len(rs))
	for _, r := range rs {
		areas := r.Areas
		if areas == nil {
			areas = []string{}
		}
		data, err := json.Marshal(areas)
		if err != nil {
			return fmt.Errorf("encoding areas of %s: %w", r.PID, err)
		}
		rows = append(rows, map[string]string{
			"researcher":  r.Name,
			"institution": r.Institution,
			"pid":         r.PID,
			"sub_areas":   string(data),
		})
	}
	return dataset.WriteTable(w, ReferenceColumns, rows)
}

// ParseLabelList parses a literal list of string labels written either as
// JSON (["ai", "bio"]) or with single quotes (['ai', 'bio']). An empty cell
// yields no labels. Anything else is rejected; the input is never
// evaluated.
func ParseLabelList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("label list %q is not bracketed", s)
	}

	p := listParser{src: s[1 : len(s)-1]}
	var labels []string
	p.skipSpace()
	if p.done() {
		return []string{}, nil
	}
	for {
		label, err := p.quoted()
		if err != nil {
			return nil, fmt.Errorf("label list %q: %w", s, err)
		}
		labels = append(labels, label)

		p.skipSpace()
		if p.done() {
			return labels, nil
		}
		if p.src[p.pos] != ',' {
			return nil, fmt.Errorf("label list %q: expected ',' at offset %d", s, p.pos+1)
		}
		p.pos++
		p.skipSpace()
		if p.done() {
			// Trailing comma.
			return labels, nil
		}
	}
}

type listParser struct {
	src string
	pos int
}

func (p *listParser) done() bool { return p.pos >= len(p.src) }

func (p *listParser) skipSpace() {
	for !p.done() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

// quoted reads one '...' or "..." string with backslash escapes for the
// quote character and the backslash itself.
func (p *listParser) quoted() (string, error) {
	if p.done() {
		return "", fmt.Errorf("expected quoted label")
	}
	q := p.src[p.pos]
	if q != '\'' && q != '"' {
		return "", fmt.Errorf("expected quote at offset %d, got %q", p.pos+1, p.src[p.pos])
	}
	p.pos++

	var b strings.Builder
	for !p.done() {
		c := p.src[p.pos]
		switch {
		case c == q:
			p.pos++
			return b.String(), nil
		case c == '\\' && p.pos+1 < len(p.src):
			next := p.src[p.pos+1]
			if next == q || next == '\\' {
				b.WriteByte(next)
				p.pos += 2
				continue
			}
			b.WriteByte(c)
			p.pos++
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			b.WriteRune(r)
			p.pos += size
		}
	}
	return "", fmt.Errorf("unterminated label")
}
