// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"
)

// Manifest is the on-disk record of a harvest: the query that produced a
// dataset and how each year went. A manifest can be reloaded to repeat
// the same harvest.
type Manifest struct {
	Query   ManifestQuery   `yaml:"query"`
	Years   []ManifestYear  `yaml:"years,omitempty"`
	Summary ManifestSummary `yaml:"summary"`
}

// ManifestQuery stores the harvest parameters.
type ManifestQuery struct {
	Filter  string `yaml:"filter,omitempty"`
	Select  string `yaml:"select,omitempty"`
	PerPage int    `yaml:"per_page,omitempty"`
	Years   []int  `yaml:"years"`
}

// ManifestYear stores the outcome of one year.
type ManifestYear struct {
	Year     int    `yaml:"year"`
	Expected int    `yaml:"expected"`
	Works    int    `yaml:"works"`
	Pages    int    `yaml:"pages"`
	Error    string `yaml:"error,omitempty"`
}

// ManifestSummary stores totals and a timestamp.
type ManifestSummary struct {
	Works     int       `yaml:"works"`
	Output    string    `yaml:"output,omitempty"`
	Failed    int       `yaml:"failed"`
	Timestamp time.Time `yaml:"timestamp"`
}

// NewManifest records a finished harvest.
func NewManifest(years []int, opts WorksOptions, results []YearResult, output string) Manifest {
	m := Manifest{
		Query: ManifestQuery{
			Filter:  opts.Filter,
			Select:  opts.Select,
			PerPage: opts.PerPage,
			Years:   years,
		},
		Summary: ManifestSummary{Output: output, Timestamp: time.Now().UTC()},
	}
	for _, r := range results {
		y := ManifestYear{Year: r.Year, Expected: r.Summary.Expected, Works: r.Summary.Works, Pages: r.Summary.Pages}
		if r.Err != nil {
			y.Error = r.Err.Error()
			m.Summary.Failed++
		}
		m.Summary.Works += r.Summary.Works
		m.Years = append(m.Years, y)
	}
	return m
}

// Options converts the stored query back into WorksOptions.
func (q ManifestQuery) Options() WorksOptions {
	return WorksOptions{Select: q.Select, Filter: q.Filter, PerPage: q.PerPage}
}

// FailedYears lists the years that did not complete, for a retry run.
func (m Manifest) FailedYears() []int {
	var out []int
	for _, y := range m.Years {
		if y.Error != "" {
			out = append(out, y.Year)
		}
	}
	return out
}

// WriteManifest saves m to path as YAML.
func WriteManifest(path string, m Manifest) error {
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}
