// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export serializes finalized co-authorship graphs as GEXF, JSON,
// YAML or SQLite files. Every write goes to a temporary file in the target
// directory and is renamed into place only on success.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/pdiddy/coauthor-graph/internal/graph"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// ErrExport marks any serialization or write failure.
var ErrExport = errors.New("graph export failed")

// UnknownCountry is written for nodes whose authorship lists no country.
const UnknownCountry = "Unknown"

// Creator is written into export metadata.
const Creator = "coauthor-graph"

// Meta describes one export run.
type Meta struct {
	RunID       string    `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Creator     string    `json:"creator" yaml:"creator"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
}

// Exporter writes graphs in one format. An Exporter may be shared by
// concurrent partition builds; all exports of a run carry the same run id.
type Exporter struct {
	Format      types.ExportFormat
	Description string

	runID string
	now   func() time.Time
}

// New returns an Exporter for format. An empty format selects GEXF.
func New(format types.ExportFormat) (*Exporter, error) {
	if format == "" {
		format = types.FormatGEXF
	}
	switch format {
	case types.FormatGEXF, types.FormatJSON, types.FormatYAML, types.FormatSQLite:
	default:
		return nil, errors.Mark(errors.Newf("unknown export format %q", format), ErrExport)
	}
	return &Exporter{Format: format, runID: uuid.NewString(), now: time.Now}, nil
}

// RunID returns the id stamped on every export of this Exporter.
func (e *Exporter) RunID() string { return e.runID }

func (e *Exporter) meta() Meta {
	return Meta{
		RunID:       e.runID,
		GeneratedAt: e.now().UTC().Truncate(time.Second),
		Creator:     Creator,
		Description: e.Description,
	}
}

// Ext returns the file extension for format, without the dot.
func Ext(format types.ExportFormat) string {
	switch format {
	case types.FormatJSON:
		return "json"
	case types.FormatYAML:
		return "yaml"
	case types.FormatSQLite:
		return "db"
	default:
		return "gexf"
	}
}

// FileName derives "<key>_network.<ext>" with path-unsafe characters in
// key replaced by underscores.
func FileName(key string, format types.ExportFormat) string {
	if key == "" {
		key = types.UnknownCategory
	}
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ', '\t', '\n', '\r', 0:
			return '_'
		}
		return r
	}, key)
	return safe + "_network." + Ext(format)
}

// Write serializes g to path atomically. Parent directories are created.
func (e *Exporter) Write(ctx context.Context, g *graph.Graph, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return exportErr(err, "creating directory for %s", path)
	}

	err := writeAtomic(path, func(tmpPath string) error {
		if e.Format == types.FormatSQLite {
			return writeSQLite(ctx, tmpPath, g, e.meta())
		}
		f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return err
		}
		encErr := e.Encode(f, g)
		closeErr := f.Close()
		if encErr != nil {
			return encErr
		}
		return closeErr
	})
	if err != nil {
		return exportErr(err, "writing %s", path)
	}
	return nil
}

// Encode writes g to w in a streaming format. SQLite needs a file path and
// is only available through Write.
func (e *Exporter) Encode(w io.Writer, g *graph.Graph) error {
	switch e.Format {
	case types.FormatJSON:
		return encodeJSON(w, g, e.meta())
	case types.FormatYAML:
		return encodeYAML(w, g, e.meta())
	case types.FormatSQLite:
		return errors.Mark(errors.New("sqlite export requires a file path"), ErrExport)
	default:
		return encodeGEXF(w, g, e.meta())
	}
}

func exportErr(err error, format string, args ...any) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrExport)
}

// writeAtomic creates an empty temp file next to dest, lets fill write it,
// then renames it over dest. The temp file is removed on any failure.
func writeAtomic(dest string, fill func(tmpPath string) error) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(dest), ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := fill(tmpPath); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// attr is one exported node attribute.
type attr struct {
	Key   string
	Value any
}

// nodeAttrs shapes a node's exported attributes: name, the resolved
// category, country and institution under the graph's attribute names,
// then extra attributes sorted by key. Extras override built-ins of the
// same name. An empty attribute name omits that built-in; a sparse graph
// also omits built-ins with no value.
func nodeAttrs(g *graph.Graph, n *graph.Node) []attr {
	country := n.Country()
	if country == "" && !g.Sparse {
		country = UnknownCountry
	}
	var base []attr
	add := func(key, value string) {
		if key == "" || (g.Sparse && value == "") {
			return
		}
		base = append(base, attr{key, value})
	}
	add("name", n.Name)
	add(g.CategoryAttr, n.ResolvedCategory)
	add(g.CountryAttr, country)
	add(g.InstitutionAttr, n.Institution())

	out := make([]attr, 0, len(base)+len(n.Attrs))
	for _, a := range base {
		if _, overridden := n.Attrs[a.Key]; !overridden {
			out = append(out, a)
		}
	}
	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, attr{k, n.Attrs[k]})
	}
	return out
}
