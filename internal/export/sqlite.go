// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/coauthor-graph/internal/graph"
)

var sqliteSchema = []string{
	`CREATE TABLE meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE nodes (
		seq INTEGER NOT NULL,
		id TEXT PRIMARY KEY,
		label TEXT,
		name TEXT,
		category TEXT,
		country TEXT,
		institution TEXT,
		attributes TEXT
	)`,
	`CREATE TABLE edges (
		seq INTEGER NOT NULL,
		source TEXT NOT NULL REFERENCES nodes(id),
		target TEXT NOT NULL REFERENCES nodes(id),
		weight INTEGER NOT NULL CHECK (weight >= 1),
		PRIMARY KEY (source, target)
	)`,
	`CREATE INDEX idx_edges_target ON edges(target)`,
}

// writeSQLite writes g into a fresh database at path. The file is an
// export artifact; nothing in this module reads it back.
func writeSQLite(ctx context.Context, path string, g *graph.Graph, meta Meta) error {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	metaRows := [][2]string{
		{"run_id", meta.RunID},
		{"generated_at", meta.GeneratedAt.Format(time.RFC3339)},
		{"creator", meta.Creator},
		{"description", meta.Description},
		{"category_attr", g.CategoryAttr},
		{"country_attr", g.CountryAttr},
		{"institution_attr", g.InstitutionAttr},
	}
	for _, kv := range metaRows {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)`, kv[0], kv[1]); err != nil {
			return fmt.Errorf("inserting meta %s: %w", kv[0], err)
		}
	}

	nodeStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO nodes (seq, id, label, name, category, country, institution, attributes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing node insert: %w", err)
	}
	defer nodeStmt.Close()

	for i, n := range g.Nodes() {
		attrs := nodeAttrs(g, n)
		m := make(map[string]any, len(attrs))
		for _, a := range attrs {
			m[a.Key] = a.Value
		}
		attrsJSON, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("encoding attributes of %s: %w", n.ID, err)
		}
		country := n.Country()
		if country == "" {
			country = UnknownCountry
		}
		if _, err := nodeStmt.ExecContext(ctx,
			i, n.ID, n.Label, n.Name, n.ResolvedCategory, country, n.Institution(), string(attrsJSON),
		); err != nil {
			return fmt.Errorf("inserting node %s: %w", n.ID, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO edges (seq, source, target, weight) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing edge insert: %w", err)
	}
	defer edgeStmt.Close()

	for i, e := range g.Edges() {
		if _, err := edgeStmt.ExecContext(ctx, i, e.Source, e.Target, e.Weight); err != nil {
			return fmt.Errorf("inserting edge %s-%s: %w", e.Source, e.Target, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return db.Close()
}
