package storage

import (
	"context"
	"database/sql"

	"github.com/blueprintfinder/sdeexport/pkg/collector"
	"github.com/blueprintfinder/sdeexport/pkg/export"
	"github.com/blueprintfinder/sdeexport/pkg/sde"

	_ "modernc.org/sqlite"
)

const (
	itemKindMaterial = "material"
	itemKindProduct  = "product"
)

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS blueprints (
  position INTEGER PRIMARY KEY,
  type_id  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_blueprints_type ON blueprints(type_id);
CREATE TABLE IF NOT EXISTS blueprint_items (
  blueprint_position INTEGER NOT NULL REFERENCES blueprints(position),
  kind               TEXT NOT NULL CHECK (kind IN ('material','product')),
  position           INTEGER NOT NULL,
  type_id            INTEGER NOT NULL,
  quantity           INTEGER NOT NULL,
  PRIMARY KEY(blueprint_position, kind, position)
);
CREATE INDEX IF NOT EXISTS idx_items_type ON blueprint_items(type_id, kind);
CREATE TABLE IF NOT EXISTS type_names (
  type_id    INTEGER NOT NULL,
  lang_index INTEGER NOT NULL,
  lang       TEXT NOT NULL,
  name       TEXT NOT NULL,
  PRIMARY KEY(type_id, lang_index)
);
CREATE INDEX IF NOT EXISTS idx_names_name ON type_names(name);
    `); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// ReplaceExport replaces the whole database content with doc in a single
// transaction. Names are stored expanded, one row per language.
func (d *DB) ReplaceExport(ctx context.Context, doc *export.Document) (err error) {
	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"blueprint_items", "blueprints", "type_names"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	bpStmt, err := tx.PrepareContext(ctx, `INSERT INTO blueprints(position, type_id) VALUES(?,?)`)
	if err != nil {
		return err
	}
	defer bpStmt.Close()
	itemStmt, err := tx.PrepareContext(ctx, `INSERT INTO blueprint_items(blueprint_position, kind, position, type_id, quantity) VALUES(?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer itemStmt.Close()
	nameStmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO type_names(type_id, lang_index, lang, name) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer nameStmt.Close()

	for pos, bp := range doc.Blueprints {
		if _, err = bpStmt.ExecContext(ctx, pos, bp.TypeID); err != nil {
			return err
		}
		if err = insertItems(ctx, itemStmt, pos, itemKindMaterial, bp.Materials); err != nil {
			return err
		}
		if err = insertItems(ctx, itemStmt, pos, itemKindProduct, bp.Products); err != nil {
			return err
		}
	}

	for _, n := range doc.Names {
		for i, name := range n.Names.Expand() {
			if _, err = nameStmt.ExecContext(ctx, n.TypeID, i, sde.Languages[i], name); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func insertItems(ctx context.Context, stmt *sql.Stmt, blueprintPos int, kind string, items []collector.Item) error {
	for i, it := range items {
		if _, err := stmt.ExecContext(ctx, blueprintPos, kind, i, it.TypeID, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// GetStats counts blueprints, items and named types.
func (d *DB) GetStats(ctx context.Context) (*Stats, error) {
	s := &Stats{}
	row := d.sql.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM blueprints),
			(SELECT COUNT(*) FROM blueprint_items WHERE kind = ?),
			(SELECT COUNT(*) FROM blueprint_items WHERE kind = ?),
			(SELECT COUNT(DISTINCT type_id) FROM type_names)
	`, itemKindMaterial, itemKindProduct)
	if err := row.Scan(&s.Blueprints, &s.Materials, &s.Products, &s.Types); err != nil {
		return nil, err
	}

	rows, err := d.sql.QueryContext(ctx, `
		SELECT
			lang,
			SUM(CASE WHEN name != '' THEN 1 ELSE 0 END)
		FROM
			type_names
		GROUP BY
			lang_index, lang
		ORDER BY
			lang_index;
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ls LanguageStats
		if err := rows.Scan(&ls.Language, &ls.Named); err != nil {
			return nil, err
		}
		s.Languages = append(s.Languages, ls)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// FindTypesByName returns the types whose name equals name in any language,
// ordered by type ID and then canonical language order.
func (d *DB) FindTypesByName(ctx context.Context, name string) ([]NameMatch, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT type_id, lang, name FROM type_names WHERE name = ? AND name != '' ORDER BY type_id, lang_index", name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []NameMatch
	for rows.Next() {
		var m NameMatch
		if err := rows.Scan(&m.TypeID, &m.Language, &m.Name); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// BlueprintsUsing returns the blueprint types that consume typeID as a
// material, in export order.
func (d *DB) BlueprintsUsing(ctx context.Context, typeID int64) ([]int64, error) {
	rows, err := d.sql.QueryContext(ctx, `
		SELECT DISTINCT b.type_id, b.position
		FROM blueprint_items i
		JOIN blueprints b ON b.position = i.blueprint_position
		WHERE i.type_id = ? AND i.kind = ?
		ORDER BY b.position`, typeID, itemKindMaterial)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id, pos int64
		if err := rows.Scan(&id, &pos); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
