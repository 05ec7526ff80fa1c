package render

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"

	"github.com/jmylchreest/glazecat/internal/config"
	_ "modernc.org/sqlite"
)

// SQLiteFile is the filename written by the sqlite renderer.
const SQLiteFile = "colors.db"

//go:embed schema.sql
var sqliteSchema string

// SQLite renders the catalog into a SQLite database with glazes and
// underglazes tables.
type SQLite struct{}

// NewSQLite creates the sqlite renderer.
func NewSQLite() *SQLite {
	return &SQLite{}
}

// Name returns the renderer name.
func (s *SQLite) Name() string {
	return "sqlite"
}

// Description returns the renderer description.
func (s *SQLite) Description() string {
	return "SQLite database " + SQLiteFile + " with glazes and underglazes tables"
}

// Render builds colors.db.
func (s *SQLite) Render(cat *Catalog) (map[string][]byte, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog cannot be nil")
	}

	tmp, err := os.CreateTemp("", "glazecat-*.db")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary database: %w", err)
	}
	path := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(path)

	if err := s.write(path, cat); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) // #nosec G304 - Temporary file created above
	if err != nil {
		return nil, fmt.Errorf("failed to read database: %w", err)
	}
	return map[string][]byte{SQLiteFile: data}, nil
}

func (s *SQLite) write(path string, cat *Catalog) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, sec := range cat.Sections {
		for _, r := range sec.Records {
			if sec.Category.Kind == config.KindUnderglaze {
				_, err = tx.Exec(
					"insert into underglazes (category, id, name, left_color, top_color) values (?, ?, ?, ?, ?)",
					sec.Category.Name, r.Code, r.Name, r.Left.Hex(), r.Top.Hex(),
				)
			} else {
				_, err = tx.Exec(
					"insert into glazes (category, id, name, color) values (?, ?, ?, ?)",
					sec.Category.Name, r.Code, r.Name, r.Left.Hex(),
				)
			}
			if err != nil {
				return fmt.Errorf("failed to insert %s: %w", r.Code, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return db.Close()
}
