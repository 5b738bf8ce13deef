// internal/catalogdb/db.go
//
// SQLite-backed word catalog source.
// Responsibilities:
//   - Opening the SQLite database with safe defaults (WAL, busy timeout).
//   - Applying embedded migrations from sql/*.sql (idempotent, recorded in _migrations).
//   - Importing parsed word lists once and loading them back as a catalog.
//
// Large dictionaries are parsed from text only on first import; later starts read
// the tables directly.

package catalogdb

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/anagram-server/internal/words"
)

//go:embed sql/*.sql
var migrations embed.FS

// DB wraps the catalog database handle.
type DB struct {
	sql *sql.DB
}

// Open opens (and creates if missing) the SQLite catalog at dsn.
// Use ":memory:" for a throwaway database.
func Open(dsn string) (*DB, error) {
	if dsn != ":memory:" {
		dir := filepath.Dir(dsn)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" databases alive across queries.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return &DB{sql: db}, nil
}

// Close releases the handle.
func (d *DB) Close() error { return d.sql.Close() }

// Migrate applies embedded migrations in lexical order, skipping applied ones.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.sql.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	var files []string
	if err := fs.WalkDir(migrations, "sql", func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("walk migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := d.sql.QueryRowContext(ctx, `SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("query _migrations: %w", err)
		}

		body, err := migrations.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		tx, err := d.sql.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

// Counts returns how many target and dictionary rows are stored.
func (d *DB) Counts(ctx context.Context) (targets, dict int, err error) {
	if err = d.sql.QueryRowContext(ctx, `SELECT COUNT(1) FROM targets`).Scan(&targets); err != nil {
		return 0, 0, err
	}
	if err = d.sql.QueryRowContext(ctx, `SELECT COUNT(1) FROM dictionary`).Scan(&dict); err != nil {
		return 0, 0, err
	}
	return targets, dict, nil
}

// Import replaces the stored lists in a single transaction.
func (d *DB) Import(ctx context.Context, targets []words.TargetEntry, dict []string) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM targets; DELETE FROM dictionary;`); err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}

	ins, err := tx.PrepareContext(ctx, `INSERT INTO targets (word, rank, eligible) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer ins.Close()
	for _, t := range targets {
		if _, err := ins.ExecContext(ctx, t.Word, t.Rank, t.Eligible); err != nil {
			return fmt.Errorf("insert target %s: %w", t.Word, err)
		}
	}

	insDict, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO dictionary (word) VALUES (?)`)
	if err != nil {
		return err
	}
	defer insDict.Close()
	for _, w := range dict {
		if _, err := insDict.ExecContext(ctx, w); err != nil {
			return fmt.Errorf("insert word %s: %w", w, err)
		}
	}
	return tx.Commit()
}

// Load reads the catalog (in source order) and dictionary back.
func (d *DB) Load(ctx context.Context) (*words.Catalog, words.Dictionary, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT word, rank, eligible FROM targets ORDER BY seq`)
	if err != nil {
		return nil, nil, err
	}
	var targets []words.TargetEntry
	for rows.Next() {
		var t words.TargetEntry
		if err := rows.Scan(&t.Word, &t.Rank, &t.Eligible); err != nil {
			rows.Close()
			return nil, nil, err
		}
		targets = append(targets, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	drows, err := d.sql.QueryContext(ctx, `SELECT word FROM dictionary`)
	if err != nil {
		return nil, nil, err
	}
	defer drows.Close()
	var dict []string
	for drows.Next() {
		var w string
		if err := drows.Scan(&w); err != nil {
			return nil, nil, err
		}
		dict = append(dict, w)
	}
	if err := drows.Err(); err != nil {
		return nil, nil, err
	}
	return words.Build(targets, dict)
}
