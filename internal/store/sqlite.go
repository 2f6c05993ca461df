// internal/store/sqlite.go
//
// SQLite backend.
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout).
//   - Applying embedded migrations from sql/*.sql (idempotent, recorded in _migrations).
//   - Storing documents as JSON bodies keyed by name.
//   - Recording finished rounds for the recent-rounds view.

package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numberguess/internal/persist"
)

//go:embed sql/*.sql
var migrations embed.FS

// roundTimeLayout is fixed-width so finished_at sorts lexically.
const roundTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLite is a Documents and History backed by a SQLite file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if missing) the database at path and
// applies pending migrations.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

// openDB ensures the parent directory exists, then opens with busy timeout
// and WAL journaling.
func openDB(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	// Single local player; one connection keeps writes serialized.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// migrate applies every embedded sql/*.sql file in lexical order, each in
// its own transaction, skipping files already listed in _migrations.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	files, err := fs.Glob(migrations, "sql/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		body, err := migrations.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
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

func (s *SQLite) Load(ctx context.Context, name Name, dst any) (persist.Source, error) {
	if err := name.check(); err != nil {
		return persist.SourceDefault, err
	}
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE name=?`, string(name)).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return persist.SourceDefault, nil
	}
	if err != nil {
		return persist.SourceDefault, fmt.Errorf("load %s: %w", name, err)
	}
	if err := persist.DecodeInto([]byte(body), dst, json.Unmarshal); err != nil {
		log.Warn().Err(err).Str("document", string(name)).Msg("malformed document; using default")
		return persist.SourceDefault, nil
	}
	return persist.SourceStored, nil
}

func (s *SQLite) Save(ctx context.Context, name Name, v any) error {
	if err := name.check(); err != nil {
		return err
	}
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", persist.ErrIO, name, err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO documents (name, body, updated_at) VALUES (?, ?, ?)
        ON CONFLICT(name) DO UPDATE SET body=excluded.body, updated_at=excluded.updated_at`,
		string(name), string(body), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("%w: save %s: %v", persist.ErrIO, name, err)
	}
	return nil
}

// RecordRound inserts a finished round. Re-recording the same ID is ignored.
func (s *SQLite) RecordRound(ctx context.Context, r RoundRecord) error {
	won := 0
	if r.Won {
		won = 1
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO rounds (id, difficulty, secret, guesses, won, score, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Difficulty, r.Secret, r.Guesses, won, r.Score, r.FinishedAt.UTC().Format(roundTimeLayout),
	)
	return err
}

// RecentRounds returns up to limit rounds ordered by finish time DESC.
// Default limit is 20.
func (s *SQLite) RecentRounds(ctx context.Context, limit int) ([]RoundRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, difficulty, secret, guesses, won, score, finished_at
        FROM rounds
        ORDER BY finished_at DESC, rowid DESC
        LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RoundRecord, 0, limit)
	for rows.Next() {
		var (
			r        RoundRecord
			won      int
			finished string
		)
		if err := rows.Scan(&r.ID, &r.Difficulty, &r.Secret, &r.Guesses, &won, &r.Score, &finished); err != nil {
			return nil, err
		}
		r.Won = won == 1
		r.FinishedAt, _ = time.Parse(roundTimeLayout, finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error { return s.db.Close() }
