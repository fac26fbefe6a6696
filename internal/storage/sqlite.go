// Package storage persists the prompt pool and the audit trail in a local
// SQLite database.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/sentence-dash/server/internal/catalog"
)

const schema = `
CREATE TABLE IF NOT EXISTS prompts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	prompt TEXT NOT NULL,
	gpt_answer TEXT NOT NULL,
	is_custom INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS submissions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	prompt TEXT NOT NULL,
	answer TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE TABLE IF NOT EXISTS guesses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	prompt TEXT NOT NULL,
	is_correct INTEGER NOT NULL,
	created_at TEXT NOT NULL DEFAULT (datetime('now'))
);`

// Store wraps the SQLite handle. It serves double duty as the catalog's
// prompt source and the audit sink.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and bootstraps the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Prompts returns every non-custom prompt pair.
func (s *Store) Prompts(ctx context.Context) ([]catalog.Pair, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT prompt, gpt_answer FROM prompts WHERE is_custom = 0`)
	if err != nil {
		return nil, fmt.Errorf("query prompts: %w", err)
	}
	defer rows.Close()

	var pairs []catalog.Pair
	for rows.Next() {
		var p catalog.Pair
		if err := rows.Scan(&p.Prompt, &p.Answer); err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prompts: %w", err)
	}
	return pairs, nil
}

// RecordPrompt stores a player-supplied prompt pair, flagged custom so it
// never enters the drawn pool.
func (s *Store) RecordPrompt(ctx context.Context, prompt, answer string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO prompts (prompt, gpt_answer, is_custom) VALUES (?, ?, 1)`, prompt, answer)
	return err
}

func (s *Store) RecordSubmission(ctx context.Context, prompt, sentence string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions (prompt, answer) VALUES (?, ?)`, prompt, sentence)
	return err
}

func (s *Store) RecordGuess(ctx context.Context, prompt string, correct bool) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO guesses (prompt, is_correct) VALUES (?, ?)`, prompt, correct)
	return err
}
