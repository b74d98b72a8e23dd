package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Entry represents a single recorded run
type Entry struct {
	ID        string
	CreatedAt time.Time
	Model     string
	Prompt    string
	System    string
	// Response is the model output that entered review, after enrichment
	Response string
	Enriched bool
	// Command is what the user approved and the shell ran
	Command  string
	ExitCode int
}

// NewEntry creates a new entry stamped with a fresh ID and the current time
func NewEntry(model, prompt, system, response string, enriched bool, command string, exitCode int) Entry {
	return Entry{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Model:     model,
		Prompt:    prompt,
		System:    system,
		Response:  response,
		Enriched:  enriched,
		Command:   command,
		ExitCode:  exitCode,
	}
}

// Store records runs in a SQLite database
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the run log at dbPath
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		model TEXT NOT NULL,
		prompt TEXT NOT NULL,
		system TEXT NOT NULL,
		response TEXT NOT NULL,
		enriched INTEGER NOT NULL,
		command TEXT NOT NULL,
		exit_code INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record stores entry
func (s *Store) Record(ctx context.Context, entry Entry) error {
	enriched := 0
	if entry.Enriched {
		enriched = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, model, prompt, system, response, enriched, command, exit_code)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.CreatedAt.UnixNano(), entry.Model, entry.Prompt, entry.System,
		entry.Response, enriched, entry.Command, entry.ExitCode)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, model, prompt, system, response, enriched, command, exit_code
		FROM runs
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry     Entry
			createdAt int64
			enriched  int
		)
		if err := rows.Scan(&entry.ID, &createdAt, &entry.Model, &entry.Prompt, &entry.System,
			&entry.Response, &enriched, &entry.Command, &entry.ExitCode); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		entry.CreatedAt = time.Unix(0, createdAt).UTC()
		entry.Enriched = enriched != 0
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
