package feedback

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store over a local SQLite file. It suits single-node
// deployments and development setups.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens (or creates) the database file and its schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating feedback directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening feedback database: %w", err)
	}

	// WAL lets readers proceed while a save is in flight.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating feedback schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS coder_feedback (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		encounter_id TEXT NOT NULL,
		physician_id TEXT DEFAULT '',
		coder_id TEXT NOT NULL,
		suggested_code TEXT NOT NULL,
		final_code TEXT NOT NULL,
		coder_agreed INTEGER NOT NULL DEFAULT 0,
		engine_version TEXT DEFAULT '',
		confidence REAL NOT NULL DEFAULT 0,
		notes TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(encounter_id, suggested_code)
	);

	CREATE INDEX IF NOT EXISTS idx_feedback_encounter ON coder_feedback(encounter_id);
	CREATE INDEX IF NOT EXISTS idx_feedback_code ON coder_feedback(suggested_code);
	CREATE INDEX IF NOT EXISTS idx_feedback_created ON coder_feedback(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// scanner covers sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanFeedback(s scanner) (*Feedback, error) {
	fb := &Feedback{}
	err := s.Scan(
		&fb.ID, &fb.EncounterID, &fb.PhysicianID, &fb.CoderID,
		&fb.SuggestedCode, &fb.FinalCode, &fb.CoderAgreed,
		&fb.EngineVersion, &fb.Confidence, &fb.Notes,
		&fb.CreatedAt, &fb.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return fb, nil
}

const selectColumns = `id, encounter_id, physician_id, coder_id,
	suggested_code, final_code, coder_agreed,
	engine_version, confidence, notes, created_at, updated_at`

// Save stores or updates feedback for an encounter/code pair.
func (s *SQLiteStore) Save(ctx context.Context, fb *Feedback) error {
	now := time.Now()

	var existingID int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM coder_feedback WHERE encounter_id = ? AND suggested_code = ?",
		fb.EncounterID, fb.SuggestedCode,
	).Scan(&existingID)

	if err == nil {
		fb.ID = existingID
		fb.UpdatedAt = now
		_, err = s.db.ExecContext(ctx, `
			UPDATE coder_feedback SET
				physician_id = ?,
				coder_id = ?,
				final_code = ?,
				coder_agreed = ?,
				engine_version = ?,
				confidence = ?,
				notes = ?,
				updated_at = ?
			WHERE id = ?
		`,
			fb.PhysicianID, fb.CoderID, fb.FinalCode, fb.CoderAgreed,
			fb.EngineVersion, fb.Confidence, fb.Notes, now, existingID,
		)
		return err
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("checking existing feedback: %w", err)
	}

	fb.CreatedAt = now
	fb.UpdatedAt = now
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO coder_feedback (
			encounter_id, physician_id, coder_id,
			suggested_code, final_code, coder_agreed,
			engine_version, confidence, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		fb.EncounterID, fb.PhysicianID, fb.CoderID,
		fb.SuggestedCode, fb.FinalCode, fb.CoderAgreed,
		fb.EngineVersion, fb.Confidence, fb.Notes, now, now,
	)
	if err != nil {
		return fmt.Errorf("inserting feedback: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading insert ID: %w", err)
	}
	fb.ID = id
	return nil
}

// Get retrieves feedback for one encounter/code pair, nil when absent.
func (s *SQLiteStore) Get(ctx context.Context, encounterID, suggestedCode string) (*Feedback, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+selectColumns+`
		FROM coder_feedback
		WHERE encounter_id = ? AND suggested_code = ?
		LIMIT 1
	`, encounterID, suggestedCode)

	fb, err := scanFeedback(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning feedback: %w", err)
	}
	return fb, nil
}

// List returns feedback entries newest first.
func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]*Feedback, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM coder_feedback
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying feedback: %w", err)
	}
	defer rows.Close()

	var result []*Feedback
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning feedback row: %w", err)
		}
		result = append(result, fb)
	}
	return result, rows.Err()
}

// Count returns the total number of feedback entries.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM coder_feedback").Scan(&count)
	return count, err
}

// Delete removes a feedback entry by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM coder_feedback WHERE id = ?", id)
	return err
}

// maxExportLimit bounds a single export.
const maxExportLimit = 1000000

// ExportJSON writes every entry as an indented JSON document.
func (s *SQLiteStore) ExportJSON(ctx context.Context, w io.Writer) error {
	all, err := s.List(ctx, maxExportLimit, 0)
	if err != nil {
		return fmt.Errorf("listing feedback: %w", err)
	}

	export := &Export{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Count:      len(all),
		Feedback:   all,
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

// ImportJSON loads entries from an export document, skipping pairs that are
// already stored.
func (s *SQLiteStore) ImportJSON(ctx context.Context, r io.Reader) (imported int, skipped int, err error) {
	var export Export
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return 0, 0, fmt.Errorf("decoding feedback export: %w", err)
	}

	for _, fb := range export.Feedback {
		existing, err := s.Get(ctx, fb.EncounterID, fb.SuggestedCode)
		if err != nil {
			return imported, skipped, fmt.Errorf("checking existing feedback: %w", err)
		}
		if existing != nil {
			skipped++
			continue
		}
		if err := s.Save(ctx, fb); err != nil {
			return imported, skipped, fmt.Errorf("saving imported feedback: %w", err)
		}
		imported++
	}
	return imported, skipped, nil
}

// Close releases the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
