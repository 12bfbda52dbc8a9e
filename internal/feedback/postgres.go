package feedback

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore implements Store over PostgreSQL for multi-node deployments.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an existing connection. The coder_feedback table
// must already exist (created via migrations).
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging feedback database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL opens a pooled connection from a DSN.
func NewPostgresStoreFromURL(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening feedback database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Save upserts feedback for an encounter/code pair.
func (s *PostgresStore) Save(ctx context.Context, fb *Feedback) error {
	now := time.Now()

	query := `
		INSERT INTO coder_feedback (
			encounter_id, physician_id, coder_id,
			suggested_code, final_code, coder_agreed,
			engine_version, confidence, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (encounter_id, suggested_code) DO UPDATE SET
			physician_id = EXCLUDED.physician_id,
			coder_id = EXCLUDED.coder_id,
			final_code = EXCLUDED.final_code,
			coder_agreed = EXCLUDED.coder_agreed,
			engine_version = EXCLUDED.engine_version,
			confidence = EXCLUDED.confidence,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`
	err := s.db.QueryRowContext(ctx, query,
		fb.EncounterID, fb.PhysicianID, fb.CoderID,
		fb.SuggestedCode, fb.FinalCode, fb.CoderAgreed,
		fb.EngineVersion, fb.Confidence, fb.Notes, now, now,
	).Scan(&fb.ID, &fb.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving feedback: %w", err)
	}

	fb.UpdatedAt = now
	return nil
}

// Get retrieves feedback for one encounter/code pair, nil when absent.
func (s *PostgresStore) Get(ctx context.Context, encounterID, suggestedCode string) (*Feedback, error) {
	query := `
		SELECT id, encounter_id, physician_id, coder_id,
			suggested_code, final_code, coder_agreed,
			engine_version, confidence, notes, created_at, updated_at
		FROM coder_feedback
		WHERE encounter_id = $1 AND suggested_code = $2
		LIMIT 1
	`
	row := s.db.QueryRowContext(ctx, query, encounterID, suggestedCode)
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
func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]*Feedback, error) {
	query := `
		SELECT id, encounter_id, physician_id, coder_id,
			suggested_code, final_code, coder_agreed,
			engine_version, confidence, notes, created_at, updated_at
		FROM coder_feedback
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := s.db.QueryContext(ctx, query, limit, offset)
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
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM coder_feedback").Scan(&count)
	return count, err
}

// Delete removes a feedback entry by ID.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM coder_feedback WHERE id = $1", id)
	return err
}

// ExportJSON writes every entry as an indented JSON document.
func (s *PostgresStore) ExportJSON(ctx context.Context, w io.Writer) error {
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
func (s *PostgresStore) ImportJSON(ctx context.Context, r io.Reader) (imported int, skipped int, err error) {
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
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
