// Package repository provides PostgreSQL-backed data access. The catalog
// repository lets deployments manage the term catalog in the database and
// reload it without shipping a new binary.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/brainsait/drg-suite/internal/domain"
)

// CatalogRepository implements domain.CatalogSource over the catalog tables.
type CatalogRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewCatalogRepository creates a catalog repository.
func NewCatalogRepository(db *pgxpool.Pool, logger *logrus.Logger) *CatalogRepository {
	return &CatalogRepository{db: db, log: logger}
}

// LoadEntries reads every diagnosis term entry.
func (r *CatalogRepository) LoadEntries(ctx context.Context) ([]domain.TermEntry, error) {
	query := `
		SELECT term, synonyms,
			   diagnosis_code, diagnosis_description, diagnosis_base_confidence,
			   inpatient_code, inpatient_description, inpatient_base_cmi,
			   outpatient_code, outpatient_description, outpatient_base_cmi
		FROM catalog_terms
		ORDER BY term`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying catalog terms: %w", err)
	}
	defer rows.Close()

	var entries []domain.TermEntry
	for rows.Next() {
		var e domain.TermEntry
		err := rows.Scan(
			&e.Term, &e.Synonyms,
			&e.Diagnosis.Code, &e.Diagnosis.Description, &e.Diagnosis.BaseConfidence,
			&e.Inpatient.Code, &e.Inpatient.Description, &e.Inpatient.BaseCMI,
			&e.Outpatient.Code, &e.Outpatient.Description, &e.Outpatient.BaseCMI,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning catalog term: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating catalog terms: %w", err)
	}

	r.log.WithField("entries", len(entries)).Info("Catalog terms loaded from database")
	return entries, nil
}

// LoadProcedures reads every procedure entry.
func (r *CatalogRepository) LoadProcedures(ctx context.Context) ([]domain.ProcedureEntry, error) {
	query := `
		SELECT term, synonyms, code, description, base_confidence
		FROM catalog_procedures
		ORDER BY term`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying catalog procedures: %w", err)
	}
	defer rows.Close()

	var procedures []domain.ProcedureEntry
	for rows.Next() {
		var p domain.ProcedureEntry
		if err := rows.Scan(&p.Term, &p.Synonyms, &p.Code, &p.Description, &p.BaseConfidence); err != nil {
			return nil, fmt.Errorf("scanning catalog procedure: %w", err)
		}
		procedures = append(procedures, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating catalog procedures: %w", err)
	}

	r.log.WithField("procedures", len(procedures)).Info("Catalog procedures loaded from database")
	return procedures, nil
}

// LoadExclusions reads the exclusion table as code -> excluded codes.
func (r *CatalogRepository) LoadExclusions(ctx context.Context) (map[string][]string, error) {
	rows, err := r.db.Query(ctx, `SELECT code, excluded_code FROM catalog_exclusions ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("querying catalog exclusions: %w", err)
	}
	defer rows.Close()

	exclusions := make(map[string][]string)
	for rows.Next() {
		var code, excluded string
		if err := rows.Scan(&code, &excluded); err != nil {
			return nil, fmt.Errorf("scanning catalog exclusion: %w", err)
		}
		exclusions[code] = append(exclusions[code], excluded)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating catalog exclusions: %w", err)
	}
	return exclusions, nil
}

// ReplaceEntries swaps the catalog_terms table contents inside one
// transaction so readers never observe a half-loaded catalog.
func (r *CatalogRepository) ReplaceEntries(ctx context.Context, entries []domain.TermEntry) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning catalog replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM catalog_terms"); err != nil {
		return fmt.Errorf("clearing catalog terms: %w", err)
	}

	insert := `
		INSERT INTO catalog_terms (
			term, synonyms,
			diagnosis_code, diagnosis_description, diagnosis_base_confidence,
			inpatient_code, inpatient_description, inpatient_base_cmi,
			outpatient_code, outpatient_description, outpatient_base_cmi
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	for _, e := range entries {
		_, err := tx.Exec(ctx, insert,
			e.Term, e.Synonyms,
			e.Diagnosis.Code, e.Diagnosis.Description, e.Diagnosis.BaseConfidence,
			e.Inpatient.Code, e.Inpatient.Description, e.Inpatient.BaseCMI,
			e.Outpatient.Code, e.Outpatient.Description, e.Outpatient.BaseCMI,
		)
		if err != nil {
			return fmt.Errorf("inserting catalog term %q: %w", e.Term, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing catalog replace: %w", err)
	}
	r.log.WithField("entries", len(entries)).Info("Catalog terms replaced")
	return nil
}
