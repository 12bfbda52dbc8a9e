package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/brainsait/drg-suite/internal/database"
	"github.com/brainsait/drg-suite/internal/domain"
)

func testPassword() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "test_fallback_password_123"
	}
	return "test_" + hex.EncodeToString(buf)
}

// setupTestDB starts a throwaway PostgreSQL container and applies the
// project migrations. Gated behind INTEGRATION_TESTS because it needs a
// working Docker daemon.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	if os.Getenv("INTEGRATION_TESTS") == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run container-backed tests")
	}

	ctx := context.Background()
	password := testPassword()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err, "starting postgres container")
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := domain.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		Database:        "testdb",
		Username:        "testuser",
		Password:        password,
		SSLMode:         "disable",
		MaxConns:        10,
		MinConns:        2,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}

	db, err := database.NewConnection(ctx, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	runner, err := database.NewMigrationRunner(database.DSN(cfg), "../../migrations", logger)
	require.NoError(t, err)
	require.NoError(t, runner.Up())
	require.NoError(t, runner.Close())

	return db
}

func sampleEntries() []domain.TermEntry {
	return []domain.TermEntry{
		{
			Term:     "cholera",
			Synonyms: []string{"vibrio cholerae infection"},
			Diagnosis: domain.DiagnosisBinding{
				Code: "A00", Description: "Cholera", BaseConfidence: 0.9,
			},
			Inpatient: domain.GroupingBinding{
				Code: "APR-248", Description: "Major gastrointestinal infections", BaseCMI: 1.10,
			},
			Outpatient: domain.GroupingBinding{
				Code: "EAPG-060", Description: "Infectious disease visit", BaseCMI: 0.70,
			},
		},
		{
			Term:     "typhoid fever",
			Synonyms: []string{"enteric fever"},
			Diagnosis: domain.DiagnosisBinding{
				Code: "A01.0", Description: "Typhoid fever", BaseConfidence: 0.88,
			},
		},
	}
}

func TestCatalogRepository_ReplaceAndLoadEntries(t *testing.T) {
	db := setupTestDB(t)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	repo := NewCatalogRepository(db.Pool, logger)
	ctx := context.Background()

	entries, err := repo.LoadEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, repo.ReplaceEntries(ctx, sampleEntries()))

	entries, err = repo.LoadEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// LoadEntries orders by term.
	assert.Equal(t, "cholera", entries[0].Term)
	assert.Equal(t, []string{"vibrio cholerae infection"}, entries[0].Synonyms)
	assert.Equal(t, "A00", entries[0].Diagnosis.Code)
	assert.InDelta(t, 1.10, entries[0].Inpatient.BaseCMI, 1e-9)
	assert.Equal(t, "typhoid fever", entries[1].Term)
	assert.Empty(t, entries[1].Inpatient.Code)

	// Replace swaps the whole table, it does not append.
	require.NoError(t, repo.ReplaceEntries(ctx, sampleEntries()[:1]))
	entries, err = repo.LoadEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCatalogRepository_LoadProcedures(t *testing.T) {
	db := setupTestDB(t)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	repo := NewCatalogRepository(db.Pool, logger)
	ctx := context.Background()

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO catalog_procedures (term, synonyms, code, description, base_confidence)
		VALUES ('colonoscopy', '{"lower endoscopy"}', '45378', 'Diagnostic colonoscopy', 0.93)`)
	require.NoError(t, err)

	procedures, err := repo.LoadProcedures(ctx)
	require.NoError(t, err)
	require.Len(t, procedures, 1)
	assert.Equal(t, "colonoscopy", procedures[0].Term)
	assert.Equal(t, "45378", procedures[0].Code)
	assert.Equal(t, []string{"lower endoscopy"}, procedures[0].Synonyms)
	assert.InDelta(t, 0.93, procedures[0].BaseConfidence, 1e-9)
}

func TestCatalogRepository_LoadExclusions(t *testing.T) {
	db := setupTestDB(t)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	repo := NewCatalogRepository(db.Pool, logger)
	ctx := context.Background()

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO catalog_exclusions (code, excluded_code) VALUES
		('A00', 'A09'), ('A00', 'R19.7'), ('I21.9', 'I25.2')`)
	require.NoError(t, err)

	exclusions, err := repo.LoadExclusions(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"A00":   {"A09", "R19.7"},
		"I21.9": {"I25.2"},
	}, exclusions)
}
