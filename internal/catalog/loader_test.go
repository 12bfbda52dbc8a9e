package catalog

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainsait/drg-suite/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

const catalogYAML = `terms:
  - term: cholera
    synonyms: ["cholera", "الكوليرا"]
    diagnosis:
      code: A00
      description: Cholera
      base_confidence: 0.9
    inpatient:
      code: APR-890
      description: Major gastrointestinal infections
      base_cmi: 1.2
    outpatient:
      code: EAPG-090
      description: Gastrointestinal infection
      base_cmi: 0.7
procedures:
  - term: colonoscopy
    synonyms: ["colonoscopy"]
    code: "45378"
    description: Diagnostic colonoscopy
    base_confidence: 0.93
exclusions:
  A00: ["A09"]
`

func writeCatalogFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	c, err := LoadFile(writeCatalogFile(t, catalogYAML))
	require.NoError(t, err)

	entry, ok := c.LookupSynonym("الكوليرا")
	require.True(t, ok)
	assert.Equal(t, "A00", entry.Diagnosis.Code)
	assert.InDelta(t, 1.2, entry.Inpatient.BaseCMI, 1e-9)

	require.Len(t, c.Procedures(), 1)
	assert.Equal(t, "45378", c.Procedures()[0].Code)
	assert.Equal(t, []string{"A09"}, c.Exclusions()["A00"])
}

func TestLoadFile_Errors(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		_, err := LoadFile("")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid entry rejected", func(t *testing.T) {
		bad := "terms:\n  - term: cholera\n    diagnosis:\n      code: \"\"\n"
		_, err := LoadFile(writeCatalogFile(t, bad))
		assert.Error(t, err)
	})
}

func TestLoad_SourceSelection(t *testing.T) {
	ctx := context.Background()

	t.Run("builtin by default", func(t *testing.T) {
		c, err := Load(ctx, domain.CatalogConfig{}, nil, testLogger())
		require.NoError(t, err)
		_, ok := c.LookupDiagnosisCode("I21.9")
		assert.True(t, ok)
	})

	t.Run("file source", func(t *testing.T) {
		cfg := domain.CatalogConfig{Source: SourceFile, Path: writeCatalogFile(t, catalogYAML)}
		c, err := Load(ctx, cfg, nil, testLogger())
		require.NoError(t, err)
		_, ok := c.LookupDiagnosisCode("A00")
		assert.True(t, ok)
	})

	t.Run("database source requires a repository", func(t *testing.T) {
		_, err := Load(ctx, domain.CatalogConfig{Source: SourceDatabase}, nil, testLogger())
		assert.Error(t, err)
	})

	t.Run("unknown source", func(t *testing.T) {
		_, err := Load(ctx, domain.CatalogConfig{Source: "ftp"}, nil, testLogger())
		assert.Error(t, err)
	})
}
