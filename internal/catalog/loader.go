package catalog

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/brainsait/drg-suite/internal/domain"
)

// Catalog source selectors for domain.CatalogConfig.Source.
const (
	SourceBuiltin  = "builtin"
	SourceFile     = "file"
	SourceDatabase = "database"
)

// Load builds the catalog selected by cfg. The database source needs a
// CatalogSource; pass nil for builtin and file sources.
func Load(ctx context.Context, cfg domain.CatalogConfig, src domain.CatalogSource, logger *logrus.Logger) (*Catalog, error) {
	switch cfg.Source {
	case "", SourceBuiltin:
		c := Builtin()
		logger.WithFields(logrus.Fields{
			"source":     SourceBuiltin,
			"terms":      len(c.entries),
			"procedures": len(c.procedures),
		}).Info("Catalog loaded")
		return c, nil

	case SourceFile:
		c, err := LoadFile(cfg.Path)
		if err != nil {
			return nil, err
		}
		logger.WithFields(logrus.Fields{
			"source":     SourceFile,
			"path":       cfg.Path,
			"terms":      len(c.entries),
			"procedures": len(c.procedures),
		}).Info("Catalog loaded")
		return c, nil

	case SourceDatabase:
		if src == nil {
			return nil, fmt.Errorf("catalog source %q requires a database catalog source", SourceDatabase)
		}
		c, err := LoadSource(ctx, src)
		if err != nil {
			return nil, err
		}
		logger.WithFields(logrus.Fields{
			"source":     SourceDatabase,
			"terms":      len(c.entries),
			"procedures": len(c.procedures),
		}).Info("Catalog loaded")
		return c, nil

	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}

// LoadFile reads a catalog from a YAML file with top-level keys `terms`,
// `procedures` and `exclusions`. The file fully replaces the builtin dataset;
// updating codes never requires a redeployment.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return nil, fmt.Errorf("catalog file path is required")
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading catalog file %s: %w", path, err)
	}

	var entries []domain.TermEntry
	if err := v.UnmarshalKey("terms", &entries); err != nil {
		return nil, fmt.Errorf("parsing catalog terms: %w", err)
	}

	var procedures []domain.ProcedureEntry
	if err := v.UnmarshalKey("procedures", &procedures); err != nil {
		return nil, fmt.Errorf("parsing catalog procedures: %w", err)
	}

	exclusions := map[string][]string{}
	if err := v.UnmarshalKey("exclusions", &exclusions); err != nil {
		return nil, fmt.Errorf("parsing catalog exclusions: %w", err)
	}

	return New(entries, procedures, exclusions)
}

// LoadSource builds a catalog from an external source such as the PostgreSQL
// catalog repository.
func LoadSource(ctx context.Context, src domain.CatalogSource) (*Catalog, error) {
	entries, err := src.LoadEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog entries: %w", err)
	}

	procedures, err := src.LoadProcedures(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog procedures: %w", err)
	}

	exclusions, err := src.LoadExclusions(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog exclusions: %w", err)
	}

	return New(entries, procedures, exclusions)
}
