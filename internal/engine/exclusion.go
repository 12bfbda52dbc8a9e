package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/brainsait/drg-suite/internal/domain"
)

// ExclusionFilter removes diagnosis codes that a co-occurring diagnosis code
// renders invalid, e.g. an acute-condition code suppressing its non-acute
// counterpart.
type ExclusionFilter struct {
	catalog domain.TermCatalog
	logger  *logrus.Logger
}

// NewExclusionFilter creates an exclusion filter over the catalog's static
// exclusion table.
func NewExclusionFilter(catalog domain.TermCatalog, logger *logrus.Logger) *ExclusionFilter {
	return &ExclusionFilter{catalog: catalog, logger: logger}
}

// Apply runs a single, non-iterative pass: every present diagnosis code with
// exclusion entries marks its excluded codes, then marked codes are dropped.
// Multi-hop exclusion chains are deliberately not resolved; when the table
// contains overlapping chains the outcome of a transitive closure would be
// ambiguous, so chains are only logged.
func (f *ExclusionFilter) Apply(codes []domain.SuggestedCode) []domain.SuggestedCode {
	exclusions := f.catalog.Exclusions()

	present := make(map[string]bool)
	for _, c := range codes {
		if c.Type == domain.CodeTypeDiagnosis {
			present[c.Code] = true
		}
	}

	excluded := make(map[string]bool)
	for _, c := range codes {
		if c.Type != domain.CodeTypeDiagnosis {
			continue
		}
		for _, victim := range exclusions[c.Code] {
			if present[victim] {
				excluded[victim] = true
			}
		}
	}

	if len(excluded) == 0 {
		return codes
	}

	// An excluded code that itself excludes others indicates a chain the
	// single-pass semantics do not resolve.
	for victim := range excluded {
		if len(exclusions[victim]) > 0 {
			f.logger.WithField("code", victim).Warn("Excluded code has its own exclusion entries; chain not resolved")
		}
	}

	filtered := make([]domain.SuggestedCode, 0, len(codes))
	for _, c := range codes {
		if c.Type == domain.CodeTypeDiagnosis && excluded[c.Code] {
			continue
		}
		filtered = append(filtered, c)
	}

	f.logger.WithFields(logrus.Fields{
		"removed":   len(codes) - len(filtered),
		"remaining": len(filtered),
	}).Debug("Exclusion rules applied")

	return filtered
}
