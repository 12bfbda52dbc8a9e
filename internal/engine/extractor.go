// Package engine implements the coding and automation-decision engine: term
// extraction, exclusion filtering, confidence scoring, severity and risk
// classification, DRG/EAPG grouping and the three-phase automation decision.
// The engine is a pure computation over immutable catalogs; a result is fully
// determined by (note, encounter, patient) and safe to compute concurrently.
package engine

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/brainsait/drg-suite/internal/domain"
)

// Grouping-code confidence is derived from the diagnosis confidence, slightly
// discounted because grouping selection adds its own uncertainty.
const (
	inpatientGroupingFactor  = 0.95
	outpatientGroupingFactor = 0.90
)

// Fallback code emitted when no diagnosis term matches, so the suggestion
// list is never empty and the run always lands in human review.
const (
	fallbackCode        = "Z00.00"
	fallbackDescription = "Encounter for general adult medical examination without abnormal findings"
	fallbackConfidence  = 0.50
)

// Extractor scans normalized note text against the term catalogs and produces
// candidate codes.
type Extractor struct {
	catalog domain.TermCatalog
	logger  *logrus.Logger
}

// NewExtractor creates an extractor over the given catalog.
func NewExtractor(catalog domain.TermCatalog, logger *logrus.Logger) *Extractor {
	return &Extractor{catalog: catalog, logger: logger}
}

// Extract produces the candidate code list for a note. Each catalog entry
// contributes at most one diagnosis and one grouping code (first matching
// synonym wins); procedure terms are scanned separately and everything is
// deduplicated by code value. The resulting code set does not depend on
// catalog iteration order.
func (e *Extractor) Extract(note string, encounterType domain.EncounterType) []domain.SuggestedCode {
	text := strings.ToLower(note)
	seen := make(map[string]bool)
	var codes []domain.SuggestedCode

	for _, entry := range e.catalog.Entries() {
		if !anySynonymInText(entry.Synonyms, text) {
			continue
		}

		if !seen[entry.Diagnosis.Code] {
			seen[entry.Diagnosis.Code] = true
			codes = append(codes, domain.SuggestedCode{
				Code:        entry.Diagnosis.Code,
				Description: entry.Diagnosis.Description,
				Confidence:  entry.Diagnosis.BaseConfidence,
				Type:        domain.CodeTypeDiagnosis,
			})
		}

		grouping := e.groupingCode(entry, encounterType)
		if !seen[grouping.Code] {
			seen[grouping.Code] = true
			codes = append(codes, grouping)
		}
	}

	for _, proc := range e.catalog.Procedures() {
		if !anySynonymInText(proc.Synonyms, text) {
			continue
		}
		if seen[proc.Code] {
			continue
		}
		seen[proc.Code] = true
		codes = append(codes, domain.SuggestedCode{
			Code:        proc.Code,
			Description: proc.Description,
			Confidence:  proc.BaseConfidence,
			Type:        domain.CodeTypeProcedure,
		})
	}

	if !hasDiagnosis(codes) {
		codes = append(codes, domain.SuggestedCode{
			Code:        fallbackCode,
			Description: fallbackDescription,
			Confidence:  fallbackConfidence,
			Type:        domain.CodeTypeDiagnosis,
		})
	}

	e.logger.WithFields(logrus.Fields{
		"encounter_type": encounterType.String(),
		"code_count":     len(codes),
	}).Debug("Extraction completed")

	return codes
}

// groupingCode derives the payment-grouping candidate for a matched entry.
// Inpatient encounters take the APR-DRG branch; everything else, including
// emergency and unrecognized encounter types, takes the EAPG branch.
func (e *Extractor) groupingCode(entry domain.TermEntry, encounterType domain.EncounterType) domain.SuggestedCode {
	if encounterType == domain.EncounterInpatient {
		return domain.SuggestedCode{
			Code:           entry.Inpatient.Code,
			Description:    entry.Inpatient.Description,
			Confidence:     entry.Diagnosis.BaseConfidence * inpatientGroupingFactor,
			Type:           domain.CodeTypeGroupingInpatient,
			GroupingNumber: groupingNumber(entry.Inpatient.Code),
			CaseMixIndex:   entry.Inpatient.BaseCMI,
		}
	}
	return domain.SuggestedCode{
		Code:           entry.Outpatient.Code,
		Description:    entry.Outpatient.Description,
		Confidence:     entry.Diagnosis.BaseConfidence * outpatientGroupingFactor,
		Type:           domain.CodeTypeGroupingOutpatient,
		GroupingNumber: groupingNumber(entry.Outpatient.Code),
		CaseMixIndex:   entry.Outpatient.BaseCMI,
	}
}

// groupingNumber strips the grouping-family prefix, leaving the bare number.
func groupingNumber(code string) string {
	if i := strings.LastIndex(code, "-"); i >= 0 {
		return code[i+1:]
	}
	return code
}

// anySynonymInText reports whether any synonym occurs as a whole word in the
// lower-cased text. The first match wins, so an entry contributes at most
// once per run.
func anySynonymInText(synonyms []string, text string) bool {
	for _, syn := range synonyms {
		if containsWholeWord(text, strings.ToLower(syn)) {
			return true
		}
	}
	return false
}

// containsWholeWord reports a whole-word occurrence of term in text: the
// runes adjacent to the match must not be letters or digits. Implemented by
// hand because regexp \b boundaries are ASCII-only and the catalog carries
// Arabic synonyms.
func containsWholeWord(text, term string) bool {
	if term == "" {
		return false
	}
	for start := 0; ; {
		i := strings.Index(text[start:], term)
		if i < 0 {
			return false
		}
		i += start

		if boundaryBefore(text, i) && boundaryAfter(text, i+len(term)) {
			return true
		}
		start = i + 1
	}
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func hasDiagnosis(codes []domain.SuggestedCode) bool {
	for _, c := range codes {
		if c.Type == domain.CodeTypeDiagnosis {
			return true
		}
	}
	return false
}
