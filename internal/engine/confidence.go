package engine

import (
	"strings"

	"github.com/brainsait/drg-suite/internal/domain"
)

// Weights of the composite confidence score. They sum to 1.0 so the overall
// score stays in [0,1] as long as each factor does.
const (
	weightCompleteness       = 0.20
	weightSpecificity        = 0.25
	weightHistoricalAccuracy = 0.25
	weightCrossValidation    = 0.15
	weightClinicalIndicators = 0.15
)

// neutralFactor is used when a factor has no data to judge, e.g. specificity
// with an empty code list.
const neutralFactor = 0.5

// clinicalIndicatorVocabulary is the fixed vocabulary whose presence signals
// a well-structured clinical note.
var clinicalIndicatorVocabulary = []string{
	"diagnosis", "symptoms", "treatment", "medication", "procedure", "vital signs",
}

// contextVocabularies hold encounter-type specific terms for the
// informational context-analysis factor.
var contextVocabularies = map[domain.EncounterType][]string{
	domain.EncounterInpatient:  {"admitted", "admission", "ward", "discharge", "inpatient"},
	domain.EncounterOutpatient: {"clinic", "visit", "follow-up", "outpatient"},
	domain.EncounterEmergency:  {"emergency", "triage", "acute", "resuscitation"},
}

// ConfidenceScorer computes the composite confidence for a coding run.
type ConfidenceScorer struct{}

// NewConfidenceScorer creates a confidence scorer.
func NewConfidenceScorer() *ConfidenceScorer {
	return &ConfidenceScorer{}
}

// Score computes the weighted composite confidence plus the informational
// auxiliary factors. All returned values are in [0,1].
func (s *ConfidenceScorer) Score(note string, codes []domain.SuggestedCode, encounterType domain.EncounterType) *domain.ConfidenceBreakdown {
	text := strings.ToLower(note)

	completeness := s.completeness(text)
	specificity := s.specificity(codes)
	historical := s.historicalAccuracy(codes)
	crossValidation := s.crossValidation(codes)
	clinicalIndicators := s.vocabularyFraction(text, clinicalIndicatorVocabulary)

	overall := weightCompleteness*completeness +
		weightSpecificity*specificity +
		weightHistoricalAccuracy*historical +
		weightCrossValidation*crossValidation +
		weightClinicalIndicators*clinicalIndicators

	return &domain.ConfidenceBreakdown{
		Overall:            clamp01(overall),
		Completeness:       completeness,
		Specificity:        specificity,
		HistoricalAccuracy: historical,
		CrossValidation:    crossValidation,
		Auxiliary: map[string]float64{
			domain.FactorClinicalIndicators: clinicalIndicators,
			domain.FactorTerminologyMatch:   s.terminologyMatch(text, codes),
			domain.FactorContextAnalysis:    s.contextAnalysis(text, encounterType),
			// Reserved until coder-feedback history feeds per-physician
			// accuracy; reported as neutral so downstream dashboards keep a
			// stable factor set.
			domain.FactorPhysicianPatterns: neutralFactor,
		},
	}
}

// completeness rewards longer notes, saturating at 100 words.
func (s *ConfidenceScorer) completeness(text string) float64 {
	words := len(strings.Fields(text))
	return min01(float64(words) / 100.0)
}

// specificity rewards longer, more specific codes; a decimal separator marks
// a sub-classified code and earns a small bonus.
func (s *ConfidenceScorer) specificity(codes []domain.SuggestedCode) float64 {
	if len(codes) == 0 {
		return neutralFactor
	}
	var sum float64
	for _, c := range codes {
		v := min01(float64(len(c.Code)) / 10.0)
		if strings.Contains(c.Code, ".") {
			v += 0.1
		}
		sum += min01(v)
	}
	return sum / float64(len(codes))
}

// historicalAccuracy is the mean of the individual code confidences.
func (s *ConfidenceScorer) historicalAccuracy(codes []domain.SuggestedCode) float64 {
	if len(codes) == 0 {
		return neutralFactor
	}
	var sum float64
	for _, c := range codes {
		sum += c.Confidence
	}
	return sum / float64(len(codes))
}

// crossValidation rewards multiple distinct codes corroborating each other.
func (s *ConfidenceScorer) crossValidation(codes []domain.SuggestedCode) float64 {
	distinct := make(map[string]bool, len(codes))
	for _, c := range codes {
		distinct[c.Code] = true
	}
	return min01(0.2*float64(len(distinct)) + 0.6)
}

// terminologyMatch is the fraction of suggested-code description words
// (length > 3) that also appear in the note. Informational only.
func (s *ConfidenceScorer) terminologyMatch(text string, codes []domain.SuggestedCode) float64 {
	var total, matched int
	for _, c := range codes {
		for _, word := range strings.Fields(strings.ToLower(c.Description)) {
			word = strings.Trim(word, ",.;:()")
			if len(word) <= 3 {
				continue
			}
			total++
			if strings.Contains(text, word) {
				matched++
			}
		}
	}
	if total == 0 {
		return neutralFactor
	}
	return float64(matched) / float64(total)
}

// contextAnalysis measures encounter-type vocabulary presence, offset so a
// plausible note scores well even without every keyword. Informational only.
func (s *ConfidenceScorer) contextAnalysis(text string, encounterType domain.EncounterType) float64 {
	vocab, ok := contextVocabularies[encounterType]
	if !ok {
		return 0.7
	}
	return min01(s.vocabularyFraction(text, vocab) + 0.3)
}

// vocabularyFraction is the fraction of vocabulary terms present in the text
// (case-insensitive substring test).
func (s *ConfidenceScorer) vocabularyFraction(text string, vocabulary []string) float64 {
	if len(vocabulary) == 0 {
		return 0
	}
	var present int
	for _, term := range vocabulary {
		if strings.Contains(text, term) {
			present++
		}
	}
	return float64(present) / float64(len(vocabulary))
}

func min01(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
