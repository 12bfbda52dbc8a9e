package engine

import (
	"context"
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/brainsait/drg-suite/internal/domain"
)

// Version identifies the coding pipeline generation in every result.
const Version = "2.0.0-enhanced"

// extractionCacheSize bounds the memoized extraction results. Notes repeat
// heavily during coder review sessions, so a small cache covers most hits.
const extractionCacheSize = 512

// Engine orchestrates one coding run end to end. It holds no per-run state;
// a single Engine is safe for concurrent use.
type Engine struct {
	extractor *Extractor
	exclusion *ExclusionFilter
	scorer    *ConfidenceScorer
	severity  *SeverityAssessor
	grouper   *Grouper
	decider   *PhaseDecider
	claims    *ClaimBuilder
	submitter domain.ClaimSubmitter
	logger    *logrus.Logger

	extractionCache *lru.Cache[string, []domain.SuggestedCode]
}

// New assembles an engine over the given catalog. The submitter handles the
// AUTONOMOUS path; it may be nil when autonomous submission is disabled, in
// which case qualifying runs fail rather than silently skip submission.
func New(cat domain.TermCatalog, automation domain.AutomationConfig, submitter domain.ClaimSubmitter, logger *logrus.Logger) (*Engine, error) {
	cache, err := lru.New[string, []domain.SuggestedCode](extractionCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating extraction cache: %w", err)
	}

	severity := NewSeverityAssessor()
	return &Engine{
		extractor:       NewExtractor(cat, logger),
		exclusion:       NewExclusionFilter(cat, logger),
		scorer:          NewConfidenceScorer(),
		severity:        severity,
		grouper:         NewGrouper(cat, severity, logger),
		decider:         NewPhaseDecider(automation, logger),
		claims:          NewClaimBuilder(),
		submitter:       submitter,
		logger:          logger,
		extractionCache: cache,
	}, nil
}

// RunCodingJob codes one clinical note. It always produces a result for
// well-formed input; an error is returned only when the AUTONOMOUS path fails
// to submit its claim, and the submitter's error is propagated unchanged
// inside the wrap.
func (e *Engine) RunCodingJob(ctx context.Context, note string, patient domain.PatientMeta, encounter domain.EncounterMeta) (*domain.CodingResult, error) {
	suggested := e.extract(note, encounter.EncounterType)
	suggested = e.exclusion.Apply(suggested)

	breakdown := e.scorer.Score(note, suggested, encounter.EncounterType)
	grouping := e.grouper.Group(suggested, patient, encounter)
	if grouping != nil {
		for i := range suggested {
			if suggested[i].Type.IsGrouping() {
				suggested[i].SeverityLevel = grouping.SeverityOfIllness
				suggested[i].PediatricModifier = grouping.PediatricAdjusted
			}
		}
	}

	// The automation decision keys off the diagnosis confidences alone, not
	// the composite breakdown. Grouping codes carry discounted confidences
	// and would otherwise drag every short note out of autonomous range.
	confidence := diagnosisConfidence(suggested)
	phase, status := e.decider.Decide(confidence, encounter)

	result := &domain.CodingResult{
		EngineVersion:   Version,
		SourceText:      note,
		SuggestedCodes:  suggested,
		FinalCodes:      []domain.SuggestedCode{},
		Status:          status,
		ConfidenceScore: round2(confidence),
		Phase:           phase,
		Grouping:        grouping,
		Confidence:      breakdown,
		ProcessedAt:     e.severity.now().UTC(),
	}

	if phase == domain.PhaseAutonomous {
		result.FinalCodes = suggested
		if err := e.submitAutonomous(ctx, result, patient, encounter); err != nil {
			return nil, err
		}
	}

	e.logger.WithFields(logrus.Fields{
		"encounter_id":    encounter.ID,
		"phase":           phase,
		"status":          result.Status,
		"confidence":      result.ConfidenceScore,
		"suggested_codes": len(suggested),
	}).Info("coding run complete")
	return result, nil
}

// submitAutonomous sends the claim synchronously. The run is not SENT until
// the gateway acknowledges.
func (e *Engine) submitAutonomous(ctx context.Context, result *domain.CodingResult, patient domain.PatientMeta, encounter domain.EncounterMeta) error {
	if e.submitter == nil {
		return fmt.Errorf("autonomous phase reached with no claim submitter configured")
	}
	payload := e.claims.Build(result, patient, encounter)
	ack, err := e.submitter.SubmitClaim(ctx, payload)
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"encounter_id": encounter.ID,
			"claim_number": payload.ClaimNumber,
		}).WithError(err).Error("autonomous claim submission failed")
		return fmt.Errorf("submitting claim %s: %w", payload.ClaimNumber, err)
	}
	e.logger.WithFields(logrus.Fields{
		"encounter_id":     encounter.ID,
		"claim_number":     payload.ClaimNumber,
		"gateway_claim_id": ack.GatewayClaimID,
	}).Info("autonomous claim submitted")
	return nil
}

// extract memoizes extraction per note and encounter type. The cached slice
// is copied out so callers can filter it in place.
func (e *Engine) extract(note string, encounterType domain.EncounterType) []domain.SuggestedCode {
	key := string(encounterType) + "\x00" + note
	if cached, ok := e.extractionCache.Get(key); ok {
		out := make([]domain.SuggestedCode, len(cached))
		copy(out, cached)
		return out
	}

	codes := e.extractor.Extract(note, encounterType)
	stored := make([]domain.SuggestedCode, len(codes))
	copy(stored, codes)
	e.extractionCache.Add(key, stored)
	return codes
}

// diagnosisConfidence is the mean confidence over DIAGNOSIS-typed codes.
// The extractor guarantees at least the fallback code, so the 0.5 default
// only covers callers handing in an externally filtered slice.
func diagnosisConfidence(codes []domain.SuggestedCode) float64 {
	var sum float64
	var n int
	for _, c := range codes {
		if c.Type == domain.CodeTypeDiagnosis {
			sum += c.Confidence
			n++
		}
	}
	if n == 0 {
		return 0.5
	}
	return sum / float64(n)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
