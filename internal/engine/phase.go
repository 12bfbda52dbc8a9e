package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/brainsait/drg-suite/internal/domain"
)

// PhaseDecider selects the automation level for a coding run from the
// composite confidence and the encounter context. It is stateless; thresholds
// come from configuration.
type PhaseDecider struct {
	cfg    domain.AutomationConfig
	logger *logrus.Logger
}

// NewPhaseDecider creates a decider with the given automation thresholds.
func NewPhaseDecider(cfg domain.AutomationConfig, logger *logrus.Logger) *PhaseDecider {
	return &PhaseDecider{cfg: cfg, logger: logger}
}

// Decide returns the automation phase and the result status that phase
// implies. Fully automatic submission requires both very high confidence and
// a low-complexity outpatient encounter; anything less keeps a human in the
// loop.
func (d *PhaseDecider) Decide(confidence float64, encounter domain.EncounterMeta) (domain.Phase, domain.ResultStatus) {
	var phase domain.Phase
	var status domain.ResultStatus
	switch {
	case confidence >= d.cfg.AutonomousThreshold &&
		encounter.VisitComplexity == d.cfg.LowComplexityTag &&
		encounter.EncounterType == domain.EncounterOutpatient:
		phase, status = domain.PhaseAutonomous, domain.StatusSent
	case confidence >= d.cfg.SemiAutonomousThreshold:
		phase, status = domain.PhaseSemiAutonomous, domain.StatusAutoDrop
	default:
		phase, status = domain.PhaseCAC, domain.StatusNeedsReview
	}

	d.logger.WithFields(logrus.Fields{
		"encounter_id":     encounter.ID,
		"confidence":       confidence,
		"visit_complexity": encounter.VisitComplexity,
		"encounter_type":   encounter.EncounterType,
		"phase":            phase,
	}).Debug("automation phase decided")
	return phase, status
}
