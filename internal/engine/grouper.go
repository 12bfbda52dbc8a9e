package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/brainsait/drg-suite/internal/domain"
)

const (
	// pediatricModifier scales the case-mix index for inpatient pediatric
	// stays.
	pediatricModifier = 1.15
	pediatricAgeLimit = 18

	// severityCMIStep is the per-SOI-level uplift applied to the base CMI.
	severityCMIStep = 0.25
)

// Grouper assigns the payment grouping for an encounter: APR-DRG for
// inpatient stays, EAPG for outpatient and emergency visits.
type Grouper struct {
	catalog  domain.TermCatalog
	severity *SeverityAssessor
	logger   *logrus.Logger
}

// NewGrouper creates a grouper over the given catalog.
func NewGrouper(cat domain.TermCatalog, severity *SeverityAssessor, logger *logrus.Logger) *Grouper {
	return &Grouper{catalog: cat, severity: severity, logger: logger}
}

// Group selects the grouping for the primary diagnosis, which is the first
// diagnosis code in extraction order. It returns nil when no diagnosis code
// is present or the primary diagnosis has no grouping in the catalog.
func (g *Grouper) Group(codes []domain.SuggestedCode, patient domain.PatientMeta, encounter domain.EncounterMeta) *domain.Grouping {
	primary, ok := primaryDiagnosis(codes)
	if !ok {
		g.logger.WithField("encounter_id", encounter.ID).Debug("no diagnosis code, skipping grouping")
		return nil
	}

	entry, ok := g.catalog.LookupDiagnosisCode(primary.Code)
	if !ok {
		g.logger.WithFields(logrus.Fields{
			"encounter_id":   encounter.ID,
			"diagnosis_code": primary.Code,
		}).Warn("primary diagnosis has no grouping entry")
		return nil
	}

	groupingType := domain.GroupingOutpatient
	binding := entry.Outpatient
	if encounter.EncounterType == domain.EncounterInpatient {
		groupingType = domain.GroupingInpatient
		binding = entry.Inpatient
	}
	if binding.Code == "" {
		return nil
	}

	age := g.severity.PatientAge(patient)
	soi := g.severity.SeverityOfIllness(patient, encounter)
	rom := g.severity.RiskOfMortality(soi, encounter.EncounterType)

	// The catalog's SOI range is advisory: the CMI formula always uses the
	// assessed SOI, but an outlier is worth surfacing for catalog review.
	if r := binding.SOIRange; r != [2]int{} && (soi < r[0] || soi > r[1]) {
		g.logger.WithFields(logrus.Fields{
			"encounter_id":  encounter.ID,
			"grouping_code": binding.Code,
			"soi":           soi,
			"soi_range":     r,
		}).Warn("assessed SOI outside the grouping's documented range")
	}

	cmi := binding.BaseCMI
	pediatric := age < pediatricAgeLimit && encounter.EncounterType == domain.EncounterInpatient
	if pediatric {
		cmi *= pediatricModifier
	}
	cmi *= 1 + float64(soi-1)*severityCMIStep

	grouping := &domain.Grouping{
		Type:              groupingType,
		Code:              binding.Code,
		Description:       binding.Description,
		SeverityOfIllness: soi,
		RiskOfMortality:   rom,
		CaseMixIndex:      cmi,
		PediatricAdjusted: pediatric,
	}
	g.logger.WithFields(logrus.Fields{
		"encounter_id":   encounter.ID,
		"grouping_type":  groupingType,
		"grouping_code":  binding.Code,
		"soi":            soi,
		"rom":            rom,
		"case_mix_index": cmi,
	}).Info("grouping assigned")
	return grouping
}

// primaryDiagnosis returns the first DIAGNOSIS code in extraction order.
func primaryDiagnosis(codes []domain.SuggestedCode) (domain.SuggestedCode, bool) {
	for _, c := range codes {
		if c.Type == domain.CodeTypeDiagnosis {
			return c, true
		}
	}
	return domain.SuggestedCode{}, false
}
