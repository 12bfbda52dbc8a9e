package engine

import (
	"strings"
	"time"

	"github.com/brainsait/drg-suite/internal/domain"
)

// defaultPatientAge stands in when the date of birth is missing or unparsable.
// It keeps the age-driven adjustments neutral for an adult patient.
const defaultPatientAge = 25

// dobLayouts are the date-of-birth formats accepted from upstream EHRs.
var dobLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"02/01/2006",
}

// SeverityAssessor derives severity-of-illness and risk-of-mortality on the
// standard 1-4 ordinal scale from patient and encounter context.
type SeverityAssessor struct {
	now func() time.Time
}

// NewSeverityAssessor creates an assessor using the wall clock.
func NewSeverityAssessor() *SeverityAssessor {
	return &SeverityAssessor{now: time.Now}
}

// SeverityOfIllness scores the encounter on the 1-4 SOI scale. Age extremes
// and the complexity tag each add to the baseline of 1.
func (a *SeverityAssessor) SeverityOfIllness(patient domain.PatientMeta, encounter domain.EncounterMeta) int {
	age := a.PatientAge(patient)

	soi := 1
	switch {
	case age < 1:
		soi += 2
	case age > 65:
		soi++
	}
	// Complexity tags are compound ("high-complexity inpatient"), so match
	// on the substring, highest tier first.
	if strings.Contains(encounter.VisitComplexity, "high-complexity") {
		soi += 2
	} else if strings.Contains(encounter.VisitComplexity, "moderate-complexity") {
		soi++
	}
	return clampSeverity(soi)
}

// RiskOfMortality derives ROM from SOI. It trails SOI by one level but never
// drops below 1, and emergency presentation raises it back by one.
func (a *SeverityAssessor) RiskOfMortality(soi int, encounterType domain.EncounterType) int {
	rom := soi - 1
	if rom < 1 {
		rom = 1
	}
	if encounterType == domain.EncounterEmergency {
		rom++
	}
	return clampSeverity(rom)
}

// PatientAge computes the patient's age in completed years. A missing or
// unparsable date of birth yields defaultPatientAge.
func (a *SeverityAssessor) PatientAge(patient domain.PatientMeta) int {
	if patient.DateOfBirth == "" {
		return defaultPatientAge
	}
	var dob time.Time
	var parsed bool
	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, patient.DateOfBirth); err == nil {
			dob = t
			parsed = true
			break
		}
	}
	if !parsed {
		return defaultPatientAge
	}

	now := a.now().UTC()
	age := now.Year() - dob.Year()
	// Not yet had this year's birthday.
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		return defaultPatientAge
	}
	return age
}

func clampSeverity(v int) int {
	if v < 1 {
		return 1
	}
	if v > 4 {
		return 4
	}
	return v
}
