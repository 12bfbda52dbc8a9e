package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/brainsait/drg-suite/internal/domain"
)

func fixedAssessor() *SeverityAssessor {
	return &SeverityAssessor{now: func() time.Time {
		return time.Date(2026, time.August, 26, 12, 0, 0, 0, time.UTC)
	}}
}

func TestSeverityAssessor_PatientAge(t *testing.T) {
	a := fixedAssessor()

	tests := []struct {
		name string
		dob  string
		want int
	}{
		{"iso date", "2016-03-10", 10},
		{"iso date birthday not reached", "2016-12-01", 9},
		{"rfc3339", "1950-06-15T00:00:00Z", 76},
		{"day month year", "15/06/1950", 76},
		{"missing", "", defaultPatientAge},
		{"unparsable", "not-a-date", defaultPatientAge},
		{"future date", "2030-01-01", defaultPatientAge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.PatientAge(domain.PatientMeta{DateOfBirth: tt.dob})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSeverityAssessor_SeverityOfIllness(t *testing.T) {
	a := fixedAssessor()

	tests := []struct {
		name       string
		dob        string
		complexity string
		want       int
	}{
		{"adult low complexity", "1990-05-01", "low-complexity outpatient", 1},
		{"elderly", "1950-05-01", "", 2},
		{"infant", "2026-02-01", "", 3},
		{"adult moderate complexity", "1990-05-01", "moderate-complexity", 2},
		{"adult high complexity", "1990-05-01", "high-complexity", 3},
		{"elderly high complexity", "1950-05-01", "high-complexity", 4},
		{"infant high complexity clamps at four", "2026-02-01", "high-complexity", 4},
		{"compound high complexity tag", "1990-05-01", "high-complexity inpatient", 3},
		{"compound moderate complexity tag", "1990-05-01", "moderate-complexity outpatient", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.SeverityOfIllness(
				domain.PatientMeta{DateOfBirth: tt.dob},
				domain.EncounterMeta{VisitComplexity: tt.complexity},
			)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSeverityAssessor_RiskOfMortality(t *testing.T) {
	a := fixedAssessor()

	tests := []struct {
		name          string
		soi           int
		encounterType domain.EncounterType
		want          int
	}{
		{"minimal severity floors at one", 1, domain.EncounterOutpatient, 1},
		{"rom trails soi", 3, domain.EncounterInpatient, 2},
		{"emergency raises rom", 3, domain.EncounterEmergency, 3},
		{"emergency at minimal severity", 1, domain.EncounterEmergency, 2},
		{"maximum severity emergency clamps", 4, domain.EncounterEmergency, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.RiskOfMortality(tt.soi, tt.encounterType))
		})
	}
}
