// Package domain contains core business entities and types for clinical
// coding automation: diagnosis/procedure code suggestion, severity-adjusted
// payment grouping (APR-DRG / EAPG) and the three-phase automation decision.
package domain

import (
	"errors"
)

// CodeType categorizes a suggested code.
type CodeType string

const (
	CodeTypeDiagnosis          CodeType = "DIAGNOSIS"
	CodeTypeProcedure          CodeType = "PROCEDURE"
	CodeTypeGroupingInpatient  CodeType = "GROUPING_INPATIENT"
	CodeTypeGroupingOutpatient CodeType = "GROUPING_OUTPATIENT"
)

// EncounterType is the care setting of the encounter being coded.
type EncounterType string

const (
	EncounterInpatient  EncounterType = "INPATIENT"
	EncounterOutpatient EncounterType = "OUTPATIENT"
	EncounterEmergency  EncounterType = "EMERGENCY"
)

// Phase is the automation level selected for a coding run.
type Phase string

const (
	PhaseAutonomous     Phase = "AUTONOMOUS"
	PhaseSemiAutonomous Phase = "SEMI_AUTONOMOUS"
	PhaseCAC            Phase = "CAC"
)

// ResultStatus is the disposition of a coding result.
type ResultStatus string

const (
	StatusSent        ResultStatus = "SENT"
	StatusAutoDrop    ResultStatus = "AUTO_DROP"
	StatusNeedsReview ResultStatus = "NEEDS_REVIEW"
)

// GroupingType distinguishes the inpatient (APR-DRG) and outpatient (EAPG)
// payment grouping families.
type GroupingType string

const (
	GroupingInpatient  GroupingType = "INPATIENT"
	GroupingOutpatient GroupingType = "OUTPATIENT"
)

// IDType identifies the kind of Saudi patient identifier.
type IDType string

const (
	IDTypeNational IDType = "NATIONAL_ID"
	IDTypeIqama    IDType = "IQAMA_ID"
)

// Validation errors for coding data integrity.
var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidCodeType      = errors.New("invalid code type")
	ErrInvalidEncounterType = errors.New("invalid encounter type")
	ErrInvalidPhase         = errors.New("invalid automation phase")
	ErrInvalidStatus        = errors.New("invalid result status")
	ErrInvalidSeverity      = errors.New("severity level out of range")
)

// IsValid reports whether the code type is one of the known categories.
func (ct CodeType) IsValid() bool {
	switch ct {
	case CodeTypeDiagnosis, CodeTypeProcedure, CodeTypeGroupingInpatient, CodeTypeGroupingOutpatient:
		return true
	default:
		return false
	}
}

// String returns the string representation of the code type.
func (ct CodeType) String() string {
	return string(ct)
}

// IsGrouping reports whether the code type is a payment-grouping code.
func (ct CodeType) IsGrouping() bool {
	return ct == CodeTypeGroupingInpatient || ct == CodeTypeGroupingOutpatient
}

// IsValid reports whether the encounter type is known. Upstream systems send
// arbitrary strings; unknown encounter types are treated as outpatient-like
// by the engine, never as an error.
func (et EncounterType) IsValid() bool {
	switch et {
	case EncounterInpatient, EncounterOutpatient, EncounterEmergency:
		return true
	default:
		return false
	}
}

// String returns the string representation of the encounter type.
func (et EncounterType) String() string {
	return string(et)
}

// IsValid reports whether the phase is one of the three automation levels.
func (p Phase) IsValid() bool {
	switch p {
	case PhaseAutonomous, PhaseSemiAutonomous, PhaseCAC:
		return true
	default:
		return false
	}
}

// String returns the string representation of the phase.
func (p Phase) String() string {
	return string(p)
}

// RequiresHumanReview reports whether a coder must confirm the result before
// any claim leaves the system. Only the AUTONOMOUS phase submits on its own.
func (p Phase) RequiresHumanReview() bool {
	return p != PhaseAutonomous
}

// LogFields returns structured logging fields for audit trails.
func (p Phase) LogFields() map[string]any {
	return map[string]any{
		"phase":           string(p),
		"is_valid":        p.IsValid(),
		"requires_review": p.RequiresHumanReview(),
	}
}

// IsValid reports whether the result status is known.
func (rs ResultStatus) IsValid() bool {
	switch rs {
	case StatusSent, StatusAutoDrop, StatusNeedsReview:
		return true
	default:
		return false
	}
}

// String returns the string representation of the result status.
func (rs ResultStatus) String() string {
	return string(rs)
}

// IsValid reports whether the grouping type is known.
func (gt GroupingType) IsValid() bool {
	switch gt {
	case GroupingInpatient, GroupingOutpatient:
		return true
	default:
		return false
	}
}

// String returns the string representation of the grouping type.
func (gt GroupingType) String() string {
	return string(gt)
}

// IsValid reports whether the ID type is known.
func (it IDType) IsValid() bool {
	switch it {
	case IDTypeNational, IDTypeIqama:
		return true
	default:
		return false
	}
}

// String returns the string representation of the ID type.
func (it IDType) String() string {
	return string(it)
}
