package domain

import (
	"errors"
	"fmt"
	"time"
)

// SuggestedCode is a single code proposed by the engine for an encounter.
// Within one engine run codes are unique by Code value.
type SuggestedCode struct {
	Code        string   `json:"code"`
	Description string   `json:"description"`
	Confidence  float64  `json:"confidence"`
	Type        CodeType `json:"code_type"`

	// Grouping-only attributes; zero for diagnosis and procedure codes.
	GroupingNumber    string  `json:"grouping_number,omitempty"`
	SeverityLevel     int     `json:"severity_level,omitempty"`
	CaseMixIndex      float64 `json:"case_mix_index,omitempty"`
	PediatricModifier bool    `json:"pediatric_modifier,omitempty"`
}

// Validate ensures the suggested code is safe to hand to downstream billing.
func (sc *SuggestedCode) Validate() error {
	if sc.Code == "" {
		return fmt.Errorf("suggested code validation: %w", errors.New("code is required"))
	}
	if sc.Confidence < 0 || sc.Confidence > 1 {
		return fmt.Errorf("suggested code validation: confidence %.3f out of [0,1]", sc.Confidence)
	}
	if !sc.Type.IsValid() {
		return fmt.Errorf("suggested code validation: %w", ErrInvalidCodeType)
	}
	if sc.SeverityLevel != 0 && (sc.SeverityLevel < 1 || sc.SeverityLevel > 4) {
		return fmt.Errorf("suggested code validation: %w", ErrInvalidSeverity)
	}
	if sc.CaseMixIndex < 0 {
		return fmt.Errorf("suggested code validation: case-mix index must be positive")
	}
	return nil
}

// ConfidenceBreakdown reports the composite confidence score and every factor
// that went into it. All fields are in [0,1]. The auxiliary factors are
// informational only and excluded from the weighted sum.
type ConfidenceBreakdown struct {
	Overall            float64 `json:"overall"`
	Completeness       float64 `json:"completeness"`
	Specificity        float64 `json:"specificity"`
	HistoricalAccuracy float64 `json:"historical_accuracy"`
	CrossValidation    float64 `json:"cross_validation"`

	Auxiliary map[string]float64 `json:"auxiliary_factors"`
}

// Auxiliary factor names reported in ConfidenceBreakdown.Auxiliary.
const (
	FactorClinicalIndicators = "clinical_indicators"
	FactorTerminologyMatch   = "terminology_match"
	FactorContextAnalysis    = "context_analysis"
	FactorPhysicianPatterns  = "physician_patterns"
)

// Grouping is the selected payment grouping for an encounter: an APR-DRG for
// inpatient stays or an EAPG for outpatient visits, with severity-of-illness,
// risk-of-mortality and the severity-adjusted case-mix index.
type Grouping struct {
	Type              GroupingType `json:"type"`
	Code              string       `json:"code"`
	Description       string       `json:"description"`
	SeverityOfIllness int          `json:"soi"`
	RiskOfMortality   int          `json:"rom"`
	CaseMixIndex      float64      `json:"case_mix_index"`
	PediatricAdjusted bool         `json:"pediatric_adjusted"`
}

// Validate checks the grouping invariants: SOI and ROM on the 1-4 ordinal
// scale, and a positive case-mix index.
func (g *Grouping) Validate() error {
	if !g.Type.IsValid() {
		return fmt.Errorf("grouping validation: invalid type %q", g.Type)
	}
	if g.Code == "" {
		return fmt.Errorf("grouping validation: %w", errors.New("code is required"))
	}
	if g.SeverityOfIllness < 1 || g.SeverityOfIllness > 4 {
		return fmt.Errorf("grouping validation: SOI %d: %w", g.SeverityOfIllness, ErrInvalidSeverity)
	}
	if g.RiskOfMortality < 1 || g.RiskOfMortality > 4 {
		return fmt.Errorf("grouping validation: ROM %d: %w", g.RiskOfMortality, ErrInvalidSeverity)
	}
	if g.CaseMixIndex <= 0 {
		return fmt.Errorf("grouping validation: case-mix index must be positive, got %.3f", g.CaseMixIndex)
	}
	return nil
}

// CodingResult is the complete outcome of one coding run. It is created fresh
// per call and owned by the caller; the engine holds no result state.
type CodingResult struct {
	EngineVersion   string               `json:"engine_version"`
	SourceText      string               `json:"source_text"`
	SuggestedCodes  []SuggestedCode      `json:"suggested_codes"`
	FinalCodes      []SuggestedCode      `json:"final_codes"`
	Status          ResultStatus         `json:"status"`
	ConfidenceScore float64              `json:"confidence_score"`
	Phase           Phase                `json:"phase"`
	Grouping        *Grouping            `json:"grouping,omitempty"`
	Confidence      *ConfidenceBreakdown `json:"confidence_breakdown,omitempty"`
	ProcessedAt     time.Time            `json:"processed_at"`
}

// EncounterMeta is the encounter context supplied by the upstream EHR.
type EncounterMeta struct {
	ID              string        `json:"id"`
	PatientID       string        `json:"patient_id"`
	ProviderCR      string        `json:"provider_cr"`
	VisitComplexity string        `json:"visit_complexity"`
	EncounterType   EncounterType `json:"encounter_type"`
}

// PatientMeta is the patient context supplied by the upstream EHR. All fields
// are optional; a missing or unparsable date of birth is not an error.
type PatientMeta struct {
	DateOfBirth string `json:"date_of_birth,omitempty"`
	NationalID  string `json:"national_id,omitempty"`
	IqamaID     string `json:"iqama_id,omitempty"`
	IDType      IDType `json:"id_type,omitempty"`
}

// DiagnosisBinding ties a clinical term to its diagnosis code.
type DiagnosisBinding struct {
	Code           string  `json:"code" mapstructure:"code"`
	Description    string  `json:"description" mapstructure:"description"`
	BaseConfidence float64 `json:"base_confidence" mapstructure:"base_confidence"`
}

// GroupingBinding ties a clinical term to one payment-grouping branch.
type GroupingBinding struct {
	Code        string  `json:"code" mapstructure:"code"`
	Description string  `json:"description" mapstructure:"description"`
	BaseCMI     float64 `json:"base_cmi" mapstructure:"base_cmi"`
	SOIRange    [2]int  `json:"soi_range,omitempty" mapstructure:"soi_range"`
}

// TermEntry is one immutable knowledge-base entry: a canonical clinical term,
// its synonyms (including other-language variants), and the code bundle it
// resolves to. Entries are built once at catalog construction and never
// mutated afterwards.
type TermEntry struct {
	Term     string   `json:"term" mapstructure:"term"`
	Synonyms []string `json:"synonyms" mapstructure:"synonyms"`

	Diagnosis  DiagnosisBinding `json:"diagnosis" mapstructure:"diagnosis"`
	Inpatient  GroupingBinding  `json:"inpatient" mapstructure:"inpatient"`
	Outpatient GroupingBinding  `json:"outpatient" mapstructure:"outpatient"`
}

// ProcedureEntry is one immutable procedure-catalog entry.
type ProcedureEntry struct {
	Term           string   `json:"term" mapstructure:"term"`
	Synonyms       []string `json:"synonyms" mapstructure:"synonyms"`
	Code           string   `json:"code" mapstructure:"code"`
	Description    string   `json:"description" mapstructure:"description"`
	BaseConfidence float64  `json:"base_confidence" mapstructure:"base_confidence"`
}

// ClaimItem is one billable line on a claim.
type ClaimItem struct {
	ServiceCode string `json:"serviceCode"`
	Description string `json:"description"`
}

// ClaimPatient carries patient identity on a claim, preferring the declared
// national/Iqama identifier over the internal patient ID.
type ClaimPatient struct {
	ID         string `json:"id"`
	NationalID string `json:"nationalId,omitempty"`
	IqamaID    string `json:"iqamaId,omitempty"`
	IDType     IDType `json:"idType,omitempty"`
}

// ClaimProvider carries provider identity on a claim.
type ClaimProvider struct {
	CRNumber string `json:"cr_number"`
}

// ClaimPayload is the submission record sent to the payer gateway from the
// AUTONOMOUS path.
type ClaimPayload struct {
	ClaimNumber string        `json:"claimNumber"`
	Patient     ClaimPatient  `json:"patient"`
	Provider    ClaimProvider `json:"provider"`
	Items       []ClaimItem   `json:"items"`
	Total       float64       `json:"total"`
	Currency    string        `json:"currency"`
}

// ClaimAck is the payer gateway's acknowledgement of a submitted claim.
type ClaimAck struct {
	Status         string `json:"status"`
	GatewayClaimID string `json:"nphiesClaimId"`
}
