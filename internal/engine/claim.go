package engine

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/brainsait/drg-suite/internal/domain"
)

// baseClaimAmount is the flat per-claim amount in SAR before case-mix
// adjustment.
const (
	baseClaimAmount = 1000.00
	claimCurrency   = "SAR"
)

// ClaimBuilder assembles the payer-gateway submission payload from a finished
// coding run.
type ClaimBuilder struct{}

// NewClaimBuilder creates a claim builder.
func NewClaimBuilder() *ClaimBuilder {
	return &ClaimBuilder{}
}

// Build constructs the claim payload for the AUTONOMOUS submission path. The
// claim total is the base amount scaled by the case-mix index when a grouping
// was assigned, and the patient block carries the declared national or Iqama
// identifier when present.
func (b *ClaimBuilder) Build(result *domain.CodingResult, patient domain.PatientMeta, encounter domain.EncounterMeta) *domain.ClaimPayload {
	items := make([]domain.ClaimItem, 0, len(result.FinalCodes))
	for _, c := range result.FinalCodes {
		items = append(items, domain.ClaimItem{
			ServiceCode: c.Code,
			Description: c.Description,
		})
	}

	total := baseClaimAmount
	if result.Grouping != nil {
		total = baseClaimAmount * result.Grouping.CaseMixIndex
	}

	claimNumber := fmt.Sprintf("CLAIM-%s", encounter.ID)
	if encounter.ID == "" {
		claimNumber = fmt.Sprintf("CLAIM-%s", uuid.NewString())
	}

	return &domain.ClaimPayload{
		ClaimNumber: claimNumber,
		Patient:     buildClaimPatient(patient, encounter),
		Provider:    domain.ClaimProvider{CRNumber: encounter.ProviderCR},
		Items:       items,
		Total:       total,
		Currency:    claimCurrency,
	}
}

// buildClaimPatient prefers the declared national or Iqama identifier over
// the internal patient ID so the payer can match the member directly.
func buildClaimPatient(patient domain.PatientMeta, encounter domain.EncounterMeta) domain.ClaimPatient {
	cp := domain.ClaimPatient{
		ID:         encounter.PatientID,
		NationalID: patient.NationalID,
		IqamaID:    patient.IqamaID,
		IDType:     patient.IDType,
	}
	switch {
	case patient.NationalID != "":
		cp.ID = patient.NationalID
		if cp.IDType == "" {
			cp.IDType = domain.IDTypeNational
		}
	case patient.IqamaID != "":
		cp.ID = patient.IqamaID
		if cp.IDType == "" {
			cp.IDType = domain.IDTypeIqama
		}
	}
	return cp
}
