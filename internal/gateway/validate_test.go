package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brainsait/drg-suite/internal/domain"
)

func TestSaudiIDValidator_NationalID(t *testing.T) {
	var v SaudiIDValidator

	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"valid checksum", "1012345671", true},
		{"valid all zeros after prefix digit sum", "1000000009", true},
		{"checksum failure", "1012345678", false},
		{"iqama prefix", "2012345670", false},
		{"wrong prefix", "3012345675", false},
		{"too short", "101234567", false},
		{"too long", "10123456712", false},
		{"non-digit", "10123456a1", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.ValidateNationalID(tt.id))
		})
	}
}

func TestSaudiIDValidator_IqamaID(t *testing.T) {
	var v SaudiIDValidator

	assert.True(t, v.ValidateIqamaID("2012345670"))
	assert.False(t, v.ValidateIqamaID("1012345671"), "national prefix is not an iqama")
	assert.False(t, v.ValidateIqamaID("2012345679"))
}

func TestSaudiIDValidator_DetermineIDType(t *testing.T) {
	var v SaudiIDValidator

	idType, ok := v.DetermineIDType("1012345671")
	assert.True(t, ok)
	assert.Equal(t, domain.IDTypeNational, idType)

	idType, ok = v.DetermineIDType("2012345670")
	assert.True(t, ok)
	assert.Equal(t, domain.IDTypeIqama, idType)

	_, ok = v.DetermineIDType("9999999999")
	assert.False(t, ok)
}

func validClaim() *domain.ClaimPayload {
	return &domain.ClaimPayload{
		ClaimNumber: "CLAIM-ENC-1",
		Patient: domain.ClaimPatient{
			ID:         "1012345671",
			NationalID: "1012345671",
			IDType:     domain.IDTypeNational,
		},
		Provider: domain.ClaimProvider{CRNumber: "1010101010"},
		Items: []domain.ClaimItem{
			{ServiceCode: "I21.9", Description: "Acute myocardial infarction, unspecified"},
		},
		Total:    1100.00,
		Currency: "SAR",
	}
}

func TestValidateClaimPayload(t *testing.T) {
	t.Run("valid claim has no violations", func(t *testing.T) {
		assert.Empty(t, ValidateClaimPayload(validClaim()))
	})

	tests := []struct {
		name    string
		mutate  func(*domain.ClaimPayload)
		wantErr string
	}{
		{
			name:    "missing claim number",
			mutate:  func(c *domain.ClaimPayload) { c.ClaimNumber = "" },
			wantErr: "Missing required field: claimNumber",
		},
		{
			name:    "missing patient id",
			mutate:  func(c *domain.ClaimPayload) { c.Patient.ID = "" },
			wantErr: "Patient ID is required",
		},
		{
			name: "no national or iqama id",
			mutate: func(c *domain.ClaimPayload) {
				c.Patient.NationalID = ""
				c.Patient.IqamaID = ""
			},
			wantErr: "Either National ID or Iqama ID is required",
		},
		{
			name:    "invalid national id",
			mutate:  func(c *domain.ClaimPayload) { c.Patient.NationalID = "1012345678" },
			wantErr: "Invalid National ID format: 1012345678",
		},
		{
			name:    "invalid iqama id",
			mutate:  func(c *domain.ClaimPayload) { c.Patient.IqamaID = "2012345679" },
			wantErr: "Invalid Iqama ID format: 2012345679",
		},
		{
			name:    "missing provider cr",
			mutate:  func(c *domain.ClaimPayload) { c.Provider.CRNumber = "" },
			wantErr: "Provider CR Number is required",
		},
		{
			name:    "malformed provider cr",
			mutate:  func(c *domain.ClaimPayload) { c.Provider.CRNumber = "12345" },
			wantErr: "Invalid CR Number format: 12345 (must be 10 digits)",
		},
		{
			name:    "no items",
			mutate:  func(c *domain.ClaimPayload) { c.Items = nil },
			wantErr: "Items must be a non-empty list",
		},
		{
			name:    "item missing service code",
			mutate:  func(c *domain.ClaimPayload) { c.Items[0].ServiceCode = "" },
			wantErr: "Item 0: serviceCode is required",
		},
		{
			name:    "item missing description",
			mutate:  func(c *domain.ClaimPayload) { c.Items[0].Description = "" },
			wantErr: "Item 0: description is required",
		},
		{
			name:    "wrong currency",
			mutate:  func(c *domain.ClaimPayload) { c.Currency = "USD" },
			wantErr: "Currency must be 'SAR' for Saudi Arabia",
		},
		{
			name:    "non-positive total",
			mutate:  func(c *domain.ClaimPayload) { c.Total = 0 },
			wantErr: "Total amount must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claim := validClaim()
			tt.mutate(claim)
			assert.Contains(t, ValidateClaimPayload(claim), tt.wantErr)
		})
	}
}
