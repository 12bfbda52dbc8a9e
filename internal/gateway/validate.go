package gateway

import (
	"fmt"
	"regexp"

	"github.com/brainsait/drg-suite/internal/domain"
)

var crNumberPattern = regexp.MustCompile(`^\d{10}$`)

// SaudiIDValidator validates Saudi National IDs and Iqama IDs. Both are ten
// digits with a checksum; the leading digit distinguishes the kinds.
type SaudiIDValidator struct{}

// ValidateNationalID reports whether the value is a well-formed Saudi
// National ID: ten digits starting with 1 and a valid checksum.
func (SaudiIDValidator) ValidateNationalID(id string) bool {
	return validID(id, '1')
}

// ValidateIqamaID reports whether the value is a well-formed Iqama ID: ten
// digits starting with 2 and a valid checksum.
func (SaudiIDValidator) ValidateIqamaID(id string) bool {
	return validID(id, '2')
}

// DetermineIDType classifies an identifier, returning false when it is
// neither a valid National ID nor a valid Iqama ID.
func (v SaudiIDValidator) DetermineIDType(id string) (domain.IDType, bool) {
	switch {
	case v.ValidateNationalID(id):
		return domain.IDTypeNational, true
	case v.ValidateIqamaID(id):
		return domain.IDTypeIqama, true
	default:
		return "", false
	}
}

func validID(id string, prefix byte) bool {
	if len(id) != 10 || id[0] != prefix {
		return false
	}
	return checksumValid(id)
}

// checksumValid applies the digit-sum check: the sum of all ten digits must
// be divisible by ten. Any non-digit fails.
func checksumValid(id string) bool {
	var sum int
	for i := 0; i < len(id); i++ {
		c := id[i]
		if c < '0' || c > '9' {
			return false
		}
		sum += int(c - '0')
	}
	return sum%10 == 0
}

// ValidateClaimPayload checks a claim against the payer platform's schema
// rules before transmission. It returns every violation found, empty when
// the claim is acceptable.
func ValidateClaimPayload(claim *domain.ClaimPayload) []string {
	var errs []string
	var ids SaudiIDValidator

	if claim.ClaimNumber == "" {
		errs = append(errs, "Missing required field: claimNumber")
	}

	if claim.Patient.ID == "" {
		errs = append(errs, "Patient ID is required")
	}
	if claim.Patient.NationalID == "" && claim.Patient.IqamaID == "" {
		errs = append(errs, "Either National ID or Iqama ID is required")
	}
	if claim.Patient.NationalID != "" && !ids.ValidateNationalID(claim.Patient.NationalID) {
		errs = append(errs, fmt.Sprintf("Invalid National ID format: %s", claim.Patient.NationalID))
	}
	if claim.Patient.IqamaID != "" && !ids.ValidateIqamaID(claim.Patient.IqamaID) {
		errs = append(errs, fmt.Sprintf("Invalid Iqama ID format: %s", claim.Patient.IqamaID))
	}

	if claim.Provider.CRNumber == "" {
		errs = append(errs, "Provider CR Number is required")
	} else if !crNumberPattern.MatchString(claim.Provider.CRNumber) {
		errs = append(errs, fmt.Sprintf("Invalid CR Number format: %s (must be 10 digits)", claim.Provider.CRNumber))
	}

	if len(claim.Items) == 0 {
		errs = append(errs, "Items must be a non-empty list")
	}
	for i, item := range claim.Items {
		if item.ServiceCode == "" {
			errs = append(errs, fmt.Sprintf("Item %d: serviceCode is required", i))
		}
		if item.Description == "" {
			errs = append(errs, fmt.Sprintf("Item %d: description is required", i))
		}
	}

	if claim.Currency != "SAR" {
		errs = append(errs, "Currency must be 'SAR' for Saudi Arabia")
	}
	if claim.Total <= 0 {
		errs = append(errs, "Total amount must be positive")
	}

	return errs
}
