package validation

import (
	"fmt"
	"math"

	dErrors "trustgraph/pkg/domain-errors"
)

// String length limits for trust registry requests.
const (
	// MaxDIDLength bounds subject, issuer, endorser, verifier and revoker DIDs.
	MaxDIDLength = 2048

	// MaxEvidenceLength bounds free-form endorsement evidence.
	MaxEvidenceLength = 4096

	// MaxReasonLength bounds revocation reasons.
	MaxReasonLength = 1024

	// MaxQueryLength bounds the search substring.
	MaxQueryLength = 256
)

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

// CheckDIDs applies MaxDIDLength to each named DID.
func CheckDIDs(fields map[string]string) error {
	for name, value := range fields {
		if err := CheckStringLength(name, value, MaxDIDLength); err != nil {
			return err
		}
	}
	return nil
}

// CheckRange validates lo <= value <= hi. NaN never passes.
func CheckRange(fieldName string, value, lo, hi float64) error {
	if math.IsNaN(value) || value < lo || value > hi {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s must be between %g and %g", fieldName, lo, hi))
	}
	return nil
}
