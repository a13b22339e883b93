package models

import (
	"strings"

	dErrors "trustgraph/pkg/domain-errors"
)

// DID is a decentralized identifier. The registry treats it as an opaque
// string: subject, issuer, endorser, revoker and verifier are all DIDs.
type DID string

// MaxDIDLength bounds identifiers accepted from callers.
const MaxDIDLength = 2048

// ParseDID trims the input and rejects empty or oversized values.
func ParseDID(raw string) (DID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", dErrors.New(dErrors.CodeValidation, "did is required")
	}
	if len(trimmed) > MaxDIDLength {
		return "", dErrors.New(dErrors.CodeValidation, "did too long")
	}
	return DID(trimmed), nil
}

func (d DID) String() string { return string(d) }

// IsZero reports whether the DID is empty.
func (d DID) IsZero() bool { return d == "" }

// IsWellFormed reports whether the DID follows did:<method>:<method-specific-id>.
// The registry does not require it; it is surfaced for callers that care.
func (d DID) IsWellFormed() bool {
	parts := strings.SplitN(string(d), ":", 3)
	if len(parts) != 3 || parts[0] != "did" || parts[2] == "" {
		return false
	}
	for _, r := range parts[1] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return parts[1] != ""
}

// Method returns the DID method, or "" when the DID is not well formed.
func (d DID) Method() string {
	if !d.IsWellFormed() {
		return ""
	}
	return strings.SplitN(string(d), ":", 3)[1]
}
