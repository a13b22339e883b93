package models

import (
	"slices"
	"time"

	dErrors "trustgraph/pkg/domain-errors"
)

// Trust registry thresholds and defaults.
const (
	MinTrustLevel       = 0
	MaxTrustLevel       = 100
	RevocationThreshold = 70 // revoker score needed to revoke
	RootTrustThreshold  = 90 // score at which a DID counts as a trusted root
	DefaultMinimumScore = 50 // verify() default
	DefaultMaxDepth     = 5  // chain building default
	AnchorTrustScore    = 100
)

// TrustRecord is the registry's view of one subject DID.
//
// TrustScore is derived: after creation it is only ever the Score Calculator's
// output over Endorsements. Endorsements are append-only and kept in
// chronological insertion order. Records are never deleted; revocation is a
// status transition that keeps every endorsement.
type TrustRecord struct {
	ID           string        `json:"id"`
	Issuer       DID           `json:"issuer"`
	Subject      DID           `json:"subject"`
	TrustScore   int           `json:"trust_score"`
	Endorsements []Endorsement `json:"endorsements"`
	Created      time.Time     `json:"created"`
	Updated      time.Time     `json:"updated"`
	Status       Status        `json:"status"`

	RevokedBy        DID        `json:"revoked_by,omitempty"`
	RevocationReason string     `json:"revocation_reason,omitempty"`
	RevokedAt        *time.Time `json:"revoked_at,omitempty"`
}

// NewTrustRecord creates an active record with no endorsements. The initial
// score is taken as given and is not recomputed until the first endorsement.
func NewTrustRecord(id string, issuer, subject DID, initialScore int, now time.Time) (*TrustRecord, error) {
	if id == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "record id required")
	}
	if issuer.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "issuer is required")
	}
	if subject.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "subject is required")
	}
	if !ValidTrustLevel(float64(initialScore)) {
		return nil, dErrors.New(dErrors.CodeValidation, "initial trust score must be between 0 and 100")
	}
	return &TrustRecord{
		ID:           id,
		Issuer:       issuer,
		Subject:      subject,
		TrustScore:   initialScore,
		Endorsements: []Endorsement{},
		Created:      now,
		Updated:      now,
		Status:       StatusActive,
	}, nil
}

// IsActive reports whether the record is in the active state.
func (r *TrustRecord) IsActive() bool {
	return r.Status == StatusActive
}

// Endorsers returns the endorser of every endorsement, in record order,
// including repeats. These are the record's backward graph neighbours.
func (r *TrustRecord) Endorsers() []DID {
	out := make([]DID, 0, len(r.Endorsements))
	for _, e := range r.Endorsements {
		out = append(out, e.Endorser)
	}
	return out
}

// Revoke transitions the record to revoked and stamps the revocation metadata.
func (r *TrustRecord) Revoke(revoker DID, reason string, now time.Time) {
	r.Status = StatusRevoked
	r.RevokedBy = revoker
	r.RevocationReason = reason
	at := now
	r.RevokedAt = &at
	r.Updated = now
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (r *TrustRecord) Clone() *TrustRecord {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Endorsements = slices.Clone(r.Endorsements)
	if cp.Endorsements == nil {
		cp.Endorsements = []Endorsement{}
	}
	if r.RevokedAt != nil {
		at := *r.RevokedAt
		cp.RevokedAt = &at
	}
	return &cp
}

// Endorsement is one trust assertion from Endorser to Subject. It is never
// mutated after creation; Timestamp drives recency weighting.
type Endorsement struct {
	ID         string    `json:"id"`
	Endorser   DID       `json:"endorser"`
	Subject    DID       `json:"subject"`
	TrustLevel float64   `json:"trust_level"`
	Timestamp  time.Time `json:"timestamp"`
	Evidence   string    `json:"evidence,omitempty"`
	Signature  string    `json:"signature"`
}

// NewEndorsement validates the trust level before anything touches a store.
func NewEndorsement(id string, endorser, subject DID, level float64, evidence string, now time.Time) (*Endorsement, error) {
	if id == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "endorsement id required")
	}
	if endorser.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "endorser is required")
	}
	if subject.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "subject is required")
	}
	if !ValidTrustLevel(level) {
		return nil, dErrors.New(dErrors.CodeValidation, "trust_level must be between 0 and 100")
	}
	return &Endorsement{
		ID:         id,
		Endorser:   endorser,
		Subject:    subject,
		TrustLevel: level,
		Timestamp:  now,
		Evidence:   evidence,
	}, nil
}

// ValidTrustLevel reports whether level lies in [0,100]. NaN is rejected.
func ValidTrustLevel(level float64) bool {
	return level >= MinTrustLevel && level <= MaxTrustLevel
}
