package handler

import (
	"strings"

	"trustgraph/internal/trust/models"
	dErrors "trustgraph/pkg/domain-errors"
	"trustgraph/pkg/platform/validation"
)

// RegisterRequest creates a trust record for a subject.
type RegisterRequest struct {
	Issuer            string `json:"issuer"`
	Subject           string `json:"subject"`
	InitialTrustScore int    `json:"initial_trust_score"`
}

// Normalize trims whitespace from the DIDs.
func (r *RegisterRequest) Normalize() {
	if r == nil {
		return
	}
	r.Issuer = strings.TrimSpace(r.Issuer)
	r.Subject = strings.TrimSpace(r.Subject)
}

// Validate checks required fields.
func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Issuer == "" || r.Subject == "" {
		return dErrors.New(dErrors.CodeValidation, "issuer and subject are required")
	}
	if err := validation.CheckDIDs(map[string]string{"issuer": r.Issuer, "subject": r.Subject}); err != nil {
		return err
	}
	return validation.CheckRange("initial_trust_score", float64(r.InitialTrustScore), models.MinTrustLevel, models.MaxTrustLevel)
}

// EndorseRequest records an endorsement. TrustLevel is a pointer so that a
// missing level is distinguishable from zero.
type EndorseRequest struct {
	Endorser   string   `json:"endorser"`
	Subject    string   `json:"subject"`
	TrustLevel *float64 `json:"trust_level"`
	Evidence   string   `json:"evidence,omitempty"`
}

func (r *EndorseRequest) Normalize() {
	if r == nil {
		return
	}
	r.Endorser = strings.TrimSpace(r.Endorser)
	r.Subject = strings.TrimSpace(r.Subject)
	r.Evidence = strings.TrimSpace(r.Evidence)
}

func (r *EndorseRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Endorser == "" || r.Subject == "" || r.TrustLevel == nil {
		return dErrors.New(dErrors.CodeValidation, "endorser, subject and trust_level are required")
	}
	if err := validation.CheckDIDs(map[string]string{"endorser": r.Endorser, "subject": r.Subject}); err != nil {
		return err
	}
	if err := validation.CheckStringLength("evidence", r.Evidence, validation.MaxEvidenceLength); err != nil {
		return err
	}
	return validation.CheckRange("trust_level", *r.TrustLevel, models.MinTrustLevel, models.MaxTrustLevel)
}

// VerifyRequest asks whether verifier may rely on subject.
type VerifyRequest struct {
	Subject      string   `json:"subject"`
	Verifier     string   `json:"verifier"`
	MinimumScore *float64 `json:"minimum_score,omitempty"`
}

// Normalize trims DIDs and defaults minimum_score to 50.
func (r *VerifyRequest) Normalize() {
	if r == nil {
		return
	}
	r.Subject = strings.TrimSpace(r.Subject)
	r.Verifier = strings.TrimSpace(r.Verifier)
	if r.MinimumScore == nil {
		def := float64(models.DefaultMinimumScore)
		r.MinimumScore = &def
	}
}

func (r *VerifyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Subject == "" || r.Verifier == "" {
		return dErrors.New(dErrors.CodeValidation, "subject and verifier are required")
	}
	if err := validation.CheckDIDs(map[string]string{"subject": r.Subject, "verifier": r.Verifier}); err != nil {
		return err
	}
	if r.MinimumScore == nil {
		return nil
	}
	return validation.CheckRange("minimum_score", *r.MinimumScore, models.MinTrustLevel, models.MaxTrustLevel)
}

// RevokeRequest revokes subject on behalf of revoker.
type RevokeRequest struct {
	Subject string `json:"subject"`
	Revoker string `json:"revoker"`
	Reason  string `json:"reason,omitempty"`
}

func (r *RevokeRequest) Normalize() {
	if r == nil {
		return
	}
	r.Subject = strings.TrimSpace(r.Subject)
	r.Revoker = strings.TrimSpace(r.Revoker)
	r.Reason = strings.TrimSpace(r.Reason)
}

func (r *RevokeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Subject == "" || r.Revoker == "" {
		return dErrors.New(dErrors.CodeValidation, "subject and revoker are required")
	}
	if err := validation.CheckDIDs(map[string]string{"subject": r.Subject, "revoker": r.Revoker}); err != nil {
		return err
	}
	return validation.CheckStringLength("reason", r.Reason, validation.MaxReasonLength)
}
