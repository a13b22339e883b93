package models

import "time"

// TrustLink is one traversed endorsement edge, From (endorser) to To (subject).
// Links are not aggregated per pair, so Endorsements is always 1.
type TrustLink struct {
	From         DID       `json:"from"`
	To           DID       `json:"to"`
	TrustScore   float64   `json:"trust_score"`
	Endorsements int       `json:"endorsements"`
	Timestamp    time.Time `json:"timestamp"`

	EndorsementID string `json:"endorsement_id,omitempty"`
}

// TrustChain is the set of endorsement edges reachable backwards from Subject.
type TrustChain struct {
	Root     DID         `json:"root"`
	Subject  DID         `json:"subject"`
	Links    []TrustLink `json:"links"`
	Score    float64     `json:"score"`
	Verified bool        `json:"verified"`
	Depth    int         `json:"depth"`
}

// VerifyResult is the composite outcome of verify().
type VerifyResult struct {
	Verified      bool   `json:"verified"`
	TrustScore    int    `json:"trust_score"`
	Path          []DID  `json:"path"`
	PathLength    int    `json:"path_length"`
	Endorsements  int    `json:"endorsements"`
	Status        Status `json:"status"`
	VerifierScore int    `json:"verifier_score"`
	ViaVerifier   bool   `json:"via_verifier"`
}

// EndorseResult reports the endorsement and the subject's recomputed score.
// NewTrustScore is nil when the subject has no record to update.
type EndorseResult struct {
	Endorsement   Endorsement `json:"endorsement"`
	NewTrustScore *int        `json:"new_trust_score"`
}

// RevokeResult reports a completed revocation.
type RevokeResult struct {
	Subject   DID       `json:"subject"`
	Status    Status    `json:"status"`
	RevokedBy DID       `json:"revoked_by"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// ChainAnalysis summarizes a subject's trust chain for entity lookups.
type ChainAnalysis struct {
	HasChain    bool    `json:"has_chain"`
	Root        DID     `json:"root,omitempty"`
	ChainLength int     `json:"chain_length"`
	ChainScore  float64 `json:"chain_score"`
	RootTrusted bool    `json:"root_trusted"`
	Verified    bool    `json:"verified"`
}

// EndorsementSummary aggregates a subject's endorsements.
type EndorsementSummary struct {
	Total            int        `json:"total"`
	UniqueEndorsers  int        `json:"unique_endorsers"`
	AverageLevel     float64    `json:"average_level"`
	WeightedScore    int        `json:"weighted_score"`
	LatestEndorsedAt *time.Time `json:"latest_endorsed_at,omitempty"`
}

// EntityView is the read projection served by GET /entities/{did}.
type EntityView struct {
	Record             *TrustRecord       `json:"trust_record"`
	ChainAnalysis      ChainAnalysis      `json:"chain_analysis"`
	EndorsementSummary EndorsementSummary `json:"endorsement_summary"`
}
