package handler

import (
	"time"

	"trustgraph/internal/trust/models"
)

type RegisterResponse struct {
	TrustID    string        `json:"trust_id"`
	Subject    models.DID    `json:"subject"`
	TrustScore int           `json:"trust_score"`
	Status     models.Status `json:"status"`
	Created    time.Time     `json:"created"`
}

// EndorseResponse carries new_trust_score as null when the subject is not
// registered.
type EndorseResponse struct {
	EndorsementID string     `json:"endorsement_id"`
	Subject       models.DID `json:"subject"`
	Endorser      models.DID `json:"endorser"`
	TrustLevel    float64    `json:"trust_level"`
	NewTrustScore *int       `json:"new_trust_score"`
	Timestamp     time.Time  `json:"timestamp"`
	Signature     string     `json:"signature,omitempty"`
}

type ChainResponse struct {
	Subject            models.DID         `json:"subject"`
	Chain              []models.TrustLink `json:"chain"`
	VerificationResult VerificationResult `json:"verification_result"`
}

// VerificationResult summarizes a trust chain.
type VerificationResult struct {
	Verified bool       `json:"verified"`
	Root     models.DID `json:"root"`
	Score    float64    `json:"score"`
	Depth    int        `json:"depth"`
}

func toRegisterResponse(rec *models.TrustRecord) RegisterResponse {
	return RegisterResponse{
		TrustID:    rec.ID,
		Subject:    rec.Subject,
		TrustScore: rec.TrustScore,
		Status:     rec.Status,
		Created:    rec.Created,
	}
}

func toEndorseResponse(res *models.EndorseResult) EndorseResponse {
	e := res.Endorsement
	return EndorseResponse{
		EndorsementID: e.ID,
		Subject:       e.Subject,
		Endorser:      e.Endorser,
		TrustLevel:    e.TrustLevel,
		NewTrustScore: res.NewTrustScore,
		Timestamp:     e.Timestamp,
		Signature:     e.Signature,
	}
}

func toChainResponse(chain *models.TrustChain) ChainResponse {
	links := chain.Links
	if links == nil {
		links = []models.TrustLink{}
	}
	return ChainResponse{
		Subject: chain.Subject,
		Chain:   links,
		VerificationResult: VerificationResult{
			Verified: chain.Verified,
			Root:     chain.Root,
			Score:    chain.Score,
			Depth:    chain.Depth,
		},
	}
}
