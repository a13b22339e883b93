package models

import (
	"math"
	"strings"

	dErrors "trustgraph/pkg/domain-errors"
)

const (
	DefaultSearchLimit = 50
	MaxSearchLimit     = 500
)

// SearchFilter selects records for search(). Zero values are replaced by
// Normalize with the documented defaults.
type SearchFilter struct {
	Query    string
	MinScore *float64
	MaxScore *float64
	Status   Status
	Limit    int
}

// Normalize applies defaults: score range [0,100], status active, limit 50.
func (f *SearchFilter) Normalize() {
	f.Query = strings.TrimSpace(f.Query)
	if f.MinScore == nil {
		lo := float64(MinTrustLevel)
		f.MinScore = &lo
	}
	if f.MaxScore == nil {
		hi := float64(MaxTrustLevel)
		f.MaxScore = &hi
	}
	if f.Status == "" {
		f.Status = StatusActive
	}
	if f.Limit <= 0 {
		f.Limit = DefaultSearchLimit
	}
	if f.Limit > MaxSearchLimit {
		f.Limit = MaxSearchLimit
	}
}

// Validate rejects non-finite bounds, inverted ranges and unknown statuses.
// Call after Normalize.
func (f *SearchFilter) Validate() error {
	if !f.Status.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid status filter")
	}
	if !finite(*f.MinScore) || !finite(*f.MaxScore) {
		return dErrors.New(dErrors.CodeValidation, "score bounds must be finite numbers")
	}
	if *f.MinScore > *f.MaxScore {
		return dErrors.New(dErrors.CodeValidation, "min_score must not exceed max_score")
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Matches reports whether rec passes every filter criterion.
// The query is a case-insensitive substring match on the subject DID.
func (f *SearchFilter) Matches(rec *TrustRecord) bool {
	if rec.Status != f.Status {
		return false
	}
	score := float64(rec.TrustScore)
	if score < *f.MinScore || score > *f.MaxScore {
		return false
	}
	if f.Query != "" && !strings.Contains(strings.ToLower(string(rec.Subject)), strings.ToLower(f.Query)) {
		return false
	}
	return true
}

// SearchResult is the outcome of search(). Total counts every match before
// Limit is applied.
type SearchResult struct {
	Total   int            `json:"total"`
	Results []*TrustRecord `json:"results"`
}
