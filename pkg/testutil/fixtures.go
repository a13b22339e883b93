package testutil

import (
	"time"

	"github.com/google/uuid"

	"trustgraph/internal/trust/models"
)

// TestDIDs are the identifiers used across trust registry tests.
var TestDIDs = struct {
	Root  models.DID
	Alice models.DID
	Bob   models.DID
	Carol models.DID
}{
	Root:  "did:ex:root",
	Alice: "did:ex:alice",
	Bob:   "did:ex:bob",
	Carol: "did:ex:carol",
}

// RecordBuilder provides a fluent interface for building test trust records.
type RecordBuilder struct {
	record *models.TrustRecord
}

// NewRecordBuilder creates an active record for TestDIDs.Alice issued by TestDIDs.Root.
func NewRecordBuilder() *RecordBuilder {
	now := time.Now()
	return &RecordBuilder{
		record: &models.TrustRecord{
			ID:           "trust_" + uuid.NewString(),
			Issuer:       TestDIDs.Root,
			Subject:      TestDIDs.Alice,
			Endorsements: []models.Endorsement{},
			Created:      now,
			Updated:      now,
			Status:       models.StatusActive,
		},
	}
}

func (b *RecordBuilder) WithSubject(subject models.DID) *RecordBuilder {
	b.record.Subject = subject
	return b
}

func (b *RecordBuilder) WithIssuer(issuer models.DID) *RecordBuilder {
	b.record.Issuer = issuer
	return b
}

func (b *RecordBuilder) WithScore(score int) *RecordBuilder {
	b.record.TrustScore = score
	return b
}

func (b *RecordBuilder) WithStatus(status models.Status) *RecordBuilder {
	b.record.Status = status
	return b
}

// EndorsedBy appends an endorsement from endorser at level, timestamped now.
func (b *RecordBuilder) EndorsedBy(endorser models.DID, level float64) *RecordBuilder {
	b.record.Endorsements = append(b.record.Endorsements, NewEndorsementBuilder().
		From(endorser).
		To(b.record.Subject).
		WithLevel(level).
		Build())
	return b
}

func (b *RecordBuilder) Build() *models.TrustRecord {
	return b.record
}

// EndorsementBuilder provides a fluent interface for building test endorsements.
type EndorsementBuilder struct {
	endorsement models.Endorsement
}

// NewEndorsementBuilder creates a level-80 endorsement from Root to Alice.
func NewEndorsementBuilder() *EndorsementBuilder {
	return &EndorsementBuilder{
		endorsement: models.Endorsement{
			ID:         "end_" + uuid.NewString(),
			Endorser:   TestDIDs.Root,
			Subject:    TestDIDs.Alice,
			TrustLevel: 80,
			Timestamp:  time.Now(),
		},
	}
}

func (b *EndorsementBuilder) WithID(id string) *EndorsementBuilder {
	b.endorsement.ID = id
	return b
}

func (b *EndorsementBuilder) From(endorser models.DID) *EndorsementBuilder {
	b.endorsement.Endorser = endorser
	return b
}

func (b *EndorsementBuilder) To(subject models.DID) *EndorsementBuilder {
	b.endorsement.Subject = subject
	return b
}

func (b *EndorsementBuilder) WithLevel(level float64) *EndorsementBuilder {
	b.endorsement.TrustLevel = level
	return b
}

func (b *EndorsementBuilder) At(ts time.Time) *EndorsementBuilder {
	b.endorsement.Timestamp = ts
	return b
}

func (b *EndorsementBuilder) Build() models.Endorsement {
	return b.endorsement
}
