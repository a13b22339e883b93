package signing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trustgraph/internal/trust/models"
	dErrors "trustgraph/pkg/domain-errors"
)

func testEndorsement() models.Endorsement {
	return models.Endorsement{
		ID:         "end_1",
		Endorser:   "did:ex:root",
		Subject:    "did:ex:alice",
		TrustLevel: 90,
		Timestamp:  time.Date(2025, 3, 1, 10, 30, 15, 123456789, time.UTC),
	}
}

func signed(t *testing.T, s *Signer) models.Endorsement {
	t.Helper()
	e := testEndorsement()
	sig, err := s.Sign(e)
	require.NoError(t, err)
	e.Signature = sig
	return e
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
}

func TestSignAndVerify(t *testing.T) {
	s, err := New("test-signing-key")
	require.NoError(t, err)

	e := signed(t, s)
	assert.NotEmpty(t, e.Signature)
	assert.NoError(t, s.Verify(e))
}

func TestVerifyRejectsTampering(t *testing.T) {
	s, err := New("test-signing-key")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(e *models.Endorsement)
	}{
		{"unsigned", func(e *models.Endorsement) { e.Signature = "" }},
		{"garbage token", func(e *models.Endorsement) { e.Signature = "not-a-jwt" }},
		{"trust level changed", func(e *models.Endorsement) { e.TrustLevel = 99 }},
		{"endorser changed", func(e *models.Endorsement) { e.Endorser = "did:ex:mallory" }},
		{"subject changed", func(e *models.Endorsement) { e.Subject = "did:ex:bob" }},
		{"id changed", func(e *models.Endorsement) { e.ID = "end_2" }},
		{"timestamp changed", func(e *models.Endorsement) { e.Timestamp = e.Timestamp.Add(time.Hour) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := signed(t, s)
			tt.mutate(&e)
			err := s.Verify(e)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func TestVerifyRejectsOtherKeyOrIssuer(t *testing.T) {
	a, err := New("key-a")
	require.NoError(t, err)
	b, err := New("key-b")
	require.NoError(t, err)
	c, err := New("key-a", WithIssuer("other-registry"))
	require.NoError(t, err)

	e := signed(t, a)
	assert.Error(t, b.Verify(e))
	assert.Error(t, c.Verify(e))
}

func TestVerifyToleratesSubSecondPrecisionLoss(t *testing.T) {
	s, err := New("test-signing-key")
	require.NoError(t, err)

	e := signed(t, s)
	e.Timestamp = e.Timestamp.Truncate(time.Microsecond)
	assert.NoError(t, s.Verify(e))
}
