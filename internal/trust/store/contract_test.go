package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trustgraph/internal/trust/models"
	"trustgraph/pkg/platform/sentinel"
	"trustgraph/pkg/testutil"
)

// testStoreContract exercises the behaviour every Store implementation shares.
func testStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	newRecord := func(t *testing.T, subject models.DID, score int) *models.TrustRecord {
		t.Helper()
		rec, err := models.NewTrustRecord("trust_"+string(subject), "did:ex:issuer", subject, score, now)
		require.NoError(t, err)
		return rec
	}

	t.Run("get unknown subject", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "did:ex:nobody")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("put then get", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, newRecord(t, "did:ex:alice", 10)))

		got, err := s.Get(ctx, "did:ex:alice")
		require.NoError(t, err)
		assert.Equal(t, models.DID("did:ex:alice"), got.Subject)
		assert.Equal(t, 10, got.TrustScore)
		assert.Equal(t, models.StatusActive, got.Status)
		assert.NotNil(t, got.Endorsements)
		assert.True(t, now.Equal(got.Created))
	})

	t.Run("put overwrites", func(t *testing.T) {
		s := newStore(t)
		first := newRecord(t, "did:ex:alice", 10)
		first.Endorsements = append(first.Endorsements, testutil.NewEndorsementBuilder().At(now).Build())
		require.NoError(t, s.Put(ctx, first))
		require.NoError(t, s.Put(ctx, newRecord(t, "did:ex:alice", 0)))

		got, err := s.Get(ctx, "did:ex:alice")
		require.NoError(t, err)
		assert.Empty(t, got.Endorsements)
		assert.Equal(t, 0, got.TrustScore)

		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("update unknown subject", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Update(ctx, "did:ex:nobody", func(*models.TrustRecord) error { return nil })
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("update error leaves record untouched", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, newRecord(t, "did:ex:alice", 10)))

		boom := errors.New("boom")
		_, err := s.Update(ctx, "did:ex:alice", func(rec *models.TrustRecord) error {
			rec.TrustScore = 99
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := s.Get(ctx, "did:ex:alice")
		require.NoError(t, err)
		assert.Equal(t, 10, got.TrustScore)
	})

	t.Run("append endorsement rescoring", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, newRecord(t, "did:ex:alice", 0)))

		e := testutil.NewEndorsementBuilder().WithID("e1").WithLevel(90).At(now).Build()
		later := now.Add(time.Minute)
		rec, err := AppendEndorsement(ctx, s, e, func(es []models.Endorsement) int { return len(es) * 7 }, later)
		require.NoError(t, err)
		assert.Len(t, rec.Endorsements, 1)
		assert.Equal(t, 7, rec.TrustScore)
		assert.True(t, later.Equal(rec.Updated))

		got, err := s.Get(ctx, "did:ex:alice")
		require.NoError(t, err)
		require.Len(t, got.Endorsements, 1)
		assert.Equal(t, "e1", got.Endorsements[0].ID)
		assert.Equal(t, 90.0, got.Endorsements[0].TrustLevel)

		_, err = AppendEndorsement(ctx, s, models.Endorsement{ID: "e2", Subject: "did:ex:ghost"}, func([]models.Endorsement) int { return 0 }, later)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("endorsement index", func(t *testing.T) {
		s := newStore(t)
		e := testutil.NewEndorsementBuilder().
			WithID("e1").
			To("did:ex:ghost").
			WithLevel(42.5).
			At(now).
			Build()
		e.Evidence = "https://example.com/proof"
		e.Signature = "sig"
		require.NoError(t, s.SaveEndorsement(ctx, e))

		got, err := s.GetEndorsement(ctx, "e1")
		require.NoError(t, err)
		assert.Equal(t, e.Endorser, got.Endorser)
		assert.Equal(t, e.Subject, got.Subject)
		assert.Equal(t, 42.5, got.TrustLevel)
		assert.Equal(t, e.Evidence, got.Evidence)
		assert.Equal(t, e.Signature, got.Signature)
		assert.True(t, now.Equal(got.Timestamp))

		_, err = s.GetEndorsement(ctx, "missing")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("list is ordered by subject", func(t *testing.T) {
		s := newStore(t)
		for _, subj := range []models.DID{"did:ex:carol", "did:ex:alice", "did:ex:bob"} {
			require.NoError(t, s.Put(ctx, newRecord(t, subj, 0)))
		}
		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, models.DID("did:ex:alice"), list[0].Subject)
		assert.Equal(t, models.DID("did:ex:bob"), list[1].Subject)
		assert.Equal(t, models.DID("did:ex:carol"), list[2].Subject)
	})

	t.Run("revocation metadata round trips", func(t *testing.T) {
		s := newStore(t)
		rec := newRecord(t, "did:ex:alice", 0)
		rec.Revoke("did:ex:root", "compromised", now)
		require.NoError(t, s.Put(ctx, rec))

		got, err := s.Get(ctx, "did:ex:alice")
		require.NoError(t, err)
		assert.Equal(t, models.StatusRevoked, got.Status)
		assert.Equal(t, models.DID("did:ex:root"), got.RevokedBy)
		assert.Equal(t, "compromised", got.RevocationReason)
		require.NotNil(t, got.RevokedAt)
		assert.True(t, now.Equal(*got.RevokedAt))
	})

	t.Run("status issuer and endorsements round trip", func(t *testing.T) {
		s := newStore(t)
		suspended := testutil.NewRecordBuilder().
			WithSubject("did:ex:bob").
			WithIssuer("did:ex:issuer").
			WithScore(65).
			WithStatus(models.StatusSuspended).
			EndorsedBy("did:ex:root", 65).
			Build()
		require.NoError(t, s.Put(ctx, suspended))

		got, err := s.Get(ctx, "did:ex:bob")
		require.NoError(t, err)
		assert.Equal(t, models.StatusSuspended, got.Status)
		assert.Equal(t, models.DID("did:ex:issuer"), got.Issuer)
		assert.Equal(t, 65, got.TrustScore)
		require.Len(t, got.Endorsements, 1)
		assert.Equal(t, models.DID("did:ex:root"), got.Endorsements[0].Endorser)
		assert.Equal(t, models.DID("did:ex:bob"), got.Endorsements[0].Subject)
	})

	t.Run("concurrent updates are not lost", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, newRecord(t, "did:ex:alice", 0)))

		const writers = 20
		result := testutil.RunConcurrent(writers, func(i int) error {
			e := testutil.NewEndorsementBuilder().WithID(fmt.Sprintf("e%d", i)).WithLevel(50).At(now).Build()
			_, err := AppendEndorsement(ctx, s, e, func(es []models.Endorsement) int { return len(es) }, now)
			return err
		})
		require.Equal(t, int32(writers), result.Successes)

		got, err := s.Get(ctx, "did:ex:alice")
		require.NoError(t, err)
		assert.Len(t, got.Endorsements, writers)
		assert.Equal(t, writers, got.TrustScore)
	})
}
