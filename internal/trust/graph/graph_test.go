package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trustgraph/internal/trust/models"
	"trustgraph/pkg/platform/sentinel"
	"trustgraph/pkg/testutil"
)

type mapReader struct {
	records map[models.DID]*models.TrustRecord
	err     error
}

func (m *mapReader) Get(_ context.Context, subject models.DID) (*models.TrustRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	rec, ok := m.records[subject]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return rec, nil
}

// graphOf builds records from subject -> endorsers (in order), all at level 80.
func graphOf(edges map[models.DID][]models.DID) *mapReader {
	r := &mapReader{records: make(map[models.DID]*models.TrustRecord)}
	for subject, endorsers := range edges {
		b := testutil.NewRecordBuilder().WithSubject(subject)
		for _, endorser := range endorsers {
			b.EndorsedBy(endorser, 80)
		}
		r.records[subject] = b.Build()
	}
	return r
}

type stubVerifier struct{ err error }

func (s stubVerifier) Verify(models.Endorsement) error { return s.err }

func TestFindTrustPath(t *testing.T) {
	ctx := context.Background()

	t.Run("same node", func(t *testing.T) {
		e := New(graphOf(nil))
		path, err := e.FindTrustPath(ctx, "did:ex:a", "did:ex:a")
		require.NoError(t, err)
		assert.Equal(t, []models.DID{"did:ex:a"}, path)
	})

	t.Run("direct endorser", func(t *testing.T) {
		e := New(graphOf(map[models.DID][]models.DID{
			"did:ex:alice": {"did:ex:root"},
		}))
		path, err := e.FindTrustPath(ctx, "did:ex:alice", "did:ex:root")
		require.NoError(t, err)
		assert.Equal(t, []models.DID{"did:ex:alice", "did:ex:root"}, path)
	})

	t.Run("edges are only followed backwards", func(t *testing.T) {
		e := New(graphOf(map[models.DID][]models.DID{
			"did:ex:alice": {"did:ex:root"},
		}))
		path, err := e.FindTrustPath(ctx, "did:ex:root", "did:ex:alice")
		require.NoError(t, err)
		assert.NotNil(t, path)
		assert.Empty(t, path)
	})

	t.Run("shortest path with first endorser winning ties", func(t *testing.T) {
		e := New(graphOf(map[models.DID][]models.DID{
			"did:ex:alice": {"did:ex:bob", "did:ex:carol"},
			"did:ex:bob":   {"did:ex:dave"},
			"did:ex:carol": {"did:ex:dave"},
			"did:ex:dave":  {"did:ex:erin"},
		}))
		path, err := e.FindTrustPath(ctx, "did:ex:alice", "did:ex:dave")
		require.NoError(t, err)
		assert.Equal(t, []models.DID{"did:ex:alice", "did:ex:bob", "did:ex:dave"}, path)

		path, err = e.FindTrustPath(ctx, "did:ex:alice", "did:ex:erin")
		require.NoError(t, err)
		assert.Len(t, path, 4)
	})

	t.Run("cycles terminate", func(t *testing.T) {
		e := New(graphOf(map[models.DID][]models.DID{
			"did:ex:a": {"did:ex:b"},
			"did:ex:b": {"did:ex:c"},
			"did:ex:c": {"did:ex:a"},
		}))
		path, err := e.FindTrustPath(ctx, "did:ex:a", "did:ex:z")
		require.NoError(t, err)
		assert.Empty(t, path)
	})

	t.Run("unregistered endorsers are dead ends", func(t *testing.T) {
		e := New(graphOf(map[models.DID][]models.DID{
			"did:ex:alice": {"did:ex:ghost", "did:ex:bob"},
			"did:ex:bob":   {"did:ex:root"},
		}))
		path, err := e.FindTrustPath(ctx, "did:ex:alice", "did:ex:root")
		require.NoError(t, err)
		assert.Equal(t, []models.DID{"did:ex:alice", "did:ex:bob", "did:ex:root"}, path)
	})

	t.Run("max depth bounds the search", func(t *testing.T) {
		reader := graphOf(map[models.DID][]models.DID{
			"did:ex:a": {"did:ex:b"},
			"did:ex:b": {"did:ex:c"},
			"did:ex:c": {"did:ex:d"},
		})
		path, err := New(reader, WithMaxPathDepth(2)).FindTrustPath(ctx, "did:ex:a", "did:ex:d")
		require.NoError(t, err)
		assert.Empty(t, path)

		path, err = New(reader, WithMaxPathDepth(3)).FindTrustPath(ctx, "did:ex:a", "did:ex:d")
		require.NoError(t, err)
		assert.Len(t, path, 4)
	})

	t.Run("store errors propagate", func(t *testing.T) {
		boom := errors.New("boom")
		e := New(&mapReader{err: boom})
		_, err := e.FindTrustPath(ctx, "did:ex:a", "did:ex:b")
		assert.ErrorIs(t, err, boom)
	})
}

func TestBuildTrustChain(t *testing.T) {
	ctx := context.Background()

	t.Run("no endorsements is no chain", func(t *testing.T) {
		e := New(graphOf(map[models.DID][]models.DID{"did:ex:alice": nil}))
		_, err := e.BuildTrustChain(ctx, "did:ex:alice", 5)
		assert.ErrorIs(t, err, ErrNoChain)

		_, err = e.BuildTrustChain(ctx, "did:ex:unknown", 5)
		assert.ErrorIs(t, err, ErrNoChain)
	})

	t.Run("one link per endorsement", func(t *testing.T) {
		e := New(graphOf(map[models.DID][]models.DID{
			"did:ex:alice": {"did:ex:bob", "did:ex:bob"},
			"did:ex:bob":   {"did:ex:root"},
		}))
		chain, err := e.BuildTrustChain(ctx, "did:ex:alice", 0)
		require.NoError(t, err)

		require.Len(t, chain.Links, 3)
		for _, l := range chain.Links {
			assert.Equal(t, 1, l.Endorsements)
		}
		assert.Equal(t, models.DID("did:ex:alice"), chain.Subject)
		assert.Equal(t, models.DID("did:ex:root"), chain.Root)
		assert.Equal(t, 2, chain.Depth)
		assert.InDelta(t, 80.0, chain.Score, 1e-9)
	})

	t.Run("score is the plain mean of link scores", func(t *testing.T) {
		reader := graphOf(map[models.DID][]models.DID{
			"did:ex:alice": {"did:ex:bob", "did:ex:root"},
		})
		reader.records["did:ex:alice"].Endorsements[0].TrustLevel = 40
		reader.records["did:ex:alice"].Endorsements[1].TrustLevel = 100

		chain, err := New(reader).BuildTrustChain(ctx, "did:ex:alice", 5)
		require.NoError(t, err)
		assert.InDelta(t, 70.0, chain.Score, 1e-9)
		assert.Equal(t, models.DID("did:ex:bob"), chain.Root)
	})

	t.Run("depth bound truncates the walk", func(t *testing.T) {
		e := New(graphOf(map[models.DID][]models.DID{
			"did:ex:a": {"did:ex:b"},
			"did:ex:b": {"did:ex:c"},
			"did:ex:c": {"did:ex:d"},
		}))
		chain, err := e.BuildTrustChain(ctx, "did:ex:a", 2)
		require.NoError(t, err)
		assert.Len(t, chain.Links, 2)
		assert.Equal(t, models.DID("did:ex:c"), chain.Root)
	})

	t.Run("cycles fall back to first endorser as root", func(t *testing.T) {
		e := New(graphOf(map[models.DID][]models.DID{
			"did:ex:a": {"did:ex:b"},
			"did:ex:b": {"did:ex:a"},
		}))
		chain, err := e.BuildTrustChain(ctx, "did:ex:a", 10)
		require.NoError(t, err)
		assert.Len(t, chain.Links, 2)
		assert.Equal(t, models.DID("did:ex:b"), chain.Root)
	})

	t.Run("verified reflects signature checks", func(t *testing.T) {
		reader := graphOf(map[models.DID][]models.DID{"did:ex:alice": {"did:ex:root"}})

		chain, err := New(reader, WithVerifier(stubVerifier{})).BuildTrustChain(ctx, "did:ex:alice", 5)
		require.NoError(t, err)
		assert.True(t, chain.Verified)

		chain, err = New(reader, WithVerifier(stubVerifier{err: errors.New("bad sig")})).BuildTrustChain(ctx, "did:ex:alice", 5)
		require.NoError(t, err)
		assert.False(t, chain.Verified)

		chain, err = New(reader).BuildTrustChain(ctx, "did:ex:alice", 5)
		require.NoError(t, err)
		assert.False(t, chain.Verified)
	})
}
