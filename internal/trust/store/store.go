// Package store persists trust records and the endorsement index.
package store

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"time"

	"trustgraph/internal/trust/models"
)

// Error contract:
// - Return sentinel.ErrNotFound when the requested record or endorsement does not exist
// - Return errors returned by an UpdateFunc unchanged
// - Wrap infrastructure failures with context

// UpdateFunc mutates a record in place. Returning an error aborts the update
// and leaves the stored record untouched.
type UpdateFunc func(rec *models.TrustRecord) error

// Store holds one TrustRecord per subject plus an endorsement index keyed by
// endorsement id.
type Store interface {
	Get(ctx context.Context, subject models.DID) (*models.TrustRecord, error)
	// Put writes rec under rec.Subject, replacing any existing record.
	Put(ctx context.Context, rec *models.TrustRecord) error
	// Update runs fn on the current record and stores the result atomically
	// with respect to other updates of the same subject.
	Update(ctx context.Context, subject models.DID, fn UpdateFunc) (*models.TrustRecord, error)
	SaveEndorsement(ctx context.Context, e models.Endorsement) error
	GetEndorsement(ctx context.Context, id string) (*models.Endorsement, error)
	// List returns every record ordered by subject.
	List(ctx context.Context) ([]*models.TrustRecord, error)
	Count(ctx context.Context) (int, error)
}

// AppendEndorsement appends e to the subject's record, rescoring it with
// score and stamping Updated. It returns sentinel.ErrNotFound when the
// subject is unregistered.
func AppendEndorsement(ctx context.Context, s Store, e models.Endorsement, score func([]models.Endorsement) int, now time.Time) (*models.TrustRecord, error) {
	return s.Update(ctx, e.Subject, func(rec *models.TrustRecord) error {
		rec.Endorsements = append(rec.Endorsements, e)
		rec.TrustScore = score(rec.Endorsements)
		rec.Updated = now
		return nil
	})
}
