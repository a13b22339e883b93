// Package graph traverses the implicit endorsement graph. Edges are read
// live from each TrustRecord's endorsement list; no adjacency index is kept.
// Traversal always runs backwards, from a subject to the DIDs that
// endorsed it.
package graph

import (
	"context"
	"errors"

	"trustgraph/internal/trust/models"
	"trustgraph/pkg/platform/sentinel"
)

// ErrNoChain is returned when a subject has no reachable endorsements.
var ErrNoChain = errors.New("no trust chain")

// RecordReader loads a subject's record. Implementations return
// sentinel.ErrNotFound for unregistered subjects.
type RecordReader interface {
	Get(ctx context.Context, subject models.DID) (*models.TrustRecord, error)
}

// EndorsementVerifier checks the registry signature on an endorsement.
type EndorsementVerifier interface {
	Verify(e models.Endorsement) error
}

// Engine runs path finding and chain building over a RecordReader.
type Engine struct {
	records      RecordReader
	verifier     EndorsementVerifier
	maxPathDepth int
}

// Option configures an Engine.
type Option func(*Engine)

// WithVerifier sets the check used for TrustChain.Verified. Without one,
// chains are never reported as verified.
func WithVerifier(v EndorsementVerifier) Option {
	return func(e *Engine) {
		e.verifier = v
	}
}

// WithMaxPathDepth bounds FindTrustPath by hop count. Zero means unbounded.
func WithMaxPathDepth(depth int) Option {
	return func(e *Engine) {
		if depth >= 0 {
			e.maxPathDepth = depth
		}
	}
}

// New creates an Engine.
func New(records RecordReader, opts ...Option) *Engine {
	e := &Engine{records: records}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// lookup returns nil without error for unregistered subjects.
func (e *Engine) lookup(ctx context.Context, did models.DID) (*models.TrustRecord, error) {
	rec, err := e.records.Get(ctx, did)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

// FindTrustPath runs a breadth-first search from `from`, stepping from each
// DID to the endorsers on its record in record order. The first path that
// reaches `to` is returned. It returns an empty path when `to` is
// unreachable and [from] when from == to.
func (e *Engine) FindTrustPath(ctx context.Context, from, to models.DID) ([]models.DID, error) {
	if from == to {
		return []models.DID{from}, nil
	}

	type entry struct {
		did  models.DID
		path []models.DID
	}

	visited := map[models.DID]bool{from: true}
	queue := []entry{{did: from, path: []models.DID{from}}}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		current := queue[0]
		queue = queue[1:]

		if e.maxPathDepth > 0 && len(current.path)-1 >= e.maxPathDepth {
			continue
		}

		rec, err := e.lookup(ctx, current.did)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			continue
		}

		for _, next := range rec.Endorsers() {
			if next == to {
				return append(current.path, to), nil
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			path := make([]models.DID, len(current.path)+1)
			copy(path, current.path)
			path[len(current.path)] = next
			queue = append(queue, entry{did: next, path: path})
		}
	}

	return []models.DID{}, nil
}

// BuildTrustChain collects one TrustLink per endorsement reachable backwards
// from did, at most maxDepth levels deep. A non-positive maxDepth uses
// models.DefaultMaxDepth. ErrNoChain is returned when no link is found.
func (e *Engine) BuildTrustChain(ctx context.Context, did models.DID, maxDepth int) (*models.TrustChain, error) {
	if maxDepth <= 0 {
		maxDepth = models.DefaultMaxDepth
	}

	var (
		links   []models.TrustLink
		seen    []models.Endorsement
		deepest int
	)
	visited := make(map[models.DID]bool)

	var walk func(node models.DID, depth int) error
	walk = func(node models.DID, depth int) error {
		if depth >= maxDepth || visited[node] {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		visited[node] = true

		rec, err := e.lookup(ctx, node)
		if err != nil {
			return err
		}
		if rec == nil {
			return nil
		}

		for _, end := range rec.Endorsements {
			links = append(links, models.TrustLink{
				From:          end.Endorser,
				To:            node,
				TrustScore:    end.TrustLevel,
				Endorsements:  1,
				Timestamp:     end.Timestamp,
				EndorsementID: end.ID,
			})
			seen = append(seen, end)
			if depth+1 > deepest {
				deepest = depth + 1
			}
			if err := walk(end.Endorser, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(did, 0); err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, ErrNoChain
	}

	return &models.TrustChain{
		Root:     findRoot(links),
		Subject:  did,
		Links:    links,
		Score:    meanLinkScore(links),
		Verified: e.verifyAll(seen),
		Depth:    deepest,
	}, nil
}

// findRoot returns the first endorser that never appears as a link target,
// falling back to the first link's endorser.
func findRoot(links []models.TrustLink) models.DID {
	targets := make(map[models.DID]bool, len(links))
	for _, l := range links {
		targets[l.To] = true
	}
	for _, l := range links {
		if !targets[l.From] {
			return l.From
		}
	}
	return links[0].From
}

func meanLinkScore(links []models.TrustLink) float64 {
	var sum float64
	for _, l := range links {
		sum += l.TrustScore
	}
	return sum / float64(len(links))
}

func (e *Engine) verifyAll(endorsements []models.Endorsement) bool {
	if e.verifier == nil {
		return false
	}
	for _, end := range endorsements {
		if err := e.verifier.Verify(end); err != nil {
			return false
		}
	}
	return true
}
