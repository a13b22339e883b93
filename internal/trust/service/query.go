package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"trustgraph/internal/trust/graph"
	"trustgraph/internal/trust/metrics"
	"trustgraph/internal/trust/models"
	"trustgraph/internal/trust/score"
	"trustgraph/internal/trust/tracer"
	dErrors "trustgraph/pkg/domain-errors"
	"trustgraph/pkg/platform/audit"
	"trustgraph/pkg/platform/sentinel"
)

// Verify decides whether verifier may rely on subject. The result is
// verified iff the subject is active, its score meets minimumScore, and
// either an endorsement path connects verifier to subject or (when the
// bypass is enabled) the verifier's own score meets minimumScore.
//
// The returned path runs from verifier to subject along endorsement edges.
func (s *Service) Verify(ctx context.Context, subject, verifier models.DID, minimumScore float64) (res *models.VerifyResult, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanVerify,
		tracer.String(tracer.AttrSubject, subject.String()),
		tracer.String(tracer.AttrVerifier, verifier.String()),
		tracer.Float64(tracer.AttrMinimumScore, minimumScore),
	)
	defer func() {
		span.End(err)
		s.observeLatency("verify", start)
	}()

	if subject.IsZero() || verifier.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "subject and verifier are required")
	}
	if !models.ValidTrustLevel(minimumScore) {
		return nil, dErrors.New(dErrors.CodeValidation, "minimum_score must be between 0 and 100")
	}

	rec, err := s.getRecord(ctx, subject, "subject")
	if err != nil {
		return nil, err
	}

	path, err := s.findPath(ctx, verifier, subject)
	if err != nil {
		return nil, err
	}

	verifierScore := 0
	if verifierRec, err := s.store.Get(ctx, verifier); err == nil {
		verifierScore = verifierRec.TrustScore
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verifier record")
	}

	eligible := rec.IsActive() && float64(rec.TrustScore) >= minimumScore
	pathExists := len(path) > 0
	viaVerifier := !pathExists && s.allowVerifierBypass && float64(verifierScore) >= minimumScore
	verified := eligible && (pathExists || viaVerifier)

	via := metrics.VerifiedViaNone
	switch {
	case verified && pathExists:
		via = metrics.VerifiedViaPath
	case verified && viaVerifier:
		via = metrics.VerifiedViaVerifier
	}

	res = &models.VerifyResult{
		Verified:      verified,
		TrustScore:    rec.TrustScore,
		Path:          path,
		PathLength:    len(path),
		Endorsements:  len(rec.Endorsements),
		Status:        rec.Status,
		VerifierScore: verifierScore,
		ViaVerifier:   verified && viaVerifier,
	}

	span.SetAttributes(
		tracer.Bool(tracer.AttrVerified, verified),
		tracer.Bool(tracer.AttrViaVerifier, res.ViaVerifier),
		tracer.Int(tracer.AttrPathLength, len(path)),
	)
	decision := audit.DecisionRejected
	if verified {
		decision = audit.DecisionVerified
	}
	s.emitAudit(ctx, audit.Event{
		Action:   audit.ActionVerified,
		Subject:  subject.String(),
		Actor:    verifier.String(),
		Decision: decision,
		Reason:   via,
	})
	if s.metrics != nil {
		s.metrics.IncrementVerifications(verified, via)
	}
	return res, nil
}

// findPath searches backwards from subject for verifier and returns the
// path reversed, so it reads verifier -> ... -> subject in endorsement
// direction.
func (s *Service) findPath(ctx context.Context, verifier, subject models.DID) (path []models.DID, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanFindPath)
	defer func() { span.End(err) }()

	path, err = s.graph.FindTrustPath(ctx, subject, verifier)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search trust path")
	}
	slices.Reverse(path)
	return path, nil
}

// Search returns records matching filter, highest score first. Equal scores
// are ordered by subject.
func (s *Service) Search(ctx context.Context, filter models.SearchFilter) (res *models.SearchResult, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanSearch)
	defer func() {
		span.End(err)
		s.observeLatency("search", start)
	}()

	filter.Normalize()
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	records, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list trust records")
	}

	matches := make([]*models.TrustRecord, 0, len(records))
	for _, rec := range records {
		if filter.Matches(rec) {
			matches = append(matches, rec)
		}
	}
	slices.SortStableFunc(matches, func(a, b *models.TrustRecord) int {
		if a.TrustScore != b.TrustScore {
			return b.TrustScore - a.TrustScore
		}
		return strings.Compare(string(a.Subject), string(b.Subject))
	})

	total := len(matches)
	if len(matches) > filter.Limit {
		matches = matches[:filter.Limit]
	}
	span.SetAttributes(tracer.Int(tracer.AttrResultCount, len(matches)))
	return &models.SearchResult{Total: total, Results: matches}, nil
}

// GetEntity returns the subject's record with its chain analysis and an
// endorsement summary.
func (s *Service) GetEntity(ctx context.Context, did models.DID) (view *models.EntityView, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanGetEntity, tracer.String(tracer.AttrSubject, did.String()))
	defer func() {
		span.End(err)
		s.observeLatency("get_entity", start)
	}()

	rec, err := s.getRecord(ctx, did, "entity")
	if err != nil {
		return nil, err
	}

	analysis := models.ChainAnalysis{}
	chain, err := s.graph.BuildTrustChain(ctx, did, models.DefaultMaxDepth)
	switch {
	case err == nil:
		rootTrusted, err := s.IsRootTrusted(ctx, chain.Root)
		if err != nil {
			return nil, err
		}
		analysis = models.ChainAnalysis{
			HasChain:    true,
			Root:        chain.Root,
			ChainLength: len(chain.Links),
			ChainScore:  chain.Score,
			RootTrusted: rootTrusted,
			Verified:    chain.Verified,
		}
	case errors.Is(err, graph.ErrNoChain):
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build trust chain")
	}

	return &models.EntityView{
		Record:             rec,
		ChainAnalysis:      analysis,
		EndorsementSummary: s.summarize(rec.Endorsements),
	}, nil
}

func (s *Service) summarize(endorsements []models.Endorsement) models.EndorsementSummary {
	summary := models.EndorsementSummary{
		Total:         len(endorsements),
		AverageLevel:  score.Mean(endorsements),
		WeightedScore: s.calculator.Compute(endorsements),
	}
	unique := make(map[models.DID]struct{}, len(endorsements))
	for _, e := range endorsements {
		unique[e.Endorser] = struct{}{}
		if summary.LatestEndorsedAt == nil || e.Timestamp.After(*summary.LatestEndorsedAt) {
			ts := e.Timestamp
			summary.LatestEndorsedAt = &ts
		}
	}
	summary.UniqueEndorsers = len(unique)
	return summary
}

// GetTrustChain builds the subject's chain up to maxDepth levels. A
// non-positive maxDepth uses the default of 5.
func (s *Service) GetTrustChain(ctx context.Context, did models.DID, maxDepth int) (chain *models.TrustChain, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanGetChain,
		tracer.String(tracer.AttrSubject, did.String()),
		tracer.Int(tracer.AttrMaxDepth, maxDepth),
	)
	defer func() {
		span.End(err)
		s.observeLatency("get_chain", start)
	}()

	if did.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "did is required")
	}
	chain, err = s.graph.BuildTrustChain(ctx, did, maxDepth)
	if err != nil {
		if errors.Is(err, graph.ErrNoChain) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no trust chain found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build trust chain")
	}
	span.SetAttributes(tracer.Int(tracer.AttrChainLinks, len(chain.Links)))
	return chain, nil
}

// GetEndorsement looks an endorsement up in the endorsement index.
func (s *Service) GetEndorsement(ctx context.Context, id string) (*models.Endorsement, error) {
	if id == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "endorsement id is required")
	}
	e, err := s.store.GetEndorsement(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "endorsement not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load endorsement")
	}
	return e, nil
}

// IsRootTrusted reports whether did is registered with a score of at least
// models.RootTrustThreshold.
func (s *Service) IsRootTrusted(ctx context.Context, did models.DID) (bool, error) {
	rec, err := s.store.Get(ctx, did)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load trust record")
	}
	return rec.TrustScore >= models.RootTrustThreshold, nil
}
