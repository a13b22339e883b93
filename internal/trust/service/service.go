package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"trustgraph/internal/trust/graph"
	"trustgraph/internal/trust/metrics"
	"trustgraph/internal/trust/models"
	"trustgraph/internal/trust/score"
	"trustgraph/internal/trust/store"
	"trustgraph/internal/trust/tracer"
	dErrors "trustgraph/pkg/domain-errors"
	"trustgraph/pkg/platform/audit"
	"trustgraph/pkg/platform/sentinel"
	platformsync "trustgraph/pkg/platform/sync"
	"trustgraph/pkg/requestcontext"
)

// Signer seals endorsements and checks existing seals.
type Signer interface {
	Sign(e models.Endorsement) (string, error)
	Verify(e models.Endorsement) error
}

// Anchor is a pre-seeded root of trust.
type Anchor struct {
	DID    models.DID
	Issuer models.DID
}

// DefaultAnchors are seeded when no anchors are configured.
var DefaultAnchors = []Anchor{
	{DID: "did:web:trust-registry.org:anchors:root", Issuer: "did:web:trust-registry.org"},
	{DID: "did:web:trust-registry.org:anchors:governance", Issuer: "did:web:trust-registry.org"},
	{DID: "did:web:trust-registry.org:anchors:issuance", Issuer: "did:web:trust-registry.org"},
}

type Option func(*Service)

// Service is the trust registry facade. It owns authority policy and keeps
// every TrustRecord's score equal to the calculator's output over its
// endorsements.
type Service struct {
	store      store.Store
	graph      *graph.Engine
	calculator *score.Calculator
	signer     Signer
	auditor    audit.Emitter
	metrics    *metrics.Metrics
	tracer     tracer.Tracer
	logger     *slog.Logger
	now        func() time.Time
	locks      *platformsync.ShardedMutex

	anchors             []Anchor
	allowVerifierBypass bool
	maxPathDepth        int
}

// New builds the facade over st. The verifier bypass is on by default.
func New(st store.Store, opts ...Option) *Service {
	svc := &Service{
		store:               st,
		tracer:              tracer.NewNoop(),
		logger:              slog.Default(),
		locks:               platformsync.NewShardedMutex(),
		anchors:             DefaultAnchors,
		allowVerifierBypass: true,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.calculator == nil {
		svc.calculator = score.New(score.WithClock(svc.now))
	}
	graphOpts := []graph.Option{graph.WithMaxPathDepth(svc.maxPathDepth)}
	if svc.signer != nil {
		graphOpts = append(graphOpts, graph.WithVerifier(svc.signer))
	}
	svc.graph = graph.New(st, graphOpts...)
	return svc
}

// WithLogger sets the logger instance for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithAuditor sets the audit event sink.
func WithAuditor(a audit.Emitter) Option {
	return func(s *Service) {
		s.auditor = a
	}
}

// WithTracer sets the tracer. Defaults to a no-op tracer.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithSigner enables endorsement signing and chain verification.
func WithSigner(signer Signer) Option {
	return func(s *Service) {
		s.signer = signer
	}
}

// WithCalculator overrides the score calculator.
func WithCalculator(c *score.Calculator) Option {
	return func(s *Service) {
		s.calculator = c
	}
}

// WithClock fixes the time source. Without it, the request time pinned in
// the context is used, falling back to the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithAnchors replaces the default trust anchors. An empty list is ignored.
func WithAnchors(anchors []Anchor) Option {
	return func(s *Service) {
		if len(anchors) > 0 {
			s.anchors = anchors
		}
	}
}

// WithAllowVerifierBypass controls whether a verifier whose own score meets
// the minimum may vouch for a subject it has no endorsement path to.
func WithAllowVerifierBypass(allow bool) Option {
	return func(s *Service) {
		s.allowVerifierBypass = allow
	}
}

// WithMaxPathDepth bounds path finding during verify. Zero means unbounded.
func WithMaxPathDepth(depth int) Option {
	return func(s *Service) {
		if depth >= 0 {
			s.maxPathDepth = depth
		}
	}
}

// Anchors returns the configured trust anchors.
func (s *Service) Anchors() []Anchor {
	out := make([]Anchor, len(s.anchors))
	copy(out, s.anchors)
	return out
}

// SeedAnchors writes every anchor with score 100, status active and no
// endorsements. Existing anchor records are overwritten.
func (s *Service) SeedAnchors(ctx context.Context) (err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanSeedAnchors, tracer.Int("anchors", len(s.anchors)))
	defer func() { span.End(err) }()

	now := s.clock(ctx)
	for _, a := range s.anchors {
		issuer := a.Issuer
		if issuer.IsZero() {
			issuer = a.DID
		}
		rec, err := models.NewTrustRecord(newRecordID(), issuer, a.DID, models.AnchorTrustScore, now)
		if err != nil {
			return err
		}
		if err := s.store.Put(ctx, rec); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to seed trust anchor")
		}
		s.emitAudit(ctx, audit.Event{
			Action:   audit.ActionAnchorSeeded,
			Subject:  a.DID.String(),
			Actor:    issuer.String(),
			Decision: audit.DecisionGranted,
		})
	}
	if s.metrics != nil {
		s.metrics.AddAnchorsSeeded(len(s.anchors))
	}
	s.refreshRecordGauge(ctx)
	s.logger.InfoContext(ctx, "trust anchors seeded", "count", len(s.anchors))
	return nil
}

// Register creates an active record for subject with no endorsements.
// Re-registering replaces the previous record.
func (s *Service) Register(ctx context.Context, issuer, subject models.DID, initialScore int) (rec *models.TrustRecord, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanRegister, tracer.String(tracer.AttrSubject, subject.String()))
	defer func() {
		span.End(err)
		s.observeLatency("register", start)
	}()

	if issuer.IsZero() || subject.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "issuer and subject are required")
	}
	rec, err = models.NewTrustRecord(newRecordID(), issuer, subject, initialScore, s.clock(ctx))
	if err != nil {
		return nil, err
	}

	s.locks.Lock(subject.String())
	err = s.store.Put(ctx, rec)
	s.locks.Unlock(subject.String())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save trust record")
	}

	s.emitAudit(ctx, audit.Event{
		Action:   audit.ActionEntityRegistered,
		Subject:  subject.String(),
		Actor:    issuer.String(),
		Decision: audit.DecisionGranted,
	})
	if s.metrics != nil {
		s.metrics.IncrementRecordsRegistered()
	}
	s.refreshRecordGauge(ctx)
	s.logger.InfoContext(ctx, "trust record registered",
		"subject", subject,
		"issuer", issuer,
		"trust_id", rec.ID,
	)
	return rec, nil
}

// Endorse records an endorsement from endorser to subject. When subject is
// registered the endorsement is appended and its score recomputed; otherwise
// only the endorsement index is written and NewTrustScore is nil.
func (s *Service) Endorse(ctx context.Context, endorser, subject models.DID, level float64, evidence string) (res *models.EndorseResult, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanEndorse,
		tracer.String(tracer.AttrSubject, subject.String()),
		tracer.String(tracer.AttrEndorser, endorser.String()),
		tracer.Float64(tracer.AttrTrustLevel, level),
	)
	defer func() {
		span.End(err)
		s.observeLatency("endorse", start)
	}()

	now := s.clock(ctx)
	e, err := models.NewEndorsement(newEndorsementID(), endorser, subject, level, evidence, now)
	if err != nil {
		return nil, err
	}
	if s.signer != nil {
		sig, err := s.signer.Sign(*e)
		if err != nil {
			return nil, err
		}
		e.Signature = sig
	}

	res = &models.EndorseResult{Endorsement: *e}
	outcome, err := s.writeEndorsement(ctx, *e, now)
	if err != nil {
		return nil, err
	}
	res.NewTrustScore = outcome.score
	if outcome.score != nil {
		span.AddEvent(tracer.EventScoreUpdated, tracer.Int(tracer.AttrTrustScore, *outcome.score))
	}

	s.emitAudit(ctx, audit.Event{
		Action:   audit.ActionEndorsed,
		Subject:  subject.String(),
		Actor:    endorser.String(),
		Decision: audit.DecisionGranted,
		Reason:   outcome.label,
	})
	if s.metrics != nil {
		s.metrics.IncrementEndorsements(outcome.label)
		if res.NewTrustScore != nil {
			s.metrics.ObserveTrustScore(*res.NewTrustScore)
		}
	}
	s.logger.InfoContext(ctx, "endorsement recorded",
		"subject", subject,
		"endorser", endorser,
		"trust_level", level,
		"outcome", outcome.label,
	)
	return res, nil
}

type endorseOutcome struct {
	label string
	score *int
}

// writeEndorsement indexes e, then appends it to the subject's record, under
// the subject lock. A failed index write leaves the record untouched.
func (s *Service) writeEndorsement(ctx context.Context, e models.Endorsement, now time.Time) (endorseOutcome, error) {
	unlock := s.locks.LockKeys(e.Subject.String())
	defer unlock()

	if err := s.store.SaveEndorsement(ctx, e); err != nil {
		return endorseOutcome{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to index endorsement")
	}
	rec, err := store.AppendEndorsement(ctx, s.store, e, s.calculator.Compute, now)
	switch {
	case err == nil:
		score := rec.TrustScore
		return endorseOutcome{label: metrics.EndorsementApplied, score: &score}, nil
	case errors.Is(err, sentinel.ErrNotFound):
		return endorseOutcome{label: metrics.EndorsementOrphaned}, nil
	default:
		return endorseOutcome{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to append endorsement")
	}
}

// Revoke marks subject as revoked on behalf of revoker. The revoker must be
// registered with a score of at least models.RevocationThreshold.
// Endorsements are kept.
func (s *Service) Revoke(ctx context.Context, subject, revoker models.DID, reason string) (res *models.RevokeResult, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanRevoke,
		tracer.String(tracer.AttrSubject, subject.String()),
		tracer.String(tracer.AttrRevoker, revoker.String()),
	)
	defer func() {
		span.End(err)
		s.observeLatency("revoke", start)
	}()

	if subject.IsZero() || revoker.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "subject and revoker are required")
	}

	unlock := s.locks.LockKeys(subject.String(), revoker.String())
	defer unlock()

	if _, err := s.getRecord(ctx, subject, "subject"); err != nil {
		return nil, err
	}
	revokerRec, err := s.getRecord(ctx, revoker, "revoker")
	if err != nil {
		return nil, err
	}

	if revokerRec.TrustScore < models.RevocationThreshold {
		s.emitAudit(ctx, audit.Event{
			Action:   audit.ActionRevokeDenied,
			Subject:  subject.String(),
			Actor:    revoker.String(),
			Decision: audit.DecisionDenied,
			Reason:   "insufficient_trust_score",
		})
		if s.metrics != nil {
			s.metrics.IncrementRevocations(audit.DecisionDenied)
		}
		s.logger.WarnContext(ctx, "revocation denied",
			"subject", subject,
			"revoker", revoker,
			"revoker_score", revokerRec.TrustScore,
		)
		return nil, dErrors.New(dErrors.CodeForbidden,
			fmt.Sprintf("insufficient authority: revoker trust score must be at least %d", models.RevocationThreshold))
	}

	now := s.clock(ctx)
	_, err = s.store.Update(ctx, subject, func(rec *models.TrustRecord) error {
		rec.Revoke(revoker, reason, now)
		return nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "subject not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke trust record")
	}

	s.emitAudit(ctx, audit.Event{
		Action:   audit.ActionRevoked,
		Subject:  subject.String(),
		Actor:    revoker.String(),
		Decision: audit.DecisionGranted,
		Reason:   reason,
	})
	if s.metrics != nil {
		s.metrics.IncrementRevocations(audit.DecisionGranted)
	}
	s.logger.InfoContext(ctx, "trust record revoked",
		"subject", subject,
		"revoker", revoker,
	)
	return &models.RevokeResult{
		Subject:   subject,
		Status:    models.StatusRevoked,
		RevokedBy: revoker,
		Reason:    reason,
		Timestamp: now,
	}, nil
}

// getRecord loads a record, mapping a missing one to a not-found domain error
// that names the role the DID played in the request.
func (s *Service) getRecord(ctx context.Context, did models.DID, role string) (*models.TrustRecord, error) {
	rec, err := s.store.Get(ctx, did)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, role+" not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load trust record")
	}
	return rec, nil
}

func (s *Service) clock(ctx context.Context) time.Time {
	if s.now != nil {
		return s.now()
	}
	return requestcontext.Now(ctx)
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock(ctx)
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"subject", event.Subject,
			"error", err,
		)
	}
}

func (s *Service) observeLatency(operation string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveOperationLatency(operation, time.Since(start).Seconds())
	}
}

func (s *Service) refreshRecordGauge(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	n, err := s.store.Count(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to count trust records", "error", err)
		return
	}
	s.metrics.SetRegisteredRecords(n)
}

func newRecordID() string {
	return fmt.Sprintf("trust_%s", uuid.New().String())
}

func newEndorsementID() string {
	return fmt.Sprintf("end_%s", uuid.New().String())
}
