// Package tracer provides a small tracing abstraction for the trust module.
//
// Service code depends on the Tracer interface only, so traces can be sent
// through OpenTelemetry in production and dropped in tests.
//
// Implementations:
//   - NoopTracer: for tests
//   - OTelTracer: OpenTelemetry adapter
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks the span as failed.
	// End must be called exactly once, typically via defer.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	SetAttributes(attrs ...Attribute)

	// AddEvent records a timestamped event within the span.
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a span and returns a context carrying it.
	//
	// Example:
	//   ctx, span := tracer.Start(ctx, tracer.SpanEndorse,
	//       tracer.String(tracer.AttrSubject, subject.String()),
	//   )
	//   defer func() { span.End(err) }()
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int creates an int attribute.
func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int64 creates an int64 attribute.
func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Float64 creates a float64 attribute.
func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names used by the trust module.
const (
	SpanSeedAnchors = "trust.seed_anchors"
	SpanRegister    = "trust.register"
	SpanEndorse     = "trust.endorse"
	SpanRevoke      = "trust.revoke"
	SpanVerify      = "trust.verify"
	SpanSearch      = "trust.search"
	SpanGetEntity   = "trust.get_entity"
	SpanGetChain    = "trust.get_chain"
	SpanFindPath    = "trust.graph.find_path"
)

// Attribute keys used by the trust module.
const (
	AttrSubject      = "trust.subject"
	AttrEndorser     = "trust.endorser"
	AttrRevoker      = "trust.revoker"
	AttrVerifier     = "trust.verifier"
	AttrTrustLevel   = "trust.level"
	AttrTrustScore   = "trust.score"
	AttrMinimumScore = "trust.minimum_score"
	AttrVerified     = "trust.verified"
	AttrViaVerifier  = "trust.via_verifier"
	AttrPathLength   = "trust.path_length"
	AttrChainLinks   = "trust.chain_links"
	AttrMaxDepth     = "trust.max_depth"
	AttrResultCount  = "trust.result_count"
)

// Event names used by the trust module.
const (
	EventAuditEmitted = "audit.emitted"
	EventScoreUpdated = "score.updated"
)
