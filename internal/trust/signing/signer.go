// Package signing seals endorsements with a registry-held HMAC key.
//
// The signature attests that the registry recorded the tuple
// (endorser, subject, trust level, creation instant). It does not prove
// that the endorser holds any key of its own.
package signing

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"trustgraph/internal/trust/models"
	dErrors "trustgraph/pkg/domain-errors"
)

// DefaultIssuer is the iss claim stamped on endorsement tokens.
const DefaultIssuer = "trust-registry"

// EndorsementClaims are the JWT claims binding an endorsement.
// Subject is the endorsed DID and ID is the endorsement id.
type EndorsementClaims struct {
	Endorser   string  `json:"endorser"`
	TrustLevel float64 `json:"trust_level"`
	jwt.RegisteredClaims
}

// Signer creates and checks HS256 endorsement tokens.
type Signer struct {
	key    []byte
	issuer string
}

// Option configures a Signer.
type Option func(*Signer)

// WithIssuer overrides the iss claim.
func WithIssuer(issuer string) Option {
	return func(s *Signer) {
		if issuer != "" {
			s.issuer = issuer
		}
	}
}

// New creates a Signer. The key must not be empty.
func New(key string, opts ...Option) (*Signer, error) {
	if key == "" {
		return nil, errors.New("signing key is required")
	}
	s := &Signer{key: []byte(key), issuer: DefaultIssuer}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sign returns the compact token for e.
func (s *Signer) Sign(e models.Endorsement) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, EndorsementClaims{
		Endorser:   e.Endorser.String(),
		TrustLevel: e.TrustLevel,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   s.issuer,
			Subject:  e.Subject.String(),
			IssuedAt: jwt.NewNumericDate(e.Timestamp),
			ID:       e.ID,
		},
	})
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign endorsement")
	}
	return signed, nil
}

// Verify checks that e.Signature is intact and that its claims match e.
func (s *Signer) Verify(e models.Endorsement) error {
	if e.Signature == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "endorsement is unsigned")
	}

	claims := new(EndorsementClaims)
	_, err := jwt.ParseWithClaims(e.Signature, claims, func(t *jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return dErrors.New(dErrors.CodeInvalidInput, "invalid endorsement signature")
		}
		return dErrors.New(dErrors.CodeInvalidInput, "endorsement signature parse failed")
	}

	if claims.Issuer != s.issuer {
		return dErrors.New(dErrors.CodeInvalidInput, "endorsement signed by another registry")
	}
	if claims.ID != e.ID ||
		claims.Subject != e.Subject.String() ||
		claims.Endorser != e.Endorser.String() ||
		claims.TrustLevel != e.TrustLevel {
		return dErrors.New(dErrors.CodeInvalidInput, "endorsement does not match its signature")
	}
	if claims.IssuedAt == nil || !claims.IssuedAt.Time.Equal(e.Timestamp.Truncate(jwt.TimePrecision)) {
		return dErrors.New(dErrors.CodeInvalidInput, "endorsement timestamp does not match its signature")
	}
	return nil
}
