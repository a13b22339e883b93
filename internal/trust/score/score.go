// Package score computes recency-weighted trust scores from endorsements.
package score

import (
	"math"
	"time"

	"trustgraph/internal/trust/models"
)

// DefaultDecay is the e-folding time of an endorsement's weight.
const DefaultDecay = 365 * 24 * time.Hour

// Calculator derives a TrustRecord's score from its endorsements. Each
// endorsement is weighted by exp(-age/decay) so recent endorsements dominate.
type Calculator struct {
	now   func() time.Time
	decay time.Duration
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithClock sets the time source used to age endorsements.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithDecay overrides the decay constant. Non-positive values are ignored.
func WithDecay(d time.Duration) Option {
	return func(c *Calculator) {
		if d > 0 {
			c.decay = d
		}
	}
}

// New creates a Calculator with a one-year decay and the wall clock.
func New(opts ...Option) *Calculator {
	c := &Calculator{
		now:   time.Now,
		decay: DefaultDecay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Weight returns exp(-age/decay). Negative ages count as zero.
func (c *Calculator) Weight(age time.Duration) float64 {
	if age < 0 {
		age = 0
	}
	return math.Exp(-age.Seconds() / c.decay.Seconds())
}

// Compute returns round(Σ level·w / Σ w) over the endorsements, or 0 when
// there are none. If every weight underflows the plain mean is used.
func (c *Calculator) Compute(endorsements []models.Endorsement) int {
	if len(endorsements) == 0 {
		return 0
	}
	now := c.now()

	var weighted, total, sum float64
	for _, e := range endorsements {
		w := c.Weight(now.Sub(e.Timestamp))
		weighted += e.TrustLevel * w
		total += w
		sum += e.TrustLevel
	}

	var raw float64
	if total > 0 {
		raw = weighted / total
	} else {
		raw = sum / float64(len(endorsements))
	}
	return clamp(int(math.Round(raw)))
}

// Mean returns the unweighted average trust level, or 0 when empty.
func Mean(endorsements []models.Endorsement) float64 {
	if len(endorsements) == 0 {
		return 0
	}
	var sum float64
	for _, e := range endorsements {
		sum += e.TrustLevel
	}
	return sum / float64(len(endorsements))
}

func clamp(v int) int {
	if v < models.MinTrustLevel {
		return models.MinTrustLevel
	}
	if v > models.MaxTrustLevel {
		return models.MaxTrustLevel
	}
	return v
}
