package crawl

import (
	"math/rand"
	"time"
)

// Pacer returns how long to wait before the next page fetch.
type Pacer interface {
	Next() time.Duration
}

// UniformPacer draws a delay uniformly from [Min, Max].
type UniformPacer struct {
	Min, Max time.Duration
	// Rand is used when set, otherwise the global source.
	Rand *rand.Rand
}

// NewUniformPacer builds a pacer from bounds in seconds.
func NewUniformPacer(minSeconds, maxSeconds float64) (UniformPacer, error) {
	p := UniformPacer{
		Min: time.Duration(minSeconds * float64(time.Second)),
		Max: time.Duration(maxSeconds * float64(time.Second)),
	}
	return p, p.Validate()
}

func (p UniformPacer) Validate() error {
	if p.Min < 0 || p.Max < 0 {
		return &ValidationError{Field: "delay", Reason: "bounds must be non-negative"}
	}
	if p.Min > p.Max {
		return &ValidationError{Field: "delay", Reason: "min must be <= max"}
	}
	return nil
}

func (p UniformPacer) Next() time.Duration {
	span := p.Max - p.Min
	if span <= 0 {
		return p.Min
	}
	if p.Rand != nil {
		return p.Min + time.Duration(p.Rand.Int63n(int64(span)+1))
	}
	return p.Min + time.Duration(rand.Int63n(int64(span)+1))
}

// FixedPacer always waits the same duration. The zero value never waits.
type FixedPacer time.Duration

func (p FixedPacer) Next() time.Duration {
	return time.Duration(p)
}
