package stream

import (
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Default reconnect schedule: 1, 2, 4, 8, 10, 10, ... units.
const (
	DefaultBackoffUnit     = time.Second
	DefaultBackoffMaxUnits = 10
)

// ReconnectPolicy yields the delay before each reconnect attempt.
// The delay doubles per consecutive failure and is capped. Reset is called on every successful open.
type ReconnectPolicy struct {
	mu       sync.Mutex
	backoff  *backoff.ExponentialBackOff
	attempts int
}

// NewReconnectPolicy creates a policy starting at unit and capped at maxUnits * unit.
func NewReconnectPolicy(unit time.Duration, maxUnits int) *ReconnectPolicy {
	if unit <= 0 {
		unit = DefaultBackoffUnit
	}

	if maxUnits <= 0 {
		maxUnits = DefaultBackoffMaxUnits
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = unit
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = unit * time.Duration(maxUnits)
	b.Reset()

	return &ReconnectPolicy{
		mu:       sync.Mutex{},
		backoff:  b,
		attempts: 0,
	}
}

// Next records a failure and returns the attempt number and the delay to wait before it.
func (p *ReconnectPolicy) Next() (int, time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.attempts++

	return p.attempts, p.backoff.NextBackOff()
}

// Reset clears the failure counter and restarts the schedule at one unit.
func (p *ReconnectPolicy) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.attempts = 0
	p.backoff.Reset()
}

// Attempts returns the number of consecutive failures since the last Reset.
func (p *ReconnectPolicy) Attempts() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.attempts
}
