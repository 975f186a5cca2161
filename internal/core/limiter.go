package core

// limiter.go bounds the number of queries running at once. Every run drains
// its whole result set into memory before mapping, so unbounded concurrency
// turns a burst of requests into a burst of allocations.
//
// When all slots are taken a run waits up to maxWait, then fails with ErrBusy.
// WaitForDrain lets shutdown finish in-flight runs first.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrBusy is returned when no query slot frees up within the wait time.
var ErrBusy = errors.New("too many queries running")

// Limiter defaults.
const (
	DefaultMaxConcurrentQueries = 8
	DefaultQueueWait            = 10 * time.Second
)

// Limiter is a semaphore over query runs.
type Limiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int32
}

// NewLimiter allows at most maxConcurrent runs. Non-positive arguments fall
// back to the defaults.
func NewLimiter(maxConcurrent int, maxWait time.Duration) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentQueries
	}
	if maxWait <= 0 {
		maxWait = DefaultQueueWait
	}
	return &Limiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting up to the limiter's maxWait.
// The caller must call Release once Acquire returns nil.
func (l *Limiter) Acquire(ctx context.Context) error {
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	default:
	}

	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-timer.C:
		return ErrBusy
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot taken by Acquire.
func (l *Limiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// LimiterStatus is a snapshot of a Limiter.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"maxConcurrent"`
}

// Status returns the current limiter state.
func (l *Limiter) Status() LimiterStatus {
	return LimiterStatus{
		Active:        int(l.active.Load()),
		Available:     cap(l.slots) - len(l.slots),
		MaxConcurrent: cap(l.slots),
	}
}

// WaitForDrain blocks until no run holds a slot or ctx ends.
func (l *Limiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for l.active.Load() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
