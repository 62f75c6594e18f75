package pipeline

// limiter.go bounds how many files ProcessFile runs concurrently, adapted
// from the teacher's upload concurrency limiter (the same semaphore
// pattern, generalized from "concurrent uploads" to "concurrent pipeline
// runs") per SPEC_FULL.md §C.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyInFlight is returned when every processing slot is occupied and
// the wait timeout expires.
var ErrTooManyInFlight = errors.New("too many files processing concurrently, please try again later")

// DefaultMaxConcurrentProcessing is the default cap on simultaneous
// ProcessFile runs.
const DefaultMaxConcurrentProcessing = 5

// DefaultMaxWaitTime is how long Acquire waits for a slot before failing.
const DefaultMaxWaitTime = 30 * time.Second

// ProcessingLimiter restricts how many files the orchestrator processes at
// once, independent of the per-file serialization FileLocks provides.
type ProcessingLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewProcessingLimiter builds a limiter allowing at most maxConcurrent
// simultaneous ProcessFile runs.
func NewProcessingLimiter(maxConcurrent int, maxWait time.Duration) *ProcessingLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentProcessing
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &ProcessingLimiter{semaphore: make(chan struct{}, maxConcurrent), maxWait: maxWait}
}

// Acquire blocks until a processing slot is free, the wait times out
// (ErrTooManyInFlight), or ctx is cancelled. Callers must call Release.
func (l *ProcessingLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyInFlight
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a previously acquired slot.
func (l *ProcessingLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()
	<-l.semaphore
}

// LimiterStatus is a snapshot of the limiter's current load.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status reports the limiter's current load.
func (l *ProcessingLimiter) Status() LimiterStatus {
	l.mu.RLock()
	active := l.active
	l.mu.RUnlock()
	return LimiterStatus{
		Active:        active,
		Available:     cap(l.semaphore) - len(l.semaphore),
		MaxConcurrent: cap(l.semaphore),
	}
}
