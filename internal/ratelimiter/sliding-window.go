package ratelimiter

import (
	"context"
	"time"
)

type Config struct {
	RequestsPerWindow int
	Window            time.Duration
	Enabled           bool
}

// Limiter decides whether a source address may submit right now. The second
// return value is how long to wait when refused.
type Limiter interface {
	Allow(ctx context.Context, sourceIP string) (bool, time.Duration, error)
}

// EventLog is the durable submission log backing the sliding window. Reserve
// must prune, count and append atomically per address.
type EventLog interface {
	Reserve(ctx context.Context, sourceIP string, limit int, window time.Duration) (bool, time.Duration, error)
}

// SlidingWindowLimiter caps submissions per source address within a trailing
// window. State lives entirely in the event log, so the limit holds across
// process restarts and across concurrently serving processes.
type SlidingWindowLimiter struct {
	events EventLog
	config Config
}

func NewSlidingWindowLimiter(events EventLog, config Config) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		events: events,
		config: config,
	}
}

func (rl *SlidingWindowLimiter) Allow(ctx context.Context, sourceIP string) (bool, time.Duration, error) {
	if !rl.config.Enabled {
		return true, 0, nil
	}
	return rl.events.Reserve(ctx, sourceIP, rl.config.RequestsPerWindow, rl.config.Window)
}
