package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEventLog struct {
	calls  int
	ip     string
	limit  int
	window time.Duration

	allowed    bool
	retryAfter time.Duration
	err        error
}

func (l *recordingEventLog) Reserve(_ context.Context, sourceIP string, limit int, window time.Duration) (bool, time.Duration, error) {
	l.calls++
	l.ip = sourceIP
	l.limit = limit
	l.window = window
	return l.allowed, l.retryAfter, l.err
}

func TestSlidingWindowLimiter_Allow(t *testing.T) {
	cfg := Config{RequestsPerWindow: 3, Window: time.Hour, Enabled: true}

	t.Run("delegates to the durable event log", func(t *testing.T) {
		log := &recordingEventLog{allowed: true}
		rl := NewSlidingWindowLimiter(log, cfg)

		allowed, retryAfter, err := rl.Allow(context.Background(), "203.0.113.9")
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Zero(t, retryAfter)
		assert.Equal(t, 1, log.calls)
		assert.Equal(t, "203.0.113.9", log.ip)
		assert.Equal(t, 3, log.limit)
		assert.Equal(t, time.Hour, log.window)
	})

	t.Run("passes a refusal through", func(t *testing.T) {
		log := &recordingEventLog{allowed: false, retryAfter: 10 * time.Minute}
		rl := NewSlidingWindowLimiter(log, cfg)

		allowed, retryAfter, err := rl.Allow(context.Background(), "203.0.113.9")
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Equal(t, 10*time.Minute, retryAfter)
	})

	t.Run("disabled limiter never consults the log", func(t *testing.T) {
		log := &recordingEventLog{}
		rl := NewSlidingWindowLimiter(log, Config{RequestsPerWindow: 3, Window: time.Hour, Enabled: false})

		allowed, _, err := rl.Allow(context.Background(), "203.0.113.9")
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Zero(t, log.calls)
	})
}
