package gateway

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errOutage = errors.New("outage")

func TestCircuitBreakerLifecycle(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("test", 2, time.Minute, func(err error) bool {
		return errors.Is(err, errOutage)
	})
	cb.now = func() time.Time { return now }

	// failures that are not outages never trip the breaker
	for i := 0; i < 5; i++ {
		_ = cb.Call(func() error { return errors.New("bad input") })
	}
	assert.Equal(t, StateClosed, cb.State())

	_ = cb.Call(func() error { return errOutage })
	assert.Equal(t, StateClosed, cb.State())
	_ = cb.Call(func() error { return errOutage })
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Call(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	now = now.Add(2 * time.Minute)
	assert.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreakerReopensFromHalfOpen(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("test", 1, time.Minute, nil)
	cb.now = func() time.Time { return now }

	_ = cb.Call(func() error { return errOutage })
	assert.Equal(t, StateOpen, cb.State())

	now = now.Add(2 * time.Minute)
	_ = cb.Call(func() error { return errOutage })
	assert.Equal(t, StateOpen, cb.State())
	assert.ErrorIs(t, cb.Call(func() error { return nil }), ErrCircuitOpen)
}
