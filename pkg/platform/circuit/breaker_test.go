package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestBreaker(t *testing.T) {
	newBreaker := func() (*Breaker, *fakeClock) {
		clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
		return New("responder", WithFailureThreshold(2), WithCooldown(time.Minute), WithClock(clock.now)), clock
	}

	t.Run("opens after consecutive failures", func(t *testing.T) {
		b, _ := newBreaker()
		assert.True(t, b.Allow())
		assert.False(t, b.RecordFailure().Opened)
		assert.True(t, b.RecordFailure().Opened)
		assert.Equal(t, StateOpen, b.State())
		assert.False(t, b.Allow())
	})

	t.Run("success resets the failure streak", func(t *testing.T) {
		b, _ := newBreaker()
		b.RecordFailure()
		b.RecordSuccess()
		b.RecordFailure()
		assert.Equal(t, StateClosed, b.State())
	})

	t.Run("single probe after cooldown", func(t *testing.T) {
		b, clock := newBreaker()
		b.RecordFailure()
		b.RecordFailure()

		clock.advance(time.Minute)
		assert.True(t, b.Allow())
		assert.Equal(t, StateHalfOpen, b.State())
		assert.False(t, b.Allow(), "only one probe at a time")

		assert.True(t, b.RecordSuccess().Closed)
		assert.True(t, b.Allow())
	})

	t.Run("failed probe re-opens", func(t *testing.T) {
		b, clock := newBreaker()
		b.RecordFailure()
		b.RecordFailure()
		clock.advance(time.Minute)
		assert.True(t, b.Allow())

		b.RecordFailure()
		assert.Equal(t, StateOpen, b.State())
		assert.False(t, b.Allow())
	})
}
