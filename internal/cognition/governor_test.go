package cognition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGovernorIntervalDerivation(t *testing.T) {
	g := NewThrottleGovernor(ThrottleConfig{Enabled: true, MaxPerMinute: 6})
	assert.Equal(t, 15*time.Second, g.ThinkInterval())
	assert.Equal(t, 15*time.Second, g.MinThoughtInterval())

	// high budget clamps to the floor
	g.Reconfigure(ThrottleConfig{Enabled: true, MaxPerMinute: 100})
	assert.Equal(t, MinInterval, g.ThinkInterval())

	// disabled and unlimited both fall back to the conservative interval
	g.Reconfigure(ThrottleConfig{Enabled: false})
	assert.Equal(t, ConservativeInterval, g.ThinkInterval())
	g.Reconfigure(ThrottleConfig{Enabled: true, Unlimited: true})
	assert.Equal(t, ConservativeInterval, g.ThinkInterval())
}

func TestGovernorSafeLimit(t *testing.T) {
	g := NewThrottleGovernor(ThrottleConfig{Enabled: true, MaxPerMinute: 6})
	require.Equal(t, 5, g.SafeLimit())

	now := time.Now()
	for i := 0; i < 4; i++ {
		g.RecordAttempt(now.Add(time.Duration(i) * time.Second))
	}
	assert.False(t, g.ShouldThrottle(now.Add(5*time.Second)))

	g.RecordAttempt(now.Add(5 * time.Second))
	assert.True(t, g.ShouldThrottle(now.Add(6*time.Second)))
}

func TestGovernorWindowPruning(t *testing.T) {
	g := NewThrottleGovernor(ThrottleConfig{Enabled: true, MaxPerMinute: 6})
	now := time.Now()
	for i := 0; i < 5; i++ {
		g.RecordAttempt(now)
	}
	require.True(t, g.ShouldThrottle(now))

	// the same attempts fall out of the rolling window
	later := now.Add(ThrottleWindow + time.Second)
	assert.False(t, g.ShouldThrottle(later))
	assert.Equal(t, 0, g.AttemptsInWindow(later))
}

func TestGovernorUnlimitedNeverThrottles(t *testing.T) {
	g := NewThrottleGovernor(ThrottleConfig{Enabled: true, Unlimited: true, MaxPerMinute: 1})
	now := time.Now()
	for i := 0; i < 50; i++ {
		g.RecordAttempt(now)
	}
	assert.False(t, g.ShouldThrottle(now))
}

func TestGovernorAdaptStretch(t *testing.T) {
	g := NewThrottleGovernor(ThrottleConfig{Enabled: true, MaxPerMinute: 6, Adaptive: true, PerfThreshold: 0.3})
	base := g.MinThoughtInterval()

	g.Adapt(0.1)
	assert.Equal(t, time.Duration(float64(base)*AdaptiveStretch), g.ThinkInterval())

	// recovery relaxes back to the derived interval
	g.Adapt(0.9)
	assert.Equal(t, base, g.ThinkInterval())

	// non-adaptive config ignores efficiency
	g.Reconfigure(ThrottleConfig{Enabled: true, MaxPerMinute: 6})
	g.Adapt(0.0)
	assert.Equal(t, base, g.ThinkInterval())
}

func TestGovernorReconfigureKeepsAttempts(t *testing.T) {
	g := NewThrottleGovernor(ThrottleConfig{Enabled: true, MaxPerMinute: 6})
	now := time.Now()
	g.RecordAttempt(now)
	g.RecordAttempt(now)
	g.Reconfigure(ThrottleConfig{Enabled: true, MaxPerMinute: 12})
	assert.Equal(t, 2, g.AttemptsInWindow(now))
}
