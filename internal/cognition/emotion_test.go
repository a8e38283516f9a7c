package cognition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEmotionDecayTowardBaseline(t *testing.T) {
	cur := time.Now()
	now := func() time.Time { return cur }
	p := NewDecayingEmotionProvider(0.2, now)

	p.Set("curious", 0.8)
	cur = cur.Add(100 * time.Second) // drift = 0.2
	got := p.Current()
	assert.Equal(t, "curious", got.Label)
	assert.InDelta(t, 0.6, got.Intensity, 1e-9)

	// decay never crosses the baseline
	cur = cur.Add(10 * time.Hour)
	got = p.Current()
	assert.Equal(t, "neutral", got.Label)
	assert.InDelta(t, 0.2, got.Intensity, 1e-9)
}

func TestEmotionSetClamps(t *testing.T) {
	p := NewDecayingEmotionProvider(0.2, nil)
	p.Set("elated", 3.0)
	assert.LessOrEqual(t, p.Current().Intensity, 1.0)
}
