package cognition

import (
	"sync"
	"time"
)

// EmotionDecayPerSecond — intensity drifts toward the baseline over time.
const EmotionDecayPerSecond = 0.002

// DecayingEmotionProvider is the default emotion source: the host sets a
// mood, intensity decays toward a resting baseline between reads.
type DecayingEmotionProvider struct {
	mu        sync.Mutex
	label     string
	intensity float64
	baseline  float64
	updatedAt time.Time
	now       func() time.Time
}

// NewDecayingEmotionProvider starts neutral at the given baseline intensity.
func NewDecayingEmotionProvider(baseline float64, now func() time.Time) *DecayingEmotionProvider {
	if now == nil {
		now = time.Now
	}
	return &DecayingEmotionProvider{
		label:     "neutral",
		intensity: clamp01(baseline),
		baseline:  clamp01(baseline),
		updatedAt: now(),
		now:       now,
	}
}

// Set overrides the current mood.
func (p *DecayingEmotionProvider) Set(label string, intensity float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.label = label
	p.intensity = clamp01(intensity)
	p.updatedAt = p.now()
}

// Current returns the decayed mood snapshot. Read-only, no side effects
// beyond folding the elapsed decay into the stored intensity.
func (p *DecayingEmotionProvider) Current() EmotionState {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	sec := now.Sub(p.updatedAt).Seconds()
	if sec > 0 {
		drift := EmotionDecayPerSecond * sec
		if p.intensity > p.baseline {
			p.intensity = maxf(p.baseline, p.intensity-drift)
		} else if p.intensity < p.baseline {
			p.intensity = minf(p.baseline, p.intensity+drift)
		}
		p.updatedAt = now
	}
	label := p.label
	if p.intensity == p.baseline {
		label = "neutral"
	}
	return EmotionState{Label: label, Intensity: p.intensity}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
