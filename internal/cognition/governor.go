package cognition

import (
	"math"
	"sync"
	"time"
)

// Throttle tuning. The safe limit keeps a 15% headroom under the configured
// maximum; the interval formula adds a 50% safety margin on top of the
// nominal per-call spacing.
const (
	ThrottleWindow       = time.Minute
	SafeLimitRatio       = 0.85
	ConservativeInterval = 8 * time.Second
	MinInterval          = 5 * time.Second
	IntervalMargin       = 1.5
	AdaptiveStretch      = 1.5
)

// ThrottleConfig is the reloadable throttle document.
type ThrottleConfig struct {
	Enabled       bool    `json:"enabled"`
	MaxPerMinute  int     `json:"max_per_minute"`
	Unlimited     bool    `json:"unlimited"`
	Adaptive      bool    `json:"adaptive"`
	PerfThreshold float64 `json:"perf_threshold"`
}

// DefaultThrottleConfig returns the conservative fallback used when the
// config source is missing or malformed.
func DefaultThrottleConfig() ThrottleConfig {
	return ThrottleConfig{
		Enabled:       true,
		MaxPerMinute:  6,
		Adaptive:      true,
		PerfThreshold: 0.3,
	}
}

// ThrottleGovernor is a rolling-window rate limiter deciding whether a new
// thought/interaction may be produced. Purely advisory; it never blocks.
type ThrottleGovernor struct {
	mu                 sync.Mutex
	cfg                ThrottleConfig
	attempts           []time.Time
	thinkInterval      time.Duration
	minThoughtInterval time.Duration
	stretched          bool
}

// NewThrottleGovernor derives intervals from cfg.
func NewThrottleGovernor(cfg ThrottleConfig) *ThrottleGovernor {
	g := &ThrottleGovernor{attempts: make([]time.Time, 0, 32)}
	g.Reconfigure(cfg)
	return g
}

// Reconfigure swaps the config and re-derives intervals. Called on every
// config reload; the rolling attempt list is kept.
func (g *ThrottleGovernor) Reconfigure(cfg ThrottleConfig) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cfg = cfg
	if !cfg.Enabled || cfg.Unlimited || cfg.MaxPerMinute <= 0 {
		g.thinkInterval = ConservativeInterval
		g.minThoughtInterval = ConservativeInterval
		return
	}
	iv := time.Duration(math.Floor(60000.0/float64(cfg.MaxPerMinute)*IntervalMargin)) * time.Millisecond
	if iv < MinInterval {
		iv = MinInterval
	}
	g.thinkInterval = iv
	g.minThoughtInterval = iv
	if g.stretched {
		g.thinkInterval = time.Duration(float64(iv) * AdaptiveStretch)
	}
}

// Config returns the current config.
func (g *ThrottleGovernor) Config() ThrottleConfig {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cfg
}

// ThinkInterval returns the derived thinking-tick spacing.
func (g *ThrottleGovernor) ThinkInterval() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.thinkInterval
}

// MinThoughtInterval returns the derived minimum gap between thoughts.
func (g *ThrottleGovernor) MinThoughtInterval() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.minThoughtInterval
}

// SafeLimit returns floor(maxPerMinute * 0.85), the attempt ceiling per window.
func (g *ThrottleGovernor) SafeLimit() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.safeLimitLocked()
}

func (g *ThrottleGovernor) safeLimitLocked() int {
	return int(float64(g.cfg.MaxPerMinute) * SafeLimitRatio)
}

// ShouldThrottle prunes attempts older than the window and reports whether
// the safe limit is reached.
func (g *ThrottleGovernor) ShouldThrottle(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.cfg.Enabled || g.cfg.Unlimited {
		return false
	}
	g.pruneLocked(now)
	return len(g.attempts) >= g.safeLimitLocked()
}

// RecordAttempt appends now to the rolling list. Every production attempt,
// successful or not, must go through here exactly once.
func (g *ThrottleGovernor) RecordAttempt(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.attempts = append(g.attempts, now)
	g.pruneLocked(now)
}

// AttemptsInWindow returns the pruned attempt count.
func (g *ThrottleGovernor) AttemptsInWindow(now time.Time) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pruneLocked(now)
	return len(g.attempts)
}

// Adapt stretches the think interval while efficiency stays under the
// configured threshold, and relaxes it back once it recovers. No-op unless
// the config is adaptive.
func (g *ThrottleGovernor) Adapt(efficiency float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.cfg.Adaptive || !g.cfg.Enabled || g.cfg.Unlimited {
		return
	}
	low := efficiency < g.cfg.PerfThreshold
	if low == g.stretched {
		return
	}
	g.stretched = low
	if low {
		g.thinkInterval = time.Duration(float64(g.minThoughtInterval) * AdaptiveStretch)
	} else {
		g.thinkInterval = g.minThoughtInterval
	}
}

func (g *ThrottleGovernor) pruneLocked(now time.Time) {
	cut := now.Add(-ThrottleWindow)
	kept := g.attempts[:0]
	for _, t := range g.attempts {
		if t.After(cut) {
			kept = append(kept, t)
		}
	}
	g.attempts = kept
}
