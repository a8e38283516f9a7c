package cognition

import (
	"strings"
	"sync"
	"time"
	"unicode"
)

// Dedup tuning. The hash set is a best-effort near-duplicate guard: missed
// duplicates are acceptable, wrongly suppressed novel content is not, so
// the similarity threshold stays high.
const (
	DedupMaxHashes           = 100
	DedupTrimTo              = 50
	DedupSimilarityThreshold = 0.8
	DedupRecentWindow        = time.Hour
)

// TimedText pairs already-produced content with its creation time, for the
// trailing-window similarity check.
type TimedText struct {
	Content string
	At      time.Time
}

// DeduplicationFilter suppresses near-identical content within a trailing
// time window. Hash collisions between near-duplicates are intentional.
type DeduplicationFilter struct {
	mu    sync.Mutex
	order []uint32
	seen  map[uint32]struct{}
}

// NewDeduplicationFilter returns an empty filter.
func NewDeduplicationFilter() *DeduplicationFilter {
	return &DeduplicationFilter{
		order: make([]uint32, 0, DedupMaxHashes),
		seen:  make(map[uint32]struct{}, DedupMaxHashes),
	}
}

// NormalizeText lowercases, strips punctuation and collapses whitespace.
func NormalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		default:
			space = true
		}
	}
	return b.String()
}

// HashText computes a rolling polynomial hash over the normalized text.
// 32-bit overflow wrap is deliberate.
func HashText(s string) uint32 {
	var h uint32
	for _, r := range NormalizeText(s) {
		h = h*31 + uint32(r)
	}
	return h
}

// BigramSimilarity returns the character-bigram Jaccard index of the two
// normalized texts, in [0,1].
func BigramSimilarity(a, b string) float64 {
	ba := bigrams(NormalizeText(a))
	bb := bigrams(NormalizeText(b))
	if len(ba) == 0 && len(bb) == 0 {
		return 1
	}
	if len(ba) == 0 || len(bb) == 0 {
		return 0
	}
	var inter int
	for g := range ba {
		if _, ok := bb[g]; ok {
			inter++
		}
	}
	union := len(ba) + len(bb) - inter
	return float64(inter) / float64(union)
}

func bigrams(s string) map[string]struct{} {
	r := []rune(s)
	out := make(map[string]struct{}, len(r))
	for i := 0; i+1 < len(r); i++ {
		out[string(r[i:i+2])] = struct{}{}
	}
	return out
}

// IsDuplicate reports whether candidate collides with a previously seen
// hash, or is >threshold similar to any recent content inside the window.
func (f *DeduplicationFilter) IsDuplicate(candidate string, recent []TimedText, now time.Time) bool {
	h := HashText(candidate)
	f.mu.Lock()
	_, hit := f.seen[h]
	f.mu.Unlock()
	if hit {
		return true
	}
	cut := now.Add(-DedupRecentWindow)
	for _, r := range recent {
		if r.At.Before(cut) {
			continue
		}
		if BigramSimilarity(candidate, r.Content) > DedupSimilarityThreshold {
			return true
		}
	}
	return false
}

// Remember records candidate's hash. On overflow the set is trimmed to the
// most recent entries, discarding the oldest.
func (f *DeduplicationFilter) Remember(candidate string) {
	h := HashText(candidate)
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.seen[h]; ok {
		return
	}
	f.order = append(f.order, h)
	f.seen[h] = struct{}{}
	if len(f.order) > DedupMaxHashes {
		drop := f.order[:len(f.order)-DedupTrimTo]
		for _, old := range drop {
			delete(f.seen, old)
		}
		kept := make([]uint32, DedupTrimTo)
		copy(kept, f.order[len(f.order)-DedupTrimTo:])
		f.order = kept
	}
}

// Size returns the current hash-set size.
func (f *DeduplicationFilter) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}
