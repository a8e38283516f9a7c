package cognition

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cerebrum/internal/ai"
	"cerebrum/pkg/retrylimit"
)

// recentThoughtContext caps how many prior thoughts feed the prompt.
const recentThoughtContext = 5

// CategoryWeight is one row of the weighted selection table.
type CategoryWeight struct {
	Category ThoughtCategory
	Weight   int
}

// CategoryWeights returns the selection table for an awareness level.
// Pondering and reflection are always reachable; questions, analysis and
// goal creation unlock as awareness grows.
func CategoryWeights(awareness float64) []CategoryWeight {
	table := []CategoryWeight{
		{CategoryPondering, 30},
		{CategoryReflection, 25},
	}
	if awareness >= 0.3 {
		table = append(table, CategoryWeight{CategoryQuestion, 20})
	}
	if awareness >= 0.5 {
		table = append(table, CategoryWeight{CategoryAnalysis, 15})
	}
	if awareness >= 0.7 {
		table = append(table, CategoryWeight{CategoryGoalCreation, 10})
	}
	return table
}

// ThoughtProducer chooses a thought category, asks the oracle for content
// and commits the result through the dedup filter and persistence queue.
type ThoughtProducer struct {
	oracle   ai.Provider
	limiter  *retrylimit.AdaptiveLimiter
	emotions EmotionProvider
	dedup    *DeduplicationFilter
	memory   *WorkingMemory
	store    ConversationStore
	persist  *PersistQueue

	rngMu sync.Mutex
	rng   *rand.Rand

	log        zerolog.Logger
	onGoalIdea func(title, description string)
}

// NewThoughtProducer wires the producer. The RNG is injected so tests can
// seed category selection; onGoalIdea may be nil.
func NewThoughtProducer(
	oracle ai.Provider,
	limiter *retrylimit.AdaptiveLimiter,
	emotions EmotionProvider,
	dedup *DeduplicationFilter,
	memory *WorkingMemory,
	store ConversationStore,
	persist *PersistQueue,
	rng *rand.Rand,
	log zerolog.Logger,
) *ThoughtProducer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &ThoughtProducer{
		oracle:   oracle,
		limiter:  limiter,
		emotions: emotions,
		dedup:    dedup,
		memory:   memory,
		store:    store,
		persist:  persist,
		rng:      rng,
		log:      log,
	}
}

// SetOnGoalIdea registers the callback fired when a goal_creation thought
// lands (the lifecycle manager turns it into a pending autonomous goal).
func (p *ThoughtProducer) SetOnGoalIdea(f func(title, description string)) {
	p.onGoalIdea = f
}

// PickCategory samples the weighted table for the given awareness level.
func (p *ThoughtProducer) PickCategory(awareness float64) ThoughtCategory {
	table := CategoryWeights(awareness)
	total := 0
	for _, cw := range table {
		total += cw.Weight
	}
	p.rngMu.Lock()
	n := p.rng.Intn(total)
	p.rngMu.Unlock()
	for _, cw := range table {
		n -= cw.Weight
		if n < 0 {
			return cw.Category
		}
	}
	return table[len(table)-1].Category
}

// Produce runs one production cycle for the chosen category. A detected
// duplicate is discarded silently (produced=false, nil error); an oracle
// failure abandons the cycle with no side effects.
func (p *ThoughtProducer) Produce(ctx context.Context, category ThoughtCategory, now time.Time, sinceActivity time.Duration) (bool, error) {
	messages := p.buildMessages(category, sinceActivity)
	params := ai.Params{Temperature: 0.9}

	content, err := ai.GenerateWithRetry(ctx, p.oracle, p.limiter, messages, params)
	if err != nil {
		return false, fmt.Errorf("oracle generate: %w", err)
	}

	if p.dedup.IsDuplicate(content, p.memory.RecentInteractionTexts(), now) {
		p.log.Debug().Err(ErrDuplicate).Str("action", "dedup").Str("category", string(category)).Msg(previewForLog(content))
		return false, nil
	}
	p.dedup.Remember(content)

	emo := p.emotions.Current()
	if category == CategoryQuestion {
		rec := InteractionRecord{
			ID:               uuid.NewString(),
			Kind:             InteractionQuestion,
			Content:          content,
			Emotion:          emo.Label,
			EmotionIntensity: emo.Intensity,
			Priority:         interactionPriority(emo.Intensity),
			RequiresResponse: true,
			CreatedAt:        now,
		}
		p.memory.AddInteraction(rec)
		p.persist.Enqueue("interaction", func() error { return p.store.SaveInteraction(rec) })
		p.log.Info().Str("action", "interact").Str("kind", string(rec.Kind)).Int("priority", rec.Priority).Msg(previewForLog(content))
		return true, nil
	}

	rec := ThoughtRecord{
		ID:              uuid.NewString(),
		Category:        category,
		Content:         content,
		CreatedAt:       now,
		Emotion:         emo.Label,
		Priority:        thoughtPriority(emo.Intensity),
		RelatedConcepts: relatedConcepts(content),
	}
	p.memory.AddThought(rec)
	p.persist.Enqueue("thought", func() error { return p.store.SaveThought(rec) })
	p.log.Info().Str("action", "think").Str("category", string(category)).Int("priority", rec.Priority).Msg(previewForLog(content))

	if category == CategoryGoalCreation && p.onGoalIdea != nil {
		p.onGoalIdea(goalTitleFromThought(content), content)
	}
	return true, nil
}

// buildMessages assembles the oracle prompt from current emotion, recent
// thoughts and time since the last user action.
func (p *ThoughtProducer) buildMessages(category ThoughtCategory, sinceActivity time.Duration) []ai.Message {
	emo := p.emotions.Current()

	var b strings.Builder
	b.WriteString("You are the background inner voice of a conversational agent. ")
	b.WriteString(categoryInstruction(category))
	b.WriteString(" One or two sentences only. No preamble, no quotes.")

	var u strings.Builder
	fmt.Fprintf(&u, "mood=%s intensity=%.2f idle_for=%s category=%s\n", emo.Label, emo.Intensity, sinceActivity.Round(time.Second), category)
	recent := p.memory.RecentThoughts(recentThoughtContext)
	if len(recent) > 0 {
		u.WriteString("Recent thoughts:\n")
		for _, t := range recent {
			u.WriteString("- ")
			u.WriteString(t.Content)
			u.WriteString("\n")
		}
	}

	return []ai.Message{
		{Role: "system", Content: b.String()},
		{Role: "user", Content: u.String()},
	}
}

func categoryInstruction(c ThoughtCategory) string {
	switch c {
	case CategoryReflection:
		return "Reflect on the recent conversation and how it went."
	case CategoryQuestion:
		return "Come up with one gentle question worth asking the user later."
	case CategoryGoalCreation:
		return "Propose one small concrete objective the agent could pursue on its own."
	case CategoryAnalysis:
		return "Analyze a pattern you notice in the recent thoughts or activity."
	default:
		return "Let a stray, low-stakes thought surface."
	}
}

// thoughtPriority maps emotion intensity onto the 1..9 scale.
func thoughtPriority(intensity float64) int {
	p := 1 + int(clamp01(intensity)*8)
	if p > 9 {
		p = 9
	}
	return p
}

// interactionPriority maps emotion intensity onto the 1..5 scale.
func interactionPriority(intensity float64) int {
	p := 1 + int(clamp01(intensity)*4)
	if p > 5 {
		p = 5
	}
	return p
}

// relatedConcepts pulls a few long words out of the content as rough topic
// markers. Heuristic only; no oracle round trip.
func relatedConcepts(content string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range strings.Fields(NormalizeText(content)) {
		if len(w) < 6 || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
		if len(out) == 3 {
			break
		}
	}
	return out
}

func goalTitleFromThought(content string) string {
	title := strings.TrimSpace(content)
	if i := strings.IndexAny(title, ".!?\n"); i > 0 {
		title = title[:i]
	}
	if r := []rune(title); len(r) > 80 {
		title = strings.TrimSpace(string(r[:80]))
	}
	return title
}

// previewForLog trims on a rune boundary so log lines stay valid UTF-8.
func previewForLog(s string) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > 120 {
		return string(r[:120]) + "..."
	}
	return s
}
