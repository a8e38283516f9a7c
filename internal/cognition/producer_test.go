package cognition

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cerebrum/internal/ai"
	"cerebrum/pkg/retrylimit"
)

func newTestProducer(t *testing.T, oracle ai.Provider, seed int64) (*ThoughtProducer, *memStore, *WorkingMemory) {
	t.Helper()
	store := newMemStore()
	memory := NewWorkingMemory()
	persist := NewPersistQueue(testLogger())
	t.Cleanup(persist.Stop)
	limiter := retrylimit.NewAdaptiveLimiter(100, 1, 100, 1, 0.5)
	p := NewThoughtProducer(
		oracle, limiter,
		fixedEmotion{EmotionState{Label: "curious", Intensity: 0.5}},
		NewDeduplicationFilter(), memory, store, persist,
		rand.New(rand.NewSource(seed)), testLogger(),
	)
	return p, store, memory
}

func TestCategoryWeightsGating(t *testing.T) {
	low := CategoryWeights(0.2)
	require.Len(t, low, 2)

	mid := CategoryWeights(0.5)
	require.Len(t, mid, 4)

	high := CategoryWeights(0.9)
	require.Len(t, high, 5)
	assert.Equal(t, CategoryGoalCreation, high[4].Category)
}

func TestPickCategoryRespectsGates(t *testing.T) {
	p, _, _ := newTestProducer(t, ai.NewFallbackProvider(), 42)
	for i := 0; i < 200; i++ {
		c := p.PickCategory(0.2)
		assert.Contains(t, []ThoughtCategory{CategoryPondering, CategoryReflection}, c)
	}
}

func TestPickCategoryDeterministicWithSeed(t *testing.T) {
	a, _, _ := newTestProducer(t, ai.NewFallbackProvider(), 7)
	b, _, _ := newTestProducer(t, ai.NewFallbackProvider(), 7)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.PickCategory(0.9), b.PickCategory(0.9))
	}
}

func TestProduceThoughtPersistsOnce(t *testing.T) {
	p, store, memory := newTestProducer(t, ai.NewFallbackProvider(), 1)
	now := time.Now()

	produced, err := p.Produce(context.Background(), CategoryPondering, now, 30*time.Second)
	require.NoError(t, err)
	require.True(t, produced)

	require.Eventually(t, func() bool {
		return len(store.savedThoughts()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Len(t, memory.RecentThoughts(0), 1)

	// the fallback oracle repeats itself; the dedup filter discards silently
	produced, err = p.Produce(context.Background(), CategoryPondering, now.Add(time.Second), 30*time.Second)
	require.NoError(t, err)
	assert.False(t, produced)

	time.Sleep(50 * time.Millisecond)
	assert.Len(t, store.savedThoughts(), 1, "duplicate must not persist")
}

func TestProduceQuestionCreatesInteraction(t *testing.T) {
	p, store, memory := newTestProducer(t, ai.NewFallbackProvider(), 1)
	now := time.Now()

	produced, err := p.Produce(context.Background(), CategoryQuestion, now, time.Minute)
	require.NoError(t, err)
	require.True(t, produced)

	got := memory.Interactions()
	require.Len(t, got, 1)
	assert.Equal(t, InteractionQuestion, got[0].Kind)
	assert.True(t, got[0].RequiresResponse)
	assert.GreaterOrEqual(t, got[0].Priority, 1)
	assert.LessOrEqual(t, got[0].Priority, 5)

	require.Eventually(t, func() bool {
		return len(store.savedInteractions()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, memory.RecentThoughts(0), "questions are interactions, not thoughts")
}

func TestDuplicateSuppressionLogsTypedError(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)
	persist := NewPersistQueue(testLogger())
	t.Cleanup(persist.Stop)
	limiter := retrylimit.NewAdaptiveLimiter(100, 1, 100, 1, 0.5)
	p := NewThoughtProducer(
		ai.NewFallbackProvider(), limiter,
		fixedEmotion{EmotionState{Label: "calm", Intensity: 0.3}},
		NewDeduplicationFilter(), NewWorkingMemory(), newMemStore(), persist,
		rand.New(rand.NewSource(1)), log,
	)

	now := time.Now()
	produced, err := p.Produce(context.Background(), CategoryPondering, now, time.Minute)
	require.NoError(t, err)
	require.True(t, produced)

	produced, err = p.Produce(context.Background(), CategoryPondering, now.Add(time.Second), time.Minute)
	require.NoError(t, err)
	require.False(t, produced)
	assert.Contains(t, buf.String(), ErrDuplicate.Error())
}

func TestProduceGoalIdeaFiresCallback(t *testing.T) {
	p, _, _ := newTestProducer(t, ai.NewFallbackProvider(), 1)
	var gotTitle string
	p.SetOnGoalIdea(func(title, description string) { gotTitle = title })

	produced, err := p.Produce(context.Background(), CategoryGoalCreation, time.Now(), time.Minute)
	require.NoError(t, err)
	require.True(t, produced)
	assert.NotEmpty(t, gotTitle)
}

type failingOracle struct{}

func (failingOracle) Generate(context.Context, []ai.Message, ai.Params) (string, error) {
	return "", errors.New("upstream down")
}

func TestProduceOracleFailureHasNoSideEffects(t *testing.T) {
	p, store, memory := newTestProducer(t, failingOracle{}, 1)

	produced, err := p.Produce(context.Background(), CategoryPondering, time.Now(), time.Minute)
	assert.Error(t, err)
	assert.False(t, produced)
	assert.Empty(t, memory.RecentThoughts(0))
	assert.Empty(t, store.savedThoughts())
}

func TestPreviewForLogRuneSafe(t *testing.T) {
	long := strings.Repeat("んだか", 100)
	out := previewForLog(long)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, 120, len([]rune(strings.TrimSuffix(out, "..."))))
}

func TestGoalTitleRuneSafe(t *testing.T) {
	title := goalTitleFromThought(strings.Repeat("考える", 50))
	assert.True(t, utf8.ValidString(title))
	assert.LessOrEqual(t, len([]rune(title)), 80)
}

func TestThoughtPriorityBounds(t *testing.T) {
	assert.Equal(t, 1, thoughtPriority(0))
	assert.Equal(t, 9, thoughtPriority(1))
	assert.Equal(t, 1, interactionPriority(0))
	assert.Equal(t, 5, interactionPriority(1))
}
