package cognition

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThoughtRingEviction(t *testing.T) {
	m := NewWorkingMemory()
	for i := 0; i < ThoughtRingCap+10; i++ {
		m.AddThought(ThoughtRecord{ID: fmt.Sprintf("t%d", i), Content: "x"})
	}
	recent := m.RecentThoughts(0)
	require.Len(t, recent, ThoughtRingCap)
	assert.Equal(t, "t10", recent[0].ID)
}

func TestRecentThoughtsLimit(t *testing.T) {
	m := NewWorkingMemory()
	for i := 0; i < 10; i++ {
		m.AddThought(ThoughtRecord{ID: fmt.Sprintf("t%d", i)})
	}
	recent := m.RecentThoughts(3)
	require.Len(t, recent, 3)
	assert.Equal(t, "t7", recent[0].ID)
	assert.Equal(t, "t9", recent[2].ID)
}

func TestRespondToInteractionMutatesOnce(t *testing.T) {
	m := NewWorkingMemory()
	m.AddInteraction(InteractionRecord{ID: "q1", Content: "anything on your mind?", RequiresResponse: true})

	at := time.Now()
	require.True(t, m.RespondToInteraction("q1", "not much", at))

	// a second response is ignored, the first kept
	assert.False(t, m.RespondToInteraction("q1", "actually yes", at.Add(time.Second)))

	got := m.Interactions()
	require.Len(t, got, 1)
	assert.True(t, got[0].RespondedTo)
	assert.Equal(t, "not much", got[0].UserResponse)
}

func TestRespondToUnknownInteraction(t *testing.T) {
	m := NewWorkingMemory()
	assert.False(t, m.RespondToInteraction("missing", "hi", time.Now()))
}

func TestSessionHistoryBounded(t *testing.T) {
	m := NewWorkingMemory()
	for i := 0; i < SessionHistoryCap+5; i++ {
		m.AddSession(ThinkingSession{ID: fmt.Sprintf("s%d", i)})
	}
	sessions := m.Sessions()
	require.Len(t, sessions, SessionHistoryCap)
	assert.Equal(t, "s5", sessions[0].ID)
}
