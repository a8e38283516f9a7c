package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cerebrum/pkg/retrylimit"
)

func TestCleanReplyStripsThinkBlocks(t *testing.T) {
	in := "<think>internal reasoning here</think>The actual answer."
	assert.Equal(t, "The actual answer.", CleanReply(in))
}

func TestCleanReplyStripsQuotes(t *testing.T) {
	assert.Equal(t, "plain words", CleanReply(`"plain words"`))
	assert.Equal(t, "plain words", CleanReply("“plain words”"))
}

func TestCleanReplyEmptyish(t *testing.T) {
	assert.Equal(t, "", CleanReply("<think>only thoughts</think>"))
	assert.Equal(t, "", CleanReply("  "))
	assert.Equal(t, "", CleanReply("a"))
}

func TestCleanReplyTruncatesLong(t *testing.T) {
	out := CleanReply(strings.Repeat("x", 5000))
	assert.True(t, strings.HasSuffix(out, "[truncated]"))
	assert.LessOrEqual(t, len([]rune(out)), maxReplyLen+20)
}

func TestCleanReplyTruncatesOnRuneBoundary(t *testing.T) {
	out := CleanReply(strings.Repeat("思考", 3000))
	assert.True(t, utf8.ValidString(out))
	assert.True(t, strings.HasSuffix(out, "[truncated]"))
}

func TestTruncateRuneSafe(t *testing.T) {
	out := truncate([]byte(strings.Repeat("é", 300)))
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, 200, len([]rune(strings.TrimSuffix(out, "..."))))
}

func TestParamsTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, Params{}.Timeout())
	assert.Equal(t, ToolUseTimeout, Params{ToolUse: true}.Timeout())
}

func TestFallbackProviderDeterministic(t *testing.T) {
	p := NewFallbackProvider()
	msgs := []Message{{Role: "user", Content: "category=question please"}}
	a, err := p.Generate(context.Background(), msgs, Params{})
	require.NoError(t, err)
	b, _ := p.Generate(context.Background(), msgs, Params{})
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)
}

func TestHTTPProviderParsesChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"a quiet thought"}}]}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, "sekrit", "test-model")
	out, err := p.Generate(context.Background(), []Message{{Role: "user", Content: "hi"}}, Params{})
	require.NoError(t, err)
	assert.Equal(t, "a quiet thought", out)
}

func TestHTTPProviderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, "", "test-model")
	_, err := p.Generate(context.Background(), nil, Params{})
	assert.Error(t, err)
}

func TestHTTPProviderEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, "", "test-model")
	_, err := p.Generate(context.Background(), nil, Params{})
	assert.Error(t, err)
}

type countingProvider struct {
	fails int
	calls int
}

func (c *countingProvider) Generate(context.Context, []Message, Params) (string, error) {
	c.calls++
	if c.calls <= c.fails {
		return "", errors.New("transient")
	}
	return "recovered", nil
}

func TestGenerateWithRetryRecovers(t *testing.T) {
	lim := retrylimit.NewAdaptiveLimiter(100, 1, 100, 1, 0.5)
	p := &countingProvider{fails: 2}
	out, err := GenerateWithRetry(context.Background(), p, lim, nil, Params{})
	require.NoError(t, err)
	assert.Equal(t, "recovered", out)
	assert.Equal(t, 3, p.calls)
}

func TestGenerateWithRetryGivesUp(t *testing.T) {
	lim := retrylimit.NewAdaptiveLimiter(100, 1, 100, 1, 0.5)
	p := &countingProvider{fails: 10}
	_, err := GenerateWithRetry(context.Background(), p, lim, nil, Params{})
	require.Error(t, err)
	assert.Equal(t, oracleAttempts, p.calls)
}
