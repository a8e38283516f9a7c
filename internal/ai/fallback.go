package ai

import (
	"context"
	"strings"
)

// FallbackProvider is a local, deterministic oracle used when no endpoint
// is configured and in host smoke runs. It never fails.
type FallbackProvider struct{}

// NewFallbackProvider returns the local provider.
func NewFallbackProvider() *FallbackProvider {
	return &FallbackProvider{}
}

// Generate echoes a short canned line keyed off the last user message.
func (p *FallbackProvider) Generate(_ context.Context, messages []Message, _ Params) (string, error) {
	var last string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			last = messages[i].Content
			break
		}
	}
	switch {
	case strings.Contains(last, "question"):
		return "Is there anything on your mind you have been putting off?", nil
	case strings.Contains(last, "goal"):
		return "It could be worth organizing recent notes into a short plan.", nil
	case strings.Contains(last, "analysis"):
		return "Recent activity has clustered around a small set of topics.", nil
	case strings.Contains(last, "reflection"):
		return "The last exchanges felt calmer than the ones before them.", nil
	default:
		return "Quiet stretches like this one are good for sorting impressions.", nil
	}
}
