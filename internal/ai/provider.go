// Package ai wraps the external text oracle. The core treats every failure
// here as "no thought produced"; nothing in this package may crash the host.
package ai

import (
	"context"
	"errors"
	"time"
)

// Message is one chat turn sent to the oracle.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Params tunes a single generation call.
type Params struct {
	Temperature float64
	MaxTokens   int
	// ToolUse widens the call timeout; tool-augmented generations run longer.
	ToolUse bool
}

// Call timeouts: short for plain generations, long for tool-augmented ones.
const (
	DefaultTimeout = 10 * time.Second
	ToolUseTimeout = 30 * time.Second
)

// ErrEmptyReply — the oracle answered with nothing usable.
var ErrEmptyReply = errors.New("oracle returned empty reply")

// Provider is the asynchronous text oracle. May fail or time out.
type Provider interface {
	Generate(ctx context.Context, messages []Message, params Params) (string, error)
}

// Timeout returns the hard deadline for a call with the given params.
func (p Params) Timeout() time.Duration {
	if p.ToolUse {
		return ToolUseTimeout
	}
	return DefaultTimeout
}
