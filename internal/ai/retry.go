package ai

import (
	"context"

	"cerebrum/pkg/retrylimit"
)

// oracleAttempts caps transient-failure retries before the cycle is skipped.
const oracleAttempts = 3

// GenerateWithRetry calls the provider with exponential backoff and the
// shared adaptive limiter. Transient failures are retried up to
// oracleAttempts times; after that the caller treats the cycle as skipped.
func GenerateWithRetry(ctx context.Context, p Provider, lim *retrylimit.AdaptiveLimiter, messages []Message, params Params) (string, error) {
	var out string
	err := retrylimit.WithRetryMax(ctx, func() error {
		reply, err := p.Generate(ctx, messages, params)
		if err != nil {
			return err
		}
		out = reply
		return nil
	}, lim, oracleAttempts)
	return out, err
}
