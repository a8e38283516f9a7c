package cognition

import "errors"

var (
	// ErrThrottled — the governor refused a production attempt.
	ErrThrottled = errors.New("production throttled")

	// ErrDuplicate — the dedup filter suppressed near-identical content.
	ErrDuplicate = errors.New("duplicate content suppressed")

	// ErrGoalNotFound — no goal with the given id.
	ErrGoalNotFound = errors.New("goal not found")

	// ErrTierMismatch — the requested transition is not allowed for the goal's tier.
	ErrTierMismatch = errors.New("transition not allowed for goal tier")

	// ErrInvalidTransition — the requested status change violates the lifecycle.
	ErrInvalidTransition = errors.New("invalid goal status transition")

	// ErrProgressRegression — progress must be monotonically non-decreasing while active.
	ErrProgressRegression = errors.New("goal progress cannot decrease")
)
