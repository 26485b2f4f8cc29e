package ai

import "errors"

// Sentinel errors for navigation and targeting. Callers branch on
// these with errors.Is and fall back to degraded behavior instead of
// stalling.
var (
	// ErrUnreachable means no path exists from the agent to the target.
	ErrUnreachable = errors.New("target unreachable")
	// ErrStaleTarget means the target moved too far from where the
	// active plan was computed.
	ErrStaleTarget = errors.New("plan target stale")
	// ErrNoQualifyingPosition means no node satisfies the current shot
	// quality and range constraints.
	ErrNoQualifyingPosition = errors.New("no qualifying position")
	// ErrDegenerateArena means the arena has no standable surfaces to
	// build a graph from.
	ErrDegenerateArena = errors.New("degenerate arena")
)
