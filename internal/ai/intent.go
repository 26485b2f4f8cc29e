package ai

import (
	"math"
)

// ============================================
// INTENT
// ============================================

// Intent is the only thing the decision layer hands to physics: the
// same control surface a human player has.
type Intent struct {
	// MoveAxis is horizontal input in [-1, 1].
	MoveAxis float64 `json:"moveAxis"`
	// Jump starts a jump this tick; JumpHold is the hold fraction that
	// shapes its height.
	Jump     bool    `json:"jump"`
	JumpHold float64 `json:"jumpHold"`
	// Pickup grabs a loose ball or contests the holder's.
	Pickup bool `json:"pickup"`
	// ChargeHold keeps the shot charging; Release fires it.
	ChargeHold bool `json:"chargeHold"`
	Release    bool `json:"release"`
}

// buildIntent converts the selected goal, its target, and the plan
// follower's step into control input for this tick.
func buildIntent(state *GoalState, view WorldView, prof Profile, step PlanStep, caps *Capabilities) Intent {
	var in Intent

	switch state.Current {
	case GoalChargeShot:
		// Stand still and cook the shot.
		state.ChargeTicks++
		if state.ChargeTicks >= state.ChargeTargetTicks {
			in.Release = true
		} else {
			in.ChargeHold = true
		}
		return in

	case GoalChaseBall:
		in.MoveAxis = moveFromStep(step, view, caps)
		applyStepJump(&in, step)
		if view.BallFree && view.Pos.DistanceTo(view.BallPos) < 50 {
			in.Pickup = true
		}
		// A ball resting overhead needs a hop even without a plan.
		if view.BallFree && view.Grounded && !in.Jump {
			dy := view.BallPos.Y - view.Pos.Y
			dx := math.Abs(view.BallPos.X - view.Pos.X)
			if dy > caps.Spec.PlayerHeight/2 && dx < caps.Spec.PlayerWidth*2 {
				in.Jump = true
				in.JumpHold = caps.JumpHoldFor(dy)
			}
		}
		return in

	case GoalAttemptSteal:
		in.MoveAxis = moveFromStep(step, view, caps)
		applyStepJump(&in, step)
		if view.Pos.DistanceTo(view.Opponent) < prof.StealRange {
			in.Pickup = true
		}
		return in

	default:
		in.MoveAxis = moveFromStep(step, view, caps)
		applyStepJump(&in, step)
		return in
	}
}

// moveFromStep turns the follower's step into an axis value, with a
// direct drive toward the target point when no plan is active.
func moveFromStep(step PlanStep, view WorldView, caps *Capabilities) float64 {
	if !step.Moving {
		return 0
	}
	dx := step.MoveTowardX - view.Pos.X
	// Ease in near the stop point so the agent settles instead of
	// overshooting back and forth.
	if math.Abs(dx) < caps.Spec.PlayerWidth/2 {
		return clamp(dx/(caps.Spec.PlayerWidth/2), -1, 1) * 0.4
	}
	if dx > 0 {
		return 1
	}
	return -1
}

func applyStepJump(in *Intent, step PlanStep) {
	if step.WantJump {
		in.Jump = true
		in.JumpHold = step.JumpHold
	}
}
