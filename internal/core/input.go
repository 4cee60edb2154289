package core

import "fmt"

// Action is the discrete action accepted by an environment step.
// The numeric values are part of the environment contract.
type Action int

const (
	ActionIdle Action = 0 // let gravity act
	ActionFlap Action = 1 // overwrite velocity with the lift constant
)

// NumActions is the size of the discrete action space.
const NumActions = 2

// Valid reports whether the action belongs to the action space.
func (a Action) Valid() bool {
	return a == ActionIdle || a == ActionFlap
}

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionIdle:
		return "idle"
	case ActionFlap:
		return "flap"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// ActionFromBool maps a decision to flap onto the action space.
func ActionFromBool(flap bool) Action {
	if flap {
		return ActionFlap
	}
	return ActionIdle
}
