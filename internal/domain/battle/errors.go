package battle

import (
	"errors"
	"fmt"
)

// Kind classifies why a battle failed.
type Kind string

const (
	KindMissingCombatant          Kind = "missing_combatant"
	KindCombatantDataUnavailable  Kind = "combatant_data_unavailable"
	KindNarrativeGenerationFailed Kind = "narrative_generation_failed"
)

// Side names a combatant position. It is empty when a failure concerns
// neither side in particular.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Error is returned for every failed battle.
type Error struct {
	Kind Kind
	Side Side
	Err  error
}

func (e *Error) Error() string {
	if e.Side != "" {
		return fmt.Sprintf("%s (%s): %v", e.Kind, e.Side, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or "" when err is not a battle Error.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}

// ErrMissingDependency is returned by New when a required collaborator is nil.
var ErrMissingDependency = errors.New("battle: missing dependency")
