package plan

import "errors"

// Sentinel errors for plan loading and replay.
var (
	// ErrInvalidStep is returned when a step is not a single-key mapping or
	// its argument has the wrong shape.
	ErrInvalidStep = errors.New("plan: invalid step")

	// ErrUnknownVerb is returned for a step key that names no builder call.
	ErrUnknownVerb = errors.New("plan: unknown verb")

	// ErrUnknownModel is returned when a step names an undeclared model.
	ErrUnknownModel = errors.New("plan: unknown model")

	// ErrNoSteps is returned for a plan without steps.
	ErrNoSteps = errors.New("plan: plan has no steps")
)
