package triage

import "errors"

// Errors returned by the assessment engine. Callers match them with errors.Is;
// the engine wraps them with the step or value that triggered the failure.
var (
	// Sequencing
	ErrOutOfSequence  = errors.New("out of sequence")
	ErrStepIncomplete = errors.New("step incomplete")
	ErrBlocked        = errors.New("assessment blocked by hard stop")
	ErrNotBlocked     = errors.New("assessment is not blocked")

	// Domain validation
	ErrOutOfRange = errors.New("value out of range")

	// Configuration lookups
	ErrInvalidGrade     = errors.New("invalid consciousness grade")
	ErrInvalidTechnique = errors.New("invalid airway technique")
	ErrInvalidValue     = errors.New("invalid value")
	ErrUnknownArea      = errors.New("unknown body area")
	ErrUnknownField     = errors.New("unknown history field")
	ErrUnknownEvent     = errors.New("unknown event type")
)

// IsSequencing reports whether err is a step-ordering failure rather than bad input.
func IsSequencing(err error) bool {
	return errors.Is(err, ErrOutOfSequence) ||
		errors.Is(err, ErrStepIncomplete) ||
		errors.Is(err, ErrBlocked) ||
		errors.Is(err, ErrNotBlocked)
}
