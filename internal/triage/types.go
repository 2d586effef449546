// Package triage implements the casualty assessment engine: threshold classification,
// ACVPU routing, the ABC step evaluators, the injury survey, SAMPLE history and the
// step state machine that ties them together.
package triage

import "fmt"

// Severity is the triage tier assigned to a finding.
type Severity string

const (
	SeverityGreen   Severity = "GREEN"
	SeverityYellow  Severity = "YELLOW"
	SeverityRed     Severity = "RED"
	SeverityUnknown Severity = "UNKNOWN"
)

// Rank orders severities so the most severe compares greatest. UNKNOWN ranks below GREEN.
func (s Severity) Rank() int {
	switch s {
	case SeverityGreen:
		return 1
	case SeverityYellow:
		return 2
	case SeverityRed:
		return 3
	}
	return 0
}

// Alerting reports whether a finding of this severity belongs in the critical alert list.
func (s Severity) Alerting() bool {
	return s == SeverityYellow || s == SeverityRed
}

func maxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// AgeGroup selects the reference population for numeric thresholds.
type AgeGroup string

const (
	AgeAdult  AgeGroup = "ADULT"
	AgeChild  AgeGroup = "CHILD"
	AgeInfant AgeGroup = "INFANT"
)

// ParseAgeGroup validates s as an AgeGroup.
func ParseAgeGroup(s string) (AgeGroup, error) {
	switch g := AgeGroup(s); g {
	case AgeAdult, AgeChild, AgeInfant:
		return g, nil
	}
	return "", fmt.Errorf("%w: age group %q", ErrInvalidValue, s)
}

// Step names a state of the assessment wizard.
type Step string

const (
	StepAgeGroup    Step = "AGE_GROUP"
	StepACVPU       Step = "ACVPU"
	StepAirway      Step = "AIRWAY"
	StepBreathing   Step = "BREATHING"
	StepCirculation Step = "CIRCULATION"
	StepInjury      Step = "INJURY_ASSESSMENT"
	StepSample      Step = "SAMPLE"
	StepSummary     Step = "SUMMARY"
)

// ParseStep validates s as a Step.
func ParseStep(s string) (Step, error) {
	switch st := Step(s); st {
	case StepAgeGroup, StepACVPU, StepAirway, StepBreathing, StepCirculation,
		StepInjury, StepSample, StepSummary:
		return st, nil
	}
	return "", fmt.Errorf("%w: step %q", ErrInvalidValue, s)
}
