package triage

import "fmt"

// ConsciousnessGrade is a level on the ACVPU scale.
type ConsciousnessGrade string

const (
	GradeAlert        ConsciousnessGrade = "A"
	GradeConfused     ConsciousnessGrade = "C"
	GradeVoice        ConsciousnessGrade = "V"
	GradePain         ConsciousnessGrade = "P"
	GradeUnresponsive ConsciousnessGrade = "U"
)

// Urgency labels how fast the ABC survey must start. It does not change the step order.
type Urgency string

const (
	UrgencyNone      Urgency = "NONE"
	UrgencyLight     Urgency = "ABC_LIGHT"
	UrgencyHeavy     Urgency = "ABC_HEAVY"
	UrgencyImmediate Urgency = "ABC_IMMEDIATE"
)

// Routing is the router's decision for one consciousness grade.
type Routing struct {
	Grade    ConsciousnessGrade `json:"grade"`
	Severity Severity           `json:"severity"`
	Alert    string             `json:"alert,omitempty"`
	NextStep Step               `json:"next_step"`
	Urgency  Urgency            `json:"urgency"`
}

// Urgent reports whether the grade is on the RED/urgent path (V, P, U).
func (r Routing) Urgent() bool {
	return r.Urgency == UrgencyHeavy || r.Urgency == UrgencyImmediate
}

var consciousnessRoutes = map[ConsciousnessGrade]Routing{
	GradeAlert: {
		Grade: GradeAlert, Severity: SeverityGreen,
		NextStep: StepInjury, Urgency: UrgencyNone,
	},
	GradeConfused: {
		Grade: GradeConfused, Severity: SeverityYellow, Alert: "reassess airway/breathing",
		NextStep: StepAirway, Urgency: UrgencyLight,
	},
	GradeVoice: {
		Grade: GradeVoice, Severity: SeverityYellow, Alert: "responds to voice only — check airway and breathing now",
		NextStep: StepAirway, Urgency: UrgencyHeavy,
	},
	GradePain: {
		Grade: GradePain, Severity: SeverityRed, Alert: "responds to pain only — secure airway immediately",
		NextStep: StepAirway, Urgency: UrgencyImmediate,
	},
	GradeUnresponsive: {
		Grade: GradeUnresponsive, Severity: SeverityRed, Alert: "unresponsive — full ABC required immediately",
		NextStep: StepAirway, Urgency: UrgencyImmediate,
	},
}

// RouteConsciousness looks up the static routing for grade.
func RouteConsciousness(grade ConsciousnessGrade) (Routing, error) {
	r, ok := consciousnessRoutes[grade]
	if !ok {
		return Routing{}, fmt.Errorf("%w: %q", ErrInvalidGrade, grade)
	}
	return r, nil
}
