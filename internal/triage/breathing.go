package triage

import "fmt"

// BreathingStatus is the breathing step's verdict.
type BreathingStatus string

const (
	BreathingCritical BreathingStatus = "CRITICAL"
	BreathingAbnormal BreathingStatus = "ABNORMAL"
	BreathingNormal   BreathingStatus = "NORMAL"
	BreathingUnknown  BreathingStatus = "UNKNOWN"
)

// MaxRespiratoryRate is the largest breaths-per-minute value the engine accepts.
const MaxRespiratoryRate = 60

var breathingStatusBySeverity = map[Severity]BreathingStatus{
	SeverityRed:     BreathingCritical,
	SeverityYellow:  BreathingAbnormal,
	SeverityGreen:   BreathingNormal,
	SeverityUnknown: BreathingUnknown,
}

// BreathingAssessment is the recorded state of the breathing step.
type BreathingAssessment struct {
	Rate     *int            `json:"rate"`
	Status   BreathingStatus `json:"status,omitempty"`
	Severity Severity        `json:"severity,omitempty"`
	Alert    string          `json:"alert,omitempty"`
}

func (b BreathingAssessment) Complete() bool {
	return b.Rate != nil
}

// HardStop reports whether the recorded rate requires resuscitation.
func (b BreathingAssessment) HardStop() bool {
	return b.Status == BreathingCritical
}

// EvaluateBreathing classifies a respiratory rate in breaths per minute.
func EvaluateBreathing(rate int, age AgeGroup) (BreathingAssessment, error) {
	if rate < 0 || rate > MaxRespiratoryRate {
		return BreathingAssessment{}, fmt.Errorf("%w: respiratory rate %d not in 0-%d", ErrOutOfRange, rate, MaxRespiratoryRate)
	}
	c, err := ClassifyVital(VitalRespiratoryRate, rate, age)
	if err != nil {
		return BreathingAssessment{}, err
	}
	return BreathingAssessment{
		Rate:     &rate,
		Status:   breathingStatusBySeverity[c.Severity],
		Severity: c.Severity,
		Alert:    c.Alert,
	}, nil
}
