package triage

import (
	"fmt"
	"time"
)

// VitalPulseQuality tags pulse quality findings in the vital signs log. It is graded
// with the circulation table, not the threshold classifier.
const VitalPulseQuality VitalKind = "PULSE_QUALITY"

// Accepted ranges for the vital signs log.
const (
	MaxOxygenSaturation = 100
	MaxSystolicBP       = 300
)

// VitalSignsEntry is a timestamped set of measurements. Absent fields are nil.
type VitalSignsEntry struct {
	TakenAt          time.Time    `json:"taken_at" yaml:"taken_at"`
	RespiratoryRate  *int         `json:"respiratory_rate,omitempty" yaml:"respiratory_rate,omitempty"`
	PulseRate        *int         `json:"pulse_rate,omitempty" yaml:"pulse_rate,omitempty"`
	PulseQuality     PulseQuality `json:"pulse_quality,omitempty" yaml:"pulse_quality,omitempty"`
	OxygenSaturation *int         `json:"oxygen_saturation,omitempty" yaml:"oxygen_saturation,omitempty"`
	Temperature      *float64     `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	SystolicBP       *int         `json:"systolic_bp,omitempty" yaml:"systolic_bp,omitempty"`
	DiastolicBP      *int         `json:"diastolic_bp,omitempty" yaml:"diastolic_bp,omitempty"`
}

// VitalFinding is the classification of one measured field.
type VitalFinding struct {
	Kind VitalKind `json:"kind"`
	Classification
}

// VitalSignsRecord is an entry as classified when it was recorded.
type VitalSignsRecord struct {
	VitalSignsEntry
	AgeGroup AgeGroup       `json:"age_group,omitempty"`
	Findings []VitalFinding `json:"findings,omitempty"`
}

type vitalField struct {
	kind  VitalKind
	value *int
	max   int
}

// ClassifyVitalSigns runs each present numeric field through the threshold classifier.
// Findings are returned in a fixed kind order. Pulse quality is graded with the
// circulation table.
func ClassifyVitalSigns(e VitalSignsEntry, age AgeGroup) ([]VitalFinding, error) {
	fields := []vitalField{
		{VitalRespiratoryRate, e.RespiratoryRate, MaxRespiratoryRate},
		{VitalPulseRate, e.PulseRate, MaxPulseRate},
		{VitalOxygenSaturation, e.OxygenSaturation, MaxOxygenSaturation},
		{VitalSystolicBP, e.SystolicBP, MaxSystolicBP},
	}

	var findings []VitalFinding
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		if *f.value < 0 || *f.value > f.max {
			return nil, fmt.Errorf("%w: %s %d not in 0-%d", ErrOutOfRange, f.kind, *f.value, f.max)
		}
		if age == "" {
			continue
		}
		c, err := ClassifyVital(f.kind, *f.value, age)
		if err != nil {
			return nil, err
		}
		findings = append(findings, VitalFinding{Kind: f.kind, Classification: c})
	}

	if e.PulseQuality != "" {
		q, err := ParsePulseQuality(string(e.PulseQuality))
		if err != nil {
			return nil, err
		}
		findings = append(findings, VitalFinding{Kind: VitalPulseQuality, Classification: pulseQualityTable[q]})
	}
	return findings, nil
}
