package triage

import (
	"fmt"
	"math"
)

// VitalKind names a numeric vital sign the classifier understands.
type VitalKind string

const (
	VitalRespiratoryRate  VitalKind = "RESPIRATORY_RATE"
	VitalPulseRate        VitalKind = "PULSE_RATE"
	VitalOxygenSaturation VitalKind = "OXYGEN_SATURATION"
	VitalSystolicBP       VitalKind = "SYSTOLIC_BP"
)

// Classification is the tier and operator-facing alert for one finding.
type Classification struct {
	Severity Severity `json:"severity"`
	Alert    string   `json:"alert,omitempty"`
}

// Alert texts shared by several bands.
const (
	AlertNoVitalSigns  = "no respiration/pulse — begin resuscitation immediately"
	AlertRespSlow      = "respiration too slow — risk of respiratory arrest"
	AlertRespAbnormal  = "respiration outside normal range"
	AlertBradycardia   = "bradycardia"
	AlertTachycardia   = "tachycardia"
	AlertSevereBrady   = "severe bradycardia — prepare for resuscitation"
	AlertHypoxiaSevere = "severe hypoxia — give oxygen"
	AlertHypoxia       = "oxygen saturation below normal"
	AlertHypotension   = "hypotension — risk of shock"
	AlertHypertension  = "hypertension"
)

const noLimit = math.MaxInt

// band holds the cut-offs for one (kind, age group). A value below redBelow or above
// redAbove is RED; below yellowBelow or above yellowAbove is YELLOW. A zero lower bound
// and a noLimit upper bound disable that side.
type band struct {
	redBelow    int
	yellowBelow int
	yellowAbove int
	redAbove    int

	// zeroIsArrest marks kinds where a reading of 0 means no respiration or pulse.
	zeroIsArrest bool

	lowRed     string
	lowYellow  string
	highYellow string
	highRed    string
}

type bandKey struct {
	kind VitalKind
	age  AgeGroup
}

var respiratoryBand = band{zeroIsArrest: true, lowRed: AlertRespSlow, lowYellow: AlertRespAbnormal, highYellow: AlertRespAbnormal}

var pulseBand = band{zeroIsArrest: true, lowRed: AlertSevereBrady, lowYellow: AlertBradycardia, highYellow: AlertTachycardia}

var saturationBand = band{redBelow: 90, yellowBelow: 94, yellowAbove: noLimit, redAbove: noLimit, lowRed: AlertHypoxiaSevere, lowYellow: AlertHypoxia}

var systolicBand = band{lowRed: AlertHypotension, highYellow: AlertHypertension}

func withLimits(b band, redBelow, yellowBelow, yellowAbove, redAbove int) band {
	b.redBelow, b.yellowBelow, b.yellowAbove, b.redAbove = redBelow, yellowBelow, yellowAbove, redAbove
	return b
}

// thresholds is the single source of numeric cut-offs.
var thresholds = map[bandKey]band{
	{VitalRespiratoryRate, AgeAdult}:  withLimits(respiratoryBand, 10, 12, 20, noLimit),
	{VitalRespiratoryRate, AgeChild}:  withLimits(respiratoryBand, 15, 20, 30, noLimit),
	{VitalRespiratoryRate, AgeInfant}: withLimits(respiratoryBand, 20, 30, 60, noLimit),

	{VitalPulseRate, AgeAdult}:  withLimits(pulseBand, 0, 50, 120, noLimit),
	{VitalPulseRate, AgeChild}:  withLimits(pulseBand, 0, 70, 140, noLimit),
	{VitalPulseRate, AgeInfant}: withLimits(pulseBand, 60, 100, 160, noLimit),

	{VitalOxygenSaturation, AgeAdult}:  saturationBand,
	{VitalOxygenSaturation, AgeChild}:  saturationBand,
	{VitalOxygenSaturation, AgeInfant}: saturationBand,

	{VitalSystolicBP, AgeAdult}:  withLimits(systolicBand, 90, 0, 180, noLimit),
	{VitalSystolicBP, AgeChild}:  withLimits(systolicBand, 70, 0, 130, noLimit),
	{VitalSystolicBP, AgeInfant}: withLimits(systolicBand, 60, 0, 110, noLimit),
}

// ClassifyVital grades value for kind against the band of the given age group.
// An empty age group yields UNKNOWN since there is no reference population.
func ClassifyVital(kind VitalKind, value int, age AgeGroup) (Classification, error) {
	if value < 0 {
		return Classification{}, fmt.Errorf("%w: %s %d", ErrOutOfRange, kind, value)
	}
	if age == "" {
		if _, ok := thresholds[bandKey{kind, AgeAdult}]; !ok {
			return Classification{}, fmt.Errorf("%w: vital kind %q", ErrInvalidValue, kind)
		}
		return Classification{Severity: SeverityUnknown}, nil
	}
	if _, err := ParseAgeGroup(string(age)); err != nil {
		return Classification{}, err
	}
	b, ok := thresholds[bandKey{kind, age}]
	if !ok {
		return Classification{}, fmt.Errorf("%w: vital kind %q", ErrInvalidValue, kind)
	}
	return b.classify(value), nil
}

func (b band) classify(v int) Classification {
	switch {
	case v == 0 && b.zeroIsArrest:
		return Classification{Severity: SeverityRed, Alert: AlertNoVitalSigns}
	case v < b.redBelow:
		return Classification{Severity: SeverityRed, Alert: b.lowRed}
	case v > b.redAbove:
		return Classification{Severity: SeverityRed, Alert: b.highRed}
	case v < b.yellowBelow:
		return Classification{Severity: SeverityYellow, Alert: b.lowYellow}
	case v > b.yellowAbove:
		return Classification{Severity: SeverityYellow, Alert: b.highYellow}
	}
	return Classification{Severity: SeverityGreen}
}
