package triage

import "fmt"

// Bleeding grades visible blood loss.
type Bleeding string

const (
	BleedingNone    Bleeding = "NONE"
	BleedingPresent Bleeding = "PRESENT"
	BleedingSevere  Bleeding = "SEVERE"
)

// PulseQuality is the palpated character of the pulse.
type PulseQuality string

const (
	PulseNormal PulseQuality = "NORMAL"
	PulseFast   PulseQuality = "FAST"
	PulseSlow   PulseQuality = "SLOW"
	PulseWeak   PulseQuality = "WEAK"
	PulseAbsent PulseQuality = "ABSENT"
)

// MaxPulseRate is the largest beats-per-minute value the engine accepts.
const MaxPulseRate = 250

// AlertNoPulse is raised when no pulse can be found.
const AlertNoPulse = "no pulse detected — begin resuscitation"

var bleedingTable = map[Bleeding]Classification{
	BleedingNone:    {Severity: SeverityGreen},
	BleedingPresent: {Severity: SeverityYellow, Alert: "monitor bleeding"},
	BleedingSevere:  {Severity: SeverityRed, Alert: "apply direct pressure / tourniquet, treat for hemorrhagic shock"},
}

var pulseQualityTable = map[PulseQuality]Classification{
	PulseNormal: {Severity: SeverityGreen},
	PulseFast:   {Severity: SeverityYellow, Alert: "rapid pulse — check for shock and hidden blood loss"},
	PulseSlow:   {Severity: SeverityYellow, Alert: "slow pulse — monitor closely"},
	PulseWeak:   {Severity: SeverityYellow, Alert: "weak pulse — suspect shock, keep patient warm and lying down"},
	PulseAbsent: {Severity: SeverityRed, Alert: AlertNoPulse},
}

// ParseBleeding validates s as a Bleeding grade.
func ParseBleeding(s string) (Bleeding, error) {
	if _, ok := bleedingTable[Bleeding(s)]; !ok {
		return "", fmt.Errorf("%w: bleeding %q", ErrInvalidValue, s)
	}
	return Bleeding(s), nil
}

// ParsePulseQuality validates s as a PulseQuality.
func ParsePulseQuality(s string) (PulseQuality, error) {
	if _, ok := pulseQualityTable[PulseQuality(s)]; !ok {
		return "", fmt.Errorf("%w: pulse quality %q", ErrInvalidValue, s)
	}
	return PulseQuality(s), nil
}

// CirculationAssessment is the recorded state of the circulation step.
// PulseRate and ShockSigns are kept for the record and not classified here.
type CirculationAssessment struct {
	Bleeding     *Bleeding     `json:"bleeding"`
	PulseRate    *int          `json:"pulse_rate"`
	PulseQuality *PulseQuality `json:"pulse_quality"`
	ShockSigns   *bool         `json:"shock_signs"`
	Status       Severity      `json:"status"`
}

func (c CirculationAssessment) Complete() bool {
	return c.Bleeding != nil && c.PulseRate != nil && c.PulseQuality != nil && c.ShockSigns != nil
}

// HardStop reports whether no pulse was found.
func (c CirculationAssessment) HardStop() bool {
	return c.PulseQuality != nil && *c.PulseQuality == PulseAbsent
}

// CirculationFacet names one independent circulation input.
type CirculationFacet string

const (
	FacetBleeding     CirculationFacet = "bleeding"
	FacetPulseRate    CirculationFacet = "pulseRate"
	FacetPulseQuality CirculationFacet = "pulseQuality"
	FacetShockSigns   CirculationFacet = "shockSigns"
)

// CirculationAnswer is one facet value. Build it with SetBleeding, SetPulseRate,
// SetPulseQuality or SetShockSigns.
type CirculationAnswer struct {
	facet   CirculationFacet
	bleed   Bleeding
	rate    int
	quality PulseQuality
	shock   bool
}

func SetBleeding(b Bleeding) CirculationAnswer {
	return CirculationAnswer{facet: FacetBleeding, bleed: b}
}

func SetPulseRate(bpm int) CirculationAnswer {
	return CirculationAnswer{facet: FacetPulseRate, rate: bpm}
}

func SetPulseQuality(q PulseQuality) CirculationAnswer {
	return CirculationAnswer{facet: FacetPulseQuality, quality: q}
}

func SetShockSigns(present bool) CirculationAnswer {
	return CirculationAnswer{facet: FacetShockSigns, shock: present}
}

// EvaluateCirculation records one facet. Facets that are only recorded return a
// zero Classification.
func EvaluateCirculation(state CirculationAssessment, answer CirculationAnswer) (CirculationAssessment, Classification, error) {
	var out Classification

	switch answer.facet {
	case FacetBleeding:
		c, ok := bleedingTable[answer.bleed]
		if !ok {
			return state, Classification{}, fmt.Errorf("%w: bleeding %q", ErrInvalidValue, answer.bleed)
		}
		b := answer.bleed
		state.Bleeding = &b
		out = c
	case FacetPulseRate:
		if answer.rate < 0 || answer.rate > MaxPulseRate {
			return state, Classification{}, fmt.Errorf("%w: pulse rate %d not in 0-%d", ErrOutOfRange, answer.rate, MaxPulseRate)
		}
		r := answer.rate
		state.PulseRate = &r
	case FacetPulseQuality:
		c, ok := pulseQualityTable[answer.quality]
		if !ok {
			return state, Classification{}, fmt.Errorf("%w: pulse quality %q", ErrInvalidValue, answer.quality)
		}
		q := answer.quality
		state.PulseQuality = &q
		out = c
	case FacetShockSigns:
		s := answer.shock
		state.ShockSigns = &s
	default:
		return state, Classification{}, fmt.Errorf("%w: circulation facet %q", ErrInvalidValue, answer.facet)
	}

	state.Status = state.status()
	return state, out, nil
}

func (c CirculationAssessment) status() Severity {
	s := SeverityUnknown
	if c.Bleeding != nil {
		s = maxSeverity(s, bleedingTable[*c.Bleeding].Severity)
	}
	if c.PulseQuality != nil {
		s = maxSeverity(s, pulseQualityTable[*c.PulseQuality].Severity)
	}
	return s
}
