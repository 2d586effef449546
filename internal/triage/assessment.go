package triage

import "time"

// Override records an operator clearing a hard stop.
type Override struct {
	Step   Step      `json:"step"`
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

// VictimAssessment is the aggregate record of one casualty assessment. Step records
// stay nil until their step is reached.
type VictimAssessment struct {
	ID        string   `json:"id"`
	SubjectID string   `json:"subject_id"`
	Protocol  string   `json:"protocol"`
	AgeGroup  AgeGroup `json:"age_group,omitempty"`

	Consciousness *Routing               `json:"consciousness,omitempty"`
	Airway        *AirwayAssessment      `json:"airway,omitempty"`
	Breathing     *BreathingAssessment   `json:"breathing,omitempty"`
	Circulation   *CirculationAssessment `json:"circulation,omitempty"`
	Injury        *InjurySurvey          `json:"injury,omitempty"`
	Sample        *SampleAssessment      `json:"sample,omitempty"`
	Vitals        []VitalSignsRecord     `json:"vitals,omitempty"`

	CriticalAlerts []string   `json:"critical_alerts"`
	CurrentStep    Step       `json:"current_step"`
	Visited        []Step     `json:"visited"`
	Blocked        bool       `json:"blocked"`
	BlockedAt      Step       `json:"blocked_at,omitempty"`
	Overrides      []Override `json:"overrides,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a VictimAssessment) clone() VictimAssessment {
	cp := a
	if a.Consciousness != nil {
		r := *a.Consciousness
		cp.Consciousness = &r
	}
	if a.Airway != nil {
		aw := *a.Airway
		aw.ForeignBodies = cloneBool(a.Airway.ForeignBodies)
		aw.InjuryResult = cloneBool(a.Airway.InjuryResult)
		cp.Airway = &aw
	}
	if a.Breathing != nil {
		b := *a.Breathing
		b.Rate = cloneInt(a.Breathing.Rate)
		cp.Breathing = &b
	}
	if a.Circulation != nil {
		c := *a.Circulation
		if a.Circulation.Bleeding != nil {
			v := *a.Circulation.Bleeding
			c.Bleeding = &v
		}
		if a.Circulation.PulseQuality != nil {
			v := *a.Circulation.PulseQuality
			c.PulseQuality = &v
		}
		c.PulseRate = cloneInt(a.Circulation.PulseRate)
		c.ShockSigns = cloneBool(a.Circulation.ShockSigns)
		cp.Circulation = &c
	}
	if a.Injury != nil {
		cp.Injury = a.Injury.clone()
	}
	if a.Sample != nil {
		s := *a.Sample
		cp.Sample = &s
	}
	if a.Vitals != nil {
		cp.Vitals = make([]VitalSignsRecord, len(a.Vitals))
		for i, v := range a.Vitals {
			v.RespiratoryRate = cloneInt(v.RespiratoryRate)
			v.PulseRate = cloneInt(v.PulseRate)
			v.OxygenSaturation = cloneInt(v.OxygenSaturation)
			v.SystolicBP = cloneInt(v.SystolicBP)
			v.DiastolicBP = cloneInt(v.DiastolicBP)
			if v.Temperature != nil {
				t := *v.Temperature
				v.Temperature = &t
			}
			v.Findings = append([]VitalFinding(nil), v.Findings...)
			cp.Vitals[i] = v
		}
	}
	cp.CriticalAlerts = append([]string{}, a.CriticalAlerts...)
	cp.Visited = append([]Step(nil), a.Visited...)
	cp.Overrides = append([]Override(nil), a.Overrides...)
	return cp
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneBool(p *bool) *bool {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
