package triage

// StepStatus is one line of the summary.
type StepStatus struct {
	Step     Step     `json:"step"`
	Visited  bool     `json:"visited"`
	Severity Severity `json:"severity"`
}

// Summary is the read-only digest shown at the end of an assessment.
type Summary struct {
	ID             string       `json:"id"`
	SubjectID      string       `json:"subject_id"`
	AgeGroup       AgeGroup     `json:"age_group,omitempty"`
	Severity       Severity     `json:"severity"`
	Urgency        Urgency      `json:"urgency,omitempty"`
	Blocked        bool         `json:"blocked"`
	CurrentStep    Step         `json:"current_step"`
	Steps          []StepStatus `json:"steps"`
	CriticalAlerts []string     `json:"critical_alerts"`
	Overrides      []Override   `json:"overrides,omitempty"`
}

// Summary reports the worst severity recorded anywhere, including the vitals log.
func (o *Orchestrator) Summary() Summary {
	a := o.a.clone()
	visited := make(map[Step]bool, len(a.Visited))
	for _, s := range a.Visited {
		visited[s] = true
	}

	steps := []StepStatus{
		{Step: StepAgeGroup, Severity: SeverityUnknown},
		{Step: StepACVPU, Severity: SeverityUnknown},
		{Step: StepAirway, Severity: SeverityUnknown},
		{Step: StepBreathing, Severity: SeverityUnknown},
		{Step: StepCirculation, Severity: SeverityUnknown},
		{Step: StepInjury, Severity: SeverityUnknown},
		{Step: StepSample, Severity: SeverityUnknown},
	}
	for i := range steps {
		steps[i].Visited = visited[steps[i].Step]
	}
	if a.Consciousness != nil {
		steps[1].Severity = a.Consciousness.Severity
	}
	if a.Airway != nil {
		steps[2].Severity = a.Airway.Status
	}
	if a.Breathing != nil && a.Breathing.Severity != "" {
		steps[3].Severity = a.Breathing.Severity
	}
	if a.Circulation != nil {
		steps[4].Severity = a.Circulation.Status
	}

	overall := SeverityUnknown
	for _, s := range steps {
		overall = maxSeverity(overall, s.Severity)
	}
	for _, v := range a.Vitals {
		for _, f := range v.Findings {
			overall = maxSeverity(overall, f.Severity)
		}
	}

	sum := Summary{
		ID:             a.ID,
		SubjectID:      a.SubjectID,
		AgeGroup:       a.AgeGroup,
		Severity:       overall,
		Blocked:        a.Blocked,
		CurrentStep:    a.CurrentStep,
		Steps:          steps,
		CriticalAlerts: a.CriticalAlerts,
		Overrides:      a.Overrides,
	}
	if a.Consciousness != nil {
		sum.Urgency = a.Consciousness.Urgency
	}
	return sum
}
