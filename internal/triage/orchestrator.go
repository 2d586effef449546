package triage

import (
	"fmt"
	"time"
)

// Hooks observe engine outputs. Any field may be nil.
type Hooks struct {
	OnAlert    func(step Step, c Classification)
	OnHardStop func(step Step, alert string)
	OnOverride func(step Step, reason string)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock replaces time.Now for timestamps. Replays use a fixed clock so that
// serialized output is reproducible.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func WithHooks(h Hooks) Option {
	return func(o *Orchestrator) { o.hooks = h }
}

// Orchestrator drives one VictimAssessment through the step sequence. It is not safe
// for concurrent use; each in-progress assessment has exactly one owner.
type Orchestrator struct {
	protocol Protocol
	now      func() time.Time
	hooks    Hooks
	a        VictimAssessment
}

// New starts an empty assessment at AGE_GROUP.
func New(id, subjectID string, protocol Protocol, opts ...Option) (*Orchestrator, error) {
	if err := protocol.Validate(); err != nil {
		return nil, err
	}
	o := newOrchestrator(protocol, opts)
	ts := o.now()
	o.a = VictimAssessment{
		ID:             id,
		SubjectID:      subjectID,
		Protocol:       protocol.Name,
		CriticalAlerts: []string{},
		CurrentStep:    StepAgeGroup,
		Visited:        []Step{StepAgeGroup},
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
	return o, nil
}

func newOrchestrator(protocol Protocol, opts []Option) *Orchestrator {
	o := &Orchestrator{protocol: protocol, now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Assessment returns a deep copy of the current record.
func (o *Orchestrator) Assessment() VictimAssessment { return o.a.clone() }

func (o *Orchestrator) CurrentStep() Step { return o.a.CurrentStep }

func (o *Orchestrator) Blocked() bool { return o.a.Blocked }

// CriticalAlerts returns the alert texts in the order they were raised.
func (o *Orchestrator) CriticalAlerts() []string {
	return append([]string{}, o.a.CriticalAlerts...)
}

func (o *Orchestrator) require(step Step, op string) error {
	if o.a.CurrentStep != step {
		return fmt.Errorf("%w: %s requires step %s, current step is %s", ErrOutOfSequence, op, step, o.a.CurrentStep)
	}
	return nil
}

func (o *Orchestrator) raise(step Step, c Classification) {
	if !c.Severity.Alerting() || c.Alert == "" {
		return
	}
	o.a.CriticalAlerts = append(o.a.CriticalAlerts, c.Alert)
	if o.hooks.OnAlert != nil {
		o.hooks.OnAlert(step, c)
	}
}

func (o *Orchestrator) block(step Step, alert string) {
	o.a.Blocked = true
	o.a.BlockedAt = step
	if o.hooks.OnHardStop != nil {
		o.hooks.OnHardStop(step, alert)
	}
}

func (o *Orchestrator) touch() { o.a.UpdatedAt = o.now() }

// SelectAgeGroup records the reference population. Re-selecting after back-navigation
// does not reclassify vitals recorded earlier.
func (o *Orchestrator) SelectAgeGroup(g AgeGroup) error {
	if err := o.require(StepAgeGroup, "selectAgeGroup"); err != nil {
		return err
	}
	if _, err := ParseAgeGroup(string(g)); err != nil {
		return err
	}
	o.a.AgeGroup = g
	o.touch()
	return nil
}

// SelectConsciousness grades the casualty on the ACVPU scale and stores the routing.
func (o *Orchestrator) SelectConsciousness(g ConsciousnessGrade) error {
	if err := o.require(StepACVPU, "selectConsciousness"); err != nil {
		return err
	}
	r, err := RouteConsciousness(g)
	if err != nil {
		return err
	}
	o.a.Consciousness = &r
	o.raise(StepACVPU, Classification{Severity: r.Severity, Alert: r.Alert})
	o.touch()
	return nil
}

func (o *Orchestrator) answerAirway(ans AirwayAnswer) error {
	if err := o.require(StepAirway, "airway answer"); err != nil {
		return err
	}
	next, out, err := EvaluateAirway(*o.a.Airway, ans)
	if err != nil {
		return err
	}
	*o.a.Airway = next
	o.raise(StepAirway, out)
	o.touch()
	return nil
}

func (o *Orchestrator) SetForeignBody(present bool) error {
	return o.answerAirway(SetForeignBody(present))
}

func (o *Orchestrator) ChooseTechnique(t AirwayTechnique) error {
	return o.answerAirway(ChooseTechnique(t))
}

func (o *Orchestrator) AnswerTechniqueQuestion(yes bool) error {
	return o.answerAirway(AnswerTechniqueQuestion(yes))
}

// SetRespiratoryRate evaluates breathing. A CRITICAL result blocks the assessment.
func (o *Orchestrator) SetRespiratoryRate(rate int) error {
	if err := o.require(StepBreathing, "setRespiratoryRate"); err != nil {
		return err
	}
	b, err := EvaluateBreathing(rate, o.a.AgeGroup)
	if err != nil {
		return err
	}
	*o.a.Breathing = b
	o.raise(StepBreathing, Classification{Severity: b.Severity, Alert: b.Alert})
	if b.HardStop() {
		o.block(StepBreathing, b.Alert)
	}
	o.touch()
	return nil
}

func (o *Orchestrator) answerCirculation(ans CirculationAnswer) error {
	if err := o.require(StepCirculation, "circulation answer"); err != nil {
		return err
	}
	next, out, err := EvaluateCirculation(*o.a.Circulation, ans)
	if err != nil {
		return err
	}
	*o.a.Circulation = next
	o.raise(StepCirculation, out)
	if ans.facet == FacetPulseQuality && next.HardStop() {
		o.block(StepCirculation, out.Alert)
	}
	o.touch()
	return nil
}

func (o *Orchestrator) SetBleeding(b Bleeding) error {
	return o.answerCirculation(SetBleeding(b))
}

func (o *Orchestrator) SetPulseRate(bpm int) error {
	return o.answerCirculation(SetPulseRate(bpm))
}

// SetPulseQuality records pulse quality. ABSENT blocks the assessment.
func (o *Orchestrator) SetPulseQuality(q PulseQuality) error {
	return o.answerCirculation(SetPulseQuality(q))
}

func (o *Orchestrator) SetShockSigns(present bool) error {
	return o.answerCirculation(SetShockSigns(present))
}

func (o *Orchestrator) RecordFindings(area, text string) error {
	if err := o.require(StepInjury, "recordFindings"); err != nil {
		return err
	}
	if err := o.a.Injury.RecordFindings(area, text); err != nil {
		return err
	}
	o.touch()
	return nil
}

func (o *Orchestrator) RecordNotes(area, text string) error {
	if err := o.require(StepInjury, "recordNotes"); err != nil {
		return err
	}
	if err := o.a.Injury.RecordNotes(area, text); err != nil {
		return err
	}
	o.touch()
	return nil
}

// AdvanceSurvey moves the injury survey cursor and returns the new area index.
func (o *Orchestrator) AdvanceSurvey(dir Direction) (int, error) {
	if err := o.require(StepInjury, "advanceSurvey"); err != nil {
		return 0, err
	}
	idx, err := o.a.Injury.Advance(dir)
	if err != nil {
		return idx, err
	}
	o.touch()
	return idx, nil
}

// SetHistoryField sets one SAMPLE field.
func (o *Orchestrator) SetHistoryField(field HistoryField, text string) error {
	if err := o.require(StepSample, "setField"); err != nil {
		return err
	}
	s, err := o.a.Sample.Set(field, text)
	if err != nil {
		return err
	}
	if s == *o.a.Sample {
		return nil
	}
	*o.a.Sample = s
	o.touch()
	return nil
}

// RecordVitals appends a vital signs entry, classified against the age group known now.
// It is accepted at any step after AGE_GROUP except SUMMARY.
func (o *Orchestrator) RecordVitals(e VitalSignsEntry) (VitalSignsRecord, error) {
	if o.a.AgeGroup == "" || o.a.CurrentStep == StepSummary {
		return VitalSignsRecord{}, fmt.Errorf("%w: recordVitals at step %s", ErrOutOfSequence, o.a.CurrentStep)
	}
	findings, err := ClassifyVitalSigns(e, o.a.AgeGroup)
	if err != nil {
		return VitalSignsRecord{}, err
	}
	if e.TakenAt.IsZero() {
		e.TakenAt = o.now()
	}
	rec := VitalSignsRecord{VitalSignsEntry: e, AgeGroup: o.a.AgeGroup, Findings: findings}
	o.a.Vitals = append(o.a.Vitals, rec)
	for _, f := range findings {
		o.raise(o.a.CurrentStep, f.Classification)
	}
	o.touch()
	return o.a.clone().Vitals[len(o.a.Vitals)-1], nil
}

// StepComplete reports whether the current step has everything it needs to advance.
func (o *Orchestrator) StepComplete() bool {
	a := o.a
	switch a.CurrentStep {
	case StepAgeGroup:
		return a.AgeGroup != ""
	case StepACVPU:
		return a.Consciousness != nil
	case StepAirway:
		return a.Airway != nil && a.Airway.Complete()
	case StepBreathing:
		return a.Breathing != nil && a.Breathing.Complete()
	case StepCirculation:
		return a.Circulation != nil && a.Circulation.Complete()
	case StepInjury:
		return a.Injury != nil && a.Injury.Complete
	case StepSample:
		return true
	}
	return false
}

func (o *Orchestrator) next() (Step, error) {
	switch o.a.CurrentStep {
	case StepAgeGroup:
		return StepACVPU, nil
	case StepACVPU:
		return o.a.Consciousness.NextStep, nil
	case StepAirway:
		return StepBreathing, nil
	case StepBreathing:
		return StepCirculation, nil
	case StepCirculation:
		return StepInjury, nil
	case StepInjury:
		return StepSample, nil
	case StepSample:
		return StepSummary, nil
	}
	return "", fmt.Errorf("%w: %s is terminal", ErrOutOfSequence, o.a.CurrentStep)
}

// AdvanceStep moves to the next step once the current one is complete. A blocked
// assessment cannot advance until OverrideBlock is called.
func (o *Orchestrator) AdvanceStep() (Step, error) {
	if o.a.Blocked {
		return o.a.CurrentStep, fmt.Errorf("%w at %s", ErrBlocked, o.a.BlockedAt)
	}
	if o.a.CurrentStep == StepSummary {
		return o.a.CurrentStep, fmt.Errorf("%w: %s is terminal", ErrOutOfSequence, StepSummary)
	}
	if !o.StepComplete() {
		return o.a.CurrentStep, fmt.Errorf("%w: %s", ErrStepIncomplete, o.a.CurrentStep)
	}
	to, err := o.next()
	if err != nil {
		return o.a.CurrentStep, err
	}
	o.enter(to)
	o.a.Visited = append(o.a.Visited, to)
	o.touch()
	return to, nil
}

// enter sets the current step and creates its record on first visit.
func (o *Orchestrator) enter(step Step) {
	o.a.CurrentStep = step
	switch step {
	case StepAirway:
		if o.a.Airway == nil {
			o.a.Airway = &AirwayAssessment{Status: SeverityUnknown}
		}
	case StepBreathing:
		if o.a.Breathing == nil {
			o.a.Breathing = &BreathingAssessment{}
		}
	case StepCirculation:
		if o.a.Circulation == nil {
			o.a.Circulation = &CirculationAssessment{Status: SeverityUnknown}
		}
	case StepInjury:
		if o.a.Injury == nil {
			o.a.Injury = NewInjurySurvey(o.protocol.AreaKeys())
		}
	case StepSample:
		if o.a.Sample == nil {
			o.a.Sample = &SampleAssessment{}
		}
	}
}

// GoBack returns to the previously visited step. Answers are kept.
func (o *Orchestrator) GoBack() (Step, error) {
	if len(o.a.Visited) < 2 {
		return o.a.CurrentStep, fmt.Errorf("%w: no previous step", ErrOutOfSequence)
	}
	o.a.Visited = o.a.Visited[:len(o.a.Visited)-1]
	o.a.CurrentStep = o.a.Visited[len(o.a.Visited)-1]
	o.touch()
	return o.a.CurrentStep, nil
}

// JumpTo goes back to any step on the visited path. Forward jumps are refused.
func (o *Orchestrator) JumpTo(step Step) error {
	for i, s := range o.a.Visited {
		if s == step {
			o.a.Visited = o.a.Visited[:i+1]
			o.a.CurrentStep = step
			o.touch()
			return nil
		}
	}
	return fmt.Errorf("%w: %s has not been visited", ErrOutOfSequence, step)
}

// OverrideBlock is the operator's explicit decision to continue past a hard stop.
func (o *Orchestrator) OverrideBlock(reason string) error {
	if !o.a.Blocked {
		return ErrNotBlocked
	}
	step := o.a.BlockedAt
	o.a.Overrides = append(o.a.Overrides, Override{Step: step, Reason: reason, At: o.now()})
	o.a.Blocked = false
	o.a.BlockedAt = ""
	if o.hooks.OnOverride != nil {
		o.hooks.OnOverride(step, reason)
	}
	o.touch()
	return nil
}
