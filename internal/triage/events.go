package triage

import "fmt"

// EventType names an input event from the UI or a replay script.
type EventType string

const (
	EventSelectAgeGroup      EventType = "select_age_group"
	EventSelectConsciousness EventType = "select_consciousness"
	EventSetForeignBody      EventType = "set_foreign_body"
	EventChooseTechnique     EventType = "choose_technique"
	EventAnswerTechnique     EventType = "answer_technique_question"
	EventSetRespiratoryRate  EventType = "set_respiratory_rate"
	EventSetBleeding         EventType = "set_bleeding"
	EventSetPulseRate        EventType = "set_pulse_rate"
	EventSetPulseQuality     EventType = "set_pulse_quality"
	EventSetShockSigns       EventType = "set_shock_signs"
	EventRecordFindings      EventType = "record_findings"
	EventRecordNotes         EventType = "record_notes"
	EventAdvanceSurvey       EventType = "advance_survey"
	EventSetField            EventType = "set_field"
	EventRecordVitals        EventType = "record_vitals"
	EventAdvanceStep         EventType = "advance_step"
	EventGoBack              EventType = "go_back"
	EventJumpTo              EventType = "jump_to"
	EventOverrideBlock       EventType = "override_block"
)

// Event is the serializable form of every engine input. Which payload fields are
// read depends on Type.
type Event struct {
	Type   EventType        `json:"type" yaml:"type"`
	Value  string           `json:"value,omitempty" yaml:"value,omitempty"`
	Number *int             `json:"number,omitempty" yaml:"number,omitempty"`
	Flag   *bool            `json:"flag,omitempty" yaml:"flag,omitempty"`
	Area   string           `json:"area,omitempty" yaml:"area,omitempty"`
	Field  string           `json:"field,omitempty" yaml:"field,omitempty"`
	Text   string           `json:"text,omitempty" yaml:"text,omitempty"`
	Vitals *VitalSignsEntry `json:"vitals,omitempty" yaml:"vitals,omitempty"`
}

func (e Event) flag() (bool, error) {
	if e.Flag == nil {
		return false, fmt.Errorf("%w: %s requires flag", ErrInvalidValue, e.Type)
	}
	return *e.Flag, nil
}

func (e Event) number() (int, error) {
	if e.Number == nil {
		return 0, fmt.Errorf("%w: %s requires number", ErrInvalidValue, e.Type)
	}
	return *e.Number, nil
}

// Apply dispatches ev to the matching orchestrator operation.
func (o *Orchestrator) Apply(ev Event) error {
	switch ev.Type {
	case EventSelectAgeGroup:
		return o.SelectAgeGroup(AgeGroup(ev.Value))
	case EventSelectConsciousness:
		return o.SelectConsciousness(ConsciousnessGrade(ev.Value))
	case EventSetForeignBody:
		v, err := ev.flag()
		if err != nil {
			return err
		}
		return o.SetForeignBody(v)
	case EventChooseTechnique:
		return o.ChooseTechnique(AirwayTechnique(ev.Value))
	case EventAnswerTechnique:
		v, err := ev.flag()
		if err != nil {
			return err
		}
		return o.AnswerTechniqueQuestion(v)
	case EventSetRespiratoryRate:
		n, err := ev.number()
		if err != nil {
			return err
		}
		return o.SetRespiratoryRate(n)
	case EventSetBleeding:
		b, err := ParseBleeding(ev.Value)
		if err != nil {
			return err
		}
		return o.SetBleeding(b)
	case EventSetPulseRate:
		n, err := ev.number()
		if err != nil {
			return err
		}
		return o.SetPulseRate(n)
	case EventSetPulseQuality:
		q, err := ParsePulseQuality(ev.Value)
		if err != nil {
			return err
		}
		return o.SetPulseQuality(q)
	case EventSetShockSigns:
		v, err := ev.flag()
		if err != nil {
			return err
		}
		return o.SetShockSigns(v)
	case EventRecordFindings:
		return o.RecordFindings(ev.Area, ev.Text)
	case EventRecordNotes:
		return o.RecordNotes(ev.Area, ev.Text)
	case EventAdvanceSurvey:
		_, err := o.AdvanceSurvey(Direction(ev.Value))
		return err
	case EventSetField:
		return o.SetHistoryField(HistoryField(ev.Field), ev.Text)
	case EventRecordVitals:
		if ev.Vitals == nil {
			return fmt.Errorf("%w: %s requires vitals", ErrInvalidValue, ev.Type)
		}
		_, err := o.RecordVitals(*ev.Vitals)
		return err
	case EventAdvanceStep:
		_, err := o.AdvanceStep()
		return err
	case EventGoBack:
		_, err := o.GoBack()
		return err
	case EventJumpTo:
		step, err := ParseStep(ev.Value)
		if err != nil {
			return err
		}
		return o.JumpTo(step)
	case EventOverrideBlock:
		return o.OverrideBlock(ev.Text)
	}
	return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
}

// ReplayError reports which event of a replay failed.
type ReplayError struct {
	Index int
	Event Event
	Err   error
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("event %d (%s): %v", e.Index, e.Event.Type, e.Err)
}

func (e *ReplayError) Unwrap() error { return e.Err }

// ReplayStep reports one event applied during a replay.
type ReplayStep struct {
	Index int
	Event Event
	From  Step
	To    Step
	Err   error
}

// ReplayObserver is called around each event of a replay. Either field may be nil.
type ReplayObserver struct {
	Before func(i int, ev Event)
	After  func(ReplayStep)
}

// Replay applies events in order to a fresh assessment. It stops at the first failing
// event and returns the orchestrator as it stood before that event.
func Replay(id, subjectID string, protocol Protocol, events []Event, obs ReplayObserver, opts ...Option) (*Orchestrator, error) {
	o, err := New(id, subjectID, protocol, opts...)
	if err != nil {
		return nil, err
	}
	for i, ev := range events {
		if obs.Before != nil {
			obs.Before(i, ev)
		}
		from := o.a.CurrentStep
		err := o.Apply(ev)
		if obs.After != nil {
			obs.After(ReplayStep{Index: i, Event: ev, From: from, To: o.a.CurrentStep, Err: err})
		}
		if err != nil {
			return o, &ReplayError{Index: i, Event: ev, Err: err}
		}
	}
	return o, nil
}
