package triage

import (
	"bytes"
	"errors"
	"testing"

	"gopkg.in/yaml.v3"
)

const fullScript = `
- type: select_age_group
  value: ADULT
- type: advance_step
- type: select_consciousness
  value: V
- type: advance_step
- type: set_foreign_body
  flag: false
- type: choose_technique
  value: INJURY
- type: answer_technique_question
  flag: true
- type: advance_step
- type: set_respiratory_rate
  number: 22
- type: advance_step
- type: set_bleeding
  value: PRESENT
- type: set_pulse_rate
  number: 110
- type: set_pulse_quality
  value: FAST
- type: set_shock_signs
  flag: false
- type: record_vitals
  vitals:
    respiratory_rate: 22
    pulse_rate: 112
    oxygen_saturation: 95
- type: advance_step
- type: record_findings
  area: extremities
  text: open fracture left tibia
- type: advance_survey
  value: NEXT
- type: advance_survey
  value: NEXT
- type: advance_survey
  value: NEXT
- type: advance_survey
  value: NEXT
- type: advance_survey
  value: NEXT
- type: advance_survey
  value: NEXT
- type: advance_step
- type: set_field
  field: E
  text: motorcycle collision
- type: advance_step
`

func loadScript(t *testing.T, doc string) []Event {
	t.Helper()
	var events []Event
	if err := yaml.Unmarshal([]byte(doc), &events); err != nil {
		t.Fatalf("decode script: %v", err)
	}
	return events
}

func TestReplay_FullScript(t *testing.T) {
	events := loadScript(t, fullScript)
	o, err := Replay("r-1", "casualty-1", DefaultProtocol(), events, ReplayObserver{}, WithClock(fixedClock))
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if o.CurrentStep() != StepSummary {
		t.Errorf("expected SUMMARY, got %s", o.CurrentStep())
	}
	a := o.Assessment()
	if a.Airway.RecommendedAction != ActionJawThrust {
		t.Errorf("expected jaw thrust, got %s", a.Airway.RecommendedAction)
	}
	if a.Injury.Result["extremities"].Findings != "open fracture left tibia" {
		t.Errorf("unexpected extremities finding: %+v", a.Injury.Result["extremities"])
	}
	if a.Sample.Events != "motorcycle collision" {
		t.Errorf("unexpected history: %+v", a.Sample)
	}
	if len(a.Vitals) != 1 {
		t.Fatalf("expected one vitals record, got %d", len(a.Vitals))
	}
	if o.Summary().Severity != SeverityYellow {
		t.Errorf("expected overall YELLOW, got %s", o.Summary().Severity)
	}
}

func TestReplay_Deterministic(t *testing.T) {
	events := loadScript(t, fullScript)
	run := func() []byte {
		o, err := Replay("r-1", "casualty-1", DefaultProtocol(), events, ReplayObserver{}, WithClock(fixedClock))
		if err != nil {
			t.Fatalf("replay: %v", err)
		}
		data, err := o.Serialize()
		if err != nil {
			t.Fatal(err)
		}
		return data
	}
	first, second := run(), run()
	if !bytes.Equal(first, second) {
		t.Error("expected identical serialized output for identical input")
	}
}

func TestReplay_StopsAtFirstError(t *testing.T) {
	events := loadScript(t, `
- type: select_age_group
  value: ADULT
- type: advance_step
- type: set_respiratory_rate
  number: 12
- type: select_consciousness
  value: A
`)
	o, err := Replay("r-2", "s", DefaultProtocol(), events, ReplayObserver{}, WithClock(fixedClock))
	var rerr *ReplayError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected ReplayError, got %v", err)
	}
	if rerr.Index != 2 {
		t.Errorf("expected failure at event 2, got %d", rerr.Index)
	}
	if !errors.Is(err, ErrOutOfSequence) {
		t.Errorf("expected wrapped ErrOutOfSequence, got %v", err)
	}
	if o.CurrentStep() != StepACVPU || o.Assessment().Consciousness != nil {
		t.Error("expected state as it stood before the failing event")
	}
}

func TestApply_PayloadErrors(t *testing.T) {
	o := newTestOrchestrator(t)
	cases := []struct {
		ev   Event
		want error
	}{
		{Event{Type: "teleport"}, ErrUnknownEvent},
		{Event{Type: EventSetForeignBody}, ErrInvalidValue},
		{Event{Type: EventSetRespiratoryRate}, ErrInvalidValue},
		{Event{Type: EventRecordVitals}, ErrInvalidValue},
		{Event{Type: EventJumpTo, Value: "NOWHERE"}, ErrInvalidValue},
	}
	for _, c := range cases {
		if err := o.Apply(c.ev); !errors.Is(err, c.want) {
			t.Errorf("%s: expected %v, got %v", c.ev.Type, c.want, err)
		}
	}
}

func TestApply_OverrideEvent(t *testing.T) {
	o := newTestOrchestrator(t)
	toBreathing(t, o)
	zero := 0
	if err := o.Apply(Event{Type: EventSetRespiratoryRate, Number: &zero}); err != nil {
		t.Fatal(err)
	}
	if err := o.Apply(Event{Type: EventAdvanceStep}); !errors.Is(err, ErrBlocked) {
		t.Fatalf("expected ErrBlocked, got %v", err)
	}
	if err := o.Apply(Event{Type: EventOverrideBlock, Text: "CPR started, continuing survey"}); err != nil {
		t.Fatal(err)
	}
	if err := o.Apply(Event{Type: EventAdvanceStep}); err != nil {
		t.Errorf("expected advance after override, got %v", err)
	}
}

func TestReplay_Observer(t *testing.T) {
	events := loadScript(t, `
- type: select_age_group
  value: ADULT
- type: advance_step
- type: advance_step
`)
	var before []int
	var steps []ReplayStep
	obs := ReplayObserver{
		Before: func(i int, _ Event) { before = append(before, i) },
		After:  func(st ReplayStep) { steps = append(steps, st) },
	}
	_, err := Replay("r-3", "s", DefaultProtocol(), events, obs, WithClock(fixedClock))
	if !errors.Is(err, ErrStepIncomplete) {
		t.Fatalf("expected ErrStepIncomplete, got %v", err)
	}
	if len(before) != 3 || len(steps) != 3 {
		t.Fatalf("expected observer called for every applied event, got %v / %d", before, len(steps))
	}
	if steps[1].From != StepAgeGroup || steps[1].To != StepACVPU || steps[1].Err != nil {
		t.Errorf("unexpected transition: %+v", steps[1])
	}
	if steps[2].Err == nil || steps[2].From != StepACVPU || steps[2].To != StepACVPU {
		t.Errorf("expected failed event to stay at ACVPU: %+v", steps[2])
	}
}

func TestApply_RejectsUnknownCirculationValues(t *testing.T) {
	o, err := New("r-4", "s", DefaultProtocol(), WithClock(fixedClock))
	if err != nil {
		t.Fatal(err)
	}
	for _, ev := range []Event{
		{Type: EventSetBleeding, Value: "HEAVY"},
		{Type: EventSetPulseQuality, Value: "THREADY"},
	} {
		if err := o.Apply(ev); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("%s %q: expected ErrInvalidValue, got %v", ev.Type, ev.Value, err)
		}
	}
}
