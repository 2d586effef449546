package triage

import (
	"encoding/json"
	"fmt"
)

// Serialize encodes the assessment for an external store.
func (o *Orchestrator) Serialize() ([]byte, error) {
	data, err := json.Marshal(o.a)
	if err != nil {
		return nil, fmt.Errorf("encode assessment %s: %w", o.a.ID, err)
	}
	return data, nil
}

// Hydrate restores an orchestrator from Serialize output. The stored record is taken
// as-is; an injury survey keeps the areas it was started with.
func Hydrate(data []byte, protocol Protocol, opts ...Option) (*Orchestrator, error) {
	var a VictimAssessment
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode assessment: %w", err)
	}
	return Restore(a, protocol, opts...)
}

// Restore wraps an already decoded record.
func Restore(a VictimAssessment, protocol Protocol, opts ...Option) (*Orchestrator, error) {
	if err := protocol.Validate(); err != nil {
		return nil, err
	}
	if _, err := ParseStep(string(a.CurrentStep)); err != nil {
		return nil, fmt.Errorf("restore assessment %s: %w", a.ID, err)
	}
	if len(a.Visited) == 0 || a.Visited[len(a.Visited)-1] != a.CurrentStep {
		return nil, fmt.Errorf("restore assessment %s: %w: visited path does not end at %s", a.ID, ErrInvalidValue, a.CurrentStep)
	}
	if err := a.checkRecords(); err != nil {
		return nil, fmt.Errorf("restore assessment %s: %w", a.ID, err)
	}
	if a.CriticalAlerts == nil {
		a.CriticalAlerts = []string{}
	}
	o := newOrchestrator(protocol, opts)
	o.a = a.clone()
	return o, nil
}

// checkRecords requires a record for every visited step that has one, so a restored
// orchestrator never answers into a missing record.
func (a VictimAssessment) checkRecords() error {
	for i, step := range a.Visited {
		if _, err := ParseStep(string(step)); err != nil {
			return err
		}
		passed := i < len(a.Visited)-1
		var missing bool
		switch step {
		case StepAgeGroup:
			missing = passed && a.AgeGroup == ""
		case StepACVPU:
			missing = passed && a.Consciousness == nil
		case StepAirway:
			missing = a.Airway == nil
		case StepBreathing:
			missing = a.Breathing == nil
		case StepCirculation:
			missing = a.Circulation == nil
		case StepInjury:
			missing = a.Injury == nil
		case StepSample:
			missing = a.Sample == nil
		}
		if missing {
			return fmt.Errorf("%w: no %s record on visited path", ErrInvalidValue, step)
		}
	}
	if s := a.Injury; s != nil && len(s.Areas) > 0 && (s.Index < 0 || s.Index >= len(s.Areas)) {
		return fmt.Errorf("%w: injury index %d outside %d areas", ErrInvalidValue, s.Index, len(s.Areas))
	}
	if s := a.Injury; s != nil && len(s.Areas) == 0 && s.Index != 0 {
		return fmt.Errorf("%w: injury index %d with no areas", ErrInvalidValue, s.Index)
	}
	return nil
}
