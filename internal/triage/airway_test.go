package triage

import (
	"errors"
	"testing"
)

func TestEvaluateAirway_ForeignBodyIsImmediateRed(t *testing.T) {
	state, out, err := EvaluateAirway(AirwayAssessment{}, SetForeignBody(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Severity != SeverityRed || out.Alert != AlertForeignBody {
		t.Errorf("got %s %q", out.Severity, out.Alert)
	}
	if state.Status != SeverityRed {
		t.Errorf("expected status RED, got %s", state.Status)
	}
	if state.Complete() {
		t.Error("foreign body answer alone must not complete the step")
	}

	// A benign technique answer does not lower the status.
	state, _, _ = EvaluateAirway(state, ChooseTechnique(TechniquePatencyRisk))
	state, out, err = EvaluateAirway(state, AnswerTechniqueQuestion(false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Severity != SeverityGreen {
		t.Errorf("expected GREEN technique output, got %s", out.Severity)
	}
	if state.Status != SeverityRed || state.Alert != AlertForeignBody {
		t.Errorf("expected status to stay RED, got %s %q", state.Status, state.Alert)
	}
	if !state.Complete() {
		t.Error("expected step complete")
	}
}

func TestEvaluateAirway_TechniqueTable(t *testing.T) {
	tests := []struct {
		technique AirwayTechnique
		answer    bool
		severity  Severity
		action    AirwayAction
	}{
		{TechniqueInjury, true, SeverityYellow, ActionJawThrust},
		{TechniqueInjury, false, SeverityGreen, ActionHeadTiltChinLift},
		{TechniquePatencyRisk, true, SeverityRed, ActionHeadTiltChinLift},
		{TechniquePatencyRisk, false, SeverityGreen, ActionNone},
	}
	for _, tt := range tests {
		state, _, _ := EvaluateAirway(AirwayAssessment{}, SetForeignBody(false))
		state, _, err := EvaluateAirway(state, ChooseTechnique(tt.technique))
		if err != nil {
			t.Fatalf("choose %s: %v", tt.technique, err)
		}
		if state.Question == "" {
			t.Errorf("%s: expected question text", tt.technique)
		}
		state, out, err := EvaluateAirway(state, AnswerTechniqueQuestion(tt.answer))
		if err != nil {
			t.Fatalf("answer %s/%v: %v", tt.technique, tt.answer, err)
		}
		if out.Severity != tt.severity {
			t.Errorf("%s/%v: severity %s, want %s", tt.technique, tt.answer, out.Severity, tt.severity)
		}
		if state.RecommendedAction != tt.action {
			t.Errorf("%s/%v: action %s, want %s", tt.technique, tt.answer, state.RecommendedAction, tt.action)
		}
		if state.Status != tt.severity {
			t.Errorf("%s/%v: status %s, want %s", tt.technique, tt.answer, state.Status, tt.severity)
		}
	}
}

func TestEvaluateAirway_ChooseTechniqueResetsAnswer(t *testing.T) {
	state, _, _ := EvaluateAirway(AirwayAssessment{}, SetForeignBody(false))
	state, _, _ = EvaluateAirway(state, ChooseTechnique(TechniqueInjury))
	state, _, _ = EvaluateAirway(state, AnswerTechniqueQuestion(true))
	if !state.Complete() {
		t.Fatal("expected complete")
	}
	state, _, _ = EvaluateAirway(state, ChooseTechnique(TechniquePatencyRisk))
	if state.InjuryResult != nil {
		t.Error("expected technique answer to be reset")
	}
	if state.RecommendedAction != "" {
		t.Errorf("expected recommended action reset, got %s", state.RecommendedAction)
	}
	if state.Complete() {
		t.Error("expected step incomplete after changing technique")
	}
}

func TestEvaluateAirway_Errors(t *testing.T) {
	_, _, err := EvaluateAirway(AirwayAssessment{}, AnswerTechniqueQuestion(true))
	if !errors.Is(err, ErrOutOfSequence) {
		t.Errorf("expected ErrOutOfSequence, got %v", err)
	}
	_, _, err = EvaluateAirway(AirwayAssessment{}, ChooseTechnique("TONGUE"))
	if !errors.Is(err, ErrInvalidTechnique) {
		t.Errorf("expected ErrInvalidTechnique, got %v", err)
	}
	_, _, err = EvaluateAirway(AirwayAssessment{}, AirwayAnswer{})
	if !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
}
