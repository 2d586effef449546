package triage

import (
	"errors"
	"testing"
)

func TestEvaluateBreathing(t *testing.T) {
	tests := []struct {
		rate   int
		age    AgeGroup
		status BreathingStatus
	}{
		{0, AgeAdult, BreathingCritical},
		{0, AgeInfant, BreathingCritical},
		{8, AgeAdult, BreathingCritical},
		{11, AgeAdult, BreathingAbnormal},
		{16, AgeAdult, BreathingNormal},
		{24, AgeChild, BreathingNormal},
		{45, AgeInfant, BreathingNormal},
		{60, AgeAdult, BreathingAbnormal},
	}
	for _, tt := range tests {
		b, err := EvaluateBreathing(tt.rate, tt.age)
		if err != nil {
			t.Fatalf("rate %d: unexpected error: %v", tt.rate, err)
		}
		if b.Status != tt.status {
			t.Errorf("rate %d/%s: status %s, want %s", tt.rate, tt.age, b.Status, tt.status)
		}
		if !b.Complete() {
			t.Errorf("rate %d: expected complete", tt.rate)
		}
		if b.HardStop() != (tt.status == BreathingCritical) {
			t.Errorf("rate %d: hard stop = %v", tt.rate, b.HardStop())
		}
	}
}

func TestEvaluateBreathing_RejectsOutOfDomain(t *testing.T) {
	for _, rate := range []int{-1, 61, 200} {
		if _, err := EvaluateBreathing(rate, AgeAdult); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("rate %d: expected ErrOutOfRange, got %v", rate, err)
		}
	}
}
