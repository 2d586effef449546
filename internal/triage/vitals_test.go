package triage

import (
	"errors"
	"testing"
)

var allAgeGroups = []AgeGroup{AgeAdult, AgeChild, AgeInfant}

func TestClassifyVital_ZeroIsRedForEveryAgeGroup(t *testing.T) {
	for _, kind := range []VitalKind{VitalRespiratoryRate, VitalPulseRate} {
		for _, age := range allAgeGroups {
			c, err := ClassifyVital(kind, 0, age)
			if err != nil {
				t.Fatalf("%s/%s: unexpected error: %v", kind, age, err)
			}
			if c.Severity != SeverityRed {
				t.Errorf("%s/%s: expected RED, got %s", kind, age, c.Severity)
			}
			if c.Alert != AlertNoVitalSigns {
				t.Errorf("%s/%s: expected resuscitation alert, got %q", kind, age, c.Alert)
			}
		}
	}
}

func TestClassifyVital_UnknownWithoutAgeGroup(t *testing.T) {
	for _, kind := range []VitalKind{VitalRespiratoryRate, VitalPulseRate} {
		for _, v := range []int{0, 16, 200} {
			c, err := ClassifyVital(kind, v, "")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Severity != SeverityUnknown {
				t.Errorf("%s=%d: expected UNKNOWN, got %s", kind, v, c.Severity)
			}
			if c.Alert != "" {
				t.Errorf("%s=%d: expected no alert, got %q", kind, v, c.Alert)
			}
		}
	}
}

func TestClassifyVital_TotalOverDomain(t *testing.T) {
	for _, kind := range []VitalKind{VitalRespiratoryRate, VitalPulseRate} {
		for _, age := range allAgeGroups {
			for v := 0; v <= MaxPulseRate; v++ {
				c, err := ClassifyVital(kind, v, age)
				if err != nil {
					t.Fatalf("%s/%s/%d: unexpected error: %v", kind, age, v, err)
				}
				switch c.Severity {
				case SeverityRed, SeverityYellow, SeverityGreen:
				default:
					t.Fatalf("%s/%s/%d: unexpected severity %s", kind, age, v, c.Severity)
				}
				if c.Severity.Alerting() && c.Alert == "" {
					t.Errorf("%s/%s/%d: %s without alert text", kind, age, v, c.Severity)
				}
			}
		}
	}
}

func TestClassifyVital_AdultBands(t *testing.T) {
	tests := []struct {
		kind  VitalKind
		value int
		want  Severity
		alert string
	}{
		{VitalRespiratoryRate, 9, SeverityRed, AlertRespSlow},
		{VitalRespiratoryRate, 10, SeverityYellow, AlertRespAbnormal},
		{VitalRespiratoryRate, 11, SeverityYellow, AlertRespAbnormal},
		{VitalRespiratoryRate, 12, SeverityGreen, ""},
		{VitalRespiratoryRate, 16, SeverityGreen, ""},
		{VitalRespiratoryRate, 20, SeverityGreen, ""},
		{VitalRespiratoryRate, 21, SeverityYellow, AlertRespAbnormal},
		{VitalPulseRate, 49, SeverityYellow, AlertBradycardia},
		{VitalPulseRate, 50, SeverityGreen, ""},
		{VitalPulseRate, 120, SeverityGreen, ""},
		{VitalPulseRate, 121, SeverityYellow, AlertTachycardia},
		{VitalOxygenSaturation, 85, SeverityRed, AlertHypoxiaSevere},
		{VitalOxygenSaturation, 92, SeverityYellow, AlertHypoxia},
		{VitalOxygenSaturation, 98, SeverityGreen, ""},
		{VitalSystolicBP, 85, SeverityRed, AlertHypotension},
		{VitalSystolicBP, 120, SeverityGreen, ""},
		{VitalSystolicBP, 190, SeverityYellow, AlertHypertension},
	}
	for _, tt := range tests {
		c, err := ClassifyVital(tt.kind, tt.value, AgeAdult)
		if err != nil {
			t.Fatalf("%s=%d: unexpected error: %v", tt.kind, tt.value, err)
		}
		if c.Severity != tt.want || c.Alert != tt.alert {
			t.Errorf("%s=%d: got %s %q, want %s %q", tt.kind, tt.value, c.Severity, c.Alert, tt.want, tt.alert)
		}
	}
}

func TestClassifyVital_ChildAndInfantBandsAreShifted(t *testing.T) {
	// 25 breaths/min is fast for an adult but normal for a child.
	c, _ := ClassifyVital(VitalRespiratoryRate, 25, AgeChild)
	if c.Severity != SeverityGreen {
		t.Errorf("child RR 25: expected GREEN, got %s", c.Severity)
	}
	c, _ = ClassifyVital(VitalRespiratoryRate, 25, AgeAdult)
	if c.Severity != SeverityYellow {
		t.Errorf("adult RR 25: expected YELLOW, got %s", c.Severity)
	}
	c, _ = ClassifyVital(VitalPulseRate, 55, AgeInfant)
	if c.Severity != SeverityRed || c.Alert != AlertSevereBrady {
		t.Errorf("infant pulse 55: got %s %q", c.Severity, c.Alert)
	}
	c, _ = ClassifyVital(VitalPulseRate, 150, AgeInfant)
	if c.Severity != SeverityGreen {
		t.Errorf("infant pulse 150: expected GREEN, got %s", c.Severity)
	}
}

func TestClassifyVital_Errors(t *testing.T) {
	if _, err := ClassifyVital(VitalPulseRate, -1, AgeAdult); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
	if _, err := ClassifyVital("GLUCOSE", 5, AgeAdult); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for unknown kind, got %v", err)
	}
	if _, err := ClassifyVital("GLUCOSE", 5, ""); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for unknown kind without age, got %v", err)
	}
	if _, err := ClassifyVital(VitalPulseRate, 80, "ELDER"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for unknown age group, got %v", err)
	}
}

func TestClassifyVitalSigns(t *testing.T) {
	rr, pulse, spo2 := 8, 130, 97
	findings, err := ClassifyVitalSigns(VitalSignsEntry{
		RespiratoryRate:  &rr,
		PulseRate:        &pulse,
		OxygenSaturation: &spo2,
		PulseQuality:     PulseWeak,
	}, AgeAdult)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 4 {
		t.Fatalf("expected 4 findings, got %d", len(findings))
	}
	want := []struct {
		kind VitalKind
		sev  Severity
	}{
		{VitalRespiratoryRate, SeverityRed},
		{VitalPulseRate, SeverityYellow},
		{VitalOxygenSaturation, SeverityGreen},
		{VitalPulseQuality, SeverityYellow},
	}
	for i, w := range want {
		if findings[i].Kind != w.kind || findings[i].Severity != w.sev {
			t.Errorf("finding %d: got %s %s, want %s %s", i, findings[i].Kind, findings[i].Severity, w.kind, w.sev)
		}
	}
}

func TestClassifyVitalSigns_RejectsOutOfRange(t *testing.T) {
	spo2 := 101
	if _, err := ClassifyVitalSigns(VitalSignsEntry{OxygenSaturation: &spo2}, AgeAdult); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
	if _, err := ClassifyVitalSigns(VitalSignsEntry{PulseQuality: "THREADY"}, AgeAdult); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
}
