package triage

import "fmt"

// HistoryField is one letter of the SAMPLE mnemonic.
type HistoryField string

const (
	FieldSymptoms       HistoryField = "S"
	FieldAllergies      HistoryField = "A"
	FieldMedications    HistoryField = "M"
	FieldPastHistory    HistoryField = "P"
	FieldLastOralIntake HistoryField = "L"
	FieldEvents         HistoryField = "E"
)

// SampleAssessment is the patient history. Every field is optional.
type SampleAssessment struct {
	Symptoms       string `json:"symptoms"`
	Allergies      string `json:"allergies"`
	Medications    string `json:"medications"`
	PastHistory    string `json:"past_history"`
	LastOralIntake string `json:"last_oral_intake"`
	Events         string `json:"events"`
}

// Set returns a copy of s with field replaced by text.
func (s SampleAssessment) Set(field HistoryField, text string) (SampleAssessment, error) {
	switch field {
	case FieldSymptoms:
		s.Symptoms = text
	case FieldAllergies:
		s.Allergies = text
	case FieldMedications:
		s.Medications = text
	case FieldPastHistory:
		s.PastHistory = text
	case FieldLastOralIntake:
		s.LastOralIntake = text
	case FieldEvents:
		s.Events = text
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return s, nil
}
