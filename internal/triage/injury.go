package triage

import "fmt"

// Direction moves the injury survey cursor.
type Direction string

const (
	DirectionNext Direction = "NEXT"
	DirectionBack Direction = "BACK"
)

// BodyAreaAssessment holds free-text findings for one body area. The text is opaque;
// the engine never derives severity from it.
type BodyAreaAssessment struct {
	Area     string `json:"area"`
	Findings string `json:"findings"`
	Notes    string `json:"notes"`
}

// InjurySurvey walks the protocol's body areas one at a time.
type InjurySurvey struct {
	Areas    []BodyAreaAssessment          `json:"areas"`
	Index    int                           `json:"index"`
	Complete bool                          `json:"complete"`
	Result   map[string]BodyAreaAssessment `json:"result,omitempty"`
}

// NewInjurySurvey starts a survey over areas in order.
func NewInjurySurvey(areas []string) *InjurySurvey {
	s := &InjurySurvey{Areas: make([]BodyAreaAssessment, len(areas))}
	for i, a := range areas {
		s.Areas[i] = BodyAreaAssessment{Area: a}
	}
	return s
}

// Current returns the area under the cursor.
func (s *InjurySurvey) Current() string {
	if len(s.Areas) == 0 {
		return ""
	}
	return s.Areas[s.Index].Area
}

// Advance moves the cursor. NEXT on the last area finalizes the survey; BACK on the
// first area does nothing. BACK on a finalized survey reopens it at the last area.
func (s *InjurySurvey) Advance(dir Direction) (int, error) {
	switch dir {
	case DirectionNext:
		if s.Complete {
			return s.Index, nil
		}
		if s.Index >= len(s.Areas)-1 {
			s.finalize()
			return s.Index, nil
		}
		s.Index++
	case DirectionBack:
		if s.Complete {
			s.Complete = false
			s.Result = nil
			return s.Index, nil
		}
		if s.Index > 0 {
			s.Index--
		}
	default:
		return s.Index, fmt.Errorf("%w: direction %q", ErrInvalidValue, dir)
	}
	return s.Index, nil
}

func (s *InjurySurvey) RecordFindings(area, text string) error {
	a, err := s.area(area)
	if err != nil {
		return err
	}
	a.Findings = text
	s.refresh()
	return nil
}

func (s *InjurySurvey) RecordNotes(area, text string) error {
	a, err := s.area(area)
	if err != nil {
		return err
	}
	a.Notes = text
	s.refresh()
	return nil
}

func (s *InjurySurvey) area(name string) (*BodyAreaAssessment, error) {
	for i := range s.Areas {
		if s.Areas[i].Area == name {
			return &s.Areas[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownArea, name)
}

func (s *InjurySurvey) finalize() {
	s.Complete = true
	s.Result = make(map[string]BodyAreaAssessment, len(s.Areas))
	for _, a := range s.Areas {
		s.Result[a.Area] = a
	}
}

// refresh keeps Result in step with edits made after finalizing.
func (s *InjurySurvey) refresh() {
	if s.Complete {
		s.finalize()
	}
}

func (s *InjurySurvey) clone() *InjurySurvey {
	cp := *s
	cp.Areas = append([]BodyAreaAssessment(nil), s.Areas...)
	if s.Result != nil {
		cp.Result = make(map[string]BodyAreaAssessment, len(s.Result))
		for k, v := range s.Result {
			cp.Result[k] = v
		}
	}
	return &cp
}
