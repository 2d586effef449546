package assessment

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brigade/fieldops/internal/triage"
)

// Record is the stored form of one victim assessment. State holds the engine's
// serialized snapshot; the other columns are denormalized from it for listing.
type Record struct {
	ID          uuid.UUID       `json:"id"`
	SubjectID   string          `json:"subject_id"`
	CurrentStep triage.Step     `json:"current_step"`
	Blocked     bool            `json:"blocked"`
	Version     int             `json:"version"`
	State       json.RawMessage `json:"state"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// View is the API representation of an assessment.
type View struct {
	ID          uuid.UUID               `json:"id"`
	SubjectID   string                  `json:"subject_id"`
	CurrentStep triage.Step             `json:"current_step"`
	Blocked     bool                    `json:"blocked"`
	Version     int                     `json:"version"`
	Assessment  triage.VictimAssessment `json:"assessment"`
}

// recordFrom builds a record around the orchestrator's current snapshot.
func recordFrom(id uuid.UUID, o *triage.Orchestrator) (*Record, error) {
	data, err := o.Serialize()
	if err != nil {
		return nil, err
	}
	a := o.Assessment()
	return &Record{
		ID:          id,
		SubjectID:   a.SubjectID,
		CurrentStep: a.CurrentStep,
		Blocked:     a.Blocked,
		State:       data,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}, nil
}

// refresh copies the orchestrator's snapshot into r, keeping identity and version.
func (r *Record) refresh(o *triage.Orchestrator) error {
	next, err := recordFrom(r.ID, o)
	if err != nil {
		return err
	}
	r.CurrentStep = next.CurrentStep
	r.Blocked = next.Blocked
	r.State = next.State
	r.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *Record) view() (*View, error) {
	var a triage.VictimAssessment
	if err := json.Unmarshal(r.State, &a); err != nil {
		return nil, fmt.Errorf("decode assessment %s: %w", r.ID, err)
	}
	return &View{
		ID:          r.ID,
		SubjectID:   r.SubjectID,
		CurrentStep: r.CurrentStep,
		Blocked:     r.Blocked,
		Version:     r.Version,
		Assessment:  a,
	}, nil
}

func (r *Record) clone() *Record {
	cp := *r
	cp.State = append(json.RawMessage(nil), r.State...)
	return &cp
}
