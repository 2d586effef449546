package assessment

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/brigade/fieldops/internal/platform/auth"
	"github.com/brigade/fieldops/internal/triage"
)

var testNow = time.Date(2026, 5, 2, 14, 0, 0, 0, time.UTC)

func intp(v int) *int    { return &v }
func boolp(v bool) *bool { return &v }

func newTestService(opts ...ServiceOption) (*Service, *MemoryRepository) {
	repo := NewMemoryRepository()
	opts = append([]ServiceOption{WithServiceClock(func() time.Time { return testNow })}, opts...)
	return NewService(repo, triage.DefaultProtocol(), zerolog.Nop(), opts...), repo
}

// toBreathing returns the events that take an adult graded C to the breathing step.
func toBreathing() []triage.Event {
	return []triage.Event{
		{Type: triage.EventSelectAgeGroup, Value: "ADULT"},
		{Type: triage.EventAdvanceStep},
		{Type: triage.EventSelectConsciousness, Value: "C"},
		{Type: triage.EventAdvanceStep},
		{Type: triage.EventSetForeignBody, Flag: boolp(false)},
		{Type: triage.EventChooseTechnique, Value: "PATENCY_RISK"},
		{Type: triage.EventAnswerTechnique, Flag: boolp(false)},
		{Type: triage.EventAdvanceStep},
	}
}

func applyAll(t *testing.T, svc *Service, id uuid.UUID, events []triage.Event) *View {
	t.Helper()
	var v *View
	for i, ev := range events {
		var err error
		v, err = svc.Apply(context.Background(), id, ev)
		if err != nil {
			t.Fatalf("event %d (%s): %v", i, ev.Type, err)
		}
	}
	return v
}

func TestService_Start(t *testing.T) {
	svc, repo := newTestService()
	v, err := svc.Start(context.Background(), "casualty-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.ID == uuid.Nil {
		t.Error("expected id to be assigned")
	}
	if v.CurrentStep != triage.StepAgeGroup || v.Blocked {
		t.Errorf("unexpected initial state: %+v", v)
	}
	if v.Assessment.ID != v.ID.String() {
		t.Errorf("expected engine id %s, got %s", v.ID, v.Assessment.ID)
	}
	stored, err := repo.GetByID(context.Background(), v.ID)
	if err != nil {
		t.Fatalf("expected record stored: %v", err)
	}
	if stored.Version != 1 {
		t.Errorf("expected version 1, got %d", stored.Version)
	}
}

func TestService_Start_SubjectRequired(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Start(context.Background(), ""); !errors.Is(err, ErrSubjectRequired) {
		t.Errorf("expected ErrSubjectRequired, got %v", err)
	}
}

func TestService_ApplyPersists(t *testing.T) {
	svc, repo := newTestService()
	v, _ := svc.Start(context.Background(), "casualty-1")

	v = applyAll(t, svc, v.ID, toBreathing())
	if v.CurrentStep != triage.StepBreathing {
		t.Fatalf("expected BREATHING, got %s", v.CurrentStep)
	}
	stored, _ := repo.GetByID(context.Background(), v.ID)
	if stored.Version != 1+len(toBreathing()) {
		t.Errorf("expected version %d, got %d", 1+len(toBreathing()), stored.Version)
	}
	if stored.CurrentStep != triage.StepBreathing {
		t.Errorf("expected stored step BREATHING, got %s", stored.CurrentStep)
	}
}

func TestService_ApplyRejectedLeavesRecord(t *testing.T) {
	svc, repo := newTestService()
	v, _ := svc.Start(context.Background(), "casualty-1")
	before, _ := repo.GetByID(context.Background(), v.ID)

	_, err := svc.Apply(context.Background(), v.ID, triage.Event{Type: triage.EventSetRespiratoryRate, Number: intp(12)})
	if !errors.Is(err, triage.ErrOutOfSequence) {
		t.Fatalf("expected ErrOutOfSequence, got %v", err)
	}
	after, _ := repo.GetByID(context.Background(), v.ID)
	if after.Version != before.Version || string(after.State) != string(before.State) {
		t.Error("expected stored record unchanged after rejected event")
	}
}

func TestService_Apply_NotFound(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Apply(context.Background(), uuid.New(), triage.Event{Type: triage.EventAdvanceStep})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_HardStopAndOverride(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	svc, _ := newTestService(WithMetrics(m))
	v, _ := svc.Start(context.Background(), "casualty-2")

	v = applyAll(t, svc, v.ID, append(toBreathing(), triage.Event{Type: triage.EventSetRespiratoryRate, Number: intp(0)}))
	if !v.Blocked {
		t.Fatal("expected blocked after respiratory rate 0")
	}
	if _, err := svc.Apply(context.Background(), v.ID, triage.Event{Type: triage.EventAdvanceStep}); !errors.Is(err, triage.ErrBlocked) {
		t.Fatalf("expected ErrBlocked, got %v", err)
	}
	v = applyAll(t, svc, v.ID, []triage.Event{
		{Type: triage.EventOverrideBlock, Text: "CPR in progress"},
		{Type: triage.EventAdvanceStep},
	})
	if v.CurrentStep != triage.StepCirculation {
		t.Errorf("expected CIRCULATION, got %s", v.CurrentStep)
	}

	if got := testutil.ToFloat64(m.HardStopsTotal.WithLabelValues("BREATHING")); got != 1 {
		t.Errorf("expected 1 hard stop, got %v", got)
	}
	if got := testutil.ToFloat64(m.OverridesTotal.WithLabelValues("BREATHING")); got != 1 {
		t.Errorf("expected 1 override, got %v", got)
	}
	if got := testutil.ToFloat64(m.EventsTotal.WithLabelValues("advance_step", "rejected")); got != 1 {
		t.Errorf("expected 1 rejected advance, got %v", got)
	}
	if got := testutil.ToFloat64(m.AssessmentsStarted); got != 1 {
		t.Errorf("expected 1 started assessment, got %v", got)
	}
}

func TestService_AlertsAndSummary(t *testing.T) {
	svc, _ := newTestService()
	v, _ := svc.Start(context.Background(), "casualty-3")
	applyAll(t, svc, v.ID, append(toBreathing(), triage.Event{Type: triage.EventSetRespiratoryRate, Number: intp(0)}))

	alerts, err := svc.Alerts(context.Background(), v.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 2 || alerts[1] != triage.AlertNoVitalSigns {
		t.Errorf("unexpected alerts: %v", alerts)
	}
	sum, err := svc.Summary(context.Background(), v.ID)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Severity != triage.SeverityRed || !sum.Blocked {
		t.Errorf("unexpected summary: %+v", sum)
	}
}

func TestService_ListBySubject(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	svc.Start(ctx, "a")
	svc.Start(ctx, "b")
	svc.Start(ctx, "a")

	items, total, err := svc.List(ctx, "a", 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("expected 2 assessments for subject a, got %d/%d", len(items), total)
	}
	_, total, _ = svc.List(ctx, "", 10, 0)
	if total != 3 {
		t.Errorf("expected 3 assessments total, got %d", total)
	}
}

// conflictRepo simulates another writer updating the record first.
type conflictRepo struct{ *MemoryRepository }

func (c conflictRepo) Update(_ context.Context, r *Record) error {
	return ErrConflict
}

func TestService_ApplyConflict(t *testing.T) {
	repo := conflictRepo{NewMemoryRepository()}
	svc := NewService(repo, triage.DefaultProtocol(), zerolog.Nop())
	v, err := svc.Start(context.Background(), "casualty-4")
	if err != nil {
		t.Fatal(err)
	}
	_, err = svc.Apply(context.Background(), v.ID, triage.Event{Type: triage.EventSelectAgeGroup, Value: "CHILD"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestService_StartLogsCaller(t *testing.T) {
	var buf bytes.Buffer
	svc := NewService(NewMemoryRepository(), triage.DefaultProtocol(), zerolog.New(&buf))
	ctx := context.WithValue(context.Background(), auth.BrigadeKey, "ffw-nord")
	ctx = context.WithValue(ctx, auth.UserIDKey, "crew-12")

	if _, err := svc.Start(ctx, "casualty-1"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{`"brigade_id":"ffw-nord"`, `"user_id":"crew-12"`, `"component":"assessment"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in log output: %s", want, out)
		}
	}
}
