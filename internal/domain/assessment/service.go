package assessment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/brigade/fieldops/internal/platform/auth"
	"github.com/brigade/fieldops/internal/triage"
)

var ErrSubjectRequired = errors.New("subject_id is required")

// Service runs assessments against a Repository. Each call loads the stored snapshot,
// drives a fresh orchestrator and writes the result back under optimistic versioning.
type Service struct {
	repo     Repository
	protocol triage.Protocol
	logger   zerolog.Logger
	metrics  *Metrics
	now      func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

func WithMetrics(m *Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithServiceClock replaces time.Now for engine timestamps.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, protocol triage.Protocol, logger zerolog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		repo:     repo,
		protocol: protocol,
		logger:   logger.With().Str("component", "assessment").Logger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// engineOptions wires logging and metrics into the orchestrator for one assessment.
func (s *Service) engineOptions(id uuid.UUID) []triage.Option {
	log := s.logger.With().Str("assessment_id", id.String()).Logger()
	var mh triage.Hooks
	if s.metrics != nil {
		mh = s.metrics.Hooks()
	}
	hooks := triage.Hooks{
		OnAlert: func(step triage.Step, c triage.Classification) {
			log.Info().Str("step", string(step)).Str("severity", string(c.Severity)).Str("alert", c.Alert).Msg("critical alert")
			if mh.OnAlert != nil {
				mh.OnAlert(step, c)
			}
		},
		OnHardStop: func(step triage.Step, alert string) {
			log.Warn().Str("step", string(step)).Str("alert", alert).Msg("hard stop, assessment blocked")
			if mh.OnHardStop != nil {
				mh.OnHardStop(step, alert)
			}
		},
		OnOverride: func(step triage.Step, reason string) {
			log.Warn().Str("step", string(step)).Str("reason", reason).Msg("hard stop overridden")
			if mh.OnOverride != nil {
				mh.OnOverride(step, reason)
			}
		},
	}
	return []triage.Option{triage.WithClock(s.now), triage.WithHooks(hooks)}
}

// Start creates an empty assessment for subjectID.
func (s *Service) Start(ctx context.Context, subjectID string) (*View, error) {
	if subjectID == "" {
		return nil, ErrSubjectRequired
	}
	id := uuid.New()
	o, err := triage.New(id.String(), subjectID, s.protocol, s.engineOptions(id)...)
	if err != nil {
		return nil, err
	}
	rec, err := recordFrom(id, o)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.AssessmentsStarted.Inc()
	}
	s.logger.Info().
		Str("assessment_id", id.String()).
		Str("subject_id", subjectID).
		Str("brigade_id", auth.BrigadeFromContext(ctx)).
		Str("user_id", auth.UserIDFromContext(ctx)).
		Msg("assessment started")
	return rec.view()
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*View, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec.view()
}

// List returns assessments newest first, optionally restricted to one subject.
func (s *Service) List(ctx context.Context, subjectID string, limit, offset int) ([]*View, int, error) {
	var (
		recs  []*Record
		total int
		err   error
	)
	if subjectID != "" {
		recs, total, err = s.repo.ListBySubject(ctx, subjectID, limit, offset)
	} else {
		recs, total, err = s.repo.List(ctx, limit, offset)
	}
	if err != nil {
		return nil, 0, err
	}
	views := make([]*View, 0, len(recs))
	for _, r := range recs {
		v, err := r.view()
		if err != nil {
			return nil, 0, err
		}
		views = append(views, v)
	}
	return views, total, nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*Record, *triage.Orchestrator, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	o, err := triage.Hydrate(rec.State, s.protocol, s.engineOptions(id)...)
	if err != nil {
		return nil, nil, err
	}
	return rec, o, nil
}

// Apply runs one answer event against the stored assessment. A rejected event leaves
// the stored record untouched.
func (s *Service) Apply(ctx context.Context, id uuid.UUID, ev triage.Event) (*View, error) {
	start := time.Now()
	view, err := s.apply(ctx, id, ev)
	if s.metrics != nil {
		result := "ok"
		if err != nil {
			result = "rejected"
		}
		s.metrics.EventsTotal.WithLabelValues(string(ev.Type), result).Inc()
		s.metrics.EventDuration.Observe(time.Since(start).Seconds())
	}
	return view, err
}

func (s *Service) apply(ctx context.Context, id uuid.UUID, ev triage.Event) (*View, error) {
	rec, o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := o.Apply(ev); err != nil {
		s.logger.Debug().Err(err).Str("assessment_id", id.String()).Str("event", string(ev.Type)).Msg("event rejected")
		return nil, fmt.Errorf("%s: %w", ev.Type, err)
	}
	if err := rec.refresh(o); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	s.logger.Debug().
		Str("assessment_id", id.String()).
		Str("event", string(ev.Type)).
		Str("step", string(rec.CurrentStep)).
		Bool("blocked", rec.Blocked).
		Msg("event applied")
	return rec.view()
}

// Alerts returns the assessment's critical alerts in the order they were raised.
func (s *Service) Alerts(ctx context.Context, id uuid.UUID) ([]string, error) {
	_, o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return o.CriticalAlerts(), nil
}

func (s *Service) Summary(ctx context.Context, id uuid.UUID) (triage.Summary, error) {
	_, o, err := s.load(ctx, id)
	if err != nil {
		return triage.Summary{}, err
	}
	return o.Summary(), nil
}
