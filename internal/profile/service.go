// Package profile owns the durable student knowledge profile: it applies
// knowledge traces, derives summary metrics, and answers knowledge-state and
// recommendation queries.
package profile

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anshu3933/tlav/internal/apperr"
	"github.com/anshu3933/tlav/internal/metrics"
	"github.com/anshu3933/tlav/internal/model"
	"github.com/anshu3933/tlav/internal/store"
)

// DefaultGradeLevel is the grade assigned to lazily created profiles.
const DefaultGradeLevel = "Unknown"

// Service manages student profiles. Updates to one student are serialized;
// different students proceed in parallel.
type Service struct {
	repo    store.ProfileRepo
	log     *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string
	locks   keyedMutex
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log.Named("profile")
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator sets the generator for new student ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService creates a profile service over repo.
func NewService(repo store.ProfileRepo, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		log:   zap.NewNop(),
		now:   time.Now,
		newID: newStudentID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newStudentID() string {
	return "student_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// GetProfile returns the student's profile, creating and persisting a
// default one on first access.
func (s *Service) GetProfile(ctx context.Context, studentID string) (*model.Profile, error) {
	const op = "profile.GetProfile"
	if studentID == "" {
		return nil, apperr.Validation(op, "student id is required")
	}
	unlock := s.locks.Lock(studentID)
	defer unlock()
	return s.load(ctx, op, studentID)
}

// load returns the stored profile or creates one. Callers hold the
// student's lock.
func (s *Service) load(ctx context.Context, op, studentID string) (*model.Profile, error) {
	p, err := s.repo.Get(ctx, studentID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Internal(op, err)
	}

	now := s.now()
	p = &model.Profile{
		StudentID:          studentID,
		Name:               "Student " + studentID,
		GradeLevel:         DefaultGradeLevel,
		CreationDate:       now,
		LastUpdated:        now,
		InteractionHistory: []model.Interaction{},
		KnowledgeState:     map[string]*model.ComponentState{},
		ComponentOrder:     []string{},
		Metrics:            computeMetrics(nil, nil),
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, apperr.Internal(op, err)
	}
	s.log.Debug("profile created", zap.String("student_id", studentID))
	return p, nil
}

// CreateStudent registers a new student with a generated id.
func (s *Service) CreateStudent(ctx context.Context, name, gradeLevel string) (*model.Profile, error) {
	const op = "profile.CreateStudent"
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation(op, "student name is required")
	}
	id := s.newID()
	return s.mutate(ctx, op, id, func(p *model.Profile) {
		p.Name = name
		if g := strings.TrimSpace(gradeLevel); g != "" {
			p.GradeLevel = g
		}
	})
}

// UpdateDetails changes a student's display fields. Empty values are left
// unchanged.
func (s *Service) UpdateDetails(ctx context.Context, studentID, name, gradeLevel string) (*model.Profile, error) {
	const op = "profile.UpdateDetails"
	if studentID == "" {
		return nil, apperr.Validation(op, "student id is required")
	}
	return s.mutate(ctx, op, studentID, func(p *model.Profile) {
		if n := strings.TrimSpace(name); n != "" {
			p.Name = n
		}
		if g := strings.TrimSpace(gradeLevel); g != "" {
			p.GradeLevel = g
		}
	})
}

// mutate runs fn on a copy of the student's profile under the student's
// lock and persists the result. The stored profile is untouched if the save
// fails.
func (s *Service) mutate(ctx context.Context, op, studentID string, fn func(*model.Profile)) (*model.Profile, error) {
	unlock := s.locks.Lock(studentID)
	defer unlock()

	current, err := s.load(ctx, op, studentID)
	if err != nil {
		return nil, err
	}
	next := current.Clone()
	fn(next)
	next.LastUpdated = s.now()
	if err := s.repo.Save(ctx, next); err != nil {
		return nil, apperr.Internal(op, err)
	}
	return next, nil
}

// ListProfiles loads every stored profile, ordered by student id. Records
// that fail to load are skipped.
func (s *Service) ListProfiles(ctx context.Context) ([]*model.Profile, error) {
	const op = "profile.ListProfiles"
	ids, err := s.repo.IDs(ctx)
	if err != nil {
		return nil, apperr.Internal(op, err)
	}

	loaded := make([]*model.Profile, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, id := range ids {
		g.Go(func() error {
			p, err := s.repo.Get(gctx, id)
			if err != nil {
				s.log.Warn("skipping unreadable profile", zap.String("student_id", id), zap.Error(err))
				return nil
			}
			loaded[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperr.Internal(op, err)
	}

	profiles := slices.DeleteFunc(loaded, func(p *model.Profile) bool { return p == nil })
	return profiles, nil
}

// ApplyTrace folds a trace into the student's profile and persists it.
//
// A failed trace, or one without an interaction, leaves the profile
// unchanged and is returned without error. The interaction append, the
// component updates and the metrics recomputation are persisted together or
// not at all.
func (s *Service) ApplyTrace(ctx context.Context, studentID string, trace *model.Trace) (out *model.Profile, err error) {
	const op = "profile.ApplyTrace"
	if studentID == "" {
		return nil, apperr.Validation(op, "student id is required")
	}
	defer apperr.Recover(op, &err)

	unlock := s.locks.Lock(studentID)
	defer unlock()

	current, err := s.load(ctx, op, studentID)
	if err != nil {
		return nil, err
	}

	switch {
	case trace == nil:
		s.log.Warn("skipping nil trace", zap.String("student_id", studentID))
		s.metrics.TraceSkipped()
		return current, nil
	case trace.Failed():
		s.log.Warn("skipping failed trace", zap.String("student_id", studentID), zap.String("error", trace.Error))
		s.metrics.TraceSkipped()
		return current, nil
	case trace.Interaction == nil:
		s.log.Warn("skipping trace without interaction", zap.String("student_id", studentID))
		s.metrics.TraceSkipped()
		return current, nil
	}

	next := current.Clone()
	apply(next, trace)
	next.Metrics = computeMetrics(next.KnowledgeState, next.ComponentOrder)
	next.LastUpdated = s.now()

	if err := s.repo.Save(ctx, next); err != nil {
		return nil, apperr.Internal(op, fmt.Errorf("persist profile: %w", err))
	}
	s.metrics.TraceApplied()
	return next, nil
}

// apply appends the trace's interaction and folds each knowledge update
// into p. Repeated updates for one component collapse to the last.
func apply(p *model.Profile, trace *model.Trace) {
	in := trace.Interaction
	p.InteractionHistory = append(p.InteractionHistory, *in)
	if p.KnowledgeState == nil {
		p.KnowledgeState = map[string]*model.ComponentState{}
	}

	for _, u := range lastUpdates(trace.KnowledgeUpdates) {
		st, ok := p.KnowledgeState[u.ComponentID]
		if !ok {
			st = &model.ComponentState{
				InitialValue: u.NewValue,
				History:      []model.HistoryEntry{},
			}
			p.KnowledgeState[u.ComponentID] = st
			p.ComponentOrder = append(p.ComponentOrder, u.ComponentID)
		}
		st.CurrentValue = u.NewValue
		st.Confidence = u.Confidence
		st.LastUpdated = in.Timestamp
		st.History = append(st.History, model.HistoryEntry{
			Timestamp:  in.Timestamp,
			Value:      u.NewValue,
			Confidence: u.Confidence,
			IsCorrect:  in.IsCorrect,
		})
	}
}

// lastUpdates keeps the last update per component, in first-seen order.
func lastUpdates(updates []model.KnowledgeUpdate) []model.KnowledgeUpdate {
	idx := make(map[string]int, len(updates))
	out := make([]model.KnowledgeUpdate, 0, len(updates))
	for _, u := range updates {
		if i, ok := idx[u.ComponentID]; ok {
			out[i] = u
			continue
		}
		idx[u.ComponentID] = len(out)
		out = append(out, u)
	}
	return out
}
