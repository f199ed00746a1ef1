// Package app wires configuration, storage and the knowledge-modeling
// services into one handle shared by the CLI and the HTTP API.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/anshu3933/tlav/internal/apperr"
	"github.com/anshu3933/tlav/internal/assessment"
	"github.com/anshu3933/tlav/internal/config"
	"github.com/anshu3933/tlav/internal/curriculum"
	"github.com/anshu3933/tlav/internal/mastery"
	"github.com/anshu3933/tlav/internal/metrics"
	"github.com/anshu3933/tlav/internal/model"
	"github.com/anshu3933/tlav/internal/profile"
	"github.com/anshu3933/tlav/internal/report"
	"github.com/anshu3933/tlav/internal/store"
)

// Options configures New. Only Config is required.
type Options struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	// KV overrides the backend selected by Config.
	KV store.KV
}

// App holds the wired services.
type App struct {
	Config      config.Config
	Log         *zap.Logger
	Metrics     *metrics.Metrics
	Taxonomy    *curriculum.Taxonomy
	Processor   *assessment.Processor
	Profiles    *profile.Service
	Assessments store.AssessmentRepo
	Reports     *report.Generator

	kv store.KV
}

// New builds an App, opening the configured store unless opts.KV is set.
func New(ctx context.Context, opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("app: config is required")
	}
	cfg := *opts.Config
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	tax, err := curriculum.Load(cfg.Taxonomy.File)
	if err != nil {
		return nil, err
	}

	kv := opts.KV
	if kv == nil {
		kv, err = OpenKV(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	return &App{
		Config:   cfg,
		Log:      log,
		Metrics:  opts.Metrics,
		Taxonomy: tax,
		Processor: assessment.NewProcessor(tax,
			assessment.WithTracer(mastery.NewTracer(cfg.Tracer.Slip, cfg.Tracer.Guess)),
			assessment.WithLogger(log),
			assessment.WithMetrics(opts.Metrics),
		),
		Profiles: profile.NewService(store.NewProfileRepo(kv),
			profile.WithLogger(log),
			profile.WithMetrics(opts.Metrics),
		),
		Assessments: store.NewAssessmentRepo(kv),
		Reports: report.NewGenerator(cfg.Report,
			report.WithLogger(log),
			report.WithMetrics(opts.Metrics),
		),
		kv: kv,
	}, nil
}

// OpenKV opens the key-value backend named by cfg.Store.Backend.
func OpenKV(ctx context.Context, cfg config.Config) (store.KV, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return store.NewMemoryKV(), nil
	case config.BackendRedis:
		kv, err := store.OpenRedis(ctx, store.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		return kv, nil
	case config.BackendSQLite, "":
		path := cfg.Store.DB
		if path == "" {
			p, err := store.DefaultDBPath()
			if err != nil {
				return nil, fmt.Errorf("resolve DB path: %w", err)
			}
			path = p
		} else if err := store.EnsureDir(path); err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// Close releases the store and flushes the logger.
func (a *App) Close() error {
	_ = a.Log.Sync()
	return a.kv.Close()
}

// SaveAssessment stores a processed assessment.
func (a *App) SaveAssessment(ctx context.Context, as *model.Assessment) error {
	if as.ProcessingError != "" {
		return apperr.Validation("app.SaveAssessment", "assessment failed processing: "+as.ProcessingError)
	}
	return a.Assessments.Save(ctx, as)
}

// RecordResult summarizes one batch of recorded responses.
type RecordResult struct {
	StudentID    string         `json:"student_id"`
	AssessmentID string         `json:"assessment_id"`
	Recorded     int            `json:"recorded"`
	Failed       int            `json:"failed"`
	Traces       []model.Trace  `json:"traces"`
	Profile      *model.Profile `json:"profile"`
}

// RecordResponses scores responses against a stored assessment and applies
// every successful trace to the student's profile. Failed traces are
// reported in the result and never applied.
func (a *App) RecordResponses(ctx context.Context, studentID, assessmentID string, responses []assessment.Response) (*RecordResult, error) {
	const op = "app.RecordResponses"
	if studentID == "" {
		return nil, apperr.Validation(op, "student id is required")
	}
	as, err := a.Assessments.Get(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	res := &RecordResult{
		StudentID:    studentID,
		AssessmentID: as.AssessmentID,
		Traces:       a.Processor.ProcessAssessmentResponses(studentID, as, responses),
	}
	for i := range res.Traces {
		tr := &res.Traces[i]
		if tr.Failed() {
			res.Failed++
			continue
		}
		p, err := a.Profiles.ApplyTrace(ctx, studentID, tr)
		if err != nil {
			return nil, fmt.Errorf("record response %s: %w", tr.Interaction.QuestionID, err)
		}
		res.Profile = p
		res.Recorded++
	}
	if res.Profile == nil {
		p, err := a.Profiles.GetProfile(ctx, studentID)
		if err != nil {
			return nil, err
		}
		res.Profile = p
	}
	a.Log.Info("responses recorded",
		zap.String("student_id", studentID),
		zap.String("assessment_id", as.AssessmentID),
		zap.Int("recorded", res.Recorded),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

// Report generates the report for a student's recorded interactions with
// an assessment, against the student's full knowledge state. It returns a
// not_found error when the student has no interactions with it.
func (a *App) Report(ctx context.Context, studentID, assessmentID string) (*report.Report, error) {
	const op = "app.Report"
	as, err := a.Assessments.Get(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	p, err := a.Profiles.GetProfile(ctx, studentID)
	if err != nil {
		return nil, err
	}
	interactions := profile.AssessmentInteractions(p, as.AssessmentID)
	if len(interactions) == 0 {
		return nil, apperr.NotFound(op, fmt.Sprintf("student %s has no responses for assessment %s", studentID, as.AssessmentID))
	}
	knowledge := profile.MasteryMap(profile.Knowledge(p, ""))
	return a.Reports.Generate(p.StudentID, as, interactions, knowledge), nil
}

// History summarizes a student's activity per assessment.
func (a *App) History(ctx context.Context, studentID string) ([]profile.HistorySummary, error) {
	p, err := a.Profiles.GetProfile(ctx, studentID)
	if err != nil {
		return nil, err
	}
	assessments, err := a.Assessments.List(ctx)
	if err != nil {
		return nil, err
	}
	return profile.AssessmentHistory(p, assessments), nil
}
