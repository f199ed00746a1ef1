package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/anshu3933/tlav/internal/apperr"
	"github.com/anshu3933/tlav/internal/model"
)

const (
	profileKeyPrefix = "student_profile_"
	assessmentsKey   = "assessments"
)

// ProfileKey returns the KV key holding a student's profile.
func ProfileKey(studentID string) string {
	return profileKeyPrefix + studentID
}

// ProfileRepo persists student profiles.
type ProfileRepo interface {
	// Get returns the stored profile, or an error wrapping ErrNotFound.
	Get(ctx context.Context, studentID string) (*model.Profile, error)

	// Save stores the full profile.
	Save(ctx context.Context, p *model.Profile) error

	// IDs lists the ids of all stored profiles.
	IDs(ctx context.Context) ([]string, error)
}

// AssessmentRepo persists assessments as a single list.
type AssessmentRepo interface {
	// List returns every stored assessment in insertion order.
	List(ctx context.Context) ([]model.Assessment, error)

	// Get returns the assessment with the given id, or a not_found error.
	Get(ctx context.Context, id string) (*model.Assessment, error)

	// Save appends a, replacing any stored assessment with the same id.
	Save(ctx context.Context, a *model.Assessment) error
}

// NewProfileRepo returns a ProfileRepo over kv.
func NewProfileRepo(kv KV) ProfileRepo {
	return &profileRepo{kv: kv}
}

// NewAssessmentRepo returns an AssessmentRepo over kv.
func NewAssessmentRepo(kv KV) AssessmentRepo {
	return &assessmentRepo{kv: kv}
}

type profileRepo struct {
	kv KV
}

func (r *profileRepo) Get(ctx context.Context, studentID string) (*model.Profile, error) {
	data, err := r.kv.Get(ctx, ProfileKey(studentID))
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", studentID, err)
	}
	var p model.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", studentID, err)
	}
	if p.StudentID == "" {
		return nil, fmt.Errorf("decode profile %s: missing student_id", studentID)
	}
	return &p, nil
}

func (r *profileRepo) Save(ctx context.Context, p *model.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile %s: %w", p.StudentID, err)
	}
	if err := r.kv.Set(ctx, ProfileKey(p.StudentID), data); err != nil {
		return fmt.Errorf("save profile %s: %w", p.StudentID, err)
	}
	return nil
}

func (r *profileRepo) IDs(ctx context.Context) ([]string, error) {
	keys, err := r.kv.ListKeys(ctx, profileKeyPrefix)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		if id := strings.TrimPrefix(k, profileKeyPrefix); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type assessmentRepo struct {
	// mu serializes read-modify-write of the assessment list.
	mu sync.Mutex
	kv KV
}

func (r *assessmentRepo) List(ctx context.Context) ([]model.Assessment, error) {
	data, err := r.kv.Get(ctx, assessmentsKey)
	if errors.Is(err, ErrNotFound) {
		return []model.Assessment{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load assessments: %w", err)
	}
	var list []model.Assessment
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode assessments: %w", err)
	}
	return list, nil
}

func (r *assessmentRepo) Get(ctx context.Context, id string) (*model.Assessment, error) {
	list, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].AssessmentID == id {
			return &list[i], nil
		}
	}
	return nil, apperr.NotFound("store.AssessmentRepo.Get", fmt.Sprintf("assessment %q not found", id))
}

func (r *assessmentRepo) Save(ctx context.Context, a *model.Assessment) error {
	if a.AssessmentID == "" {
		return apperr.Validation("store.AssessmentRepo.Save", "assessment id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.List(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range list {
		if list[i].AssessmentID == a.AssessmentID {
			list[i] = a.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, a.Clone())
	}

	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode assessments: %w", err)
	}
	if err := r.kv.Set(ctx, assessmentsKey, data); err != nil {
		return fmt.Errorf("save assessments: %w", err)
	}
	return nil
}
