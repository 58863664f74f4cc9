package subjects

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"uniattend/internal/realtime"
	"uniattend/internal/users"
)

// Service owns subject lifecycle and teacher-ownership checks.
type Service struct {
	store Store
	hub   realtime.Publisher
}

// NewService creates a service. hub may be nil.
func NewService(store Store, hub realtime.Publisher) *Service {
	return &Service{store: store, hub: hub}
}

var (
	// ErrNotOwner rejects writes against a subject owned by another teacher.
	ErrNotOwner = errors.New("subject belongs to another teacher")
	// ErrNotFound signals an unknown subject id.
	ErrNotFound = errors.New("subject not found")
	// ErrNameRequired rejects blank subject names before any I/O.
	ErrNameRequired = errors.New("subject name required")
)

// Create registers a subject for the teacher. Department defaults to the
// teacher's own; the code is derived from name and semester.
func (s *Service) Create(ctx context.Context, teacher *users.User, name, department string, semester int) (Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Subject{}, ErrNameRequired
	}
	if department == "" {
		department = teacher.Department
	}
	if !users.ValidDepartment(users.RoleStudent, department) {
		return Subject{}, fmt.Errorf("unknown department %q", department)
	}
	if semester < 1 || semester > users.MaxSemester {
		return Subject{}, fmt.Errorf("semester must be 1..%d", users.MaxSemester)
	}

	created, err := s.store.Create(ctx, Subject{
		Name:       name,
		Code:       DeriveCode(name, semester),
		TeacherID:  teacher.ID,
		Department: department,
		Semester:   semester,
	})
	if err != nil {
		return Subject{}, err
	}
	realtime.Publish(ctx, s.hub, realtime.SubjectsTopic(created.Department, created.Semester), "created", created)
	return created, nil
}

// Rename updates the display name after an ownership check.
func (s *Service) Rename(ctx context.Context, teacherID, subjectID, name string) (*Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	sub, err := s.owned(ctx, teacherID, subjectID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Rename(ctx, subjectID, name); err != nil {
		return nil, err
	}
	sub.Name = name
	realtime.Publish(ctx, s.hub, realtime.SubjectsTopic(sub.Department, sub.Semester), "renamed", sub)
	return sub, nil
}

// Delete removes the subject and its session records.
func (s *Service) Delete(ctx context.Context, teacherID, subjectID string) error {
	sub, err := s.owned(ctx, teacherID, subjectID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, subjectID); err != nil {
		return err
	}
	realtime.Publish(ctx, s.hub, realtime.SubjectsTopic(sub.Department, sub.Semester), "deleted", sub)
	return nil
}

// Owned fetches the subject and verifies the teacher owns it.
func (s *Service) Owned(ctx context.Context, teacherID, subjectID string) (*Subject, error) {
	return s.owned(ctx, teacherID, subjectID)
}

func (s *Service) owned(ctx context.Context, teacherID, subjectID string) (*Subject, error) {
	sub, err := s.store.Get(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrNotFound
	}
	if sub.TeacherID != teacherID {
		return nil, ErrNotOwner
	}
	return sub, nil
}
