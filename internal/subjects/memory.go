package subjects

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is a map-backed Store for dev/testing.
type Memory struct {
	mu       sync.RWMutex
	subjects map[string]Subject
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{subjects: make(map[string]Subject)}
}

func (m *Memory) Create(_ context.Context, s Subject) (Subject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	m.subjects[s.ID] = s
	return s, nil
}

func (m *Memory) Get(_ context.Context, id string) (*Subject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.subjects[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (m *Memory) Rename(_ context.Context, id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subjects[id]
	if !ok {
		return errors.New("subject not found")
	}
	s.Name = name
	m.subjects[id] = s
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subjects, id)
	return nil
}

func (m *Memory) ByTeacher(_ context.Context, teacherID string) ([]Subject, error) {
	return m.filter(func(s Subject) bool { return s.TeacherID == teacherID }), nil
}

func (m *Memory) ByCohort(_ context.Context, department string, semester int) ([]Subject, error) {
	return m.filter(func(s Subject) bool {
		return s.Department == department && s.Semester == semester
	}), nil
}

func (m *Memory) filter(keep func(Subject) bool) []Subject {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Subject
	for _, s := range m.subjects {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
