package session

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is a map-backed Store for dev/testing.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record // key: subjectID + "|" + date
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

func key(subjectID, date string) string { return subjectID + "|" + date }

func (m *Memory) Get(_ context.Context, subjectID, date string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[key(subjectID, date)]
	if !ok {
		return Record{}, ErrNotFound
	}
	return clone(rec), nil
}

func (m *Memory) Put(_ context.Context, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.UpdatedAt = time.Now().UTC()
	m.records[key(rec.SubjectID, rec.Date)] = clone(rec)
	return rec, nil
}

func (m *Memory) BySubject(_ context.Context, subjectID string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Record
	for _, rec := range m.records {
		if rec.SubjectID == subjectID {
			out = append(out, clone(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// clone keeps callers from mutating the stored mapping.
func clone(rec Record) Record {
	statuses := make(map[string]Status, len(rec.Statuses))
	for k, v := range rec.Statuses {
		statuses[k] = v
	}
	rec.Statuses = statuses
	return rec
}
