package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"uniattend/internal/metrics"
	"uniattend/internal/realtime"
	"uniattend/internal/roster"
	"uniattend/internal/subjects"
	"uniattend/internal/users"
)

// Service coordinates session views and saves for a subject.
type Service struct {
	store    Store
	resolver *roster.Resolver
	hub      realtime.Publisher
}

// NewService creates a service. hub may be nil.
func NewService(store Store, resolver *roster.Resolver, hub realtime.Publisher) *Service {
	return &Service{store: store, resolver: resolver, hub: hub}
}

// View returns the record for the date together with the current roster. When
// no record exists yet every roster member is presented as Present; the
// default is never written back.
func (s *Service) View(ctx context.Context, sub *subjects.Subject, date string) (Record, bool, []users.User, error) {
	if err := ValidateDate(date); err != nil {
		return Record{}, false, nil, err
	}
	members, err := s.resolver.Resolve(ctx, sub.Department, sub.Semester)
	if err != nil {
		return Record{}, false, nil, err
	}

	rec, err := s.store.Get(ctx, sub.ID, date)
	switch {
	case err == nil:
		return rec, true, members, nil
	case errors.Is(err, ErrNotFound):
		return Record{
			SubjectID: sub.ID,
			Date:      date,
			Statuses:  DefaultRecord(members),
		}, false, members, nil
	default:
		return Record{}, false, nil, err
	}
}

// Save overwrites the session record for the date. The mapping is stored as
// given; it is not merged with any previous save.
func (s *Service) Save(ctx context.Context, sub *subjects.Subject, date string, rec Record) (Record, error) {
	if err := ValidateDate(date); err != nil {
		return Record{}, err
	}
	if rec.Statuses == nil {
		rec.Statuses = map[string]Status{}
	}
	for id, st := range rec.Statuses {
		if st != Present && st != Absent {
			return Record{}, fmt.Errorf("%w: status %q for student %s", ErrInvalid, st, id)
		}
	}
	rec.SubjectID = sub.ID
	rec.Date = date

	saved, err := s.store.Put(ctx, rec)
	if err != nil {
		return Record{}, err
	}
	metrics.SessionsSaved.Inc()
	realtime.Publish(ctx, s.hub, realtime.SessionTopic(sub.ID, date), "saved", saved)
	return saved, nil
}

// QuickAbsent resolves the roster and proposes a full mapping from the
// free-text roll list. Nothing is persisted; the caller saves explicitly.
func (s *Service) QuickAbsent(ctx context.Context, sub *subjects.Subject, rollList string) (map[string]Status, int, error) {
	if strings.TrimSpace(rollList) == "" {
		return nil, 0, fmt.Errorf("%w: roll number list required", ErrInvalid)
	}
	members, err := s.resolver.Resolve(ctx, sub.Department, sub.Semester)
	if err != nil {
		return nil, 0, err
	}
	statuses, marked := ApplyQuickAbsent(members, rollList)
	return statuses, marked, nil
}

// ValidateDate enforces the calendar-date key format.
func ValidateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("%w: date must be %s", ErrInvalid, DateLayout)
	}
	return nil
}
