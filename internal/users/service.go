package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Service validates the one-time onboarding step.
type Service struct {
	store Store
}

// NewService creates a service backed by a store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Onboard fills profile fields once. Students supply all four fields;
// teachers only pick a department.
func (s *Service) Onboard(ctx context.Context, userID string, p Profile) (*User, error) {
	u, err := s.store.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errors.New("user not found")
	}
	if u.Onboarded {
		return nil, errors.New("onboarding already completed")
	}

	p.Department = strings.TrimSpace(p.Department)
	p.RollNo = strings.TrimSpace(p.RollNo)
	p.RegNo = strings.TrimSpace(p.RegNo)

	if !ValidDepartment(u.Role, p.Department) {
		return nil, fmt.Errorf("unknown department %q", p.Department)
	}
	if u.Role == RoleStudent {
		if p.Semester < 1 || p.Semester > MaxSemester {
			return nil, fmt.Errorf("semester must be 1..%d", MaxSemester)
		}
		if p.RollNo == "" || p.RegNo == "" {
			return nil, errors.New("roll and registration numbers required")
		}
	} else {
		// Teachers carry no semester or numbers.
		p.Semester = 0
		p.RollNo = ""
		p.RegNo = ""
	}

	if err := s.store.CompleteOnboarding(ctx, userID, p); err != nil {
		return nil, err
	}
	return s.store.ByID(ctx, userID)
}
