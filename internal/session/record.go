// Package session holds per-date attendance records: one record per subject
// per calendar date, mapping student ids to an explicit status. A student id
// missing from the mapping means "not recorded", which is distinct from Absent.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"uniattend/internal/users"
)

// Status is an explicit per-student mark.
type Status string

const (
	Present Status = "Present"
	Absent  Status = "Absent"
)

// DateLayout is the calendar-date key format.
const DateLayout = "2006-01-02"

// Record is one scheduled class meeting. Re-saving the same subject+date
// overwrites the whole mapping; it never duplicates.
type Record struct {
	SubjectID string            `json:"subject_id"`
	Date      string            `json:"date"`
	StartTime string            `json:"start_time"`
	EndTime   string            `json:"end_time"`
	Statuses  map[string]Status `json:"statuses"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// ErrNotFound signals a missing record; callers render the default view
// instead of treating it as a failure.
var ErrNotFound = errors.New("session record not found")

// ErrInvalid wraps validation failures rejected before any I/O.
var ErrInvalid = errors.New("invalid input")

// Store persists session records keyed by (subjectID, date).
type Store interface {
	Get(ctx context.Context, subjectID, date string) (Record, error)
	// Put overwrites the full record for its key and stamps UpdatedAt.
	// Last writer wins; there is no version check.
	Put(ctx context.Context, rec Record) (Record, error)
	// BySubject returns every record for the subject, oldest date first.
	BySubject(ctx context.Context, subjectID string) ([]Record, error)
}

// DefaultRecord presents every roster member as Present. It is only ever
// materialized in memory; nothing is persisted until an explicit save.
func DefaultRecord(roster []users.User) map[string]Status {
	statuses := make(map[string]Status, len(roster))
	for _, u := range roster {
		statuses[u.ID] = Present
	}
	return statuses
}

// ApplyQuickAbsent rewrites the in-progress mapping from a comma-separated
// roll-number list: listed members become Absent, everyone else Present.
// Tokens that match no roster roll are ignored. The result's key set is
// exactly the roster's id set. Returns how many were marked absent.
func ApplyQuickAbsent(roster []users.User, rollList string) (map[string]Status, int) {
	absent := make(map[string]bool)
	for _, tok := range strings.Split(rollList, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			absent[tok] = true
		}
	}

	statuses := make(map[string]Status, len(roster))
	marked := 0
	for _, u := range roster {
		if absent[u.RollNo] {
			statuses[u.ID] = Absent
			marked++
		} else {
			statuses[u.ID] = Present
		}
	}
	return statuses, marked
}
