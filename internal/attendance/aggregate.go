// Package attendance derives per-student and per-subject statistics from the
// stored session records. Everything here is a scan over fetched data; nothing
// is written.
package attendance

import (
	"context"

	"uniattend/internal/roster"
	"uniattend/internal/session"
	"uniattend/internal/subjects"
)

// StudentStat is one aggregated row.
//
// Marked (the percentage denominator) counts only sessions where the student
// has an explicit status; ClassesHeld on the summary counts every session the
// teacher held. The two differ for students enrolled late and both are
// surfaced so neither view misleads.
type StudentStat struct {
	StudentID  string `json:"student_id"`
	Name       string `json:"name"`
	RollNo     string `json:"roll_no"`
	Present    int    `json:"present"`
	Absent     int    `json:"absent"`
	Marked     int    `json:"marked"`
	Percentage int    `json:"percentage"`
}

// Summary is the per-subject table, one row per roster member in roster order.
type Summary struct {
	SubjectID   string        `json:"subject_id"`
	ClassesHeld int           `json:"classes_held"`
	Students    []StudentStat `json:"students"`
}

// Entry is one dated status in a student's history. Marked is false when the
// student had no status recorded for that session.
type Entry struct {
	Date   string         `json:"date"`
	Status session.Status `json:"status,omitempty"`
	Marked bool           `json:"marked"`
}

// Aggregator scans session records for a subject.
type Aggregator struct {
	store    session.Store
	resolver *roster.Resolver
}

// NewAggregator creates an aggregator.
func NewAggregator(store session.Store, resolver *roster.Resolver) *Aggregator {
	return &Aggregator{store: store, resolver: resolver}
}

// Subject aggregates every roster member over all session records.
func (a *Aggregator) Subject(ctx context.Context, sub *subjects.Subject) (Summary, error) {
	members, err := a.resolver.Resolve(ctx, sub.Department, sub.Semester)
	if err != nil {
		return Summary{}, err
	}
	records, err := a.store.BySubject(ctx, sub.ID)
	if err != nil {
		return Summary{}, err
	}

	out := Summary{
		SubjectID:   sub.ID,
		ClassesHeld: len(records),
		Students:    make([]StudentStat, 0, len(members)),
	}
	for _, u := range members {
		stat := StudentStat{StudentID: u.ID, Name: u.Name, RollNo: u.RollNo}
		for _, rec := range records {
			switch rec.Statuses[u.ID] {
			case session.Present:
				stat.Present++
			case session.Absent:
				stat.Absent++
			}
		}
		stat.Marked = stat.Present + stat.Absent
		stat.Percentage = Percentage(stat.Present, stat.Marked)
		out.Students = append(out.Students, stat)
	}
	return out, nil
}

// Student returns one student's stats and dated history across all sessions
// of the subject, oldest first.
func (a *Aggregator) Student(ctx context.Context, sub *subjects.Subject, studentID string) (StudentStat, []Entry, error) {
	records, err := a.store.BySubject(ctx, sub.ID)
	if err != nil {
		return StudentStat{}, nil, err
	}

	stat := StudentStat{StudentID: studentID}
	history := make([]Entry, 0, len(records))
	for _, rec := range records {
		st, ok := rec.Statuses[studentID]
		history = append(history, Entry{Date: rec.Date, Status: st, Marked: ok})
		switch st {
		case session.Present:
			stat.Present++
		case session.Absent:
			stat.Absent++
		}
	}
	stat.Marked = stat.Present + stat.Absent
	stat.Percentage = Percentage(stat.Present, stat.Marked)
	return stat, history, nil
}

// Percentage is round-half-up(100·present/marked), 0 when nothing is marked.
func Percentage(present, marked int) int {
	if marked == 0 {
		return 0
	}
	return (200*present + marked) / (2 * marked)
}
