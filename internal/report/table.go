// Package report turns aggregated attendance into a tabular document: a pure
// Table descriptor first, then an xlsx rendering of it.
package report

import (
	"strconv"
	"time"

	"uniattend/internal/attendance"
	"uniattend/internal/subjects"
)

// Table is the renderer-agnostic report shape.
type Table struct {
	Title       string     `json:"title"`
	Headers     []string   `json:"headers"`
	Rows        [][]string `json:"rows"`
	GeneratedAt string     `json:"generated_at"`
}

// BuildSubjectTable assembles the full-subject report. Pure: no I/O, row
// order follows the summary (roster order).
func BuildSubjectTable(sub *subjects.Subject, sum attendance.Summary, now time.Time) Table {
	rows := make([][]string, 0, len(sum.Students))
	for _, st := range sum.Students {
		rows = append(rows, []string{
			st.RollNo,
			st.Name,
			strconv.Itoa(sum.ClassesHeld),
			strconv.Itoa(st.Marked),
			strconv.Itoa(st.Present),
			strconv.Itoa(st.Absent),
			strconv.Itoa(st.Percentage) + "%",
		})
	}
	return Table{
		Title:       "Attendance Report: " + sub.Name + " (" + sub.Code + ")",
		Headers:     []string{"Roll No", "Student", "Classes Held", "Marked", "Present", "Absent", "Percentage"},
		Rows:        rows,
		GeneratedAt: now.Format("2006-01-02 15:04"),
	}
}
