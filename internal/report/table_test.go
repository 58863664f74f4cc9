package report

import (
	"testing"
	"time"

	"uniattend/internal/attendance"
	"uniattend/internal/subjects"
)

func sampleTable() Table {
	sub := &subjects.Subject{ID: "s1", Name: "Computer Science", Code: "CS301"}
	sum := attendance.Summary{
		SubjectID:   "s1",
		ClassesHeld: 10,
		Students: []attendance.StudentStat{
			{StudentID: "u1", Name: "One", RollNo: "2", Present: 8, Absent: 2, Marked: 10, Percentage: 80},
			{StudentID: "u2", Name: "Two", RollNo: "9", Present: 5, Absent: 1, Marked: 6, Percentage: 83},
		},
	}
	return BuildSubjectTable(sub, sum, time.Date(2024, 11, 27, 10, 30, 0, 0, time.UTC))
}

func TestBuildSubjectTable(t *testing.T) {
	tab := sampleTable()
	if tab.Title != "Attendance Report: Computer Science (CS301)" {
		t.Errorf("title = %q", tab.Title)
	}
	if tab.GeneratedAt != "2024-11-27 10:30" {
		t.Errorf("generated at = %q", tab.GeneratedAt)
	}
	if len(tab.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(tab.Rows))
	}
	want := []string{"9", "Two", "10", "6", "5", "1", "83%"}
	for i, cell := range want {
		if tab.Rows[1][i] != cell {
			t.Errorf("rows[1][%d] = %q, want %q", i, tab.Rows[1][i], cell)
		}
	}
	if len(tab.Headers) != len(tab.Rows[0]) {
		t.Errorf("header count %d != row width %d", len(tab.Headers), len(tab.Rows[0]))
	}
}

func TestRender(t *testing.T) {
	f, err := Render(sampleTable())
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	got, err := f.GetCellValue(sheetName, "A1")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Attendance Report: Computer Science (CS301)" {
		t.Errorf("A1 = %q", got)
	}
	if got, _ := f.GetCellValue(sheetName, "B4"); got != "Student" {
		t.Errorf("B4 = %q, want header", got)
	}
	if got, _ := f.GetCellValue(sheetName, "G6"); got != "83%" {
		t.Errorf("G6 = %q, want 83%%", got)
	}
}
