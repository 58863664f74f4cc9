package session

import (
	"context"
	"testing"

	"uniattend/internal/roster"
	"uniattend/internal/subjects"
	"uniattend/internal/users"
)

func newFixture(t *testing.T) (*Service, *Memory, *subjects.Subject) {
	t.Helper()
	ctx := context.Background()
	userStore := users.NewMemory()
	for _, u := range []users.User{
		{ID: "u1", Name: "One", Email: "u1@test.edu", Role: users.RoleStudent, Department: "CSE", Semester: 3, RollNo: "1", Onboarded: true},
		{ID: "u2", Name: "Two", Email: "u2@test.edu", Role: users.RoleStudent, Department: "CSE", Semester: 3, RollNo: "2", Onboarded: true},
	} {
		if err := userStore.Create(ctx, u); err != nil {
			t.Fatal(err)
		}
	}
	store := NewMemory()
	svc := NewService(store, roster.NewResolver(userStore), nil)
	sub := &subjects.Subject{ID: "s1", Name: "Computer Science", TeacherID: "t1", Department: "CSE", Semester: 3}
	return svc, store, sub
}

func TestViewDefaultsToPresentWithoutPersisting(t *testing.T) {
	svc, store, sub := newFixture(t)
	ctx := context.Background()

	// A record exists for the 27th but not the 26th.
	if _, err := store.Put(ctx, Record{
		SubjectID: "s1", Date: "2024-11-27",
		Statuses: map[string]Status{"u1": Present, "u2": Absent},
	}); err != nil {
		t.Fatal(err)
	}

	rec, persisted, members, err := svc.View(ctx, sub, "2024-11-26")
	if err != nil {
		t.Fatal(err)
	}
	if persisted {
		t.Error("view of a missing date reported persisted=true")
	}
	if len(members) != 2 {
		t.Fatalf("roster = %d members, want 2", len(members))
	}
	if rec.Statuses["u1"] != Present || rec.Statuses["u2"] != Present {
		t.Errorf("default view = %v, want all Present", rec.Statuses)
	}

	// The default must not have been written back.
	if _, err := store.Get(ctx, "s1", "2024-11-26"); err == nil {
		t.Error("default view was persisted")
	}

	// The saved date still reads back as stored.
	got, persisted, _, err := svc.View(ctx, sub, "2024-11-27")
	if err != nil {
		t.Fatal(err)
	}
	if !persisted || got.Statuses["u2"] != Absent {
		t.Errorf("persisted view = %v (persisted=%v)", got.Statuses, persisted)
	}
}

func TestViewRejectsBadDate(t *testing.T) {
	svc, _, sub := newFixture(t)
	if _, _, _, err := svc.View(context.Background(), sub, "27-11-2024"); err == nil {
		t.Error("malformed date accepted")
	}
}

func TestSaveValidatesStatuses(t *testing.T) {
	svc, _, sub := newFixture(t)
	_, err := svc.Save(context.Background(), sub, "2024-11-27", Record{
		Statuses: map[string]Status{"u1": "Late"},
	})
	if err == nil {
		t.Error("unknown status accepted")
	}
}

func TestSaveOverwritesAndStamps(t *testing.T) {
	svc, store, sub := newFixture(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, sub, "2024-11-27", Record{
		StartTime: "09:00", EndTime: "10:00",
		Statuses: map[string]Status{"u1": Present, "u2": Absent},
	})
	if err != nil {
		t.Fatal(err)
	}
	if saved.SubjectID != "s1" || saved.Date != "2024-11-27" {
		t.Errorf("save key = %s/%s", saved.SubjectID, saved.Date)
	}
	if saved.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not stamped")
	}

	if _, err := svc.Save(ctx, sub, "2024-11-27", Record{
		Statuses: map[string]Status{"u1": Absent, "u2": Absent},
	}); err != nil {
		t.Fatal(err)
	}
	all, err := store.BySubject(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("records = %d, want 1", len(all))
	}
	if all[0].Statuses["u1"] != Absent {
		t.Errorf("second save did not overwrite: %v", all[0].Statuses)
	}
}

func TestQuickAbsentRequiresInput(t *testing.T) {
	svc, _, sub := newFixture(t)
	if _, _, err := svc.QuickAbsent(context.Background(), sub, "   "); err == nil {
		t.Error("blank roll list accepted")
	}
}

func TestQuickAbsentProposesWithoutPersisting(t *testing.T) {
	svc, store, sub := newFixture(t)
	ctx := context.Background()

	statuses, marked, err := svc.QuickAbsent(ctx, sub, "2")
	if err != nil {
		t.Fatal(err)
	}
	if marked != 1 {
		t.Errorf("marked = %d, want 1", marked)
	}
	if statuses["u1"] != Present || statuses["u2"] != Absent {
		t.Errorf("mapping = %v", statuses)
	}
	if all, _ := store.BySubject(ctx, "s1"); len(all) != 0 {
		t.Errorf("quick-absent persisted %d records", len(all))
	}
}
