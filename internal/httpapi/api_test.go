package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"uniattend/internal/attendance"
	"uniattend/internal/auth"
	"uniattend/internal/config"
	"uniattend/internal/realtime"
	"uniattend/internal/roster"
	"uniattend/internal/session"
	"uniattend/internal/subjects"
	"uniattend/internal/users"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.App{
		Env: "test", JWTIssuer: "uniattend", JWTSigningKey: "test-secret",
		AccessTTL: time.Minute, RefreshTTL: time.Hour, ResetTokenTTL: time.Hour,
		StoreBackend: "memory", RealtimeBackend: "memory",
	}
	userStore := users.NewMemory()
	subjStore := subjects.NewMemory()
	sessionStore := session.NewMemory()
	hub := realtime.NewMemoryHub()
	resolver := roster.NewResolver(userStore)

	h := New(Deps{
		Cfg: cfg,
		Auth: auth.NewService(userStore, auth.NewMemoryTokens(), auth.Config{
			Issuer: cfg.JWTIssuer, SigningKey: cfg.JWTSigningKey,
			AccessTTL: cfg.AccessTTL, RefreshTTL: cfg.RefreshTTL, ResetTokenTTL: cfg.ResetTokenTTL,
		}, nil),
		Users:      userStore,
		Onboarding: users.NewService(userStore),
		Subjects:   subjects.NewService(subjStore, hub),
		SubjStore:  subjStore,
		Sessions:   session.NewService(sessionStore, resolver, hub),
		Aggregator: attendance.NewAggregator(sessionStore, resolver),
		Resolver:   resolver,
		Hub:        hub,
	})
	return h.Router()
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad json %q: %v", w.Body.String(), err)
	}
	return out
}

// signUpAndOnboard registers an account and completes its profile, returning
// the access token and user id.
func signUpAndOnboard(t *testing.T, r *gin.Engine, name, email string, role users.Role, profile users.Profile) (string, string) {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/v1/auth/signup", "", gin.H{
		"name": name, "email": email, "password": "password123", "role": role,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup %s: %d %s", email, w.Code, w.Body.String())
	}
	resp := decode(t, w)
	token := resp["tokens"].(map[string]any)["access_token"].(string)
	id := resp["user"].(map[string]any)["id"].(string)

	w = doJSON(t, r, http.MethodPost, "/v1/me/onboarding", token, profile)
	if w.Code != http.StatusOK {
		t.Fatalf("onboarding %s: %d %s", email, w.Code, w.Body.String())
	}
	return token, id
}

func TestTeacherAttendanceFlow(t *testing.T) {
	r := newTestRouter(t)

	teacher, _ := signUpAndOnboard(t, r, "Teach", "teach@test.edu", users.RoleTeacher,
		users.Profile{Department: "CSE"})
	for _, roll := range []string{"9", "10", "2"} {
		signUpAndOnboard(t, r, "Student "+roll, "s"+roll+"@test.edu", users.RoleStudent,
			users.Profile{Department: "CSE", Semester: 3, RollNo: roll, RegNo: "R" + roll})
	}

	// Create a subject; code derives from name+semester.
	w := doJSON(t, r, http.MethodPost, "/v1/subjects", teacher, gin.H{"name": "Computer Science", "semester": 3})
	if w.Code != http.StatusCreated {
		t.Fatalf("create subject: %d %s", w.Code, w.Body.String())
	}
	sub := decode(t, w)["subject"].(map[string]any)
	subID := sub["id"].(string)
	if sub["code"] != "CS301" {
		t.Errorf("code = %v, want CS301", sub["code"])
	}

	// Roster comes back in natural roll order.
	w = doJSON(t, r, http.MethodGet, "/v1/subjects/"+subID+"/roster", teacher, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("roster: %d %s", w.Code, w.Body.String())
	}
	members := decode(t, w)["roster"].([]any)
	gotRolls := make([]string, 0, len(members))
	for _, m := range members {
		gotRolls = append(gotRolls, m.(map[string]any)["roll_no"].(string))
	}
	for i, want := range []string{"2", "9", "10"} {
		if gotRolls[i] != want {
			t.Errorf("roster[%d] roll = %s, want %s", i, gotRolls[i], want)
		}
	}

	// First view of a date defaults everyone to Present, unpersisted.
	w = doJSON(t, r, http.MethodGet, "/v1/subjects/"+subID+"/sessions/2024-11-26", teacher, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("session view: %d %s", w.Code, w.Body.String())
	}
	view := decode(t, w)
	if view["persisted"].(bool) {
		t.Error("fresh date reported persisted")
	}
	statuses := view["record"].(map[string]any)["statuses"].(map[string]any)
	if len(statuses) != 3 {
		t.Fatalf("default statuses = %d, want 3", len(statuses))
	}
	for id, st := range statuses {
		if st != "Present" {
			t.Errorf("default status[%s] = %v", id, st)
		}
	}

	// Quick-absent proposes a mapping without saving.
	w = doJSON(t, r, http.MethodPost, "/v1/subjects/"+subID+"/sessions/2024-11-26/quick-absent", teacher,
		gin.H{"rolls": "9, 2"})
	if w.Code != http.StatusOK {
		t.Fatalf("quick-absent: %d %s", w.Code, w.Body.String())
	}
	qa := decode(t, w)
	if qa["marked_count"].(float64) != 2 {
		t.Errorf("marked_count = %v, want 2", qa["marked_count"])
	}

	// Save the proposed mapping, then re-view.
	w = doJSON(t, r, http.MethodPut, "/v1/subjects/"+subID+"/sessions/2024-11-26", teacher, gin.H{
		"start_time": "09:00", "end_time": "10:00", "statuses": qa["statuses"],
	})
	if w.Code != http.StatusOK {
		t.Fatalf("save: %d %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodGet, "/v1/subjects/"+subID+"/sessions/2024-11-26", teacher, nil)
	view = decode(t, w)
	if !view["persisted"].(bool) {
		t.Error("saved date reported unpersisted")
	}

	// Report reflects the save: one class held, two absent.
	w = doJSON(t, r, http.MethodGet, "/v1/subjects/"+subID+"/report", teacher, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("report: %d %s", w.Code, w.Body.String())
	}
	sum := decode(t, w)["summary"].(map[string]any)
	if sum["classes_held"].(float64) != 1 {
		t.Errorf("classes_held = %v, want 1", sum["classes_held"])
	}
	absentTotal := 0.0
	for _, row := range sum["students"].([]any) {
		absentTotal += row.(map[string]any)["absent"].(float64)
	}
	if absentTotal != 2 {
		t.Errorf("total absent = %v, want 2", absentTotal)
	}
}

func TestStudentAccessControl(t *testing.T) {
	r := newTestRouter(t)

	teacher, _ := signUpAndOnboard(t, r, "Teach", "teach@test.edu", users.RoleTeacher,
		users.Profile{Department: "CSE"})
	student, studentID := signUpAndOnboard(t, r, "Stu", "stu@test.edu", users.RoleStudent,
		users.Profile{Department: "CSE", Semester: 3, RollNo: "7", RegNo: "R7"})
	outsider, outsiderID := signUpAndOnboard(t, r, "Out", "out@test.edu", users.RoleStudent,
		users.Profile{Department: "ECE", Semester: 3, RollNo: "1", RegNo: "R1"})

	w := doJSON(t, r, http.MethodPost, "/v1/subjects", teacher, gin.H{"name": "Data Structures", "semester": 3})
	subID := decode(t, w)["subject"].(map[string]any)["id"].(string)

	w = doJSON(t, r, http.MethodPut, "/v1/subjects/"+subID+"/sessions/2024-11-27", teacher, gin.H{
		"statuses": map[string]string{studentID: "Present"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("save: %d %s", w.Code, w.Body.String())
	}

	// Students cannot hit teacher routes.
	if w := doJSON(t, r, http.MethodPost, "/v1/subjects", student, gin.H{"name": "X", "semester": 3}); w.Code != http.StatusForbidden {
		t.Errorf("student create subject: %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/v1/subjects/"+subID+"/report", student, nil); w.Code != http.StatusForbidden {
		t.Errorf("student report: %d", w.Code)
	}

	// A student reads their own history.
	w = doJSON(t, r, http.MethodGet, "/v1/subjects/"+subID+"/students/"+studentID+"/history", student, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("own history: %d %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	if resp["stats"].(map[string]any)["percentage"].(float64) != 100 {
		t.Errorf("percentage = %v, want 100", resp["stats"].(map[string]any)["percentage"])
	}

	// But not someone else's, and not from another cohort.
	if w := doJSON(t, r, http.MethodGet, "/v1/subjects/"+subID+"/students/"+outsiderID+"/history", student, nil); w.Code != http.StatusForbidden {
		t.Errorf("other history: %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/v1/subjects/"+subID+"/students/"+outsiderID+"/history", outsider, nil); w.Code != http.StatusForbidden {
		t.Errorf("outsider history: %d", w.Code)
	}

	// The student's subject list is cohort-scoped.
	w = doJSON(t, r, http.MethodGet, "/v1/subjects", student, nil)
	if got := len(decode(t, w)["subjects"].([]any)); got != 1 {
		t.Errorf("student subject list = %d entries, want 1", got)
	}
	w = doJSON(t, r, http.MethodGet, "/v1/subjects", outsider, nil)
	if got := len(decode(t, w)["subjects"].([]any)); got != 0 {
		t.Errorf("outsider subject list = %d entries, want 0", got)
	}
}

func TestOnboardingGate(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/v1/auth/signup", "", gin.H{
		"name": "New", "email": "new@test.edu", "password": "password123", "role": "teacher",
	})
	token := decode(t, w)["tokens"].(map[string]any)["access_token"].(string)

	if w := doJSON(t, r, http.MethodGet, "/v1/subjects", token, nil); w.Code != http.StatusForbidden {
		t.Errorf("pre-onboarding subjects: %d, want 403", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/v1/subjects", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous subjects: %d, want 401", w.Code)
	}
}

func TestSubjectOwnership(t *testing.T) {
	r := newTestRouter(t)
	t1, _ := signUpAndOnboard(t, r, "T1", "t1@test.edu", users.RoleTeacher, users.Profile{Department: "CSE"})
	t2, _ := signUpAndOnboard(t, r, "T2", "t2@test.edu", users.RoleTeacher, users.Profile{Department: "CSE"})

	w := doJSON(t, r, http.MethodPost, "/v1/subjects", t1, gin.H{"name": "Networks", "semester": 5})
	subID := decode(t, w)["subject"].(map[string]any)["id"].(string)

	if w := doJSON(t, r, http.MethodPatch, "/v1/subjects/"+subID, t2, gin.H{"name": "Hijack"}); w.Code != http.StatusForbidden {
		t.Errorf("rename by non-owner: %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodDelete, "/v1/subjects/"+subID, t2, nil); w.Code != http.StatusForbidden {
		t.Errorf("delete by non-owner: %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPatch, "/v1/subjects/"+subID, t1, gin.H{"name": "Computer Networks"}); w.Code != http.StatusOK {
		t.Errorf("rename by owner: %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodDelete, "/v1/subjects/missing", t1, nil); w.Code != http.StatusNotFound {
		t.Errorf("delete unknown subject: %d", w.Code)
	}
}
