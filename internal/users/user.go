package users

import (
	"context"
	"errors"
	"time"
)

// Role separates the two dashboards.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Semesters are ordinal 1..8.
const MaxSemester = 8

// Department sets are fixed and differ per role.
var (
	StudentDepartments = []string{"CSE", "ECE", "EEE", "MECH", "CIVIL"}
	TeacherDepartments = []string{"CSE", "ECE", "EEE", "MECH", "CIVIL", "MATHS", "PHYSICS"}
)

// User is an account record. Profile fields are filled once at onboarding.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	Department   string    `json:"department,omitempty"`
	Semester     int       `json:"semester,omitempty"`
	RollNo       string    `json:"roll_no,omitempty"`
	RegNo        string    `json:"reg_no,omitempty"`
	Onboarded    bool      `json:"onboarded"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is the one-time onboarding payload.
type Profile struct {
	Department string `json:"department"`
	Semester   int    `json:"semester"`
	RollNo     string `json:"roll_no"`
	RegNo      string `json:"reg_no"`
}

// Store persists user records. Lookups return (nil, nil) when no row matches.
type Store interface {
	Create(ctx context.Context, u User) error
	ByID(ctx context.Context, id string) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	CompleteOnboarding(ctx context.Context, id string, p Profile) error
	Students(ctx context.Context, department string, semester int) ([]User, error)
}

// ErrDuplicateEmail is returned by Create when the email is taken.
var ErrDuplicateEmail = errors.New("email already registered")

// ValidDepartment reports whether dept belongs to the role's enumerated set.
func ValidDepartment(role Role, dept string) bool {
	set := StudentDepartments
	if role == RoleTeacher {
		set = TeacherDepartments
	}
	for _, d := range set {
		if d == dept {
			return true
		}
	}
	return false
}
