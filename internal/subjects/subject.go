package subjects

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Subject is a class owned by one teacher. Its roster is implicit: every
// student matching Department+Semester is enrolled.
type Subject struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Code       string    `json:"code"`
	TeacherID  string    `json:"teacher_id"`
	Department string    `json:"department"`
	Semester   int       `json:"semester"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store persists subjects. Get returns (nil, nil) when no row matches.
type Store interface {
	Create(ctx context.Context, s Subject) (Subject, error)
	Get(ctx context.Context, id string) (*Subject, error)
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
	ByTeacher(ctx context.Context, teacherID string) ([]Subject, error)
	ByCohort(ctx context.Context, department string, semester int) ([]Subject, error)
}

// DeriveCode builds a short course code from the subject name and semester:
// "Computer Science", 1 -> "CS101". Single-word names use their first two
// letters.
func DeriveCode(name string, semester int) string {
	var initials []rune
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.IsLetter(r) {
				initials = append(initials, unicode.ToUpper(r))
				break
			}
		}
		if len(initials) == 4 {
			break
		}
	}
	if len(initials) == 1 {
		for _, r := range strings.Fields(name)[0][1:] {
			if unicode.IsLetter(r) {
				initials = append(initials, unicode.ToUpper(r))
				break
			}
		}
	}
	if len(initials) == 0 {
		initials = []rune{'S', 'U', 'B'}
	}
	return fmt.Sprintf("%s%d", string(initials), semester*100+1)
}
