// Package roster resolves the implicit enrollment of a subject: every student
// whose department and semester match is a member, ordered by roll number.
package roster

import (
	"context"
	"sort"

	"uniattend/internal/users"
)

// Resolver derives rosters from the user population.
type Resolver struct {
	store users.Store
}

// NewResolver creates a resolver backed by a user store.
func NewResolver(store users.Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the enrolled students sorted ascending by roll number using
// numeric-aware comparison ("9" before "10"). An empty roster is not an error.
func (r *Resolver) Resolve(ctx context.Context, department string, semester int) ([]users.User, error) {
	members, err := r.store.Students(ctx, department, semester)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(members, func(i, j int) bool {
		return NaturalLess(members[i].RollNo, members[j].RollNo)
	})
	if members == nil {
		members = []users.User{}
	}
	return members, nil
}

// NaturalLess compares strings segment-wise, treating digit runs as numbers.
// Equal numeric values with different zero-padding fall back to the shorter
// run first so the order stays total.
func NaturalLess(a, b string) bool {
	for len(a) > 0 && len(b) > 0 {
		aRun, aNum, aRest := nextRun(a)
		bRun, bNum, bRest := nextRun(b)
		switch {
		case aNum && bNum:
			an, bn := trimZeros(aRun), trimZeros(bRun)
			if len(an) != len(bn) {
				return len(an) < len(bn)
			}
			if an != bn {
				return an < bn
			}
			if aRun != bRun {
				return len(aRun) < len(bRun)
			}
		case aNum != bNum:
			// Digits sort before letters, matching "1A" < "A1".
			return aNum
		default:
			if aRun != bRun {
				return aRun < bRun
			}
		}
		a, b = aRest, bRest
	}
	return len(a) < len(b)
}

func nextRun(s string) (run string, numeric bool, rest string) {
	numeric = isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == numeric {
		i++
	}
	return s[:i], numeric, s[i:]
}

func trimZeros(s string) string {
	i := 0
	for i < len(s)-1 && s[i] == '0' {
		i++
	}
	return s[i:]
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
