package entity

import (
	"strings"
	"time"
)

// BorrowLimit is the maximum number of concurrently open issues per student.
const BorrowLimit = 5

type Student struct {
	ID        int64     `json:"id"`
	StudentID string    `json:"student_id"` // external cohort-coded identifier, e.g. "IA25-001"
	Name      string    `json:"student_name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Class returns the portion of the external identifier before the first
// hyphen; the whole identifier when it has no hyphen.
func (s Student) Class() string {
	id, _, _ := strings.Cut(s.StudentID, "-")
	return id
}
