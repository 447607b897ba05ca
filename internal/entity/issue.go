package entity

import "time"

// OverdueDays is the loan window. An open issue becomes overdue once it has
// been out strictly longer than this many days.
const OverdueDays = 10

// Issue is one loan record linking a book to a student. ReturnDate is nil
// while the loan is open and is set exactly once on return.
type Issue struct {
	ID         int64      `json:"id"`
	BookID     int64      `json:"book_id"`
	StudentID  int64      `json:"student_id"`
	Time       time.Time  `json:"time"` // borrow timestamp
	ReturnDate *time.Time `json:"return_date"`
}

// Open reports whether the loan has not been returned.
func (i Issue) Open() bool {
	return i.ReturnDate == nil
}

// DueDate is the borrow timestamp plus the loan window.
func (i Issue) DueDate() time.Time {
	return i.Time.Add(OverdueDays * 24 * time.Hour)
}

// OverdueAt reports whether the issue is open and strictly past its due date
// at the given instant. A loan at exactly the due date is not overdue.
func (i Issue) OverdueAt(now time.Time) bool {
	return i.Open() && now.After(i.DueDate())
}

// IssueDetail is an issue joined with the book and student it references,
// as loaded for listings and reports.
type IssueDetail struct {
	Issue
	BookTitle    string
	BookAuthor   string
	StudentExtID string
	StudentName  string
}
