// Package http holds the REST handlers and the view structs they encode.
// Views are built by pure functions from loaded entities; every derived
// field (available copies, due dates, elapsed days) is computed here, never
// stored.
package http

import (
	"strconv"
	"time"

	"libraryapi/internal/entity"
	"libraryapi/internal/usecase"
)

// StudentRef identifies a student in lend/return payloads. Pointers carry
// the nulls of the not-found variants.
type StudentRef struct {
	StudentID   string  `json:"student_id"`
	StudentName *string `json:"student_name"`
}

// BookRef identifies a book in lend/return payloads.
type BookRef struct {
	BookID int64   `json:"book_id"`
	Title  *string `json:"title"`
}

func studentRef(s entity.Student) StudentRef {
	return StudentRef{StudentID: strconv.FormatInt(s.ID, 10), StudentName: &s.Name}
}

func bookRef(b entity.Book) BookRef {
	return BookRef{BookID: b.ID, Title: &b.Title}
}

// unresolvedRefs carry the raw path identifiers back on 404s.
func unresolvedStudentRef(pathID int64) StudentRef {
	return StudentRef{StudentID: strconv.FormatInt(pathID, 10)}
}

func unresolvedBookRef(pathID int64) BookRef {
	return BookRef{BookID: pathID}
}

// LoanResponse is the body of lend and return operations, success or
// rejection alike.
type LoanResponse struct {
	Success    bool       `json:"success"`
	Message    string     `json:"message"`
	Student    StudentRef `json:"student"`
	Book       BookRef    `json:"book"`
	BorrowDate *time.Time `json:"borrow_date,omitempty"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
}

// LendResponse is the body of a successful lend. Unlike LoanResponse it
// always carries return_date, which is null on a fresh loan.
type LendResponse struct {
	Success    bool       `json:"success"`
	Message    string     `json:"message"`
	Student    StudentRef `json:"student"`
	Book       BookRef    `json:"book"`
	BorrowDate *time.Time `json:"borrow_date"`
	ReturnDate *time.Time `json:"return_date"`
}

func lendSuccessView(receipt usecase.LoanReceipt) LendResponse {
	borrowDate := receipt.Issue.Time
	return LendResponse{
		Success:    true,
		Message:    "Book issued successfully",
		Student:    studentRef(receipt.Student),
		Book:       bookRef(receipt.Book),
		BorrowDate: &borrowDate,
		ReturnDate: receipt.Issue.ReturnDate,
	}
}

func returnSuccessView(receipt usecase.LoanReceipt) LoanResponse {
	return LoanResponse{
		Success:    true,
		Message:    "Book returned successfully",
		Student:    studentRef(receipt.Student),
		Book:       bookRef(receipt.Book),
		ReturnDate: receipt.Issue.ReturnDate,
	}
}

// ActiveLoanView is one open issue of a student's loan listing.
type ActiveLoanView struct {
	BookID       int64     `json:"book_id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	BorrowDate   time.Time `json:"borrow_date"`
	DueDate      time.Time `json:"due_date"`
	DaysBorrowed int       `json:"days_borrowed"`
}

// ActiveLoansResponse lists a student's open issues.
type ActiveLoansResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	Student StudentRef       `json:"student"`
	Issues  []ActiveLoanView `json:"issues"`
}

func activeLoansView(loans usecase.StudentLoans, now time.Time) ActiveLoansResponse {
	issues := make([]ActiveLoanView, 0, len(loans.Loans))
	for _, d := range loans.Loans {
		issues = append(issues, ActiveLoanView{
			BookID:       d.BookID,
			Title:        d.BookTitle,
			Author:       d.BookAuthor,
			BorrowDate:   d.Time,
			DueDate:      d.DueDate(),
			DaysBorrowed: wholeDays(now.Sub(d.Time)),
		})
	}
	return ActiveLoansResponse{
		Success: true,
		Student: studentRef(loans.Student),
		Issues:  issues,
	}
}

// BorrowerView identifies the holder of an overdue issue.
type BorrowerView struct {
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	BorrowDate  time.Time `json:"borrow_date"`
}

// OverdueIssueView is one overdue entry.
type OverdueIssueView struct {
	BookID      int64        `json:"book_id"`
	Title       string       `json:"title"`
	Borrower    BorrowerView `json:"borrower"`
	DueDate     time.Time    `json:"due_date"`
	DaysOverdue int          `json:"days_overdue"`
}

// OverdueResponse lists every overdue issue.
type OverdueResponse struct {
	Success       bool               `json:"success"`
	OverdueIssues []OverdueIssueView `json:"overdue_issues"`
}

func overdueView(details []entity.IssueDetail, now time.Time) OverdueResponse {
	out := make([]OverdueIssueView, 0, len(details))
	for _, d := range details {
		due := d.DueDate()
		out = append(out, OverdueIssueView{
			BookID: d.BookID,
			Title:  d.BookTitle,
			Borrower: BorrowerView{
				StudentID:   d.StudentExtID,
				StudentName: d.StudentName,
				BorrowDate:  d.Time,
			},
			DueDate:     due,
			DaysOverdue: wholeDays(now.Sub(due)),
		})
	}
	return OverdueResponse{Success: true, OverdueIssues: out}
}

// BookCountView is one entry of a cohort's most-borrowed ranking.
type BookCountView struct {
	BookID      int64  `json:"book_id"`
	Title       string `json:"title"`
	BorrowCount int    `json:"borrow_count"`
}

// CohortReportView is one cohort block in the report.
type CohortReportView struct {
	ClassID            string          `json:"class_id"`
	ClassName          string          `json:"class_name"`
	TotalBooksBorrowed int             `json:"total_books_borrowed"`
	MostBorrowedBooks  []BookCountView `json:"most_borrowed_books"`
}

// ReportResponse is the per-cohort borrowing report.
type ReportResponse struct {
	Success bool               `json:"success"`
	Reports []CohortReportView `json:"reports"`
}

func reportView(summaries []usecase.CohortSummary) ReportResponse {
	reports := make([]CohortReportView, 0, len(summaries))
	for _, s := range summaries {
		books := make([]BookCountView, 0, len(s.TopBooks))
		for _, b := range s.TopBooks {
			books = append(books, BookCountView{BookID: b.BookID, Title: b.Title, BorrowCount: b.BorrowCount})
		}
		reports = append(reports, CohortReportView{
			ClassID:            s.ClassID,
			ClassName:          s.ClassName,
			TotalBooksBorrowed: s.TotalBorrowed,
			MostBorrowedBooks:  books,
		})
	}
	return ReportResponse{Success: true, Reports: reports}
}

// IssueView is one ledger entry in book detail and history listings.
type IssueView struct {
	StudentID   string     `json:"student_id"`
	StudentName string     `json:"student_name"`
	BorrowDate  time.Time  `json:"borrow_date"`
	ReturnDate  *time.Time `json:"return_date"`
}

func issueViews(details []entity.IssueDetail) []IssueView {
	out := make([]IssueView, 0, len(details))
	for _, d := range details {
		out = append(out, IssueView{
			StudentID:   d.StudentExtID,
			StudentName: d.StudentName,
			BorrowDate:  d.Time,
			ReturnDate:  d.ReturnDate,
		})
	}
	return out
}

// PublisherRef is the nested publisher of a book view.
type PublisherRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// BookView is the catalog representation of one book, with its derived
// availability and the open issues holding copies.
type BookView struct {
	ID                int64         `json:"id"`
	BookNo            string        `json:"book_no"`
	CatalogNo         string        `json:"catalog_no"`
	BillNo            string        `json:"bill_no"`
	Title             string        `json:"title"`
	Author            string        `json:"author"`
	Vol               string        `json:"vol"`
	TotalQuantity     int           `json:"total_quantity"`
	AvailableQuantity int           `json:"available_quantity"`
	Price             *float64      `json:"price"`
	Publisher         *PublisherRef `json:"publisher"`
	DateOfIssue       *time.Time    `json:"date_of_issue"`
	PublishedYear     *int          `json:"published_year"`
	Remarks           string        `json:"remarks"`
	BorrowedBy        []IssueView   `json:"borrowed_by"`
}

func bookView(b entity.Book, openIssues []entity.IssueDetail, pub *entity.Publisher) BookView {
	var pubRef *PublisherRef
	if pub != nil {
		pubRef = &PublisherRef{ID: pub.ID, Name: pub.Name}
	}
	return BookView{
		ID:                b.ID,
		BookNo:            b.BookNo,
		CatalogNo:         b.CatalogNo,
		BillNo:            b.BillNo,
		Title:             b.Title,
		Author:            b.Author,
		Vol:               b.Vol,
		TotalQuantity:     b.Quantity,
		AvailableQuantity: b.AvailableCopies(len(openIssues)),
		Price:             b.Price,
		Publisher:         pubRef,
		DateOfIssue:       b.DateOfIssue,
		PublishedYear:     b.PublishedYear,
		Remarks:           b.Remarks,
		BorrowedBy:        issueViews(openIssues),
	}
}

// BookHistoryResponse lists every issue, open and closed, for one book.
type BookHistoryResponse struct {
	BookID int64       `json:"book_id"`
	Title  string      `json:"title"`
	Issues []IssueView `json:"issues"`
}

// StudentView is one row of the student listing.
type StudentView struct {
	ID          int64  `json:"id"`
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	Email       string `json:"email,omitempty"`
	Class       string `json:"class"`
}

func studentView(s entity.Student) StudentView {
	return StudentView{
		ID:          s.ID,
		StudentID:   s.StudentID,
		StudentName: s.Name,
		Email:       s.Email,
		Class:       s.Class(),
	}
}

// wholeDays truncates a duration to whole days.
func wholeDays(d time.Duration) int {
	return int(d.Hours() / 24)
}
