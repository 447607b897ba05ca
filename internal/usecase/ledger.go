package usecase

import (
	"context"
	"errors"
	"time"

	"libraryapi/internal/entity"
)

type IssueRepository interface {
	Create(ctx context.Context, i *entity.Issue) error

	// FindOpen returns the open issue for (book, student), or ErrNotFound.
	// At most one such issue exists at a time.
	FindOpen(ctx context.Context, bookID, studentID int64) (entity.Issue, error)

	// MarkReturned sets the return date on an open issue.
	MarkReturned(ctx context.Context, issueID int64, returnedAt time.Time) error

	CountOpenByBook(ctx context.Context, bookID int64) (int, error)
	CountOpenByStudent(ctx context.Context, studentID int64) (int, error)

	ListOpen(ctx context.Context) ([]entity.IssueDetail, error)
	ListOpenByStudent(ctx context.Context, studentID int64) ([]entity.IssueDetail, error)
	ListOpenByBook(ctx context.Context, bookID int64) ([]entity.IssueDetail, error)
	ListByBook(ctx context.Context, bookID int64) ([]entity.IssueDetail, error)

	// ListOverdue returns open issues borrowed strictly before the cutoff.
	ListOverdue(ctx context.Context, cutoff time.Time) ([]entity.IssueDetail, error)

	// HasOverdue reports whether the student has any open issue borrowed
	// strictly before the cutoff.
	HasOverdue(ctx context.Context, studentID int64, cutoff time.Time) (bool, error)

	// ListAll returns every issue, open and closed, newest borrow first.
	ListAll(ctx context.Context) ([]entity.IssueDetail, error)
}

// LoanReceipt identifies the parties of a lend/return operation. On guard
// failures past resolution (no copies, limit, fines, duplicate, no active
// loan) Student and Book are still populated so callers can render the
// rejection with full context.
type LoanReceipt struct {
	Student entity.Student
	Book    entity.Book
	Issue   entity.Issue
}

// StudentLoans is a student's currently open issues.
type StudentLoans struct {
	Student entity.Student
	Loans   []entity.IssueDetail
}

// LedgerService enforces the lending policy. It owns no state beyond the
// injected repositories; available copies are always derived, never stored.
type LedgerService struct {
	books    BookRepository
	students StudentRepository
	issues   IssueRepository
	fines    FinesPolicy
	now      func() time.Time

	// Lend and Return for the same book are serialized to close the
	// check-then-act window between the availability guard and the insert.
	locks *keyedMutex
}

func NewLedgerService(books BookRepository, students StudentRepository, issues IssueRepository, fines FinesPolicy) *LedgerService {
	return &LedgerService{
		books:    books,
		students: students,
		issues:   issues,
		fines:    fines,
		now:      time.Now,
		locks:    newKeyedMutex(),
	}
}

func (s *LedgerService) resolve(ctx context.Context, studentID, bookID int64) (entity.Student, entity.Book, error) {
	student, studentErr := s.students.GetByID(ctx, studentID)
	book, bookErr := s.books.GetByID(ctx, bookID)

	switch {
	case errors.Is(studentErr, ErrNotFound) && errors.Is(bookErr, ErrNotFound):
		return entity.Student{}, entity.Book{}, ErrBookStudentNotFound
	case errors.Is(studentErr, ErrNotFound):
		return entity.Student{}, entity.Book{}, ErrStudentNotFound
	case errors.Is(bookErr, ErrNotFound):
		return entity.Student{}, entity.Book{}, ErrBookNotFound
	case studentErr != nil:
		return entity.Student{}, entity.Book{}, studentErr
	case bookErr != nil:
		return entity.Student{}, entity.Book{}, bookErr
	}
	return student, book, nil
}

// Lend checks the borrowing guards in order and creates the issue when all
// pass. The first failing guard determines the returned error; nothing is
// persisted on failure.
func (s *LedgerService) Lend(ctx context.Context, studentID, bookID int64) (LoanReceipt, error) {
	student, book, err := s.resolve(ctx, studentID, bookID)
	if err != nil {
		return LoanReceipt{}, err
	}
	receipt := LoanReceipt{Student: student, Book: book}

	unlock := s.locks.lock(bookID)
	defer unlock()

	openOnBook, err := s.issues.CountOpenByBook(ctx, bookID)
	if err != nil {
		return receipt, err
	}
	if book.AvailableCopies(openOnBook) < 1 {
		return receipt, ErrNoCopiesAvailable
	}

	openByStudent, err := s.issues.CountOpenByStudent(ctx, studentID)
	if err != nil {
		return receipt, err
	}
	if openByStudent >= entity.BorrowLimit {
		return receipt, ErrBorrowLimitReached
	}

	due, err := s.fines.FinesDue(ctx, studentID)
	if err != nil {
		return receipt, err
	}
	if due > 0 {
		return receipt, ErrFinesOutstanding
	}

	_, err = s.issues.FindOpen(ctx, bookID, studentID)
	switch {
	case err == nil:
		return receipt, ErrAlreadyBorrowed
	case !errors.Is(err, ErrNotFound):
		return receipt, err
	}

	issue := entity.Issue{BookID: bookID, StudentID: studentID, Time: s.now()}
	if err := s.issues.Create(ctx, &issue); err != nil {
		return receipt, err
	}
	receipt.Issue = issue
	return receipt, nil
}

// Return closes the open issue for (student, book). A second return of the
// same pair finds no open issue and fails with ErrNoActiveLoan; that is the
// idempotence boundary, not a separate check.
func (s *LedgerService) Return(ctx context.Context, studentID, bookID int64) (LoanReceipt, error) {
	student, book, err := s.resolve(ctx, studentID, bookID)
	if err != nil {
		return LoanReceipt{}, err
	}
	receipt := LoanReceipt{Student: student, Book: book}

	unlock := s.locks.lock(bookID)
	defer unlock()

	issue, err := s.issues.FindOpen(ctx, bookID, studentID)
	if errors.Is(err, ErrNotFound) {
		return receipt, ErrNoActiveLoan
	}
	if err != nil {
		return receipt, err
	}

	returnedAt := s.now()
	if err := s.issues.MarkReturned(ctx, issue.ID, returnedAt); err != nil {
		return receipt, err
	}
	issue.ReturnDate = &returnedAt
	receipt.Issue = issue
	return receipt, nil
}

// ActiveLoans returns the student's open issues in insertion order.
func (s *LedgerService) ActiveLoans(ctx context.Context, studentID int64) (StudentLoans, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if errors.Is(err, ErrNotFound) {
		return StudentLoans{}, ErrStudentNotFound
	}
	if err != nil {
		return StudentLoans{}, err
	}

	loans, err := s.issues.ListOpenByStudent(ctx, studentID)
	if err != nil {
		return StudentLoans{}, err
	}
	return StudentLoans{Student: student, Loans: loans}, nil
}

// Overdue returns every open issue out strictly longer than the loan window.
func (s *LedgerService) Overdue(ctx context.Context) ([]entity.IssueDetail, error) {
	cutoff := s.now().Add(-entity.OverdueDays * 24 * time.Hour)
	return s.issues.ListOverdue(ctx, cutoff)
}

// HasOverdueBooks reports whether the student currently holds any overdue loan.
func (s *LedgerService) HasOverdueBooks(ctx context.Context, studentID int64) (bool, error) {
	cutoff := s.now().Add(-entity.OverdueDays * 24 * time.Hour)
	return s.issues.HasOverdue(ctx, studentID, cutoff)
}
