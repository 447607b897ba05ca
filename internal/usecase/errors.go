package usecase

import "errors"

// ErrNotFound is the generic lookup miss returned by stores. Services
// translate it into the entity-specific sentinels below.
var ErrNotFound = errors.New("record not found")

// Domain errors surfaced to callers of the lending ledger. Handlers map
// these onto 400/404 responses; anything else is an internal fault.
var (
	ErrBookNotFound        = errors.New("book not found")
	ErrStudentNotFound     = errors.New("student not found")
	ErrBookStudentNotFound = errors.New("book or student not found")
	ErrNoCopiesAvailable   = errors.New("no copies available")
	ErrBorrowLimitReached  = errors.New("student has reached borrow limit")
	ErrFinesOutstanding    = errors.New("student has pending fines")
	ErrAlreadyBorrowed     = errors.New("student has already borrowed this book")
	ErrNoActiveLoan        = errors.New("no active issue found for this book and student")
)

// IsDomainError reports whether err is one of the lending-policy errors
// that should surface as a 4xx response rather than an internal fault.
func IsDomainError(err error) bool {
	for _, domain := range []error{
		ErrBookNotFound,
		ErrStudentNotFound,
		ErrBookStudentNotFound,
		ErrNoCopiesAvailable,
		ErrBorrowLimitReached,
		ErrFinesOutstanding,
		ErrAlreadyBorrowed,
		ErrNoActiveLoan,
	} {
		if errors.Is(err, domain) {
			return true
		}
	}
	return false
}
