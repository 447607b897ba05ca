package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"libraryapi/internal/entity"
	"libraryapi/internal/usecase"
	"libraryapi/internal/usecase/mocks"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testStudent = entity.Student{ID: 7, StudentID: "IA25-001", Name: "Aruzhan"}
	testBook    = entity.Book{ID: 3, Title: "The Go Programming Language", Author: "Donovan", Quantity: 2}
)

type ledgerMocks struct {
	books    *mocks.MockBookRepository
	students *mocks.MockStudentRepository
	issues   *mocks.MockIssueRepository
	fines    *mocks.MockFinesPolicy
}

func newLedger(t *testing.T) (*usecase.LedgerService, ledgerMocks) {
	ctrl := gomock.NewController(t)
	m := ledgerMocks{
		books:    mocks.NewMockBookRepository(ctrl),
		students: mocks.NewMockStudentRepository(ctrl),
		issues:   mocks.NewMockIssueRepository(ctrl),
		fines:    mocks.NewMockFinesPolicy(ctrl),
	}
	svc := usecase.NewLedgerService(m.books, m.students, m.issues, m.fines)
	return svc, m
}

func expectResolve(m ledgerMocks) {
	m.students.EXPECT().GetByID(gomock.Any(), testStudent.ID).Return(testStudent, nil)
	m.books.EXPECT().GetByID(gomock.Any(), testBook.ID).Return(testBook, nil)
}

func TestLedgerLend_Success(t *testing.T) {
	svc, m := newLedger(t)

	expectResolve(m)
	m.issues.EXPECT().CountOpenByBook(gomock.Any(), testBook.ID).Return(1, nil)
	m.issues.EXPECT().CountOpenByStudent(gomock.Any(), testStudent.ID).Return(0, nil)
	m.fines.EXPECT().FinesDue(gomock.Any(), testStudent.ID).Return(int64(0), nil)
	m.issues.EXPECT().FindOpen(gomock.Any(), testBook.ID, testStudent.ID).Return(entity.Issue{}, usecase.ErrNotFound)
	m.issues.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, i *entity.Issue) error {
			i.ID = 42
			return nil
		})

	receipt, err := svc.Lend(context.Background(), testStudent.ID, testBook.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), receipt.Issue.ID)
	assert.Equal(t, testBook.ID, receipt.Issue.BookID)
	assert.Equal(t, testStudent.ID, receipt.Issue.StudentID)
	assert.Nil(t, receipt.Issue.ReturnDate)
	assert.False(t, receipt.Issue.Time.IsZero())
}

func TestLedgerLend_GuardOrder(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(m ledgerMocks)
		wantErr error
	}{
		{
			name: "no copies available",
			setup: func(m ledgerMocks) {
				expectResolve(m)
				m.issues.EXPECT().CountOpenByBook(gomock.Any(), testBook.ID).Return(testBook.Quantity, nil)
			},
			wantErr: usecase.ErrNoCopiesAvailable,
		},
		{
			name: "oversubscribed book still refuses",
			setup: func(m ledgerMocks) {
				expectResolve(m)
				// more open issues than copies owned: available goes negative
				m.issues.EXPECT().CountOpenByBook(gomock.Any(), testBook.ID).Return(testBook.Quantity+1, nil)
			},
			wantErr: usecase.ErrNoCopiesAvailable,
		},
		{
			name: "borrow limit reached",
			setup: func(m ledgerMocks) {
				expectResolve(m)
				m.issues.EXPECT().CountOpenByBook(gomock.Any(), testBook.ID).Return(0, nil)
				m.issues.EXPECT().CountOpenByStudent(gomock.Any(), testStudent.ID).Return(entity.BorrowLimit, nil)
			},
			wantErr: usecase.ErrBorrowLimitReached,
		},
		{
			name: "fines outstanding",
			setup: func(m ledgerMocks) {
				expectResolve(m)
				m.issues.EXPECT().CountOpenByBook(gomock.Any(), testBook.ID).Return(0, nil)
				m.issues.EXPECT().CountOpenByStudent(gomock.Any(), testStudent.ID).Return(0, nil)
				m.fines.EXPECT().FinesDue(gomock.Any(), testStudent.ID).Return(int64(150), nil)
			},
			wantErr: usecase.ErrFinesOutstanding,
		},
		{
			name: "already borrowed",
			setup: func(m ledgerMocks) {
				expectResolve(m)
				m.issues.EXPECT().CountOpenByBook(gomock.Any(), testBook.ID).Return(1, nil)
				m.issues.EXPECT().CountOpenByStudent(gomock.Any(), testStudent.ID).Return(1, nil)
				m.fines.EXPECT().FinesDue(gomock.Any(), testStudent.ID).Return(int64(0), nil)
				m.issues.EXPECT().FindOpen(gomock.Any(), testBook.ID, testStudent.ID).Return(entity.Issue{ID: 9}, nil)
			},
			wantErr: usecase.ErrAlreadyBorrowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newLedger(t)
			tt.setup(m)

			receipt, err := svc.Lend(context.Background(), testStudent.ID, testBook.ID)
			assert.ErrorIs(t, err, tt.wantErr)
			// parties are resolved even on rejection so callers can report them
			assert.Equal(t, testStudent, receipt.Student)
			assert.Equal(t, testBook, receipt.Book)
		})
	}
}

func TestLedgerLend_LimitBeatsDuplicate(t *testing.T) {
	// A borrower at the limit who already holds this book is told about
	// the limit, not the duplicate: guard order is availability, limit,
	// fines, duplicate, and the first failure wins.
	svc, m := newLedger(t)

	expectResolve(m)
	m.issues.EXPECT().CountOpenByBook(gomock.Any(), testBook.ID).Return(1, nil)
	m.issues.EXPECT().CountOpenByStudent(gomock.Any(), testStudent.ID).Return(entity.BorrowLimit, nil)

	_, err := svc.Lend(context.Background(), testStudent.ID, testBook.ID)
	assert.ErrorIs(t, err, usecase.ErrBorrowLimitReached)
}

func TestLedgerLend_NotFound(t *testing.T) {
	tests := []struct {
		name       string
		studentErr error
		bookErr    error
		wantErr    error
	}{
		{"student missing", usecase.ErrNotFound, nil, usecase.ErrStudentNotFound},
		{"book missing", nil, usecase.ErrNotFound, usecase.ErrBookNotFound},
		{"both missing", usecase.ErrNotFound, usecase.ErrNotFound, usecase.ErrBookStudentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newLedger(t)
			if tt.studentErr != nil {
				m.students.EXPECT().GetByID(gomock.Any(), testStudent.ID).Return(entity.Student{}, tt.studentErr)
			} else {
				m.students.EXPECT().GetByID(gomock.Any(), testStudent.ID).Return(testStudent, nil)
			}
			if tt.bookErr != nil {
				m.books.EXPECT().GetByID(gomock.Any(), testBook.ID).Return(entity.Book{}, tt.bookErr)
			} else {
				m.books.EXPECT().GetByID(gomock.Any(), testBook.ID).Return(testBook, nil)
			}

			_, err := svc.Lend(context.Background(), testStudent.ID, testBook.ID)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLedgerLend_RepositoryFaultIsNotDomainError(t *testing.T) {
	svc, m := newLedger(t)

	boom := errors.New("connection refused")
	expectResolve(m)
	m.issues.EXPECT().CountOpenByBook(gomock.Any(), testBook.ID).Return(0, boom)

	_, err := svc.Lend(context.Background(), testStudent.ID, testBook.ID)
	require.Error(t, err)
	assert.False(t, usecase.IsDomainError(err))
}

func TestLedgerReturn(t *testing.T) {
	t.Run("closes the open issue", func(t *testing.T) {
		svc, m := newLedger(t)

		open := entity.Issue{ID: 42, BookID: testBook.ID, StudentID: testStudent.ID, Time: time.Now().Add(-48 * time.Hour)}
		expectResolve(m)
		m.issues.EXPECT().FindOpen(gomock.Any(), testBook.ID, testStudent.ID).Return(open, nil)
		m.issues.EXPECT().MarkReturned(gomock.Any(), open.ID, gomock.Any()).Return(nil)

		receipt, err := svc.Return(context.Background(), testStudent.ID, testBook.ID)
		require.NoError(t, err)
		require.NotNil(t, receipt.Issue.ReturnDate)
		assert.False(t, receipt.Issue.ReturnDate.IsZero())
	})

	t.Run("no active loan", func(t *testing.T) {
		svc, m := newLedger(t)

		expectResolve(m)
		m.issues.EXPECT().FindOpen(gomock.Any(), testBook.ID, testStudent.ID).Return(entity.Issue{}, usecase.ErrNotFound)

		_, err := svc.Return(context.Background(), testStudent.ID, testBook.ID)
		assert.ErrorIs(t, err, usecase.ErrNoActiveLoan)
	})
}

// Last copy: A borrows, B is refused, A returns, B succeeds.
func TestLedgerLend_LastCopyCycle(t *testing.T) {
	svc, m := newLedger(t)

	studentB := entity.Student{ID: 8, StudentID: "IA25-002", Name: "Bekzat"}
	oneCopy := entity.Book{ID: 5, Title: "Single Copy", Quantity: 1}

	lendOK := func(s entity.Student, open int) {
		m.students.EXPECT().GetByID(gomock.Any(), s.ID).Return(s, nil)
		m.books.EXPECT().GetByID(gomock.Any(), oneCopy.ID).Return(oneCopy, nil)
		m.issues.EXPECT().CountOpenByBook(gomock.Any(), oneCopy.ID).Return(open, nil)
		m.issues.EXPECT().CountOpenByStudent(gomock.Any(), s.ID).Return(0, nil)
		m.fines.EXPECT().FinesDue(gomock.Any(), s.ID).Return(int64(0), nil)
		m.issues.EXPECT().FindOpen(gomock.Any(), oneCopy.ID, s.ID).Return(entity.Issue{}, usecase.ErrNotFound)
		m.issues.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	}

	// A takes the last copy
	lendOK(testStudent, 0)
	_, err := svc.Lend(context.Background(), testStudent.ID, oneCopy.ID)
	require.NoError(t, err)

	// B is refused while A holds it
	m.students.EXPECT().GetByID(gomock.Any(), studentB.ID).Return(studentB, nil)
	m.books.EXPECT().GetByID(gomock.Any(), oneCopy.ID).Return(oneCopy, nil)
	m.issues.EXPECT().CountOpenByBook(gomock.Any(), oneCopy.ID).Return(1, nil)
	_, err = svc.Lend(context.Background(), studentB.ID, oneCopy.ID)
	assert.ErrorIs(t, err, usecase.ErrNoCopiesAvailable)

	// A returns
	m.students.EXPECT().GetByID(gomock.Any(), testStudent.ID).Return(testStudent, nil)
	m.books.EXPECT().GetByID(gomock.Any(), oneCopy.ID).Return(oneCopy, nil)
	m.issues.EXPECT().FindOpen(gomock.Any(), oneCopy.ID, testStudent.ID).Return(entity.Issue{ID: 1, BookID: oneCopy.ID, StudentID: testStudent.ID}, nil)
	m.issues.EXPECT().MarkReturned(gomock.Any(), int64(1), gomock.Any()).Return(nil)
	_, err = svc.Return(context.Background(), testStudent.ID, oneCopy.ID)
	require.NoError(t, err)

	// now B succeeds
	lendOK(studentB, 0)
	_, err = svc.Lend(context.Background(), studentB.ID, oneCopy.ID)
	assert.NoError(t, err)
}

func TestLedgerActiveLoans(t *testing.T) {
	t.Run("student not found", func(t *testing.T) {
		svc, m := newLedger(t)
		m.students.EXPECT().GetByID(gomock.Any(), int64(99)).Return(entity.Student{}, usecase.ErrNotFound)

		_, err := svc.ActiveLoans(context.Background(), 99)
		assert.ErrorIs(t, err, usecase.ErrStudentNotFound)
	})

	t.Run("returns open loans", func(t *testing.T) {
		svc, m := newLedger(t)
		loans := []entity.IssueDetail{
			{Issue: entity.Issue{ID: 1, BookID: 3, StudentID: 7, Time: time.Now()}, BookTitle: testBook.Title},
		}
		m.students.EXPECT().GetByID(gomock.Any(), testStudent.ID).Return(testStudent, nil)
		m.issues.EXPECT().ListOpenByStudent(gomock.Any(), testStudent.ID).Return(loans, nil)

		got, err := svc.ActiveLoans(context.Background(), testStudent.ID)
		require.NoError(t, err)
		assert.Equal(t, testStudent, got.Student)
		assert.Len(t, got.Loans, 1)
	})
}

func TestLedgerOverdue_CutoffIsStrict(t *testing.T) {
	svc, m := newLedger(t)

	var gotCutoff time.Time
	m.issues.EXPECT().ListOverdue(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cutoff time.Time) ([]entity.IssueDetail, error) {
			gotCutoff = cutoff
			return nil, nil
		})

	before := time.Now()
	_, err := svc.Overdue(context.Background())
	require.NoError(t, err)

	// cutoff sits exactly the loan window behind now
	want := before.Add(-entity.OverdueDays * 24 * time.Hour)
	assert.WithinDuration(t, want, gotCutoff, time.Second)
}

func TestLedgerHasOverdueBooks(t *testing.T) {
	svc, m := newLedger(t)

	m.issues.EXPECT().HasOverdue(gomock.Any(), testStudent.ID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ int64, cutoff time.Time) (bool, error) {
			want := time.Now().Add(-entity.OverdueDays * 24 * time.Hour)
			assert.WithinDuration(t, want, cutoff, time.Second)
			return true, nil
		})

	overdue, err := svc.HasOverdueBooks(context.Background(), testStudent.ID)
	require.NoError(t, err)
	assert.True(t, overdue)
}

func TestIssueOverdueAt(t *testing.T) {
	borrowed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issue := entity.Issue{Time: borrowed}

	exactly := borrowed.Add(entity.OverdueDays * 24 * time.Hour)
	assert.False(t, issue.OverdueAt(exactly), "a loan at exactly the window is not overdue")
	assert.True(t, issue.OverdueAt(exactly.Add(time.Second)))

	returned := exactly.Add(time.Hour)
	issue.ReturnDate = &returned
	assert.False(t, issue.OverdueAt(exactly.Add(48*time.Hour)), "closed issues are never overdue")
}
