package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"libraryapi/internal/httpx"
	"libraryapi/internal/usecase"
)

type IssueHandler struct {
	ledger  *usecase.LedgerService
	reports *usecase.ReportService
	now     func() time.Time
}

func NewIssueHandler(ledger *usecase.LedgerService, reports *usecase.ReportService) *IssueHandler {
	return &IssueHandler{ledger: ledger, reports: reports, now: time.Now}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

// rejectionMessage maps domain errors onto the messages surfaced to callers.
func rejectionMessage(err error) string {
	switch {
	case errors.Is(err, usecase.ErrBookNotFound):
		return "Book not found"
	case errors.Is(err, usecase.ErrStudentNotFound):
		return "Student not found"
	case errors.Is(err, usecase.ErrBookStudentNotFound):
		return "Book or student not found"
	case errors.Is(err, usecase.ErrNoCopiesAvailable):
		return "No copies available"
	case errors.Is(err, usecase.ErrBorrowLimitReached):
		return "Student has reached borrow limit"
	case errors.Is(err, usecase.ErrFinesOutstanding):
		return "Student has pending fines"
	case errors.Is(err, usecase.ErrAlreadyBorrowed):
		return "Student has already borrowed this book"
	case errors.Is(err, usecase.ErrNoActiveLoan):
		return "No active issue found for this book and student"
	}
	return err.Error()
}

func isNotFound(err error) bool {
	return errors.Is(err, usecase.ErrBookNotFound) ||
		errors.Is(err, usecase.ErrStudentNotFound) ||
		errors.Is(err, usecase.ErrBookStudentNotFound)
}

// writeLoanError renders a lend/return failure with whatever parties were
// resolved before the failing guard.
func writeLoanError(w http.ResponseWriter, err error, receipt usecase.LoanReceipt, studentID, bookID int64) {
	if !usecase.IsDomainError(err) {
		log.Printf("ledger error: student=%d book=%d err=%v", studentID, bookID, err)
		httpx.JSONInternalError(w)
		return
	}

	resp := LoanResponse{
		Success: false,
		Message: rejectionMessage(err),
		Student: unresolvedStudentRef(studentID),
		Book:    unresolvedBookRef(bookID),
	}
	status := http.StatusBadRequest
	if isNotFound(err) {
		status = http.StatusNotFound
	} else {
		// guards past resolution know both parties
		resp.Student = studentRef(receipt.Student)
		resp.Book = bookRef(receipt.Book)
	}
	httpx.WriteJSON(w, status, resp)
}

// Lend handles POST /issues/{student_id}/{book_id}/
func (h *IssueHandler) Lend(w http.ResponseWriter, r *http.Request) {
	studentID, okS := pathID(r, "student_id")
	bookID, okB := pathID(r, "book_id")
	if !okS || !okB {
		httpx.JSONError(w, http.StatusNotFound, "Not found", nil)
		return
	}

	receipt, err := h.ledger.Lend(r.Context(), studentID, bookID)
	if err != nil {
		writeLoanError(w, err, receipt, studentID, bookID)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, lendSuccessView(receipt))
}

// Return handles POST /issues/return/{student_id}/{book_id}/
func (h *IssueHandler) Return(w http.ResponseWriter, r *http.Request) {
	studentID, okS := pathID(r, "student_id")
	bookID, okB := pathID(r, "book_id")
	if !okS || !okB {
		httpx.JSONError(w, http.StatusNotFound, "Not found", nil)
		return
	}

	receipt, err := h.ledger.Return(r.Context(), studentID, bookID)
	if err != nil {
		writeLoanError(w, err, receipt, studentID, bookID)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, returnSuccessView(receipt))
}

// ActiveLoans handles GET /issues/{student_id}/
func (h *IssueHandler) ActiveLoans(w http.ResponseWriter, r *http.Request) {
	studentID, ok := pathID(r, "student_id")
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "Not found", nil)
		return
	}

	loans, err := h.ledger.ActiveLoans(r.Context(), studentID)
	if errors.Is(err, usecase.ErrStudentNotFound) {
		httpx.WriteJSON(w, http.StatusNotFound, ActiveLoansResponse{
			Success: false,
			Message: "Student not found",
			Student: unresolvedStudentRef(studentID),
			Issues:  []ActiveLoanView{},
		})
		return
	}
	if err != nil {
		log.Printf("active loans error: student=%d err=%v", studentID, err)
		httpx.JSONInternalError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, activeLoansView(loans, h.now()))
}

// Overdue handles GET /issues/overdue/
func (h *IssueHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	details, err := h.ledger.Overdue(r.Context())
	if err != nil {
		log.Printf("overdue listing error: %v", err)
		httpx.JSONInternalError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, overdueView(details, h.now()))
}

// Report handles GET /issues/report/
func (h *IssueHandler) Report(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.reports.CohortReport(r.Context())
	if err != nil {
		log.Printf("cohort report error: %v", err)
		httpx.JSONInternalError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, reportView(summaries))
}
