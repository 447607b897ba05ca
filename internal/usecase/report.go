package usecase

import (
	"context"
	"sort"
)

const unknownCohort = "Unknown"

// BookCount is one entry of a cohort's most-borrowed ranking.
type BookCount struct {
	BookID      int64
	Title       string
	BorrowCount int
}

// CohortSummary aggregates all-time borrowing for one student cohort.
type CohortSummary struct {
	ClassID       string
	ClassName     string
	TotalBorrowed int
	TopBooks      []BookCount
}

// ExtractCohort pulls the two-digit cohort code out of an external student
// identifier: the first occurrence of two uppercase ASCII letters followed
// by exactly two digits and a hyphen, e.g. "IA25-001" yields "25".
// Identifiers without such a run fall into the "Unknown" cohort.
func ExtractCohort(studentID string) string {
	for i := 0; i+5 <= len(studentID); i++ {
		if isUpper(studentID[i]) && isUpper(studentID[i+1]) &&
			isDigit(studentID[i+2]) && isDigit(studentID[i+3]) &&
			studentID[i+4] == '-' {
			return studentID[i+2 : i+4]
		}
	}
	return unknownCohort
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// ReportService aggregates the ledger into per-cohort statistics.
type ReportService struct {
	issues IssueRepository
}

func NewReportService(issues IssueRepository) *ReportService {
	return &ReportService{issues: issues}
}

// CohortReport groups every issue, open and closed, by the borrower's
// cohort. Cohorts appear in first-encountered order of the newest-first
// scan; each lists its all-time borrow total and top three books by borrow
// count, ties keeping scan order.
func (s *ReportService) CohortReport(ctx context.Context) ([]CohortSummary, error) {
	all, err := s.issues.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	type cohortAcc struct {
		total     int
		bookOrder []int64
		books     map[int64]*BookCount
	}

	var cohortOrder []string
	cohorts := make(map[string]*cohortAcc)

	for _, issue := range all {
		code := ExtractCohort(issue.StudentExtID)
		acc, ok := cohorts[code]
		if !ok {
			acc = &cohortAcc{books: make(map[int64]*BookCount)}
			cohorts[code] = acc
			cohortOrder = append(cohortOrder, code)
		}
		acc.total++

		bc, ok := acc.books[issue.BookID]
		if !ok {
			bc = &BookCount{BookID: issue.BookID, Title: issue.BookTitle}
			acc.books[issue.BookID] = bc
			acc.bookOrder = append(acc.bookOrder, issue.BookID)
		}
		bc.BorrowCount++
	}

	summaries := make([]CohortSummary, 0, len(cohortOrder))
	for _, code := range cohortOrder {
		acc := cohorts[code]

		ranked := make([]BookCount, 0, len(acc.bookOrder))
		for _, id := range acc.bookOrder {
			ranked = append(ranked, *acc.books[id])
		}
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].BorrowCount > ranked[j].BorrowCount
		})
		if len(ranked) > 3 {
			ranked = ranked[:3]
		}

		summaries = append(summaries, CohortSummary{
			ClassID:       code,
			ClassName:     "Batch 20" + code,
			TotalBorrowed: acc.total,
			TopBooks:      ranked,
		})
	}
	return summaries, nil
}
