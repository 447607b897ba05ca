package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"libraryapi/internal/entity"
	"libraryapi/internal/usecase"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type IssuePG struct {
	db *pgxpool.Pool
}

func NewIssuePG(db *pgxpool.Pool) *IssuePG {
	return &IssuePG{db: db}
}

// detailColumns joins each issue with its book and student for listings.
const detailColumns = `
	i.id, i.book_id, i.student_id, i.time, i.return_date,
	b.title, b.author, s.student_id, s.name`

const detailFrom = `
	FROM issues i
	JOIN books b ON b.id = i.book_id
	JOIN students s ON s.id = i.student_id`

func scanDetail(rows pgx.Rows) (entity.IssueDetail, error) {
	var d entity.IssueDetail
	err := rows.Scan(
		&d.ID, &d.BookID, &d.StudentID, &d.Time, &d.ReturnDate,
		&d.BookTitle, &d.BookAuthor, &d.StudentExtID, &d.StudentName,
	)
	return d, err
}

func (r *IssuePG) queryDetails(ctx context.Context, query string, args ...any) ([]entity.IssueDetail, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	defer rows.Close()

	var out []entity.IssueDetail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *IssuePG) Create(ctx context.Context, i *entity.Issue) error {
	const query = `
	INSERT INTO issues (book_id, student_id, time)
	VALUES ($1, $2, $3)
	RETURNING id
	`
	return r.db.QueryRow(ctx, query, i.BookID, i.StudentID, i.Time).Scan(&i.ID)
}

func (r *IssuePG) FindOpen(ctx context.Context, bookID, studentID int64) (entity.Issue, error) {
	const query = `
	SELECT id, book_id, student_id, time, return_date
	FROM issues
	WHERE book_id = $1 AND student_id = $2 AND return_date IS NULL
	LIMIT 1
	`
	var i entity.Issue
	err := r.db.QueryRow(ctx, query, bookID, studentID).Scan(&i.ID, &i.BookID, &i.StudentID, &i.Time, &i.ReturnDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.Issue{}, usecase.ErrNotFound
		}
		return entity.Issue{}, err
	}
	return i, nil
}

func (r *IssuePG) MarkReturned(ctx context.Context, issueID int64, returnedAt time.Time) error {
	// return_date is written at most once; a closed issue never reopens.
	tag, err := r.db.Exec(ctx,
		`UPDATE issues SET return_date = $2 WHERE id = $1 AND return_date IS NULL`,
		issueID, returnedAt)
	if err != nil {
		return fmt.Errorf("mark returned: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return usecase.ErrNotFound
	}
	return nil
}

func (r *IssuePG) CountOpenByBook(ctx context.Context, bookID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM issues WHERE book_id = $1 AND return_date IS NULL`,
		bookID).Scan(&n)
	return n, err
}

func (r *IssuePG) CountOpenByStudent(ctx context.Context, studentID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM issues WHERE student_id = $1 AND return_date IS NULL`,
		studentID).Scan(&n)
	return n, err
}

func (r *IssuePG) ListOpen(ctx context.Context) ([]entity.IssueDetail, error) {
	query := `SELECT` + detailColumns + detailFrom + `
	WHERE i.return_date IS NULL
	ORDER BY i.id`
	return r.queryDetails(ctx, query)
}

func (r *IssuePG) ListOpenByStudent(ctx context.Context, studentID int64) ([]entity.IssueDetail, error) {
	query := `SELECT` + detailColumns + detailFrom + `
	WHERE i.student_id = $1 AND i.return_date IS NULL
	ORDER BY i.id`
	return r.queryDetails(ctx, query, studentID)
}

func (r *IssuePG) ListOpenByBook(ctx context.Context, bookID int64) ([]entity.IssueDetail, error) {
	query := `SELECT` + detailColumns + detailFrom + `
	WHERE i.book_id = $1 AND i.return_date IS NULL
	ORDER BY i.id`
	return r.queryDetails(ctx, query, bookID)
}

func (r *IssuePG) ListByBook(ctx context.Context, bookID int64) ([]entity.IssueDetail, error) {
	query := `SELECT` + detailColumns + detailFrom + `
	WHERE i.book_id = $1
	ORDER BY i.id`
	return r.queryDetails(ctx, query, bookID)
}

func (r *IssuePG) ListOverdue(ctx context.Context, cutoff time.Time) ([]entity.IssueDetail, error) {
	// strictly before the cutoff: a loan at exactly the window is not overdue
	query := `SELECT` + detailColumns + detailFrom + `
	WHERE i.return_date IS NULL AND i.time < $1
	ORDER BY i.time`
	return r.queryDetails(ctx, query, cutoff)
}

func (r *IssuePG) HasOverdue(ctx context.Context, studentID int64, cutoff time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM issues
			WHERE student_id = $1 AND return_date IS NULL AND time < $2
		)`, studentID, cutoff).Scan(&exists)
	return exists, err
}

func (r *IssuePG) ListAll(ctx context.Context) ([]entity.IssueDetail, error) {
	query := `SELECT` + detailColumns + detailFrom + `
	ORDER BY i.time DESC`
	return r.queryDetails(ctx, query)
}
