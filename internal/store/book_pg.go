package store

import (
	"context"
	"errors"
	"fmt"

	"libraryapi/internal/entity"
	"libraryapi/internal/usecase"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookPG struct {
	db *pgxpool.Pool
}

func NewBookPG(db *pgxpool.Pool) *BookPG {
	return &BookPG{db: db}
}

const bookColumns = `id, book_no, catalog_no, bill_no, title, author, vol,
	quantity, price, publisher_id, date_of_issue, published_year, remarks,
	created_at, updated_at`

func scanBook(row pgx.Row) (entity.Book, error) {
	var b entity.Book
	err := row.Scan(
		&b.ID, &b.BookNo, &b.CatalogNo, &b.BillNo, &b.Title, &b.Author, &b.Vol,
		&b.Quantity, &b.Price, &b.PublisherID, &b.DateOfIssue, &b.PublishedYear, &b.Remarks,
		&b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

func (r *BookPG) List(ctx context.Context) ([]entity.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var out []entity.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *BookPG) GetByID(ctx context.Context, id int64) (entity.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1 LIMIT 1`
	b, err := scanBook(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.Book{}, usecase.ErrNotFound
		}
		return entity.Book{}, err
	}
	return b, nil
}

func (r *BookPG) Create(ctx context.Context, b *entity.Book) error {
	const query = `
	INSERT INTO books (book_no, catalog_no, bill_no, title, author, vol,
		quantity, price, publisher_id, date_of_issue, published_year, remarks)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		b.BookNo, b.CatalogNo, b.BillNo, b.Title, b.Author, b.Vol,
		b.Quantity, b.Price, b.PublisherID, b.DateOfIssue, b.PublishedYear, b.Remarks,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *BookPG) Update(ctx context.Context, b *entity.Book) error {
	const query = `
	UPDATE books SET
		book_no = $2, catalog_no = $3, bill_no = $4, title = $5, author = $6,
		vol = $7, quantity = $8, price = $9, publisher_id = $10,
		date_of_issue = $11, published_year = $12, remarks = $13,
		updated_at = now()
	WHERE id = $1
	RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		b.ID, b.BookNo, b.CatalogNo, b.BillNo, b.Title, b.Author,
		b.Vol, b.Quantity, b.Price, b.PublisherID,
		b.DateOfIssue, b.PublishedYear, b.Remarks,
	).Scan(&b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return usecase.ErrNotFound
	}
	return err
}

func (r *BookPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return usecase.ErrNotFound
	}
	return nil
}

func (r *BookPG) ListBorrowed(ctx context.Context) ([]entity.Book, error) {
	query := `
	SELECT ` + bookColumns + ` FROM books
	WHERE id IN (SELECT DISTINCT book_id FROM issues WHERE return_date IS NULL)
	ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list borrowed books: %w", err)
	}
	defer rows.Close()

	var out []entity.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
