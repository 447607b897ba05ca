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

type PublisherPG struct {
	db *pgxpool.Pool
}

func NewPublisherPG(db *pgxpool.Pool) *PublisherPG {
	return &PublisherPG{db: db}
}

func (r *PublisherPG) List(ctx context.Context) ([]entity.Publisher, error) {
	const query = `SELECT id, name, address, contact FROM publishers ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list publishers: %w", err)
	}
	defer rows.Close()

	var out []entity.Publisher
	for rows.Next() {
		var p entity.Publisher
		if err := rows.Scan(&p.ID, &p.Name, &p.Address, &p.Contact); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PublisherPG) GetByID(ctx context.Context, id int64) (entity.Publisher, error) {
	const query = `SELECT id, name, address, contact FROM publishers WHERE id = $1 LIMIT 1`
	var p entity.Publisher
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Address, &p.Contact)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.Publisher{}, usecase.ErrNotFound
		}
		return entity.Publisher{}, err
	}
	return p, nil
}

func (r *PublisherPG) Create(ctx context.Context, p *entity.Publisher) error {
	const query = `
	INSERT INTO publishers (name, address, contact)
	VALUES ($1, $2, $3)
	RETURNING id
	`
	return r.db.QueryRow(ctx, query, p.Name, p.Address, p.Contact).Scan(&p.ID)
}

func (r *PublisherPG) Update(ctx context.Context, p *entity.Publisher) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE publishers SET name = $2, address = $3, contact = $4 WHERE id = $1`,
		p.ID, p.Name, p.Address, p.Contact)
	if err != nil {
		return fmt.Errorf("update publisher: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return usecase.ErrNotFound
	}
	return nil
}

func (r *PublisherPG) Delete(ctx context.Context, id int64) error {
	// books.publisher_id is ON DELETE SET NULL, so catalog rows survive.
	tag, err := r.db.Exec(ctx, `DELETE FROM publishers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete publisher: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return usecase.ErrNotFound
	}
	return nil
}
