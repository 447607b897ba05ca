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

type StudentPG struct {
	db *pgxpool.Pool
}

func NewStudentPG(db *pgxpool.Pool) *StudentPG {
	return &StudentPG{db: db}
}

func (r *StudentPG) List(ctx context.Context) ([]entity.Student, error) {
	const query = `
	SELECT id, student_id, name, email, created_at, updated_at
	FROM students ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	var out []entity.Student
	for rows.Next() {
		var s entity.Student
		if err := rows.Scan(&s.ID, &s.StudentID, &s.Name, &s.Email, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *StudentPG) GetByID(ctx context.Context, id int64) (entity.Student, error) {
	const query = `
	SELECT id, student_id, name, email, created_at, updated_at
	FROM students WHERE id = $1 LIMIT 1`
	var s entity.Student
	err := r.db.QueryRow(ctx, query, id).Scan(&s.ID, &s.StudentID, &s.Name, &s.Email, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.Student{}, usecase.ErrNotFound
		}
		return entity.Student{}, err
	}
	return s, nil
}

func (r *StudentPG) Create(ctx context.Context, s *entity.Student) error {
	const query = `
	INSERT INTO students (student_id, name, email)
	VALUES ($1, $2, $3)
	RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, s.StudentID, s.Name, s.Email).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}
