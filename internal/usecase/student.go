package usecase

import (
	"context"

	"libraryapi/internal/entity"
)

type StudentRepository interface {
	List(ctx context.Context) ([]entity.Student, error)
	GetByID(ctx context.Context, id int64) (entity.Student, error)
	Create(ctx context.Context, s *entity.Student) error
}

// FinesPolicy computes outstanding fines for a student. The ledger refuses
// to lend while any amount is due.
type FinesPolicy interface {
	FinesDue(ctx context.Context, studentID int64) (int64, error)
}

// ZeroFines always reports no fines due. The fines subsystem does not exist
// yet; this placeholder keeps the lending guard in place so a real policy
// can be swapped in without touching the ledger's control flow.
type ZeroFines struct{}

func (ZeroFines) FinesDue(ctx context.Context, studentID int64) (int64, error) {
	return 0, nil
}
