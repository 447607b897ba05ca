package usecase

import (
	"context"

	"libraryapi/internal/entity"
)

type BookRepository interface {
	List(ctx context.Context) ([]entity.Book, error)
	GetByID(ctx context.Context, id int64) (entity.Book, error)
	Create(ctx context.Context, b *entity.Book) error
	Update(ctx context.Context, b *entity.Book) error
	Delete(ctx context.Context, id int64) error

	// ListBorrowed returns books that currently have at least one open issue.
	ListBorrowed(ctx context.Context) ([]entity.Book, error)
}

type PublisherRepository interface {
	List(ctx context.Context) ([]entity.Publisher, error)
	GetByID(ctx context.Context, id int64) (entity.Publisher, error)
	Create(ctx context.Context, p *entity.Publisher) error
	Update(ctx context.Context, p *entity.Publisher) error
	Delete(ctx context.Context, id int64) error
}
