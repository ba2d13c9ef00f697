package booksvc

import (
	"context"
	"errors"

	"github.com/Legend373/Legend-Library-Ms/model"
)

type Book = model.Book

type Repo interface {
	CreateBook(ctx context.Context, title, author, isbn, category string) (int64, error)
	AddCopies(ctx context.Context, bookID int64, n int) ([]int64, error)
	List(ctx context.Context) ([]Book, error)
	Detail(ctx context.Context, id int64) (*Book, error)
	ListCopies(ctx context.Context, bookID int64) ([]model.BookCopy, error)
}

type Service interface {
	Create(ctx context.Context, title, author, isbn, category string) (int64, error)
	AddCopies(ctx context.Context, bookID int64, n int) ([]int64, error)
	List(ctx context.Context) ([]Book, error)
	Detail(ctx context.Context, id int64) (*Book, error)
	ListCopies(ctx context.Context, bookID int64) ([]model.BookCopy, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, title, author, isbn, category string) (int64, error) {
	if title == "" || author == "" {
		return 0, errors.New("invalid payload")
	}
	return s.r.CreateBook(ctx, title, author, isbn, category)
}
func (s *service) AddCopies(ctx context.Context, bookID int64, n int) ([]int64, error) {
	return s.r.AddCopies(ctx, bookID, n)
}
func (s *service) List(ctx context.Context) ([]Book, error)            { return s.r.List(ctx) }
func (s *service) Detail(ctx context.Context, id int64) (*Book, error) { return s.r.Detail(ctx, id) }
func (s *service) ListCopies(ctx context.Context, bookID int64) ([]model.BookCopy, error) {
	return s.r.ListCopies(ctx, bookID)
}
