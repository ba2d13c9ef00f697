package booksvc_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Legend373/Legend-Library-Ms/model"
	booksvc "github.com/Legend373/Legend-Library-Ms/service/book"
)

type repoMock struct {
	createFn     func(ctx context.Context, title, author, isbn, category string) (int64, error)
	addCopiesFn  func(ctx context.Context, bookID int64, n int) ([]int64, error)
	listFn       func(ctx context.Context) ([]booksvc.Book, error)
	detailFn     func(ctx context.Context, id int64) (*booksvc.Book, error)
	listCopiesFn func(ctx context.Context, bookID int64) ([]model.BookCopy, error)
}

func (m *repoMock) CreateBook(ctx context.Context, title, author, isbn, category string) (int64, error) {
	return m.createFn(ctx, title, author, isbn, category)
}
func (m *repoMock) AddCopies(ctx context.Context, bookID int64, n int) ([]int64, error) {
	return m.addCopiesFn(ctx, bookID, n)
}
func (m *repoMock) List(ctx context.Context) ([]booksvc.Book, error) { return m.listFn(ctx) }
func (m *repoMock) Detail(ctx context.Context, id int64) (*booksvc.Book, error) {
	return m.detailFn(ctx, id)
}
func (m *repoMock) ListCopies(ctx context.Context, bookID int64) ([]model.BookCopy, error) {
	return m.listCopiesFn(ctx, bookID)
}

func TestCreate_Validation(t *testing.T) {
	s := booksvc.New(&repoMock{})
	if _, err := s.Create(context.Background(), "", "Author", "isbn", "cat"); err == nil {
		t.Fatal("expected error for empty title")
	}
	if _, err := s.Create(context.Background(), "Title", "", "isbn", "cat"); err == nil {
		t.Fatal("expected error for empty author")
	}
}

func TestCreate_Success(t *testing.T) {
	m := &repoMock{
		createFn: func(ctx context.Context, title, author, isbn, category string) (int64, error) {
			if title != "Clean Code" || author != "Robert C. Martin" {
				return 0, errors.New("bad args")
			}
			return 42, nil
		},
	}
	s := booksvc.New(m)
	id, err := s.Create(context.Background(), "Clean Code", "Robert C. Martin", "9780132350884", "Programming")
	if err != nil || id != 42 {
		t.Fatalf("got id=%v err=%v; want 42 nil", id, err)
	}
}

func TestPassThroughs(t *testing.T) {
	m := &repoMock{
		addCopiesFn: func(ctx context.Context, bookID int64, n int) ([]int64, error) {
			return []int64{1, 2, 3}, nil
		},
		listFn: func(ctx context.Context) ([]booksvc.Book, error) { return nil, nil },
		detailFn: func(ctx context.Context, id int64) (*booksvc.Book, error) {
			return &booksvc.Book{}, nil
		},
		listCopiesFn: func(ctx context.Context, bookID int64) ([]model.BookCopy, error) {
			return []model.BookCopy{{ID: 1, BookID: bookID}}, nil
		},
	}
	s := booksvc.New(m)

	ids, err := s.AddCopies(context.Background(), 7, 3)
	if err != nil || len(ids) != 3 {
		t.Fatalf("AddCopies got %v %v; want 3 ids nil", ids, err)
	}
	if _, err := s.List(context.Background()); err != nil {
		t.Fatalf("List error: %v", err)
	}
	if _, err := s.Detail(context.Background(), 99); err != nil {
		t.Fatalf("Detail error: %v", err)
	}
	if _, err := s.ListCopies(context.Background(), 7); err != nil {
		t.Fatalf("ListCopies error: %v", err)
	}
}
