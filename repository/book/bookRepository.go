package bookrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Legend373/Legend-Library-Ms/model"
)

var ErrNotFound = errors.New("book not found")

type Repo interface {
	CreateBook(ctx context.Context, title, author, isbn, category string) (int64, error)
	AddCopies(ctx context.Context, bookID int64, n int) ([]int64, error)
	List(ctx context.Context) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	ListCopies(ctx context.Context, bookID int64) ([]model.BookCopy, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) CreateBook(ctx context.Context, title, author, isbn, category string) (int64, error) {
	const q = `
INSERT INTO books (title, author, isbn, category)
VALUES ($1,$2,$3,$4)
RETURNING id`
	var id int64
	if err := r.db.QueryRowContext(ctx, q, title, author, isbn, category).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) AddCopies(ctx context.Context, bookID int64, n int) (ids []int64, err error) {
	if n <= 0 {
		return nil, errors.New("n must be > 0")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists bool
	if err = tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`, bookID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	const ins = `INSERT INTO book_copies (book_id, status) VALUES ($1,'available') RETURNING id`
	for i := 0; i < n; i++ {
		var id int64
		if err = tx.QueryRowContext(ctx, ins, bookID).Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repo) List(ctx context.Context) ([]model.Book, error) {
	const q = `
	SELECT b.id, b.title, b.author, b.isbn, b.category, b.added_at,
		COALESCE(COUNT(c.*),0)::BIGINT AS total_copies,
		COALESCE(COUNT(c.*) FILTER (WHERE c.status='available'),0)::BIGINT AS available_copies
	FROM books b
	LEFT JOIN book_copies c ON c.book_id=b.id
	GROUP BY b.id
	ORDER BY b.title ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Category, &b.AddedAt, &b.TotalCopies, &b.AvailableCopies); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) Detail(ctx context.Context, id int64) (*model.Book, error) {
	const q = `
SELECT b.id, b.title, b.author, b.isbn, b.category, b.added_at,
       COALESCE(COUNT(c.*),0)::BIGINT AS total_copies,
       COALESCE(COUNT(c.*) FILTER (WHERE c.status='available'),0)::BIGINT AS available_copies
FROM books b
LEFT JOIN book_copies c ON c.book_id=b.id
WHERE b.id=$1
GROUP BY b.id`
	var b model.Book
	err := r.db.QueryRowContext(ctx, q, id).Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Category, &b.AddedAt, &b.TotalCopies, &b.AvailableCopies)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) ListCopies(ctx context.Context, bookID int64) ([]model.BookCopy, error) {
	const q = `
	SELECT id, book_id, status
	FROM book_copies
	WHERE book_id = $1
	ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BookCopy
	for rows.Next() {
		var c model.BookCopy
		if err := rows.Scan(&c.ID, &c.BookID, &c.Status); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
