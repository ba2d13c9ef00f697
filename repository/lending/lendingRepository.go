// Package lendingrepo is the durable home of the lending state: book copy
// statuses (the inventory) and loan rows (the ledger). The two are only ever
// written together, inside one transaction handed out by Store.InTx. The
// compare-and-set on the copy status is the guard of record against
// double-lending; the partial unique index on outstanding loans (see
// db/schema.sql) backs it up at the transaction boundary.
package lendingrepo

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Legend373/Legend-Library-Ms/model"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrStatusConflict      = errors.New("copy status conflict")
	ErrDuplicateActiveLoan = errors.New("copy already has an outstanding loan")
)

// Tx is one atomic unit of lending work. Every mutation of copy status or loan
// rows goes through a Tx; partial effects are rolled back by InTx.
type Tx interface {
	// Inventory store.
	CopyStatus(ctx context.Context, copyID int64) (model.CopyStatus, error)
	// SetCopyStatus is a compare-and-set: the write succeeds only if the copy
	// still has the expected status. 0 rows updated maps to ErrStatusConflict
	// (or ErrNotFound if the copy does not exist).
	SetCopyStatus(ctx context.Context, copyID int64, next, expected model.CopyStatus) error

	// Loan ledger.
	CountActiveLoans(ctx context.Context, userID int64) (int, error)
	InsertLoan(ctx context.Context, copyID, userID int64, borrowedAt, dueAt time.Time) (*model.Loan, error)
	LoanForUpdate(ctx context.Context, loanID int64) (*model.Loan, error)
	// OutstandingLoan finds the active/overdue loan holding a copy, locking it
	// for the rest of the transaction. ErrNotFound when the copy is free.
	OutstandingLoan(ctx context.Context, copyID int64) (*model.Loan, error)
	MarkReturned(ctx context.Context, loanID int64, at time.Time) error
	SetDueDate(ctx context.Context, loanID int64, dueAt time.Time, status model.LoanStatus) error
}

// LoanFilter narrows admin loan listings.
type LoanFilter struct {
	Status model.LoanStatus // empty = all
	UserID int64            // 0 = all
	Limit  int
}

type Store interface {
	InTx(ctx context.Context, fn func(Tx) error) error

	// Committed-state reads.
	ListActiveLoans(ctx context.Context, userID int64) ([]model.Loan, error)
	ListLoansByUser(ctx context.Context, userID int64) ([]model.Loan, error)
	ListLoans(ctx context.Context, f LoanFilter) ([]model.LoanDetail, error)

	// Overdue reconciliation. Both are idempotent.
	MarkOverdueIfPast(ctx context.Context, loanID int64, now time.Time) (*model.Loan, error)
	SweepOverdue(ctx context.Context, now time.Time) (int64, error)
}

type store struct{ db *sql.DB }

func New(db *sql.DB) Store { return &store{db} }

func (s *store) InTx(ctx context.Context, fn func(Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(&sqlTx{tx}); err != nil {
		return err
	}
	return tx.Commit()
}

type sqlTx struct{ tx *sql.Tx }

// ----- inventory store -----

func (t *sqlTx) CopyStatus(ctx context.Context, copyID int64) (model.CopyStatus, error) {
	const q = `
		SELECT status
		FROM book_copies
		WHERE id = $1`
	var st model.CopyStatus
	if err := t.tx.QueryRowContext(ctx, q, copyID).Scan(&st); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return st, nil
}

func (t *sqlTx) SetCopyStatus(ctx context.Context, copyID int64, next, expected model.CopyStatus) error {
	const q = `
		UPDATE book_copies
		SET status = $2
		WHERE id = $1
		AND status = $3`
	res, err := t.tx.ExecContext(ctx, q, copyID, next, expected)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 1 {
		return nil
	}
	// Lost the race or the copy is gone; tell the caller which.
	var exists bool
	const chk = `SELECT EXISTS (SELECT 1 FROM book_copies WHERE id = $1)`
	if err := t.tx.QueryRowContext(ctx, chk, copyID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStatusConflict
}

// ----- loan ledger -----

func (t *sqlTx) CountActiveLoans(ctx context.Context, userID int64) (int, error) {
	const q = `
		SELECT COUNT(*)
		FROM loans
		WHERE user_id = $1
		AND status IN ('active', 'overdue')`
	var n int
	err := t.tx.QueryRowContext(ctx, q, userID).Scan(&n)
	return n, err
}

func (t *sqlTx) InsertLoan(ctx context.Context, copyID, userID int64, borrowedAt, dueAt time.Time) (*model.Loan, error) {
	const q = `
		INSERT INTO loans (copy_id, book_id, user_id, status, borrowed_at, due_at)
		SELECT c.id, c.book_id, $2, 'active', $3, $4
		FROM book_copies c
		WHERE c.id = $1
		RETURNING id, book_id`
	l := &model.Loan{
		CopyID:     copyID,
		UserID:     userID,
		Status:     model.LoanActive,
		BorrowedAt: borrowedAt,
		DueAt:      dueAt,
	}
	if err := t.tx.QueryRowContext(ctx, q, copyID, userID, borrowedAt, dueAt).Scan(&l.ID, &l.BookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrDuplicateActiveLoan
		}
		return nil, err
	}
	return l, nil
}

func (t *sqlTx) LoanForUpdate(ctx context.Context, loanID int64) (*model.Loan, error) {
	const q = `
		SELECT id, copy_id, book_id, user_id, status, borrowed_at, due_at, returned_at
		FROM loans
		WHERE id = $1
		FOR UPDATE`
	return scanLoan(t.tx.QueryRowContext(ctx, q, loanID))
}

func (t *sqlTx) OutstandingLoan(ctx context.Context, copyID int64) (*model.Loan, error) {
	const q = `
		SELECT id, copy_id, book_id, user_id, status, borrowed_at, due_at, returned_at
		FROM loans
		WHERE copy_id = $1
		AND status IN ('active', 'overdue')
		FOR UPDATE`
	return scanLoan(t.tx.QueryRowContext(ctx, q, copyID))
}

func (t *sqlTx) MarkReturned(ctx context.Context, loanID int64, at time.Time) error {
	const q = `
		UPDATE loans
		SET status = 'returned',
			returned_at = $2
		WHERE id = $1
		AND status IN ('active', 'overdue')`
	res, err := t.tx.ExecContext(ctx, q, loanID, at)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *sqlTx) SetDueDate(ctx context.Context, loanID int64, dueAt time.Time, status model.LoanStatus) error {
	const q = `
		UPDATE loans
		SET due_at = $2,
			status = $3
		WHERE id = $1`
	res, err := t.tx.ExecContext(ctx, q, loanID, dueAt, status)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return ErrNotFound
	}
	return nil
}

// ----- committed-state reads -----

const loanCols = `id, copy_id, book_id, user_id, status, borrowed_at, due_at, returned_at`

func (s *store) ListActiveLoans(ctx context.Context, userID int64) ([]model.Loan, error) {
	const q = `
		SELECT ` + loanCols + `
		FROM loans
		WHERE user_id = $1
		AND status IN ('active', 'overdue')
		ORDER BY due_at ASC`
	return s.queryLoans(ctx, q, userID)
}

func (s *store) ListLoansByUser(ctx context.Context, userID int64) ([]model.Loan, error) {
	const q = `
		SELECT ` + loanCols + `
		FROM loans
		WHERE user_id = $1
		ORDER BY borrowed_at DESC, id DESC`
	return s.queryLoans(ctx, q, userID)
}

func (s *store) ListLoans(ctx context.Context, f LoanFilter) ([]model.LoanDetail, error) {
	q := `
		SELECT l.id, l.copy_id, l.book_id, l.user_id, l.status, l.borrowed_at, l.due_at, l.returned_at,
			b.title, b.isbn, u.username, u.email
		FROM loans l
		JOIN books b ON b.id = l.book_id
		JOIN users u ON u.id = l.user_id
		WHERE 1=1`
	args := []any{}
	if f.Status != "" {
		args = append(args, f.Status)
		q += ` AND l.status = $1`
	}
	if f.UserID != 0 {
		args = append(args, f.UserID)
		q += ` AND l.user_id = $` + strconv.Itoa(len(args))
	}
	q += ` ORDER BY l.borrowed_at DESC, l.id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.LoanDetail
	for rows.Next() {
		var d model.LoanDetail
		if err := rows.Scan(
			&d.ID, &d.CopyID, &d.BookID, &d.UserID, &d.Status, &d.BorrowedAt, &d.DueAt, &d.ReturnedAt,
			&d.BookTitle, &d.ISBN, &d.Username, &d.Email,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ----- overdue reconciliation -----

func (s *store) MarkOverdueIfPast(ctx context.Context, loanID int64, now time.Time) (*model.Loan, error) {
	// No-op unless the loan is active and past due; returned/overdue rows are
	// left untouched, so a double call converges to the same state.
	const upd = `
		UPDATE loans
		SET status = 'overdue'
		WHERE id = $1
		AND status = 'active'
		AND due_at < $2`
	if _, err := s.db.ExecContext(ctx, upd, loanID, now); err != nil {
		return nil, err
	}
	const q = `
		SELECT ` + loanCols + `
		FROM loans
		WHERE id = $1`
	return scanLoan(s.db.QueryRowContext(ctx, q, loanID))
}

func (s *store) SweepOverdue(ctx context.Context, now time.Time) (int64, error) {
	const q = `
		UPDATE loans
		SET status = 'overdue'
		WHERE status = 'active'
		AND due_at < $1`
	res, err := s.db.ExecContext(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ----- helpers -----

type rowScanner interface{ Scan(dest ...any) error }

func scanLoan(row rowScanner) (*model.Loan, error) {
	var l model.Loan
	if err := row.Scan(&l.ID, &l.CopyID, &l.BookID, &l.UserID, &l.Status, &l.BorrowedAt, &l.DueAt, &l.ReturnedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (s *store) queryLoans(ctx context.Context, q string, args ...any) ([]model.Loan, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Loan
	for rows.Next() {
		var l model.Loan
		if err := rows.Scan(&l.ID, &l.CopyID, &l.BookID, &l.UserID, &l.Status, &l.BorrowedAt, &l.DueAt, &l.ReturnedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
