// Package lendingsvc orchestrates every mutation of lending state. It is the
// only writer of copy statuses and loan rows: each operation evaluates the
// policy, then applies its writes inside one store transaction, so the
// "one outstanding loan per copy" invariant holds at every commit point.
package lendingsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Legend373/Legend-Library-Ms/model"
	"github.com/Legend373/Legend-Library-Ms/policy"
	lendingrepo "github.com/Legend373/Legend-Library-Ms/repository/lending"
)

// errors used by controllers

type ErrCode string

const (
	ErrCopyNotFound       ErrCode = "COPY_NOT_FOUND"
	ErrLoanNotFound       ErrCode = "LOAN_NOT_FOUND"
	ErrCopyNotAvailable   ErrCode = "COPY_NOT_AVAILABLE"
	ErrBorrowLimitReached ErrCode = "BORROW_LIMIT_REACHED"
	ErrAlreadyReturned    ErrCode = "ALREADY_RETURNED"
	ErrInvalidExtension   ErrCode = "INVALID_EXTENSION"
	ErrNotOwner           ErrCode = "NOT_OWNER"
	ErrForbidden          ErrCode = "FORBIDDEN"
	ErrInvalidTransition  ErrCode = "INVALID_TRANSITION"
	// ErrConflict is a retryable contention loss (e.g. the defensive ledger
	// guard fired after the copy CAS somehow let two borrows through).
	ErrConflict ErrCode = "CONFLICT"
	// ErrInconsistent means the ledger and the inventory disagree. Never
	// returned for ordinary contention; always logged at Error.
	ErrInconsistent ErrCode = "INCONSISTENT"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// denialErr maps a policy denial onto the matching error code. The policy
// reason strings are the error codes.
func denialErr(r policy.Reason) error { return makeErr(ErrCode(r)) }

// Recorder is the activity log collaborator. Best-effort: the service calls it
// after commit and only logs failures.
type Recorder interface {
	Record(ctx context.Context, userID int64, eventType, details string) error
}

type Service interface {
	// Borrow lends the copy to the caller for the standard period.
	Borrow(ctx context.Context, who model.Identity, copyID int64) (*model.Loan, error)

	// Return closes an outstanding loan and frees its copy. Admins may return
	// on behalf of any user.
	Return(ctx context.Context, who model.Identity, loanID int64) (*model.Loan, error)

	// ExtendDueDate shifts the due date forward and recomputes the loan
	// status; an extension can cure an overdue loan.
	ExtendDueDate(ctx context.Context, who model.Identity, loanID int64, extraDays int) (*model.Loan, error)

	// AdminSetCopyStatus is the privileged status override. It bypasses
	// borrow/return eligibility but never the ledger/inventory invariant.
	AdminSetCopyStatus(ctx context.Context, who model.Identity, copyID int64, next model.CopyStatus) error

	// GetLoan reads one loan, reconciling overdue state lazily on the way.
	GetLoan(ctx context.Context, who model.Identity, loanID int64) (*model.Loan, error)

	ListActiveLoans(ctx context.Context, userID int64) ([]model.Loan, error)
	History(ctx context.Context, userID int64) ([]model.Loan, error)

	// AdminListLoans sweeps overdue loans first, then lists.
	AdminListLoans(ctx context.Context, f lendingrepo.LoanFilter) ([]model.LoanDetail, error)
}

type service struct {
	store lendingrepo.Store
	rec   Recorder
	log   *slog.Logger
	now   func() time.Time
}

func New(store lendingrepo.Store, rec Recorder, log *slog.Logger) Service {
	return &service{store: store, rec: rec, log: log, now: time.Now}
}

func (s *service) Borrow(ctx context.Context, who model.Identity, copyID int64) (*model.Loan, error) {
	var loan *model.Loan
	err := s.store.InTx(ctx, func(tx lendingrepo.Tx) error {
		st, err := tx.CopyStatus(ctx, copyID)
		if errors.Is(err, lendingrepo.ErrNotFound) {
			return makeErr(ErrCopyNotFound)
		}
		if err != nil {
			return err
		}
		active, err := tx.CountActiveLoans(ctx, who.UserID)
		if err != nil {
			return err
		}
		if r := policy.CanBorrow(st, active); r != policy.Allowed {
			return denialErr(r)
		}

		// The compare-and-set is the authoritative double-borrow guard: under
		// concurrent borrows exactly one of these updates hits a row.
		err = tx.SetCopyStatus(ctx, copyID, model.CopyLoaned, model.CopyAvailable)
		if errors.Is(err, lendingrepo.ErrStatusConflict) {
			return makeErr(ErrCopyNotAvailable)
		}
		if errors.Is(err, lendingrepo.ErrNotFound) {
			return makeErr(ErrCopyNotFound)
		}
		if err != nil {
			return err
		}

		now := s.now().UTC()
		loan, err = tx.InsertLoan(ctx, copyID, who.UserID, now, policy.DueDate(now))
		if errors.Is(err, lendingrepo.ErrDuplicateActiveLoan) {
			// Defensive ledger guard; the CAS should have caught this.
			return makeErr(ErrConflict)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, who.UserID, "borrow_book", fmt.Sprintf("borrowed copy %d, loan %d due %s", copyID, loan.ID, loan.DueAt.Format(time.RFC3339)))
	return loan, nil
}

func (s *service) Return(ctx context.Context, who model.Identity, loanID int64) (*model.Loan, error) {
	var loan *model.Loan
	err := s.store.InTx(ctx, func(tx lendingrepo.Tx) error {
		l, err := tx.LoanForUpdate(ctx, loanID)
		if errors.Is(err, lendingrepo.ErrNotFound) {
			return makeErr(ErrLoanNotFound)
		}
		if err != nil {
			return err
		}
		if !who.Admin() && l.UserID != who.UserID {
			return makeErr(ErrNotOwner)
		}
		if r := policy.CanReturn(l.Status); r != policy.Allowed {
			return denialErr(r)
		}

		now := s.now().UTC()
		if err := tx.MarkReturned(ctx, loanID, now); err != nil {
			return err
		}
		err = tx.SetCopyStatus(ctx, l.CopyID, model.CopyAvailable, model.CopyLoaned)
		if errors.Is(err, lendingrepo.ErrStatusConflict) || errors.Is(err, lendingrepo.ErrNotFound) {
			// The ledger says this copy is out on loan but the inventory
			// disagrees. Surface loudly instead of committing a lie.
			s.log.Error("inventory diverged from ledger on return",
				"loan_id", loanID, "copy_id", l.CopyID, "err", err)
			return makeErr(ErrInconsistent)
		}
		if err != nil {
			return err
		}

		ret := *l
		ret.Status = model.LoanReturned
		ret.ReturnedAt = &now
		loan = &ret
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, who.UserID, "return_book", fmt.Sprintf("returned loan %d, copy %d", loan.ID, loan.CopyID))
	return loan, nil
}

func (s *service) ExtendDueDate(ctx context.Context, who model.Identity, loanID int64, extraDays int) (*model.Loan, error) {
	var loan *model.Loan
	err := s.store.InTx(ctx, func(tx lendingrepo.Tx) error {
		l, err := tx.LoanForUpdate(ctx, loanID)
		if errors.Is(err, lendingrepo.ErrNotFound) {
			return makeErr(ErrLoanNotFound)
		}
		if err != nil {
			return err
		}
		if !who.Admin() && l.UserID != who.UserID {
			return makeErr(ErrNotOwner)
		}
		if r := policy.CanExtend(l.Status, extraDays); r != policy.Allowed {
			return denialErr(r)
		}

		newDue, newStatus := policy.ResolveStatusAfterExtension(l.DueAt, extraDays, s.now().UTC())
		if err := tx.SetDueDate(ctx, loanID, newDue, newStatus); err != nil {
			return err
		}

		ext := *l
		ext.DueAt = newDue
		ext.Status = newStatus
		loan = &ext
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, who.UserID, "extend_due_date", fmt.Sprintf("extended loan %d by %d days", loanID, extraDays))
	return loan, nil
}

func (s *service) AdminSetCopyStatus(ctx context.Context, who model.Identity, copyID int64, next model.CopyStatus) error {
	if !who.Admin() {
		return makeErr(ErrForbidden)
	}
	if !model.ValidCopyStatus(string(next)) {
		return makeErr(ErrInvalidTransition)
	}
	err := s.store.InTx(ctx, func(tx lendingrepo.Tx) error {
		cur, err := tx.CopyStatus(ctx, copyID)
		if errors.Is(err, lendingrepo.ErrNotFound) {
			return makeErr(ErrCopyNotFound)
		}
		if err != nil {
			return err
		}

		outstanding, err := tx.OutstandingLoan(ctx, copyID)
		if err != nil && !errors.Is(err, lendingrepo.ErrNotFound) {
			return err
		}
		// The override may not break the ledger/inventory invariant: "loaned"
		// requires an outstanding loan, and a copy with an outstanding loan
		// can only leave "loaned" through a return.
		if next == model.CopyLoaned && outstanding == nil {
			return makeErr(ErrInvalidTransition)
		}
		if next != model.CopyLoaned && outstanding != nil {
			return makeErr(ErrInvalidTransition)
		}

		err = tx.SetCopyStatus(ctx, copyID, next, cur)
		if errors.Is(err, lendingrepo.ErrStatusConflict) || errors.Is(err, lendingrepo.ErrNotFound) {
			s.log.Error("copy status changed under admin override",
				"copy_id", copyID, "expected", cur, "next", next, "err", err)
			return makeErr(ErrInconsistent)
		}
		return err
	})
	if err != nil {
		return err
	}
	s.record(ctx, who.UserID, "admin_set_status", fmt.Sprintf("set copy %d status to %s", copyID, next))
	return nil
}

func (s *service) GetLoan(ctx context.Context, who model.Identity, loanID int64) (*model.Loan, error) {
	l, err := s.store.MarkOverdueIfPast(ctx, loanID, s.now().UTC())
	if errors.Is(err, lendingrepo.ErrNotFound) {
		return nil, makeErr(ErrLoanNotFound)
	}
	if err != nil {
		return nil, err
	}
	if !who.Admin() && l.UserID != who.UserID {
		return nil, makeErr(ErrNotOwner)
	}
	return l, nil
}

func (s *service) ListActiveLoans(ctx context.Context, userID int64) ([]model.Loan, error) {
	return s.store.ListActiveLoans(ctx, userID)
}

func (s *service) History(ctx context.Context, userID int64) ([]model.Loan, error) {
	return s.store.ListLoansByUser(ctx, userID)
}

func (s *service) AdminListLoans(ctx context.Context, f lendingrepo.LoanFilter) ([]model.LoanDetail, error) {
	if _, err := s.store.SweepOverdue(ctx, s.now().UTC()); err != nil {
		// Stale statuses are tolerable for a listing; the background sweeper
		// will catch up.
		s.log.Warn("lazy overdue sweep failed", "err", err)
	}
	return s.store.ListLoans(ctx, f)
}

// record logs activity after commit. Fire-and-forget: it must never block or
// fail the operation that triggered it.
func (s *service) record(ctx context.Context, userID int64, eventType, details string) {
	if s.rec == nil {
		return
	}
	go func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
		defer cancel()
		if err := s.rec.Record(rctx, userID, eventType, details); err != nil {
			s.log.Warn("activity record failed", "event", eventType, "err", err)
		}
	}()
}
