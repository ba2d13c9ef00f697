// Package policy holds the lending rules. Everything here is pure: decisions are
// computed from the values passed in, never from storage or the wall clock.
package policy

import (
	"time"

	"github.com/Legend373/Legend-Library-Ms/model"
)

const (
	// MaxActiveLoans is the most active+overdue loans one user may hold.
	MaxActiveLoans = 5

	// LoanPeriodDays is the standard lending period.
	LoanPeriodDays = 14
)

// allowedExtensions are the due-date extension lengths admins may apply.
var allowedExtensions = map[int]bool{7: true, 14: true, 21: true, 30: true}

// Reason explains a denied decision. Empty means allowed.
type Reason string

const (
	Allowed              Reason = ""
	CopyNotAvailable     Reason = "COPY_NOT_AVAILABLE"
	BorrowLimitReached   Reason = "BORROW_LIMIT_REACHED"
	AlreadyReturned      Reason = "ALREADY_RETURNED"
	InvalidExtensionDays Reason = "INVALID_EXTENSION"
)

// CanBorrow decides whether a new loan may be created for a copy in the given
// status by a user who already holds activeLoans outstanding loans.
func CanBorrow(status model.CopyStatus, activeLoans int) Reason {
	if status != model.CopyAvailable {
		return CopyNotAvailable
	}
	if activeLoans >= MaxActiveLoans {
		return BorrowLimitReached
	}
	return Allowed
}

func CanReturn(status model.LoanStatus) Reason {
	if status == model.LoanReturned {
		return AlreadyReturned
	}
	return Allowed
}

// CanExtend allows extension of any outstanding loan, including overdue ones
// (an extension may cure the overdue state).
func CanExtend(status model.LoanStatus, extraDays int) Reason {
	if status == model.LoanReturned {
		return AlreadyReturned
	}
	if !allowedExtensions[extraDays] {
		return InvalidExtensionDays
	}
	return Allowed
}

// DueDate computes the due date of a loan borrowed at the given time.
func DueDate(borrowedAt time.Time) time.Time {
	return borrowedAt.Add(LoanPeriodDays * 24 * time.Hour)
}

// ResolveStatusAfterExtension shifts the due date and recomputes the loan status:
// still overdue if the new due date is already in the past, active otherwise.
func ResolveStatusAfterExtension(oldDueAt time.Time, extraDays int, now time.Time) (time.Time, model.LoanStatus) {
	newDueAt := oldDueAt.Add(time.Duration(extraDays) * 24 * time.Hour)
	if newDueAt.Before(now) {
		return newDueAt, model.LoanOverdue
	}
	return newDueAt, model.LoanActive
}

// IsOverdue reports whether an active loan has passed its due date.
func IsOverdue(dueAt, now time.Time, status model.LoanStatus) bool {
	return status == model.LoanActive && now.After(dueAt)
}
