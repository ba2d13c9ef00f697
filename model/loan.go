// model/loan.go
package model

import "time"

type LoanStatus string

const (
	LoanActive   LoanStatus = "active"
	LoanOverdue  LoanStatus = "overdue"
	LoanReturned LoanStatus = "returned"
)

// Outstanding reports whether the loan still holds its copy.
func (s LoanStatus) Outstanding() bool { return s == LoanActive || s == LoanOverdue }

type Loan struct {
	ID         int64      `json:"id"`
	CopyID     int64      `json:"copy_id"`
	BookID     int64      `json:"book_id"`
	UserID     int64      `json:"user_id"`
	Status     LoanStatus `json:"status"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
}

// LoanDetail is the admin listing shape: a loan joined with its book and borrower.
type LoanDetail struct {
	Loan
	BookTitle string `json:"book_title"`
	ISBN      string `json:"isbn"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}
