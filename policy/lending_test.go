package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Legend373/Legend-Library-Ms/model"
)

func TestCanBorrow(t *testing.T) {
	cases := []struct {
		name   string
		status model.CopyStatus
		loans  int
		want   Reason
	}{
		{"available under limit", model.CopyAvailable, 0, Allowed},
		{"available at limit-1", model.CopyAvailable, MaxActiveLoans - 1, Allowed},
		{"available at limit", model.CopyAvailable, MaxActiveLoans, BorrowLimitReached},
		{"available over limit", model.CopyAvailable, MaxActiveLoans + 3, BorrowLimitReached},
		{"loaned", model.CopyLoaned, 0, CopyNotAvailable},
		{"reserved", model.CopyReserved, 0, CopyNotAvailable},
		{"maintenance", model.CopyMaintenance, 0, CopyNotAvailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, CanBorrow(tc.status, tc.loans))
		})
	}
}

func TestCanReturn(t *testing.T) {
	require.Equal(t, Allowed, CanReturn(model.LoanActive))
	require.Equal(t, Allowed, CanReturn(model.LoanOverdue))
	require.Equal(t, AlreadyReturned, CanReturn(model.LoanReturned))
}

func TestCanExtend(t *testing.T) {
	for _, days := range []int{7, 14, 21, 30} {
		require.Equal(t, Allowed, CanExtend(model.LoanActive, days))
		require.Equal(t, Allowed, CanExtend(model.LoanOverdue, days))
	}
	require.Equal(t, AlreadyReturned, CanExtend(model.LoanReturned, 7))
	for _, days := range []int{0, 1, 6, 15, 31, -7} {
		require.Equal(t, InvalidExtensionDays, CanExtend(model.LoanActive, days))
	}
}

func TestDueDate(t *testing.T) {
	borrowed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.Equal(t, borrowed.AddDate(0, 0, LoanPeriodDays), DueDate(borrowed))
}

func TestResolveStatusAfterExtension(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

	// Overdue by 5 days; +7 pushes the due date past now, curing the loan.
	oldDue := now.Add(-5 * 24 * time.Hour)
	newDue, status := ResolveStatusAfterExtension(oldDue, 7, now)
	require.Equal(t, oldDue.Add(7*24*time.Hour), newDue)
	require.Equal(t, model.LoanActive, status)

	// Overdue by 10 days; +7 is not enough, stays overdue.
	oldDue = now.Add(-10 * 24 * time.Hour)
	newDue, status = ResolveStatusAfterExtension(oldDue, 7, now)
	require.Equal(t, oldDue.Add(7*24*time.Hour), newDue)
	require.Equal(t, model.LoanOverdue, status)

	// Not yet due; stays active.
	oldDue = now.Add(3 * 24 * time.Hour)
	_, status = ResolveStatusAfterExtension(oldDue, 14, now)
	require.Equal(t, model.LoanActive, status)
}

func TestIsOverdue(t *testing.T) {
	now := time.Now().UTC()
	require.True(t, IsOverdue(now.Add(-time.Hour), now, model.LoanActive))
	require.False(t, IsOverdue(now.Add(time.Hour), now, model.LoanActive))
	require.False(t, IsOverdue(now, now, model.LoanActive))
	// Only active loans flip to overdue here; returned and already-overdue don't.
	require.False(t, IsOverdue(now.Add(-time.Hour), now, model.LoanOverdue))
	require.False(t, IsOverdue(now.Add(-time.Hour), now, model.LoanReturned))
}
