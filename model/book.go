// model/book.go
package model

import "time"

type CopyStatus string

const (
	CopyAvailable   CopyStatus = "available"
	CopyLoaned      CopyStatus = "loaned"
	CopyReserved    CopyStatus = "reserved"
	CopyMaintenance CopyStatus = "maintenance"
)

func ValidCopyStatus(s string) bool {
	switch CopyStatus(s) {
	case CopyAvailable, CopyLoaned, CopyReserved, CopyMaintenance:
		return true
	}
	return false
}

type Book struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	Category        string    `json:"category"`
	TotalCopies     int64     `json:"total_copies"`
	AvailableCopies int64     `json:"available_copies"`
	AddedAt         time.Time `json:"added_at"`
}

type BookCopy struct {
	ID     int64      `json:"id"`
	BookID int64      `json:"book_id"`
	Status CopyStatus `json:"status"`
}
