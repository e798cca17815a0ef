// model/transactionModel.go
package model

import "time"

type TransactionStatus string

const (
	TxPending       TransactionStatus = "pending"
	TxApproved      TransactionStatus = "approved"
	TxActive        TransactionStatus = "active"
	TxPendingReturn TransactionStatus = "pending_return"
	TxReturned      TransactionStatus = "returned"
	TxRejected      TransactionStatus = "rejected"
)

// IsHeld reports whether the borrower currently holds the book.
// approved and active are treated as the same "currently held" state.
func (s TransactionStatus) IsHeld() bool {
	return s == TxApproved || s == TxActive
}

// IsTerminal reports whether no further status transition is possible.
func (s TransactionStatus) IsTerminal() bool {
	return s == TxReturned || s == TxRejected
}

type Transaction struct {
	ID                 int64             `json:"id"`
	BookID             int64             `json:"book_id"`
	UserID             int64             `json:"user_id"`
	Status             TransactionStatus `json:"status"`
	ApprovalDate       *time.Time        `json:"approval_date,omitempty"`
	DueDate            *time.Time        `json:"due_date,omitempty"`
	ReturnedAt         *time.Time        `json:"returned_at,omitempty"`
	ExtensionRequested bool              `json:"extension_requested"`
	CreatedAt          time.Time         `json:"created_at"`
}

// RentalRow is a transaction joined with its book, used by listings.
type RentalRow struct {
	Transaction
	BookTitle    string  `json:"book_title"`
	BookImageURL *string `json:"book_image_url,omitempty"`
	UserName     string  `json:"user_name,omitempty"`
	UserEmail    string  `json:"user_email,omitempty"`
}
