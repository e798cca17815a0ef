package rentalsvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"booklend/model"
)

// Loan period granted on approval and added per extension.
const LoanPeriod = 14 * 24 * time.Hour

// errors used by controllers

type ErrCode string

const (
	ErrAlreadyRequested   ErrCode = "ALREADY_REQUESTED"
	ErrNotAvailable       ErrCode = "NOT_AVAILABLE"
	ErrNotCancelable      ErrCode = "NOT_CANCELABLE"
	ErrNotPending         ErrCode = "NOT_PENDING"
	ErrNotHeld            ErrCode = "NOT_HELD"
	ErrNotBorrower        ErrCode = "NOT_BORROWER"
	ErrAlreadyReturned    ErrCode = "ALREADY_RETURNED"
	ErrNoExtensionPending ErrCode = "NO_EXTENSION_PENDING"
	ErrNotFound           ErrCode = "NOT_FOUND"
	ErrPartialUpdate      ErrCode = "PARTIAL_UPDATE"
)

type codedError struct {
	code  ErrCode
	cause error
}

func (e codedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.code, e.cause)
	}
	return string(e.code)
}
func (e codedError) Code() ErrCode { return e.code }
func (e codedError) Unwrap() error { return e.cause }

func makeErr(c ErrCode) error { return codedError{code: c} }

// partialErr marks a two-table write that only half landed. The transaction
// row is already updated; the book row is not. An admin force return
// reconciles the pair.
func partialErr(cause error) error { return codedError{code: ErrPartialUpdate, cause: cause} }

// Code extracts the error code, "" for uncoded errors.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type TxRepo interface {
	Insert(ctx context.Context, bookID, userID int64) (int64, error)
	ByID(ctx context.Context, id int64) (*model.Transaction, error)
	Delete(ctx context.Context, id int64) error
	HasOpen(ctx context.Context, bookID, userID int64) (bool, error)
	Approve(ctx context.Context, id int64, approvedAt, due time.Time) error
	SetStatus(ctx context.Context, id int64, status model.TransactionStatus) error
	MarkReturned(ctx context.Context, id int64, at time.Time) error
	SetExtensionRequested(ctx context.Context, id int64, requested bool) error
	ResolveExtension(ctx context.Context, id int64, due *time.Time) error
	ListByUser(ctx context.Context, userID int64) ([]model.RentalRow, error)
	ListByStatus(ctx context.Context, statuses []model.TransactionStatus, orderBy string) ([]model.RentalRow, error)
}

type BookRepo interface {
	ByID(ctx context.Context, id int64) (*model.Book, error)
	SetStatus(ctx context.Context, id int64, status model.BookStatus) error
}

type Service interface {
	// RequestRental creates a pending transaction for an available book.
	// The book itself is untouched until approval.
	RequestRental(ctx context.Context, bookID, userID int64) (int64, error)

	// CancelRequest deletes a still-pending request of the caller.
	CancelRequest(ctx context.Context, txID, userID int64) error

	// ApproveRental grants the loan: due date now+14d, book goes rented.
	ApproveRental(ctx context.Context, txID int64) error

	// RejectRental declines a pending request, book untouched.
	RejectRental(ctx context.Context, txID int64) error

	// RequestReturn moves a held rental to pending_return.
	RequestReturn(ctx context.Context, txID, userID int64) error

	// ConfirmReturn finishes a return. Intended for pending_return but
	// accepted from any non-terminal status as an admin override.
	ConfirmReturn(ctx context.Context, txID int64) error

	// ForceReturn terminates any non-terminal rental, for disputes.
	ForceReturn(ctx context.Context, txID int64) error

	// RequestExtension flags a held rental for a longer loan.
	RequestExtension(ctx context.Context, txID, userID int64) error

	// ResolveExtension clears the flag; on approve the due date moves 14
	// days past its current value, not past today.
	ResolveExtension(ctx context.Context, txID int64, approve bool) error

	MyRentals(ctx context.Context, userID int64) ([]model.RentalRow, error)
	PendingRequests(ctx context.Context) ([]model.RentalRow, error)
	ActiveRentals(ctx context.Context) ([]model.RentalRow, error)
	ReturnHistory(ctx context.Context) ([]model.RentalRow, error)
}

type service struct {
	t TxRepo
	b BookRepo
}

func New(t TxRepo, b BookRepo) Service { return &service{t: t, b: b} }

func (s *service) RequestRental(ctx context.Context, bookID, userID int64) (int64, error) {
	open, err := s.t.HasOpen(ctx, bookID, userID)
	if err != nil {
		return 0, err
	}
	if open {
		return 0, makeErr(ErrAlreadyRequested)
	}

	book, err := s.b.ByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, makeErr(ErrNotFound)
		}
		return 0, err
	}
	if book.Status != model.BookAvailable {
		return 0, makeErr(ErrNotAvailable)
	}

	return s.t.Insert(ctx, bookID, userID)
}

func (s *service) CancelRequest(ctx context.Context, txID, userID int64) error {
	t, err := s.byID(ctx, txID)
	if err != nil {
		return err
	}
	if t.UserID != userID || t.Status != model.TxPending {
		return makeErr(ErrNotCancelable)
	}
	return s.t.Delete(ctx, txID)
}

func (s *service) ApproveRental(ctx context.Context, txID int64) error {
	t, err := s.byID(ctx, txID)
	if err != nil {
		return err
	}
	if t.Status != model.TxPending {
		return makeErr(ErrNotPending)
	}

	now := time.Now().UTC()
	if err := s.t.Approve(ctx, txID, now, now.Add(LoanPeriod)); err != nil {
		return err
	}
	// Second write, no shared transaction. A concurrent reader can observe
	// the approved transaction with the book still available until this
	// lands; a failure here leaves that pair for the admin to reconcile.
	if err := s.b.SetStatus(ctx, t.BookID, model.BookRented); err != nil {
		return partialErr(err)
	}
	return nil
}

func (s *service) RejectRental(ctx context.Context, txID int64) error {
	t, err := s.byID(ctx, txID)
	if err != nil {
		return err
	}
	if t.Status != model.TxPending {
		return makeErr(ErrNotPending)
	}
	return s.t.SetStatus(ctx, txID, model.TxRejected)
}

func (s *service) RequestReturn(ctx context.Context, txID, userID int64) error {
	t, err := s.byID(ctx, txID)
	if err != nil {
		return err
	}
	if t.UserID != userID {
		return makeErr(ErrNotBorrower)
	}
	if !t.Status.IsHeld() {
		return makeErr(ErrNotHeld)
	}
	return s.t.SetStatus(ctx, txID, model.TxPendingReturn)
}

func (s *service) ConfirmReturn(ctx context.Context, txID int64) error {
	return s.finishReturn(ctx, txID)
}

func (s *service) ForceReturn(ctx context.Context, txID int64) error {
	return s.finishReturn(ctx, txID)
}

// finishReturn terminates a rental from any non-terminal status: returned_at
// set once, extension flag cleared, book back to available.
func (s *service) finishReturn(ctx context.Context, txID int64) error {
	t, err := s.byID(ctx, txID)
	if err != nil {
		return err
	}
	if t.Status.IsTerminal() {
		if t.Status == model.TxReturned {
			return makeErr(ErrAlreadyReturned)
		}
		return makeErr(ErrNotHeld)
	}

	if err := s.t.MarkReturned(ctx, txID, time.Now().UTC()); err != nil {
		return err
	}
	if err := s.b.SetStatus(ctx, t.BookID, model.BookAvailable); err != nil {
		return partialErr(err)
	}
	return nil
}

func (s *service) RequestExtension(ctx context.Context, txID, userID int64) error {
	t, err := s.byID(ctx, txID)
	if err != nil {
		return err
	}
	if t.UserID != userID {
		return makeErr(ErrNotBorrower)
	}
	if !t.Status.IsHeld() && t.Status != model.TxPendingReturn {
		return makeErr(ErrNotHeld)
	}
	return s.t.SetExtensionRequested(ctx, txID, true)
}

func (s *service) ResolveExtension(ctx context.Context, txID int64, approve bool) error {
	t, err := s.byID(ctx, txID)
	if err != nil {
		return err
	}
	if !t.ExtensionRequested {
		return makeErr(ErrNoExtensionPending)
	}

	var due *time.Time
	if approve {
		if t.DueDate == nil {
			return makeErr(ErrNotHeld)
		}
		d := t.DueDate.Add(LoanPeriod)
		due = &d
	}
	return s.t.ResolveExtension(ctx, txID, due)
}

func (s *service) MyRentals(ctx context.Context, userID int64) ([]model.RentalRow, error) {
	return s.t.ListByUser(ctx, userID)
}

func (s *service) PendingRequests(ctx context.Context) ([]model.RentalRow, error) {
	return s.t.ListByStatus(ctx, []model.TransactionStatus{model.TxPending}, "")
}

func (s *service) ActiveRentals(ctx context.Context) ([]model.RentalRow, error) {
	return s.t.ListByStatus(ctx, []model.TransactionStatus{
		model.TxApproved, model.TxActive, model.TxPendingReturn,
	}, "due_date")
}

func (s *service) ReturnHistory(ctx context.Context) ([]model.RentalRow, error) {
	return s.t.ListByStatus(ctx, []model.TransactionStatus{model.TxReturned}, "returned_at")
}

func (s *service) byID(ctx context.Context, txID int64) (*model.Transaction, error) {
	t, err := s.t.ByID(ctx, txID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return t, nil
}
