package rentalsvc_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"booklend/model"
	rentalsvc "booklend/service/rental"

	"github.com/stretchr/testify/require"
)

type txRepoMock struct {
	insertFn           func(ctx context.Context, bookID, userID int64) (int64, error)
	byIDFn             func(ctx context.Context, id int64) (*model.Transaction, error)
	deleteFn           func(ctx context.Context, id int64) error
	hasOpenFn          func(ctx context.Context, bookID, userID int64) (bool, error)
	approveFn          func(ctx context.Context, id int64, approvedAt, due time.Time) error
	setStatusFn        func(ctx context.Context, id int64, status model.TransactionStatus) error
	markReturnedFn     func(ctx context.Context, id int64, at time.Time) error
	setExtensionFn     func(ctx context.Context, id int64, requested bool) error
	resolveExtensionFn func(ctx context.Context, id int64, due *time.Time) error
}

var _ rentalsvc.TxRepo = (*txRepoMock)(nil)

func (m *txRepoMock) Insert(ctx context.Context, bookID, userID int64) (int64, error) {
	return m.insertFn(ctx, bookID, userID)
}
func (m *txRepoMock) ByID(ctx context.Context, id int64) (*model.Transaction, error) {
	return m.byIDFn(ctx, id)
}
func (m *txRepoMock) Delete(ctx context.Context, id int64) error { return m.deleteFn(ctx, id) }
func (m *txRepoMock) HasOpen(ctx context.Context, bookID, userID int64) (bool, error) {
	return m.hasOpenFn(ctx, bookID, userID)
}
func (m *txRepoMock) Approve(ctx context.Context, id int64, approvedAt, due time.Time) error {
	return m.approveFn(ctx, id, approvedAt, due)
}
func (m *txRepoMock) SetStatus(ctx context.Context, id int64, status model.TransactionStatus) error {
	return m.setStatusFn(ctx, id, status)
}
func (m *txRepoMock) MarkReturned(ctx context.Context, id int64, at time.Time) error {
	return m.markReturnedFn(ctx, id, at)
}
func (m *txRepoMock) SetExtensionRequested(ctx context.Context, id int64, requested bool) error {
	return m.setExtensionFn(ctx, id, requested)
}
func (m *txRepoMock) ResolveExtension(ctx context.Context, id int64, due *time.Time) error {
	return m.resolveExtensionFn(ctx, id, due)
}
func (m *txRepoMock) ListByUser(ctx context.Context, userID int64) ([]model.RentalRow, error) {
	return nil, nil
}
func (m *txRepoMock) ListByStatus(ctx context.Context, statuses []model.TransactionStatus, orderBy string) ([]model.RentalRow, error) {
	return nil, nil
}

type bookRepoMock struct {
	byIDFn      func(ctx context.Context, id int64) (*model.Book, error)
	setStatusFn func(ctx context.Context, id int64, status model.BookStatus) error
	setCalls    int
}

var _ rentalsvc.BookRepo = (*bookRepoMock)(nil)

func (m *bookRepoMock) ByID(ctx context.Context, id int64) (*model.Book, error) {
	return m.byIDFn(ctx, id)
}
func (m *bookRepoMock) SetStatus(ctx context.Context, id int64, status model.BookStatus) error {
	m.setCalls++
	if m.setStatusFn == nil {
		return nil
	}
	return m.setStatusFn(ctx, id, status)
}

func tx(id int64, status model.TransactionStatus) *model.Transaction {
	return &model.Transaction{ID: id, BookID: 10, UserID: 7, Status: status}
}

func TestRequestRental(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending transaction", func(t *testing.T) {
		var inserted bool
		txs := &txRepoMock{
			hasOpenFn: func(ctx context.Context, bookID, userID int64) (bool, error) { return false, nil },
			insertFn: func(ctx context.Context, bookID, userID int64) (int64, error) {
				inserted = true
				require.Equal(t, int64(10), bookID)
				require.Equal(t, int64(7), userID)
				return 99, nil
			},
		}
		books := &bookRepoMock{
			byIDFn: func(ctx context.Context, id int64) (*model.Book, error) {
				return &model.Book{ID: id, Status: model.BookAvailable}, nil
			},
		}
		s := rentalsvc.New(txs, books)

		id, err := s.RequestRental(ctx, 10, 7)
		require.NoError(t, err)
		require.Equal(t, int64(99), id)
		require.True(t, inserted)
		require.Zero(t, books.setCalls, "request must not touch the book")
	})

	t.Run("rejects second open request for same book", func(t *testing.T) {
		txs := &txRepoMock{
			hasOpenFn: func(ctx context.Context, bookID, userID int64) (bool, error) { return true, nil },
		}
		s := rentalsvc.New(txs, &bookRepoMock{})

		_, err := s.RequestRental(ctx, 10, 7)
		require.Equal(t, rentalsvc.ErrAlreadyRequested, rentalsvc.Code(err))
	})

	t.Run("rejects unavailable book", func(t *testing.T) {
		txs := &txRepoMock{
			hasOpenFn: func(ctx context.Context, bookID, userID int64) (bool, error) { return false, nil },
		}
		books := &bookRepoMock{
			byIDFn: func(ctx context.Context, id int64) (*model.Book, error) {
				return &model.Book{ID: id, Status: model.BookRented}, nil
			},
		}
		s := rentalsvc.New(txs, books)

		_, err := s.RequestRental(ctx, 10, 7)
		require.Equal(t, rentalsvc.ErrNotAvailable, rentalsvc.Code(err))
	})

	t.Run("missing book", func(t *testing.T) {
		txs := &txRepoMock{
			hasOpenFn: func(ctx context.Context, bookID, userID int64) (bool, error) { return false, nil },
		}
		books := &bookRepoMock{
			byIDFn: func(ctx context.Context, id int64) (*model.Book, error) { return nil, sql.ErrNoRows },
		}
		s := rentalsvc.New(txs, books)

		_, err := s.RequestRental(ctx, 10, 7)
		require.Equal(t, rentalsvc.ErrNotFound, rentalsvc.Code(err))
	})
}

func TestCancelRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes own pending request", func(t *testing.T) {
		var deleted bool
		txs := &txRepoMock{
			byIDFn:   func(ctx context.Context, id int64) (*model.Transaction, error) { return tx(id, model.TxPending), nil },
			deleteFn: func(ctx context.Context, id int64) error { deleted = true; return nil },
		}
		s := rentalsvc.New(txs, &bookRepoMock{})

		require.NoError(t, s.CancelRequest(ctx, 1, 7))
		require.True(t, deleted)
	})

	t.Run("rejects other borrower", func(t *testing.T) {
		txs := &txRepoMock{
			byIDFn: func(ctx context.Context, id int64) (*model.Transaction, error) { return tx(id, model.TxPending), nil },
		}
		s := rentalsvc.New(txs, &bookRepoMock{})

		err := s.CancelRequest(ctx, 1, 8)
		require.Equal(t, rentalsvc.ErrNotCancelable, rentalsvc.Code(err))
	})

	t.Run("rejects non-pending", func(t *testing.T) {
		for _, st := range []model.TransactionStatus{
			model.TxApproved, model.TxActive, model.TxPendingReturn, model.TxReturned, model.TxRejected,
		} {
			txs := &txRepoMock{
				byIDFn: func(ctx context.Context, id int64) (*model.Transaction, error) { return tx(id, st), nil },
			}
			s := rentalsvc.New(txs, &bookRepoMock{})

			err := s.CancelRequest(ctx, 1, 7)
			require.Equal(t, rentalsvc.ErrNotCancelable, rentalsvc.Code(err), "status %s", st)
		}
	})
}

func TestApproveRental(t *testing.T) {
	ctx := context.Background()

	t.Run("sets due date and rents the book", func(t *testing.T) {
		var gotApproved, gotDue time.Time
		txs := &txRepoMock{
			byIDFn: func(ctx context.Context, id int64) (*model.Transaction, error) { return tx(id, model.TxPending), nil },
			approveFn: func(ctx context.Context, id int64, approvedAt, due time.Time) error {
				gotApproved, gotDue = approvedAt, due
				return nil
			},
		}
		books := &bookRepoMock{
			setStatusFn: func(ctx context.Context, id int64, status model.BookStatus) error {
				require.Equal(t, int64(10), id)
				require.Equal(t, model.BookRented, status)
				return nil
			},
		}
		s := rentalsvc.New(txs, books)

		require.NoError(t, s.ApproveRental(ctx, 1))
		require.WithinDuration(t, time.Now().UTC(), gotApproved, 2*time.Second)
		require.Equal(t, gotApproved.Add(rentalsvc.LoanPeriod), gotDue)
		require.Equal(t, 1, books.setCalls)
	})

	t.Run("second approve is rejected", func(t *testing.T) {
		txs := &txRepoMock{
			byIDFn: func(ctx context.Context, id int64) (*model.Transaction, error) { return tx(id, model.TxApproved), nil },
		}
		s := rentalsvc.New(txs, &bookRepoMock{})

		err := s.ApproveRental(ctx, 1)
		require.Equal(t, rentalsvc.ErrNotPending, rentalsvc.Code(err))
	})

	t.Run("book write failure reports partial update", func(t *testing.T) {
		cause := errors.New("connection reset")
		txs := &txRepoMock{
			byIDFn:    func(ctx context.Context, id int64) (*model.Transaction, error) { return tx(id, model.TxPending), nil },
			approveFn: func(ctx context.Context, id int64, approvedAt, due time.Time) error { return nil },
		}
		books := &bookRepoMock{
			setStatusFn: func(ctx context.Context, id int64, status model.BookStatus) error { return cause },
		}
		s := rentalsvc.New(txs, books)

		err := s.ApproveRental(ctx, 1)
		require.Equal(t, rentalsvc.ErrPartialUpdate, rentalsvc.Code(err))
		require.ErrorIs(t, err, cause)
	})
}

func TestRejectRental(t *testing.T) {
	ctx := context.Background()

	books := &bookRepoMock{}
	txs := &txRepoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Transaction, error) { return tx(id, model.TxPending), nil },
		setStatusFn: func(ctx context.Context, id int64, status model.TransactionStatus) error {
			require.Equal(t, model.TxRejected, status)
			return nil
		},
	}
	s := rentalsvc.New(txs, books)

	require.NoError(t, s.RejectRental(ctx, 1))
	require.Zero(t, books.setCalls, "reject must leave the book untouched")
}

func TestRequestReturn(t *testing.T) {
	ctx := context.Background()

	t.Run("moves held rental to pending_return", func(t *testing.T) {
		for _, st := range []model.TransactionStatus{model.TxApproved, model.TxActive} {
			txs := &txRepoMock{
				byIDFn: func(ctx context.Context, id int64) (*model.Transaction, error) { return tx(id, st), nil },
				setStatusFn: func(ctx context.Context, id int64, status model.TransactionStatus) error {
					require.Equal(t, model.TxPendingReturn, status)
					return nil
				},
			}
			s := rentalsvc.New(txs, &bookRepoMock{})
			require.NoError(t, s.RequestReturn(ctx, 1, 7), "status %s", st)
		}
	})

	t.Run("rejects non-borrower", func(t *testing.T) {
		txs := &txRepoMock{
			byIDFn: func(ctx context.Context, id int64) (*model.Transaction, error) { return tx(id, model.TxApproved), nil },
		}
		s := rentalsvc.New(txs, &bookRepoMock{})

		err := s.RequestReturn(ctx, 1, 8)
		require.Equal(t, rentalsvc.ErrNotBorrower, rentalsvc.Code(err))
	})

	t.Run("rejects pending rental", func(t *testing.T) {
		txs := &txRepoMock{
			byIDFn: func(ctx context.Context, id int64) (*model.Transaction, error) { return tx(id, model.TxPending), nil },
		}
		s := rentalsvc.New(txs, &bookRepoMock{})

		err := s.RequestReturn(ctx, 1, 7)
		require.Equal(t, rentalsvc.ErrNotHeld, rentalsvc.Code(err))
	})
}

func TestFinishReturn(t *testing.T) {
	ctx := context.Background()

	t.Run("confirm from pending_return frees the book", func(t *testing.T) {
		var returnedAt time.Time
		txs := &txRepoMock{
			byIDFn: func(ctx context.Context, id int64) (*model.Transaction, error) {
				return tx(id, model.TxPendingReturn), nil
			},
			markReturnedFn: func(ctx context.Context, id int64, at time.Time) error {
				returnedAt = at
				return nil
			},
		}
		books := &bookRepoMock{
			setStatusFn: func(ctx context.Context, id int64, status model.BookStatus) error {
				require.Equal(t, model.BookAvailable, status)
				return nil
			},
		}
		s := rentalsvc.New(txs, books)

		require.NoError(t, s.ConfirmReturn(ctx, 1))
		require.WithinDuration(t, time.Now().UTC(), returnedAt, 2*time.Second)
	})

	t.Run("confirm from approved acts as admin override", func(t *testing.T) {
		txs := &txRepoMock{
			byIDFn:         func(ctx context.Context, id int64) (*model.Transaction, error) { return tx(id, model.TxApproved), nil },
			markReturnedFn: func(ctx context.Context, id int64, at time.Time) error { return nil },
		}
		s := rentalsvc.New(txs, &bookRepoMock{})

		require.NoError(t, s.ConfirmReturn(ctx, 1))
	})

	t.Run("force return on returned transaction is rejected, not repeated", func(t *testing.T) {
		var markCalls int
		txs := &txRepoMock{
			byIDFn: func(ctx context.Context, id int64) (*model.Transaction, error) { return tx(id, model.TxReturned), nil },
			markReturnedFn: func(ctx context.Context, id int64, at time.Time) error {
				markCalls++
				return nil
			},
		}
		books := &bookRepoMock{}
		s := rentalsvc.New(txs, books)

		err := s.ForceReturn(ctx, 1)
		require.Equal(t, rentalsvc.ErrAlreadyReturned, rentalsvc.Code(err))
		require.Zero(t, markCalls)
		require.Zero(t, books.setCalls)
	})

	t.Run("book write failure reports partial update", func(t *testing.T) {
		txs := &txRepoMock{
			byIDFn:         func(ctx context.Context, id int64) (*model.Transaction, error) { return tx(id, model.TxActive), nil },
			markReturnedFn: func(ctx context.Context, id int64, at time.Time) error { return nil },
		}
		books := &bookRepoMock{
			setStatusFn: func(ctx context.Context, id int64, status model.BookStatus) error {
				return errors.New("timeout")
			},
		}
		s := rentalsvc.New(txs, books)

		err := s.ForceReturn(ctx, 1)
		require.Equal(t, rentalsvc.ErrPartialUpdate, rentalsvc.Code(err))
	})
}

func TestExtensions(t *testing.T) {
	ctx := context.Background()

	t.Run("request sets flag on held or pending_return", func(t *testing.T) {
		for _, st := range []model.TransactionStatus{model.TxApproved, model.TxActive, model.TxPendingReturn} {
			txs := &txRepoMock{
				byIDFn: func(ctx context.Context, id int64) (*model.Transaction, error) { return tx(id, st), nil },
				setExtensionFn: func(ctx context.Context, id int64, requested bool) error {
					require.True(t, requested)
					return nil
				},
			}
			s := rentalsvc.New(txs, &bookRepoMock{})
			require.NoError(t, s.RequestExtension(ctx, 1, 7), "status %s", st)
		}
	})

	t.Run("request rejected on pending", func(t *testing.T) {
		txs := &txRepoMock{
			byIDFn: func(ctx context.Context, id int64) (*model.Transaction, error) { return tx(id, model.TxPending), nil },
		}
		s := rentalsvc.New(txs, &bookRepoMock{})

		err := s.RequestExtension(ctx, 1, 7)
		require.Equal(t, rentalsvc.ErrNotHeld, rentalsvc.Code(err))
	})

	t.Run("approve extends from current due date, not today", func(t *testing.T) {
		oldDue := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		txs := &txRepoMock{
			byIDFn: func(ctx context.Context, id int64) (*model.Transaction, error) {
				t := tx(id, model.TxActive)
				t.DueDate = &oldDue
				t.ExtensionRequested = true
				return t, nil
			},
			resolveExtensionFn: func(ctx context.Context, id int64, due *time.Time) error {
				require.NotNil(t, due)
				require.Equal(t, oldDue.Add(rentalsvc.LoanPeriod), *due)
				return nil
			},
		}
		s := rentalsvc.New(txs, &bookRepoMock{})

		require.NoError(t, s.ResolveExtension(ctx, 1, true))
	})

	t.Run("reject clears flag and keeps due date", func(t *testing.T) {
		oldDue := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		txs := &txRepoMock{
			byIDFn: func(ctx context.Context, id int64) (*model.Transaction, error) {
				t := tx(id, model.TxActive)
				t.DueDate = &oldDue
				t.ExtensionRequested = true
				return t, nil
			},
			resolveExtensionFn: func(ctx context.Context, id int64, due *time.Time) error {
				require.Nil(t, due)
				return nil
			},
		}
		s := rentalsvc.New(txs, &bookRepoMock{})

		require.NoError(t, s.ResolveExtension(ctx, 1, false))
	})

	t.Run("resolve without pending request", func(t *testing.T) {
		txs := &txRepoMock{
			byIDFn: func(ctx context.Context, id int64) (*model.Transaction, error) { return tx(id, model.TxActive), nil },
		}
		s := rentalsvc.New(txs, &bookRepoMock{})

		err := s.ResolveExtension(ctx, 1, true)
		require.Equal(t, rentalsvc.ErrNoExtensionPending, rentalsvc.Code(err))
	})
}
