package wishsvc_test

import (
	"context"
	"database/sql"
	"testing"

	"booklend/model"
	wishsvc "booklend/service/wishlist"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type repoMock struct {
	addFn    func(ctx context.Context, userID, bookID int64) (int64, error)
	removeFn func(ctx context.Context, userID, bookID int64) error
}

func (m *repoMock) Add(ctx context.Context, userID, bookID int64) (int64, error) {
	return m.addFn(ctx, userID, bookID)
}
func (m *repoMock) Remove(ctx context.Context, userID, bookID int64) error {
	return m.removeFn(ctx, userID, bookID)
}
func (m *repoMock) ListByUser(ctx context.Context, userID int64) ([]model.WishlistRow, error) {
	return nil, nil
}
func (m *repoMock) LatestBook(ctx context.Context, userID int64) (*model.Book, error) {
	return nil, nil
}
func (m *repoMock) Contains(ctx context.Context, userID, bookID int64) (bool, error) {
	return false, nil
}

func TestAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("saves the book", func(t *testing.T) {
		r := &repoMock{
			addFn: func(ctx context.Context, userID, bookID int64) (int64, error) { return 12, nil },
		}
		s := wishsvc.New(r)

		id, err := s.Add(ctx, 7, 10)
		require.NoError(t, err)
		require.Equal(t, int64(12), id)
	})

	t.Run("duplicate save maps the unique violation", func(t *testing.T) {
		r := &repoMock{
			addFn: func(ctx context.Context, userID, bookID int64) (int64, error) {
				return 0, &pgconn.PgError{Code: pgerrcode.UniqueViolation}
			},
		}
		s := wishsvc.New(r)

		_, err := s.Add(ctx, 7, 10)
		require.ErrorIs(t, err, wishsvc.ErrAlreadySaved)
	})
}

func TestRemove(t *testing.T) {
	ctx := context.Background()

	r := &repoMock{
		removeFn: func(ctx context.Context, userID, bookID int64) error { return sql.ErrNoRows },
	}
	s := wishsvc.New(r)

	err := s.Remove(ctx, 7, 10)
	require.ErrorIs(t, err, wishsvc.ErrNotSaved)
}
