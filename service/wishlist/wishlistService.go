package wishsvc

import (
	"context"
	"database/sql"
	"errors"

	"booklend/model"
	wishrepo "booklend/repository/wishlist"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrAlreadySaved = errors.New("book already in wishlist")
	ErrNotSaved     = errors.New("book not in wishlist")
)

type Service interface {
	Add(ctx context.Context, userID, bookID int64) (int64, error)
	Remove(ctx context.Context, userID, bookID int64) error
	List(ctx context.Context, userID int64) ([]model.WishlistRow, error)
	Contains(ctx context.Context, userID, bookID int64) (bool, error)
}

type service struct{ r wishrepo.Repo }

func New(r wishrepo.Repo) Service { return &service{r} }

func (s *service) Add(ctx context.Context, userID, bookID int64) (int64, error) {
	id, err := s.r.Add(ctx, userID, bookID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, ErrAlreadySaved
		}
		return 0, err
	}
	return id, nil
}

func (s *service) Remove(ctx context.Context, userID, bookID int64) error {
	if err := s.r.Remove(ctx, userID, bookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotSaved
		}
		return err
	}
	return nil
}

func (s *service) List(ctx context.Context, userID int64) ([]model.WishlistRow, error) {
	return s.r.ListByUser(ctx, userID)
}

func (s *service) Contains(ctx context.Context, userID, bookID int64) (bool, error) {
	return s.r.Contains(ctx, userID, bookID)
}
