package reviewsvc

import (
	"context"
	"errors"

	"booklend/model"
	reviewrepo "booklend/repository/review"
)

var ErrBadRating = errors.New("rating must be between 1 and 5")

type Service interface {
	// Post stores a review and folds its rating into the book aggregates.
	Post(ctx context.Context, bookID, userID int64, rating int, comment string) (int64, error)
	ListByBook(ctx context.Context, bookID int64) ([]model.ReviewRow, error)
}

type service struct{ r reviewrepo.Repo }

func New(r reviewrepo.Repo) Service { return &service{r} }

func (s *service) Post(ctx context.Context, bookID, userID int64, rating int, comment string) (int64, error) {
	if rating < 1 || rating > 5 {
		return 0, ErrBadRating
	}
	return s.r.Insert(ctx, &model.Review{
		BookID:  bookID,
		UserID:  userID,
		Rating:  rating,
		Comment: comment,
	})
}

func (s *service) ListByBook(ctx context.Context, bookID int64) ([]model.ReviewRow, error) {
	return s.r.ListByBook(ctx, bookID)
}
