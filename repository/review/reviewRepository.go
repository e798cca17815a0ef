package reviewrepo

import (
	"context"
	"database/sql"

	"booklend/model"
)

type Repo interface {
	Insert(ctx context.Context, rv *model.Review) (int64, error)
	ListByBook(ctx context.Context, bookID int64) ([]model.ReviewRow, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

// Insert stores the review and folds the rating into the book aggregates in
// one transaction.
func (r *repo) Insert(ctx context.Context, rv *model.Review) (id int64, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const ins = `
INSERT INTO reviews (book_id, user_id, rating, comment)
VALUES ($1, $2, $3, $4)
RETURNING id`
	if err = tx.QueryRowContext(ctx, ins, rv.BookID, rv.UserID, rv.Rating, rv.Comment).Scan(&id); err != nil {
		return 0, err
	}

	const agg = `
UPDATE books
SET average_rating = (COALESCE(average_rating, 0) * ratings_count + $2) / (ratings_count + 1),
    ratings_count  = ratings_count + 1
WHERE id = $1`
	if _, err = tx.ExecContext(ctx, agg, rv.BookID, rv.Rating); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) ListByBook(ctx context.Context, bookID int64) ([]model.ReviewRow, error) {
	const q = `
SELECT r.id, r.book_id, r.user_id, r.rating, COALESCE(r.comment, ''), r.created_at,
       u.full_name
FROM reviews r
JOIN users u ON u.id = r.user_id
WHERE r.book_id = $1
ORDER BY r.created_at DESC, r.id DESC`
	rows, err := r.db.QueryContext(ctx, q, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ReviewRow
	for rows.Next() {
		var row model.ReviewRow
		if err := rows.Scan(&row.ID, &row.BookID, &row.UserID, &row.Rating,
			&row.Comment, &row.CreatedAt, &row.UserName); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
