package wishrepo

import (
	"context"
	"database/sql"

	"booklend/model"
)

type Repo interface {
	Add(ctx context.Context, userID, bookID int64) (int64, error)
	Remove(ctx context.Context, userID, bookID int64) error
	ListByUser(ctx context.Context, userID int64) ([]model.WishlistRow, error)
	// LatestBook is the book behind the user's most recently added entry,
	// (nil, nil) when the wishlist is empty.
	LatestBook(ctx context.Context, userID int64) (*model.Book, error)
	Contains(ctx context.Context, userID, bookID int64) (bool, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

// Add relies on the (user_id, book_id) unique index; duplicate inserts
// surface as a pg unique violation the service maps.
func (r *repo) Add(ctx context.Context, userID, bookID int64) (int64, error) {
	const q = `
INSERT INTO wishlists (user_id, book_id)
VALUES ($1, $2)
RETURNING id`
	var id int64
	if err := r.db.QueryRowContext(ctx, q, userID, bookID).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) Remove(ctx context.Context, userID, bookID int64) error {
	const q = `DELETE FROM wishlists WHERE user_id = $1 AND book_id = $2`
	res, err := r.db.ExecContext(ctx, q, userID, bookID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.WishlistRow, error) {
	const q = `
SELECT w.id, w.user_id, w.book_id, w.created_at, b.title, b.image_url
FROM wishlists w
JOIN books b ON b.id = w.book_id
WHERE w.user_id = $1
ORDER BY w.created_at DESC, w.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.WishlistRow
	for rows.Next() {
		var row model.WishlistRow
		if err := rows.Scan(&row.ID, &row.UserID, &row.BookID, &row.CreatedAt,
			&row.BookTitle, &row.BookImageURL); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repo) LatestBook(ctx context.Context, userID int64) (*model.Book, error) {
	const q = `
SELECT b.id, b.isbn13, b.title, b.author, b.description, b.broad_category,
       b.image_url, b.published_year, b.num_pages, b.emotion_joy,
       b.emotion_sadness, b.emotion_fear, b.emotion_surprise, b.status,
       b.owner_id, b.average_rating, b.ratings_count, b.created_at
FROM wishlists w
JOIN books b ON b.id = w.book_id
WHERE w.user_id = $1
ORDER BY w.created_at DESC, w.id DESC
LIMIT 1`
	var b model.Book
	var avg sql.NullFloat64
	err := r.db.QueryRowContext(ctx, q, userID).Scan(
		&b.ID, &b.ISBN13, &b.Title, &b.Author, &b.Description, &b.BroadCategory,
		&b.ImageURL, &b.PublishedYear, &b.NumPages, &b.EmotionJoy,
		&b.EmotionSadness, &b.EmotionFear, &b.EmotionSurprise, &b.Status,
		&b.OwnerID, &avg, &b.RatingsCount, &b.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if avg.Valid {
		b.AverageRating = &avg.Float64
	}
	return &b, nil
}

func (r *repo) Contains(ctx context.Context, userID, bookID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM wishlists WHERE user_id = $1 AND book_id = $2)`
	var exists bool
	err := r.db.QueryRowContext(ctx, q, userID, bookID).Scan(&exists)
	return exists, err
}
