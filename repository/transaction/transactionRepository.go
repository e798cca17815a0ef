package txrepo

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"booklend/model"
)

type Repo interface {
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
	RecentBookIDs(ctx context.Context, limit int) ([]int64, error)
	LatestEngagedBook(ctx context.Context, userID int64) (*model.Book, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const txCols = `id, book_id, user_id, status, approval_date, due_date, returned_at,
	extension_requested, created_at`

func (r *repo) Insert(ctx context.Context, bookID, userID int64) (int64, error) {
	const q = `
INSERT INTO transactions (book_id, user_id, status)
VALUES ($1, $2, 'pending')
RETURNING id`
	var id int64
	if err := r.db.QueryRowContext(ctx, q, bookID, userID).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Transaction, error) {
	q := `SELECT ` + txCols + ` FROM transactions WHERE id = $1`
	var t model.Transaction
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&t.ID, &t.BookID, &t.UserID, &t.Status, &t.ApprovalDate, &t.DueDate,
		&t.ReturnedAt, &t.ExtensionRequested, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM transactions WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// HasOpen reports whether the borrower already has a non-terminal
// transaction for this book. Read-then-write check, not a constraint.
func (r *repo) HasOpen(ctx context.Context, bookID, userID int64) (bool, error) {
	const q = `
SELECT EXISTS (
	SELECT 1 FROM transactions
	WHERE book_id = $1 AND user_id = $2
	  AND status IN ('pending','approved','active','pending_return')
)`
	var exists bool
	err := r.db.QueryRowContext(ctx, q, bookID, userID).Scan(&exists)
	return exists, err
}

func (r *repo) Approve(ctx context.Context, id int64, approvedAt, due time.Time) error {
	const q = `
UPDATE transactions
SET status = 'approved', approval_date = $2, due_date = $3
WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, approvedAt, due)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) SetStatus(ctx context.Context, id int64, status model.TransactionStatus) error {
	const q = `UPDATE transactions SET status = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, status)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) MarkReturned(ctx context.Context, id int64, at time.Time) error {
	const q = `
UPDATE transactions
SET status = 'returned', returned_at = $2, extension_requested = FALSE
WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, at)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) SetExtensionRequested(ctx context.Context, id int64, requested bool) error {
	const q = `UPDATE transactions SET extension_requested = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, requested)
	return err
}

// ResolveExtension clears the flag and, when due is non-nil, moves the due
// date in the same statement.
func (r *repo) ResolveExtension(ctx context.Context, id int64, due *time.Time) error {
	const q = `
UPDATE transactions
SET extension_requested = FALSE, due_date = COALESCE($2, due_date)
WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, due)
	return err
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.RentalRow, error) {
	const q = `
SELECT t.id, t.book_id, t.user_id, t.status, t.approval_date, t.due_date,
       t.returned_at, t.extension_requested, t.created_at,
       b.title, b.image_url
FROM transactions t
JOIN books b ON b.id = t.book_id
WHERE t.user_id = $1
ORDER BY t.created_at DESC, t.id DESC`
	return r.queryRows(ctx, q, false, userID)
}


// ListByStatus powers the admin console tabs. orderBy is one of the
// whitelisted sort modes, anything else falls back to request order.
func (r *repo) ListByStatus(ctx context.Context, statuses []model.TransactionStatus, orderBy string) ([]model.RentalRow, error) {
	q := `
SELECT t.id, t.book_id, t.user_id, t.status, t.approval_date, t.due_date,
       t.returned_at, t.extension_requested, t.created_at,
       b.title, b.image_url, u.full_name, u.email
FROM transactions t
JOIN books b ON b.id = t.book_id
JOIN users u ON u.id = t.user_id
WHERE t.status = ANY($1)`
	switch orderBy {
	case "due_date":
		q += ` ORDER BY t.due_date ASC NULLS LAST`
	case "returned_at":
		q += ` ORDER BY t.returned_at DESC NULLS LAST`
	default:
		q += ` ORDER BY t.created_at ASC`
	}
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return r.queryRows(ctx, q, true, "{"+strings.Join(parts, ",")+"}")
}

// RecentBookIDs returns book ids of the most recent transactions
// platform-wide, newest first, any status.
func (r *repo) RecentBookIDs(ctx context.Context, limit int) ([]int64, error) {
	const q = `
SELECT book_id FROM transactions
ORDER BY created_at DESC, id DESC
LIMIT $1`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// LatestEngagedBook is the book of the user's most recent transaction in an
// engaged state, the seed for history recommendations. Returns (nil, nil)
// when the user has none.
func (r *repo) LatestEngagedBook(ctx context.Context, userID int64) (*model.Book, error) {
	const q = `
SELECT b.id, b.isbn13, b.title, b.author, b.description, b.broad_category,
       b.image_url, b.published_year, b.num_pages, b.emotion_joy,
       b.emotion_sadness, b.emotion_fear, b.emotion_surprise, b.status,
       b.owner_id, b.average_rating, b.ratings_count, b.created_at
FROM transactions t
JOIN books b ON b.id = t.book_id
WHERE t.user_id = $1
  AND t.status IN ('returned','active','approved','pending_return')
ORDER BY t.created_at DESC, t.id DESC
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

func (r *repo) queryRows(ctx context.Context, q string, withUser bool, args ...any) ([]model.RentalRow, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RentalRow
	for rows.Next() {
		var row model.RentalRow
		dest := []any{
			&row.ID, &row.BookID, &row.UserID, &row.Status, &row.ApprovalDate,
			&row.DueDate, &row.ReturnedAt, &row.ExtensionRequested, &row.CreatedAt,
			&row.BookTitle, &row.BookImageURL,
		}
		if withUser {
			dest = append(dest, &row.UserName, &row.UserEmail)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
