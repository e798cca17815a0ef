package bookrepo

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"booklend/model"

	"github.com/pgvector/pgvector-go"
)

type Repo interface {
	Insert(ctx context.Context, b *model.Book) (int64, error)
	ByID(ctx context.Context, id int64) (*model.Book, error)
	ByIDs(ctx context.Context, ids []int64, statuses []model.BookStatus) ([]model.Book, error)
	List(ctx context.Context, statuses []model.BookStatus) ([]model.Book, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Book, error)
	TitleISBNIndex(ctx context.Context) ([]model.BookKey, error)
	SetStatus(ctx context.Context, id int64, status model.BookStatus) error
	Delete(ctx context.Context, id int64) error
	TopRated(ctx context.Context, limit int) ([]model.Book, error)
	HybridSearch(ctx context.Context, embedding []float32, minJoy, minSadness, threshold float64, count int) ([]model.SearchResult, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const bookCols = `id, isbn13, title, author, description, broad_category, image_url,
	published_year, num_pages, emotion_joy, emotion_sadness, emotion_fear,
	emotion_surprise, status, owner_id, average_rating, ratings_count, created_at`

func scanBook(s interface{ Scan(...any) error }) (*model.Book, error) {
	var b model.Book
	var avg sql.NullFloat64
	if err := s.Scan(
		&b.ID, &b.ISBN13, &b.Title, &b.Author, &b.Description, &b.BroadCategory,
		&b.ImageURL, &b.PublishedYear, &b.NumPages, &b.EmotionJoy, &b.EmotionSadness,
		&b.EmotionFear, &b.EmotionSurprise, &b.Status, &b.OwnerID, &avg,
		&b.RatingsCount, &b.CreatedAt,
	); err != nil {
		return nil, err
	}
	if avg.Valid {
		b.AverageRating = &avg.Float64
	}
	return &b, nil
}

func (r *repo) Insert(ctx context.Context, b *model.Book) (int64, error) {
	const q = `
INSERT INTO books (isbn13, title, author, description, broad_category, image_url,
	published_year, num_pages, embedding, emotion_joy, emotion_sadness,
	emotion_fear, emotion_surprise, status, owner_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
RETURNING id`
	var emb any
	if b.Embedding != nil {
		emb = pgvector.NewVector(b.Embedding)
	}
	var id int64
	err := r.db.QueryRowContext(ctx, q,
		b.ISBN13, b.Title, b.Author, b.Description, b.BroadCategory, b.ImageURL,
		b.PublishedYear, b.NumPages, emb, b.EmotionJoy, b.EmotionSadness,
		b.EmotionFear, b.EmotionSurprise, b.Status, b.OwnerID,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Book, error) {
	q := `SELECT ` + bookCols + ` FROM books WHERE id = $1`
	return scanBook(r.db.QueryRowContext(ctx, q, id))
}

func (r *repo) ByIDs(ctx context.Context, ids []int64, statuses []model.BookStatus) ([]model.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := `SELECT ` + bookCols + ` FROM books WHERE id = ANY($1)`
	args := []any{int64Array(ids)}
	if len(statuses) > 0 {
		q += ` AND status = ANY($2)`
		args = append(args, statusArray(statuses))
	}
	return r.queryBooks(ctx, q, args...)
}

func (r *repo) List(ctx context.Context, statuses []model.BookStatus) ([]model.Book, error) {
	q := `SELECT ` + bookCols + ` FROM books`
	var args []any
	if len(statuses) > 0 {
		q += ` WHERE status = ANY($1)`
		args = append(args, statusArray(statuses))
	}
	q += ` ORDER BY created_at DESC`
	return r.queryBooks(ctx, q, args...)
}

func (r *repo) ListByOwner(ctx context.Context, ownerID int64) ([]model.Book, error) {
	q := `SELECT ` + bookCols + ` FROM books WHERE owner_id = $1 ORDER BY created_at DESC`
	return r.queryBooks(ctx, q, ownerID)
}

// TitleISBNIndex returns title/isbn pairs of every book past review,
// the comparison set for duplicate detection.
func (r *repo) TitleISBNIndex(ctx context.Context) ([]model.BookKey, error) {
	const q = `SELECT id, title, isbn13 FROM books WHERE status <> 'pending_approval'`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BookKey
	for rows.Next() {
		var k model.BookKey
		if err := rows.Scan(&k.ID, &k.Title, &k.ISBN13); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (r *repo) SetStatus(ctx context.Context, id int64, status model.BookStatus) error {
	const q = `UPDATE books SET status = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, status)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM books WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) TopRated(ctx context.Context, limit int) ([]model.Book, error) {
	q := `SELECT ` + bookCols + `
FROM books
WHERE status IN ('available','rented')
ORDER BY ratings_count DESC, id
LIMIT $1`
	return r.queryBooks(ctx, q, limit)
}

// HybridSearch calls the hybrid_search database function. Threshold and
// emotion minimums are enforced by the function itself, rows come back
// ordered by similarity descending.
func (r *repo) HybridSearch(ctx context.Context, embedding []float32, minJoy, minSadness, threshold float64, count int) ([]model.SearchResult, error) {
	const q = `
SELECT id, title, author, image_url, average_rating, emotion_joy, similarity
FROM hybrid_search($1, $2, $3, $4, $5)`
	rows, err := r.db.QueryContext(ctx, q,
		pgvector.NewVector(embedding), minJoy, minSadness, threshold, count)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SearchResult
	for rows.Next() {
		var sr model.SearchResult
		if err := rows.Scan(&sr.ID, &sr.Title, &sr.Author, &sr.ImageURL,
			&sr.AverageRating, &sr.EmotionJoy, &sr.Similarity); err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

func (r *repo) queryBooks(ctx context.Context, q string, args ...any) ([]model.Book, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// pgx's stdlib driver accepts postgres array literals for = ANY($n).

func int64Array(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func statusArray(ss []model.BookStatus) string {
	parts := make([]string, len(ss))
	for i, s := range ss {
		parts[i] = string(s)
	}
	return "{" + strings.Join(parts, ",") + "}"
}
