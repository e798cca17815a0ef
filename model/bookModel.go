package model

import "time"

type BookStatus string

const (
	BookPendingApproval BookStatus = "pending_approval"
	BookAvailable       BookStatus = "available"
	BookRented          BookStatus = "rented"
	BookRejected        BookStatus = "rejected"
)

// EmotionScores are classifier outputs, each in [0,1].
type EmotionScores struct {
	Joy      float64 `json:"joy"`
	Sadness  float64 `json:"sadness"`
	Fear     float64 `json:"fear"`
	Surprise float64 `json:"surprise"`
	Anger    float64 `json:"anger"`
}

type Book struct {
	ID              int64      `json:"id"`
	ISBN13          *int64     `json:"isbn13,omitempty"`
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	Description     string     `json:"description"`
	BroadCategory   string     `json:"broad_category"`
	ImageURL        *string    `json:"image_url,omitempty"`
	PublishedYear   *int       `json:"published_year,omitempty"`
	NumPages        *int       `json:"num_pages,omitempty"`
	Embedding       []float32  `json:"-"`
	EmotionJoy      float64    `json:"emotion_joy"`
	EmotionSadness  float64    `json:"emotion_sadness"`
	EmotionFear     float64    `json:"emotion_fear"`
	EmotionSurprise float64    `json:"emotion_surprise"`
	Status          BookStatus `json:"status"`
	OwnerID         *int64     `json:"owner_id,omitempty"`
	AverageRating   *float64   `json:"average_rating,omitempty"`
	RatingsCount    int64      `json:"ratings_count"`
	CreatedAt       time.Time  `json:"created_at"`
}

// BookKey is the slice of a published book the duplicate check compares against.
type BookKey struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	ISBN13 *int64 `json:"isbn13,omitempty"`
}

// SearchResult is one row of the hybrid_search ranking, similarity in [0,1].
type SearchResult struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Author        *string  `json:"author,omitempty"`
	ImageURL      *string  `json:"image_url,omitempty"`
	AverageRating *float64 `json:"average_rating,omitempty"`
	EmotionJoy    *float64 `json:"emotion_joy,omitempty"`
	Similarity    float64  `json:"similarity"`
}

// MatchPercent renders similarity as a whole percent for display.
func (r SearchResult) MatchPercent() int {
	return int(r.Similarity*100 + 0.5)
}
