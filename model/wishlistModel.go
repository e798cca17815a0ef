package model

import "time"

// Wishlist is one saved book. Unique per (user, book).
type Wishlist struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	BookID    int64     `json:"book_id"`
	CreatedAt time.Time `json:"created_at"`
}

// WishlistRow joins the entry with its book for listings.
type WishlistRow struct {
	Wishlist
	BookTitle    string  `json:"book_title"`
	BookImageURL *string `json:"book_image_url,omitempty"`
}
