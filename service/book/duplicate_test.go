package booksvc_test

import (
	"testing"

	"booklend/model"
	booksvc "booklend/service/book"

	"github.com/stretchr/testify/require"
)

func isbn(n int64) *int64 { return &n }

func TestCheckDuplicate(t *testing.T) {
	existing := []model.BookKey{
		{ID: 1, Title: "Dune", ISBN13: isbn(111)},
		{ID: 2, Title: "Emma", ISBN13: isbn(222)},
	}

	t.Run("isbn match wins", func(t *testing.T) {
		v := booksvc.CheckDuplicate(model.Book{Title: "Different", ISBN13: isbn(111)}, existing)
		require.True(t, v.IsDuplicate)
		require.Equal(t, booksvc.ReasonISBN, v.Reason)
	})

	t.Run("title matches case-insensitively", func(t *testing.T) {
		v := booksvc.CheckDuplicate(model.Book{Title: "dune", ISBN13: isbn(333)}, existing)
		require.True(t, v.IsDuplicate)
		require.Equal(t, booksvc.ReasonTitle, v.Reason)
	})

	t.Run("unique book passes", func(t *testing.T) {
		v := booksvc.CheckDuplicate(model.Book{Title: "Solaris", ISBN13: isbn(333)}, existing)
		require.False(t, v.IsDuplicate)
		require.Empty(t, v.Reason)
	})

	t.Run("isbn checked before title", func(t *testing.T) {
		// Candidate collides on both axes with different rows; the ISBN
		// reason must be reported.
		v := booksvc.CheckDuplicate(model.Book{Title: "Emma", ISBN13: isbn(111)}, existing)
		require.Equal(t, booksvc.ReasonISBN, v.Reason)
	})

	t.Run("nil isbn only compares titles", func(t *testing.T) {
		v := booksvc.CheckDuplicate(model.Book{Title: "Solaris"}, existing)
		require.False(t, v.IsDuplicate)
	})
}
