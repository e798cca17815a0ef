package recsvc

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"booklend/model"
	"booklend/repository/embedding"
)

// Ranking knobs. Search is stricter than the personalized strategies since a
// typed query carries more intent than a seed book.
const (
	searchThreshold = 0.3
	seedThreshold   = 0.2
	matchCount      = 10
	trendingWindow  = 100
)

// EmotionFilter carries optional minimum emotion scores for hybrid search.
type EmotionFilter struct {
	Joy     float64 `json:"joy,omitempty"`
	Sadness float64 `json:"sadness,omitempty"`
}

// Personalized is one seeded strategy's output. SourceTitle names the seed
// book for UI attribution; nil when the user has no seed.
type Personalized struct {
	SourceTitle     *string              `json:"source_title"`
	Recommendations []model.SearchResult `json:"recommendations"`
}

// HomeFeed bundles the three read-only strategies fetched concurrently.
type HomeFeed struct {
	Trending []model.Book `json:"trending"`
	History  Personalized `json:"history"`
	Wishlist Personalized `json:"wishlist"`
}

type SearchRepo interface {
	HybridSearch(ctx context.Context, embedding []float32, minJoy, minSadness, threshold float64, count int) ([]model.SearchResult, error)
	ByIDs(ctx context.Context, ids []int64, statuses []model.BookStatus) ([]model.Book, error)
	TopRated(ctx context.Context, limit int) ([]model.Book, error)
}

type TxRepo interface {
	RecentBookIDs(ctx context.Context, limit int) ([]int64, error)
	LatestEngagedBook(ctx context.Context, userID int64) (*model.Book, error)
}

type WishlistRepo interface {
	LatestBook(ctx context.Context, userID int64) (*model.Book, error)
}

type Service interface {
	// Search ranks the catalog against a free-text query. Embedding failure
	// degrades to an empty result, it never fails the request.
	Search(ctx context.Context, query string, filter EmotionFilter) ([]model.SearchResult, error)

	// History recommends from the user's most recent engaged rental.
	History(ctx context.Context, userID int64) (Personalized, error)

	// Wishlist recommends from the user's most recent wishlist entry.
	Wishlist(ctx context.Context, userID int64) (Personalized, error)

	// Trending ranks by rental frequency over the recent transaction
	// window, falling back to ratings_count when the window is empty.
	Trending(ctx context.Context) ([]model.Book, error)

	// HomeFeed runs trending, history and wishlist concurrently. A failed
	// strategy logs and contributes its zero value without failing the rest.
	HomeFeed(ctx context.Context, userID int64) (*HomeFeed, error)
}

type service struct {
	books    SearchRepo
	txs      TxRepo
	wishes   WishlistRepo
	embedder embedding.Provider
	log      *slog.Logger
}

func New(books SearchRepo, txs TxRepo, wishes WishlistRepo, embedder embedding.Provider, log *slog.Logger) Service {
	return &service{books: books, txs: txs, wishes: wishes, embedder: embedder, log: log}
}

func (s *service) Search(ctx context.Context, query string, filter EmotionFilter) ([]model.SearchResult, error) {
	emb, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.log.Warn("query embedding failed, returning no matches", "err", err)
		return nil, nil
	}
	return s.books.HybridSearch(ctx, emb, filter.Joy, filter.Sadness, searchThreshold, matchCount)
}

func (s *service) History(ctx context.Context, userID int64) (Personalized, error) {
	seed, err := s.txs.LatestEngagedBook(ctx, userID)
	if err != nil {
		return Personalized{}, err
	}
	return s.fromSeed(ctx, seed)
}

func (s *service) Wishlist(ctx context.Context, userID int64) (Personalized, error) {
	seed, err := s.wishes.LatestBook(ctx, userID)
	if err != nil {
		return Personalized{}, err
	}
	return s.fromSeed(ctx, seed)
}

// fromSeed embeds the seed book's description (title when empty) and ranks
// the catalog against it. The seed itself never appears in the output.
func (s *service) fromSeed(ctx context.Context, seed *model.Book) (Personalized, error) {
	if seed == nil {
		return Personalized{}, nil
	}

	text := seed.Description
	if text == "" {
		text = seed.Title
	}
	emb, err := s.embedder.Embed(ctx, text)
	if err != nil {
		s.log.Warn("seed embedding failed", "book_id", seed.ID, "err", err)
		return Personalized{SourceTitle: &seed.Title}, nil
	}

	matches, err := s.books.HybridSearch(ctx, emb, 0, 0, seedThreshold, matchCount)
	if err != nil {
		return Personalized{}, err
	}

	recs := matches[:0]
	for _, m := range matches {
		if m.ID != seed.ID {
			recs = append(recs, m)
		}
	}
	return Personalized{SourceTitle: &seed.Title, Recommendations: recs}, nil
}

func (s *service) Trending(ctx context.Context) ([]model.Book, error) {
	recent, err := s.txs.RecentBookIDs(ctx, trendingWindow)
	if err != nil {
		return nil, err
	}

	ranked := rankByFrequency(recent, matchCount)
	if len(ranked) > 0 {
		books, err := s.books.ByIDs(ctx, ranked, []model.BookStatus{model.BookAvailable, model.BookRented})
		if err != nil {
			return nil, err
		}
		if len(books) > 0 {
			// Fetch order is not popularity order; restore it. Books that
			// dropped out of the listed statuses are skipped, not replaced.
			byID := make(map[int64]model.Book, len(books))
			for _, b := range books {
				byID[b.ID] = b
			}
			out := make([]model.Book, 0, len(ranked))
			for _, id := range ranked {
				if b, ok := byID[id]; ok {
					out = append(out, b)
				}
			}
			return out, nil
		}
	}

	return s.books.TopRated(ctx, matchCount)
}

// rankByFrequency counts occurrences per book id and returns the top n ids
// by descending count. The sort is stable over first-occurrence order, so
// ties keep it.
func rankByFrequency(ids []int64, n int) []int64 {
	counts := make(map[int64]int, len(ids))
	var order []int64
	for _, id := range ids {
		if counts[id] == 0 {
			order = append(order, id)
		}
		counts[id]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}

func (s *service) HomeFeed(ctx context.Context, userID int64) (*HomeFeed, error) {
	var feed HomeFeed
	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		books, err := s.Trending(ctx)
		if err != nil {
			s.log.Warn("trending strategy failed", "err", err)
			return
		}
		feed.Trending = books
	}()
	go func() {
		defer wg.Done()
		p, err := s.History(ctx, userID)
		if err != nil {
			s.log.Warn("history strategy failed", "user_id", userID, "err", err)
			return
		}
		feed.History = p
	}()
	go func() {
		defer wg.Done()
		p, err := s.Wishlist(ctx, userID)
		if err != nil {
			s.log.Warn("wishlist strategy failed", "user_id", userID, "err", err)
			return
		}
		feed.Wishlist = p
	}()
	wg.Wait()

	return &feed, nil
}
