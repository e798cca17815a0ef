package booksvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"booklend/model"
	"booklend/repository/embedding"
	"booklend/repository/emotion"
)

type ErrCode string

const (
	ErrBadInput    ErrCode = "BAD_INPUT"
	ErrNotFound    ErrCode = "NOT_FOUND"
	ErrNotOwner    ErrCode = "NOT_OWNER"
	ErrNotPending  ErrCode = "NOT_PENDING"
	ErrNotRejected ErrCode = "NOT_REJECTED"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Repo interface {
	Insert(ctx context.Context, b *model.Book) (int64, error)
	ByID(ctx context.Context, id int64) (*model.Book, error)
	List(ctx context.Context, statuses []model.BookStatus) ([]model.Book, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Book, error)
	TitleISBNIndex(ctx context.Context) ([]model.BookKey, error)
	SetStatus(ctx context.Context, id int64, status model.BookStatus) error
	Delete(ctx context.Context, id int64) error
}

// PendingSubmission pairs a pending book with its duplicate verdict for the
// admin review queue.
type PendingSubmission struct {
	Book    model.Book       `json:"book"`
	Verdict DuplicateVerdict `json:"verdict"`
}

type Service interface {
	// Submit enriches the listing with emotion scores and an embedding,
	// then stores it as pending_approval. Either enrichment failing
	// degrades (zero scores, nil vector) instead of blocking submission.
	Submit(ctx context.Context, b *model.Book) (int64, error)

	Detail(ctx context.Context, id int64) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	MyListings(ctx context.Context, ownerID int64) ([]model.Book, error)

	// DeleteListing removes the caller's own rejected listing.
	DeleteListing(ctx context.Context, bookID, ownerID int64) error

	// Admin review queue.
	PendingSubmissions(ctx context.Context) ([]PendingSubmission, error)
	ApprovePublication(ctx context.Context, bookID int64) error
	RejectPublication(ctx context.Context, bookID int64) error
}

type service struct {
	r        Repo
	embedder embedding.Provider
	emotions emotion.Provider
	log      *slog.Logger
}

func New(r Repo, embedder embedding.Provider, emotions emotion.Provider, log *slog.Logger) Service {
	return &service{r: r, embedder: embedder, emotions: emotions, log: log}
}

func (s *service) Submit(ctx context.Context, b *model.Book) (int64, error) {
	if b.Title == "" || b.Author == "" || b.Description == "" {
		return 0, makeErr(ErrBadInput)
	}

	scores, err := s.emotions.Classify(ctx, b.Description)
	if err != nil {
		s.log.Warn("emotion classification failed, using zero defaults", "err", err)
		scores = model.EmotionScores{}
	}
	b.EmotionJoy = scores.Joy
	b.EmotionSadness = scores.Sadness
	b.EmotionFear = scores.Fear
	b.EmotionSurprise = scores.Surprise

	seed := fmt.Sprintf("Title: %s. Author: %s. Category: %s. Description: %s",
		b.Title, b.Author, b.BroadCategory, b.Description)
	emb, err := s.embedder.Embed(ctx, seed)
	if err != nil {
		s.log.Warn("embedding failed, submitting without vector", "err", err)
		emb = nil
	}
	b.Embedding = emb

	b.Status = model.BookPendingApproval
	return s.r.Insert(ctx, b)
}

func (s *service) Detail(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}

func (s *service) List(ctx context.Context) ([]model.Book, error) {
	return s.r.List(ctx, []model.BookStatus{model.BookAvailable, model.BookRented})
}

func (s *service) MyListings(ctx context.Context, ownerID int64) ([]model.Book, error) {
	return s.r.ListByOwner(ctx, ownerID)
}

func (s *service) DeleteListing(ctx context.Context, bookID, ownerID int64) error {
	b, err := s.Detail(ctx, bookID)
	if err != nil {
		return err
	}
	if b.OwnerID == nil || *b.OwnerID != ownerID {
		return makeErr(ErrNotOwner)
	}
	if b.Status != model.BookRejected {
		return makeErr(ErrNotRejected)
	}
	return s.r.Delete(ctx, bookID)
}

func (s *service) PendingSubmissions(ctx context.Context) ([]PendingSubmission, error) {
	pending, err := s.r.List(ctx, []model.BookStatus{model.BookPendingApproval})
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, nil
	}
	index, err := s.r.TitleISBNIndex(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]PendingSubmission, 0, len(pending))
	for _, b := range pending {
		out = append(out, PendingSubmission{Book: b, Verdict: CheckDuplicate(b, index)})
	}
	return out, nil
}

func (s *service) ApprovePublication(ctx context.Context, bookID int64) error {
	return s.review(ctx, bookID, model.BookAvailable)
}

func (s *service) RejectPublication(ctx context.Context, bookID int64) error {
	return s.review(ctx, bookID, model.BookRejected)
}

func (s *service) review(ctx context.Context, bookID int64, to model.BookStatus) error {
	b, err := s.Detail(ctx, bookID)
	if err != nil {
		return err
	}
	if b.Status != model.BookPendingApproval {
		return makeErr(ErrNotPending)
	}
	return s.r.SetStatus(ctx, bookID, to)
}
