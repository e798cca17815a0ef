package book

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"booklend/model"
	booksvc "booklend/service/book"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /v1/books
func (h *Controller) List(c echo.Context) error {
	books, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("book list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": books})
}

// GET /v1/books/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	b, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		if booksvc.Code(err) == booksvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		}
		h.Log.Error("book detail", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": b})
}

// POST /v1/books
func (h *Controller) Submit(c echo.Context) error {
	var req SubmitBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, _ := c.Get("user_id").(int64)

	b := &model.Book{
		Title:         req.Title,
		Author:        req.Author,
		Description:   req.Description,
		BroadCategory: req.BroadCategory,
		ImageURL:      req.ImageURL,
		ISBN13:        req.ISBN13,
		PublishedYear: req.PublishedYear,
		NumPages:      req.NumPages,
		OwnerID:       &uid,
	}
	id, err := h.Svc.Submit(c.Request().Context(), b)
	if err != nil {
		if booksvc.Code(err) == booksvc.ErrBadInput {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid payload"})
		}
		h.Log.Error("book submit", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "status": model.BookPendingApproval})
}

// GET /v1/books/my
func (h *Controller) MyListings(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	books, err := h.Svc.MyListings(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("my listings", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": books})
}

// DELETE /v1/books/:id
func (h *Controller) DeleteListing(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.DeleteListing(c.Request().Context(), id, uid); err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case booksvc.ErrNotOwner:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case booksvc.ErrNotRejected:
			return c.JSON(http.StatusConflict, echo.Map{"message": "only rejected listings can be deleted"})
		default:
			h.Log.Error("delete listing", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// GET /v1/admin/books/pending
func (h *Controller) Pending(c echo.Context) error {
	subs, err := h.Svc.PendingSubmissions(c.Request().Context())
	if err != nil {
		h.Log.Error("pending submissions", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": subs})
}

// POST /v1/admin/books/:id/approve
func (h *Controller) Approve(c echo.Context) error {
	return h.review(c, h.Svc.ApprovePublication, "published")
}

// POST /v1/admin/books/:id/reject
func (h *Controller) Reject(c echo.Context) error {
	return h.review(c, h.Svc.RejectPublication, "rejected")
}

func (h *Controller) review(c echo.Context, fn func(context.Context, int64) error, msg string) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := fn(c.Request().Context(), id); err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case booksvc.ErrNotPending:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book is not pending review"})
		default:
			h.Log.Error("book review", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg})
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.ErrBadRequest
	}
	return id, nil
}
