package wishlist

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	wishsvc "booklend/service/wishlist"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc wishsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

type AddReq struct {
	BookID int64 `json:"book_id" validate:"required,gt=0"`
}

// POST /v1/wishlist
func (h *Controller) Add(c echo.Context) error {
	var req AddReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, _ := c.Get("user_id").(int64)

	id, err := h.Svc.Add(c.Request().Context(), uid, req.BookID)
	if err != nil {
		if errors.Is(err, wishsvc.ErrAlreadySaved) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "already in wishlist"})
		}
		h.Log.Error("wishlist add", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// DELETE /v1/wishlist/:bookId
func (h *Controller) Remove(c echo.Context) error {
	bookID, err := strconv.ParseInt(c.Param("bookId"), 10, 64)
	if err != nil || bookID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.Remove(c.Request().Context(), uid, bookID); err != nil {
		if errors.Is(err, wishsvc.ErrNotSaved) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "not in wishlist"})
		}
		h.Log.Error("wishlist remove", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "removed"})
}

// GET /v1/wishlist/:bookId
func (h *Controller) Contains(c echo.Context) error {
	bookID, err := strconv.ParseInt(c.Param("bookId"), 10, 64)
	if err != nil || bookID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	saved, err := h.Svc.Contains(c.Request().Context(), uid, bookID)
	if err != nil {
		h.Log.Error("wishlist contains", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"saved": saved})
}

// GET /v1/wishlist
func (h *Controller) List(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.List(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("wishlist list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
