package recommendation

import (
	"log/slog"
	"net/http"

	recsvc "booklend/service/recommendation"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc recsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

type SearchReq struct {
	Query      string   `json:"query" validate:"required"`
	MinJoy     *float64 `json:"min_joy,omitempty" validate:"omitempty,gte=0,lte=1"`
	MinSadness *float64 `json:"min_sadness,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// POST /v1/search
func (h *Controller) Search(c echo.Context) error {
	var req SearchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	var filter recsvc.EmotionFilter
	if req.MinJoy != nil {
		filter.Joy = *req.MinJoy
	}
	if req.MinSadness != nil {
		filter.Sadness = *req.MinSadness
	}

	results, err := h.Svc.Search(c.Request().Context(), req.Query, filter)
	if err != nil {
		h.Log.Error("search", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": results})
}

// GET /v1/recommendations/home
func (h *Controller) HomeFeed(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	feed, err := h.Svc.HomeFeed(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("home feed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, feed)
}

// GET /v1/recommendations/history
func (h *Controller) History(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	p, err := h.Svc.History(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("history recommendations", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, p)
}

// GET /v1/recommendations/wishlist
func (h *Controller) Wishlist(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	p, err := h.Svc.Wishlist(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("wishlist recommendations", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, p)
}

// GET /v1/recommendations/trending
func (h *Controller) Trending(c echo.Context) error {
	books, err := h.Svc.Trending(c.Request().Context())
	if err != nil {
		h.Log.Error("trending", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": books})
}
