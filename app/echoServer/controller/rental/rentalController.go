package rental

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"booklend/model"
	rentalsvc "booklend/service/rental"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc rentalsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/rentals
func (h *Controller) Request(c echo.Context) error {
	var req RequestRentalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, _ := c.Get("user_id").(int64)

	id, err := h.Svc.RequestRental(c.Request().Context(), req.BookID, uid)
	if err != nil {
		return h.fail(c, "rental request", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"transaction_id": id, "status": model.TxPending})
}

// DELETE /v1/rentals/:id
func (h *Controller) Cancel(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.CancelRequest(c.Request().Context(), id, uid); err != nil {
		return h.fail(c, "rental cancel", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "request cancelled"})
}

// POST /v1/rentals/:id/return-request
func (h *Controller) RequestReturn(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.RequestReturn(c.Request().Context(), id, uid); err != nil {
		return h.fail(c, "return request", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": model.TxPendingReturn})
}

// POST /v1/rentals/:id/extension-request
func (h *Controller) RequestExtension(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.RequestExtension(c.Request().Context(), id, uid); err != nil {
		return h.fail(c, "extension request", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "extension requested"})
}

// GET /v1/rentals/my
func (h *Controller) My(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.MyRentals(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("my rentals", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// --- admin ---

// POST /v1/admin/rentals/:id/approve
func (h *Controller) Approve(c echo.Context) error {
	return h.adminAct(c, "rental approve", h.Svc.ApproveRental, "approved")
}

// POST /v1/admin/rentals/:id/reject
func (h *Controller) Reject(c echo.Context) error {
	return h.adminAct(c, "rental reject", h.Svc.RejectRental, "rejected")
}

// POST /v1/admin/rentals/:id/confirm-return
func (h *Controller) ConfirmReturn(c echo.Context) error {
	return h.adminAct(c, "confirm return", h.Svc.ConfirmReturn, "returned")
}

// POST /v1/admin/rentals/:id/force-return
func (h *Controller) ForceReturn(c echo.Context) error {
	return h.adminAct(c, "force return", h.Svc.ForceReturn, "returned")
}

// POST /v1/admin/rentals/:id/extension
func (h *Controller) ResolveExtension(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req ResolveExtensionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}

	if err := h.Svc.ResolveExtension(c.Request().Context(), id, req.Approve); err != nil {
		return h.fail(c, "resolve extension", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"approved": req.Approve})
}

// GET /v1/admin/rentals/pending
func (h *Controller) Pending(c echo.Context) error {
	return h.list(c, "pending rentals", h.Svc.PendingRequests)
}

// GET /v1/admin/rentals/active
func (h *Controller) Active(c echo.Context) error {
	return h.list(c, "active rentals", h.Svc.ActiveRentals)
}

// GET /v1/admin/rentals/history
func (h *Controller) History(c echo.Context) error {
	return h.list(c, "return history", h.Svc.ReturnHistory)
}

func (h *Controller) adminAct(c echo.Context, op string, fn func(context.Context, int64) error, status string) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := fn(c.Request().Context(), id); err != nil {
		return h.fail(c, op, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": status})
}

func (h *Controller) list(c echo.Context, op string, fn func(context.Context) ([]model.RentalRow, error)) error {
	rows, err := fn(c.Request().Context())
	if err != nil {
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	h.Log.Error(op, "err", err)
	switch rentalsvc.Code(err) {
	case rentalsvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "transaction not found"})
	case rentalsvc.ErrAlreadyRequested:
		return c.JSON(http.StatusConflict, echo.Map{"message": "you already have an open request for this book"})
	case rentalsvc.ErrNotAvailable:
		return c.JSON(http.StatusConflict, echo.Map{"message": "book is not available"})
	case rentalsvc.ErrNotCancelable:
		return c.JSON(http.StatusConflict, echo.Map{"message": "request can no longer be cancelled"})
	case rentalsvc.ErrNotPending:
		return c.JSON(http.StatusConflict, echo.Map{"message": "transaction is not pending"})
	case rentalsvc.ErrNotHeld, rentalsvc.ErrAlreadyReturned, rentalsvc.ErrNoExtensionPending:
		return c.JSON(http.StatusConflict, echo.Map{"message": err.Error()})
	case rentalsvc.ErrNotBorrower:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case rentalsvc.ErrPartialUpdate:
		// The transaction row moved, the book row did not. Tell the admin
		// instead of pretending nothing happened.
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"message": "transaction updated but book status update failed; use force return to reconcile",
		})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.ErrBadRequest
	}
	return id, nil
}
