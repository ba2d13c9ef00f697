package lending

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Legend373/Legend-Library-Ms/model"
	ls "github.com/Legend373/Legend-Library-Ms/service/lending"
)

type Controller struct {
	Svc ls.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/loans
func (h *Controller) Borrow(c echo.Context) error {
	var req BorrowReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	who, _ := c.Get("identity").(model.Identity)

	loan, err := h.Svc.Borrow(c.Request().Context(), who, req.CopyID)
	if err != nil {
		return h.writeErr(c, err, "borrow")
	}
	return c.JSON(http.StatusCreated, echo.Map{"loan": loan})
}

// POST /v1/loans/:id/return
func (h *Controller) Return(c echo.Context) error {
	id, err := loanID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	who, _ := c.Get("identity").(model.Identity)

	loan, err := h.Svc.Return(c.Request().Context(), who, id)
	if err != nil {
		return h.writeErr(c, err, "return")
	}
	return c.JSON(http.StatusOK, echo.Map{"loan": loan})
}

// POST /v1/loans/:id/extend
func (h *Controller) Extend(c echo.Context) error {
	id, err := loanID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req ExtendReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	who, _ := c.Get("identity").(model.Identity)

	loan, err := h.Svc.ExtendDueDate(c.Request().Context(), who, id, req.Days)
	if err != nil {
		return h.writeErr(c, err, "extend")
	}
	return c.JSON(http.StatusOK, echo.Map{"loan": loan})
}

// GET /v1/loans/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := loanID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	who, _ := c.Get("identity").(model.Identity)

	loan, err := h.Svc.GetLoan(c.Request().Context(), who, id)
	if err != nil {
		return h.writeErr(c, err, "loan detail")
	}
	return c.JSON(http.StatusOK, echo.Map{"loan": loan})
}

// GET /v1/loans/my
func (h *Controller) MyLoans(c echo.Context) error {
	who, _ := c.Get("identity").(model.Identity)
	loans, err := h.Svc.ListActiveLoans(c.Request().Context(), who.UserID)
	if err != nil {
		h.Log.Error("list active loans", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": loans})
}

// GET /v1/loans/history
func (h *Controller) History(c echo.Context) error {
	who, _ := c.Get("identity").(model.Identity)
	loans, err := h.Svc.History(c.Request().Context(), who.UserID)
	if err != nil {
		h.Log.Error("loan history", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": loans})
}

func (h *Controller) writeErr(c echo.Context, err error, op string) error {
	switch ls.Code(err) {
	case ls.ErrCopyNotFound, ls.ErrLoanNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
	case ls.ErrCopyNotAvailable:
		return c.JSON(http.StatusConflict, echo.Map{"message": "copy not available"})
	case ls.ErrBorrowLimitReached:
		return c.JSON(http.StatusConflict, echo.Map{"message": "borrow limit reached"})
	case ls.ErrAlreadyReturned:
		return c.JSON(http.StatusConflict, echo.Map{"message": "loan already returned"})
	case ls.ErrConflict:
		return c.JSON(http.StatusConflict, echo.Map{"message": "conflict, try again"})
	case ls.ErrInvalidExtension:
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "invalid extension length"})
	case ls.ErrNotOwner, ls.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

func loanID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.ErrBadRequest
	}
	return id, nil
}
