package admin

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Legend373/Legend-Library-Ms/model"
	activityrepo "github.com/Legend373/Legend-Library-Ms/repository/activity"
	lendingrepo "github.com/Legend373/Legend-Library-Ms/repository/lending"
	ls "github.com/Legend373/Legend-Library-Ms/service/lending"
)

// Controller is the admin override gateway: privileged loan management routed
// through the same lending service as ordinary user actions.
type Controller struct {
	Svc      ls.Service
	Activity activityrepo.Repo
	V        *validator.Validate
	Log      *slog.Logger
}

type SetStatusReq struct {
	Status string `json:"status" validate:"required"`
}

type ExtendReq struct {
	Days int `json:"days" validate:"required,gt=0"`
}

// GET /v1/admin/loans?status=&user_id=&limit=
func (h *Controller) ListLoans(c echo.Context) error {
	f := lendingrepo.LoanFilter{}
	if st := c.QueryParam("status"); st != "" {
		f.Status = model.LoanStatus(st)
	}
	if v := c.QueryParam("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user_id"})
		}
		f.UserID = id
	}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid limit"})
		}
		f.Limit = n
	}

	loans, err := h.Svc.AdminListLoans(c.Request().Context(), f)
	if err != nil {
		h.Log.Error("admin list loans", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": loans})
}

// POST /v1/admin/loans/:id/return
func (h *Controller) ForceReturn(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	who, _ := c.Get("identity").(model.Identity)

	loan, err := h.Svc.Return(c.Request().Context(), who, id)
	if err != nil {
		return h.writeErr(c, err, "force return")
	}
	return c.JSON(http.StatusOK, echo.Map{"loan": loan})
}

// POST /v1/admin/loans/:id/extend
func (h *Controller) Extend(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req ExtendReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	who, _ := c.Get("identity").(model.Identity)

	loan, err := h.Svc.ExtendDueDate(c.Request().Context(), who, id, req.Days)
	if err != nil {
		return h.writeErr(c, err, "admin extend")
	}
	return c.JSON(http.StatusOK, echo.Map{"loan": loan})
}

// POST /v1/admin/copies/:id/status
func (h *Controller) SetCopyStatus(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req SetStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	if !model.ValidCopyStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "unknown status"})
	}
	who, _ := c.Get("identity").(model.Identity)

	if err := h.Svc.AdminSetCopyStatus(c.Request().Context(), who, id, model.CopyStatus(req.Status)); err != nil {
		return h.writeErr(c, err, "set copy status")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "status updated"})
}

// GET /v1/admin/activity
func (h *Controller) ActivityLog(c echo.Context) error {
	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	events, err := h.Activity.ListRecent(c.Request().Context(), limit)
	if err != nil {
		h.Log.Error("list activity", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": events})
}

func (h *Controller) writeErr(c echo.Context, err error, op string) error {
	switch ls.Code(err) {
	case ls.ErrCopyNotFound, ls.ErrLoanNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
	case ls.ErrAlreadyReturned:
		return c.JSON(http.StatusConflict, echo.Map{"message": "loan already returned"})
	case ls.ErrInvalidExtension:
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "invalid extension length"})
	case ls.ErrInvalidTransition:
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "invalid status transition"})
	case ls.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case ls.ErrInconsistent:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal inconsistency"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
