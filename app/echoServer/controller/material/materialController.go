package material

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Legend373/Legend-Library-Ms/model"
	ms "github.com/Legend373/Legend-Library-Ms/service/material"
)

type Controller struct {
	Svc ms.Service
	V   *validator.Validate
	Log *slog.Logger
}

type RegisterReq struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Subject     string `json:"subject"`
	FileName    string `json:"file_name" validate:"required"`
	FileSize    int64  `json:"file_size" validate:"gte=0"`
}

// POST /v1/materials
func (h *Controller) Register(c echo.Context) error {
	var req RegisterReq
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

	m := &model.Material{
		Title:       req.Title,
		Description: req.Description,
		Subject:     req.Subject,
		FileName:    req.FileName,
		FileSize:    req.FileSize,
	}
	if err := h.Svc.Register(c.Request().Context(), who, m); err != nil {
		if errors.Is(err, ms.ErrBadInput) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		}
		h.Log.Error("material register", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"material": m})
}

// GET /v1/materials/my
func (h *Controller) Mine(c echo.Context) error {
	who, _ := c.Get("identity").(model.Identity)
	out, err := h.Svc.Mine(c.Request().Context(), who)
	if err != nil {
		h.Log.Error("list my materials", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// GET /v1/materials/favorites
func (h *Controller) Favorites(c echo.Context) error {
	who, _ := c.Get("identity").(model.Identity)
	out, err := h.Svc.Favorites(c.Request().Context(), who)
	if err != nil {
		h.Log.Error("list favorites", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// GET /v1/materials/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	m, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return h.writeErr(c, err, "material detail")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": m})
}

// POST /v1/materials/:id/download
func (h *Controller) CountDownload(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	n, err := h.Svc.CountDownload(c.Request().Context(), id)
	if err != nil {
		return h.writeErr(c, err, "count download")
	}
	return c.JSON(http.StatusOK, echo.Map{"download_count": n})
}

// DELETE /v1/materials/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	who, _ := c.Get("identity").(model.Identity)
	if err := h.Svc.Delete(c.Request().Context(), who, id); err != nil {
		return h.writeErr(c, err, "material delete")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// POST /v1/materials/:id/favorite
func (h *Controller) Favorite(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	who, _ := c.Get("identity").(model.Identity)
	if err := h.Svc.Favorite(c.Request().Context(), who, id); err != nil {
		return h.writeErr(c, err, "favorite")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "favorited"})
}

// DELETE /v1/materials/:id/favorite
func (h *Controller) Unfavorite(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	who, _ := c.Get("identity").(model.Identity)
	if err := h.Svc.Unfavorite(c.Request().Context(), who, id); err != nil {
		return h.writeErr(c, err, "unfavorite")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "unfavorited"})
}

func (h *Controller) writeErr(c echo.Context, err error, op string) error {
	switch {
	case errors.Is(err, ms.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "material not found"})
	case errors.Is(err, ms.ErrNotOwner):
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

func paramID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.ErrBadRequest
	}
	return id, nil
}
