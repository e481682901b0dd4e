package admin

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/korteyrichard/dataking/model"
	adminsvc "github.com/korteyrichard/dataking/service/admin"
)

type Controller struct {
	Svc adminsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /v1/admin/stats
func (h *Controller) Stats(c echo.Context) error {
	d, err := h.Svc.Stats(c.Request().Context())
	if err != nil {
		h.Log.Error("admin stats", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": d})
}

type UpdateStatusReq struct {
	Status string `json:"status" validate:"required"`
}

// PATCH /v1/admin/orders/:id/status
func (h *Controller) UpdateOrderStatus(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	var req UpdateStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation error"})
	}
	status, ok := model.ParseOrderStatus(req.Status)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	if err := h.Svc.UpdateOrderStatus(c.Request().Context(), id, status); err != nil {
		if errors.Is(err, adminsvc.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		h.Log.Error("update order status", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "status updated"})
}
