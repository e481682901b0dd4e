package cart

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/korteyrichard/dataking/model"
	cartsvc "github.com/korteyrichard/dataking/service/cart"
	ordersvc "github.com/korteyrichard/dataking/service/order"
)

type Controller struct {
	Svc cartsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/cart/items
func (h *Controller) AddItem(c echo.Context) error {
	var req cartsvc.AddItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation error"})
	}

	uid, _ := c.Get("user_id").(int64)
	role, _ := c.Get("role").(model.Role)

	item, err := h.Svc.AddItem(c.Request().Context(), uid, role, req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "added to cart", "item": item})
}

type BulkReq struct {
	NetworkID int    `json:"network_id" validate:"required"`
	Text      string `json:"text" validate:"required"`
}

// POST /v1/cart/bulk
// @Summary      Stage a pasted batch
// @Description  One "<beneficiary> <size> [quantity]" entry per line.
// @Tags         cart
// @Router       /v1/cart/bulk [post]
func (h *Controller) AddBulk(c echo.Context) error {
	var req BulkReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation error"})
	}

	uid, _ := c.Get("user_id").(int64)
	role, _ := c.Get("role").(model.Role)

	n, err := h.Svc.AddBulk(c.Request().Context(), uid, role, req.NetworkID, req.Text)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "added to cart", "count": n})
}

// POST /v1/cart/csv?network_id=5
// The request body is the CSV itself: beneficiary,size[,quantity].
func (h *Controller) AddCSV(c echo.Context) error {
	networkID, err := strconv.Atoi(c.QueryParam("network_id"))
	if err != nil || networkID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid network_id"})
	}

	uid, _ := c.Get("user_id").(int64)
	role, _ := c.Get("role").(model.Role)

	n, err := h.Svc.AddCSV(c.Request().Context(), uid, role, networkID, c.Request().Body)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "added to cart", "count": n})
}

type MergeReq struct {
	Items []cartsvc.AddItemReq `json:"items" validate:"required"`
}

// POST /v1/cart/merge
// Folds the client-held guest cart into the server cart after login.
func (h *Controller) Merge(c echo.Context) error {
	var req MergeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation error"})
	}

	uid, _ := c.Get("user_id").(int64)
	role, _ := c.Get("role").(model.Role)

	n, err := h.Svc.Merge(c.Request().Context(), uid, role, req.Items)
	if err != nil {
		h.Log.Error("cart merge", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "cart merged", "merged": n})
}

// GET /v1/cart
func (h *Controller) Items(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.Items(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("cart list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// DELETE /v1/cart/items/:id
func (h *Controller) Remove(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.Remove(c.Request().Context(), uid, id); err != nil {
		if errors.Is(err, cartsvc.ErrItemNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cart item not found"})
		}
		h.Log.Error("cart remove", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "removed"})
}

// POST /v1/cart/checkout
func (h *Controller) Checkout(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)

	orders, err := h.Svc.Checkout(c.Request().Context(), uid)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Order placed successfully",
		"orders":  orders,
	})
}

func (h *Controller) fail(c echo.Context, err error) error {
	var be *ordersvc.BatchError
	if errors.As(err, &be) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":    "invalid cart entries",
			"failures": be.Failures,
		})
	}

	switch ordersvc.Code(err) {
	case ordersvc.ErrAccessDenied:
		return c.JSON(http.StatusForbidden, echo.Map{"error": ordersvc.Message(err)})
	case ordersvc.ErrInvalidNetwork, ordersvc.ErrInsufficientFunds,
		ordersvc.ErrInvalidBeneficiary, ordersvc.ErrVariantUnavailable,
		ordersvc.ErrEmptyBatch:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ordersvc.Message(err)})
	}

	rid := c.Response().Header().Get(echo.HeaderXRequestID)
	h.Log.Error("cart failed", "err", err, "req_id", rid, "path", c.Path())
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
