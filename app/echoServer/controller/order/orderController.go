package order

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/korteyrichard/dataking/model"
	ordersvc "github.com/korteyrichard/dataking/service/order"
)

type Controller struct {
	Svc ordersvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/orders
// @Summary      Place an order
// @Description  Buys one data bundle: validates the network id, the role
// @Description  gate and the beneficiary, then debits the wallet and creates
// @Description  a pending order atomically.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        payload  body  PlaceOrderReq  true  "Order payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any "invalid network id / beneficiary / balance"
// @Failure      403  {object}  map[string]any "tier not purchasable by role"
// @Router       /v1/orders [post]
func (h *Controller) Place(c echo.Context) error {
	var req PlaceOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation error"})
	}

	uid, _ := c.Get("user_id").(int64)
	role, _ := c.Get("role").(model.Role)

	placed, err := h.Svc.PlaceOrder(c.Request().Context(), uid, role, ordersvc.PlaceOrderReq{
		NetworkID:         req.NetworkID,
		Size:              req.Size,
		Quantity:          req.Quantity,
		BeneficiaryNumber: req.BeneficiaryNumber,
	})
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Order placed successfully",
		"order":   toOrderResp(placed.Order, placed.User),
	})
}

// POST /v1/orders/batch
// @Summary      Place a multi-beneficiary order
// @Description  One network, many beneficiaries; any bad entry rejects the
// @Description  whole batch with per-line reasons.
// @Tags         orders
// @Router       /v1/orders/batch [post]
func (h *Controller) PlaceBatch(c echo.Context) error {
	var req BatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation error"})
	}

	uid, _ := c.Get("user_id").(int64)
	role, _ := c.Get("role").(model.Role)

	entries := make([]ordersvc.BatchEntry, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, ordersvc.BatchEntry{
			BeneficiaryNumber: e.BeneficiaryNumber,
			Size:              e.Size,
			Quantity:          e.Quantity,
		})
	}

	placed, err := h.Svc.PlaceBatch(c.Request().Context(), uid, role, req.NetworkID, entries)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Order placed successfully",
		"order":   toOrderResp(placed.Order, placed.User),
	})
}

// GET /v1/orders/my
func (h *Controller) MyOrders(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.MyOrders(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("order history", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// fail maps workflow rejections onto the API's error contract: a flat
// {"error": <message>} body, 403 for tier denials, 400 for the rest.
func (h *Controller) fail(c echo.Context, err error) error {
	var be *ordersvc.BatchError
	if errors.As(err, &be) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":    "invalid order entries",
			"failures": be.Failures,
		})
	}

	code := ordersvc.Code(err)
	switch code {
	case ordersvc.ErrAccessDenied:
		return c.JSON(http.StatusForbidden, echo.Map{"error": ordersvc.Message(err)})
	case ordersvc.ErrInvalidNetwork, ordersvc.ErrInsufficientFunds,
		ordersvc.ErrInvalidBeneficiary, ordersvc.ErrVariantUnavailable,
		ordersvc.ErrEmptyBatch:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ordersvc.Message(err)})
	}

	rid := c.Response().Header().Get(echo.HeaderXRequestID)
	h.Log.Error("order failed", "err", err, "req_id", rid, "path", c.Path())
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
