package wallet

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	walletsvc "github.com/korteyrichard/dataking/service/wallet"
)

type Controller struct {
	Svc walletsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

type CreateTopupReq struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

// POST /v1/wallet/add
// @Summary Create a Paystack top-up
// @Description Returns the hosted payment page; the wallet is credited by
// @Description the webhook once the charge succeeds.
// @Success 201 {object} map[string]any
// @Router  /v1/wallet/add [post]
func (h *Controller) CreateTopup(c echo.Context) error {
	var req CreateTopupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON"})
	}
	if req.Amount.Sign() <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be greater than zero"})
	}

	userID, _ := c.Get("user_id").(int64)
	res, err := h.Svc.CreateTopup(c.Request().Context(), userID, req.Amount)
	if err != nil {
		h.Log.Error("CreateTopup failed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success":     true,
		"payment_url": res.PaymentURL,
		"reference":   res.Reference,
		"amount":      res.Amount,
	})
}

// GET /v1/wallet/ledger
func (h *Controller) Ledger(c echo.Context) error {
	userID, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.Ledger(c.Request().Context(), userID)
	if err != nil {
		h.Log.Error("Ledger failed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
