package payment

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	paymentsvc "github.com/korteyrichard/dataking/service/payment"
)

type Controller struct {
	Svc paymentsvc.Service
	Log *slog.Logger
}

// POST /v1/payment/paystack
// Webhook endpoint. Must return 200 on success so Paystack stops retrying;
// a bad signature gets 401 and everything else 400.
func (h *Controller) HandlePaystack(c echo.Context) error {
	sig := c.Request().Header.Get("X-Paystack-Signature")
	raw, _ := io.ReadAll(c.Request().Body)

	if err := h.Svc.HandlePaystack(c.Request().Context(), sig, raw); err != nil {
		if errors.Is(err, paymentsvc.ErrBadSignature) {
			h.Log.Warn("webhook signature rejected", "ip", c.RealIP())
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid signature"})
		}
		h.Log.Error("payment callback error", "err", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment rejected"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "ok"})
}
