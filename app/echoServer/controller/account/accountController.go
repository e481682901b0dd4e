package account

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/korteyrichard/dataking/model"
	accountsvc "github.com/korteyrichard/dataking/service/account"
)

type Controller struct {
	Svc accountsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /v1/users/me
func (h *Controller) Me(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	u, err := h.Svc.Me(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("me", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

type UpgradeReq struct {
	Role string `json:"role" validate:"required"`
}

// POST /v1/users/upgrade
// @Summary      Purchase a role upgrade
// @Description  Debits the configured fee and promotes the account. Note:
// @Description  the new role takes effect on the next login token.
// @Tags         users
// @Router       /v1/users/upgrade [post]
func (h *Controller) Upgrade(c echo.Context) error {
	var req UpgradeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation error"})
	}

	target, ok := model.ParseRole(req.Role)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}
	uid, _ := c.Get("user_id").(int64)

	u, err := h.Svc.Upgrade(c.Request().Context(), uid, target)
	if err != nil {
		switch {
		case errors.Is(err, accountsvc.ErrBadTarget):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "role cannot be purchased"})
		case errors.Is(err, accountsvc.ErrNotAnUpgrade):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "target role is not above your current role"})
		case errors.Is(err, accountsvc.ErrInsufficientFunds):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Insufficient wallet balance"})
		default:
			h.Log.Error("upgrade", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "account upgraded", "user": u})
}
