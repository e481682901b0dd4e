package catalog

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/korteyrichard/dataking/model"
	accesssvc "github.com/korteyrichard/dataking/service/access"
	catalogsvc "github.com/korteyrichard/dataking/service/catalog"
	jwtutil "github.com/korteyrichard/dataking/util/jwt"
)

type Controller struct {
	Svc       *catalogsvc.Service
	Guard     *accesssvc.Service
	V         *validator.Validate
	Log       *slog.Logger
	JWTSecret string
}

// GET /v1/networks
// @Summary  List the network id map
// @Tags     catalog
// @Success  200 {object} map[string]any
// @Router   /v1/networks [get]
func (h *Controller) Networks(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"data": h.Svc.Networks()})
}

// GET /v1/products?network=MTN
// @Summary      Browse the catalog
// @Description  Public. A valid bearer token widens visibility to the tiers
// @Description  the caller's role may purchase; anonymous callers see the
// @Description  customer tier.
// @Tags         catalog
// @Router       /v1/products [get]
func (h *Controller) List(c echo.Context) error {
	network, ok := model.ParseNetwork(c.QueryParam("network"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown network"})
	}

	tiers := h.Guard.VisibleTiers(h.optionalRole(c))
	if len(tiers) == 0 {
		tiers = []model.ProductType{model.CustomerProduct}
	}

	products, err := h.Svc.ListProducts(c.Request().Context(), network, tiers)
	if err != nil {
		h.Log.Error("catalog list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": products})
}

// optionalRole resolves the caller's role on a public route. Missing or bad
// tokens degrade to guest instead of failing the request.
func (h *Controller) optionalRole(c echo.Context) model.Role {
	auth := c.Request().Header.Get("Authorization")
	if auth == "" {
		return model.RoleGuest
	}
	claims, err := jwtutil.ParseAuth(auth, h.JWTSecret)
	if err != nil {
		return model.RoleGuest
	}
	s, _ := claims["role"].(string)
	role, ok := model.ParseRole(s)
	if !ok {
		return model.RoleGuest
	}
	return role
}

type CreateProductReq struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Expiry      string `json:"expiry"`
	Network     string `json:"network" validate:"required"`
	ProductType string `json:"product_type" validate:"required"`
}

// POST /v1/admin/products
func (h *Controller) CreateProduct(c echo.Context) error {
	var req CreateProductReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation error"})
	}

	p := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Expiry:      req.Expiry,
		Network:     model.Network(req.Network),
		ProductType: model.ProductType(req.ProductType),
	}
	if err := h.Svc.CreateProduct(c.Request().Context(), p); err != nil {
		h.Log.Warn("create product", "err", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "product created", "product": p})
}

type AddVariantReq struct {
	Size  string          `json:"size" validate:"required"`
	Price decimal.Decimal `json:"price" validate:"required"`
}

// POST /v1/admin/products/:id/variants
func (h *Controller) AddVariant(c echo.Context) error {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || productID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	var req AddVariantReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation error"})
	}

	v := &model.ProductVariant{ProductID: productID, Size: req.Size, Price: req.Price}
	if err := h.Svc.AddVariant(c.Request().Context(), v); err != nil {
		h.Log.Warn("add variant", "err", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "variant created", "variant": v})
}

type SetStatusReq struct {
	Status string `json:"status" validate:"required"`
}

// PATCH /v1/admin/variants/:id/status
func (h *Controller) SetVariantStatus(c echo.Context) error {
	variantID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || variantID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid variant id"})
	}

	var req SetStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation error"})
	}

	err = h.Svc.SetVariantStatus(c.Request().Context(), variantID, model.VariantStatus(req.Status))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "variant not found"})
		}
		h.Log.Warn("set variant status", "err", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "status updated"})
}
