package echoServer

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/korteyrichard/dataking/app/echoServer/controller/account"
	"github.com/korteyrichard/dataking/app/echoServer/controller/admin"
	"github.com/korteyrichard/dataking/app/echoServer/controller/auth"
	"github.com/korteyrichard/dataking/app/echoServer/controller/cart"
	"github.com/korteyrichard/dataking/app/echoServer/controller/catalog"
	"github.com/korteyrichard/dataking/app/echoServer/controller/order"
	"github.com/korteyrichard/dataking/app/echoServer/controller/payment"
	"github.com/korteyrichard/dataking/app/echoServer/controller/wallet"
	"github.com/korteyrichard/dataking/app/echoServer/jwtx"
)

type C struct {
	Auth      *auth.Controller
	Catalog   *catalog.Controller
	Order     *order.Controller
	Cart      *cart.Controller
	Wallet    *wallet.Controller
	Payment   *payment.Controller
	Account   *account.Controller
	Admin     *admin.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)
	pub.GET("/networks", c.Catalog.Networks)
	pub.GET("/products", c.Catalog.List)

	// payment webhook
	pub.POST("/payment/paystack", c.Payment.HandlePaystack)

	// Auth
	authG := e.Group("/v1")
	authG.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),

		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	// user_id + role extraction from the verified token
	authG.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			uid, err := jwtx.UserIDFromContext(ctx)
			if err != nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			role, err := jwtx.RoleFromContext(ctx)
			if err != nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			ctx.Set("user_id", uid)
			ctx.Set("role", role)
			return next(ctx)
		}
	})

	// Account
	authG.GET("/users/me", c.Account.Me)
	authG.POST("/users/upgrade", c.Account.Upgrade)

	// Orders
	authG.POST("/orders", c.Order.Place)
	authG.POST("/orders/batch", c.Order.PlaceBatch)
	authG.GET("/orders/my", c.Order.MyOrders)

	// Cart
	authG.GET("/cart", c.Cart.Items)
	authG.POST("/cart/items", c.Cart.AddItem)
	authG.POST("/cart/bulk", c.Cart.AddBulk)
	authG.POST("/cart/csv", c.Cart.AddCSV)
	authG.POST("/cart/merge", c.Cart.Merge)
	authG.POST("/cart/checkout", c.Cart.Checkout)
	authG.DELETE("/cart/items/:id", c.Cart.Remove)

	// Wallet
	authG.POST("/wallet/add", c.Wallet.CreateTopup) // returns payment link
	authG.GET("/wallet/ledger", c.Wallet.Ledger)    // list ledger

	// Admin
	adm := authG.Group("/admin", RequireAdmin())
	adm.GET("/stats", c.Admin.Stats)
	adm.PATCH("/orders/:id/status", c.Admin.UpdateOrderStatus)
	adm.POST("/products", c.Catalog.CreateProduct)
	adm.POST("/products/:id/variants", c.Catalog.AddVariant)
	adm.PATCH("/variants/:id/status", c.Catalog.SetVariantStatus)
}
