// Package main Dataking API.
//
// @title           Dataking API
// @version         1.0
// @description     Data bundle storefront (wallet, orders, cart, catalog).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/korteyrichard/dataking/app/echoServer"
	accountctrl "github.com/korteyrichard/dataking/app/echoServer/controller/account"
	adminctrl "github.com/korteyrichard/dataking/app/echoServer/controller/admin"
	authctrl "github.com/korteyrichard/dataking/app/echoServer/controller/auth"
	cartctrl "github.com/korteyrichard/dataking/app/echoServer/controller/cart"
	catalogctrl "github.com/korteyrichard/dataking/app/echoServer/controller/catalog"
	orderctrl "github.com/korteyrichard/dataking/app/echoServer/controller/order"
	paymentctrl "github.com/korteyrichard/dataking/app/echoServer/controller/payment"
	walletctrl "github.com/korteyrichard/dataking/app/echoServer/controller/wallet"
	"github.com/korteyrichard/dataking/app/echoServer/validation"
	"github.com/korteyrichard/dataking/config"
	cartrepo "github.com/korteyrichard/dataking/repository/cart"
	catalogrepo "github.com/korteyrichard/dataking/repository/catalog"
	orderrepo "github.com/korteyrichard/dataking/repository/order"
	paystackrepo "github.com/korteyrichard/dataking/repository/paystack"
	userrepo "github.com/korteyrichard/dataking/repository/user"
	walletrepo "github.com/korteyrichard/dataking/repository/wallet"
	accesssvc "github.com/korteyrichard/dataking/service/access"
	accountsvc "github.com/korteyrichard/dataking/service/account"
	adminsvc "github.com/korteyrichard/dataking/service/admin"
	authsvc "github.com/korteyrichard/dataking/service/auth"
	cartsvc "github.com/korteyrichard/dataking/service/cart"
	catalogsvc "github.com/korteyrichard/dataking/service/catalog"
	ordersvc "github.com/korteyrichard/dataking/service/order"
	paymentsvc "github.com/korteyrichard/dataking/service/payment"
	walletsvc "github.com/korteyrichard/dataking/service/wallet"
	"github.com/korteyrichard/dataking/util/database"
)

func main() {

	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load("config.yaml", "config/config.yaml")
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	cr := catalogrepo.New(db)
	or := orderrepo.New(db)
	wr := walletrepo.New(db)
	car := cartrepo.New(db)
	pr := paystackrepo.NewHTTP(cfg.Paystack.SecretKey, cfg.Paystack.CallbackURL)

	// services
	guard := accesssvc.New()
	cats, err := catalogsvc.New(cr, cfg.Catalog.Networks)
	if err != nil {
		log.Error("catalog config invalid", "err", err)
		os.Exit(1)
	}
	as := authsvc.New(ur, cfg.JWTSecret)
	ors := ordersvc.New(db, cats, guard, wr, or, ur)
	cs := cartsvc.New(car, ors, log)
	ws := walletsvc.New(db, wr, ur, pr)
	ps := paymentsvc.New(db, pr, wr)
	acs := accountsvc.New(db, ur, wr, cfg.Upgrade)
	ads := adminsvc.New(or, ur)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	catalogC := &catalogctrl.Controller{Svc: cats, Guard: guard, V: v, Log: log, JWTSecret: cfg.JWTSecret}
	orderC := &orderctrl.Controller{Svc: ors, V: v, Log: log}
	cartC := &cartctrl.Controller{Svc: cs, V: v, Log: log}
	walletC := &walletctrl.Controller{Svc: ws, V: v, Log: log}
	paymentC := &paymentctrl.Controller{Svc: ps, Log: log}
	accountC := &accountctrl.Controller{Svc: acs, V: v, Log: log}
	adminC := &adminctrl.Controller{Svc: ads, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:    authC,
		Catalog: catalogC,
		Order:   orderC,
		Cart:    cartC,
		Wallet:  walletC,
		Payment: paymentC,
		Account: accountC,
		Admin:   adminC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
