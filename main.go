// Package main booklend API.
//
// @title           Booklend API
// @version         1.0
// @description     Peer-to-peer book lending marketplace with AI-assisted discovery.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"booklend/app/echoServer"
	authctrl "booklend/app/echoServer/controller/auth"
	bookctrl "booklend/app/echoServer/controller/book"
	recctrl "booklend/app/echoServer/controller/recommendation"
	rentalctrl "booklend/app/echoServer/controller/rental"
	reviewctrl "booklend/app/echoServer/controller/review"
	wishctrl "booklend/app/echoServer/controller/wishlist"
	"booklend/app/echoServer/validation"
	"booklend/config"
	bookrepo "booklend/repository/book"
	"booklend/repository/embedding"
	"booklend/repository/emotion"
	reviewrepo "booklend/repository/review"
	txrepo "booklend/repository/transaction"
	userrepo "booklend/repository/user"
	wishrepo "booklend/repository/wishlist"
	authsvc "booklend/service/auth"
	booksvc "booklend/service/book"
	recsvc "booklend/service/recommendation"
	rentalsvc "booklend/service/rental"
	reviewsvc "booklend/service/review"
	wishsvc "booklend/service/wishlist"
	"booklend/util/database"
	"context"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	tr := txrepo.New(db)
	wr := wishrepo.New(db)
	rr := reviewrepo.New(db)
	embedder := embedding.NewHTTP(cfg.GoogleAPIKey)
	emotions := emotion.NewHTTP(cfg.HFToken)

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	bs := booksvc.New(br, embedder, emotions, log)
	rents := rentalsvc.New(tr, br)
	recs := recsvc.New(br, tr, wr, embedder, log)
	ws := wishsvc.New(wr)
	rvs := reviewsvc.New(rr)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	rentalC := &rentalctrl.Controller{Svc: rents, V: v, Log: log}
	recC := &recctrl.Controller{Svc: recs, V: v, Log: log}
	wishC := &wishctrl.Controller{Svc: ws, V: v, Log: log}
	reviewC := &reviewctrl.Controller{Svc: rvs, V: v, Log: log}

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
		Auth:     authC,
		Book:     bookC,
		Rental:   rentalC,
		Rec:      recC,
		Wishlist: wishC,
		Review:   reviewC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
