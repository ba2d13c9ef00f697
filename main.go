// Package main Legend Library API.
//
// @title           Legend Library API
// @version         1.0
// @description     Library lending service (books, copies, loans, materials).
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
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/Legend373/Legend-Library-Ms/app/echoServer"
	adminctrl "github.com/Legend373/Legend-Library-Ms/app/echoServer/controller/admin"
	authctrl "github.com/Legend373/Legend-Library-Ms/app/echoServer/controller/auth"
	bookctrl "github.com/Legend373/Legend-Library-Ms/app/echoServer/controller/book"
	lendingctrl "github.com/Legend373/Legend-Library-Ms/app/echoServer/controller/lending"
	materialctrl "github.com/Legend373/Legend-Library-Ms/app/echoServer/controller/material"
	"github.com/Legend373/Legend-Library-Ms/app/echoServer/validation"
	"github.com/Legend373/Legend-Library-Ms/config"
	activityrepo "github.com/Legend373/Legend-Library-Ms/repository/activity"
	bookrepo "github.com/Legend373/Legend-Library-Ms/repository/book"
	lendingrepo "github.com/Legend373/Legend-Library-Ms/repository/lending"
	materialrepo "github.com/Legend373/Legend-Library-Ms/repository/material"
	userrepo "github.com/Legend373/Legend-Library-Ms/repository/user"
	authsvc "github.com/Legend373/Legend-Library-Ms/service/auth"
	booksvc "github.com/Legend373/Legend-Library-Ms/service/book"
	lendingsvc "github.com/Legend373/Legend-Library-Ms/service/lending"
	materialsvc "github.com/Legend373/Legend-Library-Ms/service/material"
	"github.com/Legend373/Legend-Library-Ms/util/database"
)

func main() {

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// DB: *sql.DB via pgx stdlib
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	store := lendingrepo.New(db)
	br := bookrepo.New(db)
	ur := userrepo.New(db)
	mr := materialrepo.New(db)
	ar := activityrepo.New(db)

	// services
	ls := lendingsvc.New(store, ar, log)
	bs := booksvc.New(br)
	as := authsvc.New(ur, cfg.JWTSecret)
	ms := materialsvc.New(mr)

	// overdue sweeper
	sweeper := lendingsvc.NewSweeper(store, log)
	go sweeper.Run(ctx, cfg.SweepInterval)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	lendingC := &lendingctrl.Controller{Svc: ls, V: v, Log: log}
	materialC := &materialctrl.Controller{Svc: ms, V: v, Log: log}
	adminC := &adminctrl.Controller{Svc: ls, Activity: ar, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.Wrap(v)

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
		Lending:  lendingC,
		Material: materialC,
		Admin:    adminC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		_ = e.Shutdown(context.Background())
	}()

	log.Info("starting server", "port", port, "sweep_interval", cfg.SweepInterval.String())

	if err := e.Start(":" + port); err != nil {
		log.Info("server stopped", "err", err)
	}
}
