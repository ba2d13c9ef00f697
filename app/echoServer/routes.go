package echoServer

import (
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Legend373/Legend-Library-Ms/app/echoServer/controller/admin"
	"github.com/Legend373/Legend-Library-Ms/app/echoServer/controller/auth"
	"github.com/Legend373/Legend-Library-Ms/app/echoServer/controller/book"
	"github.com/Legend373/Legend-Library-Ms/app/echoServer/controller/lending"
	"github.com/Legend373/Legend-Library-Ms/app/echoServer/controller/material"
)

type C struct {
	Auth     *auth.Controller
	Book     *book.Controller
	Lending  *lending.Controller
	Material *material.Controller
	Admin    *admin.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	// Authenticated
	authed := e.Group("/v1")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),

		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	authed.Use(Identity())

	// Profile
	authed.GET("/users/me", c.Auth.Me)

	// Books
	authed.GET("/books", c.Book.List)
	authed.GET("/books/:id", c.Book.Detail)
	authed.GET("/books/:id/copies", c.Book.Copies)

	// Loans
	authed.POST("/loans", c.Lending.Borrow)
	authed.GET("/loans/my", c.Lending.MyLoans)
	authed.GET("/loans/history", c.Lending.History)
	authed.GET("/loans/:id", c.Lending.Detail)
	authed.POST("/loans/:id/return", c.Lending.Return)
	authed.POST("/loans/:id/extend", c.Lending.Extend)

	// Materials (metadata only; file bytes live elsewhere)
	authed.POST("/materials", c.Material.Register)
	authed.GET("/materials/my", c.Material.Mine)
	authed.GET("/materials/favorites", c.Material.Favorites)
	authed.GET("/materials/:id", c.Material.Detail)
	authed.DELETE("/materials/:id", c.Material.Delete)
	authed.POST("/materials/:id/download", c.Material.CountDownload)
	authed.POST("/materials/:id/favorite", c.Material.Favorite)
	authed.DELETE("/materials/:id/favorite", c.Material.Unfavorite)

	// Admin override gateway
	adm := authed.Group("/admin", RequireAdmin())
	adm.GET("/loans", c.Admin.ListLoans)
	adm.POST("/loans/:id/return", c.Admin.ForceReturn)
	adm.POST("/loans/:id/extend", c.Admin.Extend)
	adm.POST("/copies/:id/status", c.Admin.SetCopyStatus)
	adm.GET("/activity", c.Admin.ActivityLog)

	// Catalog management
	adm.POST("/books", c.Book.Create)
	adm.POST("/books/:id/copies", c.Book.AddCopies)
}
