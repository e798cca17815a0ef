package echoServer

import (
	"booklend/app/echoServer/controller/auth"
	"booklend/app/echoServer/controller/book"
	"booklend/app/echoServer/controller/recommendation"
	"booklend/app/echoServer/controller/rental"
	"booklend/app/echoServer/controller/review"
	"booklend/app/echoServer/controller/wishlist"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth      *auth.Controller
	Book      *book.Controller
	Rental    *rental.Controller
	Rec       *recommendation.Controller
	Wishlist  *wishlist.Controller
	Review    *review.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	pub.GET("/books", c.Book.List)
	pub.GET("/books/:id", c.Book.Detail)
	pub.GET("/books/:id/reviews", c.Review.ListByBook)
	pub.POST("/search", c.Rec.Search)
	pub.GET("/recommendations/trending", c.Rec.Trending)

	// Authenticated
	authed := e.Group("/v1")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	authed.Use(Identify())

	authed.POST("/books", c.Book.Submit)
	authed.GET("/books/my", c.Book.MyListings)
	authed.DELETE("/books/:id", c.Book.DeleteListing)

	authed.POST("/rentals", c.Rental.Request)
	authed.DELETE("/rentals/:id", c.Rental.Cancel)
	authed.POST("/rentals/:id/return-request", c.Rental.RequestReturn)
	authed.POST("/rentals/:id/extension-request", c.Rental.RequestExtension)
	authed.GET("/rentals/my", c.Rental.My)

	authed.POST("/wishlist", c.Wishlist.Add)
	authed.DELETE("/wishlist/:bookId", c.Wishlist.Remove)
	authed.GET("/wishlist", c.Wishlist.List)
	authed.GET("/wishlist/:bookId", c.Wishlist.Contains)

	authed.POST("/books/:id/reviews", c.Review.Post)

	authed.GET("/recommendations/home", c.Rec.HomeFeed)
	authed.GET("/recommendations/history", c.Rec.History)
	authed.GET("/recommendations/wishlist", c.Rec.Wishlist)

	// Admin
	admin := authed.Group("/admin", AdminOnly())
	admin.GET("/books/pending", c.Book.Pending)
	admin.POST("/books/:id/approve", c.Book.Approve)
	admin.POST("/books/:id/reject", c.Book.Reject)

	admin.GET("/rentals/pending", c.Rental.Pending)
	admin.GET("/rentals/active", c.Rental.Active)
	admin.GET("/rentals/history", c.Rental.History)
	admin.POST("/rentals/:id/approve", c.Rental.Approve)
	admin.POST("/rentals/:id/reject", c.Rental.Reject)
	admin.POST("/rentals/:id/confirm-return", c.Rental.ConfirmReturn)
	admin.POST("/rentals/:id/force-return", c.Rental.ForceReturn)
	admin.POST("/rentals/:id/extension", c.Rental.ResolveExtension)
}
