// Package router wires HTTP routes to their handlers and attaches
// the authentication and role middleware per route group.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bookstore/internal/handler"
	"github.com/iliyamo/bookstore/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance. Currently it exposes only a health
// check used by load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes.
// Unauthenticated token operations live under /v1/auth, while the
// protected /v1/me endpoint requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Issues a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts either a refresh token in the body or a bearer
	// access token, so it does not sit behind the JWT middleware.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("ADMIN", "CUSTOMER"))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated catalog endpoints:
// book browsing with filters, book detail with reviews and the
// category index. The response cache applies only here — personal
// endpoints (cart, orders, points) must never be served from cache.
func RegisterPublic(e *echo.Echo, cat *handler.CatalogHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/books", cat.ListBooks, cache)
	e.GET("/v1/books/:id", cat.GetBook, cache)
	e.GET("/v1/categories", cat.ListCategories, cache)
}

// RegisterCustomer registers the purchasing endpoints: cart
// management, checkout settlement, order history, the loyalty
// points surface and review submission. All require the CUSTOMER
// role.
func RegisterCustomer(e *echo.Echo, jwtSecret string, cart *handler.CartHandler, checkout *handler.CheckoutHandler, points *handler.PointsHandler, reviews *handler.ReviewHandler) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("CUSTOMER"))

	g.GET("/cart", cart.View)
	g.POST("/cart/items", cart.AddItem)
	g.PATCH("/cart/items/:id", cart.ChangeQuantity)
	g.DELETE("/cart/items/:id", cart.RemoveItem)

	g.POST("/checkout", checkout.Settle)
	g.GET("/orders", checkout.ListOrders)
	g.GET("/orders/:id", checkout.GetOrder)

	g.GET("/points", points.Balance)
	g.GET("/points/history", points.History)

	g.POST("/books/:id/reviews", reviews.Create)
}

// RegisterAdmin registers the catalog management endpoints reserved
// for the ADMIN role.
func RegisterAdmin(e *echo.Echo, jwtSecret string, admin *handler.AdminHandler, adminPoints *handler.AdminPointsHandler) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN"))

	g.POST("/books", admin.CreateBook)
	g.PUT("/books/:id", admin.UpdateBook)
	g.DELETE("/books/:id", admin.DeleteBook)
	g.POST("/categories", admin.CreateCategory)
	g.POST("/customers/:id/points", adminPoints.Adjust)
}
