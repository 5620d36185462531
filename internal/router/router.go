// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/game-room-reservation/internal/handler"
	"github.com/iliyamo/game-room-reservation/internal/middleware"
	"github.com/iliyamo/game-room-reservation/internal/model"
)

// Handlers groups everything the router needs to register routes.
type Handlers struct {
	Auth       *handler.AuthHandler
	Sessions   *handler.SessionHandler
	Posts      *handler.PostHandler
	Promotions *handler.PromotionHandler
}

// Register wires all routes on the given Echo instance. Auth routes
// are public; everything under /v1 requires a staff JWT. Promotion
// management is admin-only, the rest is open to operators too.
func Register(e *echo.Echo, h Handlers, jwtSecret string) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))
	v1.Use(middleware.RequireRole(model.RoleOperator, model.RoleAdmin))

	v1.GET("/me", h.Auth.Me)
	v1.POST("/logout-all", h.Auth.LogoutAll)

	v1.POST("/sessions", h.Sessions.Create)
	v1.GET("/sessions/:id", h.Sessions.Get)
	v1.POST("/sessions/:id/pause", h.Sessions.Pause)
	v1.POST("/sessions/:id/resume", h.Sessions.Resume)
	v1.POST("/sessions/:id/extend", h.Sessions.Extend)
	v1.POST("/sessions/:id/terminate", h.Sessions.Terminate)
	v1.POST("/sessions/resume-to-post", h.Sessions.ResumeToPost)

	v1.GET("/posts", h.Posts.List)
	v1.GET("/posts/:id/session", h.Posts.Session)

	v1.GET("/promotions", h.Promotions.List)
	v1.GET("/products/:id", h.Promotions.Product)

	admin := v1.Group("", middleware.RequireRole(model.RoleAdmin))
	admin.POST("/promotions/:id/products/:productID", h.Promotions.Apply)
	admin.DELETE("/promotions/:id/products/:productID", h.Promotions.Remove)
}
