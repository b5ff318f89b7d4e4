// Package router registers the HTTP routes on an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/class-schedule/internal/handler"
	"github.com/iliyamo/class-schedule/internal/middleware"
)

// Deps bundles what the routes need.  Cache and RateLimit may be
// pass-through middleware when Redis is unavailable.
type Deps struct {
	Search    *handler.SearchHandler
	API       *handler.APIHandler
	Health    echo.HandlerFunc
	Cache     echo.MiddlewareFunc
	RateLimit echo.MiddlewareFunc
	JWTSecret string
}

// RegisterRoutes wires every endpoint.  Read-only endpoints are output
// cached; footnote edits need an editor or admin token.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", d.Health)

	e.GET("/search", d.Search.Search, d.RateLimit, d.Cache)

	api := e.Group("/api", d.RateLimit)
	api.GET("/subjects", d.API.Subjects, d.Cache)
	api.GET("/courses", d.API.Courses, d.Cache)
	api.GET("/crosslisted", d.API.Crosslisted, d.Cache)
	api.POST("/seats", d.API.Seats)

	notes := api.Group("/footnotes", middleware.JWTAuth(d.JWTSecret))
	notes.POST("/section", d.API.SectionFootnote, middleware.RequireRole(middleware.RoleEditor, middleware.RoleAdmin))
	notes.POST("/course", d.API.CourseFootnote, middleware.RequireRole(middleware.RoleAdmin))
}
