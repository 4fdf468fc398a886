// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"skycast/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	DashboardHandler *handler.DashboardHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	dashboardHandler *handler.DashboardHandler
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		dashboardHandler: params.DashboardHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	api := e.Group("/api/v1")

	dashboardGroup := api.Group("/dashboard")
	{
		dashboardGroup.GET("", r.dashboardHandler.GetState)
		dashboardGroup.POST("/search", r.dashboardHandler.Search)
		dashboardGroup.POST("/default", r.dashboardHandler.LoadDefault)
		dashboardGroup.POST("/focus", r.dashboardHandler.Focus)
		dashboardGroup.GET("/places", r.dashboardHandler.ListPlaces)
		dashboardGroup.POST("/places/:id/load", r.dashboardHandler.LoadPlace)
		dashboardGroup.DELETE("/places/:id", r.dashboardHandler.DeletePlace)
	}
}
