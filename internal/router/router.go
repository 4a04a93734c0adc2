// Package router binds the HTTP surface of the API together.
package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/classdesk/classdesk-api/internal/config"
	"github.com/classdesk/classdesk-api/internal/handler"
	"github.com/classdesk/classdesk-api/internal/middleware"
	"github.com/classdesk/classdesk-api/internal/observability"
)

// Dependencies carries everything the router needs to attach routes.
type Dependencies struct {
	Config     config.Config
	Auth       *handler.AuthHandler
	Assignment *handler.AssignmentHandler
	Submission *handler.SubmissionHandler
	Dashboard  *handler.DashboardHandler
}

// Register attaches all API routes to the Fiber application.
func Register(app *fiber.App, deps Dependencies) {
	api := app.Group("/api/v1")

	api.Get("/health", handler.HealthCheck(deps.Config))
	api.Get("/metrics", observability.MetricsHandler())

	auth := api.Group("/auth")
	deps.Auth.RegisterPublic(auth)

	protected := api.Group("", middleware.JWTProtected(deps.Config.JWTSecret))

	deps.Auth.RegisterProtected(protected.Group("/auth"))

	assignments := protected.Group("/assignments")
	deps.Assignment.Register(assignments)

	submitLimiter := middleware.RateLimit("submit", deps.Config.SubmitRateLimit, 0)
	deps.Submission.RegisterAssignmentRoutes(assignments, submitLimiter)

	deps.Submission.Register(protected.Group("/submissions"))
	deps.Dashboard.Register(protected.Group("/dashboard"))
}
