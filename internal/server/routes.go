package server

import (
	"github.com/gofiber/fiber/v2"

	"seoauditor/internal/core/audits"
	"seoauditor/internal/health"
)

type Dependencies struct {
	Audits   *audits.Service
	Checkers map[string]health.Checker
}

func RegisterRoutes(app *fiber.App, d Dependencies) *health.Handler {
	healthHandler := health.NewHandler(d.Checkers)
	app.Get("/v1/health", health.HealthLimiter(), healthHandler.HandleHealth)

	api := app.Group("/v1")

	auditHandler := audits.NewHandler(d.Audits)
	api.Post("/audits", auditHandler.HandleCreateAudit)
	api.Get("/audits/:auditId", auditHandler.HandleGetAudit)
	api.Get("/audits/:auditId/progress", auditHandler.HandleGetProgress)

	return healthHandler
}
