package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"payoutrecon/internal/service"
)

// RegisterRoutes attaches the API routes to app.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.ReconciliationService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	runs := app.Group("/reconciliations")
	runs.Post("/daily", RunDaily(svc))
	runs.Post("/range", RunRange(svc))
	runs.Get("/", ListRuns(svc))
	runs.Get("/:id", GetRun(svc))
	runs.Get("/:id/days", ListDays(svc))
	runs.Get("/:id/mismatches", GetMismatches(svc))
	runs.Get("/:id/reports/:kind", DownloadReport(svc))
	runs.Delete("/:id", DeleteRun(svc))

	app.Get("/refunds/analysis", AnalyzeRefunds(svc))
}
