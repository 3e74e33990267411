package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Misakait/hullwatch/controllers"
)

// Register attaches all API endpoints to the app.
func Register(app *fiber.App, reports *controllers.ReportController, tracks *controllers.TrackController) {
	api := app.Group("/api")

	api.Post("/report_raw", reports.HandleCreate)
	api.Get("/report_raw", reports.HandleList)
	api.Get("/report_latest", reports.HandleLatest)
	api.Get("/report_raw/:id", reports.HandleGet)
	api.Delete("/report_raw/:id", reports.HandleDelete)
	api.Delete("/report_raw", reports.HandleDeleteAll)

	api.Post("/track", tracks.HandleCreate)
	api.Get("/track_latest", tracks.HandleLatest)
	api.Get("/track/:id", tracks.HandleGet)
	api.Put("/track/:id", tracks.HandleUpdate)
	api.Delete("/track/:id", tracks.HandleDelete)
	api.Patch("/track/:id/points", tracks.HandleAppend)
}
