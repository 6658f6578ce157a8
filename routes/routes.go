package routes

import (
	"log"
	"os"

	controller "github.com/andyfree1/client-finder-backend/controllers"
	"github.com/andyfree1/client-finder-backend/middleware"
	"github.com/andyfree1/client-finder-backend/utils"
	"github.com/andyfree1/client-finder-backend/worker"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

// SetupAuthRoutes wires the public authentication endpoints
func SetupAuthRoutes(app *fiber.App) {
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)

	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Get("/me", controller.GetCurrentUser)
}

// SetupAPIRoutes wires the protected API surface
func SetupAPIRoutes(app *fiber.App, db *gorm.DB, deliveryWorker *worker.DeliveryWorker, collectionWorker *worker.CollectionWorker, notifier *utils.Notifier) {
	prospectController := controller.NewProspectController(db, log.New(os.Stdout, "PROSPECT: ", log.LstdFlags), notifier)
	campaignController := controller.NewCampaignController(db, log.New(os.Stdout, "CAMPAIGN: ", log.LstdFlags), deliveryWorker)
	reportController := controller.NewReportController(db, log.New(os.Stdout, "REPORT: ", log.LstdFlags))
	dataSourceController := controller.NewDataSourceController(db, log.New(os.Stdout, "COLLECT: ", log.LstdFlags), collectionWorker)

	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Prospect routes
	prospects := api.Group("/prospects")
	prospects.Get("/", prospectController.GetProspects)
	prospects.Get("/qualified", prospectController.GetQualifiedLeads)
	prospects.Post("/", prospectController.CreateProspect)
	prospects.Get("/:id", prospectController.GetProspect)
	prospects.Put("/:id", prospectController.UpdateProspect)
	prospects.Delete("/:id", prospectController.DeleteProspect)
	prospects.Post("/:id/notes", prospectController.AddNote)
	prospects.Post("/:id/interactions", prospectController.AddInteraction)
	prospects.Put("/:id/assign", prospectController.AssignProspect)

	// Campaign routes
	campaigns := api.Group("/campaigns")
	campaigns.Get("/", campaignController.GetCampaigns)
	campaigns.Post("/", campaignController.CreateCampaign)
	campaigns.Get("/:id", campaignController.GetCampaign)
	campaigns.Put("/:id", campaignController.UpdateCampaign)
	campaigns.Delete("/:id", campaignController.DeleteCampaign)
	campaigns.Post("/:id/launch", campaignController.LaunchCampaign)
	campaigns.Post("/:id/cancel", campaignController.CancelCampaign)

	// Data source routes, collection runs rate limited
	sources := api.Group("/data-sources")
	sources.Get("/", dataSourceController.GetDataSources)
	sources.Post("/", dataSourceController.CreateDataSource)
	sources.Post("/run-all", middleware.CollectionRateLimiter(), dataSourceController.RunAllDataCollections)
	sources.Get("/:id", dataSourceController.GetDataSource)
	sources.Put("/:id", dataSourceController.UpdateDataSource)
	sources.Delete("/:id", dataSourceController.DeleteDataSource)
	sources.Post("/:id/run", middleware.CollectionRateLimiter(), dataSourceController.RunDataCollection)

	// Report routes
	reports := api.Group("/reports")
	reports.Get("/dashboard", reportController.GetDashboardStats)
	reports.Get("/prospects", reportController.GetProspectStats)
	reports.Get("/campaigns", reportController.GetCampaignStats)
}
