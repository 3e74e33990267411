package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Misakait/hullwatch/config"
	"github.com/Misakait/hullwatch/controllers"
	"github.com/Misakait/hullwatch/database"
	"github.com/Misakait/hullwatch/routes"
	"github.com/Misakait/hullwatch/services"
	"github.com/Misakait/hullwatch/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := database.Connect(context.Background(), cfg.MongoURI, cfg.MongoDB); err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	reportSvc := services.NewReportService(database.Col(database.ReportsCol))
	trackSvc := services.NewTrackService(database.Col(database.TracksCol))
	aiClient := services.NewAIClient(cfg.AIAPIURL, cfg.AIAPIKey, cfg.AIModel)
	enricher := services.NewEnricher(aiClient, reportSvc, cfg.EnrichWorkers, cfg.AITimeout)
	blobs := storage.NewBlobStore(cfg.UploadDir)

	app := fiber.New(fiber.Config{
		BodyLimit: 32 * 1024 * 1024,
	})
	app.Use(recover.New())

	// Log concise request lines
	app.Use(logger.New(logger.Config{
		TimeFormat: "15:04:05",
	}))

	app.Use(cors.New())

	// Static preview for uploaded photos
	app.Static("/uploads", cfg.UploadDir)

	// Health
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })

	routes.Register(app,
		controllers.NewReportController(reportSvc, enricher, blobs),
		controllers.NewTrackController(trackSvc),
	)

	go func() {
		log.Printf("API listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	_ = app.Shutdown()
	enricher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.Disconnect(ctx); err != nil {
		log.Printf("db disconnect: %v", err)
	}
}
