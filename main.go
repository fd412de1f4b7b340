package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/menuportal/onboarding-api/config"
	"github.com/menuportal/onboarding-api/controllers"
	"github.com/menuportal/onboarding-api/middleware"
	"github.com/menuportal/onboarding-api/models"
	"github.com/menuportal/onboarding-api/services"
)

func main() {
	log.Println("Starting Menu Onboarding Portal API...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := config.ConnectDatabase(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := config.GetDB().AutoMigrate(&models.Submission{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	services.InitEmailService(cfg)

	// Hourly retention sweep
	scheduler := services.StartCleanupScheduler(cfg)
	defer scheduler.Stop()

	router := setupRouter(cfg)

	addr := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", addr)
	log.Printf("Retention: %d hours", cfg.RetentionHours)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter wires the full HTTP surface
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())

	// Health check endpoint
	router.GET("/api/health", healthCheck)

	// Menu workflow
	submission := router.Group("/api/submission")
	{
		submission.POST("/create", controllers.CreateSubmission(cfg))

		authorized := submission.Group("", middleware.SubmissionAuth())
		authorized.POST("/upload-logo", controllers.UploadLogo(cfg))
		authorized.POST("/upload-images", controllers.UploadImages(cfg))
		authorized.GET("/images", controllers.ListImages(cfg))
		authorized.GET("/info", controllers.GetSubmissionInfo(cfg))
		authorized.POST("/save-menu", controllers.SaveMenu(cfg))
		authorized.POST("/save-location", controllers.SaveLocation(cfg))
		authorized.POST("/submit", controllers.SubmitSubmission(cfg))
	}

	// Documents workflow
	docs := router.Group("/api/docs")
	{
		docs.POST("/create", controllers.CreateDocsSubmission(cfg))

		authorized := docs.Group("", middleware.SubmissionAuth())
		authorized.GET("/info", controllers.GetDocsInfo(cfg))
		authorized.POST("/upload", controllers.UploadDocuments(cfg))
		authorized.GET("/preview/:filename", controllers.PreviewDocument(cfg))
		authorized.DELETE("/delete", controllers.DeleteDocument(cfg))
		authorized.POST("/submit", controllers.SubmitDocuments(cfg))
	}

	// Capability-URL downloads
	download := router.Group("/download/:submissionId", middleware.DownloadAuth())
	{
		download.GET("/package.zip", controllers.DownloadPackageZip(cfg))
		download.GET("/menu.xlsx", controllers.DownloadMenuExcel(cfg))
		download.GET("/image/:filename", controllers.ServeProductImage(cfg))
		download.GET("/logo/:filename", controllers.ServeLogo(cfg))
	}

	// Public documents download, token is the only credential
	router.GET("/dl/docs/:token", controllers.DownloadDocsPackage(cfg))

	// Admin surface, registered under both historical prefixes
	for _, prefix := range []string{"/admin", "/api/admin"} {
		admin := router.Group(prefix, middleware.AdminAuth(cfg))
		admin.GET("/submissions", controllers.ListSubmissions(cfg))
		admin.POST("/cleanup", controllers.TriggerCleanup(cfg))
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
