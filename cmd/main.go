package main

import (
	"github.com/Univesp-PIs/pi4-back/internal/handler"
	"github.com/Univesp-PIs/pi4-back/internal/middleware"
	"github.com/Univesp-PIs/pi4-back/internal/model"
	"github.com/Univesp-PIs/pi4-back/pkg/config"
	"github.com/Univesp-PIs/pi4-back/pkg/database"
	"github.com/Univesp-PIs/pi4-back/pkg/jwtutil"
	"github.com/Univesp-PIs/pi4-back/pkg/logger"
	"github.com/Univesp-PIs/pi4-back/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting project tracking service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if _, err := database.InitDB(&cfg.DB); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.MigrateModels(
		&model.Credential{},
		&model.EmailConfiguration{},
		&model.Project{},
		&model.Client{},
		&model.Information{},
		&model.Condition{},
		&model.Ranking{},
		&model.Note{},
	); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Token utility gets the signing key at construction
	jwt := jwtutil.NewJWTUtil(&cfg.JWT)
	authHandler := handler.NewAuthHandler(jwt)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes
	auth := e.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/admin-create", authHandler.AdminCreate)

	// Project lookup by shareable key stays public
	e.GET("/projects/search/:key", handler.SearchProject)

	// Condition creation is open; the rest of the registry is not
	e.POST("/conditions", handler.CreateCondition)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware(jwt))

	// Project aggregate
	projects := api.Group("/projects")
	projects.POST("", handler.CreateProject)
	projects.PUT("", handler.UpdateProject)
	projects.DELETE("/:id", handler.DeleteProject)
	projects.GET("", handler.ListProject)
	projects.GET("/:id", handler.InfoProject)

	// Condition registry
	conditions := api.Group("/conditions")
	conditions.PUT("", handler.UpdateCondition)
	conditions.DELETE("/:id", handler.DeleteCondition)
	conditions.PATCH("/:id/disable", handler.DisableCondition)
	conditions.PATCH("/:id/toggle", handler.ToggleCondition)
	conditions.GET("", handler.ListCondition)

	// Notes
	notes := api.Group("/notes")
	notes.POST("", handler.CreateNote)
	notes.PUT("", handler.EditNote)
	notes.DELETE("", handler.DeleteNote)

	// Mail
	mail := api.Group("/mail")
	mail.POST("/send", handler.SendMail)
	mail.POST("/configurations", handler.CreateEmailConfiguration)
	mail.GET("/configurations", handler.ListEmailConfigurations)
	mail.PUT("/configurations/:id", handler.UpdateEmailConfiguration)
	mail.DELETE("/configurations/:id", handler.DeleteEmailConfiguration)

	// Dashboard
	dash := api.Group("/dashboard")
	dash.GET("", handler.Dashboard)
	dash.GET("/deliveries", handler.DeliveryProjects)
	dash.POST("/cost", handler.ProjectCost)
	dash.GET("/cost-percentage", handler.PercentageProjectCost)
	dash.GET("/average-cost", handler.AverageProjectCost)
	dash.GET("/average-time", handler.AverageTimeProject)
	dash.GET("/delivered-percentage", handler.PercentageProjectsDelivered)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
