package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Univesp-PIs/pi4-back/internal/model"
	"github.com/Univesp-PIs/pi4-back/pkg/database"
	"github.com/Univesp-PIs/pi4-back/pkg/logger"
	"github.com/Univesp-PIs/pi4-back/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type emailConfigRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	SMTPServer string `json:"smtp_server"`
	SMTPPort   int    `json:"smtp_port"`
	UseSSL     bool   `json:"use_ssl"`
	Status     *bool  `json:"status"`
}

// CreateEmailConfiguration registers the SMTP settings for a sender address
func CreateEmailConfiguration(c echo.Context) error {
	log := logger.FromContext(c)

	var req emailConfigRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse email configuration request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.SMTPServer == "" || req.SMTPPort == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": requiredFieldErrors(map[string]bool{
			"email":       req.Email == "",
			"smtp_server": req.SMTPServer == "",
			"smtp_port":   req.SMTPPort == 0,
		})})
	}

	var existing model.EmailConfiguration
	if result := database.GetDB().Where("email = ?", req.Email).First(&existing); result.Error == nil {
		log.Error("Sender configuration already exists", zap.String("email", req.Email))
		return c.JSON(http.StatusConflict, echo.Map{"error": "sender already configured"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	cfg := model.EmailConfiguration{
		Email:      req.Email,
		Password:   req.Password,
		SMTPServer: req.SMTPServer,
		SMTPPort:   req.SMTPPort,
		UseSSL:     req.UseSSL,
		Status:     true,
	}
	if result := database.GetDB().Create(&cfg); result.Error != nil {
		log.Error("Failed to create email configuration", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "configuration creation failed"})
	}

	log.Info("Email configuration created", zap.Uint("config_id", cfg.ID), zap.String("email", cfg.Email))
	return c.JSON(http.StatusCreated, echo.Map{
		"message":       "email configuration created successfully",
		"configuration": cfg,
	})
}

// ListEmailConfigurations returns every stored sender configuration.
// Passwords never leave the database (the model hides them from JSON).
func ListEmailConfigurations(c echo.Context) error {
	log := logger.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var configs []model.EmailConfiguration
	if result := database.GetDB().Find(&configs); result.Error != nil {
		log.Error("Failed to list email configurations", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve configurations"})
	}

	return c.JSON(http.StatusOK, configs)
}

// UpdateEmailConfiguration overwrites a sender configuration by id
func UpdateEmailConfiguration(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid configuration id"})
	}

	var req emailConfigRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse email configuration request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	var cfg model.EmailConfiguration
	if result := database.GetDB().First(&cfg, uint(id)); result.Error != nil {
		log.Error("Email configuration not found", zap.Uint64("config_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "configuration not found"})
	}

	if req.Email != "" {
		cfg.Email = req.Email
	}
	if req.Password != "" {
		cfg.Password = req.Password
	}
	if req.SMTPServer != "" {
		cfg.SMTPServer = req.SMTPServer
	}
	if req.SMTPPort != 0 {
		cfg.SMTPPort = req.SMTPPort
	}
	cfg.UseSSL = req.UseSSL
	if req.Status != nil {
		cfg.Status = *req.Status
	}

	if result := database.GetDB().Save(&cfg); result.Error != nil {
		log.Error("Failed to update email configuration", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "configuration update failed"})
	}

	log.Info("Email configuration updated", zap.Uint("config_id", cfg.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"message":       "email configuration updated successfully",
		"configuration": cfg,
	})
}

// DeleteEmailConfiguration removes a sender configuration by id
func DeleteEmailConfiguration(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid configuration id"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	var cfg model.EmailConfiguration
	if result := database.GetDB().First(&cfg, uint(id)); result.Error != nil {
		log.Error("Email configuration not found", zap.Uint64("config_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "configuration not found"})
	}

	if result := database.GetDB().Delete(&cfg); result.Error != nil {
		log.Error("Failed to delete email configuration", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "configuration deletion failed"})
	}

	log.Info("Email configuration deleted", zap.Uint("config_id", cfg.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "email configuration deleted successfully"})
}
