package handler

import (
	"net/http"
	"time"

	"github.com/Univesp-PIs/pi4-back/internal/model"
	"github.com/Univesp-PIs/pi4-back/pkg/database"
	"github.com/Univesp-PIs/pi4-back/pkg/logger"
	"github.com/Univesp-PIs/pi4-back/pkg/mailer"
	"github.com/Univesp-PIs/pi4-back/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SendMail delivers one plain-text email. The transport comes either from
// the stored configuration of the sender address or from explicit SMTP
// credentials in the request.
func SendMail(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Sender     string `json:"sender"`
		Recipient  string `json:"recipient"`
		Subject    string `json:"subject"`
		Body       string `json:"body"`
		SMTPServer string `json:"smtp_server"`
		SMTPPort   int    `json:"smtp_port"`
		Login      string `json:"login"`
		Password   string `json:"password"`
		UseSSL     bool   `json:"use_ssl"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse mail request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Recipient == "" || req.Subject == "" || req.Body == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": requiredFieldErrors(map[string]bool{
			"recipient": req.Recipient == "",
			"subject":   req.Subject == "",
			"body":      req.Body == "",
		})})
	}

	var settings *mailer.Settings
	sender := req.Sender

	if req.SMTPServer != "" {
		// Explicit credentials in the request
		settings = &mailer.Settings{
			Host:     req.SMTPServer,
			Port:     req.SMTPPort,
			Login:    req.Login,
			Password: req.Password,
			UseSSL:   req.UseSSL,
		}
		if sender == "" {
			sender = req.Login
		}
	} else {
		if req.Sender == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"errors": requiredFieldErrors(map[string]bool{
				"sender": true,
			})})
		}

		defer prometheus.TrackDBOperation("query")(time.Now())
		var cfg model.EmailConfiguration
		result := database.GetDB().Where("email = ? AND status = ?", req.Sender, true).First(&cfg)
		if result.Error != nil {
			log.Error("Sender configuration not found", zap.String("sender", req.Sender))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "sender configuration not found"})
		}
		settings = &mailer.Settings{
			Host:     cfg.SMTPServer,
			Port:     cfg.SMTPPort,
			Login:    cfg.Email,
			Password: cfg.Password,
			UseSSL:   cfg.UseSSL,
		}
	}

	if err := mailer.Send(settings, sender, req.Recipient, req.Subject, req.Body); err != nil {
		log.Error("Failed to send email",
			zap.String("sender", sender),
			zap.String("recipient", req.Recipient),
			zap.Error(err))
		prometheus.RecordMailSend("error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to send email"})
	}

	log.Info("Email sent", zap.String("sender", sender), zap.String("recipient", req.Recipient))
	prometheus.RecordMailSend("ok")
	return c.JSON(http.StatusOK, echo.Map{"message": "email sent successfully"})
}
