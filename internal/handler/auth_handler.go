package handler

import (
	"net/http"
	"time"

	"github.com/Univesp-PIs/pi4-back/internal/model"
	"github.com/Univesp-PIs/pi4-back/pkg/database"
	"github.com/Univesp-PIs/pi4-back/pkg/jwtutil"
	"github.com/Univesp-PIs/pi4-back/pkg/logger"
	"github.com/Univesp-PIs/pi4-back/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler serves login, signup and the two-step admin account flow. The
// token utility is injected at construction so the signing key never lives
// in package state.
type AuthHandler struct {
	jwt *jwtutil.JWTUtil
}

// NewAuthHandler creates an AuthHandler with the given token utility
func NewAuthHandler(jwt *jwtutil.JWTUtil) *AuthHandler {
	return &AuthHandler{jwt: jwt}
}

// Login authenticates by email and password and returns the account's fixed
// bearer token. The expiry timestamp in the payload is advisory only.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_login")
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": requiredFieldErrors(map[string]bool{
			"email":    req.Email == "",
			"password": req.Password == "",
		})})
	}

	// Find user in database - track DB operation duration
	defer prometheus.TrackDBOperation("query")(time.Now())
	var credential model.Credential
	result := database.GetDB().Where("email = ?", req.Email).First(&credential)
	if result.Error != nil {
		log.Error("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(credential.Password), []byte(req.Password)); err != nil {
		log.Error("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// The stored token is the account's fixed bearer credential. Backfill
	// it for accounts created before tokens were issued at signup.
	if credential.Token == "" {
		token, err := h.jwt.GenerateToken(credential.Email, credential.ID)
		if err != nil {
			log.Error("Failed to generate token", zap.Error(err))
			prometheus.RecordAuthError("token_generation_failed")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
		}
		credential.Token = token
		if err := database.GetDB().Model(&credential).Update("token", token).Error; err != nil {
			log.Error("Failed to persist token", zap.Error(err))
			prometheus.RecordAuthError("token_persist_failed")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
		}
	}

	log.Info("User logged in", zap.String("email", credential.Email), zap.Uint("user_id", credential.ID))

	return c.JSON(http.StatusOK, echo.Map{
		"message": "login successful",
		"payload": echo.Map{
			"token":            credential.Token,
			"expiry_timestamp": h.jwt.ExpiryTimestamp(),
			"user_id":          credential.ID,
			"user_email":       credential.Email,
			"user_name":        credential.Name,
		},
	})
}

// Signup registers a new active account and issues its token immediately
func (h *AuthHandler) Signup(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.SignupCounter.Inc()

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse signup request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_signup")
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": requiredFieldErrors(map[string]bool{
			"name":     req.Name == "",
			"email":    req.Email == "",
			"password": req.Password == "",
		})})
	}

	// Check if user already exists - track DB query
	defer prometheus.TrackDBOperation("query")(time.Now())
	var existing model.Credential
	if result := database.GetDB().Where("email = ?", req.Email).First(&existing); result.Error == nil {
		log.Error("User already exists", zap.String("email", req.Email))
		prometheus.RecordAuthError("email_already_exists")
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	credential := model.Credential{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Status:   true,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&credential); result.Error != nil {
		log.Error("Failed to create user", zap.Error(result.Error))
		prometheus.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	// Issue the fixed token right away, now that the row has its id
	token, err := h.jwt.GenerateToken(credential.Email, credential.ID)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}
	if err := database.GetDB().Model(&credential).Update("token", token).Error; err != nil {
		log.Error("Failed to persist token", zap.Error(err))
		prometheus.RecordAuthError("token_persist_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	log.Info("User registered", zap.String("email", credential.Email))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "user registered successfully",
		"user": echo.Map{
			"id":    credential.ID,
			"email": credential.Email,
		},
	})
}

// AdminCreate runs the two-step account creation flow. Without an auth code
// it creates an inactive account holding a freshly generated one-time code;
// with one it confirms the pending account, clears the code and activates.
func (h *AuthHandler) AdminCreate(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		AuthCode string `json:"auth_code"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse admin create request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.AuthCode != "" {
		return h.confirmAdminAccount(c, req.Email, req.AuthCode)
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_admin_create")
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": requiredFieldErrors(map[string]bool{
			"name":     req.Name == "",
			"email":    req.Email == "",
			"password": req.Password == "",
		})})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var existing model.Credential
	if result := database.GetDB().Where("email = ?", req.Email).First(&existing); result.Error == nil {
		log.Error("User already exists", zap.String("email", req.Email))
		prometheus.RecordAuthError("email_already_exists")
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "account creation failed"})
	}

	authCode := uuid.New().String()
	credential := model.Credential{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		AuthCode: &authCode,
		Status:   false,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&credential); result.Error != nil {
		log.Error("Failed to create pending account", zap.Error(result.Error))
		prometheus.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "account creation failed"})
	}

	log.Info("Pending account created", zap.String("email", credential.Email), zap.Uint("user_id", credential.ID))
	return c.JSON(http.StatusCreated, echo.Map{
		"message":   "account pending, confirm with the authorization code",
		"auth_code": authCode,
	})
}

func (h *AuthHandler) confirmAdminAccount(c echo.Context, email, authCode string) error {
	log := logger.FromContext(c)

	if email == "" {
		prometheus.RecordAuthError("incomplete_admin_create")
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": requiredFieldErrors(map[string]bool{
			"email": true,
		})})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var credential model.Credential
	result := database.GetDB().Where("email = ? AND auth_code IS NOT NULL", email).First(&credential)
	if result.Error != nil {
		log.Error("No pending account", zap.String("email", email))
		prometheus.RecordAuthError("pending_account_not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no pending account for this email"})
	}

	if credential.AuthCode == nil || *credential.AuthCode != authCode {
		log.Error("Authorization code mismatch", zap.String("email", email))
		prometheus.RecordAuthError("auth_code_mismatch")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid authorization code"})
	}

	token := credential.Token
	if token == "" {
		var err error
		token, err = h.jwt.GenerateToken(credential.Email, credential.ID)
		if err != nil {
			log.Error("Failed to generate token", zap.Error(err))
			prometheus.RecordAuthError("token_generation_failed")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "account confirmation failed"})
		}
	}

	// The code is one-time: clear it and activate in the same update
	defer prometheus.TrackDBOperation("update")(time.Now())
	updates := map[string]interface{}{
		"auth_code": nil,
		"status":    true,
		"token":     token,
	}
	if err := database.GetDB().Model(&credential).Updates(updates).Error; err != nil {
		log.Error("Failed to activate account", zap.Error(err))
		prometheus.RecordAuthError("user_activation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "account confirmation failed"})
	}

	log.Info("Account confirmed", zap.String("email", credential.Email), zap.Uint("user_id", credential.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "account confirmed successfully",
		"user": echo.Map{
			"id":    credential.ID,
			"email": credential.Email,
		},
	})
}
