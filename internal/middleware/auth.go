package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Univesp-PIs/pi4-back/internal/model"
	"github.com/Univesp-PIs/pi4-back/pkg/database"
	"github.com/Univesp-PIs/pi4-back/pkg/jwtutil"
	"github.com/Univesp-PIs/pi4-back/pkg/logger"
	"github.com/Univesp-PIs/pi4-back/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Context keys set by the auth middleware
const (
	CredentialKey = "credential"
	UserIDKey     = "user_id"
	EmailKey      = "email"
)

// AuthMiddleware validates the JWT bearer token from the Authorization
// header, loads the matching credential and stores it in the context. The
// token payload is trusted only after its signature checks out; the account
// must still exist and be active.
func AuthMiddleware(jwt *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Error("Missing Authorization header")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Error("Invalid Authorization header format")
				prometheus.RecordAuthError("invalid_auth_format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
			}

			claims, err := jwt.ValidateToken(parts[1])
			if err != nil {
				log.Error("Invalid JWT token", zap.Error(err))
				if errors.Is(err, jwtutil.ErrTokenExpired) {
					prometheus.RecordAuthError("expired_token")
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token expired"})
				}
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			var credential model.Credential
			result := database.GetDB().First(&credential, claims.UserID)
			if result.Error != nil || !credential.Status {
				log.Error("Credential not found or inactive", zap.Uint("user_id", claims.UserID))
				prometheus.RecordAuthError("user_not_found")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "user not found"})
			}

			c.Set(CredentialKey, credential)
			c.Set(UserIDKey, credential.ID)
			c.Set(EmailKey, credential.Email)

			return next(c)
		}
	}
}
