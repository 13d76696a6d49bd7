package middleware

import (
	"net/http"
	"strings"

	"catalog-service/pkg/jwtutil"
	"catalog-service/pkg/logger"
	"catalog-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequirePermission returns a factory of middlewares that admit only bearer
// tokens carrying a given permission. With enabled false every request is
// admitted.
func RequirePermission(tokens *jwtutil.JWTUtil, enabled bool) func(permission string) echo.MiddlewareFunc {
	return func(permission string) echo.MiddlewareFunc {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			if !enabled {
				return next
			}
			return func(c echo.Context) error {
				log := logger.FromContext(c)

				authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
				if authHeader == "" {
					log.Warn("Missing Authorization header")
					prometheus.RecordAuthError("missing_token")
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
				}

				scheme, tokenString, found := strings.Cut(authHeader, " ")
				if !found || !strings.EqualFold(scheme, "bearer") || tokenString == "" {
					log.Warn("Invalid Authorization header format")
					prometheus.RecordAuthError("invalid_format")
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
				}

				claims, err := tokens.ValidateToken(tokenString)
				prometheus.RecordAuthAttempt(err == nil)
				if err != nil {
					log.Warn("Invalid JWT token", zap.Error(err))
					prometheus.RecordAuthError("invalid_token")
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
				}

				if !claims.HasPermission(permission) {
					log.Warn("Insufficient permission",
						zap.Uint("user_id", claims.UserID),
						zap.String("required", permission))
					prometheus.RecordAuthError("insufficient_permission")
					return c.JSON(http.StatusForbidden, echo.Map{"error": "missing permission " + permission})
				}

				c.Set("user_id", claims.UserID)
				c.Set("email", claims.Email)
				c.Set("logger", log.With(zap.Uint("user_id", claims.UserID)))

				return next(c)
			}
		}
	}
}
