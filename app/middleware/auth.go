package middleware

import (
	"net/http"
	"strings"

	"github.com/vibast-solutions/ms-go-accounts/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type accessTokenValidator interface {
	ValidateAccessToken(tokenString string) (*service.Claims, error)
}

type AuthMiddleware struct {
	accounts accessTokenValidator
}

func NewAuthMiddleware(accounts accessTokenValidator) *AuthMiddleware {
	return &AuthMiddleware{accounts: accounts}
}

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := m.claimsFromRequest(c)
		if claims == nil {
			// The rejection response has already been written.
			return err
		}

		c.Set("account_id", claims.AccountID)
		c.Set("account_email", claims.Email)
		c.Set("has_admin_right", claims.HasAdminRight)

		return next(c)
	}
}

// RequireAdmin gates administrative actions on the has_admin_right claim.
func (m *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := m.claimsFromRequest(c)
		if claims == nil {
			return err
		}

		if !claims.HasAdminRight {
			logrus.WithField("account_id", claims.AccountID).Debug("Missing administration rights")
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "administration rights required",
			})
		}

		c.Set("account_id", claims.AccountID)
		c.Set("account_email", claims.Email)
		c.Set("has_admin_right", claims.HasAdminRight)

		return next(c)
	}
}

// claimsFromRequest validates the bearer token. On rejection it writes the
// 401 response itself and returns nil claims; callers must not proceed.
func (m *AuthMiddleware) claimsFromRequest(c echo.Context) (*service.Claims, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		logrus.Debug("Missing authorization header")
		return nil, c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "missing authorization header",
		})
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		logrus.Debug("Invalid authorization header format")
		return nil, c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "invalid authorization header format",
		})
	}

	claims, err := m.accounts.ValidateAccessToken(parts[1])
	if err != nil {
		logrus.Debug("Invalid or expired access token")
		return nil, c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "invalid or expired token",
		})
	}

	return claims, nil
}
