// Package middleware carries the echo middleware of the boundary layer:
// token validation with tenant resolution, and role gating.
package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"sstcore/internal/tenancy"
)

// Claims are what the login handler signs into each token. The tenant id
// travels in the token so every request resolves its own store handle.
type Claims struct {
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	ClientID string `json:"client_id,omitempty"`
	jwt.RegisteredClaims
}

// Auth validates the bearer token, resolves the tenant into a store handle
// and threads handle plus caller through the request context. Resolution
// happens exactly once per request; nothing is kept in shared state.
func Auth(router *tenancy.Router, jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
			}
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token format")
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			tenantID, err := uuid.Parse(claims.TenantID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid tenant in token")
			}

			handle, err := router.Resolve(c.Request().Context(), tenantID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "tenant not available")
			}

			caller := tenancy.Caller{
				Email: claims.Subject,
				Name:  claims.Name,
				Role:  claims.Role,
			}
			if claims.ClientID != "" {
				if clientID, err := uuid.Parse(claims.ClientID); err == nil {
					caller.ClientID = clientID
				}
			}

			ctx := tenancy.WithHandle(c.Request().Context(), handle)
			ctx = tenancy.WithCaller(ctx, caller)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
