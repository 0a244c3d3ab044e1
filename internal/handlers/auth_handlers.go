package handlers

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"sstcore/internal/middleware"
	"sstcore/internal/models"
	"sstcore/internal/repositories"
	"sstcore/internal/services"
	"sstcore/internal/tenancy"
)

type AuthHandlers struct {
	identity  services.IdentityService
	tenants   repositories.TenantRepository
	router    *tenancy.Router
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

func NewAuthHandlers(identity services.IdentityService, tenants repositories.TenantRepository, router *tenancy.Router, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *AuthHandlers {
	return &AuthHandlers{
		identity:  identity,
		tenants:   tenants,
		router:    router,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger.With().Str("component", "auth").Logger(),
	}
}

type LoginRequest struct {
	Tenant   string `json:"tenant"` // subdomain of the tenant
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int             `json:"expires_in"`
	Profile     *models.Profile `json:"profile"`
}

// Login is the only unauthenticated endpoint: the tenant arrives in the
// payload as its subdomain, everything after login carries it in the token.
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}
	if req.Tenant == "" || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "tenant, email and password are required")
	}

	tenant, err := h.tenants.GetBySubdomain(ctx, req.Tenant)
	if err != nil {
		// Same shape as a credential failure; the login form must not
		// reveal which tenants exist.
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	handle, err := h.router.Resolve(ctx, tenant.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	profile, err := h.identity.ValidateCredentials(ctx, handle, req.Email, req.Password)
	if err != nil {
		return renderError(c, h.logger, err)
	}

	now := time.Now()
	claims := middleware.Claims{
		TenantID: tenant.ID.String(),
		Role:     profile.Role,
		Name:     profile.Name,
		ClientID: profile.ClientID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "sstcore",
			Subject:   profile.Email,
			ExpiresAt: jwt.NewNumericDate(now.Add(h.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to issue token")
	}

	return c.JSON(http.StatusOK, LoginResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.tokenTTL.Seconds()),
		Profile:     profile,
	})
}
