// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"errors"
	"strings"

	"github.com/culturemap-ua/culturemap-api/app/dto"
	"github.com/culturemap-ua/culturemap-api/app/services"
	businessflow "github.com/culturemap-ua/culturemap-api/business_flow"
	"github.com/culturemap-ua/culturemap-api/models"
	"github.com/gofiber/fiber/v3"
)

// AuthMiddleware handles JWT token validation for protected endpoints
type AuthMiddleware struct {
	tokenService services.TokenService
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(tokenService services.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

// Authenticate validates the JWT and stores the caller in the request context
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		claims, errResp := m.extractClaims(c)
		if errResp != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(*errResp)
		}

		storeCaller(c, claims)
		return c.Next()
	}
}

// AdminAuthenticate validates the JWT and requires the admin role claim
func (m *AuthMiddleware) AdminAuthenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		claims, errResp := m.extractClaims(c)
		if errResp != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(*errResp)
		}

		if claims.Role != models.RoleAdmin.String() {
			return c.Status(fiber.StatusForbidden).JSON(dto.APIResponse{
				Success: false,
				Message: "Admin role required",
				Error:   dto.ErrorDetail{Code: "ADMIN_ROLE_REQUIRED"},
			})
		}

		storeCaller(c, claims)
		return c.Next()
	}
}

// OptionalAuth validates the JWT when present but lets guests through.
// Malformed or expired tokens degrade to a guest caller.
func (m *AuthMiddleware) OptionalAuth() fiber.Handler {
	return func(c fiber.Ctx) error {
		claims, errResp := m.extractClaims(c)
		if errResp != nil {
			return c.Next()
		}

		storeCaller(c, claims)
		return c.Next()
	}
}

// extractClaims parses and validates the bearer token on the request
func (m *AuthMiddleware) extractClaims(c fiber.Ctx) (*services.TokenClaims, *dto.APIResponse) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, &dto.APIResponse{
			Success: false,
			Message: "Authorization header is required",
			Error:   dto.ErrorDetail{Code: "MISSING_AUTHORIZATION_HEADER"},
		}
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, &dto.APIResponse{
			Success: false,
			Message: "Invalid authorization header format. Expected 'Bearer <token>'",
			Error:   dto.ErrorDetail{Code: "INVALID_AUTHORIZATION_FORMAT"},
		}
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return nil, &dto.APIResponse{
			Success: false,
			Message: "Access token is required",
			Error:   dto.ErrorDetail{Code: "MISSING_ACCESS_TOKEN"},
		}
	}

	claims, err := m.tokenService.ValidateToken(token)
	if err != nil {
		var code, msg string
		switch {
		case errors.Is(err, services.ErrTokenExpired):
			code = "TOKEN_EXPIRED"
			msg = "Access token has expired"
		case errors.Is(err, services.ErrTokenInvalid):
			code = "TOKEN_INVALID"
			msg = "Invalid access token"
		default:
			code = "TOKEN_VALIDATION_FAILED"
			msg = "Token validation failed"
		}
		return nil, &dto.APIResponse{
			Success: false,
			Message: msg,
			Error:   dto.ErrorDetail{Code: code},
		}
	}

	if claims.TokenType != "access" {
		return nil, &dto.APIResponse{
			Success: false,
			Message: "Refresh tokens cannot be used for authentication",
			Error:   dto.ErrorDetail{Code: "TOKEN_INVALID"},
		}
	}

	return claims, nil
}

func storeCaller(c fiber.Ctx, claims *services.TokenClaims) {
	c.Locals("user_id", claims.UserID)
	c.Locals("user_role", claims.Role)
	c.Locals("token_id", claims.TokenID)
	c.Locals("token_claims", claims)

	if requestID := c.Get("X-Request-ID"); requestID != "" {
		c.Locals("request_id", requestID)
	}
}

// CallerFromContext resolves the caller stored by the auth middleware.
// Requests that never passed authentication resolve to a guest.
func CallerFromContext(c fiber.Ctx) businessflow.Caller {
	userID, ok := c.Locals("user_id").(uint)
	if !ok || userID == 0 {
		return businessflow.GuestCaller()
	}
	role, ok := c.Locals("user_role").(string)
	if !ok {
		return businessflow.GuestCaller()
	}
	parsed := models.UserRole(role)
	if !parsed.Valid() {
		return businessflow.GuestCaller()
	}
	return businessflow.Caller{UserID: userID, Role: parsed}
}

// GetTokenClaimsFromContext extracts token claims from the request context
func GetTokenClaimsFromContext(c fiber.Ctx) (*services.TokenClaims, bool) {
	claims, ok := c.Locals("token_claims").(*services.TokenClaims)
	return claims, ok
}
