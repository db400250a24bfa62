// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"errors"
	"strings"

	"github.com/faqbnb/faqbnb-api/app/dto"
	"github.com/faqbnb/faqbnb-api/app/services"
	"github.com/faqbnb/faqbnb-api/models"
	"github.com/faqbnb/faqbnb-api/repository"
	"github.com/faqbnb/faqbnb-api/utils"
	"github.com/gofiber/fiber/v3"
)

// AuthMiddleware handles JWT token validation for protected endpoints
type AuthMiddleware struct {
	tokenService services.TokenService
	userRepo     repository.UserRepository
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(tokenService services.TokenService, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
		userRepo:     userRepo,
	}
}

// Authenticate is the middleware function that validates JWT tokens. On
// success it loads the user row so downstream handlers get the account ID
// and a deactivated user is cut off even with a still-valid token.
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		claims, errResp := m.validateBearer(c)
		if errResp != nil {
			return errResp(c)
		}

		user, err := m.userRepo.ByID(c.Context(), claims.UserID)
		if err != nil || user == nil || !utils.IsTrue(user.IsActive) {
			return unauthorized(c, "Invalid access token", "TOKEN_INVALID")
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("role", claims.Role)
		c.Locals("token_id", claims.TokenID)
		c.Locals("token_claims", claims)
		if user.AccountID != nil {
			c.Locals("account_id", *user.AccountID)
		}

		// Store RequestID for audit logging
		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals("request_id", requestID)
		}

		return c.Next()
	}
}

// AdminAuthenticate validates JWT tokens and requires the admin role
func (m *AuthMiddleware) AdminAuthenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		claims, errResp := m.validateBearer(c)
		if errResp != nil {
			return errResp(c)
		}

		if claims.Role != models.UserRoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(dto.APIResponse{
				Success: false,
				Message: "Admin access required",
				Error:   dto.ErrorDetail{Code: "ADMIN_REQUIRED"},
			})
		}

		user, err := m.userRepo.ByID(c.Context(), claims.UserID)
		if err != nil || user == nil || !utils.IsTrue(user.IsActive) || !user.IsAdmin() {
			return unauthorized(c, "Invalid access token", "TOKEN_INVALID")
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("role", claims.Role)
		c.Locals("token_id", claims.TokenID)
		c.Locals("token_claims", claims)

		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals("request_id", requestID)
		}

		return c.Next()
	}
}

// validateBearer extracts and validates the Bearer token from the
// Authorization header. Returns claims, or an error responder.
func (m *AuthMiddleware) validateBearer(c fiber.Ctx) (*services.TokenClaims, func(fiber.Ctx) error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, func(c fiber.Ctx) error {
			return unauthorized(c, "Authorization header is required", "MISSING_AUTHORIZATION_HEADER")
		}
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, func(c fiber.Ctx) error {
			return unauthorized(c, "Invalid authorization header format. Expected 'Bearer <token>'", "INVALID_AUTHORIZATION_FORMAT")
		}
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return nil, func(c fiber.Ctx) error {
			return unauthorized(c, "Access token is required", "MISSING_ACCESS_TOKEN")
		}
	}

	claims, err := m.tokenService.ValidateToken(token)
	if err != nil {
		var code, msg string
		if errors.Is(err, services.ErrTokenExpired) {
			code = "TOKEN_EXPIRED"
			msg = "Access token has expired"
		} else if errors.Is(err, services.ErrTokenInvalid) {
			code = "TOKEN_INVALID"
			msg = "Invalid access token"
		} else {
			code = "TOKEN_VALIDATION_FAILED"
			msg = "Token validation failed"
		}
		return nil, func(c fiber.Ctx) error {
			return unauthorized(c, msg, code)
		}
	}

	if claims.TokenType != "access" {
		return nil, func(c fiber.Ctx) error {
			return unauthorized(c, "Invalid access token", "TOKEN_INVALID")
		}
	}

	return claims, nil
}

func unauthorized(c fiber.Ctx, message, code string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: code},
	})
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(c fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals("user_id").(uint)
	return userID, ok
}

// GetAccountIDFromContext extracts the account ID from the request context
func GetAccountIDFromContext(c fiber.Ctx) (uint, bool) {
	accountID, ok := c.Locals("account_id").(uint)
	return accountID, ok
}

// GetTokenClaimsFromContext extracts token claims from the request context
func GetTokenClaimsFromContext(c fiber.Ctx) (*services.TokenClaims, bool) {
	claims, ok := c.Locals("token_claims").(*services.TokenClaims)
	return claims, ok
}
