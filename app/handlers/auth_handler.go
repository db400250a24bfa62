// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/faqbnb/faqbnb-api/app/dto"
	"github.com/faqbnb/faqbnb-api/app/services"
	businessflow "github.com/faqbnb/faqbnb-api/business_flow"
	"github.com/faqbnb/faqbnb-api/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// AuthHandlerInterface defines the contract for authentication handlers
type AuthHandlerInterface interface {
	Register(c fiber.Ctx) error
	Login(c fiber.Ctx) error
	Logout(c fiber.Ctx) error
	RefreshToken(c fiber.Ctx) error
	ValidateAccessCode(c fiber.Ctx) error
	Captcha(c fiber.Ctx) error
	Health(c fiber.Ctx) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	registrationFlow  businessflow.RegistrationFlow
	loginFlow         businessflow.LoginFlow
	accessRequestFlow businessflow.AccessRequestFlow
	captchaService    services.CaptchaService
	validator         *validator.Validate
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(
	registrationFlow businessflow.RegistrationFlow,
	loginFlow businessflow.LoginFlow,
	accessRequestFlow businessflow.AccessRequestFlow,
	captchaService services.CaptchaService,
) *AuthHandler {
	return &AuthHandler{
		registrationFlow:  registrationFlow,
		loginFlow:         loginFlow,
		accessRequestFlow: accessRequestFlow,
		captchaService:    captchaService,
		validator:         newValidator(),
	}
}

func (h *AuthHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AuthHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Register handles account registration with an approved access code
// @Summary Register With Access Code
// @Description Redeem an approved access code and create the account, owner user, and first session
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration data"
// @Success 200 {object} dto.APIResponse{data=dto.RegisterResponse} "Registration successful"
// @Failure 400 {object} dto.APIResponse "Validation error or unusable access code"
// @Failure 409 {object} dto.APIResponse "Email already registered or code already used"
// @Failure 429 {object} dto.APIResponse "Too many attempts"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.registrationFlow.Register(h.createRequestContext(c, "/api/v1/auth/register"), &req, metadata)
	if err != nil {
		if businessflow.IsRegistrationRateLimited(err) {
			return h.ErrorResponse(c, fiber.StatusTooManyRequests, "Too many registration attempts", "RATE_LIMITED", nil)
		}
		if businessflow.IsAccessCodeNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Access code not found", "ACCESS_CODE_NOT_FOUND", nil)
		}
		if businessflow.IsAccessCodeAlreadyUsed(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Access code has already been used", "ACCESS_CODE_ALREADY_USED", nil)
		}
		if businessflow.IsInvalidAccessRequestStatus(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Access code is not redeemable", "ACCESS_CODE_NOT_REDEEMABLE", nil)
		}
		if businessflow.IsEmailMismatch(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Email does not match the approved request", "EMAIL_MISMATCH", nil)
		}
		if businessflow.IsEmailAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Email already registered", "EMAIL_EXISTS", nil)
		}

		log.Println("Registration failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Registration failed", "REGISTRATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"access_token":  result.Token,
		"refresh_token": result.Refresh,
		"token_type":    "Bearer",
		"expires_in":    utils.AccessTokenTTLSeconds,
		"user":          result.User,
		"session":       result.Session,
	})
}

// Login handles user authentication
// @Summary User Login
// @Description Authenticate user with email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=object{access_token=string,refresh_token=string,token_type=string,expires_in=int,user=dto.AuthUserDTO}} "Login successful with tokens"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Authentication failed"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.loginFlow.Login(h.createRequestContext(c, "/api/v1/auth/login"), &req, metadata)
	if err != nil {
		if businessflow.IsIncorrectPassword(err) || businessflow.IsUserNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid email or password", "INVALID_CREDENTIALS", nil)
		}
		if businessflow.IsUserInactive(err) || businessflow.IsAccountInactive(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Account is inactive", "ACCOUNT_INACTIVE", nil)
		}
		if businessflow.IsInvalidCaptcha(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Captcha verification failed", "INVALID_CAPTCHA", nil)
		}

		log.Println("Login failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Login failed", "LOGIN_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Login successful", fiber.Map{
		"access_token":  result.Token,
		"refresh_token": result.Refresh,
		"token_type":    "Bearer",
		"expires_in":    utils.AccessTokenTTLSeconds,
		"user":          result.User,
	})
}

// Logout deactivates the current session
// @Summary Logout
// @Description Deactivate the session behind the presented access token
// @Tags Authentication
// @Produce json
// @Success 200 {object} dto.APIResponse "Logged out"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	token := bearerToken(c)
	if token == "" {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Access token is required", "MISSING_ACCESS_TOKEN", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.loginFlow.Logout(h.createRequestContext(c, "/api/v1/auth/logout"), token, metadata)
	if err != nil {
		if businessflow.IsSessionNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Session not found", "SESSION_NOT_FOUND", nil)
		}

		log.Println("Logout failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Logout failed", "LOGOUT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, nil)
}

// RefreshToken rotates the session using a refresh token
// @Summary Refresh Token
// @Description Exchange a refresh token for a new token pair; the old session is deactivated
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse{data=dto.RefreshTokenResponse} "New token pair"
// @Failure 401 {object} dto.APIResponse "Refresh token invalid or expired"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) RefreshToken(c fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.loginFlow.RefreshToken(h.createRequestContext(c, "/api/v1/auth/refresh"), &req, metadata)
	if err != nil {
		if businessflow.IsSessionNotFound(err) || businessflow.IsSessionExpired(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Refresh token is invalid or expired", "INVALID_REFRESH_TOKEN", nil)
		}

		log.Println("Token refresh failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Token refresh failed", "TOKEN_REFRESH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"access_token":  result.Token,
		"refresh_token": result.Refresh,
		"token_type":    "Bearer",
		"expires_in":    utils.AccessTokenTTLSeconds,
		"session":       result.Session,
	})
}

// ValidateAccessCode checks a code before the registration form is filled.
// This does not consume the code.
// @Summary Validate Access Code
// @Description Check whether an access code can be redeemed for the given email
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.ValidateAccessCodeRequest true "Code and email"
// @Success 200 {object} dto.APIResponse{data=dto.ValidateAccessCodeResponse} "Validation result"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /api/v1/auth/validate-access-code [post]
func (h *AuthHandler) ValidateAccessCode(c fiber.Ctx) error {
	var req dto.ValidateAccessCodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.accessRequestFlow.ValidateCode(h.createRequestContext(c, "/api/v1/auth/validate-access-code"), &req)
	if err != nil {
		log.Println("Access code validation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Access code validation failed", "VALIDATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Captcha issues a rotate captcha challenge
// @Summary Captcha Challenge
// @Description Generate a rotate captcha challenge for the admin login form
// @Tags Authentication
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.CaptchaChallengeResponse} "Challenge images"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/admin/captcha [get]
func (h *AuthHandler) Captcha(c fiber.Ctx) error {
	challenge, err := h.captchaService.GenerateRotate(h.createRequestContext(c, "/api/v1/auth/admin/captcha"))
	if err != nil {
		log.Println("Captcha generation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Captcha generation failed", "CAPTCHA_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Captcha challenge generated", dto.CaptchaChallengeResponse{
		CaptchaID:   challenge.ID,
		MasterImage: challenge.MasterImageBase64,
		ThumbImage:  challenge.ThumbImageBase64,
	})
}

// Health handles health check requests
// @Summary Health Check
// @Description Check the health status of the API
// @Tags Health
// @Produce json
// @Success 200 {object} dto.APIResponse "Service is healthy"
// @Router /api/v1/health [get]
func (h *AuthHandler) Health(c fiber.Ctx) error {
	return h.SuccessResponse(c, fiber.StatusOK, "Service is healthy", fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "faqbnb-api",
	})
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *AuthHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

// createRequestContextWithTimeout creates a context with custom timeout and request-scoped values
func (h *AuthHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
