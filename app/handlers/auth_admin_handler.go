package handlers

import (
	"context"
	"log"
	"time"

	"github.com/faqbnb/faqbnb-api/app/dto"
	businessflow "github.com/faqbnb/faqbnb-api/business_flow"
	"github.com/faqbnb/faqbnb-api/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// AdminAuthHandlerInterface defines the contract for admin authentication
type AdminAuthHandlerInterface interface {
	Login(c fiber.Ctx) error
}

// AdminAuthHandler handles the admin login form. The captcha is mandatory
// here, unlike on the regular login form.
type AdminAuthHandler struct {
	loginFlow businessflow.LoginFlow
	validator *validator.Validate
}

// NewAdminAuthHandler creates a new admin authentication handler
func NewAdminAuthHandler(loginFlow businessflow.LoginFlow) *AdminAuthHandler {
	return &AdminAuthHandler{
		loginFlow: loginFlow,
		validator: newValidator(),
	}
}

func (h *AdminAuthHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AdminAuthHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Login handles admin authentication
// @Summary Admin Login
// @Description Authenticate an admin with email, password, and rotate captcha
// @Tags AdminAuthentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Admin login credentials"
// @Success 200 {object} dto.APIResponse{data=object{access_token=string,refresh_token=string,token_type=string,expires_in=int,user=dto.AuthUserDTO}} "Login successful with tokens"
// @Failure 400 {object} dto.APIResponse "Validation or captcha error"
// @Failure 401 {object} dto.APIResponse "Authentication failed"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/auth/login [post]
func (h *AdminAuthHandler) Login(c fiber.Ctx) error {
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

	if req.CaptchaID == nil || req.CaptchaAngle == nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Captcha is required", "CAPTCHA_REQUIRED", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.loginFlow.AdminLogin(h.createRequestContext(c, "/api/v1/admin/auth/login"), &req, metadata)
	if err != nil {
		if businessflow.IsInvalidCaptcha(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Captcha verification failed", "INVALID_CAPTCHA", nil)
		}
		if businessflow.IsIncorrectPassword(err) || businessflow.IsUserNotFound(err) {
			// Non-admin users get the same answer as wrong credentials
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid email or password", "INVALID_CREDENTIALS", nil)
		}
		if businessflow.IsUserInactive(err) || businessflow.IsAccountInactive(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Account is inactive", "ACCOUNT_INACTIVE", nil)
		}

		log.Println("Admin login failed", err)
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

func (h *AdminAuthHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, 30*time.Second)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
