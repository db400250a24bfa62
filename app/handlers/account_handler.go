package handlers

import (
	"context"
	"log"
	"time"

	"github.com/faqbnb/faqbnb-api/app/dto"
	"github.com/faqbnb/faqbnb-api/app/middleware"
	businessflow "github.com/faqbnb/faqbnb-api/business_flow"
	"github.com/faqbnb/faqbnb-api/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// AccountHandlerInterface defines the contract for account handlers
type AccountHandlerInterface interface {
	Profile(c fiber.Ctx) error
	ListAccounts(c fiber.Ctx) error
}

// AccountHandler serves the authenticated profile view and the admin
// account list
type AccountHandler struct {
	flow      businessflow.AccountFlow
	validator *validator.Validate
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(flow businessflow.AccountFlow) *AccountHandler {
	return &AccountHandler{
		flow:      flow,
		validator: newValidator(),
	}
}

func (h *AccountHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AccountHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Profile returns the current user and account
// @Summary Profile
// @Tags Account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ProfileResponse} "Profile"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/user/profile [get]
func (h *AccountHandler) Profile(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	result, err := h.flow.Profile(h.createRequestContext(c, "/api/v1/user/profile"), userID)
	if err != nil {
		if businessflow.IsUserNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "User not found", "USER_NOT_FOUND", nil)
		}

		log.Println("Profile fetch failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load profile", "PROFILE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ListAccounts returns a page of accounts for the admin dashboard
// @Summary List Accounts
// @Tags AdminAccounts
// @Produce json
// @Security BearerAuth
// @Param only_active query bool false "Only active accounts"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.AccountListResponse} "Account list"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/accounts [get]
func (h *AccountHandler) ListAccounts(c fiber.Ctx) error {
	var req dto.AccountListRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.flow.ListAccounts(h.createRequestContext(c, "/api/v1/admin/accounts"), &req)
	if err != nil {
		log.Println("Account list failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list accounts", "ACCOUNT_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

func (h *AccountHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, 15*time.Second)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
