package handlers

import (
	"context"
	"log"
	"time"

	"github.com/faqbnb/faqbnb-api/app/dto"
	businessflow "github.com/faqbnb/faqbnb-api/business_flow"
	"github.com/faqbnb/faqbnb-api/models"
	"github.com/faqbnb/faqbnb-api/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// AccessRequestHandlerInterface defines the contract for the public access
// request forms
type AccessRequestHandlerInterface interface {
	Submit(c fiber.Ctx) error
	JoinWaitlist(c fiber.Ctx) error
}

// AccessRequestHandler handles the public request-access and waitlist forms.
// Both feed the same pipeline; only the recorded source differs.
type AccessRequestHandler struct {
	flow      businessflow.AccessRequestFlow
	validator *validator.Validate
}

// NewAccessRequestHandler creates a new access request handler
func NewAccessRequestHandler(flow businessflow.AccessRequestFlow) *AccessRequestHandler {
	return &AccessRequestHandler{
		flow:      flow,
		validator: newValidator(),
	}
}

func (h *AccessRequestHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AccessRequestHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Submit handles the public access request form
// @Summary Request Access
// @Description Submit a public access request; one open request per email
// @Tags AccessRequests
// @Accept json
// @Produce json
// @Param request body dto.AccessRequestCreateRequest true "Access request data"
// @Success 200 {object} dto.APIResponse{data=dto.AccessRequestCreateResponse} "Request received"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "A request for this email is already open"
// @Failure 429 {object} dto.APIResponse "Too many requests"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/access-requests [post]
func (h *AccessRequestHandler) Submit(c fiber.Ctx) error {
	return h.submit(c, models.AccessRequestSourcePublicForm, "/api/v1/access-requests")
}

// JoinWaitlist handles the beta waitlist form
// @Summary Join Waitlist
// @Description Join the beta waitlist; one open request per email
// @Tags AccessRequests
// @Accept json
// @Produce json
// @Param request body dto.AccessRequestCreateRequest true "Waitlist data"
// @Success 200 {object} dto.APIResponse{data=dto.AccessRequestCreateResponse} "Request received"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "A request for this email is already open"
// @Failure 429 {object} dto.APIResponse "Too many requests"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/waitlist [post]
func (h *AccessRequestHandler) JoinWaitlist(c fiber.Ctx) error {
	return h.submit(c, models.AccessRequestSourceBetaWaitlist, "/api/v1/waitlist")
}

func (h *AccessRequestHandler) submit(c fiber.Ctx, source, endpoint string) error {
	var req dto.AccessRequestCreateRequest
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

	result, err := h.flow.Submit(h.createRequestContext(c, endpoint), &req, source, metadata)
	if err != nil {
		if businessflow.IsAccessRequestRateLimited(err) {
			return h.ErrorResponse(c, fiber.StatusTooManyRequests, "Too many requests", "RATE_LIMITED", nil)
		}
		if businessflow.IsAlreadyRequested(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "A request for this email is already open", "ALREADY_REQUESTED", nil)
		}

		log.Println("Access request failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to submit access request", "ACCESS_REQUEST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

func (h *AccessRequestHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, 15*time.Second)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
