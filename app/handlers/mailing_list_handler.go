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

// MailingListHandlerInterface defines the contract for mailing list handlers
type MailingListHandlerInterface interface {
	Subscribe(c fiber.Ctx) error
	Unsubscribe(c fiber.Ctx) error
	List(c fiber.Ctx) error
}

// MailingListHandler handles the public mailing list forms and the admin
// subscriber list
type MailingListHandler struct {
	flow      businessflow.MailingListFlow
	validator *validator.Validate
}

// NewMailingListHandler creates a new mailing list handler
func NewMailingListHandler(flow businessflow.MailingListFlow) *MailingListHandler {
	return &MailingListHandler{
		flow:      flow,
		validator: newValidator(),
	}
}

func (h *MailingListHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *MailingListHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Subscribe adds an email to the mailing list
// @Summary Subscribe
// @Tags MailingList
// @Accept json
// @Produce json
// @Param request body dto.SubscribeRequest true "Subscription data"
// @Success 200 {object} dto.APIResponse{data=dto.SubscribeResponse} "Subscribed"
// @Failure 409 {object} dto.APIResponse "Already subscribed"
// @Failure 429 {object} dto.APIResponse "Too many attempts"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/mailing-list/subscribe [post]
func (h *MailingListHandler) Subscribe(c fiber.Ctx) error {
	var req dto.SubscribeRequest
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

	result, err := h.flow.Subscribe(h.createRequestContext(c, "/api/v1/mailing-list/subscribe"), &req, metadata)
	if err != nil {
		if businessflow.IsAccessRequestRateLimited(err) {
			return h.ErrorResponse(c, fiber.StatusTooManyRequests, "Too many attempts", "RATE_LIMITED", nil)
		}
		if businessflow.IsAlreadySubscribed(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "This email is already subscribed", "ALREADY_SUBSCRIBED", nil)
		}

		log.Println("Subscription failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to subscribe", "SUBSCRIBE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Unsubscribe removes an email from the active list
// @Summary Unsubscribe
// @Tags MailingList
// @Accept json
// @Produce json
// @Param request body dto.UnsubscribeRequest true "Unsubscription data"
// @Success 200 {object} dto.APIResponse{data=dto.UnsubscribeResponse} "Unsubscribed"
// @Failure 404 {object} dto.APIResponse "Email is not subscribed"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/mailing-list/unsubscribe [post]
func (h *MailingListHandler) Unsubscribe(c fiber.Ctx) error {
	var req dto.UnsubscribeRequest
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

	result, err := h.flow.Unsubscribe(h.createRequestContext(c, "/api/v1/mailing-list/unsubscribe"), &req)
	if err != nil {
		if businessflow.IsNotSubscribed(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "This email is not subscribed", "NOT_SUBSCRIBED", nil)
		}

		log.Println("Unsubscription failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to unsubscribe", "UNSUBSCRIBE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// List returns a page of subscribers for the admin dashboard
// @Summary List Subscribers
// @Tags AdminMailingList
// @Produce json
// @Param only_active query bool false "Only currently subscribed addresses"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.SubscriberListResponse} "Subscriber list"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/mailing-list [get]
func (h *MailingListHandler) List(c fiber.Ctx) error {
	var req dto.SubscriberListRequest
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

	result, err := h.flow.List(h.createRequestContext(c, "/api/v1/admin/mailing-list"), &req)
	if err != nil {
		log.Println("Subscriber list failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list subscribers", "SUBSCRIBER_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

func (h *MailingListHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, 15*time.Second)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
