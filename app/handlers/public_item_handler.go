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
	"github.com/google/uuid"
)

// PublicItemHandlerInterface defines the contract for the unauthenticated
// item endpoints behind QR codes
type PublicItemHandlerInterface interface {
	View(c fiber.Ctx) error
	React(c fiber.Ctx) error
	RemoveReaction(c fiber.Ctx) error
}

// PublicItemHandler serves the public item page behind a QR scan. No auth,
// no account data in responses.
type PublicItemHandler struct {
	flow      businessflow.PublicItemFlow
	validator *validator.Validate
}

// NewPublicItemHandler creates a new public item handler
func NewPublicItemHandler(flow businessflow.PublicItemFlow) *PublicItemHandler {
	return &PublicItemHandler{
		flow:      flow,
		validator: newValidator(),
	}
}

func (h *PublicItemHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *PublicItemHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// View returns the public item content and records an anonymous visit
// @Summary View Public Item
// @Description Fetch the public item page content; the visit is recorded for analytics
// @Tags PublicItems
// @Produce json
// @Param publicID path string true "Item public ID"
// @Param session_id query string false "Anonymous session ID"
// @Success 200 {object} dto.APIResponse{data=dto.PublicItemResponse} "Item content"
// @Failure 404 {object} dto.APIResponse "Item not found"
// @Router /api/v1/items/{publicID} [get]
func (h *PublicItemHandler) View(c fiber.Ctx) error {
	publicID, err := uuid.Parse(c.Params("publicID"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusNotFound, "Item not found", "ITEM_NOT_FOUND", nil)
	}

	var sessionID *string
	if raw := c.Query("session_id"); raw != "" && len(raw) <= 64 {
		sessionID = &raw
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.flow.View(h.createRequestContext(c, "/api/v1/items/"+c.Params("publicID")), publicID, sessionID, metadata)
	if err != nil {
		if businessflow.IsItemNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Item not found", "ITEM_NOT_FOUND", nil)
		}

		log.Println("Public item view failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load item", "ITEM_VIEW_FAILED", nil)
	}

	middleware.CountItemView()

	return h.SuccessResponse(c, fiber.StatusOK, "Item retrieved", result)
}

// React records an anonymous reaction on a public item
// @Summary React To Item
// @Description Add a reaction; repeating the same reaction for the same session is a no-op
// @Tags PublicItems
// @Accept json
// @Produce json
// @Param publicID path string true "Item public ID"
// @Param request body dto.ReactionRequest true "Reaction data"
// @Success 200 {object} dto.APIResponse{data=dto.ReactionResponse} "Updated reaction counts"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Item not found"
// @Router /api/v1/items/{publicID}/reactions [post]
func (h *PublicItemHandler) React(c fiber.Ctx) error {
	return h.react(c, false)
}

// RemoveReaction removes a previously recorded reaction
// @Summary Remove Item Reaction
// @Tags PublicItems
// @Accept json
// @Produce json
// @Param publicID path string true "Item public ID"
// @Param request body dto.ReactionRequest true "Reaction data"
// @Success 200 {object} dto.APIResponse{data=dto.ReactionResponse} "Updated reaction counts"
// @Failure 404 {object} dto.APIResponse "Item not found"
// @Router /api/v1/items/{publicID}/reactions [delete]
func (h *PublicItemHandler) RemoveReaction(c fiber.Ctx) error {
	return h.react(c, true)
}

func (h *PublicItemHandler) react(c fiber.Ctx, remove bool) error {
	publicID, err := uuid.Parse(c.Params("publicID"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusNotFound, "Item not found", "ITEM_NOT_FOUND", nil)
	}

	var req dto.ReactionRequest
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

	ctx := h.createRequestContext(c, "/api/v1/items/"+c.Params("publicID")+"/reactions")

	var result *dto.ReactionResponse
	if remove {
		result, err = h.flow.RemoveReaction(ctx, publicID, &req)
	} else {
		result, err = h.flow.React(ctx, publicID, &req)
	}
	if err != nil {
		if businessflow.IsItemNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Item not found", "ITEM_NOT_FOUND", nil)
		}
		if businessflow.IsInvalidReactionType(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid reaction type", "INVALID_REACTION_TYPE", nil)
		}

		log.Println("Item reaction failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record reaction", "REACTION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

func (h *PublicItemHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, 10*time.Second)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
