package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/faqbnb/faqbnb-api/app/dto"
	businessflow "github.com/faqbnb/faqbnb-api/business_flow"
	"github.com/faqbnb/faqbnb-api/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// AdminAccessRequestHandlerInterface defines the contract for the admin
// access request endpoints
type AdminAccessRequestHandlerInterface interface {
	List(c fiber.Ctx) error
	Create(c fiber.Ctx) error
	Approve(c fiber.Ctx) error
	Deny(c fiber.Ctx) error
	UpdateNotes(c fiber.Ctx) error
	Stats(c fiber.Ctx) error
}

// AdminAccessRequestHandler handles the admin side of the access request
// lifecycle
type AdminAccessRequestHandler struct {
	flow      businessflow.AccessRequestFlow
	validator *validator.Validate
}

// NewAdminAccessRequestHandler creates a new admin access request handler
func NewAdminAccessRequestHandler(flow businessflow.AccessRequestFlow) *AdminAccessRequestHandler {
	return &AdminAccessRequestHandler{
		flow:      flow,
		validator: newValidator(),
	}
}

func (h *AdminAccessRequestHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AdminAccessRequestHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// List returns a filtered page of access requests
// @Summary List Access Requests
// @Tags AdminAccessRequests
// @Produce json
// @Param status query string false "Filter by status"
// @Param source query string false "Filter by source"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.AccessRequestListResponse} "Request list"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/access-requests [get]
func (h *AdminAccessRequestHandler) List(c fiber.Ctx) error {
	var req dto.AccessRequestListRequest
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

	result, err := h.flow.List(h.createRequestContext(c, "/api/v1/admin/access-requests"), &req)
	if err != nil {
		log.Println("Access request list failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list access requests", "LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Create enters an access request on someone's behalf
// @Summary Create Access Request
// @Description Create a request directly, optionally auto-approving it so the code is mailed immediately
// @Tags AdminAccessRequests
// @Accept json
// @Produce json
// @Param request body dto.AdminCreateAccessRequestRequest true "Request data"
// @Success 200 {object} dto.APIResponse{data=dto.AccessRequestDecisionResponse} "Request created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "A request for this email is already open"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/access-requests [post]
func (h *AdminAccessRequestHandler) Create(c fiber.Ctx) error {
	var req dto.AdminCreateAccessRequestRequest
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

	result, err := h.flow.AdminCreate(h.createRequestContext(c, "/api/v1/admin/access-requests"), &req, metadata)
	if err != nil {
		if businessflow.IsAlreadyRequested(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "A request for this email is already open", "ALREADY_REQUESTED", nil)
		}

		log.Println("Admin access request creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create access request", "CREATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Approve approves a pending request and assigns its access code
// @Summary Approve Access Request
// @Tags AdminAccessRequests
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param request body dto.AccessRequestDecisionRequest false "Decision notes"
// @Success 200 {object} dto.APIResponse{data=dto.AccessRequestDecisionResponse} "Request approved"
// @Failure 400 {object} dto.APIResponse "Request is not pending"
// @Failure 404 {object} dto.APIResponse "Request not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/access-requests/{id}/approve [post]
func (h *AdminAccessRequestHandler) Approve(c fiber.Ctx) error {
	return h.decide(c, "approve")
}

// Deny denies a pending request. Denial is terminal.
// @Summary Deny Access Request
// @Tags AdminAccessRequests
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param request body dto.AccessRequestDecisionRequest false "Decision notes"
// @Success 200 {object} dto.APIResponse{data=dto.AccessRequestDecisionResponse} "Request denied"
// @Failure 400 {object} dto.APIResponse "Request is not pending"
// @Failure 404 {object} dto.APIResponse "Request not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/access-requests/{id}/deny [post]
func (h *AdminAccessRequestHandler) Deny(c fiber.Ctx) error {
	return h.decide(c, "deny")
}

func (h *AdminAccessRequestHandler) decide(c fiber.Ctx, action string) error {
	requestID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request ID", "INVALID_REQUEST_ID", nil)
	}

	var req dto.AccessRequestDecisionRequest
	if len(c.Body()) > 0 {
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
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	ctx := h.createRequestContext(c, "/api/v1/admin/access-requests/"+c.Params("id")+"/"+action)

	var result *dto.AccessRequestDecisionResponse
	if action == "approve" {
		result, err = h.flow.Approve(ctx, uint(requestID), &req, metadata)
	} else {
		result, err = h.flow.Deny(ctx, uint(requestID), &req, metadata)
	}
	if err != nil {
		if businessflow.IsAccessRequestNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Access request not found", "REQUEST_NOT_FOUND", nil)
		}
		if businessflow.IsInvalidAccessRequestStatus(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Only pending requests can be decided", "INVALID_STATUS", nil)
		}

		log.Println("Access request decision failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to decide access request", "DECISION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// UpdateNotes updates the admin notes on a request in any state
// @Summary Update Request Notes
// @Tags AdminAccessRequests
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param request body dto.AccessRequestNotesRequest true "Notes"
// @Success 200 {object} dto.APIResponse{data=dto.AccessRequestDecisionResponse} "Notes updated"
// @Failure 404 {object} dto.APIResponse "Request not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/access-requests/{id}/notes [put]
func (h *AdminAccessRequestHandler) UpdateNotes(c fiber.Ctx) error {
	requestID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request ID", "INVALID_REQUEST_ID", nil)
	}

	var req dto.AccessRequestNotesRequest
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

	result, err := h.flow.UpdateNotes(h.createRequestContext(c, "/api/v1/admin/access-requests/"+c.Params("id")+"/notes"), uint(requestID), &req)
	if err != nil {
		if businessflow.IsAccessRequestNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Access request not found", "REQUEST_NOT_FOUND", nil)
		}

		log.Println("Access request notes update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update notes", "NOTES_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Stats returns request counts per status
// @Summary Access Request Stats
// @Tags AdminAccessRequests
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.AccessRequestStatsResponse} "Counts per status"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/access-requests/stats [get]
func (h *AdminAccessRequestHandler) Stats(c fiber.Ctx) error {
	result, err := h.flow.Stats(h.createRequestContext(c, "/api/v1/admin/access-requests/stats"))
	if err != nil {
		log.Println("Access request stats failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute stats", "STATS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

func (h *AdminAccessRequestHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, 30*time.Second)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
