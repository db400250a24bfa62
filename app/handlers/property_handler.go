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

// PropertyHandlerInterface defines the contract for property handlers
type PropertyHandlerInterface interface {
	Create(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	List(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	QRSheet(c fiber.Ctx) error
}

// PropertyHandler handles property management HTTP requests. Every route is
// scoped to the authenticated user's account.
type PropertyHandler struct {
	propertyFlow businessflow.PropertyFlow
	qrExportFlow businessflow.QRExportFlow
	validator    *validator.Validate
}

// NewPropertyHandler creates a new property handler
func NewPropertyHandler(propertyFlow businessflow.PropertyFlow, qrExportFlow businessflow.QRExportFlow) *PropertyHandler {
	return &PropertyHandler{
		propertyFlow: propertyFlow,
		qrExportFlow: qrExportFlow,
		validator:    newValidator(),
	}
}

func (h *PropertyHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *PropertyHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Create handles property creation
// @Summary Create Property
// @Tags Properties
// @Accept json
// @Produce json
// @Param request body dto.CreatePropertyRequest true "Property data"
// @Success 201 {object} dto.APIResponse{data=dto.PropertyResponse} "Property created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/user/properties [post]
func (h *PropertyHandler) Create(c fiber.Ctx) error {
	accountID, ok := middleware.GetAccountIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.CreatePropertyRequest
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

	result, err := h.propertyFlow.Create(h.createRequestContext(c, "/api/v1/user/properties"), accountID, &req, metadata)
	if err != nil {
		log.Println("Property creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create property", "PROPERTY_CREATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// Get returns one property
// @Summary Get Property
// @Tags Properties
// @Produce json
// @Param uuid path string true "Property UUID"
// @Success 200 {object} dto.APIResponse{data=dto.PropertyResponse} "Property"
// @Failure 404 {object} dto.APIResponse "Property not found"
// @Router /api/v1/user/properties/{uuid} [get]
func (h *PropertyHandler) Get(c fiber.Ctx) error {
	accountID, ok := middleware.GetAccountIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	propertyUUID, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid property UUID", "INVALID_UUID", nil)
	}

	result, err := h.propertyFlow.Get(h.createRequestContext(c, "/api/v1/user/properties/"+c.Params("uuid")), accountID, propertyUUID)
	if err != nil {
		if businessflow.IsPropertyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Property not found", "PROPERTY_NOT_FOUND", nil)
		}

		log.Println("Property fetch failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch property", "PROPERTY_FETCH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// List returns the account's properties
// @Summary List Properties
// @Tags Properties
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PropertyListResponse} "Property list"
// @Router /api/v1/user/properties [get]
func (h *PropertyHandler) List(c fiber.Ctx) error {
	accountID, ok := middleware.GetAccountIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.PropertyListRequest
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

	result, err := h.propertyFlow.List(h.createRequestContext(c, "/api/v1/user/properties"), accountID, &req)
	if err != nil {
		log.Println("Property list failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list properties", "PROPERTY_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Update handles property updates
// @Summary Update Property
// @Tags Properties
// @Accept json
// @Produce json
// @Param uuid path string true "Property UUID"
// @Param request body dto.UpdatePropertyRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.PropertyResponse} "Property updated"
// @Failure 404 {object} dto.APIResponse "Property not found"
// @Router /api/v1/user/properties/{uuid} [put]
func (h *PropertyHandler) Update(c fiber.Ctx) error {
	accountID, ok := middleware.GetAccountIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	propertyUUID, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid property UUID", "INVALID_UUID", nil)
	}

	var req dto.UpdatePropertyRequest
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

	result, err := h.propertyFlow.Update(h.createRequestContext(c, "/api/v1/user/properties/"+c.Params("uuid")), accountID, propertyUUID, &req)
	if err != nil {
		if businessflow.IsPropertyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Property not found", "PROPERTY_NOT_FOUND", nil)
		}

		log.Println("Property update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update property", "PROPERTY_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Delete removes a property and everything under it
// @Summary Delete Property
// @Description Delete a property with all its items, links, visits, and reactions
// @Tags Properties
// @Produce json
// @Param uuid path string true "Property UUID"
// @Success 200 {object} dto.APIResponse "Property deleted"
// @Failure 404 {object} dto.APIResponse "Property not found"
// @Router /api/v1/user/properties/{uuid} [delete]
func (h *PropertyHandler) Delete(c fiber.Ctx) error {
	accountID, ok := middleware.GetAccountIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	propertyUUID, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid property UUID", "INVALID_UUID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	err = h.propertyFlow.Delete(h.createRequestContext(c, "/api/v1/user/properties/"+c.Params("uuid")), accountID, propertyUUID, metadata)
	if err != nil {
		if businessflow.IsPropertyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Property not found", "PROPERTY_NOT_FOUND", nil)
		}

		log.Println("Property deletion failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete property", "PROPERTY_DELETE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Property deleted", nil)
}

// QRSheet renders a printable PDF of QR codes for the property's items
// @Summary Export QR Sheet
// @Description Render an A4 PDF grid of QR codes for the property's items
// @Tags Properties
// @Accept json
// @Produce application/pdf
// @Param uuid path string true "Property UUID"
// @Param request body dto.QRSheetRequest false "Sheet options"
// @Success 200 {file} binary "PDF document"
// @Failure 404 {object} dto.APIResponse "Property not found"
// @Router /api/v1/user/properties/{uuid}/qr-sheet [post]
func (h *PropertyHandler) QRSheet(c fiber.Ctx) error {
	accountID, ok := middleware.GetAccountIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	propertyUUID, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid property UUID", "INVALID_UUID", nil)
	}

	var req dto.QRSheetRequest
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

	filename, sheet, err := h.qrExportFlow.PropertySheet(h.createRequestContext(c, "/api/v1/user/properties/"+c.Params("uuid")+"/qr-sheet"), accountID, propertyUUID, &req)
	if err != nil {
		if businessflow.IsPropertyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Property not found", "PROPERTY_NOT_FOUND", nil)
		}

		log.Println("QR sheet export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export QR sheet", "QR_EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(sheet)
}

func (h *PropertyHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, 30*time.Second)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
