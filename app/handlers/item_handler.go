package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/faqbnb/faqbnb-api/app/dto"
	"github.com/faqbnb/faqbnb-api/app/middleware"
	businessflow "github.com/faqbnb/faqbnb-api/business_flow"
	"github.com/faqbnb/faqbnb-api/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// ItemHandlerInterface defines the contract for item handlers
type ItemHandlerInterface interface {
	Create(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	ListByProperty(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	QRCode(c fiber.Ctx) error
}

// ItemHandler handles item management HTTP requests. Items are addressed by
// their public ID on these routes too, but ownership is always checked.
type ItemHandler struct {
	itemFlow     businessflow.ItemFlow
	qrExportFlow businessflow.QRExportFlow
	validator    *validator.Validate
}

// NewItemHandler creates a new item handler
func NewItemHandler(itemFlow businessflow.ItemFlow, qrExportFlow businessflow.QRExportFlow) *ItemHandler {
	return &ItemHandler{
		itemFlow:     itemFlow,
		qrExportFlow: qrExportFlow,
		validator:    newValidator(),
	}
}

func (h *ItemHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ItemHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Create handles item creation under a property
// @Summary Create Item
// @Tags Items
// @Accept json
// @Produce json
// @Param uuid path string true "Property UUID"
// @Param request body dto.CreateItemRequest true "Item data"
// @Success 201 {object} dto.APIResponse{data=dto.ItemResponse} "Item created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Property not found"
// @Router /api/v1/user/properties/{uuid}/items [post]
func (h *ItemHandler) Create(c fiber.Ctx) error {
	accountID, ok := middleware.GetAccountIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	propertyUUID, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid property UUID", "INVALID_UUID", nil)
	}

	var req dto.CreateItemRequest
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

	result, err := h.itemFlow.Create(h.createRequestContext(c, "/api/v1/user/properties/"+c.Params("uuid")+"/items"), accountID, propertyUUID, &req, metadata)
	if err != nil {
		if businessflow.IsPropertyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Property not found", "PROPERTY_NOT_FOUND", nil)
		}

		log.Println("Item creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create item", "ITEM_CREATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// Get returns one item with its resource links
// @Summary Get Item
// @Tags Items
// @Produce json
// @Param publicID path string true "Item public ID"
// @Success 200 {object} dto.APIResponse{data=dto.ItemResponse} "Item"
// @Failure 404 {object} dto.APIResponse "Item not found"
// @Router /api/v1/user/items/{publicID} [get]
func (h *ItemHandler) Get(c fiber.Ctx) error {
	accountID, ok := middleware.GetAccountIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	publicID, err := uuid.Parse(c.Params("publicID"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid item ID", "INVALID_UUID", nil)
	}

	result, err := h.itemFlow.Get(h.createRequestContext(c, "/api/v1/user/items/"+c.Params("publicID")), accountID, publicID)
	if err != nil {
		if businessflow.IsItemNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Item not found", "ITEM_NOT_FOUND", nil)
		}

		log.Println("Item fetch failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch item", "ITEM_FETCH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ListByProperty returns a property's items ordered for display
// @Summary List Items
// @Tags Items
// @Produce json
// @Param uuid path string true "Property UUID"
// @Success 200 {object} dto.APIResponse{data=dto.ItemListResponse} "Item list"
// @Failure 404 {object} dto.APIResponse "Property not found"
// @Router /api/v1/user/properties/{uuid}/items [get]
func (h *ItemHandler) ListByProperty(c fiber.Ctx) error {
	accountID, ok := middleware.GetAccountIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	propertyUUID, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid property UUID", "INVALID_UUID", nil)
	}

	result, err := h.itemFlow.ListByProperty(h.createRequestContext(c, "/api/v1/user/properties/"+c.Params("uuid")+"/items"), accountID, propertyUUID)
	if err != nil {
		if businessflow.IsPropertyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Property not found", "PROPERTY_NOT_FOUND", nil)
		}

		log.Println("Item list failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list items", "ITEM_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Update handles item updates. A resource_links field in the body replaces
// the entire link set.
// @Summary Update Item
// @Tags Items
// @Accept json
// @Produce json
// @Param publicID path string true "Item public ID"
// @Param request body dto.UpdateItemRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.ItemResponse} "Item updated"
// @Failure 404 {object} dto.APIResponse "Item not found"
// @Router /api/v1/user/items/{publicID} [put]
func (h *ItemHandler) Update(c fiber.Ctx) error {
	accountID, ok := middleware.GetAccountIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	publicID, err := uuid.Parse(c.Params("publicID"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid item ID", "INVALID_UUID", nil)
	}

	var req dto.UpdateItemRequest
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

	result, err := h.itemFlow.Update(h.createRequestContext(c, "/api/v1/user/items/"+c.Params("publicID")), accountID, publicID, &req)
	if err != nil {
		if businessflow.IsItemNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Item not found", "ITEM_NOT_FOUND", nil)
		}

		log.Println("Item update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update item", "ITEM_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Delete removes an item with its links, visits, and reactions
// @Summary Delete Item
// @Tags Items
// @Produce json
// @Param publicID path string true "Item public ID"
// @Success 200 {object} dto.APIResponse "Item deleted"
// @Failure 404 {object} dto.APIResponse "Item not found"
// @Router /api/v1/user/items/{publicID} [delete]
func (h *ItemHandler) Delete(c fiber.Ctx) error {
	accountID, ok := middleware.GetAccountIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	publicID, err := uuid.Parse(c.Params("publicID"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid item ID", "INVALID_UUID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	err = h.itemFlow.Delete(h.createRequestContext(c, "/api/v1/user/items/"+c.Params("publicID")), accountID, publicID, metadata)
	if err != nil {
		if businessflow.IsItemNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Item not found", "ITEM_NOT_FOUND", nil)
		}

		log.Println("Item deletion failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete item", "ITEM_DELETE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Item deleted", nil)
}

// QRCode renders the item's QR code as a PNG
// @Summary Item QR Code
// @Tags Items
// @Produce image/png
// @Param publicID path string true "Item public ID"
// @Param size query int false "Image size in pixels"
// @Success 200 {file} binary "PNG image"
// @Failure 404 {object} dto.APIResponse "Item not found"
// @Router /api/v1/user/items/{publicID}/qr [get]
func (h *ItemHandler) QRCode(c fiber.Ctx) error {
	accountID, ok := middleware.GetAccountIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	publicID, err := uuid.Parse(c.Params("publicID"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid item ID", "INVALID_UUID", nil)
	}

	sizePx := 0
	if raw := c.Query("size"); raw != "" {
		sizePx, err = strconv.Atoi(raw)
		if err != nil || sizePx < 128 || sizePx > 1024 {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Size must be between 128 and 1024", "INVALID_SIZE", nil)
		}
	}

	png, err := h.qrExportFlow.ItemPNG(h.createRequestContext(c, "/api/v1/user/items/"+c.Params("publicID")+"/qr"), accountID, publicID, sizePx)
	if err != nil {
		if businessflow.IsItemNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Item not found", "ITEM_NOT_FOUND", nil)
		}

		log.Println("QR code render failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to render QR code", "QR_RENDER_FAILED", nil)
	}

	c.Set("Content-Type", "image/png")
	return c.Send(png)
}

func (h *ItemHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, 30*time.Second)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
