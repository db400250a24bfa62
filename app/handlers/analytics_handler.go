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
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// AnalyticsHandlerInterface defines the contract for analytics handlers
type AnalyticsHandlerInterface interface {
	Dashboard(c fiber.Ctx) error
	ItemAnalytics(c fiber.Ctx) error
	ExportReport(c fiber.Ctx) error
	AdminExportReport(c fiber.Ctx) error
	SystemStats(c fiber.Ctx) error
}

// AnalyticsHandler serves the account dashboard, per-item analytics, the
// XLSX export, and the admin system stats.
type AnalyticsHandler struct {
	flow businessflow.AnalyticsFlow
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(flow businessflow.AnalyticsFlow) *AnalyticsHandler {
	return &AnalyticsHandler{flow: flow}
}

func (h *AnalyticsHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AnalyticsHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Dashboard returns the account dashboard stats
// @Summary Dashboard Stats
// @Description Property and item counts, recent visit volume, top items, and reaction totals
// @Tags Analytics
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.DashboardStatsResponse} "Dashboard stats"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/user/analytics/dashboard [get]
func (h *AnalyticsHandler) Dashboard(c fiber.Ctx) error {
	accountID, ok := middleware.GetAccountIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	result, err := h.flow.DashboardStats(h.createRequestContext(c, "/api/v1/user/analytics/dashboard"), accountID)
	if err != nil {
		log.Println("Dashboard stats failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute dashboard stats", "STATS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ItemAnalytics returns windowed visit and reaction analytics for one item
// @Summary Item Analytics
// @Tags Analytics
// @Produce json
// @Param publicID path string true "Item public ID"
// @Success 200 {object} dto.APIResponse{data=dto.ItemAnalyticsResponse} "Item analytics"
// @Failure 404 {object} dto.APIResponse "Item not found"
// @Router /api/v1/user/analytics/items/{publicID} [get]
func (h *AnalyticsHandler) ItemAnalytics(c fiber.Ctx) error {
	accountID, ok := middleware.GetAccountIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	publicID, err := uuid.Parse(c.Params("publicID"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid item ID", "INVALID_UUID", nil)
	}

	result, err := h.flow.ItemAnalytics(h.createRequestContext(c, "/api/v1/user/analytics/items/"+c.Params("publicID")), accountID, publicID)
	if err != nil {
		if businessflow.IsItemNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Item not found", "ITEM_NOT_FOUND", nil)
		}

		log.Println("Item analytics failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute item analytics", "ANALYTICS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ExportReport streams the account report as an XLSX workbook
// @Summary Export Account Report
// @Description One sheet per property, one row per item with visit and reaction totals
// @Tags Analytics
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary "XLSX workbook"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/user/analytics/export [get]
func (h *AnalyticsHandler) ExportReport(c fiber.Ctx) error {
	accountID, ok := middleware.GetAccountIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	filename, report, err := h.flow.ExportAccountReport(h.createRequestContext(c, "/api/v1/user/analytics/export"), accountID)
	if err != nil {
		log.Println("Report export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export report", "EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(report)
}

// AdminExportReport streams the report for any account as an XLSX workbook
// @Summary Export Account Report (admin)
// @Tags AdminAnalytics
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path int true "Account ID"
// @Success 200 {file} binary "XLSX workbook"
// @Failure 404 {object} dto.APIResponse "Account not found"
// @Router /api/v1/admin/accounts/{id}/export [get]
func (h *AnalyticsHandler) AdminExportReport(c fiber.Ctx) error {
	accountID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid account ID", "INVALID_ID", nil)
	}

	filename, report, err := h.flow.ExportAccountReport(h.createRequestContext(c, "/api/v1/admin/accounts/"+c.Params("id")+"/export"), uint(accountID))
	if err != nil {
		if businessflow.IsAccountNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil)
		}

		log.Println("Admin report export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export report", "EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(report)
}

// SystemStats returns whole-system counts for the admin dashboard
// @Summary System Stats
// @Tags AdminAnalytics
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.AdminSystemStatsResponse} "System stats"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/stats [get]
func (h *AnalyticsHandler) SystemStats(c fiber.Ctx) error {
	result, err := h.flow.SystemStats(h.createRequestContext(c, "/api/v1/admin/stats"))
	if err != nil {
		log.Println("System stats failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute system stats", "STATS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

func (h *AnalyticsHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	// Exports walk every item of the account, give them room
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, 60*time.Second)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
