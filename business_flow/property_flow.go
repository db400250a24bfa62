// Package businessflow contains the core business logic and use cases for the access and property workflows
package businessflow

import (
	"context"
	"fmt"

	"github.com/faqbnb/faqbnb-api/app/dto"
	"github.com/faqbnb/faqbnb-api/models"
	"github.com/faqbnb/faqbnb-api/repository"
	"github.com/faqbnb/faqbnb-api/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PropertyFlow handles property management for an account. Every operation
// takes the acting user's account ID and checks ownership exactly once,
// before anything else happens.
type PropertyFlow interface {
	Create(ctx context.Context, accountID uint, req *dto.CreatePropertyRequest, metadata *ClientMetadata) (*dto.PropertyResponse, error)
	Get(ctx context.Context, accountID uint, propertyUUID uuid.UUID) (*dto.PropertyResponse, error)
	List(ctx context.Context, accountID uint, req *dto.PropertyListRequest) (*dto.PropertyListResponse, error)
	Update(ctx context.Context, accountID uint, propertyUUID uuid.UUID, req *dto.UpdatePropertyRequest) (*dto.PropertyResponse, error)
	Delete(ctx context.Context, accountID uint, propertyUUID uuid.UUID, metadata *ClientMetadata) error
}

// PropertyFlowImpl implements the property business flow
type PropertyFlowImpl struct {
	propertyRepo repository.PropertyRepository
	itemRepo     repository.ItemRepository
	auditRepo    repository.AuditLogRepository
	db           *gorm.DB
}

// NewPropertyFlow creates a new property flow instance
func NewPropertyFlow(
	propertyRepo repository.PropertyRepository,
	itemRepo repository.ItemRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) PropertyFlow {
	return &PropertyFlowImpl{
		propertyRepo: propertyRepo,
		itemRepo:     itemRepo,
		auditRepo:    auditRepo,
		db:           db,
	}
}

// Create adds a property to the account
func (s *PropertyFlowImpl) Create(ctx context.Context, accountID uint, req *dto.CreatePropertyRequest, metadata *ClientMetadata) (*dto.PropertyResponse, error) {
	if !models.IsValidPropertyType(req.PropertyType) {
		return nil, NewBusinessError("INVALID_PROPERTY_TYPE", "Invalid property type", ErrInvalidPropertyType)
	}

	property := &models.Property{
		UUID:         uuid.New(),
		AccountID:    accountID,
		Name:         req.Name,
		Nickname:     req.Nickname,
		Address:      req.Address,
		PropertyType: req.PropertyType,
	}

	if err := s.propertyRepo.Save(ctx, property); err != nil {
		return nil, NewBusinessError("PROPERTY_CREATE_FAILED", "Failed to create property", err)
	}

	msg := fmt.Sprintf("Property created: %d (%s)", property.ID, property.Name)
	_ = s.createAuditLog(ctx, models.AuditActionPropertyCreated, msg, true, nil, metadata)

	return &dto.PropertyResponse{
		Message:  "Property created",
		Property: ToPropertyDTO(*property, 0),
	}, nil
}

// Get returns one property of the account
func (s *PropertyFlowImpl) Get(ctx context.Context, accountID uint, propertyUUID uuid.UUID) (*dto.PropertyResponse, error) {
	property, err := s.ownedProperty(ctx, accountID, propertyUUID)
	if err != nil {
		return nil, err
	}

	itemCount, err := s.itemRepo.Count(ctx, models.ItemFilter{PropertyID: &property.ID})
	if err != nil {
		return nil, NewBusinessError("PROPERTY_FETCH_FAILED", "Failed to fetch property", err)
	}

	return &dto.PropertyResponse{
		Message:  "Property retrieved",
		Property: ToPropertyDTO(*property, itemCount),
	}, nil
}

// List returns the account's properties, newest first
func (s *PropertyFlowImpl) List(ctx context.Context, accountID uint, req *dto.PropertyListRequest) (*dto.PropertyListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	total, err := s.propertyRepo.Count(ctx, models.PropertyFilter{AccountID: &accountID})
	if err != nil {
		return nil, NewBusinessError("PROPERTY_LIST_FAILED", "Failed to list properties", err)
	}

	properties, err := s.propertyRepo.ListByAccount(ctx, accountID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("PROPERTY_LIST_FAILED", "Failed to list properties", err)
	}

	items := make([]dto.PropertyDTO, 0, len(properties))
	for _, p := range properties {
		itemCount, err := s.itemRepo.Count(ctx, models.ItemFilter{PropertyID: &p.ID})
		if err != nil {
			return nil, NewBusinessError("PROPERTY_LIST_FAILED", "Failed to list properties", err)
		}
		items = append(items, ToPropertyDTO(*p, itemCount))
	}

	return &dto.PropertyListResponse{
		Message:  "Properties retrieved",
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Update modifies a property's mutable fields
func (s *PropertyFlowImpl) Update(ctx context.Context, accountID uint, propertyUUID uuid.UUID, req *dto.UpdatePropertyRequest) (*dto.PropertyResponse, error) {
	property, err := s.ownedProperty(ctx, accountID, propertyUUID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		property.Name = *req.Name
	}
	if req.Nickname != nil {
		property.Nickname = req.Nickname
	}
	if req.Address != nil {
		property.Address = req.Address
	}
	if req.PropertyType != nil {
		if !models.IsValidPropertyType(*req.PropertyType) {
			return nil, NewBusinessError("INVALID_PROPERTY_TYPE", "Invalid property type", ErrInvalidPropertyType)
		}
		property.PropertyType = *req.PropertyType
	}

	if err := s.propertyRepo.Update(ctx, property); err != nil {
		return nil, NewBusinessError("PROPERTY_UPDATE_FAILED", "Failed to update property", err)
	}

	itemCount, err := s.itemRepo.Count(ctx, models.ItemFilter{PropertyID: &property.ID})
	if err != nil {
		return nil, NewBusinessError("PROPERTY_UPDATE_FAILED", "Failed to update property", err)
	}

	return &dto.PropertyResponse{
		Message:  "Property updated",
		Property: ToPropertyDTO(*property, itemCount),
	}, nil
}

// Delete removes a property and everything under it
func (s *PropertyFlowImpl) Delete(ctx context.Context, accountID uint, propertyUUID uuid.UUID, metadata *ClientMetadata) error {
	property, err := s.ownedProperty(ctx, accountID, propertyUUID)
	if err != nil {
		return err
	}

	if err := s.propertyRepo.Delete(ctx, property.ID); err != nil {
		return NewBusinessError("PROPERTY_DELETE_FAILED", "Failed to delete property", err)
	}

	msg := fmt.Sprintf("Property deleted: %d (%s)", property.ID, property.Name)
	_ = s.createAuditLog(ctx, models.AuditActionPropertyDeleted, msg, true, nil, metadata)

	return nil
}

// ownedProperty loads a property and verifies it belongs to the account.
// A property of another account reads as not found, not as forbidden.
func (s *PropertyFlowImpl) ownedProperty(ctx context.Context, accountID uint, propertyUUID uuid.UUID) (*models.Property, error) {
	property, err := s.propertyRepo.ByUUID(ctx, propertyUUID)
	if err != nil {
		return nil, NewBusinessError("PROPERTY_FETCH_FAILED", "Failed to fetch property", err)
	}
	if property == nil || property.AccountID != accountID {
		return nil, NewBusinessError("PROPERTY_NOT_FOUND", "Property not found", ErrPropertyNotFound)
	}
	return property, nil
}

func (s *PropertyFlowImpl) createAuditLog(ctx context.Context, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errorMsg,
	}

	requestID := ctx.Value(RequestIDKey)
	if requestID != nil {
		if requestIDStr, ok := requestID.(string); ok {
			audit.RequestID = &requestIDStr
		}
	}

	return s.auditRepo.Save(ctx, audit)
}
