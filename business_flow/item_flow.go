// Package businessflow contains the core business logic and use cases for the access and property workflows
package businessflow

import (
	"context"
	"fmt"

	"github.com/faqbnb/faqbnb-api/app/dto"
	"github.com/faqbnb/faqbnb-api/app/services"
	"github.com/faqbnb/faqbnb-api/models"
	"github.com/faqbnb/faqbnb-api/repository"
	"github.com/faqbnb/faqbnb-api/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ItemFlow handles item management inside properties. Ownership follows the
// property: an item is accessible exactly when its property belongs to the
// acting account.
type ItemFlow interface {
	Create(ctx context.Context, accountID uint, propertyUUID uuid.UUID, req *dto.CreateItemRequest, metadata *ClientMetadata) (*dto.ItemResponse, error)
	Get(ctx context.Context, accountID uint, publicID uuid.UUID) (*dto.ItemResponse, error)
	ListByProperty(ctx context.Context, accountID uint, propertyUUID uuid.UUID) (*dto.ItemListResponse, error)
	Update(ctx context.Context, accountID uint, publicID uuid.UUID, req *dto.UpdateItemRequest) (*dto.ItemResponse, error)
	Delete(ctx context.Context, accountID uint, publicID uuid.UUID, metadata *ClientMetadata) error
}

// ItemFlowImpl implements the item business flow
type ItemFlowImpl struct {
	propertyRepo repository.PropertyRepository
	itemRepo     repository.ItemRepository
	auditRepo    repository.AuditLogRepository
	qrSvc        services.QRService
	db           *gorm.DB
}

// NewItemFlow creates a new item flow instance
func NewItemFlow(
	propertyRepo repository.PropertyRepository,
	itemRepo repository.ItemRepository,
	auditRepo repository.AuditLogRepository,
	qrSvc services.QRService,
	db *gorm.DB,
) ItemFlow {
	return &ItemFlowImpl{
		propertyRepo: propertyRepo,
		itemRepo:     itemRepo,
		auditRepo:    auditRepo,
		qrSvc:        qrSvc,
		db:           db,
	}
}

// Create adds an item to a property. The public ID and QR URL are minted
// here and never change for the life of the item.
func (s *ItemFlowImpl) Create(ctx context.Context, accountID uint, propertyUUID uuid.UUID, req *dto.CreateItemRequest, metadata *ClientMetadata) (*dto.ItemResponse, error) {
	property, err := s.ownedProperty(ctx, accountID, propertyUUID)
	if err != nil {
		return nil, err
	}

	for _, link := range req.ResourceLinks {
		if !models.IsValidLinkType(link.LinkType) {
			return nil, NewBusinessError("INVALID_LINK_TYPE", "Invalid resource link type", ErrInvalidLinkType)
		}
	}

	publicID := uuid.New()
	qrURL := s.qrSvc.ItemURL(publicID)

	var item *models.Item
	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		item = &models.Item{
			PublicID:     publicID,
			PropertyID:   property.ID,
			Name:         req.Name,
			Description:  req.Description,
			QRCodeURL:    &qrURL,
			DisplayOrder: req.DisplayOrder,
		}
		if err := s.itemRepo.Save(txCtx, item); err != nil {
			return err
		}

		if len(req.ResourceLinks) > 0 {
			links := toResourceLinkModels(req.ResourceLinks)
			if err := s.itemRepo.ReplaceResourceLinks(txCtx, item.ID, links); err != nil {
				return err
			}
		}

		item, err = s.itemRepo.ByPublicIDWithLinks(txCtx, publicID)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrItemNotFound
		}
		return nil
	})

	if err != nil {
		return nil, NewBusinessError("ITEM_CREATE_FAILED", "Failed to create item", err)
	}

	msg := fmt.Sprintf("Item created: %d (%s) in property %d", item.ID, item.Name, property.ID)
	_ = s.createAuditLog(ctx, models.AuditActionItemCreated, msg, true, nil, metadata)

	return &dto.ItemResponse{
		Message: "Item created",
		Item:    ToItemDTO(*item),
	}, nil
}

// Get returns one item of the account, links included
func (s *ItemFlowImpl) Get(ctx context.Context, accountID uint, publicID uuid.UUID) (*dto.ItemResponse, error) {
	item, err := s.ownedItem(ctx, accountID, publicID)
	if err != nil {
		return nil, err
	}

	return &dto.ItemResponse{
		Message: "Item retrieved",
		Item:    ToItemDTO(*item),
	}, nil
}

// ListByProperty returns a property's items in display order
func (s *ItemFlowImpl) ListByProperty(ctx context.Context, accountID uint, propertyUUID uuid.UUID) (*dto.ItemListResponse, error) {
	property, err := s.ownedProperty(ctx, accountID, propertyUUID)
	if err != nil {
		return nil, err
	}

	items, err := s.itemRepo.ListByProperty(ctx, property.ID)
	if err != nil {
		return nil, NewBusinessError("ITEM_LIST_FAILED", "Failed to list items", err)
	}

	dtos := make([]dto.ItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, ToItemDTO(*item))
	}

	return &dto.ItemListResponse{
		Message: "Items retrieved",
		Items:   dtos,
	}, nil
}

// Update modifies an item. A non-nil ResourceLinks replaces the whole set.
func (s *ItemFlowImpl) Update(ctx context.Context, accountID uint, publicID uuid.UUID, req *dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := s.ownedItem(ctx, accountID, publicID)
	if err != nil {
		return nil, err
	}

	if req.ResourceLinks != nil {
		for _, link := range *req.ResourceLinks {
			if !models.IsValidLinkType(link.LinkType) {
				return nil, NewBusinessError("INVALID_LINK_TYPE", "Invalid resource link type", ErrInvalidLinkType)
			}
		}
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = req.Description
	}
	if req.DisplayOrder != nil {
		item.DisplayOrder = *req.DisplayOrder
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		if err := s.itemRepo.Update(txCtx, item); err != nil {
			return err
		}

		if req.ResourceLinks != nil {
			links := toResourceLinkModels(*req.ResourceLinks)
			if err := s.itemRepo.ReplaceResourceLinks(txCtx, item.ID, links); err != nil {
				return err
			}
		}

		item, err = s.itemRepo.ByPublicIDWithLinks(txCtx, publicID)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrItemNotFound
		}
		return nil
	})

	if err != nil {
		return nil, NewBusinessError("ITEM_UPDATE_FAILED", "Failed to update item", err)
	}

	return &dto.ItemResponse{
		Message: "Item updated",
		Item:    ToItemDTO(*item),
	}, nil
}

// Delete removes an item and its links, visits and reactions
func (s *ItemFlowImpl) Delete(ctx context.Context, accountID uint, publicID uuid.UUID, metadata *ClientMetadata) error {
	item, err := s.ownedItem(ctx, accountID, publicID)
	if err != nil {
		return err
	}

	if err := s.itemRepo.Delete(ctx, item.ID); err != nil {
		return NewBusinessError("ITEM_DELETE_FAILED", "Failed to delete item", err)
	}

	msg := fmt.Sprintf("Item deleted: %d (%s)", item.ID, item.Name)
	_ = s.createAuditLog(ctx, models.AuditActionItemDeleted, msg, true, nil, metadata)

	return nil
}

func (s *ItemFlowImpl) ownedProperty(ctx context.Context, accountID uint, propertyUUID uuid.UUID) (*models.Property, error) {
	property, err := s.propertyRepo.ByUUID(ctx, propertyUUID)
	if err != nil {
		return nil, NewBusinessError("PROPERTY_FETCH_FAILED", "Failed to fetch property", err)
	}
	if property == nil || property.AccountID != accountID {
		return nil, NewBusinessError("PROPERTY_NOT_FOUND", "Property not found", ErrPropertyNotFound)
	}
	return property, nil
}

// ownedItem loads an item with links and verifies its property belongs to
// the account. Foreign items read as not found.
func (s *ItemFlowImpl) ownedItem(ctx context.Context, accountID uint, publicID uuid.UUID) (*models.Item, error) {
	item, err := s.itemRepo.ByPublicIDWithLinks(ctx, publicID)
	if err != nil {
		return nil, NewBusinessError("ITEM_FETCH_FAILED", "Failed to fetch item", err)
	}
	if item == nil {
		return nil, NewBusinessError("ITEM_NOT_FOUND", "Item not found", ErrItemNotFound)
	}

	property, err := s.propertyRepo.ByID(ctx, item.PropertyID)
	if err != nil {
		return nil, NewBusinessError("ITEM_FETCH_FAILED", "Failed to fetch item", err)
	}
	if property == nil || property.AccountID != accountID {
		return nil, NewBusinessError("ITEM_NOT_FOUND", "Item not found", ErrItemNotFound)
	}

	return item, nil
}

func toResourceLinkModels(inputs []dto.ResourceLinkInput) []*models.ItemResourceLink {
	links := make([]*models.ItemResourceLink, 0, len(inputs))
	for _, in := range inputs {
		links = append(links, &models.ItemResourceLink{
			LinkType:     in.LinkType,
			Title:        in.Title,
			URL:          in.URL,
			ThumbnailURL: in.ThumbnailURL,
			DisplayOrder: in.DisplayOrder,
		})
	}
	return links
}

func (s *ItemFlowImpl) createAuditLog(ctx context.Context, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
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
