// Package businessflow contains the core business logic and use cases for the access and property workflows
package businessflow

import (
	"context"

	"github.com/faqbnb/faqbnb-api/app/dto"
	"github.com/faqbnb/faqbnb-api/models"
	"github.com/faqbnb/faqbnb-api/repository"
	"github.com/faqbnb/faqbnb-api/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PublicItemFlow serves the unauthenticated item page behind a QR scan.
// Viewing an item records a visit; reactions toggle per anonymous session.
type PublicItemFlow interface {
	View(ctx context.Context, publicID uuid.UUID, sessionID *string, metadata *ClientMetadata) (*dto.PublicItemResponse, error)
	React(ctx context.Context, publicID uuid.UUID, req *dto.ReactionRequest) (*dto.ReactionResponse, error)
	RemoveReaction(ctx context.Context, publicID uuid.UUID, req *dto.ReactionRequest) (*dto.ReactionResponse, error)
}

// PublicItemFlowImpl implements the public item business flow
type PublicItemFlowImpl struct {
	itemRepo     repository.ItemRepository
	visitRepo    repository.ItemVisitRepository
	reactionRepo repository.ItemReactionRepository
	db           *gorm.DB
}

// NewPublicItemFlow creates a new public item flow instance
func NewPublicItemFlow(
	itemRepo repository.ItemRepository,
	visitRepo repository.ItemVisitRepository,
	reactionRepo repository.ItemReactionRepository,
	db *gorm.DB,
) PublicItemFlow {
	return &PublicItemFlowImpl{
		itemRepo:     itemRepo,
		visitRepo:    visitRepo,
		reactionRepo: reactionRepo,
		db:           db,
	}
}

// View returns the public item content and records the visit. A failed
// visit write never blocks the page.
func (s *PublicItemFlowImpl) View(ctx context.Context, publicID uuid.UUID, sessionID *string, metadata *ClientMetadata) (*dto.PublicItemResponse, error) {
	item, err := s.itemRepo.ByPublicIDWithLinks(ctx, publicID)
	if err != nil {
		return nil, NewBusinessError("ITEM_FETCH_FAILED", "Failed to fetch item", err)
	}
	if item == nil {
		return nil, NewBusinessError("ITEM_NOT_FOUND", "Item not found", ErrItemNotFound)
	}

	visit := &models.ItemVisit{
		ItemID:    item.ID,
		SessionID: sessionID,
		VisitedAt: utils.UTCNow(),
	}
	if metadata != nil {
		visit.IPAddress = &metadata.IPAddress
		visit.UserAgent = &metadata.UserAgent
	}
	_ = s.visitRepo.Save(ctx, visit)

	reactions, err := s.reactionRepo.CountByType(ctx, item.ID)
	if err != nil {
		return nil, NewBusinessError("ITEM_FETCH_FAILED", "Failed to fetch item reactions", err)
	}

	resp := &dto.PublicItemResponse{
		PublicID:    item.PublicID.String(),
		Name:        item.Name,
		Description: item.Description,
		Reactions:   reactions,
	}
	for _, link := range item.ResourceLinks {
		resp.ResourceLinks = append(resp.ResourceLinks, ToResourceLinkDTO(link))
	}

	return resp, nil
}

// React records a reaction for an anonymous session. The unique index on
// (item, session, type) makes a repeat submission a no-op rather than a
// duplicate.
func (s *PublicItemFlowImpl) React(ctx context.Context, publicID uuid.UUID, req *dto.ReactionRequest) (*dto.ReactionResponse, error) {
	if !models.IsValidReactionType(req.ReactionType) {
		return nil, NewBusinessError("INVALID_REACTION_TYPE", "Invalid reaction type", ErrInvalidReactionType)
	}

	item, err := s.itemRepo.ByPublicID(ctx, publicID)
	if err != nil {
		return nil, NewBusinessError("ITEM_FETCH_FAILED", "Failed to fetch item", err)
	}
	if item == nil {
		return nil, NewBusinessError("ITEM_NOT_FOUND", "Item not found", ErrItemNotFound)
	}

	existing, err := s.reactionRepo.Exists(ctx, models.ItemReactionFilter{
		ItemID:       &item.ID,
		SessionID:    &req.SessionID,
		ReactionType: &req.ReactionType,
	})
	if err != nil {
		return nil, NewBusinessError("REACTION_FAILED", "Failed to record reaction", err)
	}

	if !existing {
		reaction := &models.ItemReaction{
			ItemID:       item.ID,
			SessionID:    req.SessionID,
			ReactionType: req.ReactionType,
		}
		if err := s.reactionRepo.Save(ctx, reaction); err != nil {
			return nil, NewBusinessError("REACTION_FAILED", "Failed to record reaction", err)
		}
	}

	return s.reactionResponse(ctx, item.ID, "Reaction recorded")
}

// RemoveReaction deletes the session's reaction of the given type
func (s *PublicItemFlowImpl) RemoveReaction(ctx context.Context, publicID uuid.UUID, req *dto.ReactionRequest) (*dto.ReactionResponse, error) {
	if !models.IsValidReactionType(req.ReactionType) {
		return nil, NewBusinessError("INVALID_REACTION_TYPE", "Invalid reaction type", ErrInvalidReactionType)
	}

	item, err := s.itemRepo.ByPublicID(ctx, publicID)
	if err != nil {
		return nil, NewBusinessError("ITEM_FETCH_FAILED", "Failed to fetch item", err)
	}
	if item == nil {
		return nil, NewBusinessError("ITEM_NOT_FOUND", "Item not found", ErrItemNotFound)
	}

	if err := s.reactionRepo.DeleteBySession(ctx, item.ID, req.SessionID, req.ReactionType); err != nil {
		return nil, NewBusinessError("REACTION_FAILED", "Failed to remove reaction", err)
	}

	return s.reactionResponse(ctx, item.ID, "Reaction removed")
}

func (s *PublicItemFlowImpl) reactionResponse(ctx context.Context, itemID uint, message string) (*dto.ReactionResponse, error) {
	reactions, err := s.reactionRepo.CountByType(ctx, itemID)
	if err != nil {
		return nil, NewBusinessError("REACTION_FAILED", "Failed to fetch reaction counts", err)
	}

	return &dto.ReactionResponse{
		Message:   message,
		Reactions: reactions,
	}, nil
}
