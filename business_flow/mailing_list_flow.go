// Package businessflow contains the core business logic and use cases for the access and property workflows
package businessflow

import (
	"context"

	"github.com/faqbnb/faqbnb-api/app/dto"
	"github.com/faqbnb/faqbnb-api/models"
	"github.com/faqbnb/faqbnb-api/repository"
	"github.com/faqbnb/faqbnb-api/utils"
	"gorm.io/gorm"
)

// MailingListFlow handles public subscribe and unsubscribe plus the admin
// subscriber list. Addresses are stored once; unsubscribing keeps the row
// and stamps unsubscribed_at so a later subscribe reactivates it.
type MailingListFlow interface {
	Subscribe(ctx context.Context, req *dto.SubscribeRequest, metadata *ClientMetadata) (*dto.SubscribeResponse, error)
	Unsubscribe(ctx context.Context, req *dto.UnsubscribeRequest) (*dto.UnsubscribeResponse, error)
	List(ctx context.Context, req *dto.SubscriberListRequest) (*dto.SubscriberListResponse, error)
}

// MailingListFlowImpl implements the mailing list business flow
type MailingListFlowImpl struct {
	mailingRepo repository.MailingListRepository
	requestRepo repository.AccessRequestRepository
	rateLimiter RateLimiter
	db          *gorm.DB
}

// NewMailingListFlow creates a new mailing list flow instance
func NewMailingListFlow(
	mailingRepo repository.MailingListRepository,
	requestRepo repository.AccessRequestRepository,
	rateLimiter RateLimiter,
	db *gorm.DB,
) MailingListFlow {
	return &MailingListFlowImpl{
		mailingRepo: mailingRepo,
		requestRepo: requestRepo,
		rateLimiter: rateLimiter,
		db:          db,
	}
}

// Subscribe adds an address to the mailing list. A live subscription is
// reported as already subscribed; an unsubscribed address is reactivated.
func (s *MailingListFlowImpl) Subscribe(ctx context.Context, req *dto.SubscribeRequest, metadata *ClientMetadata) (*dto.SubscribeResponse, error) {
	if metadata != nil {
		allowed, _ := s.rateLimiter.Allow(ctx, "mailing_list", "ip:"+metadata.IPAddress, utils.PublicFormRateLimit, utils.RateLimitWindow)
		if !allowed {
			return nil, NewBusinessError("RATE_LIMITED", "Too many subscription attempts", ErrAccessRequestRateLimited)
		}
	}

	email := utils.NormalizeEmail(req.Email)
	source := "website"
	if req.Source != nil && *req.Source != "" {
		source = *req.Source
	}

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		existing, err := s.mailingRepo.ByEmail(txCtx, email)
		if err != nil {
			return err
		}

		if existing != nil {
			if existing.IsSubscribed() {
				return ErrAlreadySubscribed
			}
			return s.mailingRepo.Resubscribe(txCtx, existing.ID, utils.UTCNow())
		}

		subscriber := &models.MailingListSubscriber{
			Email:        email,
			Source:       source,
			SubscribedAt: utils.UTCNow(),
		}
		if err := s.mailingRepo.Save(txCtx, subscriber); err != nil {
			return err
		}

		// A first-time subscriber also lands on the beta waitlist. An open
		// request for the same email is left alone.
		existingRequest, err := s.requestRepo.LiveByEmail(txCtx, email)
		if err != nil {
			return err
		}
		if existingRequest == nil {
			request := &models.AccessRequest{
				RequesterEmail: email,
				Status:         models.AccessRequestStatusPending,
				Source:         models.AccessRequestSourceBetaWaitlist,
				RequestDate:    utils.UTCNow(),
				UpdatedAt:      utils.UTCNow(),
			}
			return s.requestRepo.Save(txCtx, request)
		}
		return nil
	})

	if err != nil {
		if IsAlreadySubscribed(err) {
			return nil, NewBusinessError("ALREADY_SUBSCRIBED", "This email is already subscribed", err)
		}
		return nil, NewBusinessError("SUBSCRIBE_FAILED", "Failed to subscribe", err)
	}

	return &dto.SubscribeResponse{
		Message:    "You are on the list.",
		Subscribed: true,
	}, nil
}

// Unsubscribe removes an address from the active list
func (s *MailingListFlowImpl) Unsubscribe(ctx context.Context, req *dto.UnsubscribeRequest) (*dto.UnsubscribeResponse, error) {
	email := utils.NormalizeEmail(req.Email)

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		existing, err := s.mailingRepo.ByEmail(txCtx, email)
		if err != nil {
			return err
		}
		if existing == nil || !existing.IsSubscribed() {
			return ErrNotSubscribed
		}

		return s.mailingRepo.Unsubscribe(txCtx, existing.ID, utils.UTCNow())
	})

	if err != nil {
		if IsNotSubscribed(err) {
			return nil, NewBusinessError("NOT_SUBSCRIBED", "This email is not subscribed", err)
		}
		return nil, NewBusinessError("UNSUBSCRIBE_FAILED", "Failed to unsubscribe", err)
	}

	return &dto.UnsubscribeResponse{
		Message: "You have been unsubscribed.",
	}, nil
}

// List returns a page of subscribers for the admin dashboard
func (s *MailingListFlowImpl) List(ctx context.Context, req *dto.SubscriberListRequest) (*dto.SubscriberListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	filter := models.MailingListSubscriberFilter{}
	if req.OnlyActive {
		filter.IsSubscribed = utils.ToPtr(true)
	}

	subscribers, err := s.mailingRepo.ByFilter(ctx, filter, "subscribed_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("SUBSCRIBER_LIST_FAILED", "Failed to list subscribers", err)
	}

	total, err := s.mailingRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("SUBSCRIBER_LIST_FAILED", "Failed to count subscribers", err)
	}

	items := make([]dto.SubscriberDTO, 0, len(subscribers))
	for _, subscriber := range subscribers {
		items = append(items, ToSubscriberDTO(*subscriber))
	}

	return &dto.SubscriberListResponse{
		Message:  "Subscribers retrieved",
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}
