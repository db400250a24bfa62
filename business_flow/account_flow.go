// Package businessflow contains the core business logic and use cases for the access and property workflows
package businessflow

import (
	"context"
	"time"

	"github.com/faqbnb/faqbnb-api/app/dto"
	"github.com/faqbnb/faqbnb-api/models"
	"github.com/faqbnb/faqbnb-api/repository"
	"github.com/faqbnb/faqbnb-api/utils"
)

// AccountFlow serves the authenticated profile view and the admin account list
type AccountFlow interface {
	Profile(ctx context.Context, userID uint) (*dto.ProfileResponse, error)
	ListAccounts(ctx context.Context, req *dto.AccountListRequest) (*dto.AccountListResponse, error)
}

// AccountFlowImpl implements the account business flow
type AccountFlowImpl struct {
	accountRepo  repository.AccountRepository
	userRepo     repository.UserRepository
	propertyRepo repository.PropertyRepository
}

// NewAccountFlow creates a new account flow instance
func NewAccountFlow(
	accountRepo repository.AccountRepository,
	userRepo repository.UserRepository,
	propertyRepo repository.PropertyRepository,
) AccountFlow {
	return &AccountFlowImpl{
		accountRepo:  accountRepo,
		userRepo:     userRepo,
		propertyRepo: propertyRepo,
	}
}

// Profile returns the current user together with their account
func (s *AccountFlowImpl) Profile(ctx context.Context, userID uint) (*dto.ProfileResponse, error) {
	user, err := s.userRepo.ByID(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("PROFILE_FAILED", "Failed to load profile", err)
	}
	if user == nil {
		return nil, NewBusinessError("USER_NOT_FOUND", "User not found", ErrUserNotFound)
	}

	resp := &dto.ProfileResponse{
		Message: "Profile retrieved",
		User:    ToAuthUserDTO(*user),
	}

	if user.AccountID != nil {
		account, err := s.accountRepo.ByID(ctx, *user.AccountID)
		if err != nil {
			return nil, NewBusinessError("PROFILE_FAILED", "Failed to load account", err)
		}
		if account != nil {
			d, err := s.toAccountDTO(ctx, account)
			if err != nil {
				return nil, NewBusinessError("PROFILE_FAILED", "Failed to load account", err)
			}
			resp.Account = &d
		}
	}

	return resp, nil
}

// ListAccounts returns the paginated admin view of accounts
func (s *AccountFlowImpl) ListAccounts(ctx context.Context, req *dto.AccountListRequest) (*dto.AccountListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	filter := models.AccountFilter{}
	if req.OnlyActive {
		filter.IsActive = utils.ToPtr(true)
	}

	total, err := s.accountRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("ACCOUNT_LIST_FAILED", "Failed to count accounts", err)
	}

	accounts, err := s.accountRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("ACCOUNT_LIST_FAILED", "Failed to list accounts", err)
	}

	items := make([]dto.AccountDTO, 0, len(accounts))
	for _, account := range accounts {
		d, err := s.toAccountDTO(ctx, account)
		if err != nil {
			return nil, NewBusinessError("ACCOUNT_LIST_FAILED", "Failed to list accounts", err)
		}
		items = append(items, d)
	}

	return &dto.AccountListResponse{
		Message:  "Accounts retrieved",
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *AccountFlowImpl) toAccountDTO(ctx context.Context, account *models.Account) (dto.AccountDTO, error) {
	d := dto.AccountDTO{
		ID:        account.ID,
		UUID:      account.UUID.String(),
		Name:      account.Name,
		IsActive:  account.IsActive,
		CreatedAt: account.CreatedAt.Format(time.RFC3339),
	}

	propertyCount, err := s.propertyRepo.Count(ctx, models.PropertyFilter{AccountID: &account.ID})
	if err != nil {
		return d, err
	}
	d.PropertyCount = propertyCount

	if account.OwnerID != nil {
		owner, err := s.userRepo.ByID(ctx, *account.OwnerID)
		if err != nil {
			return d, err
		}
		if owner != nil {
			d.OwnerEmail = &owner.Email
		}
	}

	return d, nil
}
