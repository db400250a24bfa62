// Package businessflow contains the core business logic and use cases for the access and property workflows
package businessflow

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/faqbnb/faqbnb-api/app/dto"
	"github.com/faqbnb/faqbnb-api/app/services"
	"github.com/faqbnb/faqbnb-api/models"
	"github.com/faqbnb/faqbnb-api/repository"
	"github.com/faqbnb/faqbnb-api/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegistrationFlow turns an approved access request into a live account.
// The access code is consumed with a conditional update inside the same
// transaction that creates the account and user, so a code can never mint
// two accounts.
type RegistrationFlow interface {
	Register(ctx context.Context, req *dto.RegisterRequest, metadata *ClientMetadata) (*dto.RegisterResponse, error)
}

// RegistrationFlowImpl implements the registration business flow
type RegistrationFlowImpl struct {
	requestRepo  repository.AccessRequestRepository
	accountRepo  repository.AccountRepository
	userRepo     repository.UserRepository
	sessionRepo  repository.UserSessionRepository
	auditRepo    repository.AuditLogRepository
	tokenService services.TokenService
	rateLimiter  RateLimiter
	db           *gorm.DB
}

// NewRegistrationFlow creates a new registration flow instance
func NewRegistrationFlow(
	requestRepo repository.AccessRequestRepository,
	accountRepo repository.AccountRepository,
	userRepo repository.UserRepository,
	sessionRepo repository.UserSessionRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	rateLimiter RateLimiter,
	db *gorm.DB,
) RegistrationFlow {
	return &RegistrationFlowImpl{
		requestRepo:  requestRepo,
		accountRepo:  accountRepo,
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		auditRepo:    auditRepo,
		tokenService: tokenService,
		rateLimiter:  rateLimiter,
		db:           db,
	}
}

// Register completes the registration process
func (s *RegistrationFlowImpl) Register(ctx context.Context, req *dto.RegisterRequest, metadata *ClientMetadata) (*dto.RegisterResponse, error) {
	if metadata != nil {
		allowed, _ := s.rateLimiter.Allow(ctx, "registration", "ip:"+metadata.IPAddress, utils.RegistrationRateLimit, utils.RateLimitWindow)
		if !allowed {
			return nil, NewBusinessError("RATE_LIMITED", "Too many registration attempts", ErrRegistrationRateLimited)
		}
	}

	email := utils.NormalizeEmail(req.Email)

	var user *models.User
	var tokens struct {
		access  string
		refresh string
	}

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		request, err := s.requestRepo.ByAccessCode(txCtx, req.AccessCode)
		if err != nil {
			return err
		}
		if request == nil {
			return ErrAccessCodeNotFound
		}
		if request.IsRegistered() {
			return ErrAccessCodeAlreadyUsed
		}
		if !request.IsApproved() {
			return ErrInvalidAccessRequestStatus
		}
		if request.RequesterEmail != email {
			return ErrEmailMismatch
		}

		existing, err := s.userRepo.ByEmail(txCtx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrEmailAlreadyExists
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		account := &models.Account{
			UUID:     uuid.New(),
			Name:     req.AccountName,
			IsActive: utils.ToPtr(true),
		}
		if err := s.accountRepo.Save(txCtx, account); err != nil {
			return err
		}

		user = &models.User{
			UUID:            uuid.New(),
			AccountID:       &account.ID,
			Email:           email,
			FullName:        req.FullName,
			PasswordHash:    string(hashedPassword),
			Role:            models.UserRoleUser,
			IsActive:        utils.ToPtr(true),
			IsEmailVerified: utils.ToPtr(true),
			EmailVerifiedAt: utils.UTCNowPtr(),
		}
		if err := s.userRepo.Save(txCtx, user); err != nil {
			return err
		}

		if err := s.accountRepo.UpdateOwner(txCtx, account.ID, user.ID); err != nil {
			return err
		}

		// The one-time guarantee: zero rows updated means another
		// registration won the race for this code.
		affected, err := s.requestRepo.ConsumeByCode(txCtx, req.AccessCode, &user.ID, &account.ID, utils.UTCNow())
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrAccessCodeAlreadyUsed
		}

		tokens.access, tokens.refresh, err = s.tokenService.GenerateTokens(user.ID, user.Role)
		if err != nil {
			return err
		}

		if err := s.createSession(txCtx, user.ID, tokens.access, tokens.refresh, metadata); err != nil {
			return err
		}

		user, err = s.userRepo.ByID(txCtx, user.ID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Registration failed for %s: %s", email, err.Error())
		_ = s.createAuditLog(ctx, user, models.AuditActionRegistrationFailed, errMsg, false, &errMsg, metadata)

		switch {
		case IsAccessCodeNotFound(err):
			return nil, NewBusinessError("ACCESS_CODE_NOT_FOUND", "Access code not found", err)
		case IsAccessCodeAlreadyUsed(err):
			return nil, NewBusinessError("ACCESS_CODE_ALREADY_USED", "Access code has already been used", err)
		case IsInvalidAccessRequestStatus(err):
			return nil, NewBusinessError("INVALID_STATUS", "Access code is not redeemable", err)
		case IsEmailMismatch(err):
			return nil, NewBusinessError("EMAIL_MISMATCH", "Email does not match the access request", err)
		case IsEmailAlreadyExists(err):
			return nil, NewBusinessError("EMAIL_ALREADY_EXISTS", "Email already exists", err)
		}
		return nil, NewBusinessError("REGISTRATION_FAILED", "Registration failed", err)
	}

	msg := fmt.Sprintf("Registration completed: user %d (%s)", user.ID, user.Email)
	_ = s.createAuditLog(ctx, user, models.AuditActionRegistrationCompleted, msg, true, nil, metadata)
	_ = s.createAuditLog(ctx, user, models.AuditActionAccessCodeConsumed, fmt.Sprintf("Access code consumed by user %d", user.ID), true, nil, metadata)

	session, err := s.sessionRepo.BySessionToken(ctx, tokens.access)
	if err != nil || session == nil {
		return nil, NewBusinessError("SESSION_FETCH_FAILED", "Failed to load created session", err)
	}

	return &dto.RegisterResponse{
		Message: "Registration completed successfully!",
		Token:   tokens.access,
		Refresh: tokens.refresh,
		User:    ToAuthUserDTO(*user),
		Session: ToSessionDTO(*session),
	}, nil
}

func (s *RegistrationFlowImpl) createSession(ctx context.Context, userID uint, accessToken, refreshToken string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	session := &models.UserSession{
		CorrelationID: uuid.New(),
		UserID:        userID,
		SessionToken:  accessToken,
		RefreshToken:  &refreshToken,
		IPAddress:     &ipAddress,
		UserAgent:     &userAgent,
		IsActive:      utils.ToPtr(true),
		ExpiresAt:     utils.UTCNowAdd(utils.SessionTimeout),
	}

	return s.sessionRepo.Save(ctx, session)
}

func (s *RegistrationFlowImpl) createAuditLog(ctx context.Context, user *models.User, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	var userID *uint
	if user != nil {
		userID = &user.ID
	}

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		UserID:       userID,
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
