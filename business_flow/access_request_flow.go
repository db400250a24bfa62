// Package businessflow contains the core business logic and use cases for the access and property workflows
package businessflow

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/faqbnb/faqbnb-api/app/dto"
	"github.com/faqbnb/faqbnb-api/app/services"
	"github.com/faqbnb/faqbnb-api/models"
	"github.com/faqbnb/faqbnb-api/repository"
	"github.com/faqbnb/faqbnb-api/utils"
	"gorm.io/gorm"
)

// AccessRequestFlow handles the access request lifecycle: public intake,
// admin decisions, and code validation. A request moves pending -> approved
// (code assigned) -> registered, or pending -> denied.
type AccessRequestFlow interface {
	Submit(ctx context.Context, req *dto.AccessRequestCreateRequest, source string, metadata *ClientMetadata) (*dto.AccessRequestCreateResponse, error)
	AdminCreate(ctx context.Context, req *dto.AdminCreateAccessRequestRequest, metadata *ClientMetadata) (*dto.AccessRequestDecisionResponse, error)
	List(ctx context.Context, req *dto.AccessRequestListRequest) (*dto.AccessRequestListResponse, error)
	Approve(ctx context.Context, requestID uint, req *dto.AccessRequestDecisionRequest, metadata *ClientMetadata) (*dto.AccessRequestDecisionResponse, error)
	Deny(ctx context.Context, requestID uint, req *dto.AccessRequestDecisionRequest, metadata *ClientMetadata) (*dto.AccessRequestDecisionResponse, error)
	UpdateNotes(ctx context.Context, requestID uint, req *dto.AccessRequestNotesRequest) (*dto.AccessRequestDecisionResponse, error)
	ValidateCode(ctx context.Context, req *dto.ValidateAccessCodeRequest) (*dto.ValidateAccessCodeResponse, error)
	Stats(ctx context.Context) (*dto.AccessRequestStatsResponse, error)
}

// AccessRequestFlowImpl implements the access request business flow
type AccessRequestFlowImpl struct {
	requestRepo     repository.AccessRequestRepository
	auditRepo       repository.AuditLogRepository
	notificationSvc services.NotificationService
	rateLimiter     RateLimiter
	db              *gorm.DB
}

// NewAccessRequestFlow creates a new access request flow instance
func NewAccessRequestFlow(
	requestRepo repository.AccessRequestRepository,
	auditRepo repository.AuditLogRepository,
	notificationSvc services.NotificationService,
	rateLimiter RateLimiter,
	db *gorm.DB,
) AccessRequestFlow {
	return &AccessRequestFlowImpl{
		requestRepo:     requestRepo,
		auditRepo:       auditRepo,
		notificationSvc: notificationSvc,
		rateLimiter:     rateLimiter,
		db:              db,
	}
}

// Submit handles the public access request and waitlist forms. One live
// request per email: a pending or approved request blocks a new submission,
// while denied and registered ones do not.
func (s *AccessRequestFlowImpl) Submit(ctx context.Context, req *dto.AccessRequestCreateRequest, source string, metadata *ClientMetadata) (*dto.AccessRequestCreateResponse, error) {
	if !models.IsValidAccessRequestSource(source) {
		return nil, NewBusinessError("INVALID_SOURCE", "Invalid access request source", nil)
	}

	if metadata != nil {
		allowed, _ := s.rateLimiter.Allow(ctx, "access_request", "ip:"+metadata.IPAddress, utils.PublicFormRateLimit, utils.RateLimitWindow)
		if !allowed {
			return nil, NewBusinessError("RATE_LIMITED", "Too many access requests", ErrAccessRequestRateLimited)
		}
	}

	email := utils.NormalizeEmail(req.Email)

	var request *models.AccessRequest
	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		existing, err := s.requestRepo.LiveByEmail(txCtx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyRequested
		}

		request = &models.AccessRequest{
			RequesterEmail: email,
			RequesterName:  req.Name,
			Status:         models.AccessRequestStatusPending,
			Source:         source,
			Notes:          req.Notes,
			RequestDate:    utils.UTCNow(),
			UpdatedAt:      utils.UTCNow(),
		}
		return s.requestRepo.Save(txCtx, request)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Access request failed for %s: %s", email, err.Error())
		_ = s.createAuditLog(ctx, nil, models.AuditActionAccessRequested, errMsg, false, &errMsg, metadata)

		if IsAlreadyRequested(err) {
			return nil, NewBusinessError("ALREADY_REQUESTED", "A request for this email is already open", err)
		}
		return nil, NewBusinessError("ACCESS_REQUEST_FAILED", "Failed to submit access request", err)
	}

	msg := fmt.Sprintf("Access requested: %s (source %s)", email, source)
	_ = s.createAuditLog(ctx, nil, models.AuditActionAccessRequested, msg, true, nil, metadata)

	return &dto.AccessRequestCreateResponse{
		Message:   "Your request has been received. We will be in touch.",
		RequestID: request.ID,
		Status:    request.Status,
	}, nil
}

// AdminCreate enters a request on behalf of someone, optionally approving
// it immediately so the code goes out in the same call.
func (s *AccessRequestFlowImpl) AdminCreate(ctx context.Context, req *dto.AdminCreateAccessRequestRequest, metadata *ClientMetadata) (*dto.AccessRequestDecisionResponse, error) {
	email := utils.NormalizeEmail(req.Email)

	var request *models.AccessRequest
	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		existing, err := s.requestRepo.LiveByEmail(txCtx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyRequested
		}

		request = &models.AccessRequest{
			RequesterEmail: email,
			RequesterName:  req.Name,
			Status:         models.AccessRequestStatusPending,
			Source:         models.AccessRequestSourceAdminCreated,
			Notes:          req.Notes,
			RequestDate:    utils.UTCNow(),
			UpdatedAt:      utils.UTCNow(),
		}
		if err := s.requestRepo.Save(txCtx, request); err != nil {
			return err
		}

		if req.AutoApprove {
			if _, err := s.assignAccessCode(txCtx, request.ID, nil); err != nil {
				return err
			}
			request, err = s.requestRepo.ByID(txCtx, request.ID)
			if err != nil {
				return err
			}
			if request == nil {
				return ErrAccessRequestNotFound
			}
		}
		return nil
	})

	if err != nil {
		if IsAlreadyRequested(err) {
			return nil, NewBusinessError("ALREADY_REQUESTED", "A request for this email is already open", err)
		}
		return nil, NewBusinessError("ACCESS_REQUEST_CREATE_FAILED", "Failed to create access request", err)
	}

	if req.AutoApprove && request.AccessCode != nil {
		s.sendApprovalEmail(request, metadata)
	}

	return &dto.AccessRequestDecisionResponse{
		Message: "Access request created",
		Request: ToAccessRequestDTO(*request),
	}, nil
}

// List returns the paginated admin view of access requests
func (s *AccessRequestFlowImpl) List(ctx context.Context, req *dto.AccessRequestListRequest) (*dto.AccessRequestListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	filter := models.AccessRequestFilter{
		Status: req.Status,
		Source: req.Source,
	}

	total, err := s.requestRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("ACCESS_REQUEST_LIST_FAILED", "Failed to list access requests", err)
	}

	requests, err := s.requestRepo.ByFilter(ctx, filter, "request_date DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("ACCESS_REQUEST_LIST_FAILED", "Failed to list access requests", err)
	}

	items := make([]dto.AccessRequestDTO, 0, len(requests))
	for _, r := range requests {
		items = append(items, ToAccessRequestDTO(*r))
	}

	return &dto.AccessRequestListResponse{
		Message:  "Access requests retrieved",
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Approve assigns a fresh access code to a pending request and emails it to
// the requester. Only pending requests can be approved.
func (s *AccessRequestFlowImpl) Approve(ctx context.Context, requestID uint, req *dto.AccessRequestDecisionRequest, metadata *ClientMetadata) (*dto.AccessRequestDecisionResponse, error) {
	var request *models.AccessRequest

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		request, err = s.requestRepo.ByID(txCtx, requestID)
		if err != nil {
			return err
		}
		if request == nil {
			return ErrAccessRequestNotFound
		}
		if !request.IsPending() {
			return ErrInvalidAccessRequestStatus
		}

		if _, err := s.assignAccessCode(txCtx, requestID, req.Notes); err != nil {
			return err
		}

		request, err = s.requestRepo.ByID(txCtx, requestID)
		if err != nil {
			return err
		}
		if request == nil {
			return ErrAccessRequestNotFound
		}
		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Approval failed for request %d: %s", requestID, err.Error())
		_ = s.createAuditLog(ctx, nil, models.AuditActionAccessApproved, errMsg, false, &errMsg, metadata)

		if IsAccessRequestNotFound(err) {
			return nil, NewBusinessError("ACCESS_REQUEST_NOT_FOUND", "Access request not found", err)
		}
		if IsInvalidAccessRequestStatus(err) {
			return nil, NewBusinessError("INVALID_STATUS", "Only pending requests can be approved", err)
		}
		return nil, NewBusinessError("APPROVAL_FAILED", "Failed to approve access request", err)
	}

	msg := fmt.Sprintf("Access approved: request %d (%s)", request.ID, request.RequesterEmail)
	_ = s.createAuditLog(ctx, nil, models.AuditActionAccessApproved, msg, true, nil, metadata)

	s.sendApprovalEmail(request, metadata)

	return &dto.AccessRequestDecisionResponse{
		Message: "Access request approved",
		Request: ToAccessRequestDTO(*request),
	}, nil
}

// Deny moves a pending request to the terminal denied state
func (s *AccessRequestFlowImpl) Deny(ctx context.Context, requestID uint, req *dto.AccessRequestDecisionRequest, metadata *ClientMetadata) (*dto.AccessRequestDecisionResponse, error) {
	var request *models.AccessRequest

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		request, err = s.requestRepo.ByID(txCtx, requestID)
		if err != nil {
			return err
		}
		if request == nil {
			return ErrAccessRequestNotFound
		}
		if !request.IsPending() {
			return ErrInvalidAccessRequestStatus
		}

		if err := s.requestRepo.MarkDenied(txCtx, requestID, utils.UTCNow(), req.Notes); err != nil {
			return err
		}

		request, err = s.requestRepo.ByID(txCtx, requestID)
		if err != nil {
			return err
		}
		if request == nil {
			return ErrAccessRequestNotFound
		}
		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Denial failed for request %d: %s", requestID, err.Error())
		_ = s.createAuditLog(ctx, nil, models.AuditActionAccessDenied, errMsg, false, &errMsg, metadata)

		if IsAccessRequestNotFound(err) {
			return nil, NewBusinessError("ACCESS_REQUEST_NOT_FOUND", "Access request not found", err)
		}
		if IsInvalidAccessRequestStatus(err) {
			return nil, NewBusinessError("INVALID_STATUS", "Only pending requests can be denied", err)
		}
		return nil, NewBusinessError("DENIAL_FAILED", "Failed to deny access request", err)
	}

	msg := fmt.Sprintf("Access denied: request %d (%s)", request.ID, request.RequesterEmail)
	_ = s.createAuditLog(ctx, nil, models.AuditActionAccessDenied, msg, true, nil, metadata)

	return &dto.AccessRequestDecisionResponse{
		Message: "Access request denied",
		Request: ToAccessRequestDTO(*request),
	}, nil
}

// UpdateNotes updates the admin notes on any request regardless of state
func (s *AccessRequestFlowImpl) UpdateNotes(ctx context.Context, requestID uint, req *dto.AccessRequestNotesRequest) (*dto.AccessRequestDecisionResponse, error) {
	request, err := s.requestRepo.ByID(ctx, requestID)
	if err != nil {
		return nil, NewBusinessError("ACCESS_REQUEST_FETCH_FAILED", "Failed to fetch access request", err)
	}
	if request == nil {
		return nil, NewBusinessError("ACCESS_REQUEST_NOT_FOUND", "Access request not found", ErrAccessRequestNotFound)
	}

	if err := s.requestRepo.UpdateNotes(ctx, requestID, req.Notes); err != nil {
		return nil, NewBusinessError("NOTES_UPDATE_FAILED", "Failed to update notes", err)
	}

	request, err = s.requestRepo.ByID(ctx, requestID)
	if err != nil || request == nil {
		return nil, NewBusinessError("ACCESS_REQUEST_FETCH_FAILED", "Failed to fetch access request", err)
	}

	return &dto.AccessRequestDecisionResponse{
		Message: "Notes updated",
		Request: ToAccessRequestDTO(*request),
	}, nil
}

// ValidateCode checks a code ahead of registration without consuming it.
// The email must match the one the request was approved for.
func (s *AccessRequestFlowImpl) ValidateCode(ctx context.Context, req *dto.ValidateAccessCodeRequest) (*dto.ValidateAccessCodeResponse, error) {
	request, err := s.requestRepo.ByAccessCode(ctx, req.AccessCode)
	if err != nil {
		return nil, NewBusinessError("CODE_VALIDATION_FAILED", "Failed to validate access code", err)
	}
	if request == nil {
		return nil, NewBusinessError("ACCESS_CODE_NOT_FOUND", "Access code not found", ErrAccessCodeNotFound)
	}

	if request.IsRegistered() {
		return nil, NewBusinessError("ACCESS_CODE_ALREADY_USED", "Access code has already been used", ErrAccessCodeAlreadyUsed)
	}
	if !request.IsApproved() {
		return nil, NewBusinessError("INVALID_STATUS", "Access code is not redeemable", ErrInvalidAccessRequestStatus)
	}
	if request.RequesterEmail != utils.NormalizeEmail(req.Email) {
		return nil, NewBusinessError("EMAIL_MISMATCH", "Email does not match the access request", ErrEmailMismatch)
	}

	return &dto.ValidateAccessCodeResponse{
		Valid:   true,
		Message: "Access code is valid",
	}, nil
}

// Stats aggregates request counts per status for the admin dashboard
func (s *AccessRequestFlowImpl) Stats(ctx context.Context) (*dto.AccessRequestStatsResponse, error) {
	counts, err := s.requestRepo.CountByStatus(ctx)
	if err != nil {
		return nil, NewBusinessError("STATS_FAILED", "Failed to compute access request stats", err)
	}

	return &dto.AccessRequestStatsResponse{
		Message: "Access request stats retrieved",
		Counts:  counts,
	}, nil
}

// assignAccessCode generates a unique code and marks the request approved.
// Uniqueness is enforced both by lookup and by the unique index on the
// column; collisions retry a bounded number of times.
func (s *AccessRequestFlowImpl) assignAccessCode(ctx context.Context, requestID uint, notes *string) (string, error) {
	for attempt := 0; attempt < utils.AccessCodeMaxGenerationAttempts; attempt++ {
		code, err := GenerateAccessCode()
		if err != nil {
			return "", err
		}

		existing, err := s.requestRepo.ByAccessCode(ctx, code)
		if err != nil {
			return "", err
		}
		if existing != nil {
			continue
		}

		if err := s.requestRepo.MarkApproved(ctx, requestID, code, utils.UTCNow(), notes); err != nil {
			return "", err
		}
		return code, nil
	}

	return "", ErrAccessCodeGenerationFailed
}

func (s *AccessRequestFlowImpl) sendApprovalEmail(request *models.AccessRequest, metadata *ClientMetadata) {
	if request.AccessCode == nil {
		return
	}
	code := *request.AccessCode

	// Email failure must not fail the approval, it is recorded in the audit log instead
	go func() {
		body := fmt.Sprintf("Your access request has been approved. Your access code is: %s\n\nUse it to complete your registration.", code)
		if err := s.notificationSvc.SendEmail(request.RequesterEmail, "Your FAQBNB access code", body); err != nil {
			errMsg := fmt.Sprintf("Failed to send approval email for request %d: %v", request.ID, err)
			_ = s.createAuditLog(context.Background(), nil, models.AuditActionApprovalEmailFailed, errMsg, false, &errMsg, metadata)
		}
	}()
}

func (s *AccessRequestFlowImpl) createAuditLog(ctx context.Context, user *models.User, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
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

// GenerateAccessCode produces a 12-character code from the A-Z0-9 alphabet
// using crypto/rand. Rejection sampling keeps the distribution uniform.
func GenerateAccessCode() (string, error) {
	const alphabet = utils.AccessCodeAlphabet
	max := byte(256 - (256 % len(alphabet)))

	code := make([]byte, utils.AccessCodeLength)
	buf := make([]byte, 1)
	for i := 0; i < utils.AccessCodeLength; {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		if buf[0] >= max {
			continue
		}
		code[i] = alphabet[int(buf[0])%len(alphabet)]
		i++
	}

	return string(code), nil
}
