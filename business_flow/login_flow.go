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

// LoginFlow handles authentication: login, logout, and token refresh.
// Admin logins additionally require a solved rotate captcha.
type LoginFlow interface {
	Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	AdminLogin(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	Logout(ctx context.Context, sessionToken string, metadata *ClientMetadata) (*dto.LogoutResponse, error)
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.RefreshTokenResponse, error)
}

// LoginFlowImpl implements the login business flow
type LoginFlowImpl struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.UserSessionRepository
	auditRepo    repository.AuditLogRepository
	tokenService services.TokenService
	captchaSvc   services.CaptchaService
	db           *gorm.DB
}

// NewLoginFlow creates a new login flow instance
func NewLoginFlow(
	userRepo repository.UserRepository,
	sessionRepo repository.UserSessionRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	captchaSvc services.CaptchaService,
	db *gorm.DB,
) LoginFlow {
	return &LoginFlowImpl{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		auditRepo:    auditRepo,
		tokenService: tokenService,
		captchaSvc:   captchaSvc,
		db:           db,
	}
}

// Login authenticates a regular user with email and password
func (s *LoginFlowImpl) Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	return s.login(ctx, req, metadata, false)
}

// AdminLogin authenticates an admin. The captcha is checked before the
// password so credential stuffing burns a challenge per attempt.
func (s *LoginFlowImpl) AdminLogin(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	if s.captchaSvc != nil {
		if req.CaptchaID == nil || req.CaptchaAngle == nil {
			return nil, NewBusinessError("CAPTCHA_REQUIRED", "Captcha is required", ErrInvalidCaptcha)
		}
		if !s.captchaSvc.VerifyRotate(ctx, *req.CaptchaID, *req.CaptchaAngle) {
			return nil, NewBusinessError("CAPTCHA_FAILED", "Captcha verification failed", ErrInvalidCaptcha)
		}
	}

	return s.login(ctx, req, metadata, true)
}

func (s *LoginFlowImpl) login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata, requireAdmin bool) (*dto.LoginResponse, error) {
	var user *models.User
	var tokens struct {
		access  string
		refresh string
	}

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		user, err = s.userRepo.ByEmail(txCtx, req.Email)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
		if requireAdmin && !user.IsAdmin() {
			return ErrUserNotFound
		}
		if !utils.IsTrue(user.IsActive) {
			return ErrUserInactive
		}
		if user.Account != nil && !utils.IsTrue(user.Account.IsActive) {
			return ErrAccountInactive
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			return ErrIncorrectPassword
		}

		tokens.access, tokens.refresh, err = s.tokenService.GenerateTokens(user.ID, user.Role)
		if err != nil {
			return err
		}

		if err := s.createSession(txCtx, user.ID, tokens.access, tokens.refresh, metadata); err != nil {
			return err
		}

		return s.userRepo.UpdateLastLogin(txCtx, user.ID, utils.UTCNow())
	})

	if err != nil {
		errMsg := fmt.Sprintf("Login failed for %s: %s", req.Email, err.Error())
		_ = s.createAuditLog(ctx, user, models.AuditActionLoginFailed, errMsg, false, &errMsg, metadata)

		switch {
		case IsUserNotFound(err), IsIncorrectPassword(err):
			// A missing user and a wrong password are indistinguishable to the caller
			return nil, NewBusinessError("INVALID_CREDENTIALS", "Invalid email or password", ErrIncorrectPassword)
		case IsUserInactive(err):
			return nil, NewBusinessError("USER_INACTIVE", "User is inactive", err)
		case IsAccountInactive(err):
			return nil, NewBusinessError("ACCOUNT_INACTIVE", "Account is inactive", err)
		}
		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}

	msg := fmt.Sprintf("Login successful: user %d", user.ID)
	_ = s.createAuditLog(ctx, user, models.AuditActionLoginSuccess, msg, true, nil, metadata)

	session, err := s.sessionRepo.BySessionToken(ctx, tokens.access)
	if err != nil || session == nil {
		return nil, NewBusinessError("SESSION_FETCH_FAILED", "Failed to load created session", err)
	}

	return &dto.LoginResponse{
		Message: "Login successful",
		Token:   tokens.access,
		Refresh: tokens.refresh,
		User:    ToAuthUserDTO(*user),
		Session: ToSessionDTO(*session),
	}, nil
}

// Logout deactivates the session holding the token
func (s *LoginFlowImpl) Logout(ctx context.Context, sessionToken string, metadata *ClientMetadata) (*dto.LogoutResponse, error) {
	session, err := s.sessionRepo.BySessionToken(ctx, sessionToken)
	if err != nil {
		return nil, NewBusinessError("LOGOUT_FAILED", "Logout failed", err)
	}
	if session == nil {
		return nil, NewBusinessError("SESSION_NOT_FOUND", "Session not found", ErrSessionNotFound)
	}

	if err := s.sessionRepo.DeactivateByToken(ctx, sessionToken); err != nil {
		return nil, NewBusinessError("LOGOUT_FAILED", "Logout failed", err)
	}

	msg := fmt.Sprintf("Logout: user %d", session.UserID)
	_ = s.createAuditLog(ctx, &session.User, models.AuditActionLogout, msg, true, nil, metadata)

	return &dto.LogoutResponse{
		Message: "Logged out successfully",
	}, nil
}

// RefreshToken rotates the session: the old session is deactivated and a new
// one is created with fresh tokens.
func (s *LoginFlowImpl) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.RefreshTokenResponse, error) {
	var tokens struct {
		access  string
		refresh string
	}
	var user *models.User

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		session, err := s.sessionRepo.ByRefreshToken(txCtx, req.RefreshToken)
		if err != nil {
			return err
		}
		if session == nil {
			return ErrSessionNotFound
		}
		if !session.IsValid() {
			return ErrSessionExpired
		}

		user = &session.User
		if !utils.IsTrue(user.IsActive) {
			return ErrUserInactive
		}

		tokens.access, tokens.refresh, err = s.tokenService.RefreshToken(req.RefreshToken)
		if err != nil {
			return err
		}

		if err := s.sessionRepo.DeactivateByToken(txCtx, session.SessionToken); err != nil {
			return err
		}

		return s.createSession(txCtx, session.UserID, tokens.access, tokens.refresh, metadata)
	})

	if err != nil {
		switch {
		case IsSessionNotFound(err):
			return nil, NewBusinessError("SESSION_NOT_FOUND", "Session not found", err)
		case IsSessionExpired(err):
			return nil, NewBusinessError("SESSION_EXPIRED", "Session has expired", err)
		case IsUserInactive(err):
			return nil, NewBusinessError("USER_INACTIVE", "User is inactive", err)
		}
		return nil, NewBusinessError("TOKEN_REFRESH_FAILED", "Token refresh failed", err)
	}

	msg := fmt.Sprintf("Token refreshed: user %d", user.ID)
	_ = s.createAuditLog(ctx, user, models.AuditActionTokenRefreshed, msg, true, nil, metadata)

	session, err := s.sessionRepo.BySessionToken(ctx, tokens.access)
	if err != nil || session == nil {
		return nil, NewBusinessError("SESSION_FETCH_FAILED", "Failed to load created session", err)
	}

	return &dto.RefreshTokenResponse{
		Message: "Token refreshed successfully",
		Token:   tokens.access,
		Refresh: tokens.refresh,
		Session: ToSessionDTO(*session),
	}, nil
}

func (s *LoginFlowImpl) createSession(ctx context.Context, userID uint, accessToken, refreshToken string, metadata *ClientMetadata) error {
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

func (s *LoginFlowImpl) createAuditLog(ctx context.Context, user *models.User, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
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
