// Package dto contains Data Transfer Objects for API request and response structures
package dto

// RegisterRequest represents the registration form data. Registration is
// only possible with an approved access code.
type RegisterRequest struct {
	AccessCode      string `json:"access_code" validate:"required,len=12,access_code"`
	Email           string `json:"email" validate:"required,email,max=255"`
	FullName        string `json:"full_name" validate:"required,max=255,alpha_space"`
	AccountName     string `json:"account_name" validate:"required,max=100"`
	Password        string `json:"password" validate:"required,min=8,password_strength"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// RegisterResponse represents the response after successful registration
type RegisterResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	Refresh string      `json:"refresh_token"`
	User    AuthUserDTO `json:"user"`
	Session SessionDTO  `json:"session"`
}

// LoginRequest represents the login form data
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`

	// Captcha fields, enforced on the admin login form
	CaptchaID    *string  `json:"captcha_id,omitempty" validate:"omitempty"`
	CaptchaAngle *float64 `json:"captcha_angle,omitempty" validate:"omitempty"`
}

// LoginResponse represents the response after successful login
type LoginResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	Refresh string      `json:"refresh_token"`
	User    AuthUserDTO `json:"user"`
	Session SessionDTO  `json:"session"`
}

// RefreshTokenRequest represents a token refresh request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse represents the response after token refresh
type RefreshTokenResponse struct {
	Message string     `json:"message"`
	Token   string     `json:"token"`
	Refresh string     `json:"refresh_token"`
	Session SessionDTO `json:"session"`
}

// LogoutResponse represents the response after logout
type LogoutResponse struct {
	Message string `json:"message"`
}

// ValidateAccessCodeRequest checks a code before the user fills the full form
type ValidateAccessCodeRequest struct {
	AccessCode string `json:"access_code" validate:"required,len=12,access_code"`
	Email      string `json:"email" validate:"required,email,max=255"`
}

// ValidateAccessCodeResponse reports whether a code is redeemable
type ValidateAccessCodeResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// AuthUserDTO represents user data for authentication responses
type AuthUserDTO struct {
	ID          uint    `json:"id"`
	UUID        string  `json:"uuid"`
	Email       string  `json:"email"`
	FullName    string  `json:"full_name"`
	Role        string  `json:"role"`
	AccountID   *uint   `json:"account_id,omitempty"`
	AccountName *string `json:"account_name,omitempty"`
	IsActive    *bool   `json:"is_active"`
	CreatedAt   string  `json:"created_at"`
}

// SessionDTO represents session data for authentication responses
type SessionDTO struct {
	SessionToken string  `json:"session_token"`
	RefreshToken *string `json:"refresh_token,omitempty"`
	ExpiresIn    int     `json:"expires_in"`
	TokenType    string  `json:"token_type"`
	CreatedAt    string  `json:"created_at"`
}

// CaptchaChallengeResponse carries a rotate captcha challenge to the client
type CaptchaChallengeResponse struct {
	CaptchaID   string `json:"captcha_id"`
	MasterImage string `json:"master_image"`
	ThumbImage  string `json:"thumb_image"`
}
