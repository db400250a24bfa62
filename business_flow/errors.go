// Package businessflow contains the core business logic and use cases for the access and property workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// User-related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrUserInactive       = errors.New("user is inactive")
	ErrIncorrectPassword  = errors.New("incorrect password")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCaptcha     = errors.New("captcha verification failed")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session has expired")

	// Access request errors
	ErrAccessRequestNotFound      = errors.New("access request not found")
	ErrAccessCodeNotFound         = errors.New("access code not found")
	ErrAccessCodeAlreadyUsed      = errors.New("access code has already been used")
	ErrEmailMismatch              = errors.New("email does not match the access request")
	ErrAlreadyRequested           = errors.New("a request for this email is already open")
	ErrInvalidAccessRequestStatus = errors.New("request is not in a state that allows this operation")
	ErrAccessCodeGenerationFailed = errors.New("failed to generate a unique access code")
	ErrRegistrationRateLimited    = errors.New("too many registration attempts")
	ErrAccessRequestRateLimited   = errors.New("too many access requests")

	// Property and item errors
	ErrPropertyNotFound     = errors.New("property not found")
	ErrPropertyAccessDenied = errors.New("property access denied")
	ErrItemNotFound         = errors.New("item not found")
	ErrItemAccessDenied     = errors.New("item access denied")
	ErrInvalidPropertyType  = errors.New("invalid property type")
	ErrInvalidLinkType      = errors.New("invalid resource link type")
	ErrInvalidReactionType  = errors.New("invalid reaction type")

	// Mailing list errors
	ErrAlreadySubscribed = errors.New("email is already subscribed")
	ErrNotSubscribed     = errors.New("email is not subscribed")

	// Filter errors
	ErrInvalidPage           = errors.New("page must be at least 1")
	ErrInvalidPageSize       = errors.New("page size must be between 1 and 100")
	ErrStartDateAfterEndDate = errors.New("start date cannot be after end date")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsAccountNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsUserInactive(err error) bool {
	return errors.Is(err, ErrUserInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsInvalidCaptcha(err error) bool {
	return errors.Is(err, ErrInvalidCaptcha)
}

func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

func IsAccessRequestNotFound(err error) bool {
	return errors.Is(err, ErrAccessRequestNotFound)
}

func IsAccessCodeNotFound(err error) bool {
	return errors.Is(err, ErrAccessCodeNotFound)
}

func IsAccessCodeAlreadyUsed(err error) bool {
	return errors.Is(err, ErrAccessCodeAlreadyUsed)
}

func IsEmailMismatch(err error) bool {
	return errors.Is(err, ErrEmailMismatch)
}

func IsAlreadyRequested(err error) bool {
	return errors.Is(err, ErrAlreadyRequested)
}

func IsInvalidAccessRequestStatus(err error) bool {
	return errors.Is(err, ErrInvalidAccessRequestStatus)
}

func IsRegistrationRateLimited(err error) bool {
	return errors.Is(err, ErrRegistrationRateLimited)
}

func IsAccessRequestRateLimited(err error) bool {
	return errors.Is(err, ErrAccessRequestRateLimited)
}

func IsPropertyNotFound(err error) bool {
	return errors.Is(err, ErrPropertyNotFound)
}

func IsPropertyAccessDenied(err error) bool {
	return errors.Is(err, ErrPropertyAccessDenied)
}

func IsItemNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound)
}

func IsItemAccessDenied(err error) bool {
	return errors.Is(err, ErrItemAccessDenied)
}

func IsInvalidReactionType(err error) bool {
	return errors.Is(err, ErrInvalidReactionType)
}

func IsAlreadySubscribed(err error) bool {
	return errors.Is(err, ErrAlreadySubscribed)
}

func IsNotSubscribed(err error) bool {
	return errors.Is(err, ErrNotSubscribed)
}
