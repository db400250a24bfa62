package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// AccessTokenTTLSeconds is the time-to-live for access tokens in seconds (86400 seconds = 24 hours)
	AccessTokenTTLSeconds = 86400

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour

	// SessionTimeout is the default session timeout (24 hours)
	SessionTimeout = 24 * time.Hour
)

// Access code constants
const (
	// AccessCodeLength is the length of one-time access codes
	AccessCodeLength = 12

	// AccessCodeAlphabet is the character set access codes are drawn from
	AccessCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// AccessCodeMaxGenerationAttempts bounds the uniqueness retry loop
	AccessCodeMaxGenerationAttempts = 5
)

// Rate limiting constants
const (
	// RegistrationRateLimit is the number of registration attempts allowed per window per IP
	RegistrationRateLimit = 5

	// PublicFormRateLimit is the number of public form submissions allowed per window per IP
	PublicFormRateLimit = 10

	// RateLimitWindow is the sliding window used by the Redis rate limiter
	RateLimitWindow = 15 * time.Minute
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
