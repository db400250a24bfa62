// Package utils provides utility functions for the application.
package utils

// Context keys for request-scoped values set by the HTTP layer
const (
	RequestIDKey  = "X-Request-ID"
	UserAgentKey  = "user_agent"
	IPAddressKey  = "ip_address"
	EndpointKey   = "endpoint"
	TimeoutKey    = "timeout"
	CancelFuncKey = "cancel_func"
)
