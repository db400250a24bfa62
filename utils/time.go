// Package utils provides utility functions for the application.
package utils

import (
	"time"
)

// UTCNow returns the current time in UTC. All persisted timestamps go
// through this so rows compare cleanly regardless of server timezone.
func UTCNow() time.Time {
	return time.Now().UTC()
}

// UTCNowPtr returns a pointer to the current UTC time, for nullable columns.
func UTCNowPtr() *time.Time {
	now := UTCNow()
	return &now
}

// UTCNowAdd returns the current UTC time shifted by d.
func UTCNowAdd(d time.Duration) time.Time {
	return UTCNow().Add(d)
}
