// Package common contains shared constants, sentinel errors and small helpers
// used across the console components.
package common

// AuthorizationHeaderName carries the bearer credential on outbound requests.
const AuthorizationHeaderName = "Authorization"

// RequestIDHeaderName carries a per-request identifier used to correlate logs.
const RequestIDHeaderName = "X-Request-ID"

// Host storage keys. Both entries are JSON-encoded and cleared together on logout.
const (
	StorageKeyAccessToken = "accessToken"
	StorageKeyUserData    = "userData"
)
