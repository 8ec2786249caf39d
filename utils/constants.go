package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Moderation and submission constants
const (
	// MinObjectTags and MaxObjectTags bound how many tags a submission may carry
	MinObjectTags = 1
	MaxObjectTags = 5

	// MaxTitleLen limits cultural object titles
	MaxTitleLen = 200

	// MaxTagNameLen limits tag labels
	MaxTagNameLen = 100
)

// Pagination constants
const (
	// DefaultPageSize is used when a listing request carries no page size
	DefaultPageSize = 50

	// MaxPageSize caps listing page sizes
	MaxPageSize = 100
)

// Context keys used when building request contexts in handlers
type ContextKey string

const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)
