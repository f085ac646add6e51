// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package constants holds the fixed values shared across layers: server
// timeouts, rate limits, token settings, cover encoding and cache keys.
// Anything an operator may need to change lives in config instead.
package constants

import "time"

const (
	AppName    = "bookshelf-api"
	AppVersion = "0.1.0-dev"
)

// Server timing. Cover uploads arrive in the request body, so reads are
// allowed more time than a JSON-only API would need.
const (
	DefaultReadTimeout       = 30 * time.Second
	DefaultWriteTimeout      = 45 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
	DefaultReadHeaderTimeout = 2 * time.Second
	GlobalRequestTimeout     = 30 * time.Second
	ShutdownTimeout          = 30 * time.Second
)

// Per-IP token bucket.
const (
	DefaultRateLimitRPS      = 50.0
	DefaultRateLimitBurst    = 100
	RateLimitCleanupInterval = time.Minute
	RateLimitClientTTL       = 3 * time.Minute
)

const (
	// AuthIssuer is the "iss" claim of every access token.
	AuthIssuer = "bookshelf.app"

	// AccessTokenTTL is the lifetime of a login token. Clients hold a single
	// token for the whole session; there is no refresh flow.
	AccessTokenTTL = 24 * time.Hour
)

// Covers.
const (
	// ImagesPath is the public URL prefix stored covers are served under.
	ImagesPath = "/images"

	CanonicalExtension   = ".webp"
	CanonicalContentType = "image/webp"
	DefaultImageQuality  = 80

	DefaultMaxUploadBytes = 10 << 20

	// TopRatedLimit is the size of the best-rating listing.
	TopRatedLimit = 3
)

// Keys of the readiness report.
const (
	FieldStatus = "status"
	FieldChecks = "checks"
)

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
)

// RedisKeyTopRated is a hash with one field per listing size.
const RedisKeyTopRated = "catalog:books:toprated"
