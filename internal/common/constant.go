// Package common contains shared constants and small helpers used across
// pharmcart components.
package common

// TokenStorageKey is the fixed key under which the raw bearer token is kept
// in both the durable and the ephemeral storage slot.
const TokenStorageKey = "auth_token"

// AuthorizationHeaderName is the HTTP header carrying the bearer credential.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the raw token in the Authorization header.
const BearerPrefix = "Bearer "

// RequestIDHeaderName carries a per-request correlation id.
const RequestIDHeaderName = "X-Request-ID"
