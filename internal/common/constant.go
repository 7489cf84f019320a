// Package common contains constants and helpers shared by the client packages.
package common

const (
	// AuthorizationHeader carries the session token on outbound API requests.
	AuthorizationHeader = "Authorization"
	// BearerPrefix precedes the token inside AuthorizationHeader.
	BearerPrefix = "Bearer "
	// TokenMetadataKey is the fixed key the session token is persisted under.
	TokenMetadataKey = "token"
)
