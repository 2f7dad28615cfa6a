// Package common contains shared constants and sentinel errors used across
// RecipeHub components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token inside the Authorization header.
const BearerPrefix = "Bearer "

// UnknownAuthor is reported when a recipe owner row cannot be resolved.
const UnknownAuthor = "Unknown"
