// Package models defines server-side data models persisted in the database
// and the aggregates assembled from them.
package models

import "time"

// User is a registered account. PasswordHash is a bcrypt hash, never the
// plaintext password.
type User struct {
	ID           int64
	UserName     string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Identity is the authenticated caller as carried by a session token.
type Identity struct {
	UserID   int64
	Email    string
	UserName string
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token     string
	UserID    int64
	UserName  string
	ExpiresAt time.Time
}
