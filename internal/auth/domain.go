// Package auth exchanges credentials for bearer tokens.
package auth

import "errors"

// ErrInvalidCredentials indicates login failure. Unknown accounts, inactive
// accounts, and wrong passwords all surface this same error.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// User is the credential view of an account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	IsActive     bool
}
