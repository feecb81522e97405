package service

import "github.com/cvmatch/cvmatch-backend/internal/domain/entity"

// TokenService issues and validates bearer tokens for authenticated sessions
type TokenService interface {
	// Issue signs a token whose subject is the user's email
	Issue(user *entity.User) (string, error)

	// Subject validates the token and returns the email it was issued for
	//
	// Possible errors:
	// - ErrTokenInvalid: for malformed, unsigned or expired tokens
	Subject(token string) (string, error)
}

// PasswordHasher hashes and verifies local-account passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}
