package service

import "context"

// OAuthUser is the identity returned by the OAuth provider's userinfo endpoint
type OAuthUser struct {
	Subject string
	Email   string
	Name    string
}

// OAuthProvider wraps the Google authorization-code flow
type OAuthProvider interface {
	// AuthCodeURL builds the consent-screen redirect URL
	AuthCodeURL(state string) string

	// Exchange trades the callback code for the user's identity
	Exchange(ctx context.Context, code string) (*OAuthUser, error)
}
