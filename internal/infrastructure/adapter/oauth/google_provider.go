package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	coreport "github.com/cvmatch/cvmatch-backend/internal/domain/port/core"
	svcport "github.com/cvmatch/cvmatch-backend/internal/domain/port/service"
)

const userinfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

// Config carries the Google OAuth client settings
type Config struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

// GoogleProvider implements the OAuth port on Google's authorization-code flow
type GoogleProvider struct {
	oauthConfig *oauth2.Config
	logger      coreport.Logger
}

// NewGoogleProvider creates the Google OAuth provider
func NewGoogleProvider(config Config, logger coreport.Logger) *GoogleProvider {
	return &GoogleProvider{
		oauthConfig: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		logger: logger,
	}
}

// AuthCodeURL builds the consent-screen redirect URL
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.oauthConfig.AuthCodeURL(state)
}

// Exchange trades the callback code for the user's identity via the
// userinfo endpoint
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*svcport.OAuthUser, error) {
	token, err := p.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}

	resp, err := p.oauthConfig.Client(ctx, token).Get(userinfoEndpoint)
	if err != nil {
		return nil, fmt.Errorf("fetching userinfo: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("userinfo returned status %d: %s", resp.StatusCode, body)
	}

	var info struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decoding userinfo: %w", err)
	}
	if info.ID == "" || info.Email == "" {
		return nil, fmt.Errorf("userinfo response missing identity fields")
	}

	p.logger.Debug("Google identity resolved", map[string]any{"subject": info.ID})
	return &svcport.OAuthUser{
		Subject: info.ID,
		Email:   info.Email,
		Name:    info.Name,
	}, nil
}
