package google

import (
	"fmt"
	"os"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
)

// Environment variables supplying the OAuth client credentials.
const (
	EnvClientID     = "GOOGLE_CLIENT_ID"
	EnvClientSecret = "GOOGLE_CLIENT_SECRET"
)

// NewOAuthConfig builds the OAuth2 configuration from the environment.
// redirectURL may be empty for non-interactive use (token refresh and code
// exchange only need the client credentials and token endpoint).
//
// No network I/O happens here; the returned config is only a handle used
// later for consent-URL generation and code exchange.
func NewOAuthConfig(redirectURL string) (*oauth2.Config, error) {
	clientID := os.Getenv(EnvClientID)
	clientSecret := os.Getenv(EnvClientSecret)
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("Google OAuth client credentials are not configured: set both %s and %s", EnvClientID, EnvClientSecret)
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     googleoauth.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
	}, nil
}
