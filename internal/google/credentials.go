package google

import (
	"time"

	"golang.org/x/oauth2"
)

// Field names used in the persisted credential record.
const (
	fieldAccessToken  = "access_token"
	fieldRefreshToken = "refresh_token"
	fieldTokenType    = "token_type"
	fieldExpiry       = "expiry"
	fieldScope        = "scope"
)

// Credentials is the persisted credential record. It is an open mapping
// rather than a fixed struct so that fields the provider sends but this
// program does not interpret survive a load/merge/save cycle.
type Credentials map[string]any

// CredentialsFromToken converts an OAuth2 token into a credential record.
// Empty fields are omitted so a later Merge does not erase stored values.
func CredentialsFromToken(tok *oauth2.Token) Credentials {
	creds := Credentials{}
	if tok.AccessToken != "" {
		creds[fieldAccessToken] = tok.AccessToken
	}
	if tok.RefreshToken != "" {
		creds[fieldRefreshToken] = tok.RefreshToken
	}
	if tok.TokenType != "" {
		creds[fieldTokenType] = tok.TokenType
	}
	if !tok.Expiry.IsZero() {
		creds[fieldExpiry] = tok.Expiry.Format(time.RFC3339)
	}
	return creds
}

// Token converts the record back into an OAuth2 token. A record without a
// stored expiry gets one far in the past so the token source validates or
// refreshes the access token on first use instead of trusting it blindly.
func (c Credentials) Token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  c.str(fieldAccessToken),
		RefreshToken: c.str(fieldRefreshToken),
		TokenType:    c.str(fieldTokenType),
		Expiry:       time.Unix(1, 0),
	}
	if tok.TokenType == "" {
		tok.TokenType = "Bearer"
	}
	if raw := c.str(fieldExpiry); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			tok.Expiry = t
		}
	}
	return tok
}

// AccessToken returns the stored access token, or "".
func (c Credentials) AccessToken() string { return c.str(fieldAccessToken) }

// RefreshToken returns the stored refresh token, or "".
func (c Credentials) RefreshToken() string { return c.str(fieldRefreshToken) }

// Merge overlays update onto c and returns the union. Keys present only in c
// are kept, so a refresh response that omits the refresh token (Google's
// refresh responses usually do) never drops the one from the original grant.
// Empty-string values in update are treated as absent.
func (c Credentials) Merge(update Credentials) Credentials {
	merged := make(Credentials, len(c)+len(update))
	for k, v := range c {
		merged[k] = v
	}
	for k, v := range update {
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		merged[k] = v
	}
	return merged
}

func (c Credentials) str(key string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return ""
}
