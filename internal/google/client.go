package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

// ErrNotAuthorized reports that no credentials are stored yet. It is a
// sentinel, not a failure: callers translate it into an instruction to run
// the authorization flow.
var ErrNotAuthorized = errors.New("no stored Google credentials: run the authorization flow first")

// HasCredentials reports whether a credential record is stored.
func HasCredentials(store *Store) bool {
	_, ok := store.Load()
	return ok
}

// NewHTTPClient returns an HTTP client that authenticates requests with the
// stored credentials and transparently refreshes the access token. Refreshed
// tokens are merged back into the store, so no downstream API caller needs
// refresh-aware logic.
//
// Returns ErrNotAuthorized when the store holds no credentials.
func NewHTTPClient(ctx context.Context, store *Store) (*http.Client, error) {
	creds, ok := store.Load()
	if !ok {
		return nil, ErrNotAuthorized
	}

	conf, err := NewOAuthConfig("")
	if err != nil {
		return nil, err
	}

	tok := creds.Token()
	ts := &persistingTokenSource{
		base:  oauth2.ReuseTokenSource(tok, conf.TokenSource(ctx, tok)),
		store: store,
		last:  tok,
	}

	client := oauth2.NewClient(ctx, ts)

	// Google API requests can stall on HTTP/2 connections that went idle.
	// Forcing HTTP/1.1 avoids that.
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{ForceAttemptHTTP2: false}
	}

	return client, nil
}

// persistingTokenSource wraps a token source and writes renewed tokens back
// to the store. It is the subscription half of the refresh contract: the
// oauth2 transport refreshes autonomously during API calls, and this source
// observes the change and persists it.
type persistingTokenSource struct {
	base  oauth2.TokenSource
	store *Store

	mu   sync.Mutex
	last *oauth2.Token
}

func (ts *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := ts.base.Token()
	if err != nil {
		return nil, err
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.last != nil &&
		tok.AccessToken == ts.last.AccessToken &&
		tok.RefreshToken == ts.last.RefreshToken {
		return tok, nil
	}

	// Merge rather than overwrite: refresh responses usually omit the
	// refresh token, and the stored one has to survive.
	if err := ts.store.Merge(CredentialsFromToken(tok)); err != nil {
		return nil, fmt.Errorf("failed to persist refreshed token: %w", err)
	}
	ts.last = tok

	return tok, nil
}
