package google

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

const (
	callbackPath = "/callback"

	// FlowTimeout is how long the callback listener waits for the user to
	// finish the consent flow before closing itself.
	FlowTimeout = 5 * time.Minute
)

// Flow is a single run of the interactive authorization-code flow.
//
// StartFlow binds a loopback-only listener on an ephemeral port, returns the
// consent URL immediately, and completes in the background: the listener
// handles exactly one callback (or times out), exchanges the code, persists
// the tokens, and tears itself down. Concurrent flows are independent - each
// has its own port and its own anti-forgery state token.
type Flow struct {
	authURL  string
	redirect string
	state    string
	port     int

	store  *Store
	logger *slog.Logger

	server *http.Server
	timer  *time.Timer

	// exchange performs the code-for-token exchange. Indirection so tests
	// can observe calls without hitting Google's token endpoint.
	exchange func(ctx context.Context, code string) (*oauth2.Token, error)

	closeOnce sync.Once
	done      chan error
}

// StartFlow begins an authorization flow. The returned Flow's AuthURL is
// ready for the user's browser; the caller does not need to wait for the
// flow to complete, but may receive the terminal result from Done.
func StartFlow(ctx context.Context, store *Store, logger *slog.Logger) (*Flow, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// Loopback only: other hosts on the network must not be able to reach
	// the callback. Port 0 lets the OS pick a free ephemeral port.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to bind callback listener: %w", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	redirect := fmt.Sprintf("http://localhost:%d%s", port, callbackPath)

	conf, err := NewOAuthConfig(redirect)
	if err != nil {
		ln.Close()
		return nil, err
	}

	state, err := randomState()
	if err != nil {
		ln.Close()
		return nil, err
	}

	f := &Flow{
		redirect: redirect,
		state:    state,
		port:     port,
		store:    store,
		logger:   logger,
		done:     make(chan error, 1),
	}
	f.exchange = func(ctx context.Context, code string) (*oauth2.Token, error) {
		return conf.Exchange(ctx, code)
	}

	// Offline access so a refresh token is issued; forced approval so a
	// repeated flow re-grants the full scope list.
	f.authURL = conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, f.handleCallback)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeSecurityHeaders(w)
		http.NotFound(w, r)
	})

	f.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	f.timer = time.AfterFunc(FlowTimeout, func() {
		f.finish(fmt.Errorf("authorization timed out after %s", FlowTimeout))
	})

	go func() {
		if err := f.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Error("callback listener stopped unexpectedly", "error", err)
		}
	}()

	logger.Info("authorization flow started", "port", port)
	return f, nil
}

// AuthURL returns the provider consent URL for this flow.
func (f *Flow) AuthURL() string { return f.authURL }

// RedirectURL returns the loopback redirect URI the flow registered.
func (f *Flow) RedirectURL() string { return f.redirect }

// Port returns the ephemeral port the callback listener is bound to.
func (f *Flow) Port() int { return f.port }

// Done delivers the flow's terminal result: nil after tokens were exchanged
// and persisted, an error for state mismatch, missing code, exchange or
// persistence failure, timeout, or an explicit Close.
func (f *Flow) Done() <-chan error { return f.done }

// Close tears the flow down early. Safe to call multiple times and after the
// flow already reached a terminal state.
func (f *Flow) Close() {
	f.finish(errors.New("authorization flow closed"))
}

func (f *Flow) handleCallback(w http.ResponseWriter, r *http.Request) {
	writeSecurityHeaders(w)
	q := r.URL.Query()

	// Exact-match state check before anything else: a mismatch means this
	// callback belongs to a flow this process did not start.
	if q.Get("state") != f.state {
		f.logger.Warn("authorization callback rejected", "reason", "state mismatch")
		http.Error(w, "Invalid state parameter. Authorization rejected.", http.StatusForbidden)
		f.finish(errors.New("state mismatch in authorization callback"))
		return
	}

	code := q.Get("code")
	if code == "" {
		f.logger.Warn("authorization callback rejected", "reason", "missing code")
		http.Error(w, "Missing authorization code.", http.StatusBadRequest)
		f.finish(errors.New("authorization callback carried no code"))
		return
	}

	tok, err := f.exchange(r.Context(), code)
	if err != nil {
		f.logger.Error("authorization code exchange failed", "error", err)
		// No internal detail in the browser response.
		http.Error(w, "Token exchange failed. Please retry the authorization.", http.StatusInternalServerError)
		f.finish(fmt.Errorf("failed to exchange authorization code: %w", err))
		return
	}

	if err := f.store.Save(CredentialsFromToken(tok)); err != nil {
		f.logger.Error("failed to persist credentials", "error", err)
		http.Error(w, "Failed to store credentials. Please retry the authorization.", http.StatusInternalServerError)
		f.finish(err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, successPage)
	f.logger.Info("authorization completed, credentials stored", "path", f.store.Path())
	f.finish(nil)
}

// finish records the terminal result and releases the listener and the idle
// timer. Every exit path funnels through here; the sync.Once guarantees the
// listener closes exactly once and the timer never fires afterwards.
func (f *Flow) finish(result error) {
	f.closeOnce.Do(func() {
		f.timer.Stop()
		f.done <- result
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = f.server.Shutdown(ctx)
		}()
	})
}

// randomState returns a 128-bit anti-forgery token for the state parameter.
func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func writeSecurityHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Content-Security-Policy", "default-src 'none'")
}

const successPage = `<!DOCTYPE html>
<html>
<head><title>Authorization complete</title></head>
<body>
<h1>Authorization complete</h1>
<p>Google Workspace access has been granted. You can close this tab and return to your assistant.</p>
</body>
</html>
`
