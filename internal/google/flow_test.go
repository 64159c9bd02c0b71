package google

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startTestFlow(t *testing.T) *Flow {
	t.Helper()
	setOAuthEnv(t)

	f, err := StartFlow(context.Background(), newTestStore(t), discardLogger())
	if err != nil {
		t.Fatalf("StartFlow() error = %v", err)
	}
	t.Cleanup(f.Close)
	return f
}

func flowState(t *testing.T, f *Flow) string {
	t.Helper()
	u, err := url.Parse(f.AuthURL())
	if err != nil {
		t.Fatalf("AuthURL() is not a valid URL: %v", err)
	}
	state := u.Query().Get("state")
	if state == "" {
		t.Fatal("AuthURL() carries no state parameter")
	}
	return state
}

func getCallback(t *testing.T, f *Flow, query string) *http.Response {
	t.Helper()
	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d%s?%s", f.Port(), callbackPath, query))
	if err != nil {
		t.Fatalf("callback request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func waitDone(t *testing.T, f *Flow) error {
	t.Helper()
	select {
	case err := <-f.Done():
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("flow did not reach a terminal state")
		return nil
	}
}

func TestStartFlowsAreIndependent(t *testing.T) {
	a := startTestFlow(t)
	b := startTestFlow(t)

	if a.Port() == b.Port() {
		t.Errorf("concurrent flows share port %d", a.Port())
	}
	if flowState(t, a) == flowState(t, b) {
		t.Error("concurrent flows share a state token")
	}
	if want := fmt.Sprintf("http://localhost:%d/callback", a.Port()); a.RedirectURL() != want {
		t.Errorf("redirect URL = %q, want %q", a.RedirectURL(), want)
	}
}

func TestStartFlowAuthURLParameters(t *testing.T) {
	f := startTestFlow(t)

	u, err := url.Parse(f.AuthURL())
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()
	if got := q.Get("redirect_uri"); got != f.RedirectURL() {
		t.Errorf("redirect_uri = %q, want %q", got, f.RedirectURL())
	}
	if got := q.Get("access_type"); got != "offline" {
		t.Errorf("access_type = %q, want offline", got)
	}
	if got := q.Get("prompt"); !strings.Contains(got+q.Get("approval_prompt"), "force") {
		t.Errorf("consent is not forced: prompt=%q approval_prompt=%q", got, q.Get("approval_prompt"))
	}
}

func TestFlowCallbackSuccess(t *testing.T) {
	f := startTestFlow(t)

	exchanges := 0
	f.exchange = func(ctx context.Context, code string) (*oauth2.Token, error) {
		exchanges++
		if code != "auth-code" {
			t.Errorf("exchange received code %q, want %q", code, "auth-code")
		}
		return &oauth2.Token{
			AccessToken:  "tok",
			RefreshToken: "ref",
			TokenType:    "Bearer",
			Expiry:       time.Now().Add(time.Hour),
		}, nil
	}

	resp := getCallback(t, f, "state="+flowState(t, f)+"&code=auth-code")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Authorization complete") {
		t.Errorf("success page missing confirmation: %q", body)
	}

	if err := waitDone(t, f); err != nil {
		t.Fatalf("Done() = %v, want nil", err)
	}
	if exchanges != 1 {
		t.Errorf("exchange called %d times, want 1", exchanges)
	}

	creds, ok := f.store.Load()
	if !ok {
		t.Fatal("no credentials stored after successful callback")
	}
	if creds.AccessToken() != "tok" || creds.RefreshToken() != "ref" {
		t.Errorf("stored credentials = %v", creds)
	}
}

func TestFlowCallbackStateMismatch(t *testing.T) {
	f := startTestFlow(t)

	exchanges := 0
	f.exchange = func(ctx context.Context, code string) (*oauth2.Token, error) {
		exchanges++
		return nil, nil
	}

	resp := getCallback(t, f, "state=forged&code=auth-code")
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
	if err := waitDone(t, f); err == nil {
		t.Error("Done() = nil, want state mismatch error")
	}
	if exchanges != 0 {
		t.Errorf("exchange called %d times on forged state, want 0", exchanges)
	}
	if _, ok := f.store.Load(); ok {
		t.Error("credentials stored despite forged state")
	}
}

func TestFlowCallbackMissingCode(t *testing.T) {
	f := startTestFlow(t)

	exchanges := 0
	f.exchange = func(ctx context.Context, code string) (*oauth2.Token, error) {
		exchanges++
		return nil, nil
	}

	resp := getCallback(t, f, "state="+flowState(t, f))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if err := waitDone(t, f); err == nil {
		t.Error("Done() = nil, want missing code error")
	}
	if exchanges != 0 {
		t.Errorf("exchange called %d times without a code, want 0", exchanges)
	}
}

func TestFlowCallbackExchangeFailure(t *testing.T) {
	f := startTestFlow(t)

	f.exchange = func(ctx context.Context, code string) (*oauth2.Token, error) {
		return nil, fmt.Errorf("invalid_grant: secret detail")
	}

	resp := getCallback(t, f, "state="+flowState(t, f)+"&code=auth-code")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	// The browser response stays generic; the detail goes to the log and
	// the Done channel only.
	if strings.Contains(string(body), "secret detail") {
		t.Errorf("internal error leaked into the browser response: %q", body)
	}

	err := waitDone(t, f)
	if err == nil || !strings.Contains(err.Error(), "invalid_grant") {
		t.Errorf("Done() = %v, want wrapped exchange error", err)
	}
}

func TestFlowUnknownPath(t *testing.T) {
	f := startTestFlow(t)

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/other", f.Port()))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := resp.Header.Get("Content-Security-Policy"); got != "default-src 'none'" {
		t.Errorf("Content-Security-Policy = %q", got)
	}
}

func TestFlowTimeout(t *testing.T) {
	f := startTestFlow(t)
	f.timer.Reset(10 * time.Millisecond)

	err := waitDone(t, f)
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("Done() = %v, want timeout error", err)
	}

	// The listener shuts down after the timeout, so a late callback cannot
	// connect anymore.
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(f.RedirectURL())
		if err != nil {
			break
		}
		resp.Body.Close()
		if time.Now().After(deadline) {
			t.Fatal("listener still accepting connections after timeout")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestFlowCloseIsIdempotent(t *testing.T) {
	f := startTestFlow(t)

	f.Close()
	f.Close()

	if err := waitDone(t, f); err == nil {
		t.Error("Done() = nil after Close(), want error")
	}

	// A second terminal result must never appear.
	select {
	case err := <-f.Done():
		t.Errorf("Done() delivered a second result: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
}
