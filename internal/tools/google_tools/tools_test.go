package google_tools

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspacemcp/internal/google"
	"workspacemcp/internal/server"
)

func newTestServerContext(t *testing.T) *server.ServerContext {
	t.Helper()
	t.Setenv(google.EnvClientID, "client-id")
	t.Setenv(google.EnvClientSecret, "client-secret")

	store := google.NewStoreAt(filepath.Join(t.TempDir(), "credentials.json"))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sc := server.NewServerContext(context.Background(), store, logger, nil, nil)
	t.Cleanup(sc.Shutdown)
	return sc
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is not text")
	return text.Text
}

func TestHandleAuthStart(t *testing.T) {
	sc := newTestServerContext(t)

	result, err := handleAuthStart(context.Background(), sc)
	require.NoError(t, err)
	assert.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "https://accounts.google.com")
	assert.Contains(t, text, "google_auth_status")
}

func TestHandleAuthStartReusesRunningFlow(t *testing.T) {
	sc := newTestServerContext(t)

	first, err := handleAuthStart(context.Background(), sc)
	require.NoError(t, err)

	second, err := handleAuthStart(context.Background(), sc)
	require.NoError(t, err)

	secondText := resultText(t, second)
	assert.Contains(t, secondText, "already in progress")
	// Same flow, same consent URL.
	assert.Equal(t, consentURL(t, resultText(t, first)), consentURL(t, secondText))
}

func consentURL(t *testing.T, text string) string {
	t.Helper()
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "https://accounts.google.com") {
			return line
		}
	}
	t.Fatalf("no consent URL in %q", text)
	return ""
}

func TestHandleAuthStartWithoutClientCredentials(t *testing.T) {
	sc := newTestServerContext(t)
	t.Setenv(google.EnvClientID, "")

	result, err := handleAuthStart(context.Background(), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), google.EnvClientID)
}

func TestHandleAuthStatus(t *testing.T) {
	sc := newTestServerContext(t)

	result, err := handleAuthStatus(context.Background(), sc)
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Not authorized")

	require.NoError(t, sc.Store().Save(google.Credentials{"access_token": "tok"}))

	result, err = handleAuthStatus(context.Background(), sc)
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "Authorized")
	assert.Contains(t, text, sc.Store().Path())
	assert.Contains(t, text, "https://www.googleapis.com/auth/documents")
}
