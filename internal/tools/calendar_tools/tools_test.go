package calendar_tools

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

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

func request(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is not text")
	return text.Text
}

func TestHandleListEventsRejectsBadTimestamps(t *testing.T) {
	sc := newTestServerContext(t)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"bad timeMin", map[string]any{"timeMin": "yesterday"}, "timeMin"},
		{"bad timeMax", map[string]any{"timeMax": "2026/01/01"}, "timeMax"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handleListEvents(context.Background(), request(tt.args), sc)
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.want)
		})
	}
}

func TestHandleListEventsNotAuthorized(t *testing.T) {
	sc := newTestServerContext(t)

	result, err := handleListEvents(context.Background(), request(map[string]any{}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "google_auth_start")
}

func TestHandleCreateEventValidation(t *testing.T) {
	sc := newTestServerContext(t)

	start := time.Now().Format(time.RFC3339)
	end := time.Now().Add(time.Hour).Format(time.RFC3339)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing summary", map[string]any{"start": start, "end": end}, "summary"},
		{"missing start", map[string]any{"summary": "Standup", "end": end}, "start"},
		{"bad end", map[string]any{"summary": "Standup", "start": start, "end": "noon"}, "end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handleCreateEvent(context.Background(), request(tt.args), sc)
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.want)
		})
	}
}

func TestHandleUpdateEventRequiresEventID(t *testing.T) {
	sc := newTestServerContext(t)

	result, err := handleUpdateEvent(context.Background(), request(map[string]any{
		"summary": "New title",
	}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "eventId")
}

func TestHandleDeleteEventRequiresEventID(t *testing.T) {
	sc := newTestServerContext(t)

	result, err := handleDeleteEvent(context.Background(), request(map[string]any{}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "eventId")
}
