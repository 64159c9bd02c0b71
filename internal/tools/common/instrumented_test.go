package common

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspacemcp/internal/google"
	"workspacemcp/internal/server"
)

func newTestServerContext(t *testing.T) *server.ServerContext {
	t.Helper()
	store := google.NewStoreAt(filepath.Join(t.TempDir(), "credentials.json"))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sc := server.NewServerContext(context.Background(), store, logger, nil, nil)
	t.Cleanup(sc.Shutdown)
	return sc
}

func TestInstrumentedToolHandlerSuccess(t *testing.T) {
	sc := newTestServerContext(t)

	called := false
	wrapped := InstrumentedToolHandler("test_tool", sc, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("done"), nil
	})

	result, err := wrapped(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, called)
	assert.False(t, result.IsError)
}

func TestInstrumentedToolHandlerPassesErrorsThrough(t *testing.T) {
	sc := newTestServerContext(t)

	wantErr := errors.New("handler broke")
	wrapped := InstrumentedToolHandler("test_tool", sc, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, wantErr
	})

	_, err := wrapped(context.Background(), mcp.CallToolRequest{})
	assert.ErrorIs(t, err, wantErr)
}

func TestInstrumentedToolHandlerWithService(t *testing.T) {
	sc := newTestServerContext(t)

	wrapped := InstrumentedToolHandlerWithService("docs_get_document", "docs", "get", sc,
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultError("bad input"), nil
		})

	result, err := wrapped(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.NotNil(t, result)
	// Tool-text errors propagate unchanged.
	assert.True(t, result.IsError)
}
