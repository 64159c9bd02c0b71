// Package google_tools exposes the OAuth authorization lifecycle as MCP
// tools.
package google_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"workspacemcp/internal/google"
	"workspacemcp/internal/instrumentation"
	"workspacemcp/internal/logging"
	"workspacemcp/internal/server"
	"workspacemcp/internal/tools/common"
)

// RegisterGoogleTools registers the authorization tools with the MCP server.
func RegisterGoogleTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	authStartTool := mcp.NewTool("google_auth_start",
		mcp.WithDescription("Start the Google authorization flow. Returns a consent URL to open in a browser; the flow completes in the background and stores the credentials."),
	)
	s.AddTool(authStartTool, common.InstrumentedToolHandler("google_auth_start", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAuthStart(ctx, sc)
		}))

	authStatusTool := mcp.NewTool("google_auth_status",
		mcp.WithDescription("Report whether Google credentials are stored and which scopes the server requests."),
	)
	s.AddTool(authStatusTool, common.InstrumentedToolHandler("google_auth_status", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAuthStatus(ctx, sc)
		}))

	return nil
}

func handleAuthStart(ctx context.Context, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	flow, started, err := sc.StartAuthFlow()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to start authorization flow: %v", err)), nil
	}

	if started {
		go watchFlow(sc, flow)
	}

	text := fmt.Sprintf(
		"Open this URL in a browser to authorize Google Workspace access:\n\n%s\n\n"+
			"The flow completes in the background within %s. Use google_auth_status to check the result.",
		flow.AuthURL(), google.FlowTimeout,
	)
	if !started {
		text = "An authorization flow is already in progress.\n\n" + text
	}
	return mcp.NewToolResultText(text), nil
}

// watchFlow consumes the flow's terminal result, records it, and releases
// the server's active-flow slot.
func watchFlow(sc *server.ServerContext, flow *google.Flow) {
	err := <-flow.Done()
	sc.FinishAuthFlow(flow)

	result := instrumentation.OAuthResultSuccess
	if err != nil {
		result = instrumentation.OAuthResultFailure
		sc.Logger().Warn("authorization flow failed",
			logging.Operation("auth"),
			logging.Err(err),
		)
	} else {
		sc.Logger().Info("authorization flow completed",
			logging.Operation("auth"),
			logging.Status(logging.StatusSuccess),
		)
	}
	sc.Metrics().RecordOAuthAuth(sc.Context(), result)
}

func handleAuthStatus(ctx context.Context, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if !google.HasCredentials(sc.Store()) {
		return mcp.NewToolResultText("Not authorized: no Google credentials are stored. Run google_auth_start to begin the consent flow."), nil
	}

	text := fmt.Sprintf("Authorized. Credentials are stored at %s.\n\nRequested scopes:\n", sc.Store().Path())
	for _, scope := range google.Scopes {
		text += "  - " + scope + "\n"
	}
	return mcp.NewToolResultText(text), nil
}
