package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"workspacemcp/internal/instrumentation"
	"workspacemcp/internal/server"
)

// ToolHandler is the mcp-go tool handler signature.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// InstrumentedToolHandler wraps a tool handler with invocation metrics and
// audit logging.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return instrumented(toolName, "", "", sc, handler)
}

// InstrumentedToolHandlerWithService additionally records a Google API
// operation metric attributed to the given service and operation.
func InstrumentedToolHandlerWithService(toolName, serviceName, operation string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return instrumented(toolName, serviceName, operation, sc, handler)
}

func instrumented(toolName, serviceName, operation string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx)
		if serviceName != "" {
			invocation.WithService(serviceName, operation)
		}

		result, err := handler(ctx, request)
		duration := time.Since(invocation.StartTime)

		// A result flagged IsError is a failure even though the handler
		// returned it as tool text.
		status := instrumentation.StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = instrumentation.StatusError
		}
		invocation.Complete(err)
		invocation.Success = status == instrumentation.StatusSuccess

		sc.Metrics().RecordToolInvocation(ctx, toolName, status, duration)
		if serviceName != "" {
			sc.Metrics().RecordGoogleAPIOperation(ctx, serviceName, operation, status, duration)
		}
		sc.Audit().LogToolInvocation(invocation)

		return result, err
	}
}
