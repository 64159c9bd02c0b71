// Package common holds helpers shared by all tool packages: argument
// extraction, the not-authorized tool result, and the instrumentation
// wrapper applied to every handler.
package common

import (
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"workspacemcp/internal/google"
)

const notAuthorizedMessage = "Not authorized with Google. Run the google_auth_start tool (or `workspacemcp auth` in a terminal) and complete the consent flow, then retry."

// NotAuthorizedResult is the tool result returned when no Google credentials
// are stored yet. Missing authorization is user-fixable, so it is reported
// as tool text rather than a protocol error.
func NotAuthorizedResult() *mcp.CallToolResult {
	return mcp.NewToolResultError(notAuthorizedMessage)
}

// IsNotAuthorized reports whether err is the missing-credentials sentinel.
func IsNotAuthorized(err error) bool {
	return errors.Is(err, google.ErrNotAuthorized)
}

// StringArg returns a string argument, or "" when absent or of the wrong
// type.
func StringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// IntArg returns a numeric argument as int64. JSON numbers arrive as
// float64; missing or non-numeric values return 0.
func IntArg(args map[string]any, key string) int64 {
	switch v := args[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}

// StringSliceArg returns a string-array argument, skipping non-string
// elements.
func StringSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// RowsArg returns a 2D cell-values argument ([["a","b"],["c","d"]]).
func RowsArg(args map[string]any, key string) [][]any {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	rows := make([][]any, 0, len(raw))
	for _, r := range raw {
		if cells, ok := r.([]any); ok {
			rows = append(rows, cells)
		}
	}
	return rows
}
