// Package sheets_tools exposes Google Sheets operations as MCP tools.
package sheets_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"workspacemcp/internal/instrumentation"
	"workspacemcp/internal/server"
	"workspacemcp/internal/tools/common"
)

// RegisterSheetsTools registers the Sheets tools with the MCP server. Write
// tools are skipped in read-only mode.
func RegisterSheetsTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	readRangeTool := mcp.NewTool("sheets_read_range",
		mcp.WithDescription("Read cell values from a spreadsheet range in A1 notation"),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("A1-notation range, e.g. 'Sheet1!A1:C10'"),
		),
	)
	s.AddTool(readRangeTool, common.InstrumentedToolHandlerWithService(
		"sheets_read_range", instrumentation.ServiceSheets, instrumentation.OperationRead, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReadRange(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createSpreadsheetTool := mcp.NewTool("sheets_create_spreadsheet",
		mcp.WithDescription("Create a new spreadsheet with the given title"),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Title of the new spreadsheet"),
		),
	)
	s.AddTool(createSpreadsheetTool, common.InstrumentedToolHandlerWithService(
		"sheets_create_spreadsheet", instrumentation.ServiceSheets, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateSpreadsheet(ctx, request, sc)
		}))

	updateRangeTool := mcp.NewTool("sheets_update_range",
		mcp.WithDescription("Overwrite cell values in a spreadsheet range"),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("A1-notation range to overwrite"),
		),
		mcp.WithArray("values",
			mcp.Required(),
			mcp.Description("Rows of cell values, e.g. [[\"a\", \"b\"], [\"c\", \"d\"]]"),
		),
	)
	s.AddTool(updateRangeTool, common.InstrumentedToolHandlerWithService(
		"sheets_update_range", instrumentation.ServiceSheets, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateRange(ctx, request, sc)
		}))

	appendRowsTool := mcp.NewTool("sheets_append_rows",
		mcp.WithDescription("Append rows after the last row of the table containing the given range"),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("A1-notation range identifying the table to append to"),
		),
		mcp.WithArray("values",
			mcp.Required(),
			mcp.Description("Rows of cell values to append"),
		),
	)
	s.AddTool(appendRowsTool, common.InstrumentedToolHandlerWithService(
		"sheets_append_rows", instrumentation.ServiceSheets, instrumentation.OperationAppend, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAppendRows(ctx, request, sc)
		}))

	return nil
}

func handleReadRange(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	spreadsheetID := common.StringArg(args, "spreadsheetId")
	readRange := common.StringArg(args, "range")
	if spreadsheetID == "" || readRange == "" {
		return mcp.NewToolResultError("spreadsheetId and range are required"), nil
	}

	client, err := sc.SheetsClient()
	if err != nil {
		if common.IsNotAuthorized(err) {
			return common.NotAuthorizedResult(), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Sheets client: %v", err)), nil
	}

	values, err := client.ReadRange(ctx, spreadsheetID, readRange)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read range: %v", err)), nil
	}

	jsonBytes, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize values: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func handleCreateSpreadsheet(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	title := common.StringArg(args, "title")
	if title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}

	client, err := sc.SheetsClient()
	if err != nil {
		if common.IsNotAuthorized(err) {
			return common.NotAuthorizedResult(), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Sheets client: %v", err)), nil
	}

	ss, err := client.CreateSpreadsheet(ctx, title)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create spreadsheet: %v", err)), nil
	}

	jsonBytes, err := json.MarshalIndent(ss, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize spreadsheet: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func handleUpdateRange(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	spreadsheetID := common.StringArg(args, "spreadsheetId")
	updateRange := common.StringArg(args, "range")
	if spreadsheetID == "" || updateRange == "" {
		return mcp.NewToolResultError("spreadsheetId and range are required"), nil
	}
	values := common.RowsArg(args, "values")
	if len(values) == 0 {
		return mcp.NewToolResultError("values must be a non-empty array of rows"), nil
	}

	client, err := sc.SheetsClient()
	if err != nil {
		if common.IsNotAuthorized(err) {
			return common.NotAuthorizedResult(), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Sheets client: %v", err)), nil
	}

	updated, err := client.UpdateRange(ctx, spreadsheetID, updateRange, values)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update range: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Updated %d cells in %s", updated, updateRange)), nil
}

func handleAppendRows(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	spreadsheetID := common.StringArg(args, "spreadsheetId")
	appendRange := common.StringArg(args, "range")
	if spreadsheetID == "" || appendRange == "" {
		return mcp.NewToolResultError("spreadsheetId and range are required"), nil
	}
	values := common.RowsArg(args, "values")
	if len(values) == 0 {
		return mcp.NewToolResultError("values must be a non-empty array of rows"), nil
	}

	client, err := sc.SheetsClient()
	if err != nil {
		if common.IsNotAuthorized(err) {
			return common.NotAuthorizedResult(), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Sheets client: %v", err)), nil
	}

	updatedRange, err := client.AppendRows(ctx, spreadsheetID, appendRange, values)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to append rows: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Appended %d rows at %s", len(values), updatedRange)), nil
}
