// Package drive_tools exposes Google Drive operations as MCP tools.
package drive_tools

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

// RegisterDriveTools registers the Drive tools with the MCP server. Write
// tools are skipped in read-only mode.
func RegisterDriveTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	searchFilesTool := mcp.NewTool("drive_search_files",
		mcp.WithDescription("Search Drive files with a Drive query, e.g. \"name contains 'report'\""),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Drive search query"),
		),
		mcp.WithNumber("pageSize",
			mcp.Description("Maximum number of results (default 20, max 100)"),
		),
	)
	s.AddTool(searchFilesTool, common.InstrumentedToolHandlerWithService(
		"drive_search_files", instrumentation.ServiceDrive, instrumentation.OperationSearch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchFiles(ctx, request, sc)
		}))

	readFileTool := mcp.NewTool("drive_read_file",
		mcp.WithDescription("Read a Drive file's content as text. Google Docs, Sheets, and Slides are exported as text/CSV."),
		mcp.WithString("fileId",
			mcp.Required(),
			mcp.Description("The ID of the file"),
		),
	)
	s.AddTool(readFileTool, common.InstrumentedToolHandlerWithService(
		"drive_read_file", instrumentation.ServiceDrive, instrumentation.OperationRead, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReadFile(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createFileTool := mcp.NewTool("drive_create_file",
		mcp.WithDescription("Create a Drive file with the given name and content"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("File name"),
		),
		mcp.WithString("content",
			mcp.Description("File content"),
		),
		mcp.WithString("mimeType",
			mcp.Description("MIME type (default text/plain)"),
		),
	)
	s.AddTool(createFileTool, common.InstrumentedToolHandlerWithService(
		"drive_create_file", instrumentation.ServiceDrive, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateFile(ctx, request, sc)
		}))

	trashFileTool := mcp.NewTool("drive_trash_file",
		mcp.WithDescription("Move a Drive file to the trash (reversible in the Drive UI)"),
		mcp.WithString("fileId",
			mcp.Required(),
			mcp.Description("The ID of the file"),
		),
	)
	s.AddTool(trashFileTool, common.InstrumentedToolHandlerWithService(
		"drive_trash_file", instrumentation.ServiceDrive, instrumentation.OperationTrash, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleTrashFile(ctx, request, sc)
		}))

	return nil
}

func handleSearchFiles(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	query := common.StringArg(args, "query")
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	client, err := sc.DriveClient()
	if err != nil {
		if common.IsNotAuthorized(err) {
			return common.NotAuthorizedResult(), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Drive client: %v", err)), nil
	}

	files, err := client.SearchFiles(ctx, query, common.IntArg(args, "pageSize"))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search files: %v", err)), nil
	}

	if len(files) == 0 {
		return mcp.NewToolResultText("No files matched the query."), nil
	}

	jsonBytes, err := json.MarshalIndent(files, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize files: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func handleReadFile(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	fileID := common.StringArg(args, "fileId")
	if fileID == "" {
		return mcp.NewToolResultError("fileId is required"), nil
	}

	client, err := sc.DriveClient()
	if err != nil {
		if common.IsNotAuthorized(err) {
			return common.NotAuthorizedResult(), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Drive client: %v", err)), nil
	}

	content, err := client.ReadFile(ctx, fileID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read file: %v", err)), nil
	}

	result := fmt.Sprintf("%s (%s, %s)\n\n%s", content.Name, content.ID, content.MimeType, content.Content)
	return mcp.NewToolResultText(result), nil
}

func handleCreateFile(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name := common.StringArg(args, "name")
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	client, err := sc.DriveClient()
	if err != nil {
		if common.IsNotAuthorized(err) {
			return common.NotAuthorizedResult(), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Drive client: %v", err)), nil
	}

	file, err := client.CreateFile(ctx, name, common.StringArg(args, "mimeType"), common.StringArg(args, "content"))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create file: %v", err)), nil
	}

	jsonBytes, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize file: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func handleTrashFile(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	fileID := common.StringArg(args, "fileId")
	if fileID == "" {
		return mcp.NewToolResultError("fileId is required"), nil
	}

	client, err := sc.DriveClient()
	if err != nil {
		if common.IsNotAuthorized(err) {
			return common.NotAuthorizedResult(), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Drive client: %v", err)), nil
	}

	if err := client.TrashFile(ctx, fileID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to trash file: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("File %s moved to trash", fileID)), nil
}
