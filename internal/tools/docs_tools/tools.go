// Package docs_tools exposes Google Docs operations as MCP tools.
package docs_tools

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

// RegisterDocsTools registers the Docs tools with the MCP server. Write
// tools are skipped in read-only mode.
func RegisterDocsTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	getDocumentTool := mcp.NewTool("docs_get_document",
		mcp.WithDescription("Get a Google Doc's title and text content by document ID"),
		mcp.WithString("documentId",
			mcp.Required(),
			mcp.Description("The ID of the Google Doc"),
		),
	)
	s.AddTool(getDocumentTool, common.InstrumentedToolHandlerWithService(
		"docs_get_document", instrumentation.ServiceDocs, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetDocument(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createDocumentTool := mcp.NewTool("docs_create_document",
		mcp.WithDescription("Create a new Google Doc with a title and optional initial body text"),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Title of the new document"),
		),
		mcp.WithString("body",
			mcp.Description("Initial body text"),
		),
	)
	s.AddTool(createDocumentTool, common.InstrumentedToolHandlerWithService(
		"docs_create_document", instrumentation.ServiceDocs, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateDocument(ctx, request, sc)
		}))

	appendTextTool := mcp.NewTool("docs_append_text",
		mcp.WithDescription("Append text at the end of an existing Google Doc"),
		mcp.WithString("documentId",
			mcp.Required(),
			mcp.Description("The ID of the Google Doc"),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text to append"),
		),
	)
	s.AddTool(appendTextTool, common.InstrumentedToolHandlerWithService(
		"docs_append_text", instrumentation.ServiceDocs, instrumentation.OperationAppend, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAppendText(ctx, request, sc)
		}))

	return nil
}

func handleGetDocument(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	documentID := common.StringArg(args, "documentId")
	if documentID == "" {
		return mcp.NewToolResultError("documentId is required"), nil
	}

	client, err := sc.DocsClient()
	if err != nil {
		if common.IsNotAuthorized(err) {
			return common.NotAuthorizedResult(), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Docs client: %v", err)), nil
	}

	doc, err := client.GetDocument(ctx, documentID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get document: %v", err)), nil
	}

	result := fmt.Sprintf("%s (%s)\n\n%s", doc.Title, doc.ID, doc.Text)
	return mcp.NewToolResultText(result), nil
}

func handleCreateDocument(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	title := common.StringArg(args, "title")
	if title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}

	client, err := sc.DocsClient()
	if err != nil {
		if common.IsNotAuthorized(err) {
			return common.NotAuthorizedResult(), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Docs client: %v", err)), nil
	}

	doc, err := client.CreateDocument(ctx, title, common.StringArg(args, "body"))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create document: %v", err)), nil
	}

	jsonBytes, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize document: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func handleAppendText(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	documentID := common.StringArg(args, "documentId")
	if documentID == "" {
		return mcp.NewToolResultError("documentId is required"), nil
	}
	text := common.StringArg(args, "text")
	if text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	client, err := sc.DocsClient()
	if err != nil {
		if common.IsNotAuthorized(err) {
			return common.NotAuthorizedResult(), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Docs client: %v", err)), nil
	}

	if err := client.AppendText(ctx, documentID, text); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to append text: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Appended %d characters to document %s", len(text), documentID)), nil
}
