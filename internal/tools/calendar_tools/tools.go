// Package calendar_tools exposes Google Calendar operations as MCP tools.
package calendar_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"workspacemcp/internal/calendar"
	"workspacemcp/internal/instrumentation"
	"workspacemcp/internal/server"
	"workspacemcp/internal/tools/common"
)

// RegisterCalendarTools registers the Calendar tools with the MCP server.
// Write tools are skipped in read-only mode.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listEventsTool := mcp.NewTool("calendar_list_events",
		mcp.WithDescription("List calendar events in a time window, ordered by start time"),
		mcp.WithString("timeMin",
			mcp.Description("Window start as RFC 3339 timestamp (default: now)"),
		),
		mcp.WithString("timeMax",
			mcp.Description("Window end as RFC 3339 timestamp (default: 7 days from window start)"),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (default: primary)"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of events (default 25, max 250)"),
		),
	)
	s.AddTool(listEventsTool, common.InstrumentedToolHandlerWithService(
		"calendar_list_events", instrumentation.ServiceCalendar, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListEvents(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createEventTool := mcp.NewTool("calendar_create_event",
		mcp.WithDescription("Create a calendar event"),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("Event title"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Start time as RFC 3339 timestamp"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("End time as RFC 3339 timestamp"),
		),
		mcp.WithString("description",
			mcp.Description("Event description"),
		),
		mcp.WithString("location",
			mcp.Description("Event location"),
		),
		mcp.WithArray("attendees",
			mcp.Description("Attendee e-mail addresses"),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (default: primary)"),
		),
	)
	s.AddTool(createEventTool, common.InstrumentedToolHandlerWithService(
		"calendar_create_event", instrumentation.ServiceCalendar, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateEvent(ctx, request, sc)
		}))

	updateEventTool := mcp.NewTool("calendar_update_event",
		mcp.WithDescription("Update fields of an existing calendar event; omitted fields stay unchanged"),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The ID of the event"),
		),
		mcp.WithString("summary",
			mcp.Description("New event title"),
		),
		mcp.WithString("start",
			mcp.Description("New start time as RFC 3339 timestamp"),
		),
		mcp.WithString("end",
			mcp.Description("New end time as RFC 3339 timestamp"),
		),
		mcp.WithString("description",
			mcp.Description("New description"),
		),
		mcp.WithString("location",
			mcp.Description("New location"),
		),
		mcp.WithArray("attendees",
			mcp.Description("Replacement attendee e-mail addresses"),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (default: primary)"),
		),
	)
	s.AddTool(updateEventTool, common.InstrumentedToolHandlerWithService(
		"calendar_update_event", instrumentation.ServiceCalendar, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateEvent(ctx, request, sc)
		}))

	deleteEventTool := mcp.NewTool("calendar_delete_event",
		mcp.WithDescription("Delete a calendar event"),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The ID of the event"),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (default: primary)"),
		),
	)
	s.AddTool(deleteEventTool, common.InstrumentedToolHandlerWithService(
		"calendar_delete_event", instrumentation.ServiceCalendar, instrumentation.OperationDelete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteEvent(ctx, request, sc)
		}))

	return nil
}

func handleListEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	timeMin := time.Now()
	if raw := common.StringArg(args, "timeMin"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid timeMin: %v", err)), nil
		}
		timeMin = parsed
	}
	timeMax := timeMin.Add(7 * 24 * time.Hour)
	if raw := common.StringArg(args, "timeMax"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid timeMax: %v", err)), nil
		}
		timeMax = parsed
	}

	client, err := sc.CalendarClient()
	if err != nil {
		if common.IsNotAuthorized(err) {
			return common.NotAuthorizedResult(), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Calendar client: %v", err)), nil
	}

	events, err := client.ListEvents(ctx, common.StringArg(args, "calendarId"), timeMin, timeMax, common.IntArg(args, "maxResults"))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list events: %v", err)), nil
	}

	if len(events) == 0 {
		return mcp.NewToolResultText("No events in the given time window."), nil
	}

	jsonBytes, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize events: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	input := calendar.EventInput{
		Summary:     common.StringArg(args, "summary"),
		Description: common.StringArg(args, "description"),
		Location:    common.StringArg(args, "location"),
		Attendees:   common.StringSliceArg(args, "attendees"),
	}
	if input.Summary == "" {
		return mcp.NewToolResultError("summary is required"), nil
	}

	var err error
	input.Start, err = time.Parse(time.RFC3339, common.StringArg(args, "start"))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid start time: %v", err)), nil
	}
	input.End, err = time.Parse(time.RFC3339, common.StringArg(args, "end"))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid end time: %v", err)), nil
	}

	client, err := sc.CalendarClient()
	if err != nil {
		if common.IsNotAuthorized(err) {
			return common.NotAuthorizedResult(), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Calendar client: %v", err)), nil
	}

	event, err := client.CreateEvent(ctx, common.StringArg(args, "calendarId"), input)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create event: %v", err)), nil
	}

	jsonBytes, err := json.MarshalIndent(event, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize event: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func handleUpdateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	eventID := common.StringArg(args, "eventId")
	if eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	input := calendar.EventInput{
		Summary:     common.StringArg(args, "summary"),
		Description: common.StringArg(args, "description"),
		Location:    common.StringArg(args, "location"),
		Attendees:   common.StringSliceArg(args, "attendees"),
	}
	if raw := common.StringArg(args, "start"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid start time: %v", err)), nil
		}
		input.Start = parsed
	}
	if raw := common.StringArg(args, "end"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid end time: %v", err)), nil
		}
		input.End = parsed
	}

	client, err := sc.CalendarClient()
	if err != nil {
		if common.IsNotAuthorized(err) {
			return common.NotAuthorizedResult(), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Calendar client: %v", err)), nil
	}

	event, err := client.UpdateEvent(ctx, common.StringArg(args, "calendarId"), eventID, input)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update event: %v", err)), nil
	}

	jsonBytes, err := json.MarshalIndent(event, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize event: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func handleDeleteEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	eventID := common.StringArg(args, "eventId")
	if eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	client, err := sc.CalendarClient()
	if err != nil {
		if common.IsNotAuthorized(err) {
			return common.NotAuthorizedResult(), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Calendar client: %v", err)), nil
	}

	if err := client.DeleteEvent(ctx, common.StringArg(args, "calendarId"), eventID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete event: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Event %s deleted", eventID)), nil
}
