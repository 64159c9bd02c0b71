// Package calendar wraps the Google Calendar API with event listing and
// lifecycle operations.
package calendar

import (
	"context"
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"workspacemcp/internal/google"
)

const (
	// DefaultCalendarID addresses the authorized user's primary calendar.
	DefaultCalendarID = "primary"

	defaultMaxResults = 25
	maxMaxResults     = 250
)

// Client wraps the Google Calendar API service.
type Client struct {
	service *calendar.Service
}

// NewClient creates a Calendar client authenticated with the stored
// credentials. Returns google.ErrNotAuthorized when no credentials are
// stored.
func NewClient(ctx context.Context, store *google.Store) (*Client, error) {
	httpClient, err := google.NewHTTPClient(ctx, store)
	if err != nil {
		return nil, err
	}

	service, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{service: service}, nil
}

// ListEvents returns single events in the given time window, ordered by
// start time. Recurring events are expanded into their instances.
func (c *Client) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time, maxResults int64) ([]Event, error) {
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	if !timeMax.IsZero() && !timeMax.After(timeMin) {
		return nil, fmt.Errorf("time window is empty: max %s is not after min %s", timeMax.Format(time.RFC3339), timeMin.Format(time.RFC3339))
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	if maxResults > maxMaxResults {
		maxResults = maxMaxResults
	}

	call := c.service.Events.List(calendarID).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxResults).
		Context(ctx)
	if !timeMin.IsZero() {
		call = call.TimeMin(timeMin.Format(time.RFC3339))
	}
	if !timeMax.IsZero() {
		call = call.TimeMax(timeMax.Format(time.RFC3339))
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events in calendar %s: %w", calendarID, err)
	}

	events := make([]Event, 0, len(resp.Items))
	for _, e := range resp.Items {
		events = append(events, eventFromAPI(e))
	}
	return events, nil
}

// CreateEvent creates an event.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, input EventInput) (*Event, error) {
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	if input.Summary == "" {
		return nil, fmt.Errorf("summary is required")
	}
	if input.Start.IsZero() || input.End.IsZero() {
		return nil, fmt.Errorf("start and end times are required")
	}
	if !input.End.After(input.Start) {
		return nil, fmt.Errorf("end time must be after start time")
	}

	created, err := c.service.Events.Insert(calendarID, input.toAPI()).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event in calendar %s: %w", calendarID, err)
	}

	event := eventFromAPI(created)
	return &event, nil
}

// UpdateEvent patches an event with the non-zero fields of input.
func (c *Client) UpdateEvent(ctx context.Context, calendarID, eventID string, input EventInput) (*Event, error) {
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	if eventID == "" {
		return nil, fmt.Errorf("eventID is required")
	}

	patch := &calendar.Event{}
	changed := false
	if input.Summary != "" {
		patch.Summary = input.Summary
		changed = true
	}
	if input.Description != "" {
		patch.Description = input.Description
		changed = true
	}
	if input.Location != "" {
		patch.Location = input.Location
		changed = true
	}
	if !input.Start.IsZero() {
		patch.Start = &calendar.EventDateTime{DateTime: input.Start.Format(time.RFC3339)}
		changed = true
	}
	if !input.End.IsZero() {
		patch.End = &calendar.EventDateTime{DateTime: input.End.Format(time.RFC3339)}
		changed = true
	}
	if len(input.Attendees) > 0 {
		patch.Attendees = attendeesToAPI(input.Attendees)
		changed = true
	}
	if !changed {
		return nil, fmt.Errorf("no fields to update")
	}

	updated, err := c.service.Events.Patch(calendarID, eventID, patch).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update event %s in calendar %s: %w", eventID, calendarID, err)
	}

	event := eventFromAPI(updated)
	return &event, nil
}

// DeleteEvent removes an event from the calendar.
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	if eventID == "" {
		return fmt.Errorf("eventID is required")
	}

	if err := c.service.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete event %s from calendar %s: %w", eventID, calendarID, err)
	}

	return nil
}

func attendeesToAPI(emails []string) []*calendar.EventAttendee {
	attendees := make([]*calendar.EventAttendee, 0, len(emails))
	for _, email := range emails {
		attendees = append(attendees, &calendar.EventAttendee{Email: email})
	}
	return attendees
}

func eventFromAPI(e *calendar.Event) Event {
	event := Event{
		ID:          e.Id,
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
		HTMLLink:    e.HtmlLink,
		Status:      e.Status,
	}
	if e.Start != nil {
		event.Start = eventTime(e.Start)
	}
	if e.End != nil {
		event.End = eventTime(e.End)
	}
	for _, a := range e.Attendees {
		event.Attendees = append(event.Attendees, a.Email)
	}
	return event
}

// eventTime picks the timed value for regular events and the date value for
// all-day events.
func eventTime(dt *calendar.EventDateTime) string {
	if dt.DateTime != "" {
		return dt.DateTime
	}
	return dt.Date
}
