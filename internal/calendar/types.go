package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// Event is the tool-facing view of a calendar event. Start and End are
// RFC 3339 timestamps for timed events and plain dates for all-day events.
type Event struct {
	ID          string   `json:"id"`
	Summary     string   `json:"summary"`
	Description string   `json:"description,omitempty"`
	Location    string   `json:"location,omitempty"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Attendees   []string `json:"attendees,omitempty"`
	HTMLLink    string   `json:"htmlLink,omitempty"`
	Status      string   `json:"status,omitempty"`
}

// EventInput carries the writable fields of an event. For updates, zero
// values mean "leave unchanged".
type EventInput struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	Attendees   []string
}

func (in EventInput) toAPI() *calendar.Event {
	return &calendar.Event{
		Summary:     in.Summary,
		Description: in.Description,
		Location:    in.Location,
		Start:       &calendar.EventDateTime{DateTime: in.Start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: in.End.Format(time.RFC3339)},
		Attendees:   attendeesToAPI(in.Attendees),
	}
}
