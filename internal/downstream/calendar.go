package downstream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/studyhub/sessionview/internal/domain"
	"github.com/studyhub/sessionview/internal/timefmt"
)

type CalendarClient struct {
	backend
}

func NewCalendarClient(baseURL string, c *Client) *CalendarClient {
	return &CalendarClient{backend: newBackend(baseURL, c)}
}

// ListAll returns every event visible to the caller.
func (c *CalendarClient) ListAll(ctx context.Context) ([]domain.RawEvent, error) {
	var out []domain.RawEvent
	if err := c.call(ctx, http.MethodGet, "/api/calendar/events/all", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CalendarClient) ListByGroup(ctx context.Context, groupID int64) ([]domain.RawEvent, error) {
	var out []domain.RawEvent
	path := fmt.Sprintf("/api/calendar/events/group/%d", groupID)
	if err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CalendarClient) Create(ctx context.Context, body domain.CreateEventBody) (*domain.RawEvent, error) {
	var out domain.RawEvent
	if err := c.call(ctx, http.MethodPost, "/api/calendar/events", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CalendarClient) Delete(ctx context.Context, id int64) error {
	return c.call(ctx, http.MethodDelete, fmt.Sprintf("/api/calendar/events/%d", id), nil, nil)
}

// NewCreateBody converts a validated form into the backend wire body. Times
// are sent as UTC local-date-time strings; new sessions are always SCHEDULED.
func NewCreateBody(ns domain.NewSession) domain.CreateEventBody {
	return domain.CreateEventBody{
		Topic:         ns.Topic,
		Description:   ns.Description,
		OrganizerName: ns.OrganizerName,
		SessionType:   ns.SessionType,
		Status:        domain.StatusScheduled,
		StartTime:     timefmt.FormatBackend(ns.Start),
		EndTime:       timefmt.FormatBackend(ns.End),
		MeetingLink:   ns.MeetingLink,
		Passcode:      ns.Passcode,
		Location:      ns.Location,
		GroupID:       ns.GroupID,
	}
}
