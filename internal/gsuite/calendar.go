package gsuite

import (
	"context"
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"eva/internal/actions"
	"eva/internal/logger"
)

// Calendar implements actions.CalendarService against the primary
// Google calendar.
type Calendar struct {
	auth *Auth
	loc  *time.Location
}

func NewCalendar(auth *Auth, loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	return &Calendar{auth: auth, loc: loc}
}

func (c *Calendar) service(ctx context.Context) (*calendar.Service, error) {
	client, err := c.auth.Client(ctx)
	if err != nil {
		return nil, err
	}
	return calendar.NewService(ctx, option.WithHTTPClient(client))
}

func (c *Calendar) CreateEvent(ctx context.Context, ev actions.CalendarEvent) (string, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return "", err
	}

	item := &calendar.Event{
		Summary:     ev.Summary,
		Location:    ev.Location,
		Description: ev.Description,
		Start:       &calendar.EventDateTime{DateTime: ev.Start.Format(time.RFC3339), TimeZone: c.loc.String()},
		End:         &calendar.EventDateTime{DateTime: ev.End.Format(time.RFC3339), TimeZone: c.loc.String()},
	}
	created, err := svc.Events.Insert("primary", item).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert event: %w", c.auth.mapAPIError(err))
	}
	logger.Info("gsuite: created event %s (%s)", created.Id, ev.Summary)
	return created.Id, nil
}

func (c *Calendar) EventsBetween(ctx context.Context, from, to time.Time) ([]actions.Candidate, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	list, err := svc.Events.List("primary").
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", c.auth.mapAPIError(err))
	}

	out := make([]actions.Candidate, 0, len(list.Items))
	for _, ev := range list.Items {
		start, err := parseEventStart(ev, c.loc)
		if err != nil {
			logger.Warn("gsuite: skip event %s: %v", ev.Id, err)
			continue
		}
		out = append(out, actions.Candidate{ID: ev.Id, Summary: ev.Summary, Start: start})
	}
	return out, nil
}

func (c *Calendar) DeleteEvent(ctx context.Context, id string) error {
	svc, err := c.service(ctx)
	if err != nil {
		return err
	}
	if err := svc.Events.Delete("primary", id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete event %s: %w", id, c.auth.mapAPIError(err))
	}
	return nil
}

func (c *Calendar) MoveEvent(ctx context.Context, id string, start, end time.Time) error {
	svc, err := c.service(ctx)
	if err != nil {
		return err
	}

	patch := &calendar.Event{
		Start: &calendar.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: c.loc.String()},
		End:   &calendar.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: c.loc.String()},
	}
	if _, err := svc.Events.Patch("primary", id, patch).Context(ctx).Do(); err != nil {
		return fmt.Errorf("move event %s: %w", id, c.auth.mapAPIError(err))
	}
	return nil
}

// parseEventStart handles both timed and all-day events.
func parseEventStart(ev *calendar.Event, loc *time.Location) (time.Time, error) {
	if ev.Start == nil {
		return time.Time{}, fmt.Errorf("event has no start")
	}
	if ev.Start.DateTime != "" {
		return time.Parse(time.RFC3339, ev.Start.DateTime)
	}
	return time.ParseInLocation("2006-01-02", ev.Start.Date, loc)
}
