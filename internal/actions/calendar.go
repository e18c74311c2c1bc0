package actions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eva/internal/dates"
	"eva/internal/logger"
)

// CalendarEvent is the payload for creating an event.
type CalendarEvent struct {
	Summary     string
	Location    string
	Description string
	Start       time.Time
	End         time.Time
}

// CalendarService is the slice of the calendar collaborator the
// handlers need. It also satisfies CandidateSource, so the same value
// backs reference disambiguation.
type CalendarService interface {
	CreateEvent(ctx context.Context, ev CalendarEvent) (string, error)
	EventsBetween(ctx context.Context, from, to time.Time) ([]Candidate, error)
	DeleteEvent(ctx context.Context, id string) error
	MoveEvent(ctx context.Context, id string, start, end time.Time) error
}

// calendarHandlers groups the calendar actions around their shared
// collaborators.
type calendarHandlers struct {
	svc CalendarService
	dis *Disambiguator
	now func() time.Time
	loc *time.Location
}

// RegisterCalendar wires the calendar actions into the registry.
func RegisterCalendar(reg *Registry, svc CalendarService, now func() time.Time, loc *time.Location) {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	h := &calendarHandlers{svc: svc, dis: NewDisambiguator(svc, loc), now: now, loc: loc}
	reg.Register("create_calendar_event", h.create)
	reg.Register("list_calendar_events", h.list)
	reg.Register("delete_calendar_event", h.remove)
	reg.Register("update_calendar_event", h.update)
}

func (h *calendarHandlers) resolveDate(phrase string) (time.Time, bool) {
	return dates.Resolve(phrase, h.now().In(h.loc))
}

func (h *calendarHandlers) create(ctx context.Context, ents Entities) Result {
	title := ents.First("summary", "title")
	phrase := ents.First("date", "datetime", "start_time")
	start, ok := h.resolveDate(phrase)
	if !ok {
		return Message(fmt.Sprintf("Je n'ai pas compris la date « %s ». Pouvez-vous la reformuler ?", phrase))
	}

	ev := CalendarEvent{
		Summary:     title,
		Location:    ents.String("location"),
		Description: ents.String("description"),
		Start:       start,
		End:         start.Add(time.Hour),
	}
	if mins := ents.Int("duration_minutes", 0); mins > 0 {
		ev.End = start.Add(time.Duration(mins) * time.Minute)
	}

	id, err := h.svc.CreateEvent(ctx, ev)
	if err != nil {
		logger.Error("calendar: create %q: %v", title, err)
		return errorRecord("Désolé, je n'ai pas pu créer l'événement dans votre calendrier.", nil)
	}
	return &Record{
		Status:  StatusSuccess,
		Summary: fmt.Sprintf("J'ai créé l'événement « %s » le %s.", title, dates.FormatDateTime(start)),
		Fields:  map[string]string{"event_id": id},
	}
}

func (h *calendarHandlers) list(ctx context.Context, ents Entities) Result {
	now := h.now().In(h.loc)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.loc)
	to := from.AddDate(0, 0, 7)
	label := "ces 7 prochains jours"

	if phrase := ents.First("date", "datetime"); phrase != "" {
		if day, ok := h.resolveDate(phrase); ok {
			local := day.In(h.loc)
			from = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, h.loc)
			to = from.AddDate(0, 0, 1)
			label = "le " + dates.FormatFull(from)
		}
	}

	events, err := h.svc.EventsBetween(ctx, from, to)
	if err != nil {
		logger.Error("calendar: list: %v", err)
		return errorRecord("Désolé, je n'ai pas pu consulter votre calendrier.", nil)
	}
	if len(events) == 0 {
		return &Record{Status: StatusSuccess, Summary: fmt.Sprintf("Vous n'avez aucun événement prévu %s.", label)}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Voici vos événements %s :\n", label)
	for _, ev := range events {
		fmt.Fprintf(&b, "- %s : %s\n", dates.FormatDateTime(ev.Start.In(h.loc)), ev.Summary)
	}
	return &Record{Status: StatusSuccess, Summary: strings.TrimRight(b.String(), "\n")}
}

func (h *calendarHandlers) locate(ctx context.Context, ents Entities) (Match, string, Result) {
	name := ents.First("summary", "title")
	at := h.now()
	explicit := false
	if phrase := ents.First("date", "datetime"); phrase != "" {
		if t, ok := h.resolveDate(phrase); ok {
			at = t
			explicit = dates.HasExplicitTime(phrase)
		}
	}

	m, err := h.dis.FindEvent(ctx, name, at, explicit)
	if err != nil {
		logger.Error("calendar: find %q: %v", name, err)
		return Match{}, name, errorRecord("Désolé, je n'ai pas pu consulter votre calendrier.", nil)
	}
	switch m.Status {
	case StatusNotFound:
		return m, name, &Record{Status: StatusNotFound, Summary: fmt.Sprintf("Je n'ai trouvé aucun événement correspondant à « %s ».", name)}
	case StatusMultipleFound:
		var b strings.Builder
		fmt.Fprintf(&b, "Plusieurs événements correspondent à « %s » :\n", name)
		for _, c := range m.Candidates {
			fmt.Fprintf(&b, "- %s : %s\n", dates.FormatDateTime(c.Start.In(h.loc)), c.Summary)
		}
		b.WriteString("Pouvez-vous préciser lequel ?")
		return m, name, &Record{Status: StatusMultipleFound, Summary: b.String()}
	}
	return m, name, nil
}

func (h *calendarHandlers) remove(ctx context.Context, ents Entities) Result {
	m, _, early := h.locate(ctx, ents)
	if early != nil {
		return early
	}
	if err := h.svc.DeleteEvent(ctx, m.ID); err != nil {
		logger.Error("calendar: delete %s: %v", m.ID, err)
		return errorRecord("Désolé, je n'ai pas pu supprimer cet événement.", nil)
	}
	return &Record{Status: StatusSuccess, Summary: fmt.Sprintf("J'ai supprimé l'événement « %s ».", m.Summary)}
}

func (h *calendarHandlers) update(ctx context.Context, ents Entities) Result {
	m, _, early := h.locate(ctx, ents)
	if early != nil {
		return early
	}

	phrase := ents.First("new_date", "new_datetime", "new_start_time")
	start, ok := h.resolveDate(phrase)
	if !ok {
		return Message(fmt.Sprintf("Je n'ai pas compris la nouvelle date « %s ». Pouvez-vous la reformuler ?", phrase))
	}
	if err := h.svc.MoveEvent(ctx, m.ID, start, start.Add(time.Hour)); err != nil {
		logger.Error("calendar: move %s: %v", m.ID, err)
		return errorRecord("Désolé, je n'ai pas pu déplacer cet événement.", nil)
	}
	return &Record{Status: StatusSuccess, Summary: fmt.Sprintf("J'ai déplacé l'événement « %s » au %s.", m.Summary, dates.FormatDateTime(start))}
}
