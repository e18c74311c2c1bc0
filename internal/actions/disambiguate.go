package actions

import (
	"context"
	"strings"
	"time"

	"eva/internal/logger"
)

// Candidate is one event considered during reference resolution.
type Candidate struct {
	ID      string
	Summary string
	Start   time.Time
}

// CandidateSource lists events overlapping a time window. The calendar
// collaborator implements it.
type CandidateSource interface {
	EventsBetween(ctx context.Context, from, to time.Time) ([]Candidate, error)
}

// Disambiguator resolves a user's loose event reference (a name plus a
// resolved date) to a concrete event id.
type Disambiguator struct {
	source CandidateSource
	loc    *time.Location
}

func NewDisambiguator(source CandidateSource, loc *time.Location) *Disambiguator {
	if loc == nil {
		loc = time.Local
	}
	return &Disambiguator{source: source, loc: loc}
}

// Match is the outcome of a disambiguation attempt.
type Match struct {
	Status     Status
	ID         string
	Summary    string
	Candidates []Candidate
}

// FindEvent looks for events whose summary contains name, case
// insensitively. When the reference carried an explicit time, the
// search window is ±30 minutes around it; otherwise the whole civil
// day in the configured timezone. Exactly one hit resolves to an id.
// Several hits are never auto-picked: the caller must ask the user to
// choose.
func (d *Disambiguator) FindEvent(ctx context.Context, name string, at time.Time, explicitTime bool) (Match, error) {
	var from, to time.Time
	if explicitTime {
		from = at.Add(-30 * time.Minute)
		to = at.Add(30 * time.Minute)
	} else {
		local := at.In(d.loc)
		from = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, d.loc)
		to = from.AddDate(0, 0, 1)
	}

	events, err := d.source.EventsBetween(ctx, from, to)
	if err != nil {
		return Match{}, err
	}

	needle := strings.ToLower(strings.TrimSpace(name))
	var hits []Candidate
	for _, ev := range events {
		if needle == "" || strings.Contains(strings.ToLower(ev.Summary), needle) {
			hits = append(hits, ev)
		}
	}

	switch len(hits) {
	case 0:
		logger.Debug("disambiguate: no event matching %q between %s and %s", name, from.Format(time.RFC3339), to.Format(time.RFC3339))
		return Match{Status: StatusNotFound}, nil
	case 1:
		return Match{Status: StatusSuccess, ID: hits[0].ID, Summary: hits[0].Summary}, nil
	default:
		return Match{Status: StatusMultipleFound, Candidates: hits}, nil
	}
}
