package actions

import (
	"context"
	"testing"
	"time"
)

type fakeSource struct {
	events []Candidate
	from   time.Time
	to     time.Time
}

func (f *fakeSource) EventsBetween(ctx context.Context, from, to time.Time) ([]Candidate, error) {
	f.from, f.to = from, to
	var out []Candidate
	for _, ev := range f.events {
		if !ev.Start.Before(from) && ev.Start.Before(to) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func TestFindEventExplicitTimeUsesNarrowWindow(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	at := time.Date(2024, 2, 1, 10, 0, 0, 0, paris)
	src := &fakeSource{events: []Candidate{
		{ID: "a", Summary: "Réunion projet", Start: at.Add(10 * time.Minute)},
		{ID: "b", Summary: "Réunion budget", Start: at.Add(3 * time.Hour)},
	}}

	m, err := NewDisambiguator(src, paris).FindEvent(context.Background(), "réunion", at, true)
	if err != nil {
		t.Fatalf("FindEvent: %v", err)
	}
	if m.Status != StatusSuccess || m.ID != "a" {
		t.Fatalf("got %+v, want single match a", m)
	}
	if want := at.Add(-30 * time.Minute); !src.from.Equal(want) {
		t.Fatalf("window start = %v, want %v", src.from, want)
	}
}

func TestFindEventDateOnlyUsesCivilDay(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	at := time.Date(2024, 2, 1, 9, 0, 0, 0, paris)
	src := &fakeSource{events: []Candidate{
		{ID: "a", Summary: "Dentiste", Start: time.Date(2024, 2, 1, 16, 30, 0, 0, paris)},
	}}

	m, err := NewDisambiguator(src, paris).FindEvent(context.Background(), "dentiste", at, false)
	if err != nil {
		t.Fatalf("FindEvent: %v", err)
	}
	if m.Status != StatusSuccess || m.ID != "a" {
		t.Fatalf("got %+v, want dentiste found within the day", m)
	}
	if src.from.Hour() != 0 || !src.to.Equal(src.from.AddDate(0, 0, 1)) {
		t.Fatalf("window is not the civil day: %v .. %v", src.from, src.to)
	}
}

func TestFindEventSeveralMatchesNeverAutoPicks(t *testing.T) {
	paris, _ := time.LoadLocation("Europe/Paris")
	at := time.Date(2024, 2, 1, 12, 0, 0, 0, paris)
	src := &fakeSource{events: []Candidate{
		{ID: "a", Summary: "Réunion projet", Start: at},
		{ID: "b", Summary: "Réunion budget", Start: at.Add(2 * time.Hour)},
	}}

	m, err := NewDisambiguator(src, paris).FindEvent(context.Background(), "réunion", at, false)
	if err != nil {
		t.Fatalf("FindEvent: %v", err)
	}
	if m.Status != StatusMultipleFound {
		t.Fatalf("status = %s, want %s", m.Status, StatusMultipleFound)
	}
	if m.ID != "" {
		t.Fatalf("id auto-picked among several matches: %s", m.ID)
	}
	if len(m.Candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(m.Candidates))
	}
}

func TestFindEventNoMatch(t *testing.T) {
	paris, _ := time.LoadLocation("Europe/Paris")
	at := time.Date(2024, 2, 1, 12, 0, 0, 0, paris)
	src := &fakeSource{}

	m, err := NewDisambiguator(src, paris).FindEvent(context.Background(), "dentiste", at, false)
	if err != nil {
		t.Fatalf("FindEvent: %v", err)
	}
	if m.Status != StatusNotFound {
		t.Fatalf("status = %s, want %s", m.Status, StatusNotFound)
	}
}
