package dates

import (
	"testing"
	"time"
)

func mustDate(t *testing.T, year int, month time.Month, day, hour, minute int) time.Time {
	t.Helper()
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func TestResolvePatterns(t *testing.T) {
	now := time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		phrase string
		want   time.Time
	}{
		{"dans 2 semaines", mustDate(t, 2024, time.January, 15, 9, 0)},
		{"dans une semaine", mustDate(t, 2024, time.January, 8, 9, 0)},
		{"dans 2 semaines à 18h30", mustDate(t, 2024, time.January, 15, 18, 30)},
		{"dans 3 mois", mustDate(t, 2024, time.April, 1, 9, 0)},
		{"dans un mois à 8h", mustDate(t, 2024, time.February, 1, 8, 0)},
		{"demain", mustDate(t, 2024, time.January, 2, 9, 0)},
		{"demain à 10h", mustDate(t, 2024, time.January, 2, 10, 0)},
		{"aujourd'hui à 17h45", mustDate(t, 2024, time.January, 1, 17, 45)},
		{"ce jour à 14h", mustDate(t, 2024, time.January, 1, 14, 0)},
		{"le 25 décembre à 10h30", mustDate(t, 2024, time.December, 25, 10, 30)},
		{"15 juin", mustDate(t, 2024, time.June, 15, 9, 0)},
		{"le 14 juillet l'année 2026 à 11h", mustDate(t, 2026, time.July, 14, 11, 0)},
		{"le 5 aout", mustDate(t, 2024, time.August, 5, 9, 0)}, // unaccented spelling
	}

	for _, tt := range tests {
		got, ok := Resolve(tt.phrase, now)
		if !ok {
			t.Fatalf("Resolve(%q) not parsed", tt.phrase)
		}
		if !got.Equal(tt.want) {
			t.Fatalf("Resolve(%q) = %v, want %v", tt.phrase, got, tt.want)
		}
	}
}

func TestResolveYearRollover(t *testing.T) {
	// March already passed relative to June; no year given, so the
	// candidate rolls forward one year.
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	got, ok := Resolve("15 mars à 14h30", now)
	if !ok {
		t.Fatalf("phrase not parsed")
	}
	want := mustDate(t, 2025, time.March, 15, 14, 30)
	if !got.Equal(want) {
		t.Fatalf("Resolve = %v, want %v", got, want)
	}
}

func TestResolveRolloverOnProchain(t *testing.T) {
	// Same month, earlier day: rolls only because of "prochain".
	now := time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC)
	got, ok := Resolve("le 10 juin prochain à 9h", now)
	if !ok {
		t.Fatalf("phrase not parsed")
	}
	if got.Year() != 2025 {
		t.Fatalf("year = %d, want 2025", got.Year())
	}

	// Without the qualifier a same-month past date stays put.
	got, ok = Resolve("le 10 juin à 9h", now)
	if !ok {
		t.Fatalf("phrase not parsed")
	}
	if got.Year() != 2024 {
		t.Fatalf("year = %d, want 2024", got.Year())
	}
}

func TestResolveRolloverLeapClamp(t *testing.T) {
	// 29 février 2025 does not exist; the rolled year clamps the day.
	now := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	got, ok := Resolve("le 29 février à 10h", now)
	if !ok {
		t.Fatalf("phrase not parsed")
	}
	want := mustDate(t, 2025, time.February, 28, 10, 0)
	if !got.Equal(want) {
		t.Fatalf("Resolve = %v, want %v", got, want)
	}
}

func TestResolveMonthOffsetClampsDay(t *testing.T) {
	// Jan 31 + 1 month lands on the last day of February.
	now := time.Date(2024, time.January, 31, 12, 0, 0, 0, time.UTC)
	got, ok := Resolve("dans 1 mois", now)
	if !ok {
		t.Fatalf("phrase not parsed")
	}
	want := mustDate(t, 2024, time.February, 29, 9, 0)
	if !got.Equal(want) {
		t.Fatalf("Resolve = %v, want %v", got, want)
	}
}

func TestResolveMonthOffsetCrossesYear(t *testing.T) {
	now := time.Date(2024, time.November, 15, 12, 0, 0, 0, time.UTC)
	got, ok := Resolve("dans 3 mois", now)
	if !ok {
		t.Fatalf("phrase not parsed")
	}
	want := mustDate(t, 2025, time.February, 15, 9, 0)
	if !got.Equal(want) {
		t.Fatalf("Resolve = %v, want %v", got, want)
	}
}

func TestResolveUnparseable(t *testing.T) {
	now := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for _, phrase := range []string{"", "bientôt", "quand tu veux", "le 32 mars", "le 31 février à 10h", "le 31 avril"} {
		if _, ok := Resolve(phrase, now); ok {
			t.Fatalf("Resolve(%q) unexpectedly parsed", phrase)
		}
	}
}

func TestResolveDeterministic(t *testing.T) {
	now := time.Date(2024, time.February, 1, 8, 0, 0, 0, time.UTC)
	a, _ := Resolve("demain à 10h", now)
	b, _ := Resolve("demain à 10h", now)
	if !a.Equal(b) {
		t.Fatalf("resolution not deterministic: %v != %v", a, b)
	}
}

func TestHasExplicitTime(t *testing.T) {
	if !HasExplicitTime("demain à 14h30") {
		t.Fatalf("expected explicit time")
	}
	if !HasExplicitTime("le 3 mai à 8h") {
		t.Fatalf("expected explicit time")
	}
	if HasExplicitTime("demain") {
		t.Fatalf("unexpected explicit time")
	}
	if HasExplicitTime("aujourd'hui") {
		t.Fatalf("apostrophe-h must not count as a time")
	}
}

func TestFormatDateTime(t *testing.T) {
	ts := time.Date(2024, time.February, 2, 10, 5, 0, 0, time.UTC)
	if got := FormatDateTime(ts); got != "02 février 2024 à 10h05" {
		t.Fatalf("FormatDateTime = %q", got)
	}
	if got := FormatFull(ts); got != "vendredi 2 février 2024" {
		t.Fatalf("FormatFull = %q", got)
	}
}
