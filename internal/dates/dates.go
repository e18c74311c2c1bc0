// Package dates resolves French natural-language date expressions
// ("demain à 10h", "dans 2 semaines", "le 15 mars à 14h30") into
// absolute timestamps relative to an injected reference instant.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// monthFrToNum maps French month names, accented and unaccented, to
// their month number.
var monthFrToNum = map[string]time.Month{
	"janvier": time.January, "février": time.February, "fevrier": time.February,
	"mars": time.March, "avril": time.April, "mai": time.May, "juin": time.June,
	"juillet": time.July, "août": time.August, "aout": time.August,
	"septembre": time.September, "octobre": time.October,
	"novembre": time.November, "décembre": time.December,
}

const monthNames = `janvier|février|fevrier|mars|avril|mai|juin|juillet|août|aout|septembre|octobre|novembre|décembre`

var (
	timeRe     = regexp.MustCompile(`(\d{1,2})h(\d{2})?`)
	weekRe     = regexp.MustCompile(`dans\s+(\d+|une)\s+semaines?`)
	monthRe    = regexp.MustCompile(`dans\s+(\d+|une|un)\s+mois`)
	dateTimeRe = regexp.MustCompile(`(?:le\s+|l')?(\d{1,2})\s+(` + monthNames + `)\s*(?:l'année\s*(\d{4})\s*)?(?:à|a)\s*(\d{1,2})h(\d{2})?`)
	dateOnlyRe = regexp.MustCompile(`(?:le\s+|l')?(\d{1,2})\s+(` + monthNames + `)\s*(?:l'année\s*(\d{4})\s*)?`)
)

// defaultHour is used when a phrase carries no explicit time.
const defaultHour = 9

// HasExplicitTime reports whether the phrase carries an explicit
// "Hh[MM]" time component. Callers use it to pick a whole-day versus a
// tight search window when locating existing events.
func HasExplicitTime(phrase string) bool {
	return timeRe.MatchString(strings.ToLower(phrase))
}

// extractTime pulls a trailing "Hh[MM]" out of the phrase, defaulting
// to 09:00 when absent.
func extractTime(phrase string) (hour, minute int) {
	m := timeRe.FindStringSubmatch(phrase)
	if m == nil {
		return defaultHour, 0
	}
	hour, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	return hour, minute
}

func countOrOne(s string) int {
	if s == "une" || s == "un" {
		return 1
	}
	n, _ := strconv.Atoi(s)
	return n
}

func lastDayOfMonth(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// Resolve converts a French date/time phrase into an absolute
// timestamp relative to now. Patterns are tried in a deliberate order;
// the first match wins. ok is false when no pattern matches.
func Resolve(phrase string, now time.Time) (t time.Time, ok bool) {
	cleaned := strings.ToLower(strings.TrimSpace(phrase))
	loc := now.Location()

	if m := weekRe.FindStringSubmatch(cleaned); m != nil {
		target := now.AddDate(0, 0, 7*countOrOne(m[1]))
		hour, minute := extractTime(cleaned)
		return time.Date(target.Year(), target.Month(), target.Day(), hour, minute, 0, 0, loc), true
	}

	if m := monthRe.FindStringSubmatch(cleaned); m != nil {
		months := countOrOne(m[1])
		// Manual month arithmetic so day 31 clamps into a shorter
		// month instead of overflowing into the next one.
		abs := int(now.Month()) + months
		year := now.Year() + (abs-1)/12
		month := time.Month((abs-1)%12 + 1)
		day := min(now.Day(), lastDayOfMonth(year, month, loc))
		hour, minute := extractTime(cleaned)
		return time.Date(year, month, day, hour, minute, 0, 0, loc), true
	}

	if strings.Contains(cleaned, "demain") {
		target := now.AddDate(0, 0, 1)
		hour, minute := extractTime(cleaned)
		return time.Date(target.Year(), target.Month(), target.Day(), hour, minute, 0, 0, loc), true
	}

	if strings.Contains(cleaned, "aujourd'hui") || strings.Contains(cleaned, "ce jour") {
		hour, minute := extractTime(cleaned)
		return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc), true
	}

	var dayStr, monthName, yearStr, hourStr, minuteStr string
	if m := dateTimeRe.FindStringSubmatch(cleaned); m != nil {
		dayStr, monthName, yearStr, hourStr, minuteStr = m[1], m[2], m[3], m[4], m[5]
	} else if m := dateOnlyRe.FindStringSubmatch(cleaned); m != nil {
		dayStr, monthName, yearStr = m[1], m[2], m[3]
	} else {
		return time.Time{}, false
	}

	day, _ := strconv.Atoi(dayStr)
	month, found := monthFrToNum[monthName]
	if !found {
		return time.Time{}, false
	}
	year := now.Year()
	if yearStr != "" {
		year, _ = strconv.Atoi(yearStr)
	}
	var hour, minute int
	if hourStr != "" {
		hour, _ = strconv.Atoi(hourStr)
		if minuteStr != "" {
			minute, _ = strconv.Atoi(minuteStr)
		}
	} else {
		// The time component is extracted independently of which date
		// pattern matched.
		hour, minute = extractTime(cleaned)
	}
	if day < 1 || day > 31 || hour > 23 || minute > 59 {
		return time.Time{}, false
	}
	// time.Date normalizes overflow, so "le 31 février" would land in
	// March unless the day is checked against the actual month.
	if day > lastDayOfMonth(year, month, loc) {
		return time.Time{}, false
	}

	parsed := time.Date(year, month, day, hour, minute, 0, 0, loc)

	// Year rollover: a past date with no explicit year rolls forward
	// when the phrase says "prochain(e)" or the named month has
	// already gone by this year.
	if parsed.Before(now) && yearStr == "" &&
		(strings.Contains(cleaned, "prochain") || strings.Contains(cleaned, "prochaine") ||
			month < now.Month()) {
		year++
		day = min(day, lastDayOfMonth(year, month, loc))
		parsed = time.Date(year, month, day, hour, minute, 0, 0, loc)
	}

	return parsed, true
}
