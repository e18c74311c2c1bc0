package dates

import (
	"fmt"
	"time"
)

var monthNamesFr = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

var dayNamesFr = [...]string{
	"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi",
}

// FormatDate renders "02 janvier 2006".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%02d %s %d", t.Day(), monthNamesFr[t.Month()-1], t.Year())
}

// FormatDateTime renders "02 janvier 2006 à 15h04".
func FormatDateTime(t time.Time) string {
	return fmt.Sprintf("%s à %02dh%02d", FormatDate(t), t.Hour(), t.Minute())
}

// FormatFull renders "lundi 2 janvier 2006" with the weekday spelled out.
func FormatFull(t time.Time) string {
	return fmt.Sprintf("%s %d %s %d", dayNamesFr[t.Weekday()], t.Day(), monthNamesFr[t.Month()-1], t.Year())
}
