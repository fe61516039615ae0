package bulletin

import (
	"fmt"
	"time"
)

const (
	displayLayout = "02/01/2006"
	isoLayout     = "2006-01-02"
)

var frenchDays = [...]string{
	time.Sunday:    "dimanche",
	time.Monday:    "lundi",
	time.Tuesday:   "mardi",
	time.Wednesday: "mercredi",
	time.Thursday:  "jeudi",
	time.Friday:    "vendredi",
	time.Saturday:  "samedi",
}

// ParseDisplayDate parses a bulletin "DD/MM/YYYY" date.
func ParseDisplayDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(displayLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid bulletin date %q: %w", s, err)
	}
	return t, nil
}

// ParseISODate parses an ISO "YYYY-MM-DD" date.
func ParseISODate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(isoLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid ISO date %q: %w", s, err)
	}
	return t, nil
}

// ISOFromDisplay converts "DD/MM/YYYY" to "YYYY-MM-DD".
func ISOFromDisplay(s string) (string, error) {
	t, err := ParseDisplayDate(s)
	if err != nil {
		return "", err
	}
	return t.Format(isoLayout), nil
}

// DisplayFromISO converts "YYYY-MM-DD" back to "DD/MM/YYYY".
func DisplayFromISO(s string) (string, error) {
	t, err := ParseISODate(s)
	if err != nil {
		return "", err
	}
	return t.Format(displayLayout), nil
}

// NextDayISO returns the ISO date one calendar day after the given ISO date,
// handling month and year rollover.
func NextDayISO(s string) (string, error) {
	t, err := ParseISODate(s)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, 1).Format(isoLayout), nil
}

// FrenchDayName returns the lowercase French weekday name for an ISO date.
func FrenchDayName(iso string) string {
	t, err := ParseISODate(iso)
	if err != nil {
		return ""
	}
	return frenchDays[t.Weekday()]
}
