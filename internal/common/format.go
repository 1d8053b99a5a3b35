package common

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// FormatFloat renders a float the way the browser client expects:
// whole values keep one decimal ("5.0"), everything else is minimal
// ("49.99").
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// FormatDate renders an optional date as ISO, nil stays nil.
func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}

// ParseDate parses an optional ISO date string.
func ParseDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(*s))
	if err != nil {
		return nil, err
	}
	return &t, nil
}
