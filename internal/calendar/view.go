// Package calendar merges native events and task due dates into one event
// space and projects it onto month, week, day and agenda views.
//
// Everything here is a pure function of its inputs. Wall-clock arithmetic
// (day boundaries, hours) happens in the location of the anchor date.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// View is a calendar granularity.
type View string

const (
	ViewMonth  View = "month"
	ViewWeek   View = "week"
	ViewDay    View = "day"
	ViewAgenda View = "agenda"
)

// ErrUnknownView is returned by ParseView for unsupported names.
var ErrUnknownView = errors.New("unknown calendar view")

// ParseView maps a name to a View. An empty name selects the month view.
func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return ViewMonth, nil
	case ViewMonth, ViewWeek, ViewDay, ViewAgenda:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
	}
}

// AnchorLayout is the wire format of anchor dates.
const AnchorLayout = "2006-01-02"

// ParseAnchor parses a YYYY-MM-DD date as local midnight in loc. An empty
// string yields today.
func ParseAnchor(s string, loc *time.Location, now time.Time) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	if strings.TrimSpace(s) == "" {
		return startOfDay(now.In(loc)), nil
	}
	t, err := time.ParseInLocation(AnchorLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid anchor date %q: %w", s, err)
	}
	return t, nil
}
