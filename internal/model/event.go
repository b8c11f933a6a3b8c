// Package model defines the schedulable units of the calendar: single
// events and recurring-event templates. Instants are stored as canonical
// UTC wall-clock values; the owning calendar's zone tag controls how they
// are presented.
package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"gocal/internal/calerr"
)

// Wire formats shared by the command layer, property edits and export.
const (
	LayoutDateTime = "2006-01-02T15:04"
	LayoutDate     = "2006-01-02"
	LayoutTime     = "15:04"
)

// Event is the atomic schedulable unit: a named time interval (or all-day
// date) with descriptive metadata. Identity is assigned at creation and
// never changes; every other field mutates through ApplyProperty.
type Event struct {
	ID       uuid.UUID
	SeriesID uuid.UUID // uuid.Nil unless the event belongs to a recurring series

	Subject     string
	Start       time.Time // canonical UTC wall clock
	End         time.Time
	Description string
	Location    string
	Public      bool

	AllDay bool
	Date   time.Time // plain date, only meaningful when AllDay
}

// NewTimedEvent creates an event spanning [start, end].
func NewTimedEvent(subject string, start, end time.Time, description, location string, isPublic bool) (*Event, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, calerr.Wrapf(calerr.ErrInvalidEvent, "event subject must not be empty")
	}
	if end.Before(start) {
		return nil, calerr.Wrapf(calerr.ErrInvalidEvent, "event end %s is before start %s",
			end.Format(LayoutDateTime), start.Format(LayoutDateTime))
	}
	return &Event{
		ID:          uuid.New(),
		Subject:     subject,
		Start:       start,
		End:         end,
		Description: description,
		Location:    location,
		Public:      isPublic,
	}, nil
}

// NewAllDayEvent creates an event covering the whole of date. Start and end
// are synthesized to the day's bounds (00:00 through 23:59:59) so that the
// conflict predicate sees the full day as occupied.
func NewAllDayEvent(subject string, date time.Time, description, location string, isPublic bool) (*Event, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	ev, err := NewTimedEvent(subject, day, day.Add(24*time.Hour-time.Second), description, location, isPublic)
	if err != nil {
		return nil, err
	}
	ev.AllDay = true
	ev.Date = day
	return ev, nil
}

// ConflictsWith reports whether the two events' [start, end] intervals
// overlap: start1 <= end2 && start2 <= end1. All-day events participate
// using their synthesized day bounds.
func (e *Event) ConflictsWith(other *Event) bool {
	if other == nil {
		return false
	}
	return !e.Start.After(other.End) && !other.Start.After(e.End)
}

// Duration returns the interval length.
func (e *Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// OccursOn reports whether the event occupies any part of the given date.
// All-day events are matched by their plain date; timed events by interval
// intersection with the day's bounds.
func (e *Event) OccursOn(date time.Time) bool {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	if e.AllDay {
		return e.Date.Equal(day)
	}
	dayEnd := day.Add(24*time.Hour - time.Second)
	return !e.Start.After(dayEnd) && !day.After(e.End)
}

// Covers reports whether the instant falls inside [start, end].
func (e *Event) Covers(t time.Time) bool {
	return !t.Before(e.Start) && !t.After(e.End)
}

// Clone returns a copy with a fresh identity, used by cross-calendar copy.
// The series identity is preserved so copied occurrences stay correlated.
func (e *Event) Clone() *Event {
	dup := *e
	dup.ID = uuid.New()
	return &dup
}

// ApplyProperty mutates one field identified by a case-insensitive property
// name. Time values may be a full date-time or a bare time-of-day, the
// latter re-anchored to the event's existing date. Unknown property names
// or unparseable values fail with an invalid-event error and leave the
// event unchanged.
func (e *Event) ApplyProperty(property, value string) error {
	switch strings.ToLower(strings.TrimSpace(property)) {
	case "subject", "name":
		if strings.TrimSpace(value) == "" {
			return calerr.Wrapf(calerr.ErrInvalidEvent, "event subject must not be empty")
		}
		e.Subject = value
	case "description":
		e.Description = value
	case "location":
		e.Location = value
	case "start", "starttime", "startdatetime":
		t, err := parseEventTime(value, e.Start)
		if err != nil {
			return err
		}
		if e.End.Before(t) {
			return calerr.Wrapf(calerr.ErrInvalidEvent, "new start %s is after end %s",
				t.Format(LayoutDateTime), e.End.Format(LayoutDateTime))
		}
		e.Start = t
	case "end", "endtime", "enddatetime":
		t, err := parseEventTime(value, e.End)
		if err != nil {
			return err
		}
		if t.Before(e.Start) {
			return calerr.Wrapf(calerr.ErrInvalidEvent, "new end %s is before start %s",
				t.Format(LayoutDateTime), e.Start.Format(LayoutDateTime))
		}
		e.End = t
	case "visibility", "ispublic", "public":
		b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(value)))
		if err != nil {
			return calerr.Wrapf(calerr.ErrInvalidEvent, "invalid visibility value %q", value)
		}
		e.Public = b
	case "private":
		b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(value)))
		if err != nil {
			return calerr.Wrapf(calerr.ErrInvalidEvent, "invalid private value %q", value)
		}
		e.Public = !b
	default:
		return calerr.Wrapf(calerr.ErrInvalidEvent, "unknown event property %q", property)
	}
	return nil
}

// parseEventTime accepts either a full date-time or a bare time-of-day.
// A bare time keeps the date of anchor.
func parseEventTime(value string, anchor time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.ParseInLocation(LayoutDateTime, value, time.UTC); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(LayoutTime, value, time.UTC); err == nil {
		return time.Date(anchor.Year(), anchor.Month(), anchor.Day(),
			t.Hour(), t.Minute(), 0, 0, time.UTC), nil
	}
	return time.Time{}, calerr.Wrapf(calerr.ErrInvalidEvent, "invalid time value %q", value)
}
