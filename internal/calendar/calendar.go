// Package calendar holds the aggregate that owns events for one named,
// timezone-tagged calendar, and the manager that registers calendars and
// routes cross-calendar operations.
package calendar

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gocal/internal/calerr"
	"gocal/internal/model"
)

// Exporter renders a calendar's events to a file and returns the path
// actually written. The canonical implementation lives in internal/export.
type Exporter interface {
	Export(path string, events []*model.Event) (string, error)
}

// Calendar owns a collection of events and recurring-event templates.
// Insertion is conflict-checked; nothing else re-validates the collection.
// Not safe for concurrent use.
type Calendar struct {
	name     string
	timezone string

	events []*model.Event
	series []*model.RecurringEvent

	byID       map[uuid.UUID]*model.Event
	seriesByID map[uuid.UUID]*model.RecurringEvent

	log *zap.Logger
}

// New constructs an empty calendar. The caller (normally the Manager) is
// responsible for validating name and timezone beforehand.
func New(name, timezone string, logger *zap.Logger) *Calendar {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calendar{
		name:       name,
		timezone:   timezone,
		byID:       make(map[uuid.UUID]*model.Event),
		seriesByID: make(map[uuid.UUID]*model.RecurringEvent),
		log:        logger,
	}
}

// Name returns the calendar's registry name.
func (c *Calendar) Name() string { return c.name }

// Timezone returns the calendar's IANA zone tag.
func (c *Calendar) Timezone() string { return c.timezone }

// AddEvent inserts the event unless it conflicts with an existing one.
// With autoDecline the conflict is reported as a typed error; without it
// the method returns false and the collection is left unchanged.
func (c *Calendar) AddEvent(ev *model.Event, autoDecline bool) (bool, error) {
	if ev == nil {
		return false, calerr.Wrapf(calerr.ErrInvalidEvent, "event is nil")
	}
	if other := c.firstConflict(ev); other != nil {
		if autoDecline {
			return false, calerr.Wrapf(calerr.ErrConflictingEvent,
				"event %q conflicts with %q (%s - %s)", ev.Subject, other.Subject,
				other.Start.Format(model.LayoutDateTime), other.End.Format(model.LayoutDateTime))
		}
		c.log.Debug("event declined by conflict",
			zap.String("calendar", c.name),
			zap.String("subject", ev.Subject),
			zap.String("conflicts_with", other.Subject),
		)
		return false, nil
	}
	c.insert(ev)
	return true, nil
}

// AddRecurringSeries expands the template and inserts every occurrence, or
// nothing at all. Occurrences are checked against existing events and
// against the siblings accepted earlier in the same call, so a template
// whose own occurrences overlap is rejected rather than half-inserted.
func (c *Calendar) AddRecurringSeries(series *model.RecurringEvent, autoDecline bool) (bool, error) {
	if series == nil {
		return false, calerr.Wrapf(calerr.ErrInvalidEvent, "recurring event is nil")
	}
	occurrences, err := series.Expand()
	if err != nil {
		return false, err
	}

	accepted := make([]*model.Event, 0, len(occurrences))
	for _, occ := range occurrences {
		conflict := c.firstConflict(occ)
		if conflict == nil {
			for _, sib := range accepted {
				if occ.ConflictsWith(sib) {
					conflict = sib
					break
				}
			}
		}
		if conflict != nil {
			if autoDecline {
				return false, calerr.Wrapf(calerr.ErrConflictingEvent,
					"occurrence of %q on %s conflicts with %q", series.Subject,
					occ.Start.Format(model.LayoutDate), conflict.Subject)
			}
			return false, nil
		}
		accepted = append(accepted, occ)
	}

	for _, occ := range accepted {
		c.insert(occ)
	}
	c.series = append(c.series, series)
	c.seriesByID[series.SeriesID] = series
	c.log.Info("recurring series added",
		zap.String("calendar", c.name),
		zap.String("subject", series.Subject),
		zap.Int("occurrences", len(accepted)),
	)
	return true, nil
}

// FindEvent locates an event by exact subject and start instant. Subject and
// start do not form a true identity: when two events share both, the one
// inserted first wins. Callers needing exactness should use FindEventByID.
func (c *Calendar) FindEvent(subject string, start time.Time) (*model.Event, error) {
	for _, ev := range c.events {
		if ev.Subject == subject && ev.Start.Equal(start) {
			return ev, nil
		}
	}
	return nil, calerr.Wrapf(calerr.ErrEventNotFound,
		"no event %q starting at %s", subject, start.Format(model.LayoutDateTime))
}

// FindEventByID looks up an event by its immutable identity.
func (c *Calendar) FindEventByID(id uuid.UUID) (*model.Event, error) {
	if ev, ok := c.byID[id]; ok {
		return ev, nil
	}
	return nil, calerr.Wrapf(calerr.ErrEventNotFound, "no event with id %s", id)
}

// EditSingleEvent applies one property update to the event matching subject
// and start. A failed update leaves the event unchanged.
func (c *Calendar) EditSingleEvent(subject string, start time.Time, property, value string) error {
	ev, err := c.FindEvent(subject, start)
	if err != nil {
		return err
	}
	return ev.ApplyProperty(property, value)
}

// EditEventsFromDate applies the property update to every event with the
// given subject whose start is at or after start, returning the number of
// successful updates. No matches is not an error; the count is simply zero.
func (c *Calendar) EditEventsFromDate(subject string, start time.Time, property, value string) int {
	count := 0
	for _, ev := range c.events {
		if ev.Subject != subject || ev.Start.Before(start) {
			continue
		}
		if err := ev.ApplyProperty(property, value); err != nil {
			c.log.Warn("bulk edit skipped event",
				zap.String("calendar", c.name),
				zap.String("subject", subject),
				zap.String("property", property),
				zap.Error(err),
			)
			continue
		}
		count++
	}
	return count
}

// EditAllEvents applies the property update to every event with the given
// subject, returning the number of successful updates.
func (c *Calendar) EditAllEvents(subject, property, value string) int {
	return c.EditEventsFromDate(subject, time.Time{}, property, value)
}

// EventsOnDate returns all events occupying any part of the given date,
// ordered by start.
func (c *Calendar) EventsOnDate(date time.Time) []*model.Event {
	return c.filter(func(ev *model.Event) bool { return ev.OccursOn(date) })
}

// EventsInRange returns all events whose interval intersects
// [start, end], ordered by start.
func (c *Calendar) EventsInRange(start, end time.Time) []*model.Event {
	return c.filter(func(ev *model.Event) bool {
		return !ev.Start.After(end) && !start.After(ev.End)
	})
}

// IsBusy reports whether any event covers the given instant.
func (c *Calendar) IsBusy(at time.Time) bool {
	for _, ev := range c.events {
		if ev.Covers(at) {
			return true
		}
	}
	return false
}

// AllEvents returns the full event collection ordered by start.
func (c *Calendar) AllEvents() []*model.Event {
	return c.filter(func(*model.Event) bool { return true })
}

// Series returns the recurring-event templates registered on this calendar.
func (c *Calendar) Series() []*model.RecurringEvent {
	return append([]*model.RecurringEvent(nil), c.series...)
}

// ExportCSV writes all events through the exporter collaborator and returns
// the path written.
func (c *Calendar) ExportCSV(exporter Exporter, path string) (string, error) {
	out, err := exporter.Export(path, c.AllEvents())
	if err != nil {
		return "", calerr.Wrap(calerr.ErrExport, err)
	}
	c.log.Info("calendar exported",
		zap.String("calendar", c.name),
		zap.String("path", out),
		zap.Int("event_count", len(c.events)),
	)
	return out, nil
}

func (c *Calendar) insert(ev *model.Event) {
	c.events = append(c.events, ev)
	c.byID[ev.ID] = ev
}

func (c *Calendar) firstConflict(ev *model.Event) *model.Event {
	for _, existing := range c.events {
		if ev.ConflictsWith(existing) {
			return existing
		}
	}
	return nil
}

func (c *Calendar) filter(keep func(*model.Event) bool) []*model.Event {
	out := make([]*model.Event, 0)
	for _, ev := range c.events {
		if keep(ev) {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}
