// Package ics imports iCalendar files into a calendar. Parsing leans on the
// underlying library for VTIMEZONE/TZID handling; recurrence rules are
// honored through the same weekly-pattern machinery the native model uses,
// with a capped raw expansion fallback for rules the model cannot express.
package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

// parsedEvent is the normalized representation of a VEVENT before it is
// loaded into the calendar model.
type parsedEvent struct {
	Subject     string
	Description string
	Location    string

	Start  time.Time
	End    time.Time
	AllDay bool

	RawRRule string
}

// parseICS parses a single ICS payload into a list of parsedEvent.
// Events missing a subject or a usable start are skipped, not fatal; the
// count of such events is returned alongside.
func parseICS(body []byte) ([]parsedEvent, int, error) {
	if len(body) == 0 {
		return nil, 0, errors.New("empty ICS body")
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}

	events := make([]parsedEvent, 0)
	malformed := 0
	for _, comp := range cal.Events() {
		ev, perr := parseVEvent(comp)
		if perr != nil {
			malformed++
			continue
		}
		events = append(events, ev)
	}
	return events, malformed, nil
}

func parseVEvent(ve *ical.VEvent) (parsedEvent, error) {
	var out parsedEvent

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Subject = p.Value
	}
	if strings.TrimSpace(out.Subject) == "" {
		return out, errors.New("missing SUMMARY")
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		// DATE-valued DTSTART needs the all-day accessor.
		start, err = ve.GetAllDayStartAt()
		if err != nil {
			return out, err
		}
	}
	end, err := ve.GetEndAt()
	if err != nil {
		if allDayEnd, allDayErr := ve.GetAllDayEndAt(); allDayErr == nil {
			end = allDayEnd
		} else {
			// DTEND is optional; default to a zero-length interval.
			end = start
		}
	}
	out.Start = start
	out.End = end

	// All-day detection: VALUE=DATE parameter or a value with no time part.
	if dtStart := ve.GetProperty(ical.ComponentPropertyDtStart); dtStart != nil {
		if params := dtStart.ICalParameters; params != nil {
			if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
				out.AllDay = true
			}
		}
		if !strings.Contains(dtStart.Value, "T") {
			out.AllDay = true
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}
	return out, nil
}
