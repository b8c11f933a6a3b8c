// Package tz is the single source of truth for timezone validity and
// wall-clock conversion. The calendar model stores every instant as a naive
// UTC wall-clock value (a time.Time carrying the UTC location); this package
// converts between that canonical form and local wall-clock values in a
// named IANA zone.
//
// All functions are pure over their inputs; there is no package state.
package tz

import (
	"time"

	"gocal/internal/calerr"
)

// IsValid reports whether id resolves to a recognized IANA zone.
// The empty string is rejected even though time.LoadLocation would map it
// to UTC, because a calendar must always name its zone explicitly.
func IsValid(id string) bool {
	if id == "" {
		return false
	}
	_, err := time.LoadLocation(id)
	return err == nil
}

// ToUTC interprets local as a wall-clock reading in the given zone and
// returns the equivalent UTC wall-clock value.
func ToUTC(local time.Time, zoneID string) (time.Time, error) {
	loc, err := load(zoneID)
	if err != nil {
		return time.Time{}, err
	}
	anchored := time.Date(local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), loc)
	return anchored.In(time.UTC), nil
}

// FromUTC is the inverse of ToUTC: it interprets utc as a canonical UTC
// wall-clock value and returns the local wall-clock reading in zoneID.
func FromUTC(utc time.Time, zoneID string) (time.Time, error) {
	loc, err := load(zoneID)
	if err != nil {
		return time.Time{}, err
	}
	anchored := time.Date(utc.Year(), utc.Month(), utc.Day(),
		utc.Hour(), utc.Minute(), utc.Second(), utc.Nanosecond(), time.UTC)
	return anchored.In(loc), nil
}

// Converter maps a wall-clock value from one zone's reading to another's.
type Converter func(time.Time) time.Time

// NewConverter returns the composed conversion
// FromUTC(ToUTC(x, fromZone), toZone). It is used when copying events
// between calendars with different zones: feeding it a source instant yields
// the value shifted by the offset delta between the two zones.
// Both zones are validated up front so the returned func cannot fail.
func NewConverter(fromZone, toZone string) (Converter, error) {
	fromLoc, err := load(fromZone)
	if err != nil {
		return nil, err
	}
	toLoc, err := load(toZone)
	if err != nil {
		return nil, err
	}
	return func(t time.Time) time.Time {
		anchored := time.Date(t.Year(), t.Month(), t.Day(),
			t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), fromLoc)
		return anchored.In(toLoc)
	}, nil
}

func load(id string) (*time.Location, error) {
	if id == "" {
		return nil, calerr.Wrapf(calerr.ErrInvalidTimezone, "timezone identifier is empty")
	}
	loc, err := time.LoadLocation(id)
	if err != nil {
		return nil, calerr.Wrap(calerr.ErrInvalidTimezone, err)
	}
	return loc, nil
}
