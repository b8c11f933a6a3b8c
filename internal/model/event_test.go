package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocal/internal/calerr"
)

func mustTimed(t *testing.T, subject string, start, end time.Time) *Event {
	t.Helper()
	ev, err := NewTimedEvent(subject, start, end, "", "", true)
	require.NoError(t, err)
	return ev
}

func at(h, m int) time.Time {
	return time.Date(2024, 3, 26, h, m, 0, 0, time.UTC)
}

func TestNewTimedEventValidation(t *testing.T) {
	_, err := NewTimedEvent("   ", at(9, 0), at(10, 0), "", "", true)
	assert.ErrorIs(t, err, calerr.ErrInvalidEvent)

	_, err = NewTimedEvent("Standup", at(10, 0), at(9, 0), "", "", true)
	assert.ErrorIs(t, err, calerr.ErrInvalidEvent)

	ev, err := NewTimedEvent("Standup", at(9, 0), at(9, 15), "daily sync", "Room A", false)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, ev.ID)
	assert.Equal(t, uuid.Nil, ev.SeriesID)
	assert.False(t, ev.Public)
	assert.False(t, ev.AllDay)
}

func TestNewAllDayEvent(t *testing.T) {
	ev, err := NewAllDayEvent("Offsite", at(15, 42), "", "", true)
	require.NoError(t, err)
	assert.True(t, ev.AllDay)
	assert.Equal(t, "2024-03-26T00:00:00", ev.Start.Format("2006-01-02T15:04:05"))
	assert.Equal(t, "2024-03-26T23:59:59", ev.End.Format("2006-01-02T15:04:05"))
	assert.Equal(t, "2024-03-26", ev.Date.Format(LayoutDate))
}

func TestConflictsWith(t *testing.T) {
	standup := mustTimed(t, "Standup", at(9, 0), at(9, 15))

	overlapping := mustTimed(t, "Standup2", at(9, 10), at(9, 20))
	assert.True(t, standup.ConflictsWith(overlapping))
	assert.True(t, overlapping.ConflictsWith(standup))

	// Intervals are inclusive on both ends, so a shared boundary conflicts.
	touching := mustTimed(t, "Next", at(9, 15), at(9, 30))
	assert.True(t, standup.ConflictsWith(touching))

	later := mustTimed(t, "Lunch", at(12, 0), at(13, 0))
	assert.False(t, standup.ConflictsWith(later))
	assert.False(t, standup.ConflictsWith(nil))
}

func TestAllDayConflictCoversWholeDay(t *testing.T) {
	offsite, err := NewAllDayEvent("Offsite", at(0, 0), "", "", true)
	require.NoError(t, err)

	earlyBird := mustTimed(t, "EarlyBird",
		time.Date(2024, 3, 26, 0, 0, 1, 0, time.UTC),
		time.Date(2024, 3, 26, 0, 30, 0, 0, time.UTC))
	assert.True(t, offsite.ConflictsWith(earlyBird))

	nextDay := mustTimed(t, "NextDay",
		time.Date(2024, 3, 27, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 27, 9, 30, 0, 0, time.UTC))
	assert.False(t, offsite.ConflictsWith(nextDay))
}

func TestOccursOnAndCovers(t *testing.T) {
	standup := mustTimed(t, "Standup", at(9, 0), at(9, 15))
	assert.True(t, standup.OccursOn(time.Date(2024, 3, 26, 0, 0, 0, 0, time.UTC)))
	assert.False(t, standup.OccursOn(time.Date(2024, 3, 27, 0, 0, 0, 0, time.UTC)))

	assert.True(t, standup.Covers(at(9, 10)))
	assert.True(t, standup.Covers(at(9, 0)))
	assert.False(t, standup.Covers(at(9, 16)))

	overnight := mustTimed(t, "Overnight", at(23, 0), time.Date(2024, 3, 27, 1, 0, 0, 0, time.UTC))
	assert.True(t, overnight.OccursOn(time.Date(2024, 3, 27, 0, 0, 0, 0, time.UTC)))
}

func TestApplyPropertySubjectAndText(t *testing.T) {
	ev := mustTimed(t, "Standup", at(9, 0), at(9, 15))

	require.NoError(t, ev.ApplyProperty("Subject", "Daily Standup"))
	assert.Equal(t, "Daily Standup", ev.Subject)

	require.NoError(t, ev.ApplyProperty("name", "Sync"))
	assert.Equal(t, "Sync", ev.Subject)

	assert.ErrorIs(t, ev.ApplyProperty("subject", "  "), calerr.ErrInvalidEvent)

	require.NoError(t, ev.ApplyProperty("description", "short sync"))
	require.NoError(t, ev.ApplyProperty("LOCATION", "Room A"))
	assert.Equal(t, "short sync", ev.Description)
	assert.Equal(t, "Room A", ev.Location)
}

func TestApplyPropertyTimes(t *testing.T) {
	ev := mustTimed(t, "Standup", at(9, 0), at(9, 15))

	// Bare time-of-day keeps the event's date.
	require.NoError(t, ev.ApplyProperty("start", "08:30"))
	assert.Equal(t, "2024-03-26T08:30", ev.Start.Format(LayoutDateTime))

	// Full date-time replaces both.
	require.NoError(t, ev.ApplyProperty("enddatetime", "2024-03-26T10:00"))
	assert.Equal(t, "2024-03-26T10:00", ev.End.Format(LayoutDateTime))

	// A start after the end is rejected and the event unchanged.
	err := ev.ApplyProperty("starttime", "11:00")
	assert.ErrorIs(t, err, calerr.ErrInvalidEvent)
	assert.Equal(t, "2024-03-26T08:30", ev.Start.Format(LayoutDateTime))

	assert.ErrorIs(t, ev.ApplyProperty("end", "not-a-time"), calerr.ErrInvalidEvent)
}

func TestApplyPropertyVisibility(t *testing.T) {
	ev := mustTimed(t, "Standup", at(9, 0), at(9, 15))
	require.True(t, ev.Public)

	require.NoError(t, ev.ApplyProperty("visibility", "false"))
	assert.False(t, ev.Public)

	require.NoError(t, ev.ApplyProperty("ispublic", "true"))
	assert.True(t, ev.Public)

	require.NoError(t, ev.ApplyProperty("private", "true"))
	assert.False(t, ev.Public)

	assert.ErrorIs(t, ev.ApplyProperty("public", "maybe"), calerr.ErrInvalidEvent)
}

func TestApplyPropertyUnknown(t *testing.T) {
	ev := mustTimed(t, "Standup", at(9, 0), at(9, 15))
	err := ev.ApplyProperty("color", "blue")
	assert.ErrorIs(t, err, calerr.ErrInvalidEvent)
	assert.Equal(t, "Standup", ev.Subject)
}

func TestClone(t *testing.T) {
	ev := mustTimed(t, "Standup", at(9, 0), at(9, 15))
	ev.SeriesID = uuid.New()

	dup := ev.Clone()
	assert.NotEqual(t, ev.ID, dup.ID)
	assert.Equal(t, ev.SeriesID, dup.SeriesID)
	assert.Equal(t, ev.Subject, dup.Subject)
	assert.True(t, ev.Start.Equal(dup.Start))
}
