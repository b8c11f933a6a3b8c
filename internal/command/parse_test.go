package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocal/internal/calerr"
)

func TestParseCreateCalendar(t *testing.T) {
	cmd, err := Parse(`create calendar --name Work --timezone America/New_York`)
	require.NoError(t, err)
	assert.Equal(t, KindCreateCalendar, cmd.Kind)
	assert.Equal(t, "Work", cmd.CalendarName)
	assert.Equal(t, "America/New_York", cmd.Timezone)

	_, err = Parse(`create calendar --name Work`)
	assert.ErrorIs(t, err, calerr.ErrInvalidEvent)
}

func TestParseCreateTimedEvent(t *testing.T) {
	cmd, err := Parse(`create event --autoDecline "Team Standup" from 2024-03-26T09:00 to 2024-03-26T09:15 --location "Room A" --private`)
	require.NoError(t, err)
	assert.Equal(t, KindCreateEvent, cmd.Kind)
	assert.True(t, cmd.AutoDecline)
	assert.Equal(t, "Team Standup", cmd.Subject)
	assert.Equal(t, "2024-03-26T09:00", cmd.Start.Format("2006-01-02T15:04"))
	assert.Equal(t, "2024-03-26T09:15", cmd.End.Format("2006-01-02T15:04"))
	assert.Equal(t, "Room A", cmd.Location)
	assert.True(t, cmd.Private)
	assert.False(t, cmd.AllDay)
	assert.Nil(t, cmd.Repeat)
}

func TestParseCreateAllDayEvent(t *testing.T) {
	cmd, err := Parse(`create event Offsite on 2024-03-28 --description "team building"`)
	require.NoError(t, err)
	assert.Equal(t, KindCreateEvent, cmd.Kind)
	assert.True(t, cmd.AllDay)
	assert.Equal(t, "2024-03-28", cmd.Date.Format("2006-01-02"))
	assert.Equal(t, "team building", cmd.Description)
}

func TestParseCreateRecurring(t *testing.T) {
	cmd, err := Parse(`create event Gym from 2024-03-04T18:00 to 2024-03-04T19:00 repeats MWF for 3 times`)
	require.NoError(t, err)
	require.NotNil(t, cmd.Repeat)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, cmd.Repeat.Weekdays)
	assert.Equal(t, 3, cmd.Repeat.Count)
	assert.True(t, cmd.Repeat.Until.IsZero())

	cmd, err = Parse(`create event Gym from 2024-03-04T18:00 to 2024-03-04T19:00 repeats TR until 2024-04-01`)
	require.NoError(t, err)
	require.NotNil(t, cmd.Repeat)
	assert.Equal(t, 0, cmd.Repeat.Count)
	assert.Equal(t, "2024-04-01", cmd.Repeat.Until.Format("2006-01-02"))

	_, err = Parse(`create event Gym from 2024-03-04T18:00 to 2024-03-04T19:00 repeats XYZ for 3 times`)
	assert.ErrorIs(t, err, calerr.ErrInvalidEvent)
}

func TestParseEditForms(t *testing.T) {
	cmd, err := Parse(`edit event location Standup from 2024-03-26T09:00 to 2024-03-26T09:15 with "Room B"`)
	require.NoError(t, err)
	assert.Equal(t, KindEditSingle, cmd.Kind)
	assert.Equal(t, "location", cmd.Property)
	assert.Equal(t, "Standup", cmd.Subject)
	assert.Equal(t, "Room B", cmd.Value)

	cmd, err = Parse(`edit events location Gym from 2024-03-06T00:00 with Uptown`)
	require.NoError(t, err)
	assert.Equal(t, KindEditFromDate, cmd.Kind)
	assert.Equal(t, "2024-03-06T00:00", cmd.Start.Format("2006-01-02T15:04"))

	cmd, err = Parse(`edit events location Gym Uptown`)
	require.NoError(t, err)
	assert.Equal(t, KindEditAll, cmd.Kind)
	assert.Equal(t, "Uptown", cmd.Value)

	cmd, err = Parse(`edit calendar --name Work --property timezone Asia/Kolkata`)
	require.NoError(t, err)
	assert.Equal(t, KindEditCalendar, cmd.Kind)
	assert.Equal(t, "timezone", cmd.Property)
	assert.Equal(t, "Asia/Kolkata", cmd.Value)
}

func TestParseCopyForms(t *testing.T) {
	cmd, err := Parse(`copy event Gym on 2024-03-26T18:00 --target Home to 2024-03-27T18:00`)
	require.NoError(t, err)
	assert.Equal(t, KindCopyEvent, cmd.Kind)
	assert.Equal(t, "Home", cmd.Target)
	assert.Equal(t, "2024-03-27T18:00", cmd.TargetStart.Format("2006-01-02T15:04"))

	cmd, err = Parse(`copy events on 2024-03-26 --target Home to 2024-03-28`)
	require.NoError(t, err)
	assert.Equal(t, KindCopyEventsOn, cmd.Kind)
	assert.Equal(t, "2024-03-26", cmd.Date.Format("2006-01-02"))

	cmd, err = Parse(`copy events between 2024-03-04 and 2024-03-08 --target Home to 2024-03-11`)
	require.NoError(t, err)
	assert.Equal(t, KindCopyEventsBetween, cmd.Kind)
	assert.Equal(t, "2024-03-04", cmd.RangeStart.Format("2006-01-02"))
	assert.Equal(t, "2024-03-08", cmd.RangeEnd.Format("2006-01-02"))
}

func TestParseQueriesAndIO(t *testing.T) {
	cmd, err := Parse(`print events on 2024-03-26`)
	require.NoError(t, err)
	assert.Equal(t, KindPrintOn, cmd.Kind)

	cmd, err = Parse(`print events from 2024-03-26T00:00 to 2024-03-28T23:59`)
	require.NoError(t, err)
	assert.Equal(t, KindPrintRange, cmd.Kind)

	cmd, err = Parse(`show status on 2024-03-26T09:05`)
	require.NoError(t, err)
	assert.Equal(t, KindShowStatus, cmd.Kind)

	cmd, err = Parse(`use calendar --name Home`)
	require.NoError(t, err)
	assert.Equal(t, KindUseCalendar, cmd.Kind)
	assert.Equal(t, "Home", cmd.CalendarName)

	cmd, err = Parse(`export cal work.csv`)
	require.NoError(t, err)
	assert.Equal(t, KindExport, cmd.Kind)
	assert.Equal(t, "work.csv", cmd.File)

	cmd, err = Parse(`import cal team.ics`)
	require.NoError(t, err)
	assert.Equal(t, KindImport, cmd.Kind)

	cmd, err = Parse(`exit`)
	require.NoError(t, err)
	assert.Equal(t, KindExit, cmd.Kind)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(``)
	assert.ErrorIs(t, err, calerr.ErrInvalidEvent)

	_, err = Parse(`frobnicate events`)
	assert.ErrorIs(t, err, calerr.ErrInvalidEvent)

	_, err = Parse(`create event Standup from not-a-time to 2024-03-26T09:15`)
	assert.ErrorIs(t, err, calerr.ErrInvalidEvent)

	_, err = Parse(`create event "Standup from 2024-03-26T09:00 to 2024-03-26T09:15`)
	assert.ErrorIs(t, err, calerr.ErrInvalidEvent, "unterminated quote")

	_, err = Parse(`exit now`)
	assert.ErrorIs(t, err, calerr.ErrInvalidEvent, "trailing input")
}

func TestTokenize(t *testing.T) {
	tokens, err := tokenize(`create event "Team Standup" from 2024-03-26T09:00`)
	require.NoError(t, err)
	assert.Equal(t, []string{"create", "event", "Team Standup", "from", "2024-03-26T09:00"}, tokens)

	tokens, err = tokenize("  spaced\tout  ")
	require.NoError(t, err)
	assert.Equal(t, []string{"spaced", "out"}, tokens)

	tokens, err = tokenize(`""`)
	require.NoError(t, err)
	assert.Equal(t, []string{""}, tokens)
}
