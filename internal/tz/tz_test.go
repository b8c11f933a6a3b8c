package tz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocal/internal/calerr"
)

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("America/New_York"))
	assert.True(t, IsValid("Asia/Kolkata"))
	assert.True(t, IsValid("UTC"))
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("Not/AZone"))
	assert.False(t, IsValid("EST5EDT7"))
}

func TestToUTC(t *testing.T) {
	// 2024-03-26 is during DST: New York is UTC-4.
	local := time.Date(2024, 3, 26, 9, 0, 0, 0, time.UTC)
	utc, err := ToUTC(local, "America/New_York")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-26T13:00", utc.Format("2006-01-02T15:04"))
}

func TestRoundTrip(t *testing.T) {
	zones := []string{"America/New_York", "Asia/Kolkata", "Europe/Berlin", "UTC"}
	local := time.Date(2024, 3, 26, 9, 30, 0, 0, time.UTC)
	for _, zone := range zones {
		utc, err := ToUTC(local, zone)
		require.NoError(t, err, zone)
		back, err := FromUTC(utc, zone)
		require.NoError(t, err, zone)
		assert.Equal(t, local.Format("2006-01-02T15:04"), back.Format("2006-01-02T15:04"), zone)
	}
}

func TestToUTCInvalidZone(t *testing.T) {
	_, err := ToUTC(time.Now(), "Mars/Olympus_Mons")
	require.Error(t, err)
	assert.ErrorIs(t, err, calerr.ErrInvalidTimezone)

	_, err = FromUTC(time.Now(), "")
	assert.ErrorIs(t, err, calerr.ErrInvalidTimezone)
}

func TestNewConverter(t *testing.T) {
	convert, err := NewConverter("America/New_York", "Asia/Kolkata")
	require.NoError(t, err)

	// 22:00 read in New York (EDT, UTC-4) is 02:00 UTC, which reads 07:30
	// in Kolkata: the offset delta between the zones is 9.5 hours.
	in := time.Date(2024, 3, 26, 22, 0, 0, 0, time.UTC)
	out := convert(in)
	assert.Equal(t, "2024-03-27T07:30", out.Format("2006-01-02T15:04"))
}

func TestNewConverterInvalidZones(t *testing.T) {
	_, err := NewConverter("Nope/Nowhere", "UTC")
	assert.ErrorIs(t, err, calerr.ErrInvalidTimezone)

	_, err = NewConverter("UTC", "Nope/Nowhere")
	assert.ErrorIs(t, err, calerr.ErrInvalidTimezone)
}
