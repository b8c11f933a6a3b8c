package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocal/internal/model"
)

func sampleEvents(t *testing.T) []*model.Event {
	t.Helper()
	standup, err := model.NewTimedEvent("Standup",
		time.Date(2024, 3, 26, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 26, 9, 15, 0, 0, time.UTC),
		"daily sync", "Room A", true)
	require.NoError(t, err)
	offsite, err := model.NewAllDayEvent("Offsite",
		time.Date(2024, 3, 28, 0, 0, 0, 0, time.UTC),
		"", "", false)
	require.NoError(t, err)
	return []*model.Event{standup, offsite}
}

func TestExportSchema(t *testing.T) {
	dir := t.TempDir()
	exporter := NewCSVExporter()

	out, err := exporter.Export(filepath.Join(dir, "work.csv"), sampleEvents(t))
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Subject,Start Date,Start Time,End Date,End Time,All Day,Description,Location,Public", lines[0])
	assert.Equal(t, "Standup,2024-03-26,09:00,2024-03-26,09:15,false,daily sync,Room A,true", lines[1])
	assert.Equal(t, "Offsite,2024-03-28,00:00,2024-03-28,23:59,true,,,false", lines[2])
}

func TestExportQuoting(t *testing.T) {
	ev, err := model.NewTimedEvent(`Team, "Sync"`,
		time.Date(2024, 3, 26, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 26, 9, 15, 0, 0, time.UTC),
		"line one\nline two", "", true)
	require.NoError(t, err)

	data, err := NewCSVExporter().Render(datasetFromEvents([]*model.Event{ev}))
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, `"Team, ""Sync"""`)
	assert.Contains(t, text, "\"line one\nline two\"")
}

func TestExportCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "out.csv")

	out, err := NewCSVExporter().Export(target, nil)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Subject,"))
}

func TestRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}
