// Package export renders calendar events to files. The one canonical
// schema is CSV with the header
//
//	Subject,Start Date,Start Time,End Date,End Time,All Day,Description,Location,Public
//
// Dates are 2006-01-02, times 15:04, booleans true/false. Quoting follows
// RFC 4180 via encoding/csv: fields containing comma, quote or newline are
// double-quoted with embedded quotes doubled.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gocal/internal/model"
)

// Header is the canonical CSV column order.
var Header = []string{
	"Subject", "Start Date", "Start Time", "End Date", "End Time",
	"All Day", "Description", "Location", "Public",
}

// Dataset is tabular export content decoupled from any one event shape.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// CSVExporter renders events into the canonical CSV schema.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Export writes the events to path and returns the absolute path written.
func (e *CSVExporter) Export(path string, events []*model.Event) (string, error) {
	data, err := e.Render(datasetFromEvents(events))
	if err != nil {
		return "", err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write csv file: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func datasetFromEvents(events []*model.Event) Dataset {
	rows := make([]map[string]string, 0, len(events))
	for _, ev := range events {
		rows = append(rows, map[string]string{
			"Subject":     ev.Subject,
			"Start Date":  ev.Start.Format(model.LayoutDate),
			"Start Time":  ev.Start.Format(model.LayoutTime),
			"End Date":    ev.End.Format(model.LayoutDate),
			"End Time":    ev.End.Format(model.LayoutTime),
			"All Day":     strconv.FormatBool(ev.AllDay),
			"Description": ev.Description,
			"Location":    ev.Location,
			"Public":      strconv.FormatBool(ev.Public),
		})
	}
	return Dataset{Headers: Header, Rows: rows}
}
