package command

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"gocal/internal/calendar"
	"gocal/internal/calerr"
	"gocal/internal/ics"
	"gocal/internal/model"
	"gocal/internal/tz"
)

// Executor runs parsed commands against the calendar registry. Date-times in
// command text are wall-clock readings in the active calendar's zone; the
// executor normalizes them to UTC before touching the core and localizes
// again for output.
type Executor struct {
	mgr       *calendar.Manager
	exporter  calendar.Exporter
	importer  *ics.Importer
	exportDir string
	log       *zap.Logger
}

// NewExecutor constructs an executor. exportDir anchors relative export
// paths; empty means the current directory.
func NewExecutor(mgr *calendar.Manager, exporter calendar.Exporter, importer *ics.Importer, exportDir string, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if exportDir == "" {
		exportDir = "."
	}
	return &Executor{mgr: mgr, exporter: exporter, importer: importer, exportDir: exportDir, log: logger}
}

// Execute parses and runs one input line. The returned bool is true when the
// line requests termination. Blank lines and #-comments are no-ops.
func (e *Executor) Execute(line string) (string, bool, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", false, nil
	}
	cmd, err := Parse(trimmed)
	if err != nil {
		return "", false, err
	}
	if cmd.Kind == KindExit {
		return "", true, nil
	}
	msg, err := e.run(cmd)
	if err != nil {
		e.log.Debug("command failed", zap.String("input", trimmed), zap.Error(err))
	}
	return msg, false, err
}

func (e *Executor) run(cmd Command) (string, error) {
	switch cmd.Kind {
	case KindCreateCalendar:
		if _, err := e.mgr.CreateCalendar(cmd.CalendarName, cmd.Timezone); err != nil {
			return "", err
		}
		return fmt.Sprintf("Calendar %q created with timezone %s.", cmd.CalendarName, cmd.Timezone), nil

	case KindCreateEvent:
		return e.runCreateEvent(cmd)

	case KindEditCalendar:
		switch cmd.Property {
		case "name":
			if err := e.mgr.RenameCalendar(cmd.CalendarName, cmd.Value); err != nil {
				return "", err
			}
			return fmt.Sprintf("Calendar %q renamed to %q.", cmd.CalendarName, cmd.Value), nil
		case "timezone":
			if err := e.mgr.EditTimezone(cmd.CalendarName, cmd.Value); err != nil {
				return "", err
			}
			return fmt.Sprintf("Calendar %q timezone set to %s.", cmd.CalendarName, cmd.Value), nil
		default:
			return "", calerr.Wrapf(calerr.ErrInvalidEvent, "unknown calendar property %q", cmd.Property)
		}

	case KindEditSingle:
		cal, start, err := e.activeAndUTC(cmd.Start)
		if err != nil {
			return "", err
		}
		if err := cal.EditSingleEvent(cmd.Subject, start, cmd.Property, cmd.Value); err != nil {
			return "", err
		}
		return fmt.Sprintf("Event %q updated.", cmd.Subject), nil

	case KindEditFromDate:
		cal, start, err := e.activeAndUTC(cmd.Start)
		if err != nil {
			return "", err
		}
		n := cal.EditEventsFromDate(cmd.Subject, start, cmd.Property, cmd.Value)
		return fmt.Sprintf("Updated %d event(s).", n), nil

	case KindEditAll:
		cal, err := e.mgr.Active()
		if err != nil {
			return "", err
		}
		n := cal.EditAllEvents(cmd.Subject, cmd.Property, cmd.Value)
		return fmt.Sprintf("Updated %d event(s).", n), nil

	case KindUseCalendar:
		if err := e.mgr.SetActive(cmd.CalendarName); err != nil {
			return "", err
		}
		return fmt.Sprintf("Using calendar %q.", cmd.CalendarName), nil

	case KindCopyEvent:
		_, start, err := e.activeAndUTC(cmd.Start)
		if err != nil {
			return "", err
		}
		if err := e.mgr.CopyEvent(cmd.Subject, start, cmd.Target, cmd.TargetStart); err != nil {
			return "", err
		}
		return fmt.Sprintf("Event %q copied to %q.", cmd.Subject, cmd.Target), nil

	case KindCopyEventsOn:
		summary, err := e.mgr.CopyEventsOn(cmd.Date, cmd.Target, cmd.TargetStart)
		if err != nil {
			return "", err
		}
		return firstUpper(summary.String()), nil

	case KindCopyEventsBetween:
		summary, err := e.mgr.CopyEventsBetween(cmd.RangeStart, cmd.RangeEnd, cmd.Target, cmd.TargetStart)
		if err != nil {
			return "", err
		}
		return firstUpper(summary.String()), nil

	case KindPrintOn:
		cal, err := e.mgr.Active()
		if err != nil {
			return "", err
		}
		return e.renderEvents(cal, cal.EventsOnDate(cmd.Date)), nil

	case KindPrintRange:
		cal, start, err := e.activeAndUTC(cmd.RangeStart)
		if err != nil {
			return "", err
		}
		end, err := tz.ToUTC(cmd.RangeEnd, cal.Timezone())
		if err != nil {
			return "", err
		}
		return e.renderEvents(cal, cal.EventsInRange(start, end)), nil

	case KindShowStatus:
		cal, at, err := e.activeAndUTC(cmd.Start)
		if err != nil {
			return "", err
		}
		if cal.IsBusy(at) {
			return "busy", nil
		}
		return "available", nil

	case KindExport:
		cal, err := e.mgr.Active()
		if err != nil {
			return "", err
		}
		path := cmd.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(e.exportDir, path)
		}
		out, err := cal.ExportCSV(e.exporter, path)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Exported to %s.", out), nil

	case KindImport:
		cal, err := e.mgr.Active()
		if err != nil {
			return "", err
		}
		summary, err := e.importer.ImportFile(cal, cmd.File)
		if err != nil {
			return "", calerr.Wrap(calerr.ErrInvalidEvent, err)
		}
		return firstUpper(summary.String()), nil

	case KindExit:
		return "", nil

	default:
		return "", calerr.Wrapf(calerr.ErrInvalidEvent, "unhandled command kind %d", cmd.Kind)
	}
}

func (e *Executor) runCreateEvent(cmd Command) (string, error) {
	cal, err := e.mgr.Active()
	if err != nil {
		return "", err
	}

	if cmd.Repeat != nil {
		series, err := e.buildSeries(cal, cmd)
		if err != nil {
			return "", err
		}
		added, err := cal.AddRecurringSeries(series, cmd.AutoDecline)
		if err != nil {
			return "", err
		}
		if !added {
			return fmt.Sprintf("Event %q was not added: conflict detected.", cmd.Subject), nil
		}
		return fmt.Sprintf("Recurring event %q created.", cmd.Subject), nil
	}

	var ev *model.Event
	if cmd.AllDay {
		ev, err = model.NewAllDayEvent(cmd.Subject, cmd.Date, cmd.Description, cmd.Location, !cmd.Private)
	} else {
		var start, end time.Time
		start, err = tz.ToUTC(cmd.Start, cal.Timezone())
		if err != nil {
			return "", err
		}
		end, err = tz.ToUTC(cmd.End, cal.Timezone())
		if err != nil {
			return "", err
		}
		ev, err = model.NewTimedEvent(cmd.Subject, start, end, cmd.Description, cmd.Location, !cmd.Private)
	}
	if err != nil {
		return "", err
	}

	added, err := cal.AddEvent(ev, cmd.AutoDecline)
	if err != nil {
		return "", err
	}
	if !added {
		return fmt.Sprintf("Event %q was not added: conflict detected.", cmd.Subject), nil
	}
	return fmt.Sprintf("Event %q created.", cmd.Subject), nil
}

func (e *Executor) buildSeries(cal *calendar.Calendar, cmd Command) (*model.RecurringEvent, error) {
	var start, end time.Time
	if cmd.AllDay {
		start = cmd.Date
		end = cmd.Date.Add(24*time.Hour - time.Second)
	} else {
		var err error
		start, err = tz.ToUTC(cmd.Start, cal.Timezone())
		if err != nil {
			return nil, err
		}
		end, err = tz.ToUTC(cmd.End, cal.Timezone())
		if err != nil {
			return nil, err
		}
	}

	b := model.NewSeries(cmd.Subject, start, end).
		Description(cmd.Description).
		Location(cmd.Location).
		Public(!cmd.Private).
		AllDay(cmd.AllDay).
		On(cmd.Repeat.Weekdays...)
	if cmd.Repeat.Count > 0 {
		b = b.Times(cmd.Repeat.Count)
	}
	if !cmd.Repeat.Until.IsZero() {
		b = b.Until(cmd.Repeat.Until)
	}
	return b.Build()
}

func (e *Executor) activeAndUTC(local time.Time) (*calendar.Calendar, time.Time, error) {
	cal, err := e.mgr.Active()
	if err != nil {
		return nil, time.Time{}, err
	}
	utc, err := tz.ToUTC(local, cal.Timezone())
	if err != nil {
		return nil, time.Time{}, err
	}
	return cal, utc, nil
}

func (e *Executor) renderEvents(cal *calendar.Calendar, events []*model.Event) string {
	if len(events) == 0 {
		return "No events found."
	}
	var sb strings.Builder
	for _, ev := range events {
		start, end := ev.Start, ev.End
		if local, err := tz.FromUTC(ev.Start, cal.Timezone()); err == nil {
			start = local
		}
		if local, err := tz.FromUTC(ev.End, cal.Timezone()); err == nil {
			end = local
		}
		sb.WriteString("- ")
		sb.WriteString(ev.Subject)
		if ev.AllDay {
			sb.WriteString(": ")
			sb.WriteString(ev.Date.Format(model.LayoutDate))
			sb.WriteString(" (all day)")
		} else {
			sb.WriteString(": ")
			sb.WriteString(start.Format(model.LayoutDateTime))
			sb.WriteString(" - ")
			sb.WriteString(end.Format(model.LayoutDateTime))
		}
		if ev.Location != "" {
			sb.WriteString(" @ ")
			sb.WriteString(ev.Location)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func firstUpper(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
