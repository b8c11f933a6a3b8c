package ics

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"gocal/internal/calendar"
	"gocal/internal/model"
)

// maxOccurrencesPerRule caps raw RRULE expansion so an unbounded rule in a
// foreign file cannot flood the calendar.
const maxOccurrencesPerRule = 1000

// Summary reports the per-event outcome of an import. Conflicting events
// are skipped and counted, mirroring the cross-calendar copy policy.
type Summary struct {
	Added   int
	Skipped int
	Failed  int
}

func (s Summary) String() string {
	return fmt.Sprintf("imported %d event(s), skipped %d conflict(s), %d malformed", s.Added, s.Skipped, s.Failed)
}

// Importer loads ICS files into calendars.
type Importer struct {
	log *zap.Logger
}

// NewImporter constructs an importer.
func NewImporter(logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{log: logger}
}

// ImportFile parses the ICS file at path and adds its events to cal.
// Weekly rules with a count or until bound become native recurring series;
// other recurrences are expanded (capped) into correlated single events.
func (i *Importer) ImportFile(cal *calendar.Calendar, path string) (Summary, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, fmt.Errorf("read ics file: %w", err)
	}
	return i.importBody(cal, body, path)
}

func (i *Importer) importBody(cal *calendar.Calendar, body []byte, source string) (Summary, error) {
	parsed, malformed, err := parseICS(body)
	if err != nil {
		return Summary{}, fmt.Errorf("parse ics: %w", err)
	}

	summary := Summary{Failed: malformed}
	for _, pe := range parsed {
		added, skipped, failed := i.loadOne(cal, pe)
		summary.Added += added
		summary.Skipped += skipped
		summary.Failed += failed
	}

	i.log.Info("ics import completed",
		zap.String("source", source),
		zap.String("calendar", cal.Name()),
		zap.Int("added", summary.Added),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (i *Importer) loadOne(cal *calendar.Calendar, pe parsedEvent) (added, skipped, failed int) {
	if pe.RawRRule == "" {
		ev, err := i.buildEvent(pe, pe.Start, pe.End)
		if err != nil {
			return 0, 0, 1
		}
		ok, err := cal.AddEvent(ev, false)
		if err != nil {
			return 0, 0, 1
		}
		if !ok {
			return 0, 1, 0
		}
		return 1, 0, 0
	}

	opt, err := rrule.StrToROption(pe.RawRRule)
	if err != nil {
		i.log.Warn("unparseable RRULE, event skipped", zap.String("subject", pe.Subject), zap.Error(err))
		return 0, 0, 1
	}

	if series, ok := i.asWeeklySeries(pe, opt); ok {
		inserted, err := cal.AddRecurringSeries(series, false)
		if err != nil {
			return 0, 0, 1
		}
		if !inserted {
			return 0, 1, 0
		}
		occ, _ := series.Expand()
		return len(occ), 0, 0
	}

	return i.expandRaw(cal, pe, opt)
}

// asWeeklySeries maps a weekly BYDAY rule with exactly one bound onto the
// native RecurringEvent template.
func (i *Importer) asWeeklySeries(pe parsedEvent, opt *rrule.ROption) (*model.RecurringEvent, bool) {
	if opt.Freq != rrule.WEEKLY || len(opt.Byweekday) == 0 {
		return nil, false
	}
	hasCount := opt.Count > 0
	hasUntil := !opt.Until.IsZero()
	if hasCount == hasUntil {
		return nil, false
	}

	days := make([]time.Weekday, 0, len(opt.Byweekday))
	for _, wd := range opt.Byweekday {
		days = append(days, fromRRuleWeekday(wd))
	}

	b := model.NewSeries(pe.Subject, pe.Start.In(time.UTC), pe.End.In(time.UTC)).
		Description(pe.Description).
		Location(pe.Location).
		AllDay(pe.AllDay).
		On(days...)
	if hasCount {
		b = b.Times(opt.Count)
	} else {
		b = b.Until(opt.Until.In(time.UTC))
	}
	series, err := b.Build()
	if err != nil {
		return nil, false
	}
	return series, true
}

// expandRaw expands any other recurrence with the rule engine directly and
// inserts capped, correlated single events.
func (i *Importer) expandRaw(cal *calendar.Calendar, pe parsedEvent, opt *rrule.ROption) (added, skipped, failed int) {
	opt.Dtstart = pe.Start
	if opt.Count == 0 && opt.Until.IsZero() {
		opt.Count = maxOccurrencesPerRule
	}
	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return 0, 0, 1
	}

	starts := rule.All()
	if len(starts) > maxOccurrencesPerRule {
		starts = starts[:maxOccurrencesPerRule]
		i.log.Warn("recurrence expansion truncated",
			zap.String("subject", pe.Subject),
			zap.Int("cap", maxOccurrencesPerRule),
		)
	}

	seriesID := uuid.New()
	duration := pe.End.Sub(pe.Start)
	for _, start := range starts {
		ev, err := i.buildEvent(pe, start, start.Add(duration))
		if err != nil {
			failed++
			continue
		}
		ev.SeriesID = seriesID
		ok, err := cal.AddEvent(ev, false)
		switch {
		case err != nil:
			failed++
		case !ok:
			skipped++
		default:
			added++
		}
	}
	return added, skipped, failed
}

func (i *Importer) buildEvent(pe parsedEvent, start, end time.Time) (*model.Event, error) {
	if pe.AllDay {
		return model.NewAllDayEvent(pe.Subject, start.In(time.UTC), pe.Description, pe.Location, true)
	}
	return model.NewTimedEvent(pe.Subject, start.In(time.UTC), end.In(time.UTC), pe.Description, pe.Location, true)
}

func fromRRuleWeekday(wd rrule.Weekday) time.Weekday {
	switch wd {
	case rrule.MO:
		return time.Monday
	case rrule.TU:
		return time.Tuesday
	case rrule.WE:
		return time.Wednesday
	case rrule.TH:
		return time.Thursday
	case rrule.FR:
		return time.Friday
	case rrule.SA:
		return time.Saturday
	default:
		return time.Sunday
	}
}
