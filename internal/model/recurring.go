package model

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"gocal/internal/calerr"
)

// RecurringEvent is a template that expands into concrete Event occurrences
// on a weekday pattern. It is bounded by exactly one termination rule:
// an occurrence count or an until-date.
type RecurringEvent struct {
	SeriesID uuid.UUID

	Subject     string
	Start       time.Time // first-occurrence window start (UTC wall clock)
	End         time.Time
	Description string
	Location    string
	Public      bool
	AllDay      bool

	Weekdays []time.Weekday
	Count    int       // > 0 when count-bounded
	Until    time.Time // non-zero when date-bounded
}

// SeriesBuilder assembles a RecurringEvent. Exactly one of Count/Until must
// be supplied before Build.
type SeriesBuilder struct {
	ev RecurringEvent
}

// NewSeries starts a builder from the template subject and the first
// occurrence's start/end window.
func NewSeries(subject string, start, end time.Time) *SeriesBuilder {
	return &SeriesBuilder{ev: RecurringEvent{
		SeriesID: uuid.New(),
		Subject:  subject,
		Start:    start,
		End:      end,
		Public:   true,
	}}
}

func (b *SeriesBuilder) Description(d string) *SeriesBuilder { b.ev.Description = d; return b }
func (b *SeriesBuilder) Location(l string) *SeriesBuilder    { b.ev.Location = l; return b }
func (b *SeriesBuilder) Public(p bool) *SeriesBuilder        { b.ev.Public = p; return b }
func (b *SeriesBuilder) AllDay(a bool) *SeriesBuilder        { b.ev.AllDay = a; return b }

// On sets the weekday recurrence set.
func (b *SeriesBuilder) On(days ...time.Weekday) *SeriesBuilder {
	b.ev.Weekdays = append([]time.Weekday(nil), days...)
	return b
}

// Times bounds the series by occurrence count.
func (b *SeriesBuilder) Times(n int) *SeriesBuilder {
	b.ev.Count = n
	return b
}

// Until bounds the series by an inclusive end date.
func (b *SeriesBuilder) Until(date time.Time) *SeriesBuilder {
	b.ev.Until = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return b
}

// Build validates the template and returns it.
func (b *SeriesBuilder) Build() (*RecurringEvent, error) {
	ev := b.ev
	if strings.TrimSpace(ev.Subject) == "" {
		return nil, calerr.Wrapf(calerr.ErrInvalidEvent, "event subject must not be empty")
	}
	if ev.End.Before(ev.Start) {
		return nil, calerr.Wrapf(calerr.ErrInvalidEvent, "event end %s is before start %s",
			ev.End.Format(LayoutDateTime), ev.Start.Format(LayoutDateTime))
	}
	if len(ev.Weekdays) == 0 {
		return nil, calerr.Wrapf(calerr.ErrInvalidEvent, "recurrence weekday set must not be empty")
	}
	hasCount := ev.Count != 0
	hasUntil := !ev.Until.IsZero()
	if hasCount == hasUntil {
		return nil, calerr.Wrapf(calerr.ErrInvalidEvent, "exactly one of occurrence count or until-date must be set")
	}
	if hasCount && ev.Count < 1 {
		return nil, calerr.Wrapf(calerr.ErrInvalidEvent, "occurrence count must be at least 1, got %d", ev.Count)
	}
	if hasUntil {
		firstDay := time.Date(ev.Start.Year(), ev.Start.Month(), ev.Start.Day(), 0, 0, 0, 0, time.UTC)
		if ev.Until.Before(firstDay) {
			return nil, calerr.Wrapf(calerr.ErrInvalidEvent, "until-date %s is before first occurrence %s",
				ev.Until.Format(LayoutDate), firstDay.Format(LayoutDate))
		}
	}
	return &ev, nil
}

// Expand produces the ordered, finite sequence of occurrence Events the
// template describes: one per date matching the weekday set, starting at the
// first occurrence's date, carrying the template's time-of-day and duration,
// bounded by the count or the until-date (inclusive). The expansion is pure:
// calling it twice yields identical dates, though each call mints fresh
// per-occurrence identities.
func (r *RecurringEvent) Expand() ([]*Event, error) {
	opt := rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   r.Start,
		Byweekday: toRRuleWeekdays(r.Weekdays),
	}
	if r.Count > 0 {
		opt.Count = r.Count
	} else {
		// Until is a date; include the whole final day.
		opt.Until = r.Until.Add(24*time.Hour - time.Second)
	}
	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, calerr.Wrap(calerr.ErrInvalidEvent, err)
	}

	duration := r.End.Sub(r.Start)
	starts := rule.All()
	out := make([]*Event, 0, len(starts))
	for _, start := range starts {
		var ev *Event
		if r.AllDay {
			ev, err = NewAllDayEvent(r.Subject, start, r.Description, r.Location, r.Public)
		} else {
			ev, err = NewTimedEvent(r.Subject, start, start.Add(duration), r.Description, r.Location, r.Public)
		}
		if err != nil {
			return nil, err
		}
		ev.SeriesID = r.SeriesID
		out = append(out, ev)
	}
	return out, nil
}

func toRRuleWeekdays(days []time.Weekday) []rrule.Weekday {
	out := make([]rrule.Weekday, 0, len(days))
	for _, d := range days {
		switch d {
		case time.Monday:
			out = append(out, rrule.MO)
		case time.Tuesday:
			out = append(out, rrule.TU)
		case time.Wednesday:
			out = append(out, rrule.WE)
		case time.Thursday:
			out = append(out, rrule.TH)
		case time.Friday:
			out = append(out, rrule.FR)
		case time.Saturday:
			out = append(out, rrule.SA)
		case time.Sunday:
			out = append(out, rrule.SU)
		}
	}
	return out
}

// ParseWeekdays parses the compact weekday-letter form used by the command
// grammar: M=Mon T=Tue W=Wed R=Thu F=Fri S=Sat U=Sun. Duplicate letters are
// collapsed; the result is sorted Monday-first for deterministic expansion.
func ParseWeekdays(spec string) ([]time.Weekday, error) {
	if spec == "" {
		return nil, calerr.Wrapf(calerr.ErrInvalidEvent, "recurrence weekday set must not be empty")
	}
	seen := make(map[time.Weekday]bool)
	for _, c := range strings.ToUpper(spec) {
		var d time.Weekday
		switch c {
		case 'M':
			d = time.Monday
		case 'T':
			d = time.Tuesday
		case 'W':
			d = time.Wednesday
		case 'R':
			d = time.Thursday
		case 'F':
			d = time.Friday
		case 'S':
			d = time.Saturday
		case 'U':
			d = time.Sunday
		default:
			return nil, calerr.Wrapf(calerr.ErrInvalidEvent, "invalid weekday letter %q in %q", string(c), spec)
		}
		seen[d] = true
	}
	out := make([]time.Weekday, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return mondayFirst(out[i]) < mondayFirst(out[j])
	})
	return out, nil
}

func mondayFirst(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}
