package calendar

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"gocal/internal/calerr"
	"gocal/internal/model"
	"gocal/internal/tz"
)

var calendarNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Manager is the registry of named calendars. It owns the name→calendar
// mapping, the active-calendar pointer, and name uniqueness; nothing about
// registration lives outside the instance. Not safe for concurrent use.
type Manager struct {
	validate  *validator.Validate
	log       *zap.Logger
	calendars map[string]*Calendar
	active    string
}

type calendarSpec struct {
	Name     string `validate:"required,max=100,calname"`
	Timezone string `validate:"required"`
}

// NewManager constructs an empty registry.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := validator.New()
	v.RegisterValidation("calname", func(fl validator.FieldLevel) bool {
		return calendarNameRe.MatchString(fl.Field().String())
	})
	return &Manager{
		validate:  v,
		log:       logger,
		calendars: make(map[string]*Calendar),
	}
}

// CreateCalendar validates, constructs and registers a calendar. The first
// calendar registered becomes active so unqualified commands have a target.
func (m *Manager) CreateCalendar(name, timezone string) (*Calendar, error) {
	if err := m.validate.Struct(calendarSpec{Name: name, Timezone: timezone}); err != nil {
		return nil, calerr.Wrapf(calerr.ErrInvalidName,
			"calendar name %q must be 1-100 characters of letters, digits or underscore", name)
	}
	if !tz.IsValid(timezone) {
		return nil, calerr.Wrapf(calerr.ErrInvalidTimezone, "unknown timezone %q", timezone)
	}
	if _, exists := m.calendars[name]; exists {
		return nil, calerr.Wrapf(calerr.ErrDuplicateCalendar, "calendar %q already exists", name)
	}

	cal := New(name, timezone, m.log)
	m.calendars[name] = cal
	if m.active == "" {
		m.active = name
	}
	m.log.Info("calendar created", zap.String("name", name), zap.String("timezone", timezone))
	return cal, nil
}

// Get returns the calendar registered under name.
func (m *Manager) Get(name string) (*Calendar, error) {
	cal, ok := m.calendars[name]
	if !ok {
		return nil, calerr.Wrapf(calerr.ErrCalendarNotFound, "calendar %q is not registered", name)
	}
	return cal, nil
}

// SetActive switches the active calendar.
func (m *Manager) SetActive(name string) error {
	if _, ok := m.calendars[name]; !ok {
		return calerr.Wrapf(calerr.ErrCalendarNotFound, "calendar %q is not registered", name)
	}
	m.active = name
	return nil
}

// Active returns the calendar unqualified operations target.
func (m *Manager) Active() (*Calendar, error) {
	if m.active == "" {
		return nil, calerr.Wrapf(calerr.ErrCalendarNotFound, "no calendar is active")
	}
	return m.Get(m.active)
}

// ExecuteOn applies op to the named calendar, propagating whatever error the
// operation raises. It exists so copy targets and similar flows can mutate a
// calendar other than the active one without direct map access.
func (m *Manager) ExecuteOn(name string, op func(*Calendar) error) error {
	cal, err := m.Get(name)
	if err != nil {
		return err
	}
	return op(cal)
}

// RenameCalendar re-keys the registry entry. The active pointer follows the
// renamed calendar.
func (m *Manager) RenameCalendar(oldName, newName string) error {
	cal, err := m.Get(oldName)
	if err != nil {
		return err
	}
	if err := m.validate.Struct(calendarSpec{Name: newName, Timezone: cal.timezone}); err != nil {
		return calerr.Wrapf(calerr.ErrInvalidName,
			"calendar name %q must be 1-100 characters of letters, digits or underscore", newName)
	}
	if _, exists := m.calendars[newName]; exists {
		return calerr.Wrapf(calerr.ErrDuplicateCalendar, "calendar %q already exists", newName)
	}
	delete(m.calendars, oldName)
	cal.name = newName
	m.calendars[newName] = cal
	if m.active == oldName {
		m.active = newName
	}
	return nil
}

// EditTimezone rewrites the calendar's zone tag after validating the new
// zone. Stored event instants are canonical UTC and are not rewritten; only
// the local times the calendar presents change.
func (m *Manager) EditTimezone(name, newTimezone string) error {
	cal, err := m.Get(name)
	if err != nil {
		return err
	}
	if !tz.IsValid(newTimezone) {
		return calerr.Wrapf(calerr.ErrInvalidTimezone, "unknown timezone %q", newTimezone)
	}
	old := cal.timezone
	cal.timezone = newTimezone
	m.log.Info("calendar timezone changed",
		zap.String("name", name), zap.String("from", old), zap.String("to", newTimezone))
	return nil
}

// Names returns the registered calendar names, sorted.
func (m *Manager) Names() []string {
	out := make([]string, 0, len(m.calendars))
	for name := range m.calendars {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// CopySummary reports the outcome of a multi-event copy: conflicting events
// are skipped and counted instead of aborting the whole operation.
type CopySummary struct {
	Copied  int
	Skipped int
}

func (s CopySummary) String() string {
	return fmt.Sprintf("copied %d event(s), skipped %d conflict(s)", s.Copied, s.Skipped)
}

// CopyEvent copies a single event from the active calendar to the target.
// sourceStart is the event's start as stored (UTC wall clock); targetStart
// is the new start as a wall-clock reading in the target calendar's zone.
// A conflict in the target is an error, matching single-insert semantics.
func (m *Manager) CopyEvent(subject string, sourceStart time.Time, targetName string, targetStart time.Time) error {
	src, err := m.Active()
	if err != nil {
		return err
	}
	dst, err := m.Get(targetName)
	if err != nil {
		return err
	}
	ev, err := src.FindEvent(subject, sourceStart)
	if err != nil {
		return err
	}

	newStart, err := tz.ToUTC(targetStart, dst.timezone)
	if err != nil {
		return err
	}
	dup := ev.Clone()
	dup.Start = newStart
	dup.End = newStart.Add(ev.Duration())
	if dup.AllDay {
		dup.Date = time.Date(newStart.Year(), newStart.Month(), newStart.Day(), 0, 0, 0, 0, time.UTC)
	}

	_, err = dst.AddEvent(dup, true)
	return err
}

// CopyEventsOn copies every event occupying sourceDate from the active
// calendar to the target, landing on targetDate. Instants are shifted by
// the whole-day delta and run through the source→target zone converter, so
// an event keeps its source-zone wall-clock reading reinterpreted against
// the target zone's offset.
func (m *Manager) CopyEventsOn(sourceDate time.Time, targetName string, targetDate time.Time) (CopySummary, error) {
	src, err := m.Active()
	if err != nil {
		return CopySummary{}, err
	}
	return m.copyEvents(src.EventsOnDate(sourceDate), sourceDate, targetName, targetDate)
}

// CopyEventsBetween behaves like CopyEventsOn for every event intersecting
// [rangeStart, rangeEnd] (dates, inclusive). The day delta is measured from
// rangeStart to targetDate.
func (m *Manager) CopyEventsBetween(rangeStart, rangeEnd time.Time, targetName string, targetDate time.Time) (CopySummary, error) {
	src, err := m.Active()
	if err != nil {
		return CopySummary{}, err
	}
	dayStart := time.Date(rangeStart.Year(), rangeStart.Month(), rangeStart.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := time.Date(rangeEnd.Year(), rangeEnd.Month(), rangeEnd.Day(), 23, 59, 59, 0, time.UTC)
	return m.copyEvents(src.EventsInRange(dayStart, dayEnd), rangeStart, targetName, targetDate)
}

func (m *Manager) copyEvents(events []*model.Event, sourceAnchor time.Time, targetName string, targetDate time.Time) (CopySummary, error) {
	src, err := m.Active()
	if err != nil {
		return CopySummary{}, err
	}
	dst, err := m.Get(targetName)
	if err != nil {
		return CopySummary{}, err
	}
	convert, err := tz.NewConverter(src.timezone, dst.timezone)
	if err != nil {
		return CopySummary{}, err
	}

	deltaDays := daysBetween(sourceAnchor, targetDate)

	var summary CopySummary
	for _, ev := range events {
		dup := ev.Clone()
		dup.Start = rebaseUTC(convert(ev.Start.AddDate(0, 0, deltaDays)))
		dup.End = rebaseUTC(convert(ev.End.AddDate(0, 0, deltaDays)))
		if dup.AllDay {
			dup.Date = time.Date(dup.Start.Year(), dup.Start.Month(), dup.Start.Day(), 0, 0, 0, 0, time.UTC)
		}

		if _, err := dst.AddEvent(dup, true); err != nil {
			summary.Skipped++
			m.log.Warn("copy skipped conflicting event",
				zap.String("subject", ev.Subject),
				zap.String("target", targetName),
				zap.Error(err),
			)
			continue
		}
		summary.Copied++
	}
	m.log.Info("events copied",
		zap.String("source", src.name),
		zap.String("target", targetName),
		zap.Int("copied", summary.Copied),
		zap.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

// rebaseUTC keeps the wall-clock reading of t but re-attaches the UTC
// location, turning a converted local value back into storage form.
func rebaseUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
