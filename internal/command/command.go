// Package command parses the textual command grammar and dispatches it onto
// the calendar core. Dispatch is a closed set of command kinds handled in an
// exhaustive switch; there is no string-keyed handler registry.
package command

import (
	"time"
)

// Kind tags the command variant. The executor switches over this set.
type Kind int

const (
	KindCreateCalendar Kind = iota
	KindCreateEvent
	KindEditCalendar
	KindEditSingle
	KindEditFromDate
	KindEditAll
	KindUseCalendar
	KindCopyEvent
	KindCopyEventsOn
	KindCopyEventsBetween
	KindPrintOn
	KindPrintRange
	KindShowStatus
	KindExport
	KindImport
	KindExit
)

// RepeatSpec carries the recurrence clause of a create command.
type RepeatSpec struct {
	Weekdays []time.Weekday
	Count    int       // > 0 for "for N times"
	Until    time.Time // non-zero for "until <date>"
}

// Command is the parsed form of one input line. Which fields are meaningful
// depends on Kind; unused fields stay zero.
type Command struct {
	Kind Kind

	CalendarName string
	Timezone     string

	Subject     string
	Start       time.Time // wall clock in the active calendar's zone
	End         time.Time
	Date        time.Time
	AllDay      bool
	AutoDecline bool
	Description string
	Location    string
	Private     bool
	Repeat      *RepeatSpec

	Property string
	Value    string

	Target      string
	TargetStart time.Time

	RangeStart time.Time
	RangeEnd   time.Time

	File string
}
