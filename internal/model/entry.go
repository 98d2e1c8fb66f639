package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TimeState is the relative-time bucket an entry was stamped with when it
// was last written. It is not recomputed on read.
type TimeState string

const (
	TimeStateNoDate    TimeState = "NoDate"
	TimeStateOverdue   TimeState = "Overdue"
	TimeStateToday     TimeState = "Today"
	TimeStateTomorrow  TimeState = "Tomorrow"
	TimeStateThisWeek  TimeState = "ThisWeek"
	TimeStateNextWeek  TimeState = "NextWeek"
	TimeStateNextMonth TimeState = "NextMonth"
	TimeStateLater     TimeState = "Later"
)

// TimeStateOrder is the order buckets are presented in.
var TimeStateOrder = []TimeState{
	TimeStateOverdue,
	TimeStateToday,
	TimeStateTomorrow,
	TimeStateThisWeek,
	TimeStateNextWeek,
	TimeStateNextMonth,
	TimeStateLater,
	TimeStateNoDate,
}

// Label returns the human-readable heading for a bucket.
func (s TimeState) Label() string {
	switch s {
	case TimeStateNoDate:
		return "No Date"
	case TimeStateThisWeek:
		return "This Week"
	case TimeStateNextWeek:
		return "Next Week"
	case TimeStateNextMonth:
		return "Next Month"
	default:
		return string(s)
	}
}

// Valid reports whether s is one of the known buckets.
func (s TimeState) Valid() bool {
	for _, known := range TimeStateOrder {
		if s == known {
			return true
		}
	}
	return false
}

// Repeat is the cadence label of a recurring entry. It is stored as its label.
type Repeat string

const (
	RepeatNone    Repeat = "No repeat"
	RepeatDaily   Repeat = "Once a Day"
	RepeatWeekly  Repeat = "Once a week"
	RepeatMonthly Repeat = "Once a Month"
	RepeatYearly  Repeat = "Once a Year"
)

// Repeats lists the selectable cadences; the first one is the form default.
var Repeats = []Repeat{RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly}

// ErrUnknownRepeat is returned when a repeat label does not match any cadence.
var ErrUnknownRepeat = errors.New("unknown repeat cadence")

// ParseRepeat resolves a label case-insensitively. An empty label means RepeatNone.
func ParseRepeat(s string) (Repeat, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RepeatNone, nil
	}
	for _, r := range Repeats {
		if strings.EqualFold(string(r), s) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRepeat, s)
}

// Recurring reports whether the cadence produces further occurrences.
func (r Repeat) Recurring() bool {
	return r != "" && r != RepeatNone
}

// ListType names the user-defined list an entry belongs to.
type ListType string

// Built-in list names seeded into a fresh registry.
const (
	ListDefault   ListType = "Default"
	ListCompleted ListType = "Completed"
)

// ListAll is a view filter meaning "every list". It is never stored on an entry.
const ListAll = "All Lists"

// Custom reports whether the list is user-created rather than seeded.
func (l ListType) Custom() bool {
	return l != ListDefault && l != ListCompleted
}

// Entry is a single to-do item.
type Entry struct {
	ID        string     `json:"id" db:"id"`
	Title     string     `json:"title" db:"title"`
	SetDate   *time.Time `json:"set_date,omitempty" db:"set_date"`
	IsDone    bool       `json:"is_done" db:"is_done"`
	TimeState TimeState  `json:"time_state" db:"time_state"`
	Repeat    Repeat     `json:"repeat" db:"repeat"`
	ListType  ListType   `json:"list_type" db:"list_type"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// EntryUpdate carries the full set of mutable fields for an overwrite by ID.
type EntryUpdate struct {
	ID        string
	Title     string
	SetDate   *time.Time
	TimeState TimeState
	Repeat    Repeat
	ListType  ListType
	IsDone    bool
}

// UpdateOf returns the overwrite that would store e unchanged.
func UpdateOf(e Entry) EntryUpdate {
	return EntryUpdate{
		ID:        e.ID,
		Title:     e.Title,
		SetDate:   e.SetDate,
		TimeState: e.TimeState,
		Repeat:    e.Repeat,
		ListType:  e.ListType,
		IsDone:    e.IsDone,
	}
}
