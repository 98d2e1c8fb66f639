// Package timestate buckets a due date into a relative-time category.
package timestate

import (
	"time"

	"github.com/nhle/todolist/internal/model"
)

// Classify maps an optional date to a bucket relative to today. Both values
// are compared as calendar dates in today's location. The checks run in a
// fixed order and the first match wins, so the ThisWeek window shadows the
// start of the NextMonth window. All window bounds are exclusive.
func Classify(date *time.Time, today time.Time) model.TimeState {
	if date == nil {
		return model.TimeStateNoDate
	}

	loc := today.Location()
	now := civil(today, loc)
	d := civil(*date, loc)

	weekEnd := now.AddDate(0, 0, 7)
	nextWeekEnd := now.AddDate(0, 0, 14)
	monthEnd := addMonths(now, 1)

	switch {
	case d.Equal(now):
		return model.TimeStateToday
	case d.Equal(now.AddDate(0, 0, 1)):
		return model.TimeStateTomorrow
	case d.After(now) && d.Before(weekEnd):
		return model.TimeStateThisWeek
	case d.After(weekEnd) && d.Before(nextWeekEnd):
		return model.TimeStateNextWeek
	case d.After(now) && d.Before(monthEnd):
		return model.TimeStateNextMonth
	case d.After(now):
		return model.TimeStateLater
	default:
		return model.TimeStateOverdue
	}
}

// civil truncates t to midnight of its calendar date in loc.
func civil(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// addMonths adds n calendar months, clamping the day to the end of the
// target month instead of overflowing into the next one.
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

// Classifier stamps dates against a clock.
type Classifier struct {
	now func() time.Time
	loc *time.Location
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) { c.now = now }
}

// WithLocation sets the zone calendar dates are taken in. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(c *Classifier) { c.loc = loc }
}

// New returns a Classifier using the wall clock in time.Local unless overridden.
func New(opts ...Option) *Classifier {
	c := &Classifier{now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Today returns the current instant in the classifier's location.
func (c *Classifier) Today() time.Time {
	return c.now().In(c.loc)
}

// Classify buckets date against the classifier's current day.
func (c *Classifier) Classify(date *time.Time) model.TimeState {
	return Classify(date, c.Today())
}
