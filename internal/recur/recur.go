// Package recur computes follow-up occurrences of repeating entries.
package recur

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/nhle/todolist/internal/model"
)

// ruleNames holds the RRULE FREQ value for each cadence.
var ruleNames = map[model.Repeat]string{
	model.RepeatDaily:   "DAILY",
	model.RepeatWeekly:  "WEEKLY",
	model.RepeatMonthly: "MONTHLY",
	model.RepeatYearly:  "YEARLY",
}

// RRule returns the RFC 5545 rule for a cadence, or "" if it does not repeat.
func RRule(r model.Repeat) string {
	name, ok := ruleNames[r]
	if !ok {
		return ""
	}
	return "FREQ=" + name
}

// Next returns the first occurrence of r strictly after from, anchored at
// from. It returns nil for a non-repeating cadence. Monthly and yearly rules
// skip months that lack from's day, as RFC 5545 requires.
func Next(r model.Repeat, from time.Time) (*time.Time, error) {
	ruleStr := RRule(r)
	if ruleStr == "" {
		return nil, nil
	}

	opt, err := rrule.StrToROption(ruleStr)
	if err != nil {
		return nil, fmt.Errorf("parsing %s rule: %w", r, err)
	}
	opt.Dtstart = from

	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("building %s rule: %w", r, err)
	}

	next := rule.After(from, false)
	if next.IsZero() {
		return nil, nil
	}
	return &next, nil
}
