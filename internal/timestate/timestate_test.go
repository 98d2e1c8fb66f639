package timestate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/todolist/internal/model"
)

func day(y int, m time.Month, d, h int) *time.Time {
	t := time.Date(y, m, d, h, 0, 0, 0, time.UTC)
	return &t
}

func TestClassify(t *testing.T) {
	today := time.Date(2026, time.March, 10, 10, 0, 0, 0, time.UTC)
	plus := func(days int) *time.Time {
		d := today.AddDate(0, 0, days)
		return &d
	}

	tests := []struct {
		name string
		date *time.Time
		want model.TimeState
	}{
		{"absent", nil, model.TimeStateNoDate},
		{"today earlier", day(2026, time.March, 10, 0), model.TimeStateToday},
		{"today later", day(2026, time.March, 10, 23), model.TimeStateToday},
		{"tomorrow", plus(1), model.TimeStateTomorrow},
		{"two days", plus(2), model.TimeStateThisWeek},
		{"five days", plus(5), model.TimeStateThisWeek},
		{"six days", plus(6), model.TimeStateThisWeek},
		{"exactly seven days", plus(7), model.TimeStateNextMonth},
		{"eight days", plus(8), model.TimeStateNextWeek},
		{"ten days", plus(10), model.TimeStateNextWeek},
		{"thirteen days", plus(13), model.TimeStateNextWeek},
		{"exactly fourteen days", plus(14), model.TimeStateNextMonth},
		{"twenty days", plus(20), model.TimeStateNextMonth},
		{"exactly one month", day(2026, time.April, 10, 9), model.TimeStateLater},
		{"forty days", plus(40), model.TimeStateLater},
		{"yesterday", plus(-1), model.TimeStateOverdue},
		{"last year", plus(-400), model.TimeStateOverdue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.date, today))
		})
	}
}

func TestClassifyMonthClampsToMonthEnd(t *testing.T) {
	today := time.Date(2026, time.January, 31, 8, 0, 0, 0, time.UTC)

	assert.Equal(t, model.TimeStateNextMonth, Classify(day(2026, time.February, 27, 0), today))
	assert.Equal(t, model.TimeStateLater, Classify(day(2026, time.February, 28, 0), today))
	assert.Equal(t, model.TimeStateLater, Classify(day(2026, time.March, 2, 0), today))
}

func TestClassifyUsesTodaysLocation(t *testing.T) {
	today := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	east := time.FixedZone("UTC-5", -5*60*60)

	// 23:30 on the 10th at UTC-5 is already the 11th in UTC.
	late := time.Date(2026, time.March, 10, 23, 30, 0, 0, east)
	assert.Equal(t, model.TimeStateTomorrow, Classify(&late, today))
}

func TestClassifierClock(t *testing.T) {
	fixed := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	c := New(WithClock(func() time.Time { return fixed }), WithLocation(time.UTC))

	assert.Equal(t, fixed, c.Today())
	assert.Equal(t, model.TimeStateToday, c.Classify(day(2026, time.June, 1, 18)))
	assert.Equal(t, model.TimeStateOverdue, c.Classify(day(2026, time.May, 31, 18)))
	assert.Equal(t, model.TimeStateNoDate, c.Classify(nil))
}
