package todo

import (
	"errors"
	"strings"
	"time"
)

// Input layouts for the date and time fields.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	ErrBadDate         = errors.New("invalid date format, use YYYY-MM-DD")
	ErrBadTime         = errors.New("invalid time format, use HH:MM")
	ErrTimeWithoutDate = errors.New("set a date before a time")
)

// ParseDue combines optional date and time fields into a due instant in
// loc. A date without a time is midnight; both empty means no date.
func ParseDue(date, clock string, loc *time.Location) (*time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)

	if date == "" {
		if clock != "" {
			return nil, ErrTimeWithoutDate
		}
		return nil, nil
	}

	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return nil, ErrBadDate
	}
	if clock == "" {
		return &day, nil
	}

	tod, err := time.Parse(TimeLayout, clock)
	if err != nil {
		return nil, ErrBadTime
	}
	due := time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), 0, 0, loc)
	return &due, nil
}
