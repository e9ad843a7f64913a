package ledger

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD document date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("ledger: invalid date %q: %w", s, err)
	}
	return t, nil
}

// DayRange returns the single-day window for a YYYY-MM-DD date.
func DayRange(day string) (time.Time, time.Time, error) {
	d, err := ParseDate(day)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return d, d, nil
}

// WeekRange returns the Monday-through-Sunday window containing the given
// date. Weeks start on Monday regardless of locale.
func WeekRange(anyDay string) (time.Time, time.Time, error) {
	d, err := ParseDate(anyDay)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	diffToMonday := (int(d.Weekday()) + 6) % 7
	start := d.AddDate(0, 0, -diffToMonday)
	return start, start.AddDate(0, 0, 6), nil
}

// MonthRange returns the first and last day of a YYYY-MM calendar month.
func MonthRange(ym string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", ym)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("ledger: invalid month %q: %w", ym, err)
	}
	return start, start.AddDate(0, 1, -1), nil
}

// DateWindow resolves the filter's date constraint into inclusive bounds.
// Nil pointers mean the respective bound is open. Exactly one of day, week,
// month or from/to is honored, in that precedence order.
func DateWindow(f ListFilter) (*time.Time, *time.Time, error) {
	switch {
	case f.Day != "":
		start, end, err := DayRange(f.Day)
		if err != nil {
			return nil, nil, err
		}
		return &start, &end, nil
	case f.Week != "":
		start, end, err := WeekRange(f.Week)
		if err != nil {
			return nil, nil, err
		}
		return &start, &end, nil
	case f.Month != "":
		start, end, err := MonthRange(f.Month)
		if err != nil {
			return nil, nil, err
		}
		return &start, &end, nil
	case f.From != "" || f.To != "":
		var start, end *time.Time
		if f.From != "" {
			s, err := ParseDate(f.From)
			if err != nil {
				return nil, nil, err
			}
			start = &s
		}
		if f.To != "" {
			e, err := ParseDate(f.To)
			if err != nil {
				return nil, nil, err
			}
			end = &e
		}
		return start, end, nil
	}
	return nil, nil, nil
}
