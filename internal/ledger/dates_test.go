package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestWeekRangeStartsMonday(t *testing.T) {
	cases := map[string]struct {
		input string
		start string
		end   string
	}{
		"wednesday": {input: "2025-03-12", start: "2025-03-10", end: "2025-03-16"},
		"monday":    {input: "2025-03-10", start: "2025-03-10", end: "2025-03-16"},
		"sunday":    {input: "2025-03-16", start: "2025-03-10", end: "2025-03-16"},
		"year wrap": {input: "2026-01-01", start: "2025-12-29", end: "2026-01-04"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			start, end, err := WeekRange(tc.input)
			require.NoError(t, err)
			require.Equal(t, day(tc.start), start)
			require.Equal(t, day(tc.end), end)
		})
	}
}

func TestMonthRange(t *testing.T) {
	start, end, err := MonthRange("2025-02")
	require.NoError(t, err)
	require.Equal(t, day("2025-02-01"), start)
	require.Equal(t, day("2025-02-28"), end)

	start, end, err = MonthRange("2024-02")
	require.NoError(t, err)
	require.Equal(t, day("2024-02-01"), start)
	require.Equal(t, day("2024-02-29"), end)

	_, _, err = MonthRange("2024-13")
	require.Error(t, err)
}

func TestDateWindowPrecedence(t *testing.T) {
	// Day wins over every other filter.
	start, end, err := DateWindow(ListFilter{Day: "2025-03-12", Week: "2025-03-01", Month: "2025-01", From: "2020-01-01"})
	require.NoError(t, err)
	require.Equal(t, day("2025-03-12"), *start)
	require.Equal(t, day("2025-03-12"), *end)

	// Week beats month and from/to.
	start, end, err = DateWindow(ListFilter{Week: "2025-03-12", Month: "2025-01"})
	require.NoError(t, err)
	require.Equal(t, day("2025-03-10"), *start)
	require.Equal(t, day("2025-03-16"), *end)

	// From/to may be half-open.
	start, end, err = DateWindow(ListFilter{From: "2025-01-15"})
	require.NoError(t, err)
	require.Equal(t, day("2025-01-15"), *start)
	require.Nil(t, end)

	start, end, err = DateWindow(ListFilter{To: "2025-01-31"})
	require.NoError(t, err)
	require.Nil(t, start)
	require.Equal(t, day("2025-01-31"), *end)

	// No filter leaves both bounds open.
	start, end, err = DateWindow(ListFilter{})
	require.NoError(t, err)
	require.Nil(t, start)
	require.Nil(t, end)
}

func TestDateWindowInvalid(t *testing.T) {
	_, _, err := DateWindow(ListFilter{Day: "12-03-2025"})
	require.Error(t, err)

	_, _, err = DateWindow(ListFilter{From: "not-a-date"})
	require.Error(t, err)
}
