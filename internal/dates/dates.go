// Package dates holds calendar-date helpers. Tasks are keyed by day, never
// by instant, so everything here works on midnight-UTC values.
package dates

import "time"

const layoutISO = "2006-01-02"

// DateOnly drops the time-of-day component, yielding midnight UTC of the
// same calendar day.
func DateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date.
func Today() time.Time {
	return DateOnly(time.Now())
}

// Format renders a date as YYYY-MM-DD.
func Format(d time.Time) string {
	return d.Format(layoutISO)
}

// Parse reads a YYYY-MM-DD string into a midnight-UTC date.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(layoutISO, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(t), nil
}

// WeekOf returns the seven dates of the week containing base, Monday first.
func WeekOf(base time.Time) []time.Time {
	d := DateOnly(base)
	offset := int(d.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	monday := d.AddDate(0, 0, -offset)

	week := make([]time.Time, 7)
	for i := range week {
		week[i] = monday.AddDate(0, 0, i)
	}
	return week
}
