package dates

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestDateOnly(t *testing.T) {
	is := is.New(t)

	loc := time.FixedZone("JST", 9*60*60)
	d := DateOnly(time.Date(2025, 3, 14, 23, 45, 12, 99, loc))
	is.Equal(d, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))

	// already truncated values pass through unchanged
	is.Equal(DateOnly(d), d)
}

func TestParseFormat(t *testing.T) {
	is := is.New(t)

	d, err := Parse("2025-03-14")
	is.NoErr(err)
	is.Equal(Format(d), "2025-03-14")

	_, err = Parse("14.03.2025")
	is.True(err != nil)
}

func TestWeekOf(t *testing.T) {
	// 2025-03-14 is a Friday; its week runs Mon 2025-03-10 .. Sun 2025-03-16.
	friday := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	t.Run("mid-week", func(t *testing.T) {
		is := is.New(t)
		week := WeekOf(friday)
		is.Equal(len(week), 7)
		is.Equal(Format(week[0]), "2025-03-10")
		is.Equal(week[0].Weekday(), time.Monday)
		is.Equal(Format(week[6]), "2025-03-16")
	})

	t.Run("sunday belongs to the preceding monday", func(t *testing.T) {
		is := is.New(t)
		sunday := time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)
		week := WeekOf(sunday)
		is.Equal(Format(week[0]), "2025-03-10")
	})

	t.Run("monday starts its own week", func(t *testing.T) {
		is := is.New(t)
		monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
		week := WeekOf(monday)
		is.Equal(week[0], monday)
	})
}
