package wellknown

import (
	"fmt"
	"time"
)

const secondsPerDay = 24 * 60 * 60

var epoch = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)

// Date is a calendar date without time of day or zone.
type Date struct {
	days int64
}

// NewDate returns the date of year, month and day. Out-of-range values are normalized
// the way time.Date normalizes them.
func NewDate(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{days: (t.Unix() - epoch.Unix()) / secondsPerDay}
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// DateFromDayNumber returns the date n days after 0001-01-01.
func DateFromDayNumber(n int64) Date {
	return Date{days: n}
}

// DayNumber returns the number of days since 0001-01-01.
func (d Date) DayNumber() int64 {
	return d.days
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return epoch.AddDate(0, 0, int(d.days))
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return Date{days: d.days + int64(n)}
}

func (d Date) String() string {
	return d.Time().Format(time.DateOnly)
}

// TimeOfDay is a time of day with nanosecond precision.
type TimeOfDay time.Duration

// NewTimeOfDay returns the time of day hour:min:sec.nsec.
func NewTimeOfDay(hour, minute, sec, nsec int) (TimeOfDay, error) {
	d := time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute +
		time.Duration(sec)*time.Second + time.Duration(nsec)
	if d < 0 || d >= 24*time.Hour {
		return 0, fmt.Errorf("time of day %02d:%02d:%02d.%09d out of range", hour, minute, sec, nsec)
	}

	return TimeOfDay(d), nil
}

// TimeOfDayOf returns the time of day of t in t's location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	y, m, d := t.Date()
	return TimeOfDay(t.Sub(time.Date(y, m, d, 0, 0, 0, 0, t.Location())))
}

// Duration returns the time elapsed since midnight.
func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t)
}

func (t TimeOfDay) String() string {
	d := time.Duration(t)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	if d == 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}

	return fmt.Sprintf("%02d:%02d:%02d.%09d", h, m, s, d)
}
