package schedule

import (
	"fmt"
	"math"
	"time"

	"github.com/joshharrison/loomplan/internal/task"
)

// DateLayout is the ISO calendar date format used on the wire.
const DateLayout = "2006-01-02"

// Date is a calendar day with no time-of-day or zone. The zero value is
// "no date".
type Date struct {
	t time.Time
}

// NewDate returns the given calendar day. Out-of-range values normalise the
// way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

// IsWeekend reports whether d is a Saturday or Sunday.
func (d Date) IsWeekend() bool {
	wd := d.t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// AddDays moves d by n calendar days.
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

func (d Date) After(o Date) bool { return d.t.After(o.t) }

// DaysSince returns the number of calendar days from o to d.
func (d Date) DaysSince(o Date) int {
	return int(d.t.Sub(o.t).Hours() / 24)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// AddWeekdays walks forward from d one calendar day at a time, counting only
// Monday to Friday, until at least n weekdays have elapsed. The start day
// itself is never counted, so a fractional n rounds up to the next weekday.
// n is clamped to task.MaxDuration.
func AddWeekdays(d Date, n float64) Date {
	n = math.Min(n, task.MaxDuration)
	end := d
	for added := 0.0; added < n; {
		end = end.AddDays(1)
		if !end.IsWeekend() {
			added++
		}
	}
	return end
}

// NextWeekday returns d if it is a weekday, otherwise the following Monday.
func NextWeekday(d Date) Date {
	for d.IsWeekend() {
		d = d.AddDays(1)
	}
	return d
}
