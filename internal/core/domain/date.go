package domain

import (
	"fmt"
	"time"
)

// Date is a calendar date with day granularity. The wall clock portion is
// pinned to midnight UTC so that comparisons ignore time of day.
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

func (d Date) String() string {
	return d.Format(time.DateOnly)
}

// MarshalJSON renders the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(time.DateOnly) + `"`), nil
}

// UnmarshalJSON parses a "YYYY-MM-DD" value. Timestamps and other layouts are
// rejected so a submitted date never carries a hidden time component. A JSON
// null leaves the date at its zero value, per the encoding/json convention.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid date %s: expected a quoted YYYY-MM-DD string", data)
	}
	t, err := time.Parse(time.DateOnly, string(data[1:len(data)-1]))
	if err != nil {
		return fmt.Errorf("invalid date %s: expected YYYY-MM-DD", data)
	}
	d.Time = t
	return nil
}
