// Package dateutil provides day level date handling for feed filtering.
package dateutil

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
	"github.com/jinzhu/now"
)

// Interval groups start and end.
type Interval struct {
	Start time.Time
	End   time.Time
}

// String renders an interval.
func (iv Interval) String() string {
	return fmt.Sprintf("%s %s", iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339))
}

// Contains reports whether t falls within the interval, inclusive.
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && !t.After(iv.End)
}

// DayOf returns the day interval containing t.
func DayOf(t time.Time) Interval {
	return Interval{
		Start: now.With(t).BeginningOfDay(),
		End:   now.With(t).EndOfDay(),
	}
}

// ParseDay parses a flexible date string and floors it to the beginning
// of its day.
func ParseDay(s string) (time.Time, error) {
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, err
	}
	return now.With(t).BeginningOfDay(), nil
}
