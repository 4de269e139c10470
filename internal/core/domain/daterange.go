package domain

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for reservation dates.
const DateLayout = "2006-01-02"

// DateRange is a half-open interval of calendar days: Start is the check-in
// day, End the check-out day. A stay ending on a day does not occupy it.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange parses both ends as calendar dates in UTC and requires
// start < end.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: start_date must be YYYY-MM-DD", ErrInvalidInput)
	}

	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: end_date must be YYYY-MM-DD", ErrInvalidInput)
	}

	return NewDateRange(s, e)
}

func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: TruncateDay(start), End: TruncateDay(end)}
	if !r.Start.Before(r.End) {
		return DateRange{}, fmt.Errorf("%w: end_date must be after start_date", ErrInvalidInput)
	}
	return r, nil
}

// Overlaps uses [s1,e1) and [s2,e2) semantics: s1 < e2 && s2 < e1.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

func (r DateRange) Nights() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

func (r DateRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start.Format(DateLayout), r.End.Format(DateLayout))
}

// TruncateDay drops the clock part and pins the date to UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
