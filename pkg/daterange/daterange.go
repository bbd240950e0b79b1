// Package daterange models calendar dates and half-open date intervals.
//
// A Range covers [Start, End): the end date itself is not included, so a
// rental returned on day D and one picked up on day D never conflict.
package daterange

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the ISO 8601 calendar date format used at every boundary.
const Layout = "2006-01-02"

var ErrInvalidRange = errors.New("invalid date range")

// InvalidRangeError reports an empty, inverted or unparsable interval.
type InvalidRangeError struct {
	Start  string
	End    string
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range [%s, %s): %s", e.Start, e.End, e.Reason)
}

func (e *InvalidRangeError) Is(target error) bool {
	return target == ErrInvalidRange
}

// Date is a calendar date without a time-of-day component.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("date %q must be in YYYY-MM-DD format: %w", s, err)
	}
	return DateOf(t), nil
}

func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(Layout)
}

func (d Date) IsZero() bool         { return d.t.IsZero() }
func (d Date) Time() time.Time      { return d.t }
func (d Date) Before(o Date) bool   { return d.t.Before(o.t) }
func (d Date) After(o Date) bool    { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool    { return d.t.Equal(o.t) }
func (d Date) AddDays(n int) Date   { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) Compare(o Date) int   { return d.t.Compare(o.t) }
func (d Date) DaysUntil(o Date) int { return int(o.t.Sub(d.t).Hours() / 24) }

// Range is the half-open interval [Start, End). Always Start < End.
type Range struct {
	Start Date `json:"start_date" bson:"start_date"`
	End   Date `json:"end_date" bson:"end_date"`
}

func New(start, end Date) (Range, error) {
	if start.IsZero() || end.IsZero() {
		return Range{}, &InvalidRangeError{Start: start.String(), End: end.String(), Reason: "both dates are required"}
	}
	if !start.Before(end) {
		return Range{}, &InvalidRangeError{Start: start.String(), End: end.String(), Reason: "start must be before end"}
	}
	return Range{Start: start, End: end}, nil
}

// Parse builds a Range from two YYYY-MM-DD strings. Malformed dates are
// reported as InvalidRangeError too.
func Parse(start, end string) (Range, error) {
	s, err := ParseDate(start)
	if err != nil {
		return Range{}, &InvalidRangeError{Start: start, End: end, Reason: err.Error()}
	}
	e, err := ParseDate(end)
	if err != nil {
		return Range{}, &InvalidRangeError{Start: start, End: end, Reason: err.Error()}
	}
	return New(s, e)
}

func MustParse(start, end string) Range {
	r, err := Parse(start, end)
	if err != nil {
		panic(err)
	}
	return r
}

// Overlaps reports whether a and b share at least one day.
func Overlaps(a, b Range) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

func (r Range) Overlaps(o Range) bool { return Overlaps(r, o) }

func (r Range) Contains(d Date) bool {
	return !d.Before(r.Start) && d.Before(r.End)
}

func (r Range) Equal(o Range) bool {
	return r.Start.Equal(o.Start) && r.End.Equal(o.End)
}

// Days is the number of calendar days covered by the range.
func (r Range) Days() int {
	return r.Start.DaysUntil(r.End)
}

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start, r.End)
}
