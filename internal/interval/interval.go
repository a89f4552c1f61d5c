// Package interval converts between the relative ("last N days") and explicit
// ("<start>_<end>") representations of a date interval.
package interval

import (
	"fmt"
	"strings"
	"time"

	"github.com/quaksai/marketsview/internal/core"
)

const (
	// DateLayout is the external calendar date format.
	DateLayout = "2006-01-02"

	// Separator joins the two halves of an Encoding.
	Separator = "_"

	// DefaultDays is the relative window used when no explicit interval is given.
	DefaultDays = 90
)

// Clock supplies "now". Tests pin it with FixedClock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// PastDate returns the calendar date daysAgo days before now.
// PastDate(clock, 1) is yesterday, the end anchor for end-of-day data.
func PastDate(clock Clock, daysAgo int) string {
	if daysAgo < 0 {
		daysAgo = 0
	}
	return clock.Now().AddDate(0, 0, -daysAgo).Format(DateLayout)
}

// Encoding is the serialized "<startDate>_<endDate>" form used in the
// interval query parameter.
type Encoding string

// NewEncoding joins two dates.
func NewEncoding(start, end string) Encoding {
	return Encoding(start + Separator + end)
}

// IsEmpty reports whether the encoding is blank after trimming.
func (e Encoding) IsEmpty() bool {
	return strings.TrimSpace(string(e)) == ""
}

// Split returns both halves. It never fails: a missing half is "".
func (e Encoding) Split() (start, end string) {
	parts := strings.Split(string(e), Separator)
	start = parts[0]
	if len(parts) > 1 {
		end = parts[1]
	}
	return start, end
}

// Dates parses both halves.
func (e Encoding) Dates() (time.Time, time.Time, error) {
	parts := strings.Split(string(e), Separator)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, core.WrapError(core.ErrIntervalMalformed,
			fmt.Errorf("%q has %d parts", string(e), len(parts)))
	}

	start, err := time.Parse(DateLayout, parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, core.WrapError(core.ErrIntervalMalformed, err)
	}
	end, err := time.Parse(DateLayout, parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, core.WrapError(core.ErrIntervalMalformed, err)
	}
	return start, end, nil
}

// Validate checks shape and ordering. Equal dates are allowed.
func (e Encoding) Validate() error {
	start, end, err := e.Dates()
	if err != nil {
		return err
	}
	if start.After(end) {
		return core.WrapError(core.ErrIntervalOrder,
			fmt.Errorf("%s > %s", start.Format(DateLayout), end.Format(DateLayout)))
	}
	return nil
}

// Interval holds both representations. Dates wins when non-empty.
type Interval struct {
	Days  int      `json:"interval_days"`
	Dates Encoding `json:"interval_dates,omitempty"`
}

// Relative returns a "last days days" interval.
func Relative(days int) Interval {
	return Interval{Days: days}
}

// UseExplicitDates reports whether Dates is the active representation.
func (iv Interval) UseExplicitDates() bool {
	return !iv.Dates.IsEmpty()
}

// ToEncoding returns the explicit dates unchanged when present, otherwise
// the relative window anchored at yesterday.
func ToEncoding(clock Clock, iv Interval) Encoding {
	if iv.UseExplicitDates() {
		return iv.Dates
	}
	return NewEncoding(PastDate(clock, iv.Days), PastDate(clock, 1))
}
