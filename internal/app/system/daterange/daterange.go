// Package daterange resolves the optional from/to query parameters of the
// dashboard into a concrete interval and enumerates its calendar days.
package daterange

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"
)

// DefaultDays is how many calendar days back from goes when it is omitted.
const DefaultDays = 7

// KeyLayout is the layout of day keys.
const KeyLayout = "2006-01-02"

// ErrInvalidDate is returned for a from/to value that cannot be parsed.
var ErrInvalidDate = errors.New("invalid date")

// Layouts accepted for from/to, tried in order. Layouts without a zone are
// interpreted in the resolver's location.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	KeyLayout,
}

// Range is a resolved [From, To] interval. Both ends are inclusive.
// From may be after To; queries over such a range match nothing.
type Range struct {
	From time.Time
	To   time.Time
}

// Resolve turns optional from/to strings into a Range.
//
//   - to given: end of that day. to empty: now, unchanged.
//   - from given: start of that day. from empty: start of the day seven days before to.
//
// No ordering check is made between from and to.
func Resolve(from, to string, now time.Time, loc *time.Location) (Range, error) {
	if loc == nil {
		loc = time.UTC
	}

	end := now.In(loc)
	if s := strings.TrimSpace(to); s != "" {
		t, err := parse(s, loc)
		if err != nil {
			return Range{}, fmt.Errorf("%w: to %q", ErrInvalidDate, s)
		}
		end = EndOfDay(t)
	}

	var start time.Time
	if s := strings.TrimSpace(from); s != "" {
		t, err := parse(s, loc)
		if err != nil {
			return Range{}, fmt.Errorf("%w: from %q", ErrInvalidDate, s)
		}
		start = StartOfDay(t)
	} else {
		start = StartOfDay(end.AddDate(0, 0, -DefaultDays))
	}

	return Range{From: start, To: end}, nil
}

func parse(s string, loc *time.Location) (time.Time, error) {
	var firstErr error
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t.In(loc), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// StartOfDay returns 00:00:00.000 of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// Widened returns the range stretched to whole days on both ends.
func (r Range) Widened() Range {
	return Range{From: StartOfDay(r.From), To: EndOfDay(r.To)}
}

// Day is one calendar day of a range. End is the start of the next day
// and is exclusive.
type Day struct {
	Key   string
	Start time.Time
	End   time.Time
}

// Days yields every calendar day from From's date through To's date in order.
// A single-day range yields one Day; an inverted range yields nothing.
// The sequence can be ranged over any number of times.
func (r Range) Days() iter.Seq[Day] {
	first := StartOfDay(r.From)
	last := StartOfDay(r.To.In(r.From.Location()))
	return func(yield func(Day) bool) {
		for cur := first; !cur.After(last); {
			next := cur.AddDate(0, 0, 1)
			if !yield(Day{Key: cur.Format(KeyLayout), Start: cur, End: next}) {
				return
			}
			cur = next
		}
	}
}
