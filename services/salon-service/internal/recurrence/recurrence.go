package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

const dateLayout = "2006-01-02"

// MaxOccurrences caps an expansion so an open-ended rule cannot flood storage.
const MaxOccurrences = 366

var ErrTooMany = errors.New("recurrence yields too many dates")

// Dates expands an RFC 5545 RRULE body (for example "FREQ=WEEKLY;COUNT=4")
// anchored at start into "YYYY-MM-DD" dates, start included when it matches.
// A rule without COUNT or UNTIL is limited to limit occurrences.
func Dates(start, rule string, limit int) ([]string, error) {
	if limit <= 0 || limit > MaxOccurrences {
		limit = MaxOccurrences
	}
	dtstart, err := time.ParseInLocation(dateLayout, start, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse start date: %w", err)
	}
	rule = strings.TrimPrefix(strings.TrimSpace(rule), "RRULE:")
	opt, err := rrule.StrToROption(rule)
	if err != nil {
		return nil, fmt.Errorf("parse rrule: %w", err)
	}
	opt.Dtstart = dtstart
	if opt.Count == 0 && opt.Until.IsZero() {
		opt.Count = limit
	}
	if opt.Count > limit {
		return nil, fmt.Errorf("%w: count %d exceeds %d", ErrTooMany, opt.Count, limit)
	}
	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("build rrule: %w", err)
	}

	var out []string
	it := r.Iterator()
	for {
		t, ok := it()
		if !ok {
			break
		}
		if len(out) == limit {
			return nil, fmt.Errorf("%w: more than %d", ErrTooMany, limit)
		}
		out = append(out, t.Format(dateLayout))
	}
	return out, nil
}

// Daily returns n consecutive dates starting at start.
func Daily(start time.Time, n int) []string {
	if n <= 0 {
		return nil
	}
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Count:   n,
		Dtstart: time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		return nil
	}
	all := r.All()
	out := make([]string, len(all))
	for i, t := range all {
		out[i] = t.Format(dateLayout)
	}
	return out
}
