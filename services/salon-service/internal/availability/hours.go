package availability

import (
	"strconv"
	"strings"
	"time"

	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/model"
)

const DateLayout = "2006-01-02"

// Window is an opening window in "HH:MM".
type Window struct {
	Start string
	End   string
}

// ResolveBusinessHours returns the opening window for date. ok is false when
// the salon is closed: a closing special date, a special date without times,
// a holiday or missing weekday entry, or a date that does not parse.
func ResolveBusinessHours(date string, weekly []model.BusinessHours, special []model.SpecialDate) (Window, bool) {
	for _, s := range special {
		if s.Date != date {
			continue
		}
		if s.IsClosed || s.StartTime == nil || s.EndTime == nil {
			return Window{}, false
		}
		return Window{Start: *s.StartTime, End: *s.EndTime}, true
	}

	dow, ok := Weekday(date)
	if !ok {
		return Window{}, false
	}
	for _, h := range weekly {
		if h.DayOfWeek != int(dow) {
			continue
		}
		if h.IsHoliday {
			return Window{}, false
		}
		return Window{Start: h.StartTime, End: h.EndTime}, true
	}
	return Window{}, false
}

// Weekday is computed on the civil calendar and never depends on the process
// time zone. Unpadded parts are accepted and out of range days roll over
// ("2025-02-30" is a Sunday, March 2nd).
func Weekday(date string) (time.Weekday, bool) {
	d, ok := civilDate(date)
	if !ok {
		return 0, false
	}
	return d.Weekday(), true
}

func civilDate(date string) (time.Time, bool) {
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	var ymd [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, false
		}
		ymd[i] = n
	}
	return time.Date(ymd[0], time.Month(ymd[1]), ymd[2], 0, 0, 0, 0, time.UTC), true
}
