package availability

import (
	"time"

	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/model"
)

// MonthInputs is the schedule a month view is computed against.
type MonthInputs struct {
	Duration     int
	Bookings     []model.Booking
	Blocks       []model.BlockedSlot
	Hours        []model.BusinessHours
	SpecialDates []model.SpecialDate
}

type CalendarConfig struct {
	Availability     Config
	MaxAdvanceMonths int
}

func DefaultCalendarConfig() CalendarConfig {
	return CalendarConfig{Availability: DefaultConfig(), MaxAdvanceMonths: DefaultMaxAdvanceMonths}
}

type Day struct {
	Date          string
	Day           int
	Weekday       time.Weekday
	Today         bool
	Past          bool
	Closed        bool
	BeyondHorizon bool
	HasSlots      bool
	Selectable    bool
}

type Month struct {
	Year          int
	Month         time.Month
	LeadingBlanks int
	Days          []Day
	CanPrev       bool
	CanNext       bool
}

// MonthView lays out one calendar month as seen on the civil date of today.
// Booking is possible from today up to MaxAdvanceMonths ahead; navigation is
// bounded by the current month and the month containing that horizon.
func MonthView(year int, month time.Month, today time.Time, in MonthInputs, cfg CalendarConfig) Month {
	if cfg.MaxAdvanceMonths <= 0 {
		cfg.MaxAdvanceMonths = DefaultMaxAdvanceMonths
	}
	todayDate := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	horizon := todayDate.AddDate(0, cfg.MaxAdvanceMonths, 0)

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysIn := first.AddDate(0, 1, -1).Day()
	thisMonth := time.Date(todayDate.Year(), todayDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	horizonMonth := time.Date(horizon.Year(), horizon.Month(), 1, 0, 0, 0, 0, time.UTC)

	m := Month{
		Year:          first.Year(),
		Month:         first.Month(),
		LeadingBlanks: int(first.Weekday()),
		Days:          make([]Day, 0, daysIn),
		CanPrev:       first.After(thisMonth),
		CanNext:       first.Before(horizonMonth),
	}

	for d := 1; d <= daysIn; d++ {
		date := first.AddDate(0, 0, d-1)
		ds := date.Format(DateLayout)
		_, open := ResolveBusinessHours(ds, in.Hours, in.SpecialDates)

		day := Day{
			Date:          ds,
			Day:           d,
			Weekday:       date.Weekday(),
			Today:         date.Equal(todayDate),
			Past:          date.Before(todayDate),
			Closed:        !open,
			BeyondHorizon: date.After(horizon),
		}
		if in.Duration > 0 && open {
			day.HasSlots = HasAnySlot(Inputs{
				Date:         ds,
				Duration:     in.Duration,
				Bookings:     in.Bookings,
				Blocks:       in.Blocks,
				Hours:        in.Hours,
				SpecialDates: in.SpecialDates,
			}, cfg.Availability)
		}
		day.Selectable = in.Duration > 0 && !day.Past && !day.Closed && !day.BeyondHorizon && day.HasSlots
		m.Days = append(m.Days, day)
	}
	return m
}

// FilterLeadTime drops start times that are too close to now. Earlier dates
// lose every slot, now's own date keeps only starts at least minAdvanceHours
// ahead, later dates are returned unchanged. Times are read in now's location.
func FilterLeadTime(date string, slots []string, now time.Time, minAdvanceHours int) []string {
	out := []string{}
	d, ok := civilDate(date)
	if !ok {
		return out
	}
	if minAdvanceHours < 0 {
		minAdvanceHours = 0
	}
	loc := now.Location()
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch {
	case day.Before(todayStart):
		return out
	case day.After(todayStart):
		return append(out, slots...)
	}

	cutoff := now.Add(time.Duration(minAdvanceHours) * time.Hour)
	for _, s := range slots {
		start := day.Add(time.Duration(TimeToMinutes(s)) * time.Minute)
		if !start.Before(cutoff) {
			out = append(out, s)
		}
	}
	return out
}
