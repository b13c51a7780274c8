package availability

import "github.com/md-rashed-zaman/salonbook/services/salon-service/internal/model"

// Inputs is everything the slot walk looks at for one date. Bookings and
// Blocks may span other dates; they are filtered here.
type Inputs struct {
	Date         string
	Duration     int
	Bookings     []model.Booking
	Blocks       []model.BlockedSlot
	Hours        []model.BusinessHours
	SpecialDates []model.SpecialDate
}

type interval struct {
	start, end int
}

// AvailableSlots lists every start time on in.Date at which a treatment of
// in.Duration minutes fits inside opening hours without touching a confirmed
// booking (padded by the buffer on both sides) or a blocked interval. The
// result is ascending and never nil.
func AvailableSlots(in Inputs, cfg Config) []string {
	slots := []string{}
	walk(in, cfg, func(start int) bool {
		slots = append(slots, MinutesToTime(start))
		return true
	})
	return slots
}

// HasAnySlot stops at the first free start time.
func HasAnySlot(in Inputs, cfg Config) bool {
	found := false
	walk(in, cfg, func(int) bool {
		found = true
		return false
	})
	return found
}

func walk(in Inputs, cfg Config, yield func(start int) bool) {
	cfg = cfg.normalized()
	if in.Duration <= 0 {
		return
	}
	win, ok := ResolveBusinessHours(in.Date, in.Hours, in.SpecialDates)
	if !ok {
		return
	}
	open := TimeToMinutes(win.Start)
	lastStart := TimeToMinutes(win.End) - in.Duration
	if lastStart < open {
		return
	}

	busy := make([]interval, 0, len(in.Bookings)+len(in.Blocks))
	for _, b := range in.Blocks {
		if b.Date != in.Date {
			continue
		}
		if b.IsAllDay {
			return
		}
		busy = append(busy, interval{TimeToMinutes(b.StartTime), TimeToMinutes(b.EndTime)})
	}
	for _, b := range in.Bookings {
		if b.Date != in.Date || b.Status != model.StatusConfirmed {
			continue
		}
		busy = append(busy, interval{
			start: TimeToMinutes(b.StartTime) - cfg.BufferMinutes,
			end:   TimeToMinutes(b.EndTime) + cfg.BufferMinutes,
		})
	}

	for start := open; start <= lastStart; start += cfg.SlotIntervalMinutes {
		if overlapsAny(start, start+in.Duration, busy) {
			continue
		}
		if !yield(start) {
			return
		}
	}
}

func overlapsAny(start, end int, busy []interval) bool {
	for _, b := range busy {
		if IsOverlapping(start, end, b.start, b.end) {
			return true
		}
	}
	return false
}
