package storage

import (
	"context"

	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/availability"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/model"
)

// Schedule is everything the availability engine needs for a date range.
// Bookings are confirmed ones only.
type Schedule struct {
	Bookings     []model.Booking
	Blocks       []model.BlockedSlot
	Hours        []model.BusinessHours
	SpecialDates []model.SpecialDate
}

// Inputs adapts the schedule for one slot query.
func (s Schedule) Inputs(date string, duration int) availability.Inputs {
	return availability.Inputs{
		Date:         date,
		Duration:     duration,
		Bookings:     s.Bookings,
		Blocks:       s.Blocks,
		Hours:        s.Hours,
		SpecialDates: s.SpecialDates,
	}
}

func (s Schedule) MonthInputs(duration int) availability.MonthInputs {
	return availability.MonthInputs{
		Duration:     duration,
		Bookings:     s.Bookings,
		Blocks:       s.Blocks,
		Hours:        s.Hours,
		SpecialDates: s.SpecialDates,
	}
}

func (r *Repository) LoadDay(ctx context.Context, date string) (Schedule, error) {
	return loadRange(ctx, r.db, date, date)
}

// LoadRange loads the schedule for the inclusive date range [from, to].
func (r *Repository) LoadRange(ctx context.Context, from, to string) (Schedule, error) {
	return loadRange(ctx, r.db, from, to)
}

func loadRange(ctx context.Context, q rowQuerier, from, to string) (Schedule, error) {
	var (
		s   Schedule
		err error
	)
	if s.Bookings, err = queryBookings(ctx, q, from, to, true); err != nil {
		return Schedule{}, err
	}
	if s.Blocks, err = queryBlocks(ctx, q, from, to); err != nil {
		return Schedule{}, err
	}
	if s.Hours, err = queryBusinessHours(ctx, q); err != nil {
		return Schedule{}, err
	}
	if s.SpecialDates, err = querySpecialDates(ctx, q, from, to); err != nil {
		return Schedule{}, err
	}
	return s, nil
}
