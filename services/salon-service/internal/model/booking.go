package model

import "time"

type BookingStatus string

const (
	StatusConfirmed           BookingStatus = "confirmed"
	StatusCompleted           BookingStatus = "completed"
	StatusCancelledByCustomer BookingStatus = "cancelled_by_customer"
	StatusCancelledByOwner    BookingStatus = "cancelled_by_owner"
	StatusNoShow              BookingStatus = "no_show"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusConfirmed, StatusCompleted, StatusCancelledByCustomer, StatusCancelledByOwner, StatusNoShow:
		return true
	}
	return false
}

// Booking is a customer reservation. Date is "YYYY-MM-DD", times are "HH:MM".
// Only confirmed bookings occupy the chair.
type Booking struct {
	ID            string
	Date          string
	StartTime     string
	EndTime       string
	MenuItemIDs   []int
	TotalDuration int
	TotalPrice    int
	CustomerName  string
	CustomerPhone string
	CustomerNote  string
	Status        BookingStatus
	CancelReason  string
	CreatedAt     time.Time
}

// Customer is what the booking form collects.
type Customer struct {
	Name  string
	Phone string
	Note  string
}

// BlockedSlot is owner time off. IsAllDay closes the whole date regardless of
// StartTime and EndTime.
type BlockedSlot struct {
	ID        string
	Date      string
	StartTime string
	EndTime   string
	Reason    string
	IsAllDay  bool
}

// BusinessHours is the weekly opening window for one weekday (0 = Sunday).
type BusinessHours struct {
	DayOfWeek int
	StartTime string
	EndTime   string
	IsHoliday bool
}

// SpecialDate overrides the weekly table on one date. Closed, or a missing
// start or end, means no business that day.
type SpecialDate struct {
	Date      string
	StartTime *string
	EndTime   *string
	IsClosed  bool
	Reason    string
}
