// Package seed holds the demo schedule the salon ships with: opening hours,
// a handful of bookings near the reference date, daily lunch breaks and one
// private day off.
package seed

import (
	"fmt"
	"time"

	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/catalog"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/recurrence"
)

const (
	LunchDays       = 60
	PrivateDayAhead = 7
)

func DefaultBusinessHours() []model.BusinessHours {
	return []model.BusinessHours{
		{DayOfWeek: 0, StartTime: "10:00", EndTime: "16:00"},
		{DayOfWeek: 1, StartTime: "10:00", EndTime: "20:00"},
		{DayOfWeek: 2, StartTime: "00:00", EndTime: "00:00", IsHoliday: true},
		{DayOfWeek: 3, StartTime: "10:00", EndTime: "20:00"},
		{DayOfWeek: 4, StartTime: "10:00", EndTime: "20:00"},
		{DayOfWeek: 5, StartTime: "10:00", EndTime: "20:00"},
		{DayOfWeek: 6, StartTime: "09:00", EndTime: "18:00"},
	}
}

type demoBooking struct {
	id     string
	offset int
	start  string
	menu   []int
	name   string
	phone  string
	note   string
}

var demoBookings = []demoBooking{
	{id: "demo-b1", offset: 1, start: "10:00", menu: []int{1}, name: "山田 花子", phone: "090-1234-5678"},
	{id: "demo-b2", offset: 1, start: "15:00", menu: []int{2, 9}, name: "佐藤 太郎", phone: "03-1234-5678"},
	{id: "demo-b3", offset: 2, start: "11:00", menu: []int{1, 5}, name: "鈴木 美咲", phone: "080-9876-5432", note: "前回ショートボブ"},
	{id: "demo-b4", offset: 4, start: "10:00", menu: []int{4}, name: "田中 健一", phone: "090-1111-2222"},
	{id: "demo-b5", offset: 5, start: "14:30", menu: []int{8}, name: "高橋 由美", phone: "03-5555-6666"},
}

// DemoBookings returns five confirmed bookings one to five days after ref.
// Durations and prices come from the menu catalog.
func DemoBookings(ref time.Time) []model.Booking {
	out := make([]model.Booking, 0, len(demoBookings))
	for _, d := range demoBookings {
		sel, err := catalog.Select(d.menu)
		if err != nil {
			panic(fmt.Sprintf("seed: demo booking %s: %v", d.id, err))
		}
		out = append(out, model.Booking{
			ID:            d.id,
			Date:          dateAfter(ref, d.offset),
			StartTime:     d.start,
			EndTime:       addMinutes(d.start, sel.TotalDuration),
			MenuItemIDs:   sel.IDs(),
			TotalDuration: sel.TotalDuration,
			TotalPrice:    sel.TotalPrice,
			CustomerName:  d.name,
			CustomerPhone: d.phone,
			CustomerNote:  d.note,
			Status:        model.StatusConfirmed,
			CreatedAt:     civil(ref),
		})
	}
	return out
}

// DemoBlockedSlots returns a 13:00-14:00 lunch break on each of the 60 days
// starting at ref, plus an all-day private block a week after ref.
func DemoBlockedSlots(ref time.Time) []model.BlockedSlot {
	dates := recurrence.Daily(civil(ref), LunchDays)
	out := make([]model.BlockedSlot, 0, len(dates)+1)
	for i, date := range dates {
		out = append(out, model.BlockedSlot{
			ID:        fmt.Sprintf("demo-lunch-%d", i),
			Date:      date,
			StartTime: "13:00",
			EndTime:   "14:00",
			Reason:    "昼休憩",
		})
	}
	return append(out, model.BlockedSlot{
		ID:        "demo-private",
		Date:      dateAfter(ref, PrivateDayAhead),
		StartTime: "00:00",
		EndTime:   "23:59",
		Reason:    "私用",
		IsAllDay:  true,
	})
}

type Stylist struct {
	ID          int
	Name        string
	Role        string
	Bio         string
	Specialties []string
	Avatar      string
	Years       int
}

func DemoStylist() Stylist {
	return Stylist{
		ID:          1,
		Name:        "ゴロウ",
		Role:        "オーナー / スタイリスト",
		Bio:         "髭と長髪がトレードマーク。NYで修行後、地元に戻りマルを開業。自然体でかっこいいスタイルが得意。",
		Specialties: []string{"メンズカット", "ゆるいふわスタイル", "パーマ"},
		Avatar:      "🧔",
		Years:       15,
	}
}

func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dateAfter(ref time.Time, days int) string {
	return civil(ref).AddDate(0, 0, days).Format("2006-01-02")
}

func addMinutes(hhmm string, minutes int) string {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		panic(fmt.Sprintf("seed: bad time %q", hhmm))
	}
	return t.Add(time.Duration(minutes) * time.Minute).Format("15:04")
}
