package availability

import (
	"fmt"
	"testing"

	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/model"
)

func ptr(s string) *string { return &s }

func weeklyHours() []model.BusinessHours {
	return []model.BusinessHours{
		{DayOfWeek: 0, StartTime: "10:00", EndTime: "16:00"},
		{DayOfWeek: 1, StartTime: "10:00", EndTime: "20:00"},
		{DayOfWeek: 2, StartTime: "10:00", EndTime: "20:00", IsHoliday: true},
		{DayOfWeek: 3, StartTime: "10:00", EndTime: "20:00"},
		{DayOfWeek: 4, StartTime: "10:00", EndTime: "20:00"},
		{DayOfWeek: 5, StartTime: "10:00", EndTime: "20:00"},
		{DayOfWeek: 6, StartTime: "09:00", EndTime: "18:00"},
	}
}

// 2025-01-14 is a Tuesday, 2025-01-15 a Wednesday, 2025-01-12 a Sunday.
const (
	tuesday   = "2025-01-14"
	wednesday = "2025-01-15"
	sunday    = "2025-01-12"
)

func contains(slots []string, s string) bool {
	for _, v := range slots {
		if v == s {
			return true
		}
	}
	return false
}

func TestTimeToMinutes(t *testing.T) {
	cases := map[string]int{
		"00:00": 0,
		"09:30": 570,
		"23:59": 1439,
		"9":     540,
		":15":   15,
		"":      0,
		"ab:cd": 0,
		"25:00": 1500,
	}
	for in, want := range cases {
		if got := TimeToMinutes(in); got != want {
			t.Fatalf("TimeToMinutes(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestMinutesToTime(t *testing.T) {
	cases := map[int]string{
		0:    "00:00",
		570:  "09:30",
		1439: "23:59",
		1470: "24:30",
		-30:  "-00:30",
		-90:  "-01:30",
	}
	for in, want := range cases {
		if got := MinutesToTime(in); got != want {
			t.Fatalf("MinutesToTime(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestClockRoundTrip(t *testing.T) {
	for m := 0; m < 24*60; m++ {
		s := MinutesToTime(m)
		if got := TimeToMinutes(s); got != m {
			t.Fatalf("round trip %d -> %q -> %d", m, s, got)
		}
		if MinutesToTime(TimeToMinutes(s)) != s {
			t.Fatalf("round trip of %q changed", s)
		}
	}
}

func TestIsOverlapping(t *testing.T) {
	cases := []struct {
		name           string
		a1, a2, b1, b2 int
		want           bool
	}{
		{"touching after", 600, 660, 660, 720, false},
		{"touching before", 660, 720, 600, 660, false},
		{"disjoint", 600, 630, 700, 760, false},
		{"partial", 600, 660, 630, 690, true},
		{"contained", 600, 720, 630, 660, true},
		{"containing", 630, 660, 600, 720, true},
		{"identical", 600, 660, 600, 660, true},
	}
	for _, tc := range cases {
		if got := IsOverlapping(tc.a1, tc.a2, tc.b1, tc.b2); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
		if got := IsOverlapping(tc.b1, tc.b2, tc.a1, tc.a2); got != tc.want {
			t.Fatalf("%s (swapped): got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestResolveBusinessHours(t *testing.T) {
	hours := weeklyHours()

	if _, ok := ResolveBusinessHours(tuesday, hours, nil); ok {
		t.Fatalf("tuesday should be a holiday")
	}
	if w, ok := ResolveBusinessHours(wednesday, hours, nil); !ok || w.Start != "10:00" || w.End != "20:00" {
		t.Fatalf("wednesday: %+v %v", w, ok)
	}
	if w, ok := ResolveBusinessHours("2025-01-18", hours, nil); !ok || w.Start != "09:00" || w.End != "18:00" {
		t.Fatalf("saturday: %+v %v", w, ok)
	}
	if w, ok := ResolveBusinessHours("2025-1-18", hours, nil); !ok || w.Start != "09:00" {
		t.Fatalf("unpadded date should still resolve: %+v %v", w, ok)
	}

	special := []model.SpecialDate{
		{Date: tuesday, StartTime: ptr("12:00"), EndTime: ptr("15:00"), Reason: "臨時営業"},
		{Date: tuesday, StartTime: ptr("09:00"), EndTime: ptr("10:00")},
		{Date: wednesday, IsClosed: true, StartTime: ptr("10:00"), EndTime: ptr("20:00")},
		{Date: "2025-01-16", StartTime: ptr("10:00")},
	}
	if w, ok := ResolveBusinessHours(tuesday, hours, special); !ok || w.Start != "12:00" || w.End != "15:00" {
		t.Fatalf("special open tuesday (first match) wanted 12:00-15:00, got %+v %v", w, ok)
	}
	if _, ok := ResolveBusinessHours(wednesday, hours, special); ok {
		t.Fatalf("closed special date should override weekly hours")
	}
	if _, ok := ResolveBusinessHours("2025-01-16", hours, special); ok {
		t.Fatalf("special date without end time is closed")
	}

	if _, ok := ResolveBusinessHours(wednesday, hours[:3], nil); ok {
		t.Fatalf("missing weekday entry is closed")
	}
	for _, bad := range []string{"", "tomorrow", "2025-01", "2025-xx-01"} {
		if _, ok := ResolveBusinessHours(bad, hours, nil); ok {
			t.Fatalf("unparseable date %q should be closed", bad)
		}
	}
	if w, ok := ResolveBusinessHours("not-a-date", hours, []model.SpecialDate{{Date: "not-a-date", StartTime: ptr("10:00"), EndTime: ptr("11:00")}}); !ok || w.Start != "10:00" {
		t.Fatalf("special date lookup happens before parsing: %+v %v", w, ok)
	}
}

func TestAvailableSlotsOpenDay(t *testing.T) {
	slots := AvailableSlots(Inputs{Date: wednesday, Duration: 60, Hours: weeklyHours()}, DefaultConfig())
	if len(slots) != 19 {
		t.Fatalf("expected 19 slots 10:00..19:00, got %d: %v", len(slots), slots)
	}
	if slots[0] != "10:00" || slots[len(slots)-1] != "19:00" {
		t.Fatalf("unexpected bounds %v", slots)
	}

	exact := AvailableSlots(Inputs{Date: sunday, Duration: 360, Hours: weeklyHours()}, DefaultConfig())
	if len(exact) != 1 || exact[0] != "10:00" {
		t.Fatalf("a treatment filling the whole day has one start, got %v", exact)
	}
	if got := AvailableSlots(Inputs{Date: sunday, Duration: 361, Hours: weeklyHours()}, DefaultConfig()); len(got) != 0 {
		t.Fatalf("treatment longer than the day should not fit, got %v", got)
	}
}

func TestAvailableSlotsClosedAndZeroDuration(t *testing.T) {
	cases := []Inputs{
		{Date: tuesday, Duration: 60, Hours: weeklyHours()},
		{Date: wednesday, Duration: 0, Hours: weeklyHours()},
		{Date: wednesday, Duration: -30, Hours: weeklyHours()},
		{Date: wednesday, Duration: 60},
	}
	for i, in := range cases {
		got := AvailableSlots(in, DefaultConfig())
		if got == nil || len(got) != 0 {
			t.Fatalf("case %d: expected non-nil empty slice, got %#v", i, got)
		}
		if HasAnySlot(in, DefaultConfig()) {
			t.Fatalf("case %d: HasAnySlot should be false", i)
		}
	}
}

func TestAvailableSlotsBuffer(t *testing.T) {
	in := Inputs{
		Date:     wednesday,
		Duration: 60,
		Hours:    weeklyHours(),
		Bookings: []model.Booking{
			{ID: "b1", Date: wednesday, StartTime: "11:00", EndTime: "12:00", Status: model.StatusConfirmed},
			{ID: "b2", Date: wednesday, StartTime: "15:00", EndTime: "16:00", Status: model.StatusCancelledByCustomer},
			{ID: "b3", Date: "2025-01-16", StartTime: "17:00", EndTime: "18:00", Status: model.StatusConfirmed},
		},
	}
	slots := AvailableSlots(in, DefaultConfig())
	for _, s := range []string{"10:00", "10:30", "11:00", "11:30", "12:00"} {
		if contains(slots, s) {
			t.Fatalf("%s should be blocked by the buffered booking: %v", s, slots)
		}
	}
	for _, s := range []string{"12:30", "15:00", "17:00"} {
		if !contains(slots, s) {
			t.Fatalf("%s should be free: %v", s, slots)
		}
	}

	noBuffer := AvailableSlots(in, Config{SlotIntervalMinutes: 30, BufferMinutes: 0})
	if !contains(noBuffer, "10:00") || !contains(noBuffer, "12:00") || contains(noBuffer, "10:30") {
		t.Fatalf("without buffer only real overlaps count: %v", noBuffer)
	}
	negative := AvailableSlots(in, Config{SlotIntervalMinutes: 30, BufferMinutes: -15})
	if len(negative) != len(noBuffer) {
		t.Fatalf("negative buffer should behave like zero: %v vs %v", negative, noBuffer)
	}
}

func TestAvailableSlotsBlocks(t *testing.T) {
	lunch := model.BlockedSlot{ID: "l", Date: wednesday, StartTime: "13:00", EndTime: "14:00", Reason: "昼休憩"}
	slots := AvailableSlots(Inputs{Date: wednesday, Duration: 60, Hours: weeklyHours(), Blocks: []model.BlockedSlot{lunch}}, DefaultConfig())
	for _, s := range []string{"12:30", "13:00", "13:30"} {
		if contains(slots, s) {
			t.Fatalf("%s overlaps lunch: %v", s, slots)
		}
	}
	for _, s := range []string{"12:00", "14:00"} {
		if !contains(slots, s) {
			t.Fatalf("%s only touches lunch and is free: %v", s, slots)
		}
	}

	allDay := model.BlockedSlot{ID: "p", Date: wednesday, StartTime: "00:00", EndTime: "00:00", IsAllDay: true, Reason: "私用"}
	in := Inputs{Date: wednesday, Duration: 30, Hours: weeklyHours(), Blocks: []model.BlockedSlot{lunch, allDay}}
	if got := AvailableSlots(in, DefaultConfig()); len(got) != 0 {
		t.Fatalf("all-day block should close the date, got %v", got)
	}
	in.Blocks[1].Date = "2025-01-16"
	if got := AvailableSlots(in, DefaultConfig()); len(got) == 0 {
		t.Fatalf("all-day block on another date should not matter")
	}
}

func TestAvailableSlotsInterval(t *testing.T) {
	in := Inputs{Date: sunday, Duration: 60, Hours: weeklyHours()}
	quarter := AvailableSlots(in, Config{SlotIntervalMinutes: 15, BufferMinutes: 15})
	if len(quarter) != 21 || quarter[1] != "10:15" || quarter[20] != "15:00" {
		t.Fatalf("15 minute interval: %v", quarter)
	}
	fallback := AvailableSlots(in, Config{SlotIntervalMinutes: 0})
	def := AvailableSlots(in, DefaultConfig())
	if len(fallback) != len(def) {
		t.Fatalf("zero interval should fall back to the default: %v vs %v", fallback, def)
	}
}

func TestSlotsAscendingAndHasAnySlotAgree(t *testing.T) {
	bookings := []model.Booking{
		{Date: "2025-01-15", StartTime: "10:00", EndTime: "11:00", Status: model.StatusConfirmed},
		{Date: "2025-01-15", StartTime: "15:00", EndTime: "16:15", Status: model.StatusConfirmed},
		{Date: "2025-01-18", StartTime: "09:00", EndTime: "17:30", Status: model.StatusConfirmed},
	}
	blocks := []model.BlockedSlot{
		{Date: "2025-01-15", StartTime: "13:00", EndTime: "14:00"},
		{Date: "2025-01-17", IsAllDay: true},
	}
	for day := 10; day <= 20; day++ {
		date := fmt.Sprintf("2025-01-%02d", day)
		for _, d := range []int{0, 15, 30, 45, 60, 75, 90, 120, 240, 600} {
			in := Inputs{Date: date, Duration: d, Bookings: bookings, Blocks: blocks, Hours: weeklyHours()}
			slots := AvailableSlots(in, DefaultConfig())
			for i := 1; i < len(slots); i++ {
				if TimeToMinutes(slots[i]) <= TimeToMinutes(slots[i-1]) {
					t.Fatalf("%s/%d not strictly increasing: %v", date, d, slots)
				}
			}
			if HasAnySlot(in, DefaultConfig()) != (len(slots) > 0) {
				t.Fatalf("%s/%d HasAnySlot disagrees with %v", date, d, slots)
			}
		}
	}
}
