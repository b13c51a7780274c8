package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/md-rashed-zaman/salonbook/libs/auth"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/availability"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/cache"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/seed"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/storage"
	"github.com/redis/go-redis/v9"
)

const testSecret = "test-secret"

type fakeStore struct {
	mu        sync.Mutex
	bookings  []model.Booking
	blocks    []model.BlockedSlot
	hours     []model.BusinessHours
	special   []model.SpecialDate
	loadCalls int
	nextID    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{hours: seed.DefaultBusinessHours()}
}

func (f *fakeStore) schedule(from, to string) storage.Schedule {
	s := storage.Schedule{Hours: f.hours}
	for _, b := range f.bookings {
		if b.Date >= from && b.Date <= to && b.Status == model.StatusConfirmed {
			s.Bookings = append(s.Bookings, b)
		}
	}
	for _, b := range f.blocks {
		if b.Date >= from && b.Date <= to {
			s.Blocks = append(s.Blocks, b)
		}
	}
	for _, sd := range f.special {
		if sd.Date >= from && sd.Date <= to {
			s.SpecialDates = append(s.SpecialDates, sd)
		}
	}
	return s
}

func (f *fakeStore) LoadDay(ctx context.Context, date string) (storage.Schedule, error) {
	return f.LoadRange(ctx, date, date)
}

func (f *fakeStore) LoadRange(_ context.Context, from, to string) (storage.Schedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loadCalls++
	return f.schedule(from, to), nil
}

func (f *fakeStore) CreateBooking(_ context.Context, date string, build func(storage.Schedule) (model.Booking, error)) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := build(f.schedule(date, date))
	if err != nil {
		return model.Booking{}, err
	}
	f.nextID++
	b.ID = fmt.Sprintf("bk-%d", f.nextID)
	b.Date = date
	b.Status = model.StatusConfirmed
	b.CreatedAt = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	f.bookings = append(f.bookings, b)
	return b, nil
}

func (f *fakeStore) UpdateBookingStatus(_ context.Context, id string, status model.BookingStatus, reason string) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, b := range f.bookings {
		if b.ID != id {
			continue
		}
		if b.Status != model.StatusConfirmed {
			return model.Booking{}, storage.ErrInvalidTransition
		}
		f.bookings[i].Status = status
		f.bookings[i].CancelReason = reason
		return f.bookings[i], nil
	}
	return model.Booking{}, storage.ErrNotFound
}

func (f *fakeStore) GetBooking(_ context.Context, id string) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return model.Booking{}, storage.ErrNotFound
}

func (f *fakeStore) ListBookings(_ context.Context, from, to string) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Booking
	for _, b := range f.bookings {
		if b.Date >= from && b.Date <= to {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateBlocks(_ context.Context, blocks []model.BlockedSlot) ([]model.BlockedSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.BlockedSlot, 0, len(blocks))
	for _, b := range blocks {
		f.nextID++
		b.ID = fmt.Sprintf("blk-%d", f.nextID)
		f.blocks = append(f.blocks, b)
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeStore) DeleteBlock(_ context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, b := range f.blocks {
		if b.ID == id {
			f.blocks = append(f.blocks[:i], f.blocks[i+1:]...)
			return b.Date, nil
		}
	}
	return "", storage.ErrNotFound
}

func (f *fakeStore) ListBlocks(_ context.Context, from, to string) ([]model.BlockedSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.schedule(from, to).Blocks, nil
}

func (f *fakeStore) ListBusinessHours(context.Context) ([]model.BusinessHours, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hours, nil
}

func (f *fakeStore) UpsertBusinessHours(_ context.Context, hours []model.BusinessHours) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, h := range hours {
		f.hours[h.DayOfWeek] = h
	}
	return nil
}

func (f *fakeStore) UpsertSpecialDate(_ context.Context, s model.SpecialDate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, sd := range f.special {
		if sd.Date == s.Date {
			f.special[i] = s
			return nil
		}
	}
	f.special = append(f.special, s)
	return nil
}

func (f *fakeStore) DeleteSpecialDate(_ context.Context, date string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, sd := range f.special {
		if sd.Date == date {
			f.special = append(f.special[:i], f.special[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) ListSpecialDates(_ context.Context, from, to string) ([]model.SpecialDate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.schedule(from, to).SpecialDates, nil
}

// Wednesday 2025-01-15 08:00.
var testNow = time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)

func newTestHandler(t *testing.T, store *fakeStore, slotCache *cache.SlotCache, now time.Time) http.Handler {
	t.Helper()
	h := NewSalonHandler(store, slotCache, nil, slog.New(slog.NewTextHandler(io.Discard, nil)), Options{
		Availability:     availability.DefaultConfig(),
		MaxAdvanceMonths: availability.DefaultMaxAdvanceMonths,
		MinAdvanceHours:  availability.DefaultMinAdvanceHours,
		Location:         time.UTC,
		Now:              func() time.Time { return now },
	})
	mux := http.NewServeMux()
	h.Register(mux, testSecret)
	return mux
}

func do(t *testing.T, h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := auth.SignHS256(auth.NewClaims("user-1", role, time.Now(), time.Hour), testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestMenu(t *testing.T) {
	h := newTestHandler(t, newFakeStore(), nil, testNow)
	rec := do(t, h, http.MethodGet, "/api/v1/public/menu", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decode[menuResponse](t, rec)
	if len(resp.Items) != 10 || len(resp.Categories) != 6 || resp.Categories[0].ID != "ALL" {
		t.Fatalf("unexpected menu %+v", resp)
	}
	if rec := do(t, h, http.MethodPost, "/api/v1/public/menu", "", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestStylist(t *testing.T) {
	h := newTestHandler(t, newFakeStore(), nil, testNow)
	rec := do(t, h, http.MethodGet, "/api/v1/public/stylist", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decode[stylistResponse](t, rec)
	if resp.ID != 1 || resp.Years != 15 || len(resp.Specialties) != 3 {
		t.Fatalf("unexpected stylist %+v", resp)
	}
}

func TestSlots(t *testing.T) {
	store := newFakeStore()
	store.bookings = []model.Booking{{
		ID: "b-1", Date: "2025-01-16", StartTime: "11:00", EndTime: "12:00",
		MenuItemIDs: []int{1}, TotalDuration: 60, Status: model.StatusConfirmed,
	}}
	store.blocks = []model.BlockedSlot{{ID: "l-1", Date: "2025-01-16", StartTime: "13:00", EndTime: "14:00"}}
	h := newTestHandler(t, store, nil, testNow)

	rec := do(t, h, http.MethodGet, "/api/v1/public/slots?date=2025-01-16&menu_item_ids=1", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[slotsResponse](t, rec)
	if resp.DurationMinutes != 60 {
		t.Fatalf("duration = %d", resp.DurationMinutes)
	}
	for _, s := range []string{"10:30", "11:00", "12:00", "12:30", "13:00"} {
		if slices.Contains(resp.Slots, s) {
			t.Fatalf("%s should be taken by the buffered booking or lunch: %v", s, resp.Slots)
		}
	}
	if !slices.Contains(resp.Slots, "14:00") || !slices.Contains(resp.Slots, "19:00") || slices.Contains(resp.Slots, "19:30") {
		t.Fatalf("unexpected slots %v", resp.Slots)
	}

	// Today starts after the four hour lead time.
	today := decode[slotsResponse](t, do(t, h, http.MethodGet, "/api/v1/public/slots?date=2025-01-15&duration_minutes=60", "", ""))
	if len(today.Slots) == 0 || today.Slots[0] != "12:00" {
		t.Fatalf("today's first slot should be 12:00, got %v", today.Slots)
	}

	// Tuesday is the weekly holiday.
	rec = do(t, h, http.MethodGet, "/api/v1/public/slots?date=2025-01-21&duration_minutes=60", "", "")
	if !strings.Contains(rec.Body.String(), `"slots":[]`) {
		t.Fatalf("closed day should return an empty list, got %s", rec.Body.String())
	}

	// Past and beyond the horizon.
	for _, date := range []string{"2025-01-14", "2025-06-16"} {
		resp := decode[slotsResponse](t, do(t, h, http.MethodGet, "/api/v1/public/slots?date="+date+"&duration_minutes=60", "", ""))
		if len(resp.Slots) != 0 {
			t.Fatalf("%s should not be bookable: %v", date, resp.Slots)
		}
	}
}

func TestSlotsBadInput(t *testing.T) {
	h := newTestHandler(t, newFakeStore(), nil, testNow)
	for _, path := range []string{
		"/api/v1/public/slots?menu_item_ids=1",
		"/api/v1/public/slots?date=2025-13-01&menu_item_ids=1",
		"/api/v1/public/slots?date=2025-01-16",
		"/api/v1/public/slots?date=2025-01-16&menu_item_ids=99",
		"/api/v1/public/slots?date=2025-01-16&menu_item_ids=1,1",
		"/api/v1/public/slots?date=2025-01-16&duration_minutes=-5",
	} {
		if rec := do(t, h, http.MethodGet, path, "", ""); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, rec.Code)
		}
	}
}

func TestSlotsCacheInvalidatedByBooking(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := newFakeStore()
	h := newTestHandler(t, store, cache.New(rdb, time.Minute), testNow)

	path := "/api/v1/public/slots?date=2025-01-16&menu_item_ids=1"
	first := decode[slotsResponse](t, do(t, h, http.MethodGet, path, "", ""))
	second := decode[slotsResponse](t, do(t, h, http.MethodGet, path, "", ""))
	if store.loadCalls != 1 {
		t.Fatalf("second query should be served from cache, loads = %d", store.loadCalls)
	}
	if len(first.Slots) != len(second.Slots) || !slices.Contains(second.Slots, "10:00") {
		t.Fatalf("cached slots differ: %v vs %v", first.Slots, second.Slots)
	}

	body := `{"menu_item_ids":[1],"date":"2025-01-16","time":"10:00","customer":{"name":"山田 花子","phone":"090-1234-5678"}}`
	if rec := do(t, h, http.MethodPost, "/api/v1/public/bookings", body, ""); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	after := decode[slotsResponse](t, do(t, h, http.MethodGet, path, "", ""))
	if slices.Contains(after.Slots, "10:00") {
		t.Fatalf("booked slot still offered after invalidation: %v", after.Slots)
	}
}

func TestSlotsCacheDownFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	h := newTestHandler(t, newFakeStore(), cache.New(rdb, time.Minute), testNow)
	rec := do(t, h, http.MethodGet, "/api/v1/public/slots?date=2025-01-16&menu_item_ids=1", "", "")
	if rec.Code != http.StatusOK || !slices.Contains(decode[slotsResponse](t, rec).Slots, "10:00") {
		t.Fatalf("slots should be computed without redis: %d %s", rec.Code, rec.Body.String())
	}
}

func TestCreateBooking(t *testing.T) {
	store := newFakeStore()
	h := newTestHandler(t, store, nil, testNow)
	const path = "/api/v1/public/bookings"

	rec := do(t, h, http.MethodPost, path, `{"menu_item_ids":[1],"date":"2025-01-16","time":"10:00","customer":{"name":"","phone":"12345"}}`, "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	errs := decode[struct {
		Errors map[string]string `json:"errors"`
	}](t, rec)
	if errs.Errors["name"] == "" || errs.Errors["phone"] == "" {
		t.Fatalf("expected name and phone errors, got %v", errs.Errors)
	}

	ok := `{"menu_item_ids":[2,9],"date":"2025-01-16","time":"15:00","customer":{"name":"佐藤 太郎","phone":"03-1234-5678","note":"短めで"}}`
	rec = do(t, h, http.MethodPost, path, ok, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	b := decode[bookingResponse](t, rec)
	if b.EndTime != "16:15" || b.DurationMinutes != 75 || b.TotalPrice != 7800 || b.Status != "confirmed" {
		t.Fatalf("unexpected booking %+v", b)
	}

	if rec := do(t, h, http.MethodPost, path, ok, ""); rec.Code != http.StatusConflict {
		t.Fatalf("double booking should conflict, got %d", rec.Code)
	}

	cases := map[string]struct {
		body string
		code int
	}{
		"bad json":        {`{`, http.StatusBadRequest},
		"bad date":        {`{"menu_item_ids":[1],"date":"16/01/2025","time":"10:00","customer":{"name":"a","phone":"0312345678"}}`, http.StatusBadRequest},
		"bad time":        {`{"menu_item_ids":[1],"date":"2025-01-16","time":"25:00","customer":{"name":"a","phone":"0312345678"}}`, http.StatusBadRequest},
		"no menu":         {`{"menu_item_ids":[],"date":"2025-01-16","time":"10:00","customer":{"name":"a","phone":"0312345678"}}`, http.StatusBadRequest},
		"unknown menu":    {`{"menu_item_ids":[42],"date":"2025-01-16","time":"10:00","customer":{"name":"a","phone":"0312345678"}}`, http.StatusBadRequest},
		"inside lead":     {`{"menu_item_ids":[1],"date":"2025-01-15","time":"10:00","customer":{"name":"a","phone":"0312345678"}}`, http.StatusConflict},
		"holiday":         {`{"menu_item_ids":[1],"date":"2025-01-21","time":"10:00","customer":{"name":"a","phone":"0312345678"}}`, http.StatusConflict},
		"off grid":        {`{"menu_item_ids":[1],"date":"2025-01-16","time":"10:10","customer":{"name":"a","phone":"0312345678"}}`, http.StatusConflict},
		"runs past close": {`{"menu_item_ids":[6],"date":"2025-01-16","time":"19:00","customer":{"name":"a","phone":"0312345678"}}`, http.StatusConflict},
	}
	for name, tc := range cases {
		if rec := do(t, h, http.MethodPost, path, tc.body, ""); rec.Code != tc.code {
			t.Fatalf("%s: expected %d, got %d (%s)", name, tc.code, rec.Code, rec.Body.String())
		}
	}
	if len(store.bookings) != 1 {
		t.Fatalf("only one booking should be stored, got %d", len(store.bookings))
	}
}

func TestCreateBookingLongNoteDoesNotBlock(t *testing.T) {
	store := newFakeStore()
	h := newTestHandler(t, store, nil, testNow)
	body := fmt.Sprintf(`{"menu_item_ids":[1],"date":"2025-01-16","time":"10:00","customer":{"name":"a","phone":"0312345678","note":%q}}`, strings.Repeat("あ", 600))
	if rec := do(t, h, http.MethodPost, "/api/v1/public/bookings", body, ""); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if n := len([]rune(store.bookings[0].CustomerNote)); n != 500 {
		t.Fatalf("note should be cut to 500 runes, got %d", n)
	}
}

func TestCancelBooking(t *testing.T) {
	store := newFakeStore()
	store.bookings = []model.Booking{{
		ID: "b-1", Date: "2025-01-16", StartTime: "11:00", EndTime: "12:00",
		CustomerPhone: "090-1234-5678", Status: model.StatusConfirmed,
	}}
	h := newTestHandler(t, store, nil, testNow)
	const path = "/api/v1/public/bookings/cancel"

	for _, body := range []string{
		`{"booking_id":"b-1","phone":"03-0000-0000"}`,
		`{"booking_id":"nope","phone":"090-1234-5678"}`,
	} {
		if rec := do(t, h, http.MethodPost, path, body, ""); rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", body, rec.Code)
		}
	}
	rec := do(t, h, http.MethodPost, path, `{"booking_id":"b-1","phone":"09012345678"}`, "")
	if rec.Code != http.StatusOK || decode[bookingResponse](t, rec).Status != "cancelled_by_customer" {
		t.Fatalf("cancel failed: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, h, http.MethodPost, path, `{"booking_id":"b-1","phone":"09012345678"}`, ""); rec.Code != http.StatusConflict {
		t.Fatalf("second cancel should conflict, got %d", rec.Code)
	}

	slots := decode[slotsResponse](t, do(t, h, http.MethodGet, "/api/v1/public/slots?date=2025-01-16&duration_minutes=60", "", ""))
	if !slices.Contains(slots.Slots, "11:00") {
		t.Fatalf("cancelled booking should free its slot: %v", slots.Slots)
	}
}

func TestCalendar(t *testing.T) {
	store := newFakeStore()
	h := newTestHandler(t, store, nil, testNow)

	rec := do(t, h, http.MethodGet, "/api/v1/public/calendar?month=2025-01&menu_item_ids=1", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cal := decode[calendarResponse](t, rec)
	if cal.Year != 2025 || cal.Month != 1 || cal.LeadingBlanks != 3 || len(cal.Days) != 31 || cal.CanPrev || !cal.CanNext {
		t.Fatalf("unexpected layout %+v", cal)
	}
	if d := cal.Days[13]; !d.Past || !d.Closed || d.Selectable {
		t.Fatalf("2025-01-14 should be past and closed: %+v", d)
	}
	if d := cal.Days[14]; !d.Today || !d.Selectable {
		t.Fatalf("today should be selectable in the morning: %+v", d)
	}
	if d := cal.Days[15]; !d.Selectable {
		t.Fatalf("2025-01-16 should be selectable: %+v", d)
	}

	late := newTestHandler(t, store, nil, time.Date(2025, 1, 15, 17, 30, 0, 0, time.UTC))
	cal = decode[calendarResponse](t, do(t, late, http.MethodGet, "/api/v1/public/calendar?month=2025-01&menu_item_ids=1", "", ""))
	if d := cal.Days[14]; d.Selectable || d.HasSlots {
		t.Fatalf("today should be full once the lead time passes closing: %+v", d)
	}

	noMenu := decode[calendarResponse](t, do(t, h, http.MethodGet, "/api/v1/public/calendar?month=2025-02", "", ""))
	for _, d := range noMenu.Days {
		if d.Selectable {
			t.Fatalf("nothing is selectable without a menu: %+v", d)
		}
	}
	if rec := do(t, h, http.MethodGet, "/api/v1/public/calendar?month=2025-1x", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestOwnerRequiresOwnerToken(t *testing.T) {
	h := newTestHandler(t, newFakeStore(), nil, testNow)
	const path = "/api/v1/owner/bookings"
	if rec := do(t, h, http.MethodGet, path, "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, path, "", token(t, auth.RoleStaff)); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, path, "", token(t, auth.RoleOwner)); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestOwnerBookingStatus(t *testing.T) {
	store := newFakeStore()
	store.bookings = []model.Booking{{ID: "b-1", Date: "2025-01-16", StartTime: "11:00", EndTime: "12:00", Status: model.StatusConfirmed}}
	h := newTestHandler(t, store, nil, testNow)
	tok := token(t, auth.RoleOwner)
	const path = "/api/v1/owner/bookings/status"

	if rec := do(t, h, http.MethodPost, path, `{"booking_id":"b-1","status":"confirmed"}`, tok); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, path, `{"booking_id":"zz","status":"no_show"}`, tok); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	rec := do(t, h, http.MethodPost, path, `{"booking_id":"b-1","status":"cancelled_by_owner","reason":"臨時休業"}`, tok)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if b := decode[bookingResponse](t, rec); b.Status != "cancelled_by_owner" || b.CancelReason != "臨時休業" {
		t.Fatalf("unexpected booking %+v", b)
	}
	if rec := do(t, h, http.MethodPost, path, `{"booking_id":"b-1","status":"completed"}`, tok); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	list := decode[struct {
		Bookings []bookingResponse `json:"bookings"`
	}](t, do(t, h, http.MethodGet, "/api/v1/owner/bookings?from=2025-01-01&to=2025-01-31", "", tok))
	if len(list.Bookings) != 1 {
		t.Fatalf("owner list should include cancelled bookings: %+v", list)
	}
	if rec := do(t, h, http.MethodGet, "/api/v1/owner/bookings?from=2025-02-01&to=2025-01-01", "", tok); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an inverted range, got %d", rec.Code)
	}
}

func TestOwnerBlocks(t *testing.T) {
	store := newFakeStore()
	h := newTestHandler(t, store, nil, testNow)
	tok := token(t, auth.RoleOwner)
	const path = "/api/v1/owner/blocks"

	rec := do(t, h, http.MethodPost, path, `{"date":"2025-01-16","start_time":"15:00","end_time":"17:00","reason":"研修","rrule":"FREQ=WEEKLY;COUNT=3"}`, tok)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[struct {
		Blocks []blockItem `json:"blocks"`
	}](t, rec)
	if len(created.Blocks) != 3 || created.Blocks[2].Date != "2025-01-30" {
		t.Fatalf("unexpected blocks %+v", created.Blocks)
	}

	slots := decode[slotsResponse](t, do(t, h, http.MethodGet, "/api/v1/public/slots?date=2025-01-23&duration_minutes=60", "", ""))
	if slices.Contains(slots.Slots, "15:00") || slices.Contains(slots.Slots, "16:00") || !slices.Contains(slots.Slots, "17:00") {
		t.Fatalf("repeated block not applied: %v", slots.Slots)
	}

	for _, body := range []string{
		`{"date":"2025-01-16","start_time":"17:00","end_time":"15:00"}`,
		`{"date":"2025-01-16","is_all_day":true,"rrule":"FREQ=BOGUS"}`,
		`{"date":"2025-01-16","is_all_day":true,"rrule":"FREQ=DAILY;COUNT=400"}`,
	} {
		if rec := do(t, h, http.MethodPost, path, body, tok); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rec.Code)
		}
	}

	if rec := do(t, h, http.MethodDelete, path+"?id="+created.Blocks[0].ID, "", tok); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodDelete, path+"?id=missing", "", tok); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	listed := decode[struct {
		Blocks []blockItem `json:"blocks"`
	}](t, do(t, h, http.MethodGet, path+"?from=2025-01-01&to=2025-01-31", "", tok))
	if len(listed.Blocks) != 2 {
		t.Fatalf("expected 2 remaining blocks, got %+v", listed.Blocks)
	}
}

func TestOwnerBusinessHoursAndSpecialDates(t *testing.T) {
	store := newFakeStore()
	h := newTestHandler(t, store, nil, testNow)
	tok := token(t, auth.RoleOwner)

	if rec := do(t, h, http.MethodPut, "/api/v1/owner/business-hours", `[{"day_of_week":7,"start_time":"10:00","end_time":"18:00"}]`, tok); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	// Thursdays become a holiday.
	if rec := do(t, h, http.MethodPut, "/api/v1/owner/business-hours", `[{"day_of_week":4,"is_holiday":true}]`, tok); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	thu := decode[slotsResponse](t, do(t, h, http.MethodGet, "/api/v1/public/slots?date=2025-01-16&duration_minutes=60", "", ""))
	if len(thu.Slots) != 0 {
		t.Fatalf("thursday should be closed: %v", thu.Slots)
	}

	// A special date opens the Tuesday holiday for a short day.
	rec := do(t, h, http.MethodPut, "/api/v1/owner/special-dates", `{"date":"2025-01-21","start_time":"12:00","end_time":"15:00","reason":"臨時営業"}`, tok)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	tue := decode[slotsResponse](t, do(t, h, http.MethodGet, "/api/v1/public/slots?date=2025-01-21&duration_minutes=60", "", ""))
	if len(tue.Slots) != 5 || tue.Slots[0] != "12:00" || tue.Slots[4] != "14:00" {
		t.Fatalf("special date hours not applied: %v", tue.Slots)
	}
	if rec := do(t, h, http.MethodPut, "/api/v1/owner/special-dates", `{"date":"2025-01-22","start_time":"12:00"}`, tok); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	if rec := do(t, h, http.MethodDelete, "/api/v1/owner/special-dates?date=2025-01-21", "", tok); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodDelete, "/api/v1/owner/special-dates?date=2025-01-21", "", tok); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	hours := decode[struct {
		Hours []hoursItem `json:"hours"`
	}](t, do(t, h, http.MethodGet, "/api/v1/owner/business-hours", "", tok))
	if len(hours.Hours) != 7 || !hours.Hours[4].IsHoliday {
		t.Fatalf("unexpected hours %+v", hours.Hours)
	}
}
