package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/availability"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/cache"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/catalog"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/metrics"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/storage"
)

var errSlotUnavailable = errors.New("slot is no longer available")

// Store is the persistence the handlers need; *storage.Repository satisfies it.
type Store interface {
	LoadDay(ctx context.Context, date string) (storage.Schedule, error)
	LoadRange(ctx context.Context, from, to string) (storage.Schedule, error)

	CreateBooking(ctx context.Context, date string, build func(storage.Schedule) (model.Booking, error)) (model.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status model.BookingStatus, reason string) (model.Booking, error)
	GetBooking(ctx context.Context, id string) (model.Booking, error)
	ListBookings(ctx context.Context, from, to string) ([]model.Booking, error)

	CreateBlocks(ctx context.Context, blocks []model.BlockedSlot) ([]model.BlockedSlot, error)
	DeleteBlock(ctx context.Context, id string) (string, error)
	ListBlocks(ctx context.Context, from, to string) ([]model.BlockedSlot, error)

	ListBusinessHours(ctx context.Context) ([]model.BusinessHours, error)
	UpsertBusinessHours(ctx context.Context, hours []model.BusinessHours) error

	UpsertSpecialDate(ctx context.Context, s model.SpecialDate) error
	DeleteSpecialDate(ctx context.Context, date string) error
	ListSpecialDates(ctx context.Context, from, to string) ([]model.SpecialDate, error)
}

type Options struct {
	Availability     availability.Config
	MaxAdvanceMonths int
	MinAdvanceHours  int
	// Location is the salon's civil time zone; "today" and lead time are
	// evaluated there.
	Location *time.Location
	Now      func() time.Time
}

type SalonHandler struct {
	store   Store
	cache   *cache.SlotCache
	metrics *metrics.Salon
	logger  *slog.Logger
	opts    Options
}

func NewSalonHandler(store Store, slotCache *cache.SlotCache, m *metrics.Salon, logger *slog.Logger, opts Options) *SalonHandler {
	if opts.MaxAdvanceMonths <= 0 {
		opts.MaxAdvanceMonths = availability.DefaultMaxAdvanceMonths
	}
	if opts.MinAdvanceHours < 0 {
		opts.MinAdvanceHours = 0
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SalonHandler{store: store, cache: slotCache, metrics: m, logger: logger, opts: opts}
}

func (h *SalonHandler) now() time.Time {
	return h.opts.Now().In(h.opts.Location)
}

func (h *SalonHandler) today() string {
	return h.now().Format(availability.DateLayout)
}

// horizon is the last bookable date.
func (h *SalonHandler) horizon() string {
	return h.now().AddDate(0, h.opts.MaxAdvanceMonths, 0).Format(availability.DateLayout)
}

func (h *SalonHandler) calendarConfig() availability.CalendarConfig {
	return availability.CalendarConfig{
		Availability:     h.opts.Availability,
		MaxAdvanceMonths: h.opts.MaxAdvanceMonths,
	}
}

// daySlots returns the unfiltered start times for date, from the cache when
// possible. Cache failures are logged and the slots computed directly.
func (h *SalonHandler) daySlots(ctx context.Context, date string, duration int) ([]string, error) {
	cfg := h.opts.Availability
	key, err := h.cache.Key(ctx, cache.SlotKey{
		Date:     date,
		Duration: duration,
		Interval: cfg.SlotIntervalMinutes,
		Buffer:   cfg.BufferMinutes,
	})
	if err != nil {
		h.logger.Warn("slot cache unavailable", "err", err)
		h.metrics.ObserveCacheLookup("error")
	} else if key != "" {
		slots, hit, err := h.cache.Get(ctx, key)
		switch {
		case err != nil:
			h.logger.Warn("slot cache read failed", "err", err, "key", key)
			h.metrics.ObserveCacheLookup("error")
		case hit:
			h.metrics.ObserveCacheLookup("hit")
			return slots, nil
		default:
			h.metrics.ObserveCacheLookup("miss")
		}
	}

	sched, err := h.store.LoadDay(ctx, date)
	if err != nil {
		return nil, err
	}
	started := time.Now()
	slots := availability.AvailableSlots(sched.Inputs(date, duration), cfg)
	h.metrics.ObserveSlotComputation(time.Since(started))

	if err := h.cache.Set(ctx, key, slots); err != nil {
		h.logger.Warn("slot cache write failed", "err", err, "key", key)
	}
	return slots, nil
}

// bookableSlots applies the booking window and minimum lead time on top of
// daySlots.
func (h *SalonHandler) bookableSlots(ctx context.Context, date string, duration int) ([]string, error) {
	if date > h.horizon() || date < h.today() {
		return []string{}, nil
	}
	slots, err := h.daySlots(ctx, date, duration)
	if err != nil {
		return nil, err
	}
	return availability.FilterLeadTime(date, slots, h.now(), h.opts.MinAdvanceHours), nil
}

func (h *SalonHandler) invalidateDate(ctx context.Context, date string) {
	if err := h.cache.InvalidateDate(ctx, date); err != nil {
		h.logger.Error("slot cache invalidation failed", "err", err, "date", date)
	}
}

func (h *SalonHandler) invalidateAll(ctx context.Context) {
	if err := h.cache.InvalidateAll(ctx); err != nil {
		h.logger.Error("slot cache invalidation failed", "err", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	t, err := time.Parse(availability.DateLayout, raw)
	if err != nil {
		return "", false
	}
	return t.Format(availability.DateLayout), true
}

func parseClock(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return "", false
	}
	return t.Format("15:04"), true
}

// parseIDs reads "1,9" style lists.
func parseIDs(raw string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// queryDuration resolves the treatment length from menu_item_ids or
// duration_minutes. Zero means neither was given.
func queryDuration(r *http.Request) (int, error) {
	q := r.URL.Query()
	if raw := q.Get("menu_item_ids"); raw != "" {
		ids, err := parseIDs(raw)
		if err != nil {
			return 0, errors.New("invalid menu_item_ids")
		}
		sel, err := catalog.Select(ids)
		if err != nil {
			return 0, err
		}
		return sel.TotalDuration, nil
	}
	if raw := q.Get("duration_minutes"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return 0, errors.New("invalid duration_minutes")
		}
		return n, nil
	}
	return 0, nil
}

// dateRange reads from/to, defaulting to today through the booking horizon.
func (h *SalonHandler) dateRange(r *http.Request) (string, string, bool) {
	q := r.URL.Query()
	from, to := h.today(), h.horizon()
	if raw := q.Get("from"); raw != "" {
		d, ok := parseDate(raw)
		if !ok {
			return "", "", false
		}
		from = d
	}
	if raw := q.Get("to"); raw != "" {
		d, ok := parseDate(raw)
		if !ok {
			return "", "", false
		}
		to = d
	}
	return from, to, from <= to
}
