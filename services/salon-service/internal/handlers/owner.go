package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/recurrence"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/storage"
)

type updateStatusRequest struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
	Reason    string `json:"reason"`
}

type blockItem struct {
	ID        string `json:"id,omitempty"`
	Date      string `json:"date"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
	Reason    string `json:"reason"`
	IsAllDay  bool   `json:"is_all_day"`
}

type createBlockRequest struct {
	blockItem
	// RRule repeats the block, e.g. "FREQ=WEEKLY;BYDAY=MO;COUNT=8".
	RRule string `json:"rrule,omitempty"`
}

type hoursItem struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	IsHoliday bool   `json:"is_holiday"`
}

type specialDateItem struct {
	Date      string  `json:"date"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	IsClosed  bool    `json:"is_closed"`
	Reason    string  `json:"reason"`
}

func (h *SalonHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	from, to, ok := h.dateRange(r)
	if !ok {
		http.Error(w, "invalid from/to", http.StatusBadRequest)
		return
	}
	bookings, err := h.store.ListBookings(r.Context(), from, to)
	if err != nil {
		h.logger.Error("list bookings failed", "err", err)
		http.Error(w, "failed to list bookings", http.StatusInternalServerError)
		return
	}
	items := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, toBookingResponse(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{"from": from, "to": to, "bookings": items})
}

// UpdateBookingStatus closes a confirmed booking as completed, no-show or
// cancelled by the salon.
func (h *SalonHandler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	status := model.BookingStatus(strings.TrimSpace(req.Status))
	switch status {
	case model.StatusCompleted, model.StatusCancelledByOwner, model.StatusNoShow:
	default:
		http.Error(w, "status must be completed, cancelled_by_owner or no_show", http.StatusBadRequest)
		return
	}
	req.BookingID = strings.TrimSpace(req.BookingID)
	if req.BookingID == "" {
		http.Error(w, "booking_id required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	b, err := h.store.UpdateBookingStatus(ctx, req.BookingID, status, strings.TrimSpace(req.Reason))
	switch {
	case storage.IsNotFound(err):
		http.Error(w, "booking not found", http.StatusNotFound)
		return
	case errors.Is(err, storage.ErrInvalidTransition):
		http.Error(w, "booking is not confirmed", http.StatusConflict)
		return
	case err != nil:
		h.logger.Error("update booking status failed", "err", err, "booking_id", req.BookingID)
		http.Error(w, "failed to update booking", http.StatusInternalServerError)
		return
	}
	h.invalidateDate(ctx, b.Date)
	h.metrics.ObserveStatusChange(string(status))
	writeJSON(w, http.StatusOK, toBookingResponse(b))
}

// Blocks serves GET (list), POST (create, optionally repeating) and
// DELETE ?id= for owner time off.
func (h *SalonHandler) Blocks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listBlocks(w, r)
	case http.MethodPost:
		h.createBlocks(w, r)
	case http.MethodDelete:
		h.deleteBlock(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SalonHandler) listBlocks(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.dateRange(r)
	if !ok {
		http.Error(w, "invalid from/to", http.StatusBadRequest)
		return
	}
	blocks, err := h.store.ListBlocks(r.Context(), from, to)
	if err != nil {
		h.logger.Error("list blocks failed", "err", err)
		http.Error(w, "failed to list blocks", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"from": from, "to": to, "blocks": toBlockItems(blocks)})
}

func (h *SalonHandler) createBlocks(w http.ResponseWriter, r *http.Request) {
	var req createBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	date, ok := parseDate(req.Date)
	if !ok {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	tmpl := model.BlockedSlot{Reason: strings.TrimSpace(req.Reason), IsAllDay: req.IsAllDay}
	if !req.IsAllDay {
		start, okStart := parseClock(req.StartTime)
		end, okEnd := parseClock(req.EndTime)
		if !okStart || !okEnd || start >= end {
			http.Error(w, "start_time and end_time must be HH:MM with start before end", http.StatusBadRequest)
			return
		}
		tmpl.StartTime, tmpl.EndTime = start, end
	}

	dates := []string{date}
	if rule := strings.TrimSpace(req.RRule); rule != "" {
		var err error
		dates, err = recurrence.Dates(date, rule, 0)
		if err != nil {
			http.Error(w, "invalid rrule: "+err.Error(), http.StatusBadRequest)
			return
		}
		if len(dates) == 0 {
			http.Error(w, "rrule yields no dates", http.StatusBadRequest)
			return
		}
	}
	blocks := make([]model.BlockedSlot, 0, len(dates))
	for _, d := range dates {
		b := tmpl
		b.Date = d
		blocks = append(blocks, b)
	}

	ctx := r.Context()
	created, err := h.store.CreateBlocks(ctx, blocks)
	if err != nil {
		h.logger.Error("create blocks failed", "err", err, "date", date, "count", len(blocks))
		http.Error(w, "failed to create blocks", http.StatusInternalServerError)
		return
	}
	for _, d := range dates {
		h.invalidateDate(ctx, d)
	}
	writeJSON(w, http.StatusCreated, map[string]any{"blocks": toBlockItems(created)})
}

func (h *SalonHandler) deleteBlock(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	date, err := h.store.DeleteBlock(ctx, id)
	if storage.IsNotFound(err) {
		http.Error(w, "block not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("delete block failed", "err", err, "block_id", id)
		http.Error(w, "failed to delete block", http.StatusInternalServerError)
		return
	}
	h.invalidateDate(ctx, date)
	w.WriteHeader(http.StatusNoContent)
}

func toBlockItems(blocks []model.BlockedSlot) []blockItem {
	out := make([]blockItem, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, blockItem{
			ID:        b.ID,
			Date:      b.Date,
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
			Reason:    b.Reason,
			IsAllDay:  b.IsAllDay,
		})
	}
	return out
}

// BusinessHours serves GET and PUT of the weekly table. PUT replaces only the
// weekdays it lists and invalidates every cached date.
func (h *SalonHandler) BusinessHours(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		hours, err := h.store.ListBusinessHours(ctx)
		if err != nil {
			h.logger.Error("list business hours failed", "err", err)
			http.Error(w, "failed to list business hours", http.StatusInternalServerError)
			return
		}
		items := make([]hoursItem, 0, len(hours))
		for _, bh := range hours {
			items = append(items, hoursItem(bh))
		}
		writeJSON(w, http.StatusOK, map[string]any{"hours": items})
	case http.MethodPut:
		var req []hoursItem
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		if len(req) == 0 {
			http.Error(w, "at least one weekday required", http.StatusBadRequest)
			return
		}
		hours := make([]model.BusinessHours, 0, len(req))
		seen := map[int]bool{}
		for _, it := range req {
			if it.DayOfWeek < 0 || it.DayOfWeek > 6 || seen[it.DayOfWeek] {
				http.Error(w, "day_of_week must be unique and within 0-6", http.StatusBadRequest)
				return
			}
			seen[it.DayOfWeek] = true
			bh := model.BusinessHours{DayOfWeek: it.DayOfWeek, IsHoliday: it.IsHoliday, StartTime: "00:00", EndTime: "00:00"}
			start, okStart := parseClock(it.StartTime)
			end, okEnd := parseClock(it.EndTime)
			switch {
			case okStart && okEnd && start < end:
				bh.StartTime, bh.EndTime = start, end
			case !it.IsHoliday:
				http.Error(w, "open days need start_time before end_time", http.StatusBadRequest)
				return
			}
			hours = append(hours, bh)
		}
		if err := h.store.UpsertBusinessHours(ctx, hours); err != nil {
			h.logger.Error("upsert business hours failed", "err", err)
			http.Error(w, "failed to save business hours", http.StatusInternalServerError)
			return
		}
		h.invalidateAll(ctx)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// SpecialDates serves GET, PUT and DELETE ?date= of per-date overrides.
func (h *SalonHandler) SpecialDates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		from, to, ok := h.dateRange(r)
		if !ok {
			http.Error(w, "invalid from/to", http.StatusBadRequest)
			return
		}
		dates, err := h.store.ListSpecialDates(ctx, from, to)
		if err != nil {
			h.logger.Error("list special dates failed", "err", err)
			http.Error(w, "failed to list special dates", http.StatusInternalServerError)
			return
		}
		items := make([]specialDateItem, 0, len(dates))
		for _, s := range dates {
			items = append(items, specialDateItem(s))
		}
		writeJSON(w, http.StatusOK, map[string]any{"from": from, "to": to, "special_dates": items})
	case http.MethodPut:
		var req specialDateItem
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		date, ok := parseDate(req.Date)
		if !ok {
			http.Error(w, "invalid date", http.StatusBadRequest)
			return
		}
		sd := model.SpecialDate{Date: date, IsClosed: req.IsClosed, Reason: strings.TrimSpace(req.Reason)}
		if !req.IsClosed {
			if req.StartTime == nil || req.EndTime == nil {
				http.Error(w, "open special dates need start_time and end_time", http.StatusBadRequest)
				return
			}
			start, okStart := parseClock(*req.StartTime)
			end, okEnd := parseClock(*req.EndTime)
			if !okStart || !okEnd || start >= end {
				http.Error(w, "start_time must be before end_time", http.StatusBadRequest)
				return
			}
			sd.StartTime, sd.EndTime = &start, &end
		}
		if err := h.store.UpsertSpecialDate(ctx, sd); err != nil {
			h.logger.Error("upsert special date failed", "err", err, "date", date)
			http.Error(w, "failed to save special date", http.StatusInternalServerError)
			return
		}
		h.invalidateDate(ctx, date)
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		date, ok := parseDate(r.URL.Query().Get("date"))
		if !ok {
			http.Error(w, "invalid date", http.StatusBadRequest)
			return
		}
		err := h.store.DeleteSpecialDate(ctx, date)
		if storage.IsNotFound(err) {
			http.Error(w, "special date not found", http.StatusNotFound)
			return
		}
		if err != nil {
			h.logger.Error("delete special date failed", "err", err, "date", date)
			http.Error(w, "failed to delete special date", http.StatusInternalServerError)
			return
		}
		h.invalidateDate(ctx, date)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
