package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/availability"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/catalog"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/seed"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/storage"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/validation"
)

type menuItem struct {
	ID          int    `json:"id"`
	Category    string `json:"category"`
	Name        string `json:"name"`
	Price       int    `json:"price"`
	Duration    int    `json:"duration_minutes"`
	Description string `json:"description"`
}

type menuCategory struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type menuResponse struct {
	Categories []menuCategory `json:"categories"`
	Items      []menuItem     `json:"items"`
}

type slotsResponse struct {
	Date            string   `json:"date"`
	DurationMinutes int      `json:"duration_minutes"`
	Slots           []string `json:"slots"`
}

type calendarDay struct {
	Date          string `json:"date"`
	Day           int    `json:"day"`
	Weekday       int    `json:"weekday"`
	Today         bool   `json:"today"`
	Past          bool   `json:"past"`
	Closed        bool   `json:"closed"`
	BeyondHorizon bool   `json:"beyond_horizon"`
	HasSlots      bool   `json:"has_slots"`
	Selectable    bool   `json:"selectable"`
}

type calendarResponse struct {
	Year            int           `json:"year"`
	Month           int           `json:"month"`
	DurationMinutes int           `json:"duration_minutes"`
	LeadingBlanks   int           `json:"leading_blanks"`
	CanPrev         bool          `json:"can_prev"`
	CanNext         bool          `json:"can_next"`
	Days            []calendarDay `json:"days"`
}

type customerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Note  string `json:"note"`
}

type createBookingRequest struct {
	MenuItemIDs []int           `json:"menu_item_ids"`
	Date        string          `json:"date"`
	Time        string          `json:"time"`
	Customer    customerRequest `json:"customer"`
}

type bookingResponse struct {
	BookingID       string `json:"booking_id"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	MenuItemIDs     []int  `json:"menu_item_ids"`
	DurationMinutes int    `json:"duration_minutes"`
	TotalPrice      int    `json:"total_price"`
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerNote    string `json:"customer_note,omitempty"`
	Status          string `json:"status"`
	CancelReason    string `json:"cancel_reason,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
}

type cancelBookingRequest struct {
	BookingID string `json:"booking_id"`
	Phone     string `json:"phone"`
}

func toBookingResponse(b model.Booking) bookingResponse {
	resp := bookingResponse{
		BookingID:       b.ID,
		Date:            b.Date,
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		MenuItemIDs:     b.MenuItemIDs,
		DurationMinutes: b.TotalDuration,
		TotalPrice:      b.TotalPrice,
		CustomerName:    b.CustomerName,
		CustomerPhone:   b.CustomerPhone,
		CustomerNote:    b.CustomerNote,
		Status:          string(b.Status),
		CancelReason:    b.CancelReason,
	}
	if !b.CreatedAt.IsZero() {
		resp.CreatedAt = b.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func (h *SalonHandler) Menu(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	resp := menuResponse{}
	for _, c := range catalog.Categories() {
		resp.Categories = append(resp.Categories, menuCategory{ID: string(c.ID), Label: c.Label})
	}
	for _, it := range catalog.Items() {
		resp.Items = append(resp.Items, menuItem{
			ID:          it.ID,
			Category:    string(it.Category),
			Name:        it.Name,
			Price:       it.Price,
			Duration:    it.Duration,
			Description: it.Description,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type stylistResponse struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Bio         string   `json:"bio"`
	Specialties []string `json:"specialties"`
	Avatar      string   `json:"avatar"`
	Years       int      `json:"years_of_experience"`
}

func (h *SalonHandler) Stylist(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s := seed.DemoStylist()
	writeJSON(w, http.StatusOK, stylistResponse{
		ID:          s.ID,
		Name:        s.Name,
		Role:        s.Role,
		Bio:         s.Bio,
		Specialties: s.Specialties,
		Avatar:      s.Avatar,
		Years:       s.Years,
	})
}

func (h *SalonHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	date, ok := parseDate(r.URL.Query().Get("date"))
	if !ok {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	duration, err := queryDuration(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if duration == 0 {
		http.Error(w, "menu_item_ids or duration_minutes required", http.StatusBadRequest)
		return
	}

	slots, err := h.bookableSlots(r.Context(), date, duration)
	if err != nil {
		h.logger.Error("slot query failed", "err", err, "date", date)
		http.Error(w, "failed to load schedule", http.StatusInternalServerError)
		return
	}
	if len(slots) == 0 {
		h.metrics.ObserveSlotQuery("none")
	} else {
		h.metrics.ObserveSlotQuery("available")
	}
	writeJSON(w, http.StatusOK, slotsResponse{Date: date, DurationMinutes: duration, Slots: slots})
}

func (h *SalonHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	now := h.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if raw := strings.TrimSpace(r.URL.Query().Get("month")); raw != "" {
		t, err := time.Parse("2006-01", raw)
		if err != nil {
			http.Error(w, "invalid month", http.StatusBadRequest)
			return
		}
		first = t
	}
	duration, err := queryDuration(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	last := first.AddDate(0, 1, -1)
	ctx := r.Context()
	sched, err := h.store.LoadRange(ctx, first.Format(availability.DateLayout), last.Format(availability.DateLayout))
	if err != nil {
		h.logger.Error("calendar load failed", "err", err, "month", first.Format("2006-01"))
		http.Error(w, "failed to load schedule", http.StatusInternalServerError)
		return
	}
	month := availability.MonthView(first.Year(), first.Month(), now, sched.MonthInputs(duration), h.calendarConfig())

	resp := calendarResponse{
		Year:            month.Year,
		Month:           int(month.Month),
		DurationMinutes: duration,
		LeadingBlanks:   month.LeadingBlanks,
		CanPrev:         month.CanPrev,
		CanNext:         month.CanNext,
		Days:            make([]calendarDay, 0, len(month.Days)),
	}
	for _, d := range month.Days {
		// Today can still be full once the lead time is applied.
		if d.Today && d.Selectable {
			slots := availability.AvailableSlots(sched.Inputs(d.Date, duration), h.opts.Availability)
			if len(availability.FilterLeadTime(d.Date, slots, now, h.opts.MinAdvanceHours)) == 0 {
				d.HasSlots = false
				d.Selectable = false
			}
		}
		resp.Days = append(resp.Days, calendarDay{
			Date:          d.Date,
			Day:           d.Day,
			Weekday:       int(d.Weekday),
			Today:         d.Today,
			Past:          d.Past,
			Closed:        d.Closed,
			BeyondHorizon: d.BeyondHorizon,
			HasSlots:      d.HasSlots,
			Selectable:    d.Selectable,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SalonHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	customer := model.Customer{
		Name:  strings.TrimSpace(req.Customer.Name),
		Phone: strings.TrimSpace(req.Customer.Phone),
		Note:  strings.TrimSpace(req.Customer.Note),
	}
	if errs := validation.ValidateCustomer(customer); validation.HasErrors(errs) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": errs})
		return
	}
	if utf8.RuneCountInString(customer.Note) > validation.MaxNoteLength {
		customer.Note = string([]rune(customer.Note)[:validation.MaxNoteLength])
	}

	date, ok := parseDate(req.Date)
	if !ok {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	start, ok := parseClock(req.Time)
	if !ok {
		http.Error(w, "invalid time", http.StatusBadRequest)
		return
	}
	if len(req.MenuItemIDs) == 0 {
		http.Error(w, "menu_item_ids required", http.StatusBadRequest)
		return
	}
	sel, err := catalog.Select(req.MenuItemIDs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if date < h.today() || date > h.horizon() ||
		len(availability.FilterLeadTime(date, []string{start}, h.now(), h.opts.MinAdvanceHours)) == 0 {
		h.metrics.ObserveBooking("rejected")
		http.Error(w, errSlotUnavailable.Error(), http.StatusConflict)
		return
	}

	b, err := h.store.CreateBooking(ctx, date, func(s storage.Schedule) (model.Booking, error) {
		// Re-check against the schedule loaded under the date lock.
		free := availability.AvailableSlots(s.Inputs(date, sel.TotalDuration), h.opts.Availability)
		if !slices.Contains(free, start) {
			return model.Booking{}, errSlotUnavailable
		}
		return model.Booking{
			StartTime:     start,
			EndTime:       availability.MinutesToTime(availability.TimeToMinutes(start) + sel.TotalDuration),
			MenuItemIDs:   sel.IDs(),
			TotalDuration: sel.TotalDuration,
			TotalPrice:    sel.TotalPrice,
			CustomerName:  customer.Name,
			CustomerPhone: customer.Phone,
			CustomerNote:  customer.Note,
		}, nil
	})
	if err != nil {
		if errors.Is(err, errSlotUnavailable) || storage.IsConflict(err) {
			h.metrics.ObserveBooking("conflict")
			http.Error(w, errSlotUnavailable.Error(), http.StatusConflict)
			return
		}
		h.metrics.ObserveBooking("error")
		h.logger.Error("create booking failed", "err", err, "date", date, "time", start)
		http.Error(w, "failed to create booking", http.StatusInternalServerError)
		return
	}

	h.invalidateDate(ctx, date)
	h.metrics.ObserveBooking("created")
	h.logger.Info("booking created", "booking_id", b.ID, "date", b.Date, "start", b.StartTime, "duration", b.TotalDuration)
	writeJSON(w, http.StatusCreated, toBookingResponse(b))
}

// CancelBooking lets a customer cancel with the phone number they booked with.
func (h *SalonHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req cancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.BookingID = strings.TrimSpace(req.BookingID)
	if req.BookingID == "" || strings.TrimSpace(req.Phone) == "" {
		http.Error(w, "booking_id and phone required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	b, err := h.store.GetBooking(ctx, req.BookingID)
	if err != nil && !storage.IsNotFound(err) {
		h.logger.Error("get booking failed", "err", err, "booking_id", req.BookingID)
		http.Error(w, "failed to load booking", http.StatusInternalServerError)
		return
	}
	// Unknown ids and wrong phones look the same to the caller.
	if err != nil || normalizePhone(b.CustomerPhone) != normalizePhone(req.Phone) {
		http.Error(w, "booking not found", http.StatusNotFound)
		return
	}

	b, err = h.store.UpdateBookingStatus(ctx, b.ID, model.StatusCancelledByCustomer, "")
	if err != nil {
		if errors.Is(err, storage.ErrInvalidTransition) {
			http.Error(w, "booking can no longer be cancelled", http.StatusConflict)
			return
		}
		h.logger.Error("cancel booking failed", "err", err, "booking_id", req.BookingID)
		http.Error(w, "failed to cancel booking", http.StatusInternalServerError)
		return
	}
	h.invalidateDate(ctx, b.Date)
	h.metrics.ObserveStatusChange(string(b.Status))
	writeJSON(w, http.StatusOK, toBookingResponse(b))
}

func normalizePhone(p string) string {
	return strings.ReplaceAll(strings.TrimSpace(p), "-", "")
}
