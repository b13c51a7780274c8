package handlers

import (
	"net/http"

	"github.com/md-rashed-zaman/salonbook/libs/auth"
)

// Register mounts the public API and the owner API; the owner routes require
// an HS256 token with the owner role.
func (h *SalonHandler) Register(mux *http.ServeMux, jwtSecret string) {
	mux.HandleFunc("/api/v1/public/menu", h.Menu)
	mux.HandleFunc("/api/v1/public/stylist", h.Stylist)
	mux.HandleFunc("/api/v1/public/slots", h.Slots)
	mux.HandleFunc("/api/v1/public/calendar", h.Calendar)
	mux.HandleFunc("/api/v1/public/bookings", h.CreateBooking)
	mux.HandleFunc("/api/v1/public/bookings/cancel", h.CancelBooking)

	owner := auth.RequireRole(jwtSecret, auth.RoleOwner)
	mux.Handle("/api/v1/owner/bookings", owner(http.HandlerFunc(h.ListBookings)))
	mux.Handle("/api/v1/owner/bookings/status", owner(http.HandlerFunc(h.UpdateBookingStatus)))
	mux.Handle("/api/v1/owner/blocks", owner(http.HandlerFunc(h.Blocks)))
	mux.Handle("/api/v1/owner/business-hours", owner(http.HandlerFunc(h.BusinessHours)))
	mux.Handle("/api/v1/owner/special-dates", owner(http.HandlerFunc(h.SpecialDates)))
}
