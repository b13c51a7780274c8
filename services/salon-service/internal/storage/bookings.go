package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/salonbook/libs/db"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/outbox"
)

const bookingColumns = `
	id, to_char(booking_date, 'YYYY-MM-DD'), to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
	menu_item_ids, total_duration, total_price, customer_name, customer_phone, customer_note,
	status, COALESCE(cancel_reason, ''), created_at`

func scanBooking(row pgx.Row) (model.Booking, error) {
	var (
		b      model.Booking
		menu   []int32
		status string
	)
	err := row.Scan(&b.ID, &b.Date, &b.StartTime, &b.EndTime, &menu, &b.TotalDuration, &b.TotalPrice,
		&b.CustomerName, &b.CustomerPhone, &b.CustomerNote, &status, &b.CancelReason, &b.CreatedAt)
	if err != nil {
		return model.Booking{}, err
	}
	b.MenuItemIDs = toInts(menu)
	b.Status = model.BookingStatus(status)
	return b, nil
}

func queryBookings(ctx context.Context, q rowQuerier, from, to string, confirmedOnly bool) ([]model.Booking, error) {
	rows, err := q.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE booking_date BETWEEN $1::date AND $2::date
			AND (NOT $3::boolean OR status = 'confirmed')
		ORDER BY booking_date, start_time
	`, from, to, confirmedOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// BookingEvent is the payload of salon.booking.* events.
type BookingEvent struct {
	BookingID     string    `json:"booking_id"`
	Date          string    `json:"date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	MenuItemIDs   []int     `json:"menu_item_ids"`
	TotalDuration int       `json:"total_duration"`
	TotalPrice    int       `json:"total_price"`
	Status        string    `json:"status"`
	Reason        string    `json:"reason,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func bookingEvent(b model.Booking, at time.Time) (outbox.Event, error) {
	payload, err := json.Marshal(BookingEvent{
		BookingID:     b.ID,
		Date:          b.Date,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		MenuItemIDs:   b.MenuItemIDs,
		TotalDuration: b.TotalDuration,
		TotalPrice:    b.TotalPrice,
		Status:        string(b.Status),
		Reason:        b.CancelReason,
		OccurredAt:    at.UTC(),
	})
	if err != nil {
		return outbox.Event{}, err
	}
	return outbox.Event{
		AggregateType: outbox.AggregateBooking,
		AggregateID:   b.ID,
		EventType:     outbox.BookingEventType(string(b.Status)),
		Payload:       payload,
	}, nil
}

// CreateBooking serialises bookings per date with a transaction-scoped
// advisory lock, reloads the day under the lock and hands it to build, which
// decides whether the requested slot is still free. The returned booking is
// stored as confirmed together with its outbox event.
func (r *Repository) CreateBooking(ctx context.Context, date string, build func(Schedule) (model.Booking, error)) (model.Booking, error) {
	var created model.Booking
	err := db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "booking:"+date); err != nil {
			return fmt.Errorf("lock date: %w", err)
		}
		sched, err := loadRange(ctx, tx, date, date)
		if err != nil {
			return fmt.Errorf("load schedule: %w", err)
		}
		b, err := build(sched)
		if err != nil {
			return err
		}
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		b.Date = date
		b.Status = model.StatusConfirmed

		err = tx.QueryRow(ctx, `
			INSERT INTO bookings
				(id, booking_date, start_time, end_time, menu_item_ids, total_duration, total_price,
				 customer_name, customer_phone, customer_note, status)
			VALUES ($1, $2::date, $3::time, $4::time, $5, $6, $7, $8, $9, $10, $11)
			RETURNING created_at
		`, b.ID, b.Date, b.StartTime, b.EndTime, toInt32s(b.MenuItemIDs), b.TotalDuration, b.TotalPrice,
			b.CustomerName, b.CustomerPhone, b.CustomerNote, string(b.Status)).Scan(&b.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}

		evt, err := bookingEvent(b, b.CreatedAt)
		if err != nil {
			return err
		}
		if err := r.outbox.Insert(ctx, tx, evt); err != nil {
			return fmt.Errorf("insert outbox event: %w", err)
		}
		created = b
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	return created, nil
}

// UpdateBookingStatus moves a confirmed booking to a terminal status.
func (r *Repository) UpdateBookingStatus(ctx context.Context, id string, status model.BookingStatus, reason string) (model.Booking, error) {
	if !status.Valid() || status == model.StatusConfirmed {
		return model.Booking{}, fmt.Errorf("%w: to %q", ErrInvalidTransition, status)
	}
	var updated model.Booking
	err := db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		b, err := scanBooking(tx.QueryRow(ctx, `
			SELECT `+bookingColumns+`
			FROM bookings
			WHERE id = $1
			FOR UPDATE
		`, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if b.Status != model.StatusConfirmed {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, b.Status, status)
		}

		var at time.Time
		err = tx.QueryRow(ctx, `
			UPDATE bookings
			SET status = $2,
				cancel_reason = NULLIF($3, ''),
				updated_at = now()
			WHERE id = $1
			RETURNING updated_at
		`, id, string(status), reason).Scan(&at)
		if err != nil {
			return fmt.Errorf("update booking: %w", err)
		}
		b.Status = status
		b.CancelReason = reason

		evt, err := bookingEvent(b, at)
		if err != nil {
			return err
		}
		if err := r.outbox.Insert(ctx, tx, evt); err != nil {
			return fmt.Errorf("insert outbox event: %w", err)
		}
		updated = b
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	return updated, nil
}

func (r *Repository) GetBooking(ctx context.Context, id string) (model.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Booking{}, ErrNotFound
	}
	return b, err
}

// ListBookings returns bookings of every status in [from, to].
func (r *Repository) ListBookings(ctx context.Context, from, to string) ([]model.Booking, error) {
	return queryBookings(ctx, r.db, from, to, false)
}
