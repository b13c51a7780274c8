package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/salonbook/libs/db"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/model"
)

func queryBusinessHours(ctx context.Context, q rowQuerier) ([]model.BusinessHours, error) {
	rows, err := q.Query(ctx, `
		SELECT day_of_week, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), is_holiday
		FROM business_hours
		ORDER BY day_of_week
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.BusinessHours{}
	for rows.Next() {
		var h model.BusinessHours
		if err := rows.Scan(&h.DayOfWeek, &h.StartTime, &h.EndTime, &h.IsHoliday); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *Repository) ListBusinessHours(ctx context.Context) ([]model.BusinessHours, error) {
	return queryBusinessHours(ctx, r.db)
}

// UpsertBusinessHours replaces the rows for the given weekdays; weekdays not
// listed keep their current hours.
func (r *Repository) UpsertBusinessHours(ctx context.Context, hours []model.BusinessHours) error {
	return db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		for _, h := range hours {
			_, err := tx.Exec(ctx, `
				INSERT INTO business_hours (day_of_week, start_time, end_time, is_holiday)
				VALUES ($1, $2::time, $3::time, $4)
				ON CONFLICT (day_of_week) DO UPDATE
				SET start_time = EXCLUDED.start_time,
					end_time = EXCLUDED.end_time,
					is_holiday = EXCLUDED.is_holiday,
					updated_at = now()
			`, h.DayOfWeek, h.StartTime, h.EndTime, h.IsHoliday)
			if err != nil {
				return fmt.Errorf("upsert hours for weekday %d: %w", h.DayOfWeek, err)
			}
		}
		return nil
	})
}
