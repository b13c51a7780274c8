package storage

import (
	"context"

	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/model"
)

func querySpecialDates(ctx context.Context, q rowQuerier, from, to string) ([]model.SpecialDate, error) {
	rows, err := q.Query(ctx, `
		SELECT to_char(special_date, 'YYYY-MM-DD'), to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
			is_closed, reason
		FROM special_dates
		WHERE special_date BETWEEN $1::date AND $2::date
		ORDER BY special_date
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.SpecialDate{}
	for rows.Next() {
		var s model.SpecialDate
		if err := rows.Scan(&s.Date, &s.StartTime, &s.EndTime, &s.IsClosed, &s.Reason); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) UpsertSpecialDate(ctx context.Context, s model.SpecialDate) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO special_dates (special_date, start_time, end_time, is_closed, reason)
		VALUES ($1::date, $2::time, $3::time, $4, $5)
		ON CONFLICT (special_date) DO UPDATE
		SET start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			is_closed = EXCLUDED.is_closed,
			reason = EXCLUDED.reason,
			updated_at = now()
	`, s.Date, s.StartTime, s.EndTime, s.IsClosed, s.Reason)
	return err
}

func (r *Repository) DeleteSpecialDate(ctx context.Context, date string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM special_dates WHERE special_date = $1::date`, date)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) ListSpecialDates(ctx context.Context, from, to string) ([]model.SpecialDate, error) {
	return querySpecialDates(ctx, r.db, from, to)
}
