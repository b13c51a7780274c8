package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/salonbook/libs/db"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/model"
)

func queryBlocks(ctx context.Context, q rowQuerier, from, to string) ([]model.BlockedSlot, error) {
	rows, err := q.Query(ctx, `
		SELECT id, to_char(block_date, 'YYYY-MM-DD'), to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
			reason, is_all_day
		FROM blocked_slots
		WHERE block_date BETWEEN $1::date AND $2::date
		ORDER BY block_date, start_time
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.BlockedSlot{}
	for rows.Next() {
		var b model.BlockedSlot
		if err := rows.Scan(&b.ID, &b.Date, &b.StartTime, &b.EndTime, &b.Reason, &b.IsAllDay); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// CreateBlocks stores all blocks in one transaction, assigning ids where
// missing. All-day blocks get a 00:00-23:59 interval.
func (r *Repository) CreateBlocks(ctx context.Context, blocks []model.BlockedSlot) ([]model.BlockedSlot, error) {
	out := make([]model.BlockedSlot, 0, len(blocks))
	err := db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		for _, b := range blocks {
			if b.ID == "" {
				b.ID = uuid.NewString()
			}
			if b.IsAllDay && b.StartTime == "" && b.EndTime == "" {
				b.StartTime, b.EndTime = "00:00", "23:59"
			}
			_, err := tx.Exec(ctx, `
				INSERT INTO blocked_slots (id, block_date, start_time, end_time, reason, is_all_day)
				VALUES ($1, $2::date, $3::time, $4::time, $5, $6)
			`, b.ID, b.Date, b.StartTime, b.EndTime, b.Reason, b.IsAllDay)
			if err != nil {
				return fmt.Errorf("insert block for %s: %w", b.Date, err)
			}
			out = append(out, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteBlock removes a block and returns its date so callers can invalidate
// cached availability.
func (r *Repository) DeleteBlock(ctx context.Context, id string) (string, error) {
	var date string
	err := r.db.QueryRow(ctx, `
		DELETE FROM blocked_slots
		WHERE id = $1
		RETURNING to_char(block_date, 'YYYY-MM-DD')
	`, id).Scan(&date)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return date, err
}

func (r *Repository) ListBlocks(ctx context.Context, from, to string) ([]model.BlockedSlot, error) {
	return queryBlocks(ctx, r.db, from, to)
}
