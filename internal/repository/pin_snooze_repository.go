package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PinSnoozeRepository manages per-(chat, user) pin and snooze rows.
type PinSnoozeRepository interface {
	Pin(ctx context.Context, chatID, userID int64) error
	Unpin(ctx context.Context, chatID, userID int64) error
	Snooze(ctx context.Context, chatID, userID int64, untilAt time.Time) error
	Unsnooze(ctx context.Context, chatID, userID int64) error
}

type pinSnoozeRepository struct {
	pool *pgxpool.Pool
}

// NewPinSnoozeRepository builds repository.
func NewPinSnoozeRepository(pool *pgxpool.Pool) PinSnoozeRepository {
	return &pinSnoozeRepository{pool: pool}
}

// Pin is an idempotent presence toggle: the row existing is the pinned state.
func (r *pinSnoozeRepository) Pin(ctx context.Context, chatID, userID int64) error {
	const query = `
        INSERT INTO chat_pins (chat_id, user_id) VALUES ($1,$2)
        ON CONFLICT (chat_id, user_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, query, chatID, userID)
	return err
}

func (r *pinSnoozeRepository) Unpin(ctx context.Context, chatID, userID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM chat_pins WHERE chat_id=$1 AND user_id=$2`, chatID, userID)
	return err
}

// Snooze upserts the single snooze row per (chat, user).
func (r *pinSnoozeRepository) Snooze(ctx context.Context, chatID, userID int64, untilAt time.Time) error {
	const query = `
        INSERT INTO chat_snoozes (chat_id, user_id, until_at) VALUES ($1,$2,$3)
        ON CONFLICT (chat_id, user_id) DO UPDATE SET until_at = EXCLUDED.until_at`
	_, err := r.pool.Exec(ctx, query, chatID, userID, untilAt)
	return err
}

func (r *pinSnoozeRepository) Unsnooze(ctx context.Context, chatID, userID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM chat_snoozes WHERE chat_id=$1 AND user_id=$2`, chatID, userID)
	return err
}
