package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sibarconnect/inbox-service/internal/domain"
)

// MessageRepository manages chat messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	ListByChat(ctx context.Context, chatID int64, limit int) ([]domain.Message, error)
	UpdateStatusByProviderID(ctx context.Context, providerMessageID string, status domain.DeliveryStatus) (*domain.Message, error)
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository builds repository.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

// Create persists the message and advances the owning chat's last-activity
// timestamp in the same transaction. A caller-supplied CreatedAt (the import
// path) is used for both; otherwise server time is.
func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	if msg.Status == "" {
		msg.Status = domain.DeliverySent
	}

	var createdAt *time.Time
	if !msg.CreatedAt.IsZero() {
		ts := msg.CreatedAt
		createdAt = &ts
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insert = `
        INSERT INTO messages (chat_id, content, message_type, direction, sender_name,
                              user_id, provider_message_id, wamid, status, attachment_url, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10, COALESCE($11::timestamptz, NOW()))
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, insert,
		msg.ChatID,
		msg.Content,
		msg.MessageType,
		msg.Direction,
		msg.SenderName,
		msg.UserID,
		msg.ProviderMessageID,
		msg.WAMID,
		msg.Status,
		msg.AttachmentURL,
		createdAt,
	).Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return err
	}

	const touch = `UPDATE chats SET last_message_time=$1, updated_at=NOW() WHERE id=$2`
	if _, err := tx.Exec(ctx, touch, msg.CreatedAt, msg.ChatID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *messageRepository) ListByChat(ctx context.Context, chatID int64, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, chat_id, content, message_type, direction, sender_name, user_id,
               provider_message_id, wamid, status, attachment_url, created_at
        FROM messages WHERE chat_id=$1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (r *messageRepository) UpdateStatusByProviderID(ctx context.Context, providerMessageID string, status domain.DeliveryStatus) (*domain.Message, error) {
	const query = `
        UPDATE messages SET status=$1 WHERE provider_message_id=$2
        RETURNING id, chat_id, content, message_type, direction, sender_name, user_id,
                  provider_message_id, wamid, status, attachment_url, created_at`
	var msg domain.Message
	if err := r.pool.QueryRow(ctx, query, status, providerMessageID).Scan(
		&msg.ID,
		&msg.ChatID,
		&msg.Content,
		&msg.MessageType,
		&msg.Direction,
		&msg.SenderName,
		&msg.UserID,
		&msg.ProviderMessageID,
		&msg.WAMID,
		&msg.Status,
		&msg.AttachmentURL,
		&msg.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &msg, nil
}

func scanMessages(rows pgx.Rows) ([]domain.Message, error) {
	var result []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.ChatID,
			&msg.Content,
			&msg.MessageType,
			&msg.Direction,
			&msg.SenderName,
			&msg.UserID,
			&msg.ProviderMessageID,
			&msg.WAMID,
			&msg.Status,
			&msg.AttachmentURL,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
