package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sibarconnect/inbox-service/internal/domain"
)

// ChatFilter captures the optional inbox listing predicates. Absent (nil)
// fields impose no constraint; all present predicates intersect.
type ChatFilter struct {
	Status                  *domain.ChatStatus
	Priority                *domain.ChatPriority
	LastDays                *int
	HasAppointment          *bool
	HasResponse             *bool
	Search                  *string
	TagIDs                  []int64
	ExcludeSnoozedForUserID *int64
	// PinnedByUserID does not filter; it floats that user's pinned chats to
	// the top of the time-ordered result.
	PinnedByUserID *int64
}

// ChatWithLastMessage is one inbox row: the chat plus its most recent message.
type ChatWithLastMessage struct {
	Chat        domain.Chat
	LastMessage *domain.Message
	// UnreadCount is part of the response contract but not yet computed;
	// it is always zero until per-user read pointers exist.
	UnreadCount int
}

// BulkUpdateInput describes the optional fields applied by a bulk update.
type BulkUpdateInput struct {
	Status         *domain.ChatStatus
	Priority       *domain.ChatPriority
	AssignedUserID *int64
}

// ChatRepository encapsulates chat persistence.
type ChatRepository interface {
	GetOrCreate(ctx context.Context, companyID int64, phoneNumber string, customerName *string) (*domain.Chat, error)
	GetByID(ctx context.Context, companyID, chatID int64) (*domain.Chat, error)
	ListWithFilter(ctx context.Context, companyID int64, filter ChatFilter) ([]ChatWithLastMessage, error)
	Assign(ctx context.Context, companyID, chatID, userID int64, priority domain.ChatPriority) (*domain.Chat, error)
	SetStatus(ctx context.Context, companyID, chatID int64, status domain.ChatStatus) (*domain.Chat, error)
	BulkUpdate(ctx context.Context, companyID int64, chatIDs []int64, input BulkUpdateInput) (int64, error)
	Delete(ctx context.Context, companyID, chatID int64) error
}

type chatRepository struct {
	pool *pgxpool.Pool
}

// NewChatRepository instantiates repository.
func NewChatRepository(pool *pgxpool.Pool) ChatRepository {
	return &chatRepository{pool: pool}
}

const chatColumns = `id, company_id, phone_number, customer_name, assigned_user_id,
               status, priority, last_message_time, created_at, updated_at`

// GetOrCreate inserts a chat for (company, phone) or returns the existing one.
// The unique constraint plus ON CONFLICT closes the concurrent-create race;
// a provided customer name only fills a previously-null value.
func (r *chatRepository) GetOrCreate(ctx context.Context, companyID int64, phoneNumber string, customerName *string) (*domain.Chat, error) {
	const query = `
        INSERT INTO chats (company_id, phone_number, customer_name)
        VALUES ($1,$2,$3)
        ON CONFLICT (company_id, phone_number)
        DO UPDATE SET customer_name = COALESCE(chats.customer_name, EXCLUDED.customer_name)
        RETURNING ` + chatColumns
	return r.scanChat(r.pool.QueryRow(ctx, query, companyID, phoneNumber, customerName))
}

func (r *chatRepository) GetByID(ctx context.Context, companyID, chatID int64) (*domain.Chat, error) {
	const query = `SELECT ` + chatColumns + ` FROM chats WHERE id=$1 AND company_id=$2`
	return r.scanChat(r.pool.QueryRow(ctx, query, chatID, companyID))
}

func (r *chatRepository) Assign(ctx context.Context, companyID, chatID, userID int64, priority domain.ChatPriority) (*domain.Chat, error) {
	const query = `
        UPDATE chats SET assigned_user_id=$1, priority=$2, updated_at=NOW()
        WHERE id=$3 AND company_id=$4
        RETURNING ` + chatColumns
	return r.scanChat(r.pool.QueryRow(ctx, query, userID, priority, chatID, companyID))
}

func (r *chatRepository) SetStatus(ctx context.Context, companyID, chatID int64, status domain.ChatStatus) (*domain.Chat, error) {
	const query = `
        UPDATE chats SET status=$1, updated_at=NOW()
        WHERE id=$2 AND company_id=$3
        RETURNING ` + chatColumns
	return r.scanChat(r.pool.QueryRow(ctx, query, status, chatID, companyID))
}

// BulkUpdate applies any provided fields to all matching chats in a single
// set-based statement and returns the number of rows touched.
func (r *chatRepository) BulkUpdate(ctx context.Context, companyID int64, chatIDs []int64, input BulkUpdateInput) (int64, error) {
	sets := []string{"updated_at=NOW()"}
	args := []any{}

	if input.Status != nil {
		args = append(args, *input.Status)
		sets = append(sets, fmt.Sprintf("status=$%d", len(args)))
	}
	if input.Priority != nil {
		args = append(args, *input.Priority)
		sets = append(sets, fmt.Sprintf("priority=$%d", len(args)))
	}
	if input.AssignedUserID != nil {
		args = append(args, *input.AssignedUserID)
		sets = append(sets, fmt.Sprintf("assigned_user_id=$%d", len(args)))
	}
	if len(args) == 0 {
		return 0, nil
	}

	args = append(args, chatIDs)
	idPlaceholder := fmt.Sprintf("$%d", len(args))
	args = append(args, companyID)
	companyPlaceholder := fmt.Sprintf("$%d", len(args))

	query := fmt.Sprintf(`UPDATE chats SET %s WHERE id = ANY(%s) AND company_id = %s`,
		strings.Join(sets, ", "), idPlaceholder, companyPlaceholder)

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// Delete removes a chat and everything hanging off it in one transaction.
func (r *chatRepository) Delete(ctx context.Context, companyID, chatID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	dependents := []string{
		`DELETE FROM chat_tag_map WHERE chat_id=$1`,
		`DELETE FROM chat_notes WHERE chat_id=$1`,
		`DELETE FROM chat_pins WHERE chat_id=$1`,
		`DELETE FROM chat_snoozes WHERE chat_id=$1`,
		`DELETE FROM chat_audit WHERE chat_id=$1`,
		`DELETE FROM chat_summaries WHERE chat_id=$1`,
		`DELETE FROM appointments WHERE chat_id=$1`,
		`DELETE FROM messages WHERE chat_id=$1`,
	}
	for _, stmt := range dependents {
		if _, err := tx.Exec(ctx, stmt, chatID); err != nil {
			return err
		}
	}

	cmd, err := tx.Exec(ctx, `DELETE FROM chats WHERE id=$1 AND company_id=$2`, chatID, companyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return tx.Commit(ctx)
}

// buildChatListQuery composes the inbox query from the supplied predicates.
// Each present filter narrows the WHERE clause; the most recent message is
// attached per row through a lateral join so the listing stays one round trip.
func buildChatListQuery(companyID int64, filter ChatFilter) (string, []any) {
	clauses := []string{"c.company_id=$1"}
	args := []any{companyID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("c.status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("c.priority=$%d", len(args)))
	}
	if filter.LastDays != nil {
		args = append(args, *filter.LastDays)
		clauses = append(clauses, fmt.Sprintf("c.last_message_time >= NOW() - make_interval(days => $%d)", len(args)))
	}
	if filter.HasAppointment != nil {
		sub := `EXISTS (SELECT 1 FROM appointments a WHERE a.chat_id = c.id AND a.company_id = c.company_id)`
		if !*filter.HasAppointment {
			sub = "NOT " + sub
		}
		clauses = append(clauses, sub)
	}
	if filter.HasResponse != nil {
		sub := `EXISTS (SELECT 1 FROM messages m WHERE m.chat_id = c.id AND m.direction = 'outgoing')`
		if !*filter.HasResponse {
			sub = "NOT " + sub
		}
		clauses = append(clauses, sub)
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.Search))+"%")
		p := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			`(LOWER(COALESCE(c.customer_name, '')) LIKE %s OR LOWER(c.phone_number) LIKE %s OR EXISTS (SELECT 1 FROM messages m WHERE m.chat_id = c.id AND LOWER(m.content) LIKE %s))`,
			p, p, p))
	}
	if len(filter.TagIDs) > 0 {
		args = append(args, filter.TagIDs)
		clauses = append(clauses, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM chat_tag_map tm WHERE tm.chat_id = c.id AND tm.tag_id = ANY($%d))`, len(args)))
	}
	if filter.ExcludeSnoozedForUserID != nil {
		args = append(args, *filter.ExcludeSnoozedForUserID)
		clauses = append(clauses, fmt.Sprintf(
			`NOT EXISTS (SELECT 1 FROM chat_snoozes s WHERE s.chat_id = c.id AND s.user_id = $%d AND s.until_at > NOW())`, len(args)))
	}

	orderBy := "c.last_message_time DESC"
	if filter.PinnedByUserID != nil {
		args = append(args, *filter.PinnedByUserID)
		orderBy = fmt.Sprintf(
			`(CASE WHEN EXISTS (SELECT 1 FROM chat_pins p WHERE p.chat_id = c.id AND p.user_id = $%d) THEN 0 ELSE 1 END), c.last_message_time DESC`,
			len(args))
	}

	query := fmt.Sprintf(`
        SELECT c.id, c.company_id, c.phone_number, c.customer_name, c.assigned_user_id,
               c.status, c.priority, c.last_message_time, c.created_at, c.updated_at,
               lm.id, lm.content, lm.message_type, lm.direction, lm.sender_name, lm.user_id,
               lm.provider_message_id, lm.wamid, lm.status, lm.attachment_url, lm.created_at
        FROM chats c
        LEFT JOIN LATERAL (
            SELECT id, content, message_type, direction, sender_name, user_id,
                   provider_message_id, wamid, status, attachment_url, created_at
            FROM messages m WHERE m.chat_id = c.id
            ORDER BY m.created_at DESC LIMIT 1
        ) lm ON true
        WHERE %s
        ORDER BY %s`, strings.Join(clauses, " AND "), orderBy)

	return query, args
}

func (r *chatRepository) ListWithFilter(ctx context.Context, companyID int64, filter ChatFilter) ([]ChatWithLastMessage, error) {
	query, args := buildChatListQuery(companyID, filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []ChatWithLastMessage{}
	for rows.Next() {
		var item ChatWithLastMessage
		var (
			lmID         *int64
			lmContent    *string
			lmType       *domain.MessageType
			lmDirection  *domain.MessageDirection
			lmSender     *string
			lmUserID     *int64
			lmProviderID *string
			lmWAMID      *string
			lmStatus     *domain.DeliveryStatus
			lmAttachment *string
			lmCreatedAt  *time.Time
		)
		if err := rows.Scan(
			&item.Chat.ID,
			&item.Chat.CompanyID,
			&item.Chat.PhoneNumber,
			&item.Chat.CustomerName,
			&item.Chat.AssignedUserID,
			&item.Chat.Status,
			&item.Chat.Priority,
			&item.Chat.LastMessageTime,
			&item.Chat.CreatedAt,
			&item.Chat.UpdatedAt,
			&lmID,
			&lmContent,
			&lmType,
			&lmDirection,
			&lmSender,
			&lmUserID,
			&lmProviderID,
			&lmWAMID,
			&lmStatus,
			&lmAttachment,
			&lmCreatedAt,
		); err != nil {
			return nil, err
		}
		if lmID != nil {
			item.LastMessage = &domain.Message{
				ID:                *lmID,
				ChatID:            item.Chat.ID,
				Content:           *lmContent,
				MessageType:       *lmType,
				Direction:         *lmDirection,
				SenderName:        lmSender,
				UserID:            lmUserID,
				ProviderMessageID: lmProviderID,
				WAMID:             lmWAMID,
				Status:            *lmStatus,
				AttachmentURL:     lmAttachment,
				CreatedAt:         *lmCreatedAt,
			}
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *chatRepository) scanChat(row pgx.Row) (*domain.Chat, error) {
	var chat domain.Chat
	if err := row.Scan(
		&chat.ID,
		&chat.CompanyID,
		&chat.PhoneNumber,
		&chat.CustomerName,
		&chat.AssignedUserID,
		&chat.Status,
		&chat.Priority,
		&chat.LastMessageTime,
		&chat.CreatedAt,
		&chat.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &chat, nil
}
