package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sibarconnect/inbox-service/internal/domain"
)

// AuditRepository stores the append-only trail of mutating chat actions.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.ChatAudit) error
	ListByChat(ctx context.Context, companyID, chatID int64, limit int) ([]domain.ChatAudit, error)
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository builds repository.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) Create(ctx context.Context, entry *domain.ChatAudit) error {
	const query = `
        INSERT INTO chat_audit (company_id, chat_id, user_id, action, detail)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.CompanyID,
		entry.ChatID,
		entry.UserID,
		entry.Action,
		entry.Detail,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *auditRepository) ListByChat(ctx context.Context, companyID, chatID int64, limit int) ([]domain.ChatAudit, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `
        SELECT id, company_id, chat_id, user_id, action, detail, created_at
        FROM chat_audit WHERE company_id=$1 AND chat_id=$2
        ORDER BY created_at DESC LIMIT $3`
	rows, err := r.pool.Query(ctx, query, companyID, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ChatAudit
	for rows.Next() {
		var entry domain.ChatAudit
		if err := rows.Scan(
			&entry.ID,
			&entry.CompanyID,
			&entry.ChatID,
			&entry.UserID,
			&entry.Action,
			&entry.Detail,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
