package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sibarconnect/inbox-service/internal/domain"
)

// SummaryRepository stores AI summaries, one row per (company, chat).
type SummaryRepository interface {
	Upsert(ctx context.Context, summary *domain.ChatSummary) error
	GetByChat(ctx context.Context, companyID, chatID int64) (*domain.ChatSummary, error)
}

type summaryRepository struct {
	pool *pgxpool.Pool
}

// NewSummaryRepository builds repository.
func NewSummaryRepository(pool *pgxpool.Pool) SummaryRepository {
	return &summaryRepository{pool: pool}
}

func (r *summaryRepository) Upsert(ctx context.Context, summary *domain.ChatSummary) error {
	const query = `
        INSERT INTO chat_summaries (chat_id, company_id, summary, interest, provider, model)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (company_id, chat_id) DO UPDATE SET
            summary = EXCLUDED.summary,
            interest = EXCLUDED.interest,
            provider = EXCLUDED.provider,
            model = EXCLUDED.model,
            updated_at = NOW()
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		summary.ChatID,
		summary.CompanyID,
		summary.Summary,
		summary.Interest,
		summary.Provider,
		summary.Model,
	).Scan(&summary.ID, &summary.CreatedAt, &summary.UpdatedAt)
}

func (r *summaryRepository) GetByChat(ctx context.Context, companyID, chatID int64) (*domain.ChatSummary, error) {
	const query = `
        SELECT id, chat_id, company_id, summary, interest, provider, model, created_at, updated_at
        FROM chat_summaries WHERE company_id=$1 AND chat_id=$2`
	var summary domain.ChatSummary
	if err := r.pool.QueryRow(ctx, query, companyID, chatID).Scan(
		&summary.ID,
		&summary.ChatID,
		&summary.CompanyID,
		&summary.Summary,
		&summary.Interest,
		&summary.Provider,
		&summary.Model,
		&summary.CreatedAt,
		&summary.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &summary, nil
}
